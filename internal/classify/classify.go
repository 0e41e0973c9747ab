package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nconklindev/rentport/internal/normalize"
	"github.com/nconklindev/rentport/internal/types"

	"github.com/rs/zerolog"
)

const (
	PropertyTypeResidential = "RESIDENTIAL"
	StatusOwned             = "OWNED"
)

var (
	DefaultOwnerNames       = []string{"נטוביץ", "ליאת", "מיכל", "אביעד", "אילנה", "יצחק"}
	DefaultPropertyKeywords = []string{"רחוב", "דירה", "קרקע", "מגרש", "משרד", "בניין"}
)

// errSkip marks a row that simply does not qualify. It is never logged.
var errSkip = errors.New("row skipped")

// RowError is a row that looked like a record but held a spreadsheet error
// value in a required cell.
type RowError struct {
	Row   int
	Field string
	Value string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s holds %q", e.Row, e.Field, e.Value)
}

type Config struct {
	OwnerNames       []string
	DefaultOwner     string
	PropertyKeywords []string
	DefaultCity      string
	YearPivot        int
	// RequireSlash only accepts lease file numbers like "12/3".
	RequireSlash bool
	// PositionalFallback reads leases by the legacy column layout when no
	// header row can be found.
	PositionalFallback bool
	// Date1904 reads serial dates in the 1904 date system.
	Date1904 bool
}

func DefaultConfig() Config {
	return Config{
		OwnerNames:       DefaultOwnerNames,
		PropertyKeywords: DefaultPropertyKeywords,
		YearPivot:        normalize.DefaultYearPivot,
	}
}

type Stats struct {
	RowsRead  int
	Extracted int
	Skipped   int
	RowErrors int
}

func (s *Stats) record(err error, log zerolog.Logger) {
	var rowErr *RowError
	switch {
	case err == nil:
		s.Extracted++
	case errors.As(err, &rowErr):
		s.RowErrors++
		log.Warn().Int("row", rowErr.Row).Str("field", rowErr.Field).Str("value", rowErr.Value).Msg("skipping row with error value")
	default:
		s.Skipped++
	}
}

type Classifier struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Classifier {
	if len(cfg.OwnerNames) == 0 {
		cfg.OwnerNames = DefaultOwnerNames
	}
	if len(cfg.PropertyKeywords) == 0 {
		cfg.PropertyKeywords = DefaultPropertyKeywords
	}
	return &Classifier{cfg: cfg, log: log}
}

// ForWorkbook returns a classifier that reads dates the way data's
// workbook stores them.
func (c *Classifier) ForWorkbook(data *types.FileData) *Classifier {
	cp := *c
	cp.cfg.Date1904 = data != nil && data.Date1904
	return &cp
}

// requireText returns the cleaned text of a required cell, a *RowError for
// spreadsheet error values, or errSkip when it is empty.
func requireText(rowNum int, field, raw string) (string, error) {
	if normalize.ContainsErrorMarker(raw) {
		return "", &RowError{Row: rowNum, Field: field, Value: raw}
	}
	text := normalize.CleanText(raw)
	if text == "" {
		return "", errSkip
	}
	return text, nil
}

func rowText(row types.Row) string {
	return strings.Join(row, " ")
}

func isBlank(row types.Row) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
