package classify

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nconklindev/rentport/internal/normalize"
	"github.com/nconklindev/rentport/internal/types"
)

var (
	ErrNoHeader       = errors.New("lease header row not found")
	ErrSchemaMismatch = errors.New("lease header does not match the expected schema")
)

type Field int

const (
	FieldFileNumber Field = iota
	FieldPropertyAddress
	FieldApartmentNumber
	FieldFloor
	FieldRoomCount
	FieldTenantName
	FieldTenantEmail
	FieldTenantPhone
	FieldStartDate
	FieldEndDate
	FieldMonthlyRent
	FieldNotes
	FieldOurShare
	FieldInsurance
	FieldArnonaNumber
	FieldElectricMeter
	FieldSequential
	FieldHandledBy
)

var fieldNames = map[Field]string{
	FieldFileNumber:      "fileNumber",
	FieldPropertyAddress: "propertyAddress",
	FieldApartmentNumber: "apartmentNumber",
	FieldFloor:           "floor",
	FieldRoomCount:       "roomCount",
	FieldTenantName:      "tenantName",
	FieldTenantEmail:     "tenantEmail",
	FieldTenantPhone:     "tenantPhone",
	FieldStartDate:       "startDate",
	FieldEndDate:         "endDate",
	FieldMonthlyRent:     "monthlyRent",
	FieldNotes:           "notes",
	FieldOurShare:        "ourShare",
	FieldInsurance:       "insurance",
	FieldArnonaNumber:    "arnonaNumber",
	FieldElectricMeter:   "electricMeter",
	FieldSequential:      "sequential",
	FieldHandledBy:       "handledBy",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// headerAliases lists the labels each field goes by in the lease sheets.
var headerAliases = map[Field][]string{
	FieldFileNumber:      {"מספר תיק", "מס תיק", "מס' תיק"},
	FieldPropertyAddress: {"כתובת הנכס", "כתובת"},
	FieldApartmentNumber: {"מספר דירה", "מס דירה", "מס' דירה"},
	FieldFloor:           {"מס קומה", "קומה"},
	FieldRoomCount:       {"מס חדרים", "חדרים"},
	FieldTenantName:      {"שם השוכר", "שם שוכר", "שוכרים", "שוכר"},
	FieldTenantEmail:     {"כתובת מייל", `כתובת דוא"ל`, "מייל שוכרים", "מייל", "אימייל", `דוא"ל`},
	FieldTenantPhone:     {"טלפון/נייד", "טלפון", "נייד"},
	FieldStartDate:       {"תאריך התחלה"},
	FieldEndDate:         {"תאריך סיום"},
	FieldMonthlyRent:     {`שכ"ד`, "שכר דירה", "שכירות חודשית"},
	FieldNotes:           {"הערות"},
	FieldOurShare:        {"חלק שלנו"},
	FieldInsurance:       {"ביטוח"},
	FieldArnonaNumber:    {"מס ארנונה", "ארנונה"},
	FieldElectricMeter:   {"מונה חשמל"},
	FieldSequential:      {"סידורי"},
	FieldHandledBy:       {"בטיפול"},
}

var requiredFields = []Field{FieldFileNumber, FieldPropertyAddress, FieldTenantName}

const addressMarker = "כתובת"

// Layout maps each field to its column index.
type Layout map[Field]int

// PositionalLayout is the column order of the lease summary sheet, used
// only when no header row is present.
var PositionalLayout = Layout{
	FieldFileNumber:      2,
	FieldPropertyAddress: 3,
	FieldApartmentNumber: 4,
	FieldFloor:           5,
	FieldRoomCount:       6,
	FieldTenantName:      7,
	FieldTenantEmail:     8,
	FieldTenantPhone:     9,
	FieldStartDate:       10,
	FieldEndDate:         11,
	FieldMonthlyRent:     12,
	FieldNotes:           13,
}

// SchemaError names the required fields a header row could not supply.
type SchemaError struct {
	Row     int
	Missing []Field
}

func (e *SchemaError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = f.String()
	}
	return fmt.Sprintf("%v (header row %d, missing %s)", ErrSchemaMismatch, e.Row, strings.Join(names, ", "))
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

type aliasEntry struct {
	field Field
	alias string
}

// quotes maps Hebrew geresh and gershayim to the ASCII quotes the aliases
// are written with.
var quotes = strings.NewReplacer("״", `"`, "׳", "'")

// headerText is the cleaned cell text header labels are compared against.
func headerText(cell string) string {
	return quotes.Replace(normalize.CleanText(cell))
}

// aliasesByLength puts longer labels first so "מייל שוכרים" wins over "שוכרים".
var aliasesByLength = func() []aliasEntry {
	var entries []aliasEntry
	for f, aliases := range headerAliases {
		for _, a := range aliases {
			entries = append(entries, aliasEntry{field: f, alias: quotes.Replace(a)})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		li, lj := len([]rune(entries[i].alias)), len([]rune(entries[j].alias))
		if li != lj {
			return li > lj
		}
		if entries[i].field != entries[j].field {
			return entries[i].field < entries[j].field
		}
		return entries[i].alias < entries[j].alias
	})
	return entries
}()

// IsLeaseHeader reports whether the row carries both a file-number and an
// address label.
func IsLeaseHeader(row types.Row) bool {
	text := quotes.Replace(normalize.CleanText(rowText(row)))
	for _, e := range aliasesByLength {
		if e.field == FieldFileNumber && strings.Contains(text, e.alias) {
			return strings.Contains(text, addressMarker)
		}
	}
	return false
}

// MapHeader builds a layout from a header row. A cell that equals a label
// claims its field first, so "חלק שלנו" beats "חלק שלנו (כסף)" wherever the
// two sit. Remaining cells go by the longest label they contain, leftmost
// column first.
func MapHeader(header types.Row) Layout {
	layout := Layout{}
	texts := make([]string, len(header))
	claimed := make([]bool, len(header))
	for col, cell := range header {
		texts[col] = headerText(cell)
	}

	for col, text := range texts {
		if text == "" {
			continue
		}
		for _, e := range aliasesByLength {
			if text != e.alias {
				continue
			}
			if _, taken := layout[e.field]; !taken {
				layout[e.field] = col
				claimed[col] = true
			}
			break
		}
	}

	for col, text := range texts {
		if text == "" || claimed[col] {
			continue
		}
		for _, e := range aliasesByLength {
			if strings.Contains(text, e.alias) {
				if _, taken := layout[e.field]; !taken {
					layout[e.field] = col
				}
				break
			}
		}
	}
	return layout
}

func (l Layout) missing() []Field {
	var out []Field
	for _, f := range requiredFields {
		if _, ok := l[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

func (l Layout) cell(row types.Row, f Field) string {
	col, ok := l[f]
	if !ok {
		return ""
	}
	return row.Cell(col)
}

// Leases reads the lease rows that follow the header row.
func (c *Classifier) Leases(rows []types.Row, progress func(done int)) ([]types.LeaseRecord, Stats, error) {
	var stats Stats

	headerIdx := -1
	for i, row := range rows {
		if IsLeaseHeader(row) {
			headerIdx = i
			break
		}
	}

	var layout Layout
	start := headerIdx + 1
	switch {
	case headerIdx >= 0:
		layout = MapHeader(rows[headerIdx])
		if missing := layout.missing(); len(missing) > 0 {
			return nil, stats, &SchemaError{Row: headerIdx + 1, Missing: missing}
		}
		c.log.Debug().Int("row", headerIdx+1).Int("columns", len(layout)).Msg("lease header mapped")
	case c.cfg.PositionalFallback:
		c.log.Warn().Msg("no lease header row; reading columns by position")
		layout = PositionalLayout
		start = 0
	default:
		return nil, stats, ErrNoHeader
	}

	var leases []types.LeaseRecord
	for i := start; i < len(rows); i++ {
		if progress != nil {
			progress(i + 1)
		}
		row := rows[i]
		if isBlank(row) || IsLeaseHeader(row) {
			continue
		}
		stats.RowsRead++

		rec, err := c.lease(i+1, row, layout)
		stats.record(err, c.log)
		if err != nil {
			continue
		}
		c.log.Debug().Int("row", i+1).Str("fileNumber", rec.FileNumber).Str("tenant", rec.TenantName).Msg("lease row")
		leases = append(leases, rec)
	}

	return leases, stats, nil
}

func (c *Classifier) lease(rowNum int, row types.Row, layout Layout) (types.LeaseRecord, error) {
	fileNumber, err := requireText(rowNum, FieldFileNumber.String(), layout.cell(row, FieldFileNumber))
	if err != nil {
		return types.LeaseRecord{}, err
	}
	if c.cfg.RequireSlash && !strings.Contains(fileNumber, "/") {
		return types.LeaseRecord{}, errSkip
	}

	address, err := requireText(rowNum, FieldPropertyAddress.String(), layout.cell(row, FieldPropertyAddress))
	if err != nil {
		return types.LeaseRecord{}, err
	}

	tenant, err := requireText(rowNum, FieldTenantName.String(), layout.cell(row, FieldTenantName))
	if err != nil {
		return types.LeaseRecord{}, err
	}

	text := func(f Field) string { return normalize.CleanText(layout.cell(row, f)) }
	date := func(f Field) string {
		return normalize.ParseWorkbookDate(layout.cell(row, f), c.cfg.YearPivot, c.cfg.Date1904)
	}

	return types.LeaseRecord{
		FileNumber:      fileNumber,
		PropertyAddress: address,
		ApartmentNumber: text(FieldApartmentNumber),
		Floor:           text(FieldFloor),
		RoomCount:       text(FieldRoomCount),
		TenantName:      tenant,
		TenantEmail:     text(FieldTenantEmail),
		TenantPhone:     text(FieldTenantPhone),
		StartDate:       date(FieldStartDate),
		EndDate:         date(FieldEndDate),
		MonthlyRent:     normalize.CleanNumeric(layout.cell(row, FieldMonthlyRent)),
		Notes:           text(FieldNotes),
		Extensions: types.LeaseExtensions{
			OurShare:      normalize.CleanNumeric(layout.cell(row, FieldOurShare)),
			Insurance:     text(FieldInsurance),
			ArnonaNumber:  text(FieldArnonaNumber),
			ElectricMeter: text(FieldElectricMeter),
			Sequential:    text(FieldSequential),
			HandledBy:     text(FieldHandledBy),
		},
	}, nil
}
