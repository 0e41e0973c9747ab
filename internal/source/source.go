package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/rentport/internal/normalize"
	"github.com/nconklindev/rentport/internal/types"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmpty           = errors.New("no rows found")
	ErrSheetNotFound   = errors.New("sheet not found")
)

// LeaseSheetKeywords pick the lease sheet out of a multi-sheet workbook.
var LeaseSheetKeywords = []string{"שכירות", "כללי"}

type Options struct {
	// Sheet forces a sheet by name for workbooks.
	Sheet string
	// SheetKeywords selects the first sheet whose name contains one of them.
	// The first sheet is used when nothing matches.
	SheetKeywords []string
}

// ReadFileData reads every row of a tabular file in document order.
func ReadFileData(filePath string, opts Options) (*types.FileData, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	var (
		data *types.FileData
		err  error
	)
	switch ext {
	case ".csv":
		data, err = readCSVData(filePath)
	case ".xlsx", ".xlsm":
		data, err = readXLSXData(filePath, opts)
	case ".html", ".htm":
		data, err = readHTMLData(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if err != nil {
		return nil, err
	}

	if len(data.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filePath), ErrEmpty)
	}
	data.InputFile = filePath
	return data, nil
}

func readCSVData(filePath string) (*types.FileData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// Spreadsheet tools save CSV with a BOM; drop it before the csv reader sees it.
	decoded := transform.NewReader(file, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return &types.FileData{Rows: toRows(records)}, nil
}

func readXLSXData(filePath string, opts Options) (*types.FileData, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetName, err := pickSheet(f.GetSheetList(), opts)
	if err != nil {
		return nil, err
	}

	// Raw values keep dates as serial numbers and amounts without
	// locale formatting; normalize handles both.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("read workbook properties: %w", err)
	}

	return &types.FileData{
		Sheet:    sheetName,
		Rows:     toRows(rows),
		Date1904: props.Date1904 != nil && *props.Date1904,
	}, nil
}

func pickSheet(sheets []string, opts Options) (string, error) {
	if len(sheets) == 0 {
		return "", ErrEmpty
	}

	if opts.Sheet != "" {
		for _, name := range sheets {
			if name == opts.Sheet {
				return name, nil
			}
		}
		return "", fmt.Errorf("%w: %q", ErrSheetNotFound, opts.Sheet)
	}

	for _, name := range sheets {
		if normalize.ContainsAny(name, opts.SheetKeywords) {
			return name, nil
		}
	}
	return sheets[0], nil
}

func toRows(records [][]string) []types.Row {
	rows := make([]types.Row, 0, len(records))
	for _, record := range records {
		row := make(types.Row, len(record))
		for i, cell := range record {
			row[i] = normalize.Collapse(cell)
		}
		rows = append(rows, row)
	}
	return rows
}
