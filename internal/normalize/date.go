package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DefaultYearPivot maps two-digit years below 50 to 20xx and the rest to 19xx.
const DefaultYearPivot = 50

// Serial day numbers outside this window are treated as plain numbers,
// not dates (roughly 1927 to 2173).
const (
	minExcelSerial = 10000
	maxExcelSerial = 100000
)

var (
	dayFirstDate = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{2}|\d{4})$`)
	isoDate      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	excelSerial  = regexp.MustCompile(`^\d{5}(\.\d+)?$`)
)

// ExpandYear turns a two-digit year into a four-digit one around pivot.
func ExpandYear(yy, pivot int) int {
	if yy < pivot {
		return 2000 + yy
	}
	return 1900 + yy
}

// ParseDate normalizes a cell to YYYY-MM-DD.
//
// Accepted: D.M.YY, D.M.YYYY, D/M/YY, D/M/YYYY, YYYY-MM-DD and Excel serial
// day numbers. Empty cells and error markers yield "". Anything else is
// returned unchanged so the importer can show it to a human.
func ParseDate(value string, pivot int) string {
	return ParseWorkbookDate(value, pivot, false)
}

// ParseWorkbookDate is ParseDate for cells of a workbook whose serial dates
// may use the 1904 date system.
func ParseWorkbookDate(value string, pivot int, date1904 bool) string {
	s := strings.TrimSpace(StripBidi(value))
	if s == "" || ContainsErrorMarker(s) {
		return ""
	}

	if m := dayFirstDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year = ExpandYear(year, pivot)
		}
		if out, ok := formatDate(year, month, day); ok {
			return out
		}
		return s
	}

	if m := isoDate.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if out, ok := formatDate(year, month, day); ok {
			return out
		}
		return s
	}

	if excelSerial.MatchString(s) {
		serial, err := strconv.ParseFloat(s, 64)
		if err == nil && serial >= minExcelSerial && serial < maxExcelSerial {
			if t, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
				return t.Format(time.DateOnly)
			}
		}
	}

	return s
}

// formatDate rejects dates that time.Date would silently roll over (31.02).
func formatDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}
