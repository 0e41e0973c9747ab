// Package normalize holds the cleaning and lookup rules shared by every
// source reader and extractor.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const MaxAddressLength = 200

var errorMarkers = []string{"#ERROR!", "#REF!", "#VALUE!", "#N/A", "#DIV/0!", "#NAME?", "#NUM!", "#NULL!"}

// IsErrorMarker reports whether s is a spreadsheet formula error value.
func IsErrorMarker(s string) bool {
	s = strings.TrimSpace(s)
	for _, m := range errorMarkers {
		if strings.EqualFold(s, m) {
			return true
		}
	}
	return false
}

// ContainsErrorMarker reports whether s contains a spreadsheet error value anywhere.
func ContainsErrorMarker(s string) bool {
	upper := strings.ToUpper(s)
	for _, m := range errorMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

// StripBidi removes directional marks (LRM, RLM and friends) that Hebrew
// exports sprinkle into cell text.
func StripBidi(s string) string {
	out, _, err := transform.String(runes.Remove(runes.In(unicode.Bidi_Control)), s)
	if err != nil {
		return s
	}
	return out
}

// Collapse removes bidi marks and squeezes whitespace runs to single spaces.
func Collapse(s string) string {
	return strings.Join(strings.Fields(StripBidi(s)), " ")
}

// CleanText is Collapse with error markers mapped to "".
func CleanText(s string) string {
	s = Collapse(s)
	if IsErrorMarker(s) {
		return ""
	}
	return s
}

// CleanNumeric strips thousands separators and the shekel sign and parses the
// rest as a float. Empty, error and unparseable input yields nil.
func CleanNumeric(s string) *float64 {
	s = StripBidi(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "₪", "")
	s = strings.TrimSpace(s)
	if s == "" || IsErrorMarker(s) {
		return nil
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return nil
	}
	return &val
}

// FormatNumber renders a nullable number the way the import CSVs expect:
// no exponent, no trailing zeros, "" for nil.
func FormatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// TruncateRunes cuts s to at most n characters without splitting a rune.
func TruncateRunes(s string, n int) string {
	if n < 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ContainsAny reports whether s contains any of the needles.
func ContainsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}
