package normalize

import (
	"regexp"
	"strings"
)

var (
	gushPattern  = regexp.MustCompile(`גוש\s+(\d+)`)
	helkaPattern = regexp.MustCompile(`חלקה?\s+([\d/\.]+)`)

	numberPrefix   = regexp.MustCompile(`^(\d+)\.\s*`)
	mortgageAmount = regexp.MustCompile(`([\d,]+)\s*₪`)
	bareInteger    = regexp.MustCompile(`^\d+$`)
)

// CityAlias maps an address substring to the canonical city name.
type CityAlias struct {
	Key  string
	City string
}

// Cities is checked in order; the first key found in the address wins.
var Cities = []CityAlias{
	{"רמת גן", "רמת גן"},
	{`ר"ג`, "רמת גן"},
	{"פתח תקווה", "פתח תקווה"},
	{`פ"ת`, "פתח תקווה"},
	{"תל אביב", "תל אביב"},
	{`ת"א`, "תל אביב"},
	{"גבעתיים", "גבעתיים"},
	{"ירושלים", "ירושלים"},
	{"חדרה", "חדרה"},
	{"רחובות", "רחובות"},
	{"גני תקווה", "גני תקווה"},
	{"רעננה", "רעננה"},
	{"לוד", "לוד"},
	{"בני ברק", "בני ברק"},
	{`ז"ט`, "זכרון יעקב תל אביב"},
	{"לייפציג", "לייפציג"},
}

// BankRule resolves a mortgage bank from any of its keywords.
type BankRule struct {
	Keywords []string
	Bank     string
}

// Banks is checked in priority order.
var Banks = []BankRule{
	{Keywords: []string{"לאומי"}, Bank: "בנק לאומי"},
	{Keywords: []string{"מרכנתיל", "דיסקונט"}, Bank: "בנק מרכנתיל דיסקונט"},
	{Keywords: []string{"בלמ", "מזרחי"}, Bank: "בנק מזרחי טפחות"},
}

var MortgageKeywords = []string{"משועבד", "הלוואה"}

// ExtractGushHelka pulls land-registry block and parcel numbers from free
// text. Missing parts come back as "".
func ExtractGushHelka(text string) (gush, helka string) {
	if m := gushPattern.FindStringSubmatch(text); m != nil {
		gush = m[1]
	}
	if m := helkaPattern.FindStringSubmatch(text); m != nil {
		helka = m[1]
	}
	return gush, helka
}

// LookupCity returns the first city whose key appears in address, or fallback.
func LookupCity(address, fallback string) string {
	for _, c := range Cities {
		if strings.Contains(address, c.Key) {
			return c.City
		}
	}
	return fallback
}

// HasMortgage reports whether text mentions a lien or a loan.
func HasMortgage(text string) bool {
	return ContainsAny(text, MortgageKeywords)
}

// ResolveBank returns the lending bank named in text, or "".
func ResolveBank(text string) string {
	for _, b := range Banks {
		if ContainsAny(text, b.Keywords) {
			return b.Bank
		}
	}
	return ""
}

// MortgageAmount looks for a "1,234 ₪" figure in text, then for a bare
// integer among the fallback cells.
func MortgageAmount(text string, fallback []string) *float64 {
	if m := mortgageAmount.FindStringSubmatch(text); m != nil {
		if v := CleanNumeric(m[1]); v != nil {
			return v
		}
	}
	for _, cell := range fallback {
		amt := strings.TrimSpace(strings.NewReplacer(",", "", "₪", "").Replace(cell))
		if bareInteger.MatchString(amt) {
			return CleanNumeric(amt)
		}
	}
	return nil
}

// SplitNumberPrefix separates a leading "12." list number from a description.
func SplitNumberPrefix(desc string) (number, rest string) {
	m := numberPrefix.FindStringSubmatch(desc)
	if m == nil {
		return "", desc
	}
	return m[1], desc[len(m[0]):]
}

// HasNumberPrefix reports whether desc starts with a "12." list number.
func HasNumberPrefix(desc string) bool {
	return numberPrefix.MatchString(desc)
}
