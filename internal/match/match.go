package match

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nconklindev/rentport/internal/normalize"
	"github.com/nconklindev/rentport/internal/types"
)

// DefaultMinScore is the lowest score still reported as a match.
const DefaultMinScore = 50

const (
	ScoreExact     = 100
	ScoreStreet    = 90
	ScoreContained = 70
	ScoreWords     = 50
)

var (
	abbreviations = strings.NewReplacer(`ת"א`, "תל אביב", "ת״א", "תל אביב")
	punctuation   = strings.NewReplacer(`"`, "", "'", "", "״", "", "׳", "", ",", "")
	streetNumber  = regexp.MustCompile(`^([א-ת\s]+?)\s*(\d+)`)
)

// Normalize prepares an address for comparison: abbreviations expanded,
// quotes and commas removed, whitespace collapsed.
func Normalize(address string) string {
	s := normalize.Collapse(address)
	s = abbreviations.Replace(s)
	s = punctuation.Replace(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func splitStreet(addr string) (street, number string, ok bool) {
	m := streetNumber.FindStringSubmatch(addr)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}

// Score rates how likely two addresses name the same place, from 0 to 100.
func Score(leaseAddress, propertyAddress string) int {
	a, b := Normalize(leaseAddress), Normalize(propertyAddress)
	if a == "" || b == "" {
		return 0
	}

	streetA, numA, okA := splitStreet(a)
	streetB, numB, okB := splitStreet(b)
	if okA && okB && numA == numB {
		if streetA == streetB {
			return ScoreExact
		}
		if strings.Contains(streetA, streetB) || strings.Contains(streetB, streetA) {
			return ScoreStreet
		}
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return ScoreContained
	}

	if commonWords(a, b) >= 2 {
		return ScoreWords
	}
	return 0
}

func commonWords(a, b string) int {
	other := make(map[string]bool)
	for _, w := range strings.Fields(b) {
		other[w] = true
	}
	n := 0
	for _, w := range strings.Fields(a) {
		if utf8.RuneCountInString(w) > 2 && other[w] {
			n++
		}
	}
	return n
}

// Best returns the highest-scoring property for a lease. Ties keep the
// earlier property.
func Best(lease types.LeaseRecord, properties []types.PropertyRecord) (types.PropertyRecord, int) {
	var (
		best      types.PropertyRecord
		bestScore int
	)
	for _, p := range properties {
		if s := Score(lease.PropertyAddress, p.Address); s > bestScore {
			best, bestScore = p, s
		}
	}
	return best, bestScore
}

// Match pairs each lease with its best property when the score reaches
// minScore. Leases without a good candidate are left out.
func Match(leases []types.LeaseRecord, properties []types.PropertyRecord, minScore int) []types.Match {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}

	var matches []types.Match
	for _, l := range leases {
		p, score := Best(l, properties)
		if score >= minScore {
			matches = append(matches, types.Match{Lease: l, Property: p, Score: score})
		}
	}
	return matches
}
