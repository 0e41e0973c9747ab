package match

import (
	"testing"

	"github.com/nconklindev/rentport/internal/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`הרוא"ה 295, רמת גן`, "הרואה 295 רמת גן"},
		{"  מנדלי   7,  ת\"א ", "מנדלי 7 תל אביב"},
		{"מנדלי 7, ת״א", "מנדלי 7 תל אביב"},
		{"בר-כוכבא 34", "בר-כוכבא 34"},
		{"\u200fלביא 6\u200e", "לביא 6"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		lease    string
		property string
		want     int
	}{
		{"exact after normalization", "לביא 6 רמת גן", "לביא 6, רמת גן", ScoreExact},
		{"quotes ignored", "הרואה 295", `הרוא"ה 295, רמת גן`, ScoreExact},
		{"abbreviated city", `מנדלי 7, ת"א`, "מנדלי 7, תל אביב", ScoreExact},
		{"street contained", "רחוב הרצל 57", "הרצל 57", ScoreStreet},
		{"dotted abbreviation kept", "מגדל בסר", "מגדל ב.ס.ר 3 קומה 26", 0},
		{"text contained", "גרמניה", "לייפציג, גרמניה", ScoreContained},
		{"common words", "דרך המלך גני תקווה", "דרך המלך 11, גני תקווה", ScoreWords},
		{"different house number", "שאול חרנם 6, פתח תקווה", `שאול חרנ"ם 10, פתח תקווה`, ScoreWords},
		{"short words do not count", "אב גן רמה", "גן אב 4 רמה", 0},
		{"unrelated", "לביא 6", "מנדלי 7, תל אביב", 0},
		{"empty", "", "לביא 6", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.lease, tt.property); got != tt.want {
				t.Errorf("Score(%q, %q) = %d, want %d", tt.lease, tt.property, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	properties := []types.PropertyRecord{
		{FileNumber: "1", Address: "לביא 6, רמת גן"},
		{FileNumber: "8", Address: "מנדלי 7, תל אביב"},
		{FileNumber: "25", Address: "אלנבי 85, תל אביב - מחסן"},
		{FileNumber: "26", Address: "אלנבי 85, תל אביב"},
	}
	leases := []types.LeaseRecord{
		{FileNumber: "1/1", PropertyAddress: "לביא 6 רמת גן", TenantName: "א"},
		{FileNumber: "8/2", PropertyAddress: "רחוב מנדלי 7", TenantName: "ב"},
		{FileNumber: "25/1", PropertyAddress: "אלנבי 85", TenantName: "ג"},
		{FileNumber: "99/1", PropertyAddress: "ויצמן 3, כפר סבא", TenantName: "ד"},
	}

	tests := []struct {
		name     string
		minScore int
		want     map[string]string
	}{
		{"default threshold", 0, map[string]string{"1/1": "1", "8/2": "8", "25/1": "25"}},
		{"exact only", 100, map[string]string{"1/1": "1", "25/1": "25"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(leases, properties, tt.minScore)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d matches, want %d: %+v", len(got), len(tt.want), got)
			}
			for _, m := range got {
				if want := tt.want[m.Lease.FileNumber]; m.Property.FileNumber != want {
					t.Errorf("lease %s matched property %s (score %d), want %s",
						m.Lease.FileNumber, m.Property.FileNumber, m.Score, want)
				}
			}
		})
	}
}

func TestBest_NoProperties(t *testing.T) {
	p, score := Best(types.LeaseRecord{PropertyAddress: "לביא 6"}, nil)
	if score != 0 || p.FileNumber != "" {
		t.Errorf("Best() = %+v, %d, want zero", p, score)
	}
}
