package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nconklindev/rentport/internal/types"
)

func ptr(v float64) *float64 { return &v }

func readRaw(t *testing.T, path string) (bom bool, records [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	bom = bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	records, err = csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return bom, records
}

func TestWriteProperties(t *testing.T) {
	path := filepath.Join(t.TempDir(), PropertiesFile)
	properties := []types.PropertyRecord{
		{
			FileNumber:     "7",
			Address:        `הרוא"ה 295, רמת גן`,
			Owner:          "יצחק נטוביץ",
			City:           "רמת גן",
			PropertyType:   "RESIDENTIAL",
			Status:         "OWNED",
			PurchasePrice:  ptr(2400000),
			CurrentValue:   ptr(2400000),
			PlotGush:       "6123",
			PlotHelka:      "56/7",
			HasMortgage:    true,
			MortgageBank:   "בנק לאומי",
			MortgageAmount: ptr(450000),
		},
		{
			FileNumber:   "2",
			Address:      "דירה ברחוב הרצל 57",
			Owner:        "ליאת נטוביץ",
			City:         "Israel",
			PropertyType: "RESIDENTIAL",
			Status:       "OWNED",
		},
	}

	if err := WriteProperties(path, properties); err != nil {
		t.Fatalf("WriteProperties() error = %v", err)
	}

	bom, records := readRaw(t, path)
	if !bom {
		t.Error("expected UTF-8 byte-order mark")
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if !slices.Equal(records[0], PropertyColumns) {
		t.Errorf("header = %v", records[0])
	}

	want := []string{"7", `הרוא"ה 295, רמת גן`, "יצחק נטוביץ", "רמת גן", "RESIDENTIAL", "OWNED",
		"2400000", "2400000", "6123", "56/7", "yes", "בנק לאומי", "450000"}
	if !slices.Equal(records[1], want) {
		t.Errorf("row 1 = %v, want %v", records[1], want)
	}
	if got := records[2]; got[6] != "" || got[7] != "" || got[10] != "no" || got[12] != "" {
		t.Errorf("row 2 = %v, want empty numbers and hasMortgage=no", got)
	}
}

func TestWriteProperties_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), PropertiesFile)
	if err := WriteProperties(path, nil); err != nil {
		t.Fatalf("WriteProperties() error = %v", err)
	}
	_, records := readRaw(t, path)
	if len(records) != 1 {
		t.Errorf("got %d records, want header only", len(records))
	}
}

func TestWriteLeases(t *testing.T) {
	lease := types.LeaseRecord{
		FileNumber:      "12/3",
		PropertyAddress: "ביאליק 10, רמת גן",
		ApartmentNumber: "4",
		TenantName:      "ישראל ישראלי",
		StartDate:       "2025-02-01",
		EndDate:         "2026-01-31",
		MonthlyRent:     ptr(5500.5),
		Notes:           "כולל חניה",
		Extensions: types.LeaseExtensions{
			OurShare:  ptr(2750),
			Insurance: "כן",
			HandledBy: "מיכל",
		},
	}

	tests := []struct {
		name           string
		withExtensions bool
		wantCols       int
	}{
		{"canonical", false, len(LeaseColumns)},
		{"with extensions", true, len(LeaseColumns) + len(LeaseExtensionColumns)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), LeasesFile)
			if err := WriteLeases(path, []types.LeaseRecord{lease}, tt.withExtensions); err != nil {
				t.Fatalf("WriteLeases() error = %v", err)
			}
			_, records := readRaw(t, path)
			if len(records) != 2 {
				t.Fatalf("got %d records, want 2", len(records))
			}
			if len(records[0]) != tt.wantCols || len(records[1]) != tt.wantCols {
				t.Fatalf("got %d/%d columns, want %d", len(records[0]), len(records[1]), tt.wantCols)
			}
			if records[0][0] != "fileNumber" || records[0][11] != "notes" {
				t.Errorf("header = %v", records[0])
			}
			row := records[1]
			if row[0] != "12/3" || row[5] != "ישראל ישראלי" || row[10] != "5500.5" || row[11] != "כולל חניה" {
				t.Errorf("row = %v", row)
			}
			if tt.withExtensions {
				if records[0][12] != "ourShare" || row[12] != "2750" || row[13] != "כן" || row[17] != "מיכל" {
					t.Errorf("extension columns = %v / %v", records[0][12:], row[12:])
				}
			}
		})
	}

	if len(LeaseColumns) != 12 {
		t.Errorf("LeaseColumns was modified: %v", LeaseColumns)
	}
}

func TestWriteMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), MatchesFile)
	matches := []types.Match{{
		Lease:    types.LeaseRecord{FileNumber: "12/3", PropertyAddress: "הרצל 57", TenantName: "דנה"},
		Property: types.PropertyRecord{FileNumber: "2", Address: "דירה ברחוב הרצל 57"},
		Score:    70,
	}}
	if err := WriteMatches(path, matches); err != nil {
		t.Fatalf("WriteMatches() error = %v", err)
	}
	_, records := readRaw(t, path)
	want := []string{"12/3", "הרצל 57", "דנה", "2", "דירה ברחוב הרצל 57", "70"}
	if len(records) != 2 || !slices.Equal(records[1], want) {
		t.Errorf("records = %v, want row %v", records, want)
	}
}

func TestReadProperties_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), PropertiesFile)
	in := []types.PropertyRecord{
		{
			FileNumber:     "3",
			Address:        "מגרש, חולון",
			Owner:          "אילנה",
			City:           "חולון",
			PropertyType:   "RESIDENTIAL",
			Status:         "OWNED",
			PurchasePrice:  ptr(1250000.75),
			CurrentValue:   ptr(1250000.75),
			HasMortgage:    true,
			MortgageBank:   "מזרחי טפחות",
			MortgageAmount: ptr(320000),
		},
		{FileNumber: "4", Address: "משרד", Owner: "מיכל", City: "Israel"},
	}
	if err := WriteProperties(path, in); err != nil {
		t.Fatalf("WriteProperties() error = %v", err)
	}

	out, err := ReadProperties(path)
	if err != nil {
		t.Fatalf("ReadProperties() error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d records, want %d", len(out), len(in))
	}
	for i := range in {
		if !slices.Equal(PropertyRow(out[i]), PropertyRow(in[i])) {
			t.Errorf("record %d = %v, want %v", i, PropertyRow(out[i]), PropertyRow(in[i]))
		}
	}
	if out[1].PurchasePrice != nil || out[1].HasMortgage {
		t.Errorf("record 1 = %+v, want nil price and no mortgage", out[1])
	}
}

func TestReadProperties_Errors(t *testing.T) {
	dir := t.TempDir()

	wrong := filepath.Join(dir, "wrong.csv")
	if err := os.WriteFile(wrong, []byte("a,b,c\n1,2,3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{"unexpected columns", wrong, "unexpected columns"},
		{"empty", empty, "empty file"},
		{"missing", filepath.Join(dir, "nope.csv"), "no such file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadProperties(tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("ReadProperties() error = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}
