package types

// Row is one table row of cell text in document order.
type Row []string

// Cell returns the text of cell i, or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

type FileData struct {
	InputFile string
	Sheet     string
	Rows      []Row
	// Date1904 is set for workbooks whose serial dates count from 1904.
	Date1904 bool
}

type PropertyRecord struct {
	FileNumber     string
	Address        string
	Owner          string
	City           string
	PropertyType   string
	Status         string
	PurchasePrice  *float64
	CurrentValue   *float64
	PlotGush       string
	PlotHelka      string
	HasMortgage    bool
	MortgageBank   string
	MortgageAmount *float64
}

// LeaseExtensions holds the optional columns some lease sheets carry.
type LeaseExtensions struct {
	OurShare      *float64
	Insurance     string
	ArnonaNumber  string
	ElectricMeter string
	Sequential    string
	HandledBy     string
}

type LeaseRecord struct {
	FileNumber      string
	PropertyAddress string
	ApartmentNumber string
	Floor           string
	RoomCount       string
	TenantName      string
	TenantEmail     string
	TenantPhone     string
	StartDate       string
	EndDate         string
	MonthlyRent     *float64
	Notes           string
	Extensions      LeaseExtensions
}

type Match struct {
	Lease    LeaseRecord
	Property PropertyRecord
	Score    int
}

type SourceResult struct {
	InputFile  string
	OutputFile string
	Sheet      string
	RowsRead   int
	Extracted  int
	Skipped    int
	RowErrors  int
	Err        error
}

type ConversionResult struct {
	Properties     []PropertyRecord
	Leases         []LeaseRecord
	Matches        []Match
	PropertySource SourceResult
	LeaseSource    SourceResult
	MatchesFile    string
	OutputDir      string
}

// Empty reports whether the run produced no record at all.
func (r *ConversionResult) Empty() bool {
	return r == nil || (len(r.Properties) == 0 && len(r.Leases) == 0)
}
