package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/nconklindev/rentport/internal/normalize"
	"github.com/nconklindev/rentport/internal/types"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	PropertiesFile = "properties_from_excel.csv"
	LeasesFile     = "leases_from_excel.csv"
	MatchesFile    = "lease_property_matches.csv"
)

var PropertyColumns = []string{
	"fileNumber", "address", "owner", "city", "propertyType", "status",
	"purchasePrice", "currentValue", "plotGush", "plotHelka",
	"hasMortgage", "mortgageBank", "mortgageAmount",
}

var LeaseColumns = []string{
	"fileNumber", "propertyAddress", "apartmentNumber", "floor", "roomCount",
	"tenantName", "tenantEmail", "tenantPhone", "startDate", "endDate",
	"monthlyRent", "notes",
}

var LeaseExtensionColumns = []string{
	"ourShare", "insurance", "arnonaNumber", "electricMeter", "sequential", "handledBy",
}

var MatchColumns = []string{
	"leaseFileNumber", "leaseAddress", "tenantName", "propertyFileNumber", "propertyAddress", "score",
}

// writeCSV writes header and records as UTF-8 with a byte-order mark so
// spreadsheet tools detect the encoding of Hebrew text.
func writeCSV(outputFile string, header []string, records [][]string) (err error) {
	outFile, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := outFile.Close(); err == nil {
			err = cerr
		}
	}()

	bom := transform.NewWriter(outFile, unicode.UTF8BOM.NewEncoder())

	writer := csv.NewWriter(bom)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return bom.Close()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func PropertyRow(p types.PropertyRecord) []string {
	return []string{
		p.FileNumber,
		p.Address,
		p.Owner,
		p.City,
		p.PropertyType,
		p.Status,
		normalize.FormatNumber(p.PurchasePrice),
		normalize.FormatNumber(p.CurrentValue),
		p.PlotGush,
		p.PlotHelka,
		yesNo(p.HasMortgage),
		p.MortgageBank,
		normalize.FormatNumber(p.MortgageAmount),
	}
}

func LeaseRow(l types.LeaseRecord, withExtensions bool) []string {
	row := []string{
		l.FileNumber,
		l.PropertyAddress,
		l.ApartmentNumber,
		l.Floor,
		l.RoomCount,
		l.TenantName,
		l.TenantEmail,
		l.TenantPhone,
		l.StartDate,
		l.EndDate,
		normalize.FormatNumber(l.MonthlyRent),
		l.Notes,
	}
	if withExtensions {
		ext := l.Extensions
		row = append(row,
			normalize.FormatNumber(ext.OurShare),
			ext.Insurance,
			ext.ArnonaNumber,
			ext.ElectricMeter,
			ext.Sequential,
			ext.HandledBy,
		)
	}
	return row
}

// WriteProperties writes the properties import file.
func WriteProperties(outputFile string, properties []types.PropertyRecord) error {
	records := make([][]string, 0, len(properties))
	for _, p := range properties {
		records = append(records, PropertyRow(p))
	}
	return writeCSV(outputFile, PropertyColumns, records)
}

// WriteLeases writes the leases import file, optionally with the extension
// columns appended after the canonical ones.
func WriteLeases(outputFile string, leases []types.LeaseRecord, withExtensions bool) error {
	header := LeaseColumns
	if withExtensions {
		header = append(slices.Clone(LeaseColumns), LeaseExtensionColumns...)
	}

	records := make([][]string, 0, len(leases))
	for _, l := range leases {
		records = append(records, LeaseRow(l, withExtensions))
	}
	return writeCSV(outputFile, header, records)
}

func WriteMatches(outputFile string, matches []types.Match) error {
	records := make([][]string, 0, len(matches))
	for _, m := range matches {
		records = append(records, []string{
			m.Lease.FileNumber,
			m.Lease.PropertyAddress,
			m.Lease.TenantName,
			m.Property.FileNumber,
			m.Property.Address,
			strconv.Itoa(m.Score),
		})
	}
	return writeCSV(outputFile, MatchColumns, records)
}

// ReadProperties loads a properties file written by WriteProperties.
// Empty numeric cells come back as nil.
func ReadProperties(inputFile string) ([]types.PropertyRecord, error) {
	file, err := os.Open(inputFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(transform.NewReader(file, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: empty file", inputFile)
		}
		return nil, err
	}
	if !slices.Equal(header, PropertyColumns) {
		return nil, fmt.Errorf("%s: unexpected columns %v", inputFile, header)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	properties := make([]types.PropertyRecord, 0, len(records))
	for _, r := range records {
		properties = append(properties, types.PropertyRecord{
			FileNumber:     r[0],
			Address:        r[1],
			Owner:          r[2],
			City:           r[3],
			PropertyType:   r[4],
			Status:         r[5],
			PurchasePrice:  normalize.CleanNumeric(r[6]),
			CurrentValue:   normalize.CleanNumeric(r[7]),
			PlotGush:       r[8],
			PlotHelka:      r[9],
			HasMortgage:    r[10] == "yes",
			MortgageBank:   r[11],
			MortgageAmount: normalize.CleanNumeric(r[12]),
		})
	}
	return properties, nil
}
