package ui

import (
	"fmt"
	"strings"

	"github.com/nconklindev/rentport/internal/normalize"
	"github.com/nconklindev/rentport/internal/types"
)

// SampleSize is how many records of each kind the summary shows.
const SampleSize = 3

// RenderSummary formats a finished run for the terminal. Paths longer than
// maxPath are shortened from the left.
func RenderSummary(result *types.ConversionResult, maxPath int) string {
	var s strings.Builder

	if result.Empty() {
		s.WriteString(ErrorStyle.Render("✗ No records were produced"))
	} else {
		s.WriteString(TitleStyle.Render("✓ Conversion Complete!"))
	}
	s.WriteString("\n\n")

	if result == nil {
		return s.String()
	}

	if result.PropertySource.InputFile != "" {
		writeSource(&s, "Properties", result.PropertySource, maxPath)
		for i, p := range result.Properties {
			if i == SampleSize {
				break
			}
			line := fmt.Sprintf("  #%s %s · %s · %s", p.FileNumber, p.Address, p.Owner, p.City)
			if v := normalize.FormatNumber(p.CurrentValue); v != "" {
				line += " · " + v
			}
			if p.HasMortgage {
				line += " · mortgage " + p.MortgageBank
			}
			s.WriteString(SampleStyle.Render(line))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	if result.LeaseSource.InputFile != "" {
		writeSource(&s, "Leases", result.LeaseSource, maxPath)
		for i, l := range result.Leases {
			if i == SampleSize {
				break
			}
			line := fmt.Sprintf("  #%s %s · %s", l.FileNumber, l.PropertyAddress, l.TenantName)
			if l.StartDate != "" || l.EndDate != "" {
				line += fmt.Sprintf(" · %s to %s", l.StartDate, l.EndDate)
			}
			s.WriteString(SampleStyle.Render(line))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	if result.MatchesFile != "" {
		s.WriteString(SuccessStyle.Render(fmt.Sprintf("Matched %d of %d leases to properties", len(result.Matches), len(result.Leases))))
		s.WriteString("\n")
		s.WriteString(fmt.Sprintf("Output: %s\n", truncatePath(result.MatchesFile, maxPath)))
	}

	return s.String()
}

func writeSource(s *strings.Builder, label string, src types.SourceResult, maxPath int) {
	s.WriteString(SelectedStyle.Render(label))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Input:  %s", truncatePath(src.InputFile, maxPath)))
	if src.Sheet != "" {
		s.WriteString(fmt.Sprintf(" [%s]", src.Sheet))
	}
	s.WriteString("\n")

	if src.Err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Failed: %v", src.Err)))
		s.WriteString("\n")
		return
	}

	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s", truncatePath(src.OutputFile, maxPath))))
	s.WriteString("\n")
	counts := fmt.Sprintf("Rows read: %d • extracted: %d • skipped: %d • row errors: %d",
		src.RowsRead, src.Extracted, src.Skipped, src.RowErrors)
	if src.RowErrors > 0 {
		counts = WarnStyle.Render(counts)
	}
	s.WriteString(counts)
	s.WriteString("\n")
}
