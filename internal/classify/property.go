package classify

import (
	"strconv"
	"strings"

	"github.com/nconklindev/rentport/internal/normalize"
	"github.com/nconklindev/rentport/internal/types"
)

// Column positions in the property list.
const (
	ownerCol       = 0
	descriptionCol = 1
	valueCol       = 2
)

// IsOwnerRow reports whether the row introduces a new owner.
func (c *Classifier) IsOwnerRow(row types.Row) bool {
	first := normalize.CleanText(row.Cell(ownerCol))
	return first != "" && normalize.ContainsAny(first, c.cfg.OwnerNames)
}

// IsPropertyRow reports whether the description cell is a numbered entry
// or mentions a street, apartment, plot, office or building.
func (c *Classifier) IsPropertyRow(row types.Row) bool {
	desc := normalize.CleanText(row.Cell(descriptionCol))
	if desc == "" {
		return false
	}
	return normalize.HasNumberPrefix(desc) || normalize.ContainsAny(desc, c.cfg.PropertyKeywords)
}

// Properties folds over the rows in order, carrying the current owner from
// owner rows into the property rows that follow. An owner row may itself
// describe a property.
func (c *Classifier) Properties(rows []types.Row, progress func(done int)) ([]types.PropertyRecord, Stats) {
	var (
		properties   []types.PropertyRecord
		stats        Stats
		currentOwner string
	)

	for i, row := range rows {
		if progress != nil {
			progress(i + 1)
		}
		if isBlank(row) {
			continue
		}
		stats.RowsRead++

		if c.IsOwnerRow(row) {
			currentOwner = normalize.CleanText(row.Cell(ownerCol))
			c.log.Debug().Int("row", i+1).Str("owner", currentOwner).Msg("owner row")
		}

		if !c.IsPropertyRow(row) {
			continue
		}

		owner := currentOwner
		if owner == "" {
			owner = c.cfg.DefaultOwner
		}

		rec, err := c.property(i+1, row, owner, len(properties)+1)
		stats.record(err, c.log)
		if err != nil {
			continue
		}
		c.log.Debug().Int("row", i+1).Str("fileNumber", rec.FileNumber).Str("address", rec.Address).Msg("property row")
		properties = append(properties, rec)
	}

	return properties, stats
}

func (c *Classifier) property(rowNum int, row types.Row, owner string, position int) (types.PropertyRecord, error) {
	desc, err := requireText(rowNum, "address", row.Cell(descriptionCol))
	if err != nil {
		return types.PropertyRecord{}, err
	}

	number, rest := normalize.SplitNumberPrefix(desc)
	if number == "" {
		number = strconv.Itoa(position)
	}
	address := normalize.TruncateRunes(strings.TrimSpace(rest), normalize.MaxAddressLength)
	if address == "" {
		return types.PropertyRecord{}, errSkip
	}

	value := normalize.CleanNumeric(row.Cell(valueCol))
	gush, helka := normalize.ExtractGushHelka(rowText(row))

	rec := types.PropertyRecord{
		FileNumber:    number,
		Address:       address,
		Owner:         owner,
		City:          normalize.LookupCity(address, c.cfg.DefaultCity),
		PropertyType:  PropertyTypeResidential,
		Status:        StatusOwned,
		PurchasePrice: value,
		CurrentValue:  copyFloat(value),
		PlotGush:      gush,
		PlotHelka:     helka,
	}

	if text := rowText(row); normalize.HasMortgage(text) {
		rec.HasMortgage = true
		rec.MortgageBank = normalize.ResolveBank(text)
		rec.MortgageAmount = normalize.MortgageAmount(amountText(row), fallbackAmountCells(row))
	}

	return rec, nil
}

// amountText is the row without the value cell, so the property's own price
// is never read as the loan amount.
func amountText(row types.Row) string {
	parts := make([]string, 0, len(row))
	for i, cell := range row {
		if i == valueCol {
			continue
		}
		parts = append(parts, cell)
	}
	return strings.Join(parts, " ")
}

func fallbackAmountCells(row types.Row) []string {
	var cells []string
	for i := valueCol + 1; i <= valueCol+3; i++ {
		cells = append(cells, row.Cell(i))
	}
	return cells
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
