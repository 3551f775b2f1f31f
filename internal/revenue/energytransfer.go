package revenue

import (
	"regexp"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/models"
)

var energyTransferRowRe = regexp.MustCompile(`^\s*(\d+-\d+)\s+(.*)$`)

// energyTransferFields is the column order after the sales date.
var energyTransferFields = []ColumnKey{
	ColProduct, ColInterestType, ColDecimalInterest, ColGrossVolume, ColAvgPrice,
	ColGrossValue, ColOwnerVolume, ColOwnerValue, ColOwnerTax, ColOwnerDeduct, ColOwnerNet,
}

// ParseEnergyTransfer reads whitespace-tabular statements. Each row starts
// with a property number like 12345-001, followed by the property name,
// the sales date, and the fixed energyTransferFields order. Fields missing
// at the end of a line stay nil.
func ParseEnergyTransfer(lines []string) []models.RevenueRow {
	var rows []models.RevenueRow
	for _, line := range lines {
		if legacySkipLineRe.MatchString(line) || legacyHeaderRowRe.MatchString(line) {
			continue
		}
		m := energyTransferRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if r, ok := energyTransferRow(m[1], strings.Fields(m[2])); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

func energyTransferRow(number string, tokens []string) (models.RevenueRow, bool) {
	dateAt := -1
	for i, t := range tokens {
		if _, ok := SalesMonth(t); ok {
			dateAt = i
			break
		}
	}
	if dateAt < 0 {
		return models.RevenueRow{}, false
	}

	r := models.RevenueRow{
		PropertyNumber: number,
		PropertyName:   strings.Join(tokens[:dateAt], " "),
	}
	r.SalesDate, _ = SalesMonth(tokens[dateAt])

	rest := tokens[dateAt+1:]
	values := make([]*float64, len(energyTransferFields))
	for i, key := range energyTransferFields {
		if i >= len(rest) {
			break
		}
		switch key {
		case ColProduct:
			setProduct(&r, rest[i])
		case ColInterestType:
			r.InterestType = strings.ToUpper(rest[i])
		default:
			values[i] = ParseAmount(rest[i])
		}
	}
	assign(&r, energyTransferFields, values)
	return r, true
}

func setProduct(r *models.RevenueRow, tok string) {
	tok = strings.ToUpper(tok)
	if productCodeRe.MatchString(tok) {
		r.ProductCode = tok
		r.ProductName = productNames[tok]
		return
	}
	r.ProductName = tok
	r.ProductCode = productCodeFor(tok)
}
