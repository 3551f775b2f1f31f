package revenue

import (
	"regexp"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/models"
)

// productNames maps the three-digit product codes used on check stubs.
var productNames = map[string]string{
	"100": "OIL", "101": "OIL", "102": "CONDENSATE",
	"200": "GAS", "201": "GAS", "202": "RESIDUE GAS", "203": "CASINGHEAD GAS",
	"300": "PLANT PRODUCTS", "301": "NGL", "400": "CONDENSATE",
}

func productCodeFor(name string) string {
	switch name {
	case "OIL":
		return "101"
	case "GAS", "NATURAL GAS":
		return "201"
	case "RESIDUE GAS":
		return "202"
	case "CASINGHEAD GAS":
		return "203"
	case "NGL", "NATURAL GAS LIQUIDS", "PLANT PRODUCTS", "PLANT PRODUCT":
		return "300"
	case "CONDENSATE", "DRIP":
		return "400"
	}
	return ""
}

var (
	productCodeRe     = regexp.MustCompile(`^\d{3}$`)
	monthYearTokenRe  = regexp.MustCompile(`^(?:\d{1,2}/\d{2}(?:\d{2})?|\d{4}-\d{2}|[A-Za-z]{3}-?\d{2}(?:\d{2})?)$`)
	legacySkipLineRe  = regexp.MustCompile(`(?i)^\s*(?:total|subtotal|sub-total|check\s+total|owner\s+total|property\s+total|report\s+total|grand\s+total|page\s+\d+|continued|legend|product\s+codes?|interest\s+type\s+codes?|tax\s+codes?|deduct(?:ion)?\s+codes?|remit|please\s+|questions|\*+|-{3,}|=+)`)
	legacyHeaderRowRe = regexp.MustCompile(`(?i)^\s*(?:prod(?:uction)?\s+date|sale\s+date|property\s+(?:name|number|no)|date\s+prod)\b`)
)

// Row codes on EnergyLink statements and the fields that follow each.
const (
	rowRevenue   = "RI"
	rowSeverance = "SV"
	rowDeduct    = "10"
)

// energyLinkArity lists, per row code, the numeric fields that follow the
// date, product code and row code.
var energyLinkArity = map[string][]ColumnKey{
	rowRevenue:   {ColGrossVolume, ColAvgPrice, ColGrossValue, ColDecimalInterest, ColOwnerVolume, ColOwnerValue, ColOwnerNet},
	rowSeverance: {ColGrossValue, ColOwnerTax},
	rowDeduct:    {ColGrossValue, ColOwnerDeduct},
}

type token struct {
	text         string
	propertyNum  string
	propertyName string
}

// ParseEnergyLink reads EnergyLink statements as a token stream. A row
// starts at a month-year token followed by a three-digit product code and
// a row code, and consumes a fixed number of following tokens for that
// code. Tokens missing at the end of a row leave their fields nil.
func ParseEnergyLink(lines []string) []models.RevenueRow {
	tokens := tokenize(lines)
	var rows []models.RevenueRow

	for i := 0; i < len(tokens); {
		if !isRowAnchor(tokens, i) {
			i++
			continue
		}
		date, _ := SalesMonth(tokens[i].text)
		code := tokens[i+1].text
		rowCode := strings.ToUpper(tokens[i+2].text)
		fields := energyLinkArity[rowCode]
		i += 3

		values := make([]*float64, len(fields))
		for f := range fields {
			if i >= len(tokens) || isRowAnchor(tokens, i) {
				break
			}
			values[f] = ParseAmount(tokens[i].text)
			i++
		}

		switch rowCode {
		case rowRevenue:
			r := models.RevenueRow{
				PropertyNumber: tokens[i-1].propertyNum,
				PropertyName:   tokens[i-1].propertyName,
				SalesDate:      date,
				ProductCode:    code,
				ProductName:    productNames[code],
				InterestType:   rowRevenue,
			}
			assign(&r, fields, values)
			rows = append(rows, r)
		case rowSeverance, rowDeduct:
			target := findRow(rows, date, code)
			if target == nil {
				rows = append(rows, models.RevenueRow{
					PropertyNumber: tokens[i-1].propertyNum,
					PropertyName:   tokens[i-1].propertyName,
					SalesDate:      date,
					ProductCode:    code,
					ProductName:    productNames[code],
				})
				target = &rows[len(rows)-1]
			}
			amount := abs(values[len(values)-1])
			if amount == nil {
				continue
			}
			if rowCode == rowSeverance {
				addAmount(&target.OwnerTaxAmount, *amount)
				target.TaxType = joinCode(target.TaxType, rowSeverance)
			} else {
				addAmount(&target.OwnerDeductAmount, *amount)
				target.DeductCode = joinCode(target.DeductCode, rowDeduct)
			}
		}
	}
	return rows
}

// tokenize splits non-skipped lines into tokens tagged with the property
// context in force when they were read.
func tokenize(lines []string) []token {
	var out []token
	var num, name string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if m := propertyHeaderRe.FindStringSubmatch(line); m != nil {
			num, name = m[1], strings.TrimSpace(m[2])
			continue
		}
		if line == "" || legacySkipLineRe.MatchString(line) || legacyHeaderRowRe.MatchString(line) {
			continue
		}
		for _, f := range strings.Fields(line) {
			out = append(out, token{text: f, propertyNum: num, propertyName: name})
		}
	}
	return out
}

func isRowAnchor(tokens []token, i int) bool {
	if i+2 >= len(tokens) {
		return false
	}
	if !monthYearTokenRe.MatchString(tokens[i].text) || !productCodeRe.MatchString(tokens[i+1].text) {
		return false
	}
	if _, ok := SalesMonth(tokens[i].text); !ok {
		return false
	}
	_, known := energyLinkArity[strings.ToUpper(tokens[i+2].text)]
	return known
}

// findRow returns the most recent revenue row for date and product.
func findRow(rows []models.RevenueRow, date, code string) *models.RevenueRow {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].SalesDate == date && rows[i].ProductCode == code {
			return &rows[i]
		}
	}
	return nil
}

func assign(r *models.RevenueRow, fields []ColumnKey, values []*float64) {
	for i, key := range fields {
		v := values[i]
		if v == nil {
			continue
		}
		switch key {
		case ColDecimalInterest:
			r.DecimalInterest = v
		case ColAvgPrice:
			r.AvgPrice = v
		case ColGrossVolume:
			r.GrossVolume = v
		case ColGrossValue:
			r.GrossValue = v
		case ColOwnerVolume:
			r.OwnerVolume = v
		case ColOwnerValue:
			r.OwnerValue = v
		case ColOwnerTax:
			r.OwnerTaxAmount = abs(v)
		case ColOwnerDeduct:
			r.OwnerDeductAmount = abs(v)
		case ColOwnerNet:
			r.OwnerNetRevenue = v
		}
	}
}
