package revenue

import (
	"context"
	"regexp"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/pdftext"
)

var (
	propertyHeaderRe = regexp.MustCompile(`(?i)^(?:property|well|lease)\s*(?:#|no\.?|number|id)?\s*:?\s*([0-9][A-Z0-9-]*)\s*[-:]?\s*(.*)$`)
	interestTypeRe   = regexp.MustCompile(`(?i)\s*\binterest\s*type\s*:?\s*([A-Z]{1,4})\b`)
	productLabelRe   = regexp.MustCompile(`(?i)^(?:product\s*:?\s*)?(?:(\d{2,3})\s*[-:]?\s*)?(oil|gas|condensate|ngl|plant\s+products?|residue\s+gas|casinghead\s+gas|drip|natural\s+gas\s+liquids)\s*$`)
	adjustmentWordRe = regexp.MustCompile(`(?i)\b(?:\w*tax\w*|fees?|charges?|deduct\w*|gathering|transportation|compression|processing|marketing|fuel|treating|dehydration)\b`)
	adjustmentCodeRe = regexp.MustCompile(`^\(([A-Za-z0-9]{1,6})\)$`)
	centsRe          = regexp.MustCompile(`\.\d{2}\)?-?$`)
	skipRowRe        = regexp.MustCompile(`(?i)^(?:total|subtotal|sub-total|check\s+total|owner\s+total|property\s+total|grand\s+total|page\s+\d+|continued|\*+)`)
	taxWordRe        = regexp.MustCompile(`(?i)\btax`)
)

// positionalParser carries property, product and interest-type context
// across rows and pages.
type positionalParser struct {
	layout       *Layout
	propertyNum  string
	propertyName string
	productCode  string
	productName  string
	interestType string
	rows         []models.RevenueRow
	warnings     []string
}

// ParsePositional detects the column layout on the first page and rebuilds
// data rows on every page by assigning spans to the nearest column.
func ParsePositional(ctx context.Context, pages []pdftext.Page) ([]models.RevenueRow, []string, error) {
	if len(pages) == 0 {
		return nil, nil, ErrLayoutNotDetected
	}
	layout := DetectLayout(pages[0].Spans)
	if layout == nil {
		return nil, nil, ErrLayoutNotDetected
	}

	p := &positionalParser{layout: layout}
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rows := pdftext.Rows(page.Spans, pdftext.DefaultRowTolerance)
		for _, row := range rows[p.firstDataRow(i, rows):] {
			p.consume(row, page.Number)
		}
	}
	return p.rows, p.warnings, nil
}

// firstDataRow skips the header band on the first page and any repeated
// header, with whatever sits above it, on later pages.
func (p *positionalParser) firstDataRow(pageIndex int, rows [][]pdftext.Span) int {
	if pageIndex == 0 {
		for k, row := range rows {
			if row[0].Y0 > p.layout.HeaderBottom+pdftext.DefaultRowTolerance {
				return k
			}
		}
		return len(rows)
	}
	for k, row := range rows {
		if !p.isRepeatedHeader(row) {
			continue
		}
		start := k + 1
		for start < len(rows) && p.isRepeatedHeader(rows[start]) {
			start++
		}
		return start
	}
	return 0
}

func (p *positionalParser) consume(row []pdftext.Span, page int) {
	text := rowText(row)
	switch {
	case text == "" || skipRowRe.MatchString(text) || p.isRepeatedHeader(row):
		return
	case propertyHeaderRe.MatchString(text):
		p.setProperty(text)
	case productLabelRe.MatchString(text):
		m := productLabelRe.FindStringSubmatch(text)
		p.productCode = m[1]
		p.productName = strings.ToUpper(strings.Join(strings.Fields(m[2]), " "))
		if p.productCode == "" {
			p.productCode = productCodeFor(p.productName)
		}
	case isAdjustment(text):
		p.attachAdjustment(text)
	default:
		if r, ok := p.dataRow(row, page); ok {
			p.rows = append(p.rows, r)
		}
	}
}

func (p *positionalParser) setProperty(text string) {
	if m := interestTypeRe.FindStringSubmatch(text); m != nil {
		p.interestType = strings.ToUpper(m[1])
		text = interestTypeRe.ReplaceAllString(text, "")
	}
	m := propertyHeaderRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return
	}
	p.propertyNum = m[1]
	p.propertyName = strings.TrimSpace(m[2])
	// a new property resets product context
	p.productCode, p.productName = "", ""
}

// parseAdjustment splits a tax or deduction label row such as
// "Severance Tax (ST) (12.34)" into label, code and amount.
func parseAdjustment(text string) (label, code string, amount *float64, ok bool) {
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return "", "", nil, false
	}
	last := tokens[len(tokens)-1]
	if !centsRe.MatchString(last) {
		return "", "", nil, false
	}
	if amount = ParseAmount(last); amount == nil {
		return "", "", nil, false
	}
	tokens = tokens[:len(tokens)-1]
	if m := adjustmentCodeRe.FindStringSubmatch(tokens[len(tokens)-1]); m != nil {
		code = strings.ToUpper(m[1])
		tokens = tokens[:len(tokens)-1]
	}
	label = strings.Join(tokens, " ")
	if label == "" || strings.ContainsAny(label, "0123456789") || !adjustmentWordRe.MatchString(label) {
		return "", "", nil, false
	}
	return label, code, abs(amount), true
}

func isAdjustment(text string) bool {
	_, _, _, ok := parseAdjustment(text)
	return ok
}

// attachAdjustment adds a tax or deduction label row to the previous data
// row as a positive amount.
func (p *positionalParser) attachAdjustment(text string) {
	label, code, amount, _ := parseAdjustment(text)
	if len(p.rows) == 0 {
		p.warnings = append(p.warnings, "adjustment before any data row ignored: "+text)
		return
	}
	last := &p.rows[len(p.rows)-1]
	if code == "" {
		code = strings.ToUpper(label)
	}
	if taxWordRe.MatchString(label) {
		addAmount(&last.OwnerTaxAmount, *amount)
		last.TaxType = joinCode(last.TaxType, code)
		return
	}
	addAmount(&last.OwnerDeductAmount, *amount)
	last.DeductCode = joinCode(last.DeductCode, code)
}

// dataRow assigns each span to its nearest column. A data row needs a sales
// date and a number, or at least two numbers.
func (p *positionalParser) dataRow(row []pdftext.Span, page int) (models.RevenueRow, bool) {
	cells := make(map[ColumnKey]string)
	for _, s := range row {
		col, ok := p.layout.nearestColumn(s)
		if !ok {
			continue
		}
		if prev, exists := cells[col.Key]; exists {
			cells[col.Key] = prev + " " + s.Text
		} else {
			cells[col.Key] = s.Text
		}
	}

	r := models.RevenueRow{
		PropertyNumber: p.propertyNum,
		PropertyName:   p.propertyName,
		ProductCode:    p.productCode,
		ProductName:    p.productName,
		InterestType:   p.interestType,
		Page:           page,
	}
	numeric := 0
	set := func(dst **float64, key ColumnKey) {
		if v, ok := cells[key]; ok {
			if f := ParseAmount(v); f != nil {
				*dst = f
				numeric++
			}
		}
	}
	set(&r.DecimalInterest, ColDecimalInterest)
	set(&r.AvgPrice, ColAvgPrice)
	set(&r.GrossVolume, ColGrossVolume)
	set(&r.GrossValue, ColGrossValue)
	set(&r.OwnerVolume, ColOwnerVolume)
	set(&r.OwnerValue, ColOwnerValue)
	set(&r.OwnerTaxAmount, ColOwnerTax)
	set(&r.OwnerDeductAmount, ColOwnerDeduct)
	set(&r.OwnerNetRevenue, ColOwnerNet)
	r.OwnerTaxAmount = abs(r.OwnerTaxAmount)
	r.OwnerDeductAmount = abs(r.OwnerDeductAmount)

	if v, ok := cells[ColSalesDate]; ok {
		if d, ok := SalesMonth(v); ok {
			r.SalesDate = d
		}
	}
	if v, ok := cells[ColProduct]; ok && strings.TrimSpace(v) != "" {
		r.ProductCode = strings.TrimSpace(v)
		if name, known := productNames[r.ProductCode]; known {
			r.ProductName = name
		}
	}
	if v, ok := cells[ColInterestType]; ok && strings.TrimSpace(v) != "" {
		r.InterestType = strings.ToUpper(strings.TrimSpace(v))
	}

	if numeric == 0 || (r.SalesDate == "" && numeric < 2) {
		return models.RevenueRow{}, false
	}
	return r, true
}

// isRepeatedHeader reports whether a row is the column header band printed
// again after a page break.
func (p *positionalParser) isRepeatedHeader(row []pdftext.Span) bool {
	hits := 0
	for _, s := range row {
		w := normWord(s.Text)
		if isHeaderWord(w) || w == "property" || w == "owner" || w == "gross" {
			hits++
		}
	}
	return hits >= 2 && hits*2 >= len(row)
}

func rowText(row []pdftext.Span) string {
	words := make([]string, len(row))
	for i, s := range row {
		words[i] = s.Text
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

func joinCode(existing, code string) string {
	if existing == "" {
		return code
	}
	return existing + "," + code
}
