package revenue

import (
	"math"
	"sort"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/pdftext"
)

// ColumnKey names the RevenueRow field a column feeds.
type ColumnKey string

// Column keys recovered from statement headers.
const (
	ColSalesDate       ColumnKey = "sales_date"
	ColProduct         ColumnKey = "product_code"
	ColInterestType    ColumnKey = "interest_type"
	ColDecimalInterest ColumnKey = "decimal_interest"
	ColAvgPrice        ColumnKey = "avg_price"
	ColGrossVolume     ColumnKey = "gross_volume"
	ColGrossValue      ColumnKey = "gross_value"
	ColOwnerVolume     ColumnKey = "owner_volume"
	ColOwnerValue      ColumnKey = "owner_value"
	ColOwnerTax        ColumnKey = "owner_tax_amount"
	ColOwnerDeduct     ColumnKey = "owner_deduct_amount"
	ColOwnerNet        ColumnKey = "owner_net_revenue"
)

// Layout detection tolerances, in points.
const (
	headerBandHeight  = 30.0
	stackTolerance    = 15.0
	stackHorizontal   = 25.0
	columnTolerance   = 50.0
	minLayoutColumns  = 3
	maxBoundaryPasses = 3
)

// Column is one detected header with its horizontal extent.
type Column struct {
	Key   ColumnKey `json:"key"`
	Label string    `json:"label"`
	X0    float64   `json:"x0"`
	X1    float64   `json:"x1"`
}

// Center returns the column's horizontal midpoint.
func (c Column) Center() float64 {
	return (c.X0 + c.X1) / 2
}

// Layout is the column schema of a positional statement.
type Layout struct {
	Columns      []Column `json:"columns"`
	Boundary     float64  `json:"boundary"`
	HeaderTop    float64  `json:"header_top"`
	HeaderBottom float64  `json:"header_bottom"`
}

// Column returns the column for key, if detected.
func (l *Layout) Column(key ColumnKey) (Column, bool) {
	for _, c := range l.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// multiWordLabels map lower-cased stacked or adjacent header words.
var multiWordLabels = map[string]ColumnKey{
	"production date":      ColSalesDate,
	"sales date":           ColSalesDate,
	"sale date":            ColSalesDate,
	"prod date":            ColSalesDate,
	"interest type":        ColInterestType,
	"int type":             ColInterestType,
	"decimal interest":     ColDecimalInterest,
	"owner interest":       ColDecimalInterest,
	"revenue interest":     ColDecimalInterest,
	"owner decimal":        ColDecimalInterest,
	"avg price":            ColAvgPrice,
	"average price":        ColAvgPrice,
	"unit price":           ColAvgPrice,
	"gross volume":         ColGrossVolume,
	"gross value":          ColGrossValue,
	"owner volume":         ColOwnerVolume,
	"net volume":           ColOwnerVolume,
	"owner value":          ColOwnerValue,
	"owner taxes":          ColOwnerTax,
	"owner tax":            ColOwnerTax,
	"owner deductions":     ColOwnerDeduct,
	"owner deducts":        ColOwnerDeduct,
	"taxes and deductions": ColOwnerDeduct,
	"net revenue":          ColOwnerNet,
	"net value":            ColOwnerNet,
	"net amount":           ColOwnerNet,
	"owner net":            ColOwnerNet,
	"owner net revenue":    ColOwnerNet,
	"owner net value":      ColOwnerNet,
}

// singleWordLabels map one header word. sided keys resolve by which side of
// the property/owner boundary the word sits on.
var singleWordLabels = map[string]ColumnKey{
	"date":       ColSalesDate,
	"product":    ColProduct,
	"prod":       ColProduct,
	"interest":   ColDecimalInterest,
	"decimal":    ColDecimalInterest,
	"price":      ColAvgPrice,
	"taxes":      ColOwnerTax,
	"tax":        ColOwnerTax,
	"deductions": ColOwnerDeduct,
	"deducts":    ColOwnerDeduct,
	"net":        ColOwnerNet,
}

var sidedLabels = map[string][2]ColumnKey{
	"volume": {ColGrossVolume, ColOwnerVolume},
	"value":  {ColGrossValue, ColOwnerValue},
}

// DetectLayout recovers the column schema from the header band of the first
// page. It returns nil when fewer than three columns are found; callers
// must treat that as an unsupported statement rather than retry.
func DetectLayout(spans []pdftext.Span) *Layout {
	if len(spans) == 0 {
		return nil
	}

	groupY, boundary, found := groupHeaders(spans)
	band := headerBand(spans, groupY, found)
	if len(band) == 0 {
		return nil
	}

	cols, used := multiWordColumns(band)

	singles := make([]pdftext.Span, 0, len(band))
	for i, s := range band {
		if !used[i] {
			singles = append(singles, s)
		}
	}

	if !found {
		boundary = pageMidline(spans)
	}
	for pass := 0; pass < maxBoundaryPasses; pass++ {
		refined, ok := refineBoundary(singles, boundary)
		if !ok || math.Abs(refined-boundary) < 0.5 {
			break
		}
		boundary = refined
	}
	sided := sidedColumns(singles, boundary)
	cols = append(cols, sided...)
	cols = append(cols, plainColumns(singles)...)

	cols = dedupeColumns(cols)
	if len(cols) < minLayoutColumns {
		return nil
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].X0 < cols[j].X0 })

	top, bottom := math.Inf(1), math.Inf(-1)
	for _, s := range band {
		top = math.Min(top, s.Y0)
		bottom = math.Max(bottom, s.Y0)
	}
	return &Layout{Columns: cols, Boundary: boundary, HeaderTop: top, HeaderBottom: bottom}
}

// groupHeaders finds the "Property" and "Owner" group header spans on the
// same row and returns their row position and the approximate boundary.
func groupHeaders(spans []pdftext.Span) (y, boundary float64, found bool) {
	for _, row := range pdftext.Rows(spans, pdftext.DefaultRowTolerance) {
		var prop, owner *pdftext.Span
		for i := range row {
			switch normWord(row[i].Text) {
			case "property":
				if prop == nil {
					prop = &row[i]
				}
			case "owner":
				if owner == nil {
					owner = &row[i]
				}
			}
		}
		if prop != nil && owner != nil && owner.X0 > prop.X1 {
			mid := ((prop.X0+prop.X1)/2 + (owner.X0+owner.X1)/2) / 2
			return row[0].Y0, mid, true
		}
	}
	return 0, 0, false
}

// headerBand returns the spans in the band below the group headers. With no
// group headers the band starts at the first row holding a header word.
func headerBand(spans []pdftext.Span, groupY float64, found bool) []pdftext.Span {
	start := groupY + pdftext.DefaultRowTolerance
	if !found {
		first := math.Inf(1)
		for _, s := range spans {
			if isHeaderWord(s.Text) && s.Y0 < first {
				first = s.Y0
			}
		}
		if math.IsInf(first, 1) {
			return nil
		}
		start = first - 0.001
	}
	band := make([]pdftext.Span, 0)
	for _, s := range spans {
		if s.Y0 > start && s.Y0 <= start+headerBandHeight {
			band = append(band, s)
		}
	}
	sort.SliceStable(band, func(i, j int) bool {
		if band[i].Y0 != band[j].Y0 {
			return band[i].Y0 < band[j].Y0
		}
		return band[i].X0 < band[j].X0
	})
	return band
}

// multiWordColumns pairs and triples band spans that read as one label,
// trying triples first so that "Taxes and Deductions" beats "Taxes".
func multiWordColumns(band []pdftext.Span) ([]Column, map[int]bool) {
	used := make(map[int]bool)
	var cols []Column

	for i := range band {
		if used[i] {
			continue
		}
		for j := range band {
			if used[j] || j == i || !stacked(band[i], band[j]) {
				continue
			}
			for k := range band {
				if used[k] || k == i || k == j || !stacked(band[j], band[k]) {
					continue
				}
				label := joinLabel(band[i], band[j], band[k])
				if key, ok := multiWordLabels[label]; ok {
					cols = append(cols, spanColumn(key, label, band[i], band[j], band[k]))
					used[i], used[j], used[k] = true, true, true
					break
				}
			}
			if used[i] {
				break
			}
		}
	}

	for i := range band {
		if used[i] {
			continue
		}
		for j := range band {
			if used[j] || j == i || !stacked(band[i], band[j]) {
				continue
			}
			label := joinLabel(band[i], band[j])
			if key, ok := multiWordLabels[label]; ok {
				cols = append(cols, spanColumn(key, label, band[i], band[j]))
				used[i], used[j] = true, true
				break
			}
		}
	}
	return cols, used
}

// stacked reports whether b continues a label started by a: either the next
// word on the same row or a word on a row just below, roughly aligned.
func stacked(a, b pdftext.Span) bool {
	dy := b.Y0 - a.Y0
	if math.Abs(dy) <= pdftext.DefaultRowTolerance {
		gap := b.X0 - a.X1
		return gap >= 0 && gap <= stackHorizontal
	}
	if dy <= 0 || dy > stackTolerance {
		return false
	}
	ac, bc := (a.X0+a.X1)/2, (b.X0+b.X1)/2
	return math.Abs(ac-bc) <= stackHorizontal || math.Abs(a.X0-b.X0) <= stackHorizontal
}

// sidedColumns maps Volume/Value style words using the boundary.
func sidedColumns(singles []pdftext.Span, boundary float64) []Column {
	var cols []Column
	for _, s := range singles {
		w := normWord(s.Text)
		keys, ok := sidedLabels[w]
		if !ok {
			continue
		}
		key := keys[0]
		if (s.X0+s.X1)/2 > boundary {
			key = keys[1]
		}
		cols = append(cols, Column{Key: key, Label: s.Text, X0: s.X0, X1: s.X1})
	}
	return cols
}

func plainColumns(singles []pdftext.Span) []Column {
	var cols []Column
	for _, s := range singles {
		if key, ok := singleWordLabels[normWord(s.Text)]; ok {
			cols = append(cols, Column{Key: key, Label: s.Text, X0: s.X0, X1: s.X1})
		}
	}
	return cols
}

// refineBoundary averages, over every duplicated sided label, the midpoint
// between the occurrence nearest the boundary on each side. When all
// occurrences fall on one side the two leftmost are used.
func refineBoundary(singles []pdftext.Span, boundary float64) (float64, bool) {
	centers := make(map[string][]float64)
	for _, s := range singles {
		w := normWord(s.Text)
		if _, ok := sidedLabels[w]; ok {
			centers[w] = append(centers[w], (s.X0+s.X1)/2)
		}
	}
	var sum float64
	n := 0
	for _, cs := range centers {
		if len(cs) < 2 {
			continue
		}
		sort.Float64s(cs)
		left, right := math.Inf(-1), math.Inf(1)
		for _, c := range cs {
			if c <= boundary {
				left = math.Max(left, c)
			} else {
				right = math.Min(right, c)
			}
		}
		if math.IsInf(left, -1) || math.IsInf(right, 1) {
			left, right = cs[0], cs[1]
		}
		sum += (left + right) / 2
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// dedupeColumns keeps the first column seen for each key.
func dedupeColumns(cols []Column) []Column {
	seen := make(map[ColumnKey]bool, len(cols))
	out := cols[:0]
	for _, c := range cols {
		if seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		out = append(out, c)
	}
	return out
}

func spanColumn(key ColumnKey, label string, spans ...pdftext.Span) Column {
	c := Column{Key: key, Label: label, X0: math.Inf(1), X1: math.Inf(-1)}
	for _, s := range spans {
		c.X0 = math.Min(c.X0, s.X0)
		c.X1 = math.Max(c.X1, s.X1)
	}
	return c
}

func joinLabel(spans ...pdftext.Span) string {
	words := make([]string, len(spans))
	for i, s := range spans {
		words[i] = normWord(s.Text)
	}
	return strings.Join(words, " ")
}

func normWord(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), ":.,"))
}

func isHeaderWord(s string) bool {
	w := normWord(s)
	if _, ok := singleWordLabels[w]; ok {
		return true
	}
	_, ok := sidedLabels[w]
	return ok
}

func pageMidline(spans []pdftext.Span) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range spans {
		lo = math.Min(lo, s.X0)
		hi = math.Max(hi, s.X1)
	}
	return (lo + hi) / 2
}

// nearestColumn returns the column whose extent or center lies closest to
// the span, within columnTolerance.
func (l *Layout) nearestColumn(s pdftext.Span) (Column, bool) {
	center := (s.X0 + s.X1) / 2
	best := -1
	bestDist := math.Inf(1)
	for i, c := range l.Columns {
		var d float64
		switch {
		case center >= c.X0 && center <= c.X1:
			d = 0
		default:
			d = math.Min(math.Abs(center-c.Center()), math.Min(math.Abs(s.X1-c.X1), math.Abs(s.X0-c.X0)))
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > columnTolerance {
		return Column{}, false
	}
	return l.Columns[best], true
}
