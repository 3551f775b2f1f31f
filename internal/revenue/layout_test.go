package revenue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/landman/api/internal/pdftext"
)

func sp(text string, x0, x1, y float64) pdftext.Span {
	return pdftext.Span{Text: text, X0: x0, X1: x1, Y0: y}
}

// statementHeader is a two-section header band: property-level Volume and
// Value on the left of the "Property"/"Owner" boundary, owner-level on the
// right, with stacked "Production Date" and "Net Revenue" labels.
func statementHeader() []pdftext.Span {
	return []pdftext.Span{
		sp("Property", 150, 190, 60),
		sp("Owner", 400, 430, 60),
		sp("Production", 20, 70, 70),
		sp("Product", 90, 125, 70),
		sp("Net", 500, 520, 70),
		sp("Date", 30, 50, 80),
		sp("Volume", 150, 185, 80),
		sp("Value", 230, 260, 80),
		sp("Volume", 330, 365, 80),
		sp("Value", 420, 450, 80),
		sp("Revenue", 495, 530, 80),
	}
}

func TestDetectLayout(t *testing.T) {
	layout := DetectLayout(statementHeader())
	require.NotNil(t, layout)

	keys := make([]ColumnKey, len(layout.Columns))
	for i, c := range layout.Columns {
		keys[i] = c.Key
	}
	assert.Equal(t, []ColumnKey{
		ColSalesDate, ColProduct, ColGrossVolume, ColGrossValue,
		ColOwnerVolume, ColOwnerValue, ColOwnerNet,
	}, keys)

	assert.InDelta(t, 298.75, layout.Boundary, 0.001)
	assert.Equal(t, 80.0, layout.HeaderBottom)

	date, ok := layout.Column(ColSalesDate)
	require.True(t, ok)
	assert.Equal(t, "production date", date.Label)
	assert.Equal(t, 20.0, date.X0)
	assert.Equal(t, 70.0, date.X1)
}

func TestDetectLayout_TooFewColumns(t *testing.T) {
	spans := []pdftext.Span{
		sp("Volume", 100, 130, 50),
		sp("Value", 200, 230, 50),
		sp("12.00", 100, 130, 70),
	}
	assert.Nil(t, DetectLayout(spans))
	assert.Nil(t, DetectLayout(nil))
}

func TestDetectLayout_StackedTriple(t *testing.T) {
	spans := []pdftext.Span{
		sp("Taxes", 300, 330, 70),
		sp("and", 305, 320, 80),
		sp("Deductions", 295, 345, 90),
		sp("Date", 20, 40, 80),
		sp("Price", 100, 125, 80),
	}

	layout := DetectLayout(spans)
	require.NotNil(t, layout)
	assert.Len(t, layout.Columns, 3)

	_, hasTax := layout.Column(ColOwnerTax)
	assert.False(t, hasTax)
	deduct, ok := layout.Column(ColOwnerDeduct)
	require.True(t, ok)
	assert.Equal(t, "taxes and deductions", deduct.Label)
}

func TestNearestColumn(t *testing.T) {
	layout := &Layout{Columns: []Column{
		{Key: ColGrossValue, X0: 100, X1: 140},
		{Key: ColOwnerValue, X0: 300, X1: 340},
	}}

	tests := []struct {
		name  string
		span  pdftext.Span
		want  ColumnKey
		found bool
	}{
		{"inside extent", sp("1.00", 110, 130, 0), ColGrossValue, true},
		{"right aligned overhang", sp("1,000.00", 95, 142, 0), ColGrossValue, true},
		{"nearest by center", sp("2.00", 345, 370, 0), ColOwnerValue, true},
		{"beyond tolerance", sp("3.00", 420, 440, 0), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, ok := layout.nearestColumn(tt.span)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, col.Key)
		})
	}
}
