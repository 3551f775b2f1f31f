package revenue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/landman/api/internal/pdftext"
)

func statementPages() []pdftext.Page {
	first := []pdftext.Span{
		sp("Payor:", 20, 50, 20), sp("ACME", 55, 80, 20), sp("OIL", 85, 100, 20),
		sp("Check", 300, 325, 20), sp("Number:", 330, 370, 20), sp("12345", 375, 400, 20),
		sp("Owner", 20, 50, 35), sp("Number:", 55, 95, 35), sp("555", 100, 115, 35),
	}
	first = append(first, statementHeader()...)
	first = append(first,
		sp("Property:", 20, 65, 100), sp("1001", 80, 100, 100), sp("SMITH", 120, 150, 100),
		sp("UNIT", 160, 185, 100), sp("1H", 200, 210, 100),
		sp("Gas", 20, 40, 115),
		sp("01/2024", 25, 55, 130), sp("1,000.00", 150, 185, 130), sp("3,000.00", 230, 260, 130),
		sp("10.00", 330, 365, 130), sp("30.00", 420, 450, 130), sp("27.50", 500, 530, 130),
		sp("Severance", 20, 70, 145), sp("Tax", 75, 90, 145), sp("(ST)", 100, 120, 145),
		sp("(2.50)", 420, 450, 145),
	)

	second := append([]pdftext.Span{}, statementHeader()...)
	second = append(second,
		sp("02/2024", 25, 55, 100), sp("1,100.00", 150, 185, 100), sp("3,300.00", 230, 260, 100),
		sp("11.00", 330, 365, 100), sp("33.00", 420, 450, 100), sp("33.00", 500, 530, 100),
		sp("Total", 20, 45, 120), sp("60.50", 500, 530, 120),
	)

	return []pdftext.Page{
		{Number: 1, Width: 612, Height: 792, Spans: first},
		{Number: 2, Width: 612, Height: 792, Spans: second},
	}
}

func TestParsePositional(t *testing.T) {
	rows, warnings, err := ParsePositional(context.Background(), statementPages())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "1001", first.PropertyNumber)
	assert.Equal(t, "SMITH UNIT 1H", first.PropertyName)
	assert.Equal(t, "2024-01-01", first.SalesDate)
	assert.Equal(t, "201", first.ProductCode)
	assert.Equal(t, "GAS", first.ProductName)
	assert.Equal(t, 1, first.Page)
	require.NotNil(t, first.GrossVolume)
	assert.Equal(t, 1000.0, *first.GrossVolume)
	assert.Equal(t, 3000.0, *first.GrossValue)
	assert.Equal(t, 10.0, *first.OwnerVolume)
	assert.Equal(t, 30.0, *first.OwnerValue)
	assert.Equal(t, 27.5, *first.OwnerNetRevenue)
	assert.Nil(t, first.AvgPrice, "columns missing from the layout stay nil")
	require.NotNil(t, first.OwnerTaxAmount)
	assert.Equal(t, 2.5, *first.OwnerTaxAmount, "adjustments are stored positive")
	assert.Equal(t, "ST", first.TaxType)

	second := rows[1]
	assert.Equal(t, 2, second.Page)
	assert.Equal(t, "1001", second.PropertyNumber, "property context carries across pages")
	assert.Equal(t, "GAS", second.ProductName)
	assert.Equal(t, "2024-02-01", second.SalesDate)
	assert.Equal(t, 33.0, *second.OwnerValue)
}

func TestParsePositional_NoLayout(t *testing.T) {
	pages := []pdftext.Page{{Number: 1, Spans: []pdftext.Span{sp("Hello", 10, 40, 10)}}}

	_, _, err := ParsePositional(context.Background(), pages)
	assert.ErrorIs(t, err, ErrLayoutNotDetected)

	_, _, err = ParsePositional(context.Background(), nil)
	assert.ErrorIs(t, err, ErrLayoutNotDetected)
}

func TestParsePositional_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ParsePositional(ctx, statementPages())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParsePositional_AdjustmentWithoutRow(t *testing.T) {
	spans := append(statementHeader(), sp("Gathering", 20, 70, 100), sp("Fee", 75, 90, 100), sp("4.00", 420, 450, 100))
	rows, warnings, err := ParsePositional(context.Background(), []pdftext.Page{{Number: 1, Spans: spans}})

	require.NoError(t, err)
	assert.Empty(t, rows)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Gathering Fee")
}

func TestParseAdjustment(t *testing.T) {
	tests := []struct {
		text  string
		label string
		code  string
		want  float64
		ok    bool
	}{
		{"Severance Tax (ST) (12.34)", "Severance Tax", "ST", 12.34, true},
		{"Gathering 5.00-", "Gathering", "", 5, true},
		{"Transportation Charges $1,020.10", "Transportation Charges", "", 1020.10, true},
		{"01/2024 1,000.00 30.00", "", "", 0, false},
		{"SMITH UNIT 12.00", "", "", 0, false},
		{"Tax", "", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			label, code, amount, ok := parseAdjustment(tt.text)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.code, code)
			assert.InDelta(t, tt.want, *amount, 1e-9)
		})
	}
}
