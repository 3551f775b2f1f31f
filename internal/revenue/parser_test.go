package revenue

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/pdftext"
)

// textDocument lays each line out as one row of single-word spans.
func textDocument(lines ...string) *pdftext.Document {
	page := pdftext.Page{Number: 1, Width: 612, Height: 792}
	for i, line := range lines {
		x := 10.0
		for _, w := range strings.Fields(line) {
			page.Spans = append(page.Spans, sp(w, x, x+float64(len(w))*5, float64(20+i*12)))
			x += float64(len(w))*5 + 5
		}
	}
	return &pdftext.Document{Pages: []pdftext.Page{page}}
}

var energyLinkLines = []string{
	"ENERGYLINK OWNER STATEMENT",
	"Payor: PERMIAN OPERATING LLC Check Number: 778899",
	"Property # 20451 JONES 1H",
	"Prod Date Prod Code Type Gross Vol Price Gross Value Decimal Owner Vol Owner Value Net",
	"01/24 201 RI 5000.00 2.50 12500.00 0.01000000 50.00 125.00 110.00",
	"01/24 201 SV 12500.00 (10.00)",
	"01/24 201 10 12500.00 5.00",
	"02/24 101 RI 300 75.00 22500.00 0.01",
	"Total 235.00",
}

var energyTransferLines = []string{
	"ENERGY TRANSFER CRUDE MARKETING",
	"Property Number Property Name Sales Date Product Type Decimal Volume Price Value",
	"12345-001 SMITH A UNIT 03/2024 GAS RI 0.00250000 10000 3.10 31000.00 25.00 77.50 6.20 3.10 68.20",
	"67890-002 JONES 04/2024 101 RI 0.005 200",
	"Total 145.70",
	"Page 2",
}

func TestParseEnergyLink(t *testing.T) {
	rows := ParseEnergyLink(energyLinkLines)
	require.Len(t, rows, 2)

	gas := rows[0]
	assert.Equal(t, "20451", gas.PropertyNumber)
	assert.Equal(t, "JONES 1H", gas.PropertyName)
	assert.Equal(t, "2024-01-01", gas.SalesDate)
	assert.Equal(t, "201", gas.ProductCode)
	assert.Equal(t, "GAS", gas.ProductName)
	assert.Equal(t, 0.01, *gas.DecimalInterest)
	assert.Equal(t, 125.0, *gas.OwnerValue)
	assert.Equal(t, 10.0, *gas.OwnerTaxAmount)
	assert.Equal(t, "SV", gas.TaxType)
	assert.Equal(t, 5.0, *gas.OwnerDeductAmount)
	assert.Equal(t, "10", gas.DeductCode)
	assert.Equal(t, 110.0, *gas.OwnerNetRevenue)

	oil := rows[1]
	assert.Equal(t, "OIL", oil.ProductName)
	assert.Equal(t, 22500.0, *oil.GrossValue)
	assert.Equal(t, 0.01, *oil.DecimalInterest)
	assert.Nil(t, oil.OwnerVolume, "missing trailing tokens are nil")
	assert.Nil(t, oil.OwnerValue)
	assert.Nil(t, oil.OwnerNetRevenue)
}

func TestParseEnergyTransfer(t *testing.T) {
	rows := ParseEnergyTransfer(energyTransferLines)
	require.Len(t, rows, 2)

	gas := rows[0]
	assert.Equal(t, "12345-001", gas.PropertyNumber)
	assert.Equal(t, "SMITH A UNIT", gas.PropertyName)
	assert.Equal(t, "2024-03-01", gas.SalesDate)
	assert.Equal(t, "GAS", gas.ProductName)
	assert.Equal(t, "201", gas.ProductCode)
	assert.Equal(t, "RI", gas.InterestType)
	assert.Equal(t, 0.0025, *gas.DecimalInterest)
	assert.Equal(t, 10000.0, *gas.GrossVolume)
	assert.Equal(t, 3.10, *gas.AvgPrice)
	assert.Equal(t, 31000.0, *gas.GrossValue)
	assert.Equal(t, 25.0, *gas.OwnerVolume)
	assert.Equal(t, 77.50, *gas.OwnerValue)
	assert.Equal(t, 6.20, *gas.OwnerTaxAmount)
	assert.Equal(t, 3.10, *gas.OwnerDeductAmount)
	assert.Equal(t, 68.20, *gas.OwnerNetRevenue)

	oil := rows[1]
	assert.Equal(t, "101", oil.ProductCode)
	assert.Equal(t, "OIL", oil.ProductName)
	assert.Equal(t, 200.0, *oil.GrossVolume)
	assert.Nil(t, oil.AvgPrice)
	assert.Nil(t, oil.OwnerNetRevenue)
}

func TestNetRevenueWithinTolerance(t *testing.T) {
	var rows []models.RevenueRow
	positional, _, err := ParsePositional(context.Background(), statementPages())
	require.NoError(t, err)
	rows = append(rows, positional...)
	rows = append(rows, ParseEnergyLink(energyLinkLines)...)
	rows = append(rows, ParseEnergyTransfer(energyTransferLines)...)

	checked := 0
	for _, r := range rows {
		if r.OwnerValue == nil || r.OwnerNetRevenue == nil || (r.OwnerTaxAmount == nil && r.OwnerDeductAmount == nil) {
			continue
		}
		expected, ok := r.ExpectedNet()
		require.True(t, ok)
		assert.LessOrEqual(t, math.Abs(expected-*r.OwnerNetRevenue), models.NetRevenueTolerance+1e-9)
		checked++
	}
	assert.Equal(t, 3, checked)
}

func TestParse_Positional(t *testing.T) {
	doc := &pdftext.Document{Pages: statementPages()}

	st, err := Parse(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, string(FormatPositional), st.Format)
	assert.Equal(t, "ACME OIL", st.Payor)
	assert.Equal(t, "12345", st.CheckNumber)
	assert.Equal(t, "555", st.OwnerNumber)
	assert.Len(t, st.Rows, 2)
	assert.Empty(t, st.Warnings)
}

func TestParse_EnergyLink(t *testing.T) {
	st, err := Parse(context.Background(), textDocument(energyLinkLines...))
	require.NoError(t, err)

	assert.Equal(t, string(FormatEnergyLink), st.Format)
	assert.Equal(t, "PERMIAN OPERATING LLC", st.Payor)
	assert.Equal(t, "778899", st.CheckNumber)
	require.Len(t, st.Rows, 2)
	assert.Equal(t, []string{"row 2: missing owner value"}, st.Warnings)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(context.Background(), &pdftext.Document{})
	assert.ErrorIs(t, err, pdftext.ErrEmptyPDF)

	_, err = Parse(context.Background(), textDocument("ENERGYLINK", "nothing to see"))
	assert.ErrorIs(t, err, ErrUnsupportedStatement)

	_, err = Parse(context.Background(), textDocument("Some Statement", "Hello world"))
	assert.ErrorIs(t, err, ErrLayoutNotDetected)
	assert.EqualError(t, err, "could not detect column layout")
}

func TestValidate(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	rows := []models.RevenueRow{
		{OwnerValue: f(100), OwnerTaxAmount: f(5), OwnerDeductAmount: f(2), OwnerNetRevenue: f(93)},
		{OwnerValue: f(100), OwnerTaxAmount: f(5), OwnerNetRevenue: f(94.99)},
		{OwnerValue: f(100), OwnerTaxAmount: f(5), OwnerNetRevenue: f(90)},
		{OwnerNetRevenue: f(10)},
	}

	assert.Equal(t, []string{
		"row 3: owner net 90.00 differs from expected 95.00",
		"row 4: missing owner value",
	}, Validate(rows))
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		text string
		want Format
	}{
		{"Statement provided by EnergyLink", FormatEnergyLink},
		{"ENERGY LINK", FormatEnergyLink},
		{"Energy Transfer Crude Marketing LLC", FormatEnergyTransfer},
		{"Devon Energy Production Company", FormatPositional},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.text))
		})
	}
}

func TestScrapeHeader(t *testing.T) {
	st := &models.RevenueStatement{}
	scrapeHeader(st, []string{
		"Operator: UPDATE ENERGY LP Check Date: 03/15/2024",
		"Check No. 100-22 Check Amount: $1,234.56",
		"Owner Name: JANE DOE TRUST Owner Number: A-77",
	})

	assert.Equal(t, "UPDATE ENERGY LP", st.Payor)
	assert.Equal(t, "03/15/2024", st.CheckDate)
	assert.Equal(t, "100-22", st.CheckNumber)
	require.NotNil(t, st.CheckAmount)
	assert.Equal(t, 1234.56, *st.CheckAmount)
	assert.Equal(t, "JANE DOE TRUST", st.OwnerName)
	assert.Equal(t, "A-77", st.OwnerNumber)
}
