package models

import "math"

// NetRevenueTolerance is the largest difference, in dollars, allowed between
// a reported owner net and owner value less taxes and deductions.
const NetRevenueTolerance = 0.01

// RevenueRow is one production line item from a revenue statement.
// Numeric fields are nil when the statement does not carry them.
type RevenueRow struct {
	PropertyNumber    string   `json:"property_number,omitempty"`
	PropertyName      string   `json:"property_name,omitempty"`
	SalesDate         string   `json:"sales_date,omitempty"`
	ProductCode       string   `json:"product_code,omitempty"`
	ProductName       string   `json:"product_name,omitempty"`
	InterestType      string   `json:"interest_type,omitempty"`
	DecimalInterest   *float64 `json:"decimal_interest,omitempty"`
	AvgPrice          *float64 `json:"avg_price,omitempty"`
	GrossVolume       *float64 `json:"gross_volume,omitempty"`
	GrossValue        *float64 `json:"gross_value,omitempty"`
	OwnerVolume       *float64 `json:"owner_volume,omitempty"`
	OwnerValue        *float64 `json:"owner_value,omitempty"`
	OwnerTaxAmount    *float64 `json:"owner_tax_amount,omitempty"`
	TaxType           string   `json:"tax_type,omitempty"`
	OwnerDeductAmount *float64 `json:"owner_deduct_amount,omitempty"`
	DeductCode        string   `json:"deduct_code,omitempty"`
	OwnerNetRevenue   *float64 `json:"owner_net_revenue,omitempty"`
	Page              int      `json:"page,omitempty"`
}

// ExpectedNet returns owner value less taxes and deductions, treating a
// missing tax or deduction as zero. ok is false when owner value is absent.
func (r RevenueRow) ExpectedNet() (net float64, ok bool) {
	if r.OwnerValue == nil {
		return 0, false
	}
	net = *r.OwnerValue
	if r.OwnerTaxAmount != nil {
		net -= *r.OwnerTaxAmount
	}
	if r.OwnerDeductAmount != nil {
		net -= *r.OwnerDeductAmount
	}
	return net, true
}

// NetRevenueConsistent reports whether the reported owner net agrees with
// ExpectedNet within NetRevenueTolerance. Rows lacking either side are
// considered consistent; the check is advisory only.
func (r RevenueRow) NetRevenueConsistent() bool {
	if r.OwnerNetRevenue == nil {
		return true
	}
	expected, ok := r.ExpectedNet()
	if !ok {
		return true
	}
	return math.Abs(expected-*r.OwnerNetRevenue) <= NetRevenueTolerance+1e-9
}

// RevenueStatement groups the rows of one check stub with its header.
type RevenueStatement struct {
	Format      string       `json:"format"`
	Payor       string       `json:"payor,omitempty"`
	CheckNumber string       `json:"check_number,omitempty"`
	CheckAmount *float64     `json:"check_amount,omitempty"`
	CheckDate   string       `json:"check_date,omitempty"`
	OwnerNumber string       `json:"owner_number,omitempty"`
	OwnerName   string       `json:"owner_name,omitempty"`
	Rows        []RevenueRow `json:"rows"`
	Warnings    []string     `json:"warnings,omitempty"`
}
