// Package revenue rebuilds revenue statement line items from PDF text.
//
// Most statements are parsed positionally: a column layout is detected from
// the header band of the first page and every later span is assigned to
// its nearest column. Two legacy families without usable coordinates are
// parsed from plain text instead.
package revenue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/pdftext"
)

var (
	// ErrLayoutNotDetected is returned when too few columns are recovered
	// from the header band. The statement format is not supported.
	ErrLayoutNotDetected = errors.New("could not detect column layout")
	// ErrUnsupportedStatement is returned when a legacy parser finds no rows.
	ErrUnsupportedStatement = errors.New("unsupported revenue statement")
)

// Parse reconstructs the rows of a statement and scrapes its header.
func Parse(ctx context.Context, doc *pdftext.Document) (*models.RevenueStatement, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, pdftext.ErrEmptyPDF
	}

	var lines []string
	for _, p := range doc.Pages {
		lines = append(lines, p.Lines()...)
	}
	format := DetectFormat(strings.Join(lines, "\n"))
	st := &models.RevenueStatement{Format: string(format)}
	scrapeHeader(st, lines)

	switch format {
	case FormatEnergyLink:
		st.Rows = ParseEnergyLink(lines)
	case FormatEnergyTransfer:
		st.Rows = ParseEnergyTransfer(lines)
	default:
		rows, warnings, err := ParsePositional(ctx, doc.Pages)
		if err != nil {
			return nil, err
		}
		st.Rows = rows
		st.Warnings = append(st.Warnings, warnings...)
	}
	if format != FormatPositional && len(st.Rows) == 0 {
		return nil, fmt.Errorf("%w: no %s rows found", ErrUnsupportedStatement, format)
	}

	if st.Rows == nil {
		st.Rows = []models.RevenueRow{}
	}
	st.Warnings = append(st.Warnings, Validate(st.Rows)...)
	return st, nil
}

// ParseFile extracts text spans from PDF bytes and parses the statement.
func ParseFile(ctx context.Context, data []byte) (*models.RevenueStatement, error) {
	doc, err := pdftext.Extract(data)
	if err != nil {
		return nil, err
	}
	return Parse(ctx, doc)
}

// Validate reports rows whose net revenue disagrees with owner value less
// taxes and deductions, and rows with no owner value. It never rejects rows.
func Validate(rows []models.RevenueRow) []string {
	var warnings []string
	for i, r := range rows {
		if r.OwnerValue == nil {
			warnings = append(warnings, fmt.Sprintf("row %d: missing owner value", i+1))
			continue
		}
		if !r.NetRevenueConsistent() {
			expected, _ := r.ExpectedNet()
			warnings = append(warnings, fmt.Sprintf("row %d: owner net %.2f differs from expected %.2f",
				i+1, *r.OwnerNetRevenue, expected))
		}
	}
	return warnings
}
