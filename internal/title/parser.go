// Package title parses owner lists from title spreadsheets: plain CSV or
// Excel owner lists and county examiner "Ownership Report" workbooks.
package title

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/landman/api/internal/address"
	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/textnorm"
)

// Report is the result of parsing one workbook.
type Report struct {
	Layout Layout              `json:"layout"`
	Owners []models.OwnerEntry `json:"owners"`
}

// ParseFile reads filename's bytes as CSV or XLSX and parses the owners.
func ParseFile(ctx context.Context, filename string, data []byte) (*Report, error) {
	wb, err := ReadFile(filename, data)
	if err != nil {
		return nil, err
	}
	return Parse(ctx, wb)
}

// Parse extracts owners from every sheet. Ownership reports are detected
// from the first sheet; other sheets are classified one by one.
func Parse(ctx context.Context, wb *Workbook) (*Report, error) {
	if wb == nil || wb.empty() {
		return nil, ErrEmptyWorkbook
	}

	report := &Report{Owners: []models.OwnerEntry{}}
	if IsOwnershipReport(wb) {
		owners, err := parseOwnershipReport(ctx, wb)
		if err != nil {
			return nil, err
		}
		report.Layout = LayoutOwnershipReport
		report.Owners = append(report.Owners, owners...)
		markDuplicates(report.Owners)
		return report, nil
	}

	for _, sheet := range wb.Sheets {
		if sheetWidth(sheet.Rows) == 0 {
			continue
		}
		layout := DetectSheetLayout(sheet)
		if report.Layout == "" {
			report.Layout = layout
		}

		var (
			owners []models.OwnerEntry
			err    error
		)
		switch layout {
		case LayoutSingleColumn:
			owners, err = parseSingleColumn(ctx, sheet)
		case LayoutTwoColumn:
			owners, err = parseTwoColumn(ctx, sheet)
		default:
			owners, err = parseMultiColumn(ctx, sheet)
		}
		if err != nil {
			return nil, err
		}
		for i := range owners {
			owners[i].Sheet = sheet.Name
		}
		report.Owners = append(report.Owners, owners...)
	}

	markDuplicates(report.Owners)
	return report, nil
}

// markDuplicates flags owners whose normalized name repeats an earlier
// owner's. Two owners with different known addresses are not duplicates.
func markDuplicates(owners []models.OwnerEntry) {
	seen := make(map[string][]int)
	for i := range owners {
		key := textnorm.Key(owners[i].FullName)
		if key == "" {
			continue
		}
		addr := addressKey(owners[i])
		for _, j := range seen[key] {
			other := addressKey(owners[j])
			if addr != "" && other != "" && addr != other {
				continue
			}
			owners[i].DuplicateFlag = true
			reason := fmt.Sprintf("possible duplicate of row %d", owners[j].RowNumber)
			if owners[i].Sheet != owners[j].Sheet && owners[j].Sheet != "" {
				reason = fmt.Sprintf("possible duplicate of row %d on sheet %s", owners[j].RowNumber, owners[j].Sheet)
			}
			owners[i].FlagReason = joinNotes(owners[i].FlagReason, reason)
			break
		}
		seen[key] = append(seen[key], i)
	}
}

func addressKey(o models.OwnerEntry) string {
	return textnorm.Key(address.FormatFull(o.AddressParts()))
}
