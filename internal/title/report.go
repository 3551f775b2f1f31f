package title

import (
	"context"
	"regexp"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/address"
	"github.com/stwalsh4118/landman/api/internal/models"
)

// reportMarkerRows is how far down the first sheet the report marker may sit.
const reportMarkerRows = 30

const (
	reportMarker = "OWNERSHIP REPORT"
	anchorLabel  = "MINERAL OWNER"
)

var (
	pageOfRe        = regexp.MustCompile(`(?i)^\s*page\s+\d+\s+of\s+\d+\s*$`)
	footerRe        = regexp.MustCompile(`(?i)^\s*(?:i\s+hereby\s+certify|certification|certified\s+by|prepared\s+by|this\s+report\s+(?:is|was)|disclaimer|total\b|totals\b|end\s+of\s+report)`)
	remaindermenRe  = regexp.MustCompile(`(?i)^\s*remaindermen\b\s*:?\s*`)
	countyLabelRe   = regexp.MustCompile(`(?i)^\s*county\b\s*:?\s*(.*)$`)
	countyInlineRe  = regexp.MustCompile(`(?i)^\s*([A-Z][A-Za-z .'-]*?)\s+county\b`)
	legalLabelRe    = regexp.MustCompile(`(?i)^\s*(?:legal(?:\s+description)?|description|tract\s+description|str)\b\s*:?\s*(.*)$`)
	legalInlineRe   = regexp.MustCompile(`(?i)\b(?:section|sec\.?)\s*\d+\b.*\b(?:block|blk|township|twp|t\s*\d|abstract|abst?\.?|survey)\b`)
	acresLabelRe    = regexp.MustCompile(`(?i)^\s*(?:tract|gross)\s+acres\s*:?\s*(.*)$`)
	acresInlineRe   = regexp.MustCompile(`(?i)^\s*([\d,]+(?:\.\d+)?)\s+(?:gross\s+)?acres\b`)
	interestLabelRe = regexp.MustCompile(`(?i)\binterest\b`)
	netAcresLabelRe = regexp.MustCompile(`(?i)\bnet\s+acres\b`)
	leaseholdRe     = regexp.MustCompile(`(?i)\blease(?:hold)?\b`)
	lifeEstateRe    = regexp.MustCompile(`(?i)\blife\s+estate\b`)
)

// IsOwnershipReport reports whether the first sheet carries the ownership
// report marker in its first rows.
func IsOwnershipReport(wb *Workbook) bool {
	if wb == nil || len(wb.Sheets) == 0 {
		return false
	}
	rows := wb.Sheets[0].Rows
	if len(rows) > reportMarkerRows {
		rows = rows[:reportMarkerRows]
	}
	for _, row := range rows {
		for _, c := range row {
			if strings.Contains(strings.ToUpper(c), reportMarker) {
				return true
			}
		}
	}
	return false
}

// reportColumns holds column offsets discovered from the anchor row.
type reportColumns struct {
	name, interest, netAcres, leasehold int
}

// sheetMeta is tract metadata shared by every owner on a sheet.
type sheetMeta struct {
	county     string
	legal      string
	tractAcres *float64
}

// parseOwnershipReport parses every sheet that has a "MINERAL OWNER"
// anchor row. Sheets without one are skipped.
func parseOwnershipReport(ctx context.Context, wb *Workbook) ([]models.OwnerEntry, error) {
	var owners []models.OwnerEntry
	for _, sheet := range wb.Sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		anchor, cols, ok := findAnchor(sheet.Rows)
		if !ok {
			continue
		}
		meta := scrapeMeta(sheet.Rows[:anchor])
		owners = append(owners, parseReportRows(sheet, anchor, cols, meta)...)
	}
	return owners, nil
}

// findAnchor locates the first "MINERAL OWNER" header row and matches the
// other column headers by text.
func findAnchor(rows [][]string) (int, reportColumns, bool) {
	for i, row := range rows {
		cols := reportColumns{name: -1, interest: -1, netAcres: -1, leasehold: -1}
		for j, c := range row {
			upper := strings.ToUpper(c)
			switch {
			case strings.Contains(upper, anchorLabel):
				if cols.name < 0 {
					cols.name = j
				}
			case netAcresLabelRe.MatchString(c):
				cols.netAcres = j
			case interestLabelRe.MatchString(c):
				if cols.interest < 0 {
					cols.interest = j
				}
			case leaseholdRe.MatchString(c):
				cols.leasehold = j
			}
		}
		if cols.name >= 0 {
			return i, cols, true
		}
	}
	return 0, reportColumns{}, false
}

// scrapeMeta reads county, legal description and tract acreage from the
// rows above the anchor. A label cell may hold its value inline or in the
// next non-empty cell of the row.
func scrapeMeta(rows [][]string) sheetMeta {
	var m sheetMeta
	for _, row := range rows {
		for j, c := range row {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			switch {
			case m.county == "" && countyLabelRe.MatchString(c):
				m.county = labelValue(countyLabelRe, row, j)
			case m.county == "" && countyInlineRe.MatchString(c):
				m.county = strings.TrimSpace(countyInlineRe.FindStringSubmatch(c)[1])
			case m.tractAcres == nil && acresLabelRe.MatchString(c):
				m.tractAcres = parseNumber(labelValue(acresLabelRe, row, j))
			case m.tractAcres == nil && acresInlineRe.MatchString(c):
				m.tractAcres = parseNumber(acresInlineRe.FindStringSubmatch(c)[1])
			case m.legal == "" && legalLabelRe.MatchString(c):
				m.legal = labelValue(legalLabelRe, row, j)
			case m.legal == "" && legalInlineRe.MatchString(c):
				m.legal = c
			}
		}
	}
	return m
}

func labelValue(re *regexp.Regexp, row []string, j int) string {
	if v := strings.TrimSpace(re.FindStringSubmatch(strings.TrimSpace(row[j]))[1]); v != "" {
		return v
	}
	for k := j + 1; k < len(row); k++ {
		if v := strings.TrimSpace(row[k]); v != "" {
			return v
		}
	}
	return ""
}

// skipReportRow reports page-break and footer rows: repeated headers,
// "Page X of Y", the report banner and certification text.
func skipReportRow(row []string) bool {
	for _, c := range row {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		upper := strings.ToUpper(c)
		if strings.Contains(upper, anchorLabel) || strings.Contains(upper, reportMarker) ||
			pageOfRe.MatchString(c) || footerRe.MatchString(c) {
			return true
		}
	}
	return false
}

func parseReportRows(sheet Sheet, anchor int, cols reportColumns, meta sheetMeta) []models.OwnerEntry {
	var owners []models.OwnerEntry
	// the life tenant is the last owner marked "Life Estate", or failing
	// that the owner row directly above the remaindermen
	previous, marked := "", ""

	for i := anchor + 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if blankRow(row) || skipReportRow(row) {
			continue
		}
		lines := cellLines(cell(row, cols.name))
		if len(lines) == 0 {
			continue
		}

		var batch []models.OwnerEntry
		if remaindermenRe.MatchString(lines[0]) {
			tenant := previous
			if marked != "" {
				tenant = marked
			}
			batch = remaindermen(i+1, lines, tenant)
			previous, marked = tenant, ""
		} else {
			addr, notes := splitCellLines(lines[1:])
			o := newOwner(i+1, lines[0], addr, notes)
			o.Interest = ParseInterest(cell(row, cols.interest))
			o.NetAcres = parseNumber(cell(row, cols.netAcres))
			o.Leasehold = cell(row, cols.leasehold)
			batch = []models.OwnerEntry{o}
			previous = o.FullName
			if lifeEstateRe.MatchString(o.Notes) {
				marked = o.FullName
			}
		}

		for _, o := range batch {
			o.Sheet = sheet.Name
			o.County = meta.county
			o.LegalDescription = meta.legal
			o.TractAcres = meta.tractAcres
			owners = append(owners, o)
		}
	}
	return owners
}

// remaindermen splits a Remaindermen cell into one owner per name and
// address group. A city-state-zip line closes an owner; the next line
// starts another. Each owner is tied to the life tenant above it.
func remaindermen(row int, lines []string, lifeTenant string) []models.OwnerEntry {
	first := strings.TrimSpace(remaindermenRe.ReplaceAllString(lines[0], ""))
	rest := lines[1:]
	if first != "" {
		rest = append([]string{first}, rest...)
	}

	var groups [][]string
	var cur []string
	for _, l := range rest {
		cur = append(cur, l)
		if address.IsCityStateZip(l) {
			groups = append(groups, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}

	owners := make([]models.OwnerEntry, 0, len(groups))
	for _, g := range groups {
		addr, notes := splitCellLines(g[1:])
		note := "Remainderman"
		if lifeTenant != "" {
			note = "Remainderman under life estate of " + lifeTenant
		}
		o := newOwner(row, g[0], addr, append([]string{note}, notes...))
		if lifeTenant != "" {
			o.Signals = append(o.Signals, models.RelationshipSignal{
				Kind:        models.SignalRemainderman,
				RelatedName: lifeTenant,
				Evidence:    note,
			})
		}
		owners = append(owners, o)
	}
	return owners
}
