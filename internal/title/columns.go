package title

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/address"
	"github.com/stwalsh4118/landman/api/internal/extract"
	"github.com/stwalsh4118/landman/api/internal/models"
)

// Layout names how owners are laid out on a sheet.
type Layout string

const (
	LayoutSingleColumn    Layout = "single_column"
	LayoutTwoColumn       Layout = "two_column"
	LayoutMultiColumn     Layout = "multi_column"
	LayoutOwnershipReport Layout = "ownership_report"
)

// headerScanRows bounds the search for a header row.
const headerScanRows = 15

var (
	headerCellRe   = regexp.MustCompile(`(?i)^\s*(?:(?:mineral\s+)?owners?(?:'?s)?(?:\s+name)?|names?|full\s+name|grantors?|grantees?|lessors?|part(?:y|ies)|(?:mailing\s+)?address|notes?|remarks|comments)\s*:?\s*$`)
	numberPrefixRe = regexp.MustCompile(`^\s*U?\d+\.\s+`)
	digitRe        = regexp.MustCompile(`\d`)
)

type field int

const (
	fieldNone field = iota
	fieldName
	fieldAddress
	fieldAddress2
	fieldCity
	fieldState
	fieldZip
	fieldInterest
	fieldNetAcres
	fieldNotes
	fieldLegal
	fieldCounty
	fieldLeasehold
)

// headerFields map header text to an owner field; the first match wins so
// "Net Acres" never reads as a plain acreage or interest column.
var headerFields = []struct {
	f  field
	re *regexp.Regexp
}{
	{fieldNetAcres, regexp.MustCompile(`(?i)\bnet\s+(?:mineral\s+)?acres\b`)},
	{fieldAddress2, regexp.MustCompile(`(?i)\baddress\s*(?:2|line\s*2)\b|\bsuite\b`)},
	{fieldAddress, regexp.MustCompile(`(?i)\baddress|\bstreet\b`)},
	{fieldCity, regexp.MustCompile(`(?i)^\s*city\b`)},
	{fieldState, regexp.MustCompile(`(?i)^\s*(?:state|st)\s*$`)},
	{fieldZip, regexp.MustCompile(`(?i)\bzip|\bpostal\b`)},
	{fieldInterest, regexp.MustCompile(`(?i)\binterest\b|\bdecimal\b|\bnri\b|\bownership\b`)},
	{fieldNotes, regexp.MustCompile(`(?i)\bnotes?\b|\bremarks\b|\bcomments?\b`)},
	{fieldLegal, regexp.MustCompile(`(?i)\blegal\b|\bdescription\b`)},
	{fieldCounty, regexp.MustCompile(`(?i)^\s*county\b`)},
	{fieldLeasehold, regexp.MustCompile(`(?i)\blease`)},
	{fieldName, regexp.MustCompile(`(?i)\bowner|\bname\b|\bgrantor|\bgrantee|\blessor|\bpart(?:y|ies)\b`)},
}

// DetectSheetLayout classifies a sheet by how many columns carry data.
func DetectSheetLayout(s Sheet) Layout {
	switch w := sheetWidth(s.Rows); {
	case w <= 1:
		return LayoutSingleColumn
	case w <= 3:
		return LayoutTwoColumn
	default:
		return LayoutMultiColumn
	}
}

func sheetWidth(rows [][]string) int {
	w := 0
	for _, row := range rows {
		for j := len(row) - 1; j >= 0; j-- {
			if strings.TrimSpace(row[j]) != "" {
				if j+1 > w {
					w = j + 1
				}
				break
			}
		}
	}
	return w
}

// findHeaderRow returns the first early row whose cells read as column
// headers rather than data.
func findHeaderRow(rows [][]string) (int, bool) {
	for i, row := range rows {
		if i >= headerScanRows {
			break
		}
		for _, c := range row {
			if headerCellRe.MatchString(c) {
				return i, true
			}
		}
	}
	return 0, false
}

// firstColumn is the leftmost column holding any data.
func firstColumn(rows [][]string) int {
	best := -1
	for _, row := range rows {
		for j, c := range row {
			if strings.TrimSpace(c) != "" {
				if best < 0 || j < best {
					best = j
				}
				break
			}
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// parseSingleColumn treats each multi-line cell, or each run of single-line
// cells between blank rows, as one free-text owner block.
func parseSingleColumn(ctx context.Context, s Sheet) ([]models.OwnerEntry, error) {
	col := firstColumn(s.Rows)
	start := 0
	if h, ok := findHeaderRow(s.Rows); ok {
		start = h + 1
	}

	type block struct {
		row   int
		lines []string
	}
	var blocks []block
	var cur *block
	flush := func() {
		if cur != nil && len(cur.lines) > 0 {
			blocks = append(blocks, *cur)
		}
		cur = nil
	}
	for i := start; i < len(s.Rows); i++ {
		lines := cellLines(cell(s.Rows[i], col))
		switch {
		case len(lines) == 0:
			flush()
		case len(lines) > 1 || numberPrefixRe.MatchString(lines[0]):
			flush()
			blocks = append(blocks, block{row: i + 1, lines: lines})
		default:
			if cur == nil {
				cur = &block{row: i + 1}
			}
			cur.lines = append(cur.lines, lines[0])
		}
	}
	flush()

	owners := make([]models.OwnerEntry, 0, len(blocks))
	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := numberPrefixRe.ReplaceAllString(strings.Join(b.lines, "\n"), "")
		e := extract.ParseEntry(strconv.Itoa(b.row), text)
		owners = append(owners, fromParty(b.row, e))
	}
	return owners, nil
}

// parseTwoColumn reads name plus up to two more plain columns. A later
// column holding a digit is an address; otherwise it is a note.
func parseTwoColumn(ctx context.Context, s Sheet) ([]models.OwnerEntry, error) {
	col := firstColumn(s.Rows)
	start := 0
	if h, ok := findHeaderRow(s.Rows); ok {
		start = h + 1
	}

	var owners []models.OwnerEntry
	for i := start; i < len(s.Rows); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := s.Rows[i]
		lines := cellLines(cell(row, col))
		if len(lines) == 0 {
			continue
		}
		addr, notes := splitCellLines(lines[1:])
		for j := col + 1; j < col+3; j++ {
			v := cell(row, j)
			switch {
			case v == "":
			case digitRe.MatchString(v):
				addr = append(addr, cellLines(v)...)
			default:
				notes = append(notes, v)
			}
		}
		owners = append(owners, newOwner(i+1, lines[0], addr, notes))
	}
	return owners, nil
}

// parseMultiColumn maps columns by header text. Sheets without a
// recognizable header fall back to the two-column reading.
func parseMultiColumn(ctx context.Context, s Sheet) ([]models.OwnerEntry, error) {
	h, ok := findHeaderRow(s.Rows)
	if !ok {
		return parseTwoColumn(ctx, s)
	}
	fields := mapHeader(s.Rows[h])
	nameCol := -1
	for j, f := range fields {
		if f == fieldName {
			nameCol = j
			break
		}
	}
	if nameCol < 0 {
		return parseTwoColumn(ctx, s)
	}

	var owners []models.OwnerEntry
	for i := h + 1; i < len(s.Rows); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := s.Rows[i]
		lines := cellLines(cell(row, nameCol))
		if len(lines) == 0 {
			continue
		}
		values := make(map[field]string)
		for j, f := range fields {
			if v := cell(row, j); v != "" && f != fieldNone {
				if prev, seen := values[f]; seen {
					v = prev + "; " + v
				}
				values[f] = v
			}
		}

		addr, notes := splitCellLines(lines[1:])
		if line := structuredAddress(values); line != "" {
			addr = append(addr, line)
		}
		if n := values[fieldNotes]; n != "" {
			notes = append(notes, n)
		}
		o := newOwner(i+1, lines[0], addr, notes)
		o.Interest = ParseInterest(values[fieldInterest])
		o.NetAcres = parseNumber(values[fieldNetAcres])
		o.LegalDescription = values[fieldLegal]
		o.County = values[fieldCounty]
		o.Leasehold = values[fieldLeasehold]
		owners = append(owners, o)
	}
	return owners, nil
}

func mapHeader(row []string) []field {
	fields := make([]field, len(row))
	for j, c := range row {
		if strings.TrimSpace(c) == "" {
			continue
		}
		for _, hf := range headerFields {
			if hf.re.MatchString(c) {
				fields[j] = hf.f
				break
			}
		}
	}
	return fields
}

// structuredAddress renders separate address columns as one line the
// address parser reads back.
func structuredAddress(v map[field]string) string {
	a := models.ParsedAddress{
		Street:  v[fieldAddress],
		Street2: v[fieldAddress2],
		City:    v[fieldCity],
		Zip:     v[fieldZip],
	}
	if st, ok := address.NormalizeState(v[fieldState]); ok {
		a.State = st
	}
	return address.FormatFull(a)
}
