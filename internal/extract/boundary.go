package extract

import (
	"regexp"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/address"
)

var (
	inlineBoundaryRe = regexp.MustCompile(`(?i),\s*(?:\d+\s+\S|P\.?\s*O\.?\s*BOX|POST\s+OFFICE\s+BOX|c/o\s|care\s+of\s)`)
	careOfLineRe     = regexp.MustCompile(`(?i)^\s*(?:c/o|care\s+of)\s`)
	zipEndRe         = regexp.MustCompile(`\b\d{5}(?:-\d{4})?$`)
	houseNumberRe    = regexp.MustCompile(`^\d+[A-Za-z]?$`)
)

// splitFallback is one single-line strategy. ok is false when the strategy
// could not find a boundary.
type splitFallback struct {
	name  string
	split func(line string) (name, addr string, ok bool)
}

// singleLineFallbacks run in order once the line-based split finds nothing.
var singleLineFallbacks = []splitFallback{
	{"inline", splitInline},
	{"house_number", splitHouseNumber},
	{"zip_backward", splitZipBackward},
	{"comma_count", splitCommaCount},
}

// SplitNameAddress separates the party name from the mailing address in an
// entry's text. Lines are tried first; single-line entries go through the
// fallback cascade. addr is empty when no address could be located.
func SplitNameAddress(text string) (name, addr string) {
	name, addr, _ = splitNameAddress(text)
	return name, addr
}

// splitNameAddress also reports which strategy found the boundary, or ""
// when none did.
func splitNameAddress(text string) (name, addr, strategy string) {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return "", "", ""
	}

	if len(lines) > 1 {
		if b := lineBoundary(lines); b > 0 {
			name, addr = strings.Join(lines[:b], " "), strings.Join(lines[b:], ", ")
			// the street can still share the first line with the name
			if n, a, ok := splitInline(name); ok {
				return tidy(n), tidy(a) + ", " + addr, "lines"
			}
			return name, addr, "lines"
		}
	}

	joined := strings.Join(lines, ", ")
	for _, f := range singleLineFallbacks {
		if n, a, ok := f.split(joined); ok {
			return tidy(n), tidy(a), f.name
		}
	}
	return tidy(joined), "", ""
}

// lineBoundary returns the index of the first address line, or 0 when the
// lines carry no recognizable address. Line 0 is always part of the name.
func lineBoundary(lines []string) int {
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if careOfLineRe.MatchString(line) || address.LooksLikeStreet(line) || address.IsUnitLine(line) {
			return i
		}
		if address.IsCityStateZip(line) {
			// the street may sit on lines without a house number
			j := i
			for j > 1 && addressish(lines[j-1]) {
				j--
			}
			return j
		}
	}
	return 0
}

func addressish(line string) bool {
	if address.IsUnitLine(line) || address.IsPOBox(line) {
		return true
	}
	for _, r := range line {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func splitInline(line string) (string, string, bool) {
	loc := inlineBoundaryRe.FindStringIndex(line)
	if loc == nil || loc[0] == 0 {
		return "", "", false
	}
	return line[:loc[0]], line[loc[0]+1:], true
}

// splitHouseNumber splits before the first bare house number. The last
// token is never considered so a trailing ZIP cannot match.
func splitHouseNumber(line string) (string, string, bool) {
	tokens := strings.Fields(line)
	for i := 1; i < len(tokens)-1; i++ {
		tok := strings.Trim(tokens[i], ",")
		if !houseNumberRe.MatchString(tok) {
			continue
		}
		return strings.Join(tokens[:i], " "), strings.Join(tokens[i:], " "), true
	}
	return "", "", false
}

// splitZipBackward walks back from a trailing ZIP: the city-state-ZIP
// segment and the segment before it form the address.
func splitZipBackward(line string) (string, string, bool) {
	if !zipEndRe.MatchString(line) {
		return "", "", false
	}
	segs := strings.Split(line, ",")
	if len(segs) >= 3 {
		cut := len(segs) - 3
		if address.IsCityStateZip(strings.TrimSpace(segs[len(segs)-1])) {
			cut = len(segs) - 2
		}
		if cut < 1 {
			cut = 1
		}
		return strings.Join(segs[:cut], ","), strings.Join(segs[cut:], ","), true
	}
	if len(segs) == 2 {
		return segs[0], segs[1], true
	}
	// "JANE DOE AUSTIN TX 78701": the last three tokens are city, state, ZIP.
	tokens := strings.Fields(line)
	if len(tokens) >= 4 {
		if _, ok := address.NormalizeState(tokens[len(tokens)-2]); ok {
			return strings.Join(tokens[:len(tokens)-3], " "), strings.Join(tokens[len(tokens)-3:], " "), true
		}
	}
	return "", "", false
}

func splitCommaCount(line string) (string, string, bool) {
	switch strings.Count(line, ",") {
	case 0:
		return "", "", false
	case 1:
		i := strings.Index(line, ",")
		rest := strings.TrimSpace(line[i+1:])
		if !addressish(rest) {
			return "", "", false
		}
		return line[:i], rest, true
	default:
		i := strings.Index(line, ",")
		return line[:i], line[i+1:], true
	}
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = tidy(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func tidy(s string) string {
	return strings.Trim(strings.Join(strings.Fields(s), " "), ", ")
}
