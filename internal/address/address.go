// Package address decomposes free-text US mailing addresses.
package address

import (
	"regexp"
	"sort"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/models"
)

var (
	// zipTailRe anchors a 5 or 5+4 ZIP at the very end of the string.
	zipTailRe = regexp.MustCompile(`^(.*\D)?(\d{5}(?:-\d{4})?)$`)
	zipRe     = regexp.MustCompile(`^\d{5}(?:-\d{4})?$`)

	// stateTailRe captures a trailing 2-letter token.
	stateTailRe = regexp.MustCompile(`^(.*?)[\s,]*\b([A-Za-z]{2})\.?$`)

	poBoxRe = regexp.MustCompile(`(?i)^\s*(?:P\.?\s*O\.?\s*BOX|POST\s+OFFICE\s+BOX|BOX)\s*#?\s*\d`)
	ruralRe = regexp.MustCompile(`(?i)^\s*(?:RR|R\.R\.|RURAL ROUTE|ROUTE|RT|HC|HCR)\s*\d`)

	unitLineRe = regexp.MustCompile(`(?i)^\s*(?:(?:APT|APARTMENT|SUITE|STE|UNIT|BLDG|BUILDING|FLOOR|RM|ROOM|LOT|SPACE)\.?\s+#?\s*|#\s*)[A-Z0-9]`)
	unitRe     = regexp.MustCompile(`(?i)^(.*?\S)[\s,]+((?:APT|APARTMENT|SUITE|STE|UNIT|BLDG|BUILDING|FLOOR|FL|RM|ROOM|LOT|SPACE|SPC|DEPT)\.?\s*#?\s*[A-Z0-9][A-Z0-9-]*|#\s*[A-Z0-9][A-Z0-9-]*)$`)

	careOfSegRe   = regexp.MustCompile(`(?i)^(?:c/o|c\\o|care of|attn:?|attention:?)\s`)
	nowKnownRe    = regexp.MustCompile(`(?i)\b(?:now known as|n/k/a|nka)\b.*$`)
	datedRe       = regexp.MustCompile(`(?i)\b(?:u/t/a|u/a|utd)?\s*dated\s+\S.*$`)
	multiCommaRe  = regexp.MustCompile(`\s*,[\s,]*`)
	whitespaceRes = regexp.MustCompile(`\s+`)
)

// streetSuffixes end the street portion when a city follows without a comma.
var streetSuffixes = map[string]bool{
	"ST": true, "STREET": true, "AVE": true, "AVENUE": true, "AV": true,
	"RD": true, "ROAD": true, "DR": true, "DRIVE": true, "LN": true, "LANE": true,
	"BLVD": true, "BOULEVARD": true, "CT": true, "COURT": true, "CIR": true,
	"CIRCLE": true, "PL": true, "PLACE": true, "WAY": true, "TRL": true,
	"TRAIL": true, "PKWY": true, "PARKWAY": true, "HWY": true, "HIGHWAY": true,
	"FWY": true, "LOOP": true, "TER": true, "TERRACE": true, "SQ": true,
	"PLZ": true, "PLAZA": true, "XING": true, "RUN": true, "PATH": true,
}

// stateNamesBySize lists full state names longest first so that
// "WEST VIRGINIA" wins over "VIRGINIA".
var stateNamesBySize = func() []string {
	names := make([]string, 0, len(nameToState))
	for name := range nameToState {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

// Parse decomposes raw into street, street2, city, state and ZIP. It never
// fails; unusable input yields an empty ParsedAddress.
func Parse(raw string) models.ParsedAddress {
	s := normalize(raw)
	if s == "" {
		return models.ParsedAddress{}
	}

	var out models.ParsedAddress
	rest := s

	if m := zipTailRe.FindStringSubmatch(s); m != nil && !endsWithBox(m[1]) {
		out.Zip = m[2]
		rest = trimSeparators(m[1])

		if state, before, ok := splitStateTail(rest); ok {
			out.State = state
			out.Street, out.City = splitStreetCity(before)
			return finishStreet(out)
		}
	}

	var zip string
	out.Street, out.City, out.State, zip = fallbackSegments(rest)
	if out.Zip == "" {
		out.Zip = zip
	}
	return finishStreet(out)
}

// IsValidZip reports whether zip is a 5 or 5+4 digit ZIP code.
func IsValidZip(zip string) bool {
	return zipRe.MatchString(zip)
}

// IsPOBox reports whether s starts with a post office box designator.
func IsPOBox(s string) bool {
	return poBoxRe.MatchString(s)
}

// LooksLikeStreet reports whether s starts like a street line: a house
// number, a PO Box or a rural route.
func LooksLikeStreet(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if poBoxRe.MatchString(t) || ruralRe.MatchString(t) {
		return true
	}
	return t[0] >= '0' && t[0] <= '9' && len(strings.Fields(t)) > 1
}

// IsUnitLine reports whether s starts with an apartment, suite or unit
// designator.
func IsUnitLine(s string) bool {
	return unitLineRe.MatchString(s)
}

// IsCityStateZip reports whether line holds only a city, a valid state and
// a ZIP, as on the last line of a mailing address.
func IsCityStateZip(line string) bool {
	if LooksLikeStreet(line) {
		return false
	}
	a := Parse(line)
	return a.Zip != "" && a.State != "" && a.City != "" && a.Street == ""
}

// FormatFull renders addr as "street, street2, city, ST zip". For well
// formed addresses Parse(FormatFull(a)) == a.
func FormatFull(addr models.ParsedAddress) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{addr.Street, addr.Street2, addr.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if tail := strings.TrimSpace(addr.State + " " + addr.Zip); tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

// normalize turns line breaks into commas, drops annotation segments and
// collapses separators.
func normalize(raw string) string {
	s := strings.NewReplacer("\r\n", ",", "\r", ",", "\n", ",", "\t", " ").Replace(raw)
	s = whitespaceRes.ReplaceAllString(s, " ")

	segments := strings.Split(s, ",")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" || careOfSegRe.MatchString(seg+" ") {
			continue
		}
		seg = strings.TrimSpace(nowKnownRe.ReplaceAllString(seg, ""))
		seg = strings.TrimSpace(datedRe.ReplaceAllString(seg, ""))
		if seg != "" {
			kept = append(kept, seg)
		}
	}
	return multiCommaRe.ReplaceAllString(strings.Join(kept, ", "), ", ")
}

func endsWithBox(before string) bool {
	fields := strings.Fields(strings.ToUpper(trimSeparators(before)))
	if len(fields) == 0 {
		return false
	}
	last := strings.TrimSuffix(fields[len(fields)-1], "#")
	return last == "BOX" || fields[len(fields)-1] == "#"
}

func trimSeparators(s string) string {
	return strings.Trim(strings.TrimSpace(s), ", ")
}

// splitStateTail pulls a trailing state code or full state name off s.
func splitStateTail(s string) (state, before string, ok bool) {
	if m := stateTailRe.FindStringSubmatch(s); m != nil {
		if code, valid := NormalizeState(m[2]); valid {
			return code, trimSeparators(m[1]), true
		}
	}

	upper := strings.ToUpper(s)
	for _, name := range stateNamesBySize {
		if !strings.HasSuffix(upper, name) {
			continue
		}
		head := s[:len(s)-len(name)]
		if head != "" && !strings.HasSuffix(head, " ") && !strings.HasSuffix(head, ",") {
			continue
		}
		return nameToState[name], trimSeparators(head), true
	}
	return "", s, false
}

// splitStreetCity splits on the last comma: the final segment is the city.
// Without a comma a street suffix marks the boundary.
func splitStreetCity(s string) (street, city string) {
	s = trimSeparators(s)
	if s == "" {
		return "", ""
	}
	if i := strings.LastIndex(s, ","); i >= 0 {
		return trimSeparators(s[:i]), trimSeparators(s[i+1:])
	}
	if !LooksLikeStreet(s) {
		return "", s
	}
	return splitNoComma(s)
}

// splitNoComma handles "123 MAIN ST AUSTIN" and "PO BOX 9 MIDLAND".
func splitNoComma(s string) (street, city string) {
	tokens := strings.Fields(s)
	if poBoxRe.MatchString(s) {
		for i, tok := range tokens {
			if tok[0] >= '0' && tok[0] <= '9' {
				if i+1 < len(tokens) {
					return strings.Join(tokens[:i+1], " "), strings.Join(tokens[i+1:], " ")
				}
				return s, ""
			}
		}
		return s, ""
	}
	for i := len(tokens) - 2; i >= 1; i-- {
		if streetSuffixes[strings.ToUpper(strings.TrimSuffix(tokens[i], "."))] {
			return strings.Join(tokens[:i+1], " "), strings.Join(tokens[i+1:], " ")
		}
	}
	return s, ""
}

// fallbackSegments infers street, city, state and ZIP when no valid
// ZIP+state tail exists. Segments are scanned from the end and every token
// of a non-street segment is a state candidate, so a street trailing the
// city line ("AUSTIN, TX 78701, 1 ELM") still parses.
func fallbackSegments(s string) (street, city, state, zip string) {
	s = trimSeparators(s)
	if s == "" {
		return "", "", "", ""
	}
	segs := strings.Split(s, ",")
	for i := range segs {
		segs[i] = strings.TrimSpace(segs[i])
	}

	for k := len(segs) - 1; k >= 0; k-- {
		seg := segs[k]
		if LooksLikeStreet(seg) {
			continue
		}
		tokens := strings.Fields(seg)
		code, j, n, ok := findState(tokens)
		if !ok {
			continue
		}
		var streets []string
		if j > 0 {
			city = strings.Join(tokens[:j], " ")
			streets = append(streets, segs[:k]...)
		} else if k > 0 {
			city = segs[k-1]
			streets = append(streets, segs[:k-1]...)
		}
		// a malformed ZIP after the state is dropped
		if tail := tokens[j+n:]; len(tail) > 0 && zipRe.MatchString(tail[0]) {
			zip = tail[0]
		}
		streets = append(streets, segs[k+1:]...)
		return strings.Join(streets, ", "), city, code, zip
	}

	if len(segs) == 1 {
		if LooksLikeStreet(segs[0]) {
			street, city = splitNoComma(segs[0])
			return street, city, "", ""
		}
		return "", segs[0], "", ""
	}
	return strings.Join(segs[:len(segs)-1], ", "), segs[len(segs)-1], "", ""
}

// findState returns the last state in tokens, written as a code or a one
// or two word name, with its index and token count.
func findState(tokens []string) (code string, at, n int, ok bool) {
	for end := len(tokens) - 1; end >= 0; end-- {
		if end > 0 {
			if code, ok := NormalizeState(tokens[end-1] + " " + tokens[end]); ok {
				return code, end - 1, 2, true
			}
		}
		if code, ok := NormalizeState(tokens[end]); ok {
			return code, end, 1, true
		}
	}
	if code, ok := NormalizeState(strings.Join(tokens, " ")); ok {
		return code, 0, len(tokens), true
	}
	return "", 0, 0, false
}

// finishStreet moves a trailing apartment/suite/unit designator into
// Street2. PO Boxes are left intact.
func finishStreet(a models.ParsedAddress) models.ParsedAddress {
	if a.Street == "" || poBoxRe.MatchString(a.Street) {
		return a
	}
	if m := unitRe.FindStringSubmatch(a.Street); m != nil {
		a.Street = trimSeparators(m[1])
		a.Street2 = strings.TrimSpace(m[2])
	}
	return a
}
