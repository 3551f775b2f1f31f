// Package names splits party names into parts and tells people apart from
// businesses, trusts and estates.
package names

import (
	"regexp"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/textnorm"
)

// SingleTokenPolicy decides what a bare one-word name becomes.
type SingleTokenPolicy int

const (
	// SingleTokenFirst stores a lone token as the first name. Exhibit-A
	// parsing uses this.
	SingleTokenFirst SingleTokenPolicy = iota
	// SingleTokenLast stores a lone token as the last name. Title reports
	// use this.
	SingleTokenLast
)

// Parser decomposes individual names under a fixed single-token policy.
type Parser struct {
	single SingleTokenPolicy
}

// NewParser returns a Parser using policy for one-word names.
func NewParser(policy SingleTokenPolicy) *Parser {
	return &Parser{single: policy}
}

// Call-site parsers. The two tools disagree on single tokens on purpose.
var (
	ExtractParser = NewParser(SingleTokenFirst)
	TitleParser   = NewParser(SingleTokenLast)
)

// businessWords are whole tokens (dots removed) that mark a non-person.
var businessWords = map[string]bool{
	"LLC": true, "PLLC": true, "LLP": true, "LP": true, "LTD": true, "LIMITED": true,
	"INC": true, "INCORPORATED": true, "CORP": true, "CORPORATION": true,
	"COMPANY": true, "CO": true, "TRUST": true, "TRUSTS": true, "ESTATE": true,
	"FOUNDATION": true, "PARTNERSHIP": true, "PARTNERS": true, "BANK": true,
	"COUNTY": true, "UNIVERSITY": true, "COLLEGE": true, "CHURCH": true,
	"MINISTRIES": true, "MINISTRY": true, "ISD": true, "SCHOOL": true,
	"DISTRICT": true, "DEPARTMENT": true, "AUTHORITY": true, "COMMISSION": true,
	"MINERAL": true, "MINERALS": true, "ROYALTY": true, "ROYALTIES": true,
	"ENERGY": true, "OIL": true, "GAS": true, "PETROLEUM": true,
	"RESOURCES": true, "EXPLORATION": true, "OPERATING": true,
	"PRODUCTION": true, "HOLDINGS": true, "INVESTMENTS": true,
	"PROPERTIES": true, "RANCH": true, "LAND": true, "ASSOCIATION": true,
	"FUND": true, "CAPITAL": true, "GROUP": true, "ENTERPRISES": true,
	"VENTURES": true, "HEIRS": true, "SOCIETY": true, "INSTITUTE": true,
}

// businessPhrases match anywhere in the padded, dot-free upper-case name.
var businessPhrases = []string{
	" CITY OF ", " STATE OF ", " TOWN OF ", " UNITED STATES ",
	" BUREAU OF ", " VILLAGE OF ", " ET AL ",
}

var honorifics = map[string]bool{
	"MR": true, "MRS": true, "MS": true, "MISS": true, "DR": true,
	"REV": true, "REVEREND": true, "HON": true, "SIR": true, "MADAM": true,
}

var suffixes = map[string]bool{
	"JR": true, "SR": true, "II": true, "III": true, "IV": true, "V": true,
	"VI": true, "ESQ": true, "MD": true, "PHD": true, "DDS": true,
	"DVM": true, "CPA": true, "JD": true, "RN": true,
}

// legalPhrases contain a conjunction that never separates two parties.
var legalPhrases = []string{
	"heirs and assigns", "heirs and devisees", "successors and assigns",
	"executors and administrators", "husband and wife", "wife and husband",
	"oil and gas", "gas and oil", "land and cattle", "individually and as",
	"mother and next friend", "father and next friend", "and/or",
	"life estate and remainder",
}

var (
	conjunctionRe = regexp.MustCompile(`(?i)\s+(?:&|and)\s+`)
	wordRe        = regexp.MustCompile(`[A-Z0-9]+`)
)

// IsBusinessName reports whether name denotes a business, trust, estate,
// government body or other non-person. A single all-caps token longer than
// four characters is treated as a business.
func IsBusinessName(name string) bool {
	upper := strings.ReplaceAll(strings.ToUpper(textnorm.CollapseSpace(name)), ".", "")
	if upper == "" {
		return false
	}
	words := wordRe.FindAllString(upper, -1)
	for _, w := range words {
		if businessWords[w] {
			return true
		}
	}
	padded := " " + strings.Join(words, " ") + " "
	for _, p := range businessPhrases {
		if strings.Contains(padded, p) {
			return true
		}
	}

	trimmed := strings.TrimSpace(name)
	if len(strings.Fields(trimmed)) == 1 && len(trimmed) > 4 && trimmed == strings.ToUpper(trimmed) && strings.ToLower(trimmed) != trimmed {
		return true
	}
	return false
}

// IsSuffix reports whether tok is a generational or professional suffix.
func IsSuffix(tok string) bool {
	return suffixes[normToken(tok)]
}

// ParseIndividual splits name into first, middle, last and suffix. Business
// names come back with IsPerson false and no parts. Both "Last, First
// Middle" and "First Middle Last" layouts are accepted.
func (p *Parser) ParseIndividual(name string) models.ParsedName {
	if IsBusinessName(name) {
		return models.ParsedName{}
	}
	s := strings.Trim(textnorm.CollapseSpace(name), ", ")
	if s == "" {
		return models.ParsedName{}
	}

	tokens := strings.Fields(s)
	for len(tokens) > 1 && honorifics[normToken(tokens[0])] {
		tokens = tokens[1:]
	}

	out := models.ParsedName{IsPerson: true}
	if len(tokens) > 2 && IsSuffix(tokens[len(tokens)-1]) {
		out.Suffix = strings.Trim(tokens[len(tokens)-1], ",")
		tokens = tokens[:len(tokens)-1]
	}
	s = strings.Trim(strings.Join(tokens, " "), ", ")

	if i := strings.Index(s, ","); i >= 0 {
		lastPart := strings.Fields(strings.Trim(s[:i], ", "))
		rest := strings.Fields(strings.Trim(s[i+1:], ", "))
		if out.Suffix == "" && len(lastPart) > 1 && IsSuffix(lastPart[len(lastPart)-1]) {
			out.Suffix = lastPart[len(lastPart)-1]
			lastPart = lastPart[:len(lastPart)-1]
		}
		if out.Suffix == "" && len(rest) == 1 && IsSuffix(rest[0]) {
			out.Suffix = rest[0]
			rest = nil
		}
		out.Last = strings.Join(lastPart, " ")
		if len(rest) > 0 {
			out.First = rest[0]
			out.Middle = strings.Join(rest[1:], " ")
		}
		return out
	}

	tokens = strings.Fields(s)
	switch len(tokens) {
	case 0:
		return models.ParsedName{}
	case 1:
		if p.single == SingleTokenLast {
			out.Last = tokens[0]
		} else {
			out.First = tokens[0]
		}
	default:
		out.First = tokens[0]
		out.Last = tokens[len(tokens)-1]
		out.Middle = strings.Join(tokens[1:len(tokens)-1], " ")
	}
	return out
}

// SplitMultipleNames splits "John & Jane Smith" style compound names into
// individuals, carrying a shared surname onto earlier parts. Names holding
// a legal phrase, and business names, are returned unsplit.
func SplitMultipleNames(name string) []string {
	s := textnorm.CollapseSpace(name)
	if s == "" {
		return nil
	}

	lower := " " + strings.ToLower(textnorm.CollapseSpace(strings.ReplaceAll(s, "&", " and "))) + " "
	for _, phrase := range legalPhrases {
		if strings.Contains(lower, phrase) {
			return []string{s}
		}
	}
	if IsBusinessName(s) {
		return []string{s}
	}

	raw := conjunctionRe.Split(s, -1)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.Trim(p, ", "); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return []string{s}
	}

	lastTokens := strings.Fields(parts[len(parts)-1])
	if len(lastTokens) < 2 {
		return parts
	}
	surname := lastTokens[len(lastTokens)-1]
	for i := 0; i < len(parts)-1; i++ {
		pt := strings.Fields(parts[i])
		if len(pt) != 1 && len(pt) >= len(lastTokens) {
			continue
		}
		if strings.EqualFold(pt[len(pt)-1], surname) {
			continue
		}
		parts[i] = parts[i] + " " + surname
	}
	return parts
}

func normToken(tok string) string {
	return strings.ToUpper(strings.Trim(tok, ".,"))
}
