// Package textnorm folds names and addresses into comparison keys.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopTokens carry no identity and are dropped from comparison keys.
var stopTokens = map[string]bool{
	"THE": true, "OF": true, "AND": true, "A": true, "AN": true,
}

// Fold strips diacritics, applies compatibility normalization and
// upper-cases the result. Invalid input is returned upper-cased unchanged.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(folded)
}

// Key folds s and keeps only letters, digits and single spaces. "&" becomes
// "AND" before punctuation is removed.
func Key(s string) string {
	folded := Fold(strings.ReplaceAll(s, "&", " AND "))
	var b strings.Builder
	b.Grow(len(folded))
	space := true
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case !space:
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens returns the words of Key(s) with stop tokens removed.
func Tokens(s string) []string {
	fields := strings.Fields(Key(s))
	out := fields[:0]
	for _, f := range fields {
		if !stopTokens[f] {
			out = append(out, f)
		}
	}
	return out
}

// CollapseSpace trims s and reduces every whitespace run to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
