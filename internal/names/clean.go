package names

import (
	"regexp"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/textnorm"
)

// cleanRule removes one class of annotation from a name.
type cleanRule struct {
	name string
	re   *regexp.Regexp
}

// cleanRules run in order. The individually rule must follow the trustee
// rule: stripping "as Trustee of ..." leaves a dangling "Individually and"
// that only the later rule removes.
var cleanRules = []cleanRule{
	{"alias", regexp.MustCompile(`(?i)[,\s]*\b(?:a/k/a|f/k/a|n/k/a|aka|fka|nka|also known as|formerly known as|now known as)\b.*$`)},
	{"care_of", regexp.MustCompile(`(?i)[,\s]*\b(?:c/o|care of)\b.*$`)},
	{"trustee", regexp.MustCompile(`(?i)[,\s]*\b(?:as\s+)?(?:successor\s+|co-?)?(?:trustees?|ttees?)\b.*$`)},
	{"individually", regexp.MustCompile(`(?i)[,\s]*\bindividually\b.*$`)},
	{"unknown_heirs_prefix", regexp.MustCompile(`(?i)^\s*(?:the\s+)?unknown\s+heirs\b.*?\bof\s+`)},
	{"unknown_heirs_suffix", regexp.MustCompile(`(?i)[,\s]*\b(?:the\s+)?unknown\s+heirs\b.*$`)},
	{"deceased", regexp.MustCompile(`(?i)[,\s]*\(?\s*\b(?:deceased|dec'd|decd)\b\s*\)?`)},
}

// Clean strips alias, care-of, trustee, "individually and as", unknown heirs
// and deceased annotations from name. If nothing would remain the collapsed
// input is returned.
func Clean(name string) string {
	original := textnorm.CollapseSpace(name)
	s := original
	for _, r := range cleanRules {
		s = r.re.ReplaceAllString(s, "")
	}
	s = strings.Trim(textnorm.CollapseSpace(s), ", ")
	if s == "" {
		return strings.Trim(original, ", ")
	}
	return s
}
