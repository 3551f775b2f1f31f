package extract

import (
	"regexp"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/models"
)

// annotation is one category of text stripped from an entry into notes.
// keep leaves the span in the working text; c/o stays because it belongs
// to the mailing address.
type annotation struct {
	name   string
	re     *regexp.Regexp
	note   func(m []string) string
	signal func(m []string) *models.RelationshipSignal
	keep   bool
	skip   func(text string) bool
}

var unknownHeirsRe = regexp.MustCompile(`(?i)\bunknown\s+heirs\b`)

// annotations run in order; "individually and as" must precede trustee so
// that the trustee rule never sees the combined phrase.
var annotations = []annotation{
	{
		name: "aka",
		re:   regexp.MustCompile(`(?i)[, \t]*\b(?:a/k/a|aka|also known as)[ \t]+([^,\n\d]+)`),
		note: func(m []string) string { return "a/k/a " + clip(m[1]) },
		signal: func(m []string) *models.RelationshipSignal {
			return &models.RelationshipSignal{Kind: models.SignalAlias, RelatedName: clip(m[1]), Evidence: clip(m[0])}
		},
	},
	{
		name: "fka",
		re:   regexp.MustCompile(`(?i)[, \t]*\b(?:f/k/a|fka|formerly known as)[ \t]+([^,\n\d]+)`),
		note: func(m []string) string { return "f/k/a " + clip(m[1]) },
		signal: func(m []string) *models.RelationshipSignal {
			return &models.RelationshipSignal{Kind: models.SignalAlias, RelatedName: clip(m[1]), Evidence: clip(m[0])}
		},
	},
	{
		name: "care_of",
		re:   regexp.MustCompile(`(?i)\b(?:c/o|care of)[ \t]+([^,\n]+)`),
		note: func(m []string) string { return "c/o " + clip(m[1]) },
		keep: true,
	},
	{
		name: "trust_dated",
		re:   regexp.MustCompile(`(?i)[, \t]*\b(?:u/t/a[ \t]+|u/a[ \t]+|utd[ \t]+|under trust agreement[ \t]+)?dated[ \t]+([A-Za-z]+\.?[ \t]+\d{1,2},?[ \t]+\d{4}|\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`),
		note: func(m []string) string { return "dated " + clip(m[1]) },
	},
	{
		name: "individually",
		re:   regexp.MustCompile(`(?i)[, \t]*\bindividually[ \t]+and[ \t]+as[ \t]+([^,\n\d]+)`),
		note: func(m []string) string { return "Individually and as " + clip(m[1]) },
		signal: func(m []string) *models.RelationshipSignal {
			return roleSignal(m[1], clip(m[0]))
		},
	},
	{
		name: "trustee_of",
		re:   regexp.MustCompile(`(?i)[, \t]*\b(?:as[ \t]+)?(?:successor[ \t]+|co-?)?trustees?[ \t]+(?:of|for|under)[ \t]+(?:the[ \t]+)?([^,\n\d]+)`),
		note: func(m []string) string { return "Trustee of " + clip(m[1]) },
		signal: func(m []string) *models.RelationshipSignal {
			return &models.RelationshipSignal{Kind: models.SignalTrustee, RelatedName: clip(m[1]), Evidence: clip(m[0])}
		},
	},
	{
		name: "trustee",
		re:   regexp.MustCompile(`(?i)[, \t]+(?:as[ \t]+)?(?:successor[ \t]+|co-?)?(?:trustees?|ttee)\b\.?`),
		note: func(m []string) string { return "Trustee" },
	},
	{
		name: "heir_of",
		re:   regexp.MustCompile(`(?i)[, \t]+(?:(?:sole|an|a|surviving)[ \t]+)?heirs?[ \t]+(?:at[ \t]+law[ \t]+)?of[ \t]+([^,\n\d]+)`),
		note: func(m []string) string { return "Heir of " + clip(m[1]) },
		signal: func(m []string) *models.RelationshipSignal {
			return &models.RelationshipSignal{Kind: models.SignalHeirOf, RelatedName: clip(m[1]), Evidence: clip(m[0])}
		},
		skip: func(text string) bool { return unknownHeirsRe.MatchString(text) },
	},
	{
		name: "fbo",
		re:   regexp.MustCompile(`(?i)[, \t]*\b(?:f/b/o|fbo|for the benefit of)[ \t]+([^,\n\d]+)`),
		note: func(m []string) string { return "FBO " + clip(m[1]) },
	},
	{
		name: "life_estate",
		re:   regexp.MustCompile(`(?i)[, \t]*\(?[ \t]*\blife[ \t]+estate(?:[ \t]+only)?\b[ \t]*\)?`),
		note: func(m []string) string { return "Life Estate" },
	},
	{
		name: "deceased",
		re:   regexp.MustCompile(`(?i)[, \t]*\(?[ \t]*\b(?:deceased|dec'd)\b[ \t]*\)?`),
		note: func(m []string) string { return "Deceased" },
	},
}

// StripAnnotations removes annotation spans from text and returns the
// remaining text, the notes in rule order and any relationship signals.
func StripAnnotations(text string) (string, []string, []models.RelationshipSignal) {
	var notes []string
	var signals []models.RelationshipSignal
	for _, a := range annotations {
		if a.skip != nil && a.skip(text) {
			continue
		}
		matches := a.re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		for _, m := range matches {
			notes = append(notes, a.note(m))
			if a.signal != nil {
				if sig := a.signal(m); sig != nil && sig.RelatedName != "" {
					signals = append(signals, *sig)
				}
			}
		}
		if !a.keep {
			text = a.re.ReplaceAllString(text, "")
		}
	}
	return text, notes, signals
}

var (
	roleTrusteeRe = regexp.MustCompile(`(?i)^(?:successor[ \t]+|co-?)?(?:trustees?|ttee)\b`)
	roleHeirRe    = regexp.MustCompile(`(?i)^(?:(?:sole|an|a|surviving)[ \t]+)?heirs?\b`)
)

// roleSignal classifies the role held alongside an individual capacity.
// Trustee and heir roles keep their own signal kinds; executor, attorney
// in fact and the like stay individually_and_as. A role naming no party
// yields no signal.
func roleSignal(role, evidence string) *models.RelationshipSignal {
	target := roleTarget(role)
	if target == "" {
		return nil
	}
	role = clip(role)
	kind := models.SignalIndividuallyAs
	switch {
	case roleTrusteeRe.MatchString(role):
		kind = models.SignalTrustee
	case roleHeirRe.MatchString(role):
		kind = models.SignalHeirOf
	}
	return &models.RelationshipSignal{Kind: kind, RelatedName: target, Evidence: evidence}
}

// roleTarget returns the party named after "of" or "for" in a role phrase
// such as "Trustee of the Smith Trust", or "" when there is none.
func roleTarget(role string) string {
	role = clip(role)
	lower := strings.ToLower(role)
	i, skip := strings.Index(lower, " of "), len(" of ")
	if j := strings.Index(lower, " for "); j >= 0 && (i < 0 || j < i) {
		i, skip = j, len(" for ")
	}
	if i >= 0 {
		target := strings.TrimSpace(role[i+skip:])
		if strings.HasPrefix(strings.ToLower(target), "the ") {
			target = target[4:]
		}
		return clip(target)
	}
	return ""
}

func clip(s string) string {
	return strings.Trim(strings.Join(strings.Fields(s), " "), ",.;: ")
}
