package extract

import (
	"regexp"

	"github.com/stwalsh4118/landman/api/internal/models"
)

// typeRule assigns an entity type when match reports true.
type typeRule struct {
	entityType models.EntityType
	match      func(name string) bool
}

func reMatch(pattern string) func(string) bool {
	re := regexp.MustCompile(pattern)
	return re.MatchString
}

var (
	limitedPartnershipRe = regexp.MustCompile(`(?i)\bL\.?\s?P\.?(?:\s|,|$)|\blimited\s+partnership\b`)
	partnersRe           = regexp.MustCompile(`(?i)\bpartners\b`)
	limitedRe            = regexp.MustCompile(`(?i)\b(?:ltd|limited)\b`)
)

// typeRules are evaluated top to bottom and the first match wins. More
// specific kinds sit above broader ones: an LLC must never fall through to
// the corporation pattern.
var typeRules = []typeRule{
	{models.EntityUnknownHeirs, reMatch(`(?i)\bunknown\s+heirs\b`)},
	{models.EntityEstate, reMatch(`(?i)\bestate\s+of\b|\bestate\s*$`)},
	{models.EntityTrust, reMatch(`(?i)\btrusts?\b`)},
	{models.EntityLLC, reMatch(`(?i)\bL\.?\s?L\.?\s?C\b|\blimited\s+liability\s+company\b`)},
	{models.EntityCorporation, reMatch(`(?i)\b(?:inc|incorporated|corp|corporation|company|co)\b`)},
	{models.EntityPartnership, func(name string) bool {
		if limitedPartnershipRe.MatchString(name) {
			return true
		}
		// "Partners, Ltd." is a limited partnership, not a company limited
		// by shares.
		return partnersRe.MatchString(name) && limitedRe.MatchString(name)
	}},
	{models.EntityPartnership, reMatch(`(?i)\bpartnership\b|\bpartners\b|\bjoint\s+venture\b`)},
	{models.EntityGovernment, reMatch(`(?i)\b(?:county|city\s+of|state\s+of|town\s+of|village\s+of|united\s+states|department|bureau|commission|authority|school\s+district|isd|municipal)\b`)},
}

// Classify returns the entity type of an Exhibit-A party name.
func Classify(name string) models.EntityType {
	for _, r := range typeRules {
		if r.match(name) {
			return r.entityType
		}
	}
	return models.EntityIndividual
}
