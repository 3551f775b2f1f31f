package resolution

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/textnorm"
)

// Breakdown is the per-component score of one candidate. Each component
// lies in [0, 1]; Total is their weighted sum.
type Breakdown struct {
	Name     float64 `json:"name"`
	Address  float64 `json:"address"`
	Property float64 `json:"property"`
	Type     float64 `json:"type"`
	Total    float64 `json:"total"`
}

// Weights are the component weights of the combined score.
type Weights struct {
	Name     float64
	Address  float64
	Property float64
	Type     float64
}

// DefaultWeights is 50% name, 20% address, 20% shared property, 10% type.
var DefaultWeights = Weights{Name: 0.50, Address: 0.20, Property: 0.20, Type: 0.10}

// sortedKey folds name and sorts its tokens so word order does not count
// against a match ("SMITH JOHN" equals "JOHN SMITH").
func sortedKey(name string) string {
	tokens := textnorm.Tokens(name)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// NameSimilarity is one minus the Levenshtein distance between the sorted
// keys of a and b, divided by the longer key's length.
func NameSimilarity(a, b string) float64 {
	ka, kb := sortedKey(a), sortedKey(b)
	if ka == "" || kb == "" {
		return 0
	}
	if ka == kb {
		return 1
	}
	longest := utf8.RuneCountInString(ka)
	if n := utf8.RuneCountInString(kb); n > longest {
		longest = n
	}
	d := fuzzy.LevenshteinDistance(ka, kb)
	if d >= longest {
		return 0
	}
	return 1 - float64(d)/float64(longest)
}

// AddressOverlap compares the components present in both addresses and
// returns the fraction that agree. Zips compare on their first five digits.
func AddressOverlap(a, b models.ParsedAddress) float64 {
	if a.IsEmpty() || b.IsEmpty() {
		return 0
	}
	pairs := [][2]string{
		{textnorm.Key(a.Street), textnorm.Key(b.Street)},
		{textnorm.Key(a.City), textnorm.Key(b.City)},
		{strings.ToUpper(a.State), strings.ToUpper(b.State)},
		{zip5(a.Zip), zip5(b.Zip)},
	}
	compared, matched := 0, 0
	for _, p := range pairs {
		if p[0] == "" || p[1] == "" {
			continue
		}
		compared++
		if p[0] == p[1] {
			matched++
		}
	}
	if compared == 0 {
		return 0
	}
	return float64(matched) / float64(compared)
}

func zip5(zip string) string {
	if len(zip) >= 5 {
		return zip[:5]
	}
	return zip
}

// PropertyOverlap is the Jaccard index of the two property reference sets.
func PropertyOverlap(a, b []string) float64 {
	setA, setB := refSet(a), refSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for k := range setA {
		if setB[k] {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

func refSet(refs []string) map[string]bool {
	out := make(map[string]bool, len(refs))
	for _, r := range refs {
		if k := textnorm.Key(r); k != "" {
			out[k] = true
		}
	}
	return out
}

// TypeAgreement is 1 for equal types, 0.5 when either side is unknown and
// 0 for a disagreement.
func TypeAgreement(a, b models.EntityType) float64 {
	switch {
	case a == "" || b == "" || a == models.EntityUnknown || b == models.EntityUnknown:
		return 0.5
	case a == b:
		return 1
	default:
		return 0
	}
}

// Score rates how well x matches e. Name and address take the best value
// over all of e's variants and addresses.
func Score(w Weights, x Extraction, e *models.Entity) Breakdown {
	var b Breakdown
	b.Name = NameSimilarity(x.Name, e.CanonicalName)
	for _, v := range e.NameVariants {
		if s := NameSimilarity(x.Name, v.Name); s > b.Name {
			b.Name = s
		}
	}
	for _, a := range e.Addresses {
		if s := AddressOverlap(x.Address, a.Address); s > b.Address {
			b.Address = s
		}
	}
	b.Property = PropertyOverlap(x.PropertyRefs, e.PropertyRefs())
	b.Type = TypeAgreement(x.EntityType, e.EntityType)
	b.Total = w.Name*b.Name + w.Address*b.Address + w.Property*b.Property + w.Type*b.Type
	return b
}
