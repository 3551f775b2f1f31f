// Package resolution matches extracted parties against the canonical entity
// registry and proposes relationships between them.
package resolution

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/config"
	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/repository"
	"github.com/stwalsh4118/landman/api/internal/textnorm"
)

// DefaultThreshold is the minimum combined score for a match.
const DefaultThreshold = 0.70

// scoreEpsilon absorbs float rounding so a score that is exactly the
// threshold on paper is accepted.
const scoreEpsilon = 1e-9

// aliasConfidence is the confidence recorded on a/k/a and f/k/a variants.
const aliasConfidence = 0.8

// ErrEmptyName is returned when an extraction carries no usable name.
var ErrEmptyName = errors.New("extraction has no name to resolve")

// Extraction is one party as a parser reported it.
type Extraction struct {
	Name         string
	Address      models.ParsedAddress
	EntityType   models.EntityType
	PropertyRefs []string
	Interest     *float64
	Source       models.SourceReference
}

// Result is the outcome of resolving one extraction.
type Result struct {
	Entity  *models.Entity `json:"entity"`
	Created bool           `json:"created"`
	Score   float64        `json:"score"`
}

// Resolver scores extractions against registry candidates.
type Resolver struct {
	repo      repository.EntityRepository
	weights   Weights
	threshold float64
	limit     int
}

// NewResolver creates a Resolver over repo using the weights, threshold and
// candidate limit in cfg.
func NewResolver(repo repository.EntityRepository, cfg config.ResolverConfig) (*Resolver, error) {
	if repo == nil {
		return nil, errors.New("resolver requires a registry")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{
		repo: repo,
		weights: Weights{
			Name:     cfg.NameWeight,
			Address:  cfg.AddressWeight,
			Property: cfg.PropertyWeight,
			Type:     cfg.TypeWeight,
		},
		threshold: cfg.Threshold,
		limit:     cfg.CandidateLimit,
	}, nil
}

// In returns a copy of r that reads and writes through tx.
func (r *Resolver) In(tx repository.EntityRepository) *Resolver {
	c := *r
	c.repo = tx
	return &c
}

// Threshold returns the acceptance threshold.
func (r *Resolver) Threshold() float64 {
	return r.threshold
}

// Resolve returns the registry entity x denotes. The best candidate at or
// above the threshold is extended with x's name, address, properties and
// source; ties go to the most recently updated entity. With no such
// candidate a new entity is created from x.
func (r *Resolver) Resolve(ctx context.Context, x Extraction) (*Result, error) {
	if sortedKey(x.Name) == "" {
		return nil, ErrEmptyName
	}

	best, score, err := r.bestMatch(ctx, x)
	if err != nil {
		return nil, err
	}
	if best == nil {
		e := newEntity(x)
		if err := r.repo.Create(ctx, e); err != nil {
			return nil, fmt.Errorf("failed to create entity for %q: %w", x.Name, err)
		}
		return &Result{Entity: e, Created: true, Score: score}, nil
	}

	mergeInto(best, x)
	if err := r.repo.Update(ctx, best); err != nil {
		return nil, fmt.Errorf("failed to extend entity %s: %w", best.ID, err)
	}
	return &Result{Entity: best, Score: score}, nil
}

// Match returns the best candidate at or above the threshold without
// changing the registry, and the best score seen. The entity is nil when
// nothing qualifies.
func (r *Resolver) Match(ctx context.Context, x Extraction) (*models.Entity, float64, error) {
	if sortedKey(x.Name) == "" {
		return nil, 0, ErrEmptyName
	}
	return r.bestMatch(ctx, x)
}

func (r *Resolver) bestMatch(ctx context.Context, x Extraction) (*models.Entity, float64, error) {
	candidates, err := r.repo.SearchCandidates(ctx, SearchKeys(x.Name), r.limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load candidates for %q: %w", x.Name, err)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	var best *models.Entity
	bestScore, topScore := -1.0, 0.0
	for _, c := range candidates {
		s := Score(r.weights, x, c).Total
		if s > topScore {
			topScore = s
		}
		if s+scoreEpsilon < r.threshold {
			continue
		}
		// strictly greater keeps the more recent of two equal scores
		if s > bestScore+scoreEpsilon {
			best, bestScore = c, s
		}
	}
	if best == nil {
		return nil, topScore, nil
	}
	return best, bestScore, nil
}

// AddAlias records alias as a variant of e. When the alias already resolves
// to a different registry entity, that entity is returned so the caller
// can propose an alias relationship; otherwise the result is nil.
func (r *Resolver) AddAlias(ctx context.Context, e *models.Entity, alias string, src models.SourceReference) (*models.Entity, error) {
	if sortedKey(alias) == "" {
		return nil, ErrEmptyName
	}
	probe := Extraction{Name: alias, EntityType: e.EntityType, PropertyRefs: e.PropertyRefs(), Source: src}
	if len(e.Addresses) > 0 {
		probe.Address = e.Addresses[len(e.Addresses)-1].Address
	}
	other, _, err := r.bestMatch(ctx, probe)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID == e.ID {
		other = nil
	}

	if addVariant(e, alias, aliasConfidence, src) {
		e.SearchKeys = unionKeys(e.SearchKeys, SearchKeys(alias))
		if err := r.repo.Update(ctx, e); err != nil {
			return nil, fmt.Errorf("failed to add alias to entity %s: %w", e.ID, err)
		}
	}
	return other, nil
}

func newEntity(x Extraction) *models.Entity {
	t := x.EntityType
	if t == "" {
		t = models.EntityUnknown
	}
	e := &models.Entity{
		CanonicalName:      textnorm.CollapseSpace(x.Name),
		EntityType:         t,
		VerificationStatus: models.Unverified,
	}
	mergeInto(e, x)
	return e
}

// mergeInto appends x's facts to e. Nothing already on e is replaced.
func mergeInto(e *models.Entity, x Extraction) {
	addVariant(e, x.Name, 1, x.Source)
	if !x.Address.IsEmpty() && !hasAddress(e, x.Address) {
		e.Addresses = append(e.Addresses, models.AddressRecord{Address: x.Address, Source: x.Source})
	}
	held := refSet(e.PropertyRefs())
	for _, ref := range x.PropertyRefs {
		k := textnorm.Key(ref)
		if k == "" || held[k] {
			continue
		}
		held[k] = true
		e.Properties = append(e.Properties, models.PropertyInterest{PropertyRef: ref, Interest: x.Interest, Source: x.Source})
	}
	if (e.EntityType == "" || e.EntityType == models.EntityUnknown) && x.EntityType != "" {
		e.EntityType = x.EntityType
	}
	e.Sources = append(e.Sources, x.Source)
	e.SearchKeys = unionKeys(e.SearchKeys, SearchKeys(x.Name))
}

// addVariant appends name unless a variant with the same folded key
// exists. It reports whether e changed.
func addVariant(e *models.Entity, name string, confidence float64, src models.SourceReference) bool {
	key := textnorm.Key(name)
	for _, v := range e.NameVariants {
		if v.Normalized == key {
			return false
		}
	}
	e.NameVariants = append(e.NameVariants, models.NameVariant{
		Name:       textnorm.CollapseSpace(name),
		Normalized: key,
		Confidence: confidence,
		Source:     src,
	})
	return true
}

func hasAddress(e *models.Entity, a models.ParsedAddress) bool {
	for _, rec := range e.Addresses {
		if AddressOverlap(rec.Address, a) == 1 {
			return true
		}
	}
	return false
}

// genericTokens are too common across unrelated parties to select
// candidates by.
var genericTokens = map[string]bool{
	"TRUST": true, "LLC": true, "INC": true, "CORP": true, "CORPORATION": true,
	"COMPANY": true, "CO": true, "LP": true, "LTD": true, "ESTATE": true,
	"REVOCABLE": true, "LIVING": true, "FAMILY": true, "TRUSTEE": true,
	"ET": true, "AL": true, "UX": true, "VIR": true, "MR": true, "MRS": true,
	"JR": true, "SR": true, "II": true, "III": true,
}

// SearchKeys returns the candidate-selection tokens for name: its folded
// tokens minus initials and generic words. When nothing distinctive is left
// every token is kept.
func SearchKeys(name string) []string {
	tokens := textnorm.Tokens(name)
	var keys []string
	for _, t := range tokens {
		if len(t) < 2 || genericTokens[t] {
			continue
		}
		keys = append(keys, t)
	}
	if len(keys) == 0 {
		keys = tokens
	}
	return unionKeys(nil, keys)
}

func unionKeys(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, k := range append(append([]string(nil), a...), b...) {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
