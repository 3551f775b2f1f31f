package resolution

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/landman/api/internal/extract"
	"github.com/stwalsh4118/landman/api/internal/models"
)

// Tracker turns parser relationship signals into proposed relationships
// between resolved entities.
type Tracker struct {
	resolver *Resolver
}

// NewTracker creates a Tracker that resolves related parties through r.
func NewTracker(r *Resolver) *Tracker {
	return &Tracker{resolver: r}
}

// edge describes how a signal kind maps onto a relationship. reverse puts
// the related party on the from side.
type edge struct {
	kind    models.RelationshipType
	reverse bool
}

var signalEdges = map[models.SignalKind]edge{
	models.SignalTrustee:        {kind: models.RelationshipTrustee},
	models.SignalIndividuallyAs: {kind: models.RelationshipOther},
	models.SignalHeirOf:         {kind: models.RelationshipInheritance, reverse: true},
	models.SignalRemainderman:   {kind: models.RelationshipInheritance, reverse: true},
}

// Track proposes one relationship per signal on subject's record. Related
// parties are resolved like any other extraction. Alias signals become name
// variants of subject and yield a relationship only when the alias already
// names a different entity. Every relationship is unverified and carries
// src as evidence. Relationships are never deduplicated.
func (t *Tracker) Track(ctx context.Context, subject *models.Entity, signals []models.RelationshipSignal, src models.SourceReference) ([]models.Relationship, error) {
	var out []models.Relationship
	for _, sig := range signals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sortedKey(sig.RelatedName) == "" {
			continue
		}

		var rel *models.Relationship
		var err error
		if sig.Kind == models.SignalAlias {
			rel, err = t.alias(ctx, subject, sig, src)
		} else {
			rel, err = t.related(ctx, subject, sig, src)
		}
		if err != nil {
			return nil, err
		}
		if rel == nil {
			continue
		}
		if err := t.resolver.repo.AddRelationship(ctx, rel); err != nil {
			return nil, fmt.Errorf("failed to record %s relationship: %w", rel.RelationshipType, err)
		}
		out = append(out, *rel)
	}
	return out, nil
}

func (t *Tracker) alias(ctx context.Context, subject *models.Entity, sig models.RelationshipSignal, src models.SourceReference) (*models.Relationship, error) {
	other, err := t.resolver.AddAlias(ctx, subject, sig.RelatedName, src)
	if err != nil || other == nil {
		return nil, err
	}
	return proposal(subject, other, models.RelationshipAlias, sig, src), nil
}

func (t *Tracker) related(ctx context.Context, subject *models.Entity, sig models.RelationshipSignal, src models.SourceReference) (*models.Relationship, error) {
	e, ok := signalEdges[sig.Kind]
	if !ok {
		e = edge{kind: models.RelationshipOther}
	}
	res, err := t.resolver.Resolve(ctx, Extraction{
		Name:       sig.RelatedName,
		EntityType: extract.Classify(sig.RelatedName),
		Source:     src,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve related party %q: %w", sig.RelatedName, err)
	}
	if res.Entity.ID == subject.ID {
		// the related name folded back onto subject; keep its version current
		*subject = *res.Entity
		return nil, nil
	}
	if e.reverse {
		return proposal(res.Entity, subject, e.kind, sig, src), nil
	}
	return proposal(subject, res.Entity, e.kind, sig, src), nil
}

func proposal(from, to *models.Entity, kind models.RelationshipType, sig models.RelationshipSignal, src models.SourceReference) *models.Relationship {
	return &models.Relationship{
		FromEntityID:       from.ID,
		ToEntityID:         to.ID,
		RelationshipType:   kind,
		VerificationStatus: models.Unverified,
		Evidence:           []models.SourceReference{src},
		Notes:              sig.Evidence,
	}
}
