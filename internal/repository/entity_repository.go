package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stwalsh4118/landman/api/internal/models"
)

// Registry errors.
var (
	ErrEntityNotFound  = errors.New("entity not found")
	ErrVersionConflict = errors.New("entity version conflict")
)

// EntityRepository defines the interface for the canonical entity registry.
// The registry is append-only: entities are updated in place but never
// deleted, and relationships and ownership records are only ever added.
type EntityRepository interface {
	// FindByID returns the entity with the given id.
	// Returns nil, nil if no entity exists (not an error).
	FindByID(ctx context.Context, id uuid.UUID) (*models.Entity, error)

	// SearchCandidates returns entities sharing at least one search key,
	// most recently updated first, at most limit of them.
	// Returns an empty slice if nothing matches.
	SearchCandidates(ctx context.Context, keys []string, limit int) ([]*models.Entity, error)

	// Create stores a new entity at version 1. A nil ID is assigned.
	Create(ctx context.Context, e *models.Entity) error

	// Update replaces the stored entity if its version still equals
	// e.Version, then increments e.Version.
	// Returns ErrVersionConflict when the stored version moved on and
	// ErrEntityNotFound when the entity does not exist.
	Update(ctx context.Context, e *models.Entity) error

	// AddRelationship stores a new relationship between two existing entities.
	AddRelationship(ctx context.Context, r *models.Relationship) error

	// AddOwnershipRecord appends a ledger line for an existing entity.
	AddOwnershipRecord(ctx context.Context, rec *models.OwnershipRecord) error

	// RelationshipsFor returns every relationship touching id, oldest first.
	RelationshipsFor(ctx context.Context, id uuid.UUID) ([]models.Relationship, error)

	// OwnershipRecordsFor returns the ledger lines for id, oldest first.
	OwnershipRecordsFor(ctx context.Context, id uuid.UUID) ([]models.OwnershipRecord, error)

	// WithTx runs fn against a transactional view of the registry. Writes
	// made through tx become visible only if fn returns nil and ctx is
	// still live; otherwise nothing is committed.
	WithTx(ctx context.Context, fn func(tx EntityRepository) error) error

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}
