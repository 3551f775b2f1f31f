package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stwalsh4118/landman/api/internal/models"
)

// memoryState is the committed registry content.
type memoryState struct {
	entities      map[uuid.UUID]*models.Entity
	relationships []models.Relationship
	ownership     []models.OwnershipRecord
}

// memoryRepository keeps the registry in process. Transactions are
// serialized by mu and stage their writes until commit.
type memoryRepository struct {
	mu    sync.Mutex
	state memoryState
	now   func() time.Time
}

// NewMemoryRepository creates an empty in-memory EntityRepository.
func NewMemoryRepository() EntityRepository {
	return &memoryRepository{
		state: memoryState{entities: make(map[uuid.UUID]*models.Entity)},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	var out *models.Entity
	err := m.WithTx(ctx, func(tx EntityRepository) error {
		var err error
		out, err = tx.FindByID(ctx, id)
		return err
	})
	return out, err
}

func (m *memoryRepository) SearchCandidates(ctx context.Context, keys []string, limit int) ([]*models.Entity, error) {
	var out []*models.Entity
	err := m.WithTx(ctx, func(tx EntityRepository) error {
		var err error
		out, err = tx.SearchCandidates(ctx, keys, limit)
		return err
	})
	return out, err
}

func (m *memoryRepository) Create(ctx context.Context, e *models.Entity) error {
	return m.WithTx(ctx, func(tx EntityRepository) error { return tx.Create(ctx, e) })
}

func (m *memoryRepository) Update(ctx context.Context, e *models.Entity) error {
	return m.WithTx(ctx, func(tx EntityRepository) error { return tx.Update(ctx, e) })
}

func (m *memoryRepository) AddRelationship(ctx context.Context, r *models.Relationship) error {
	return m.WithTx(ctx, func(tx EntityRepository) error { return tx.AddRelationship(ctx, r) })
}

func (m *memoryRepository) AddOwnershipRecord(ctx context.Context, rec *models.OwnershipRecord) error {
	return m.WithTx(ctx, func(tx EntityRepository) error { return tx.AddOwnershipRecord(ctx, rec) })
}

func (m *memoryRepository) RelationshipsFor(ctx context.Context, id uuid.UUID) ([]models.Relationship, error) {
	var out []models.Relationship
	err := m.WithTx(ctx, func(tx EntityRepository) error {
		var err error
		out, err = tx.RelationshipsFor(ctx, id)
		return err
	})
	return out, err
}

func (m *memoryRepository) OwnershipRecordsFor(ctx context.Context, id uuid.UUID) ([]models.OwnershipRecord, error) {
	var out []models.OwnershipRecord
	err := m.WithTx(ctx, func(tx EntityRepository) error {
		var err error
		out, err = tx.OwnershipRecordsFor(ctx, id)
		return err
	})
	return out, err
}

// WithTx holds the registry lock for the whole of fn.
func (m *memoryRepository) WithTx(ctx context.Context, fn func(tx EntityRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{
		repo:   m,
		staged: make(map[uuid.UUID]*models.Entity),
	}
	if err := fn(tx); err != nil {
		return err
	}
	// a document cancelled mid-flight commits nothing
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (m *memoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// memoryTx is the view handed to WithTx callbacks. It runs with the
// repository lock held and never takes it itself.
type memoryTx struct {
	repo          *memoryRepository
	staged        map[uuid.UUID]*models.Entity
	relationships []models.Relationship
	ownership     []models.OwnershipRecord
}

func (t *memoryTx) lookup(id uuid.UUID) *models.Entity {
	if e, ok := t.staged[id]; ok {
		return e
	}
	return t.repo.state.entities[id]
}

func (t *memoryTx) FindByID(_ context.Context, id uuid.UUID) (*models.Entity, error) {
	return t.lookup(id).Clone(), nil
}

func (t *memoryTx) SearchCandidates(_ context.Context, keys []string, limit int) ([]*models.Entity, error) {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}

	seen := make(map[uuid.UUID]bool)
	var out []*models.Entity
	consider := func(e *models.Entity) {
		if seen[e.ID] {
			return
		}
		seen[e.ID] = true
		for _, k := range e.SearchKeys {
			if want[k] {
				out = append(out, e.Clone())
				return
			}
		}
	}
	for _, e := range t.staged {
		consider(e)
	}
	for _, e := range t.repo.state.entities {
		consider(e)
	}

	sortByRecency(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []*models.Entity{}
	}
	return out, nil
}

func (t *memoryTx) Create(_ context.Context, e *models.Entity) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if t.lookup(e.ID) != nil {
		return fmt.Errorf("entity %s already exists", e.ID)
	}
	now := t.repo.now()
	e.CreatedAt, e.UpdatedAt = now, now
	e.Version = 1
	if e.VerificationStatus == "" {
		e.VerificationStatus = models.Unverified
	}
	t.staged[e.ID] = e.Clone()
	return nil
}

func (t *memoryTx) Update(_ context.Context, e *models.Entity) error {
	current := t.lookup(e.ID)
	if current == nil {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, e.ID)
	}
	if current.Version != e.Version {
		return fmt.Errorf("%w: %s at version %d, have %d", ErrVersionConflict, e.ID, current.Version, e.Version)
	}
	e.Version++
	e.CreatedAt = current.CreatedAt
	e.UpdatedAt = t.repo.now()
	t.staged[e.ID] = e.Clone()
	return nil
}

func (t *memoryTx) AddRelationship(_ context.Context, r *models.Relationship) error {
	for _, id := range []uuid.UUID{r.FromEntityID, r.ToEntityID} {
		if t.lookup(id) == nil {
			return fmt.Errorf("%w: %s", ErrEntityNotFound, id)
		}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.VerificationStatus == "" {
		r.VerificationStatus = models.Unverified
	}
	r.CreatedAt = t.repo.now()
	t.relationships = append(t.relationships, *r)
	return nil
}

func (t *memoryTx) AddOwnershipRecord(_ context.Context, rec *models.OwnershipRecord) error {
	if t.lookup(rec.EntityID) == nil {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, rec.EntityID)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.RecordedAt = t.repo.now()
	t.ownership = append(t.ownership, *rec)
	return nil
}

func (t *memoryTx) RelationshipsFor(_ context.Context, id uuid.UUID) ([]models.Relationship, error) {
	out := []models.Relationship{}
	for _, list := range [][]models.Relationship{t.repo.state.relationships, t.relationships} {
		for _, r := range list {
			if r.FromEntityID == id || r.ToEntityID == id {
				r.Evidence = append([]models.SourceReference(nil), r.Evidence...)
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (t *memoryTx) OwnershipRecordsFor(_ context.Context, id uuid.UUID) ([]models.OwnershipRecord, error) {
	out := []models.OwnershipRecord{}
	for _, list := range [][]models.OwnershipRecord{t.repo.state.ownership, t.ownership} {
		for _, rec := range list {
			if rec.EntityID == id {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// WithTx inside a transaction joins it.
func (t *memoryTx) WithTx(_ context.Context, fn func(tx EntityRepository) error) error {
	return fn(t)
}

func (t *memoryTx) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (t *memoryTx) commit() {
	s := &t.repo.state
	for id, e := range t.staged {
		s.entities[id] = e
	}
	s.relationships = append(s.relationships, t.relationships...)
	s.ownership = append(s.ownership, t.ownership...)
}

// sortByRecency orders entities by UpdatedAt descending, then by ID so the
// order is stable.
func sortByRecency(list []*models.Entity) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
}
