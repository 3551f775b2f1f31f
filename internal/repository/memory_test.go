package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/landman/api/internal/models"
)

func newEntity(name string, keys ...string) *models.Entity {
	return &models.Entity{
		CanonicalName: name,
		EntityType:    models.EntityIndividual,
		NameVariants:  []models.NameVariant{{Name: name, Normalized: name, Confidence: 1}},
		SearchKeys:    keys,
	}
}

func TestMemory_CreateAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	e := newEntity("JOHN SMITH", "JOHN", "SMITH")
	require.NoError(t, repo.Create(ctx, e))

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, models.Unverified, e.VerificationStatus)

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "JOHN SMITH", got.CanonicalName)

	// stored state must not alias the caller's entity
	e.CanonicalName = "CHANGED"
	again, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "JOHN SMITH", again.CanonicalName)
}

func TestMemory_FindByID_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	got, err := repo.FindByID(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_UpdateVersionCheck(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	e := newEntity("JOHN SMITH", "SMITH")
	require.NoError(t, repo.Create(ctx, e))

	first, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	stale, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)

	first.CanonicalName = "JOHN A SMITH"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	stale.CanonicalName = "J SMITH"
	err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "JOHN A SMITH", got.CanonicalName)
	assert.Equal(t, 2, got.Version)
}

func TestMemory_UpdateMissing(t *testing.T) {
	repo := NewMemoryRepository()
	e := newEntity("NOBODY")
	e.ID = uuid.New()

	err := repo.Update(context.Background(), e)

	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestMemory_SearchCandidates(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	smith := newEntity("JOHN SMITH", "JOHN", "SMITH")
	jones := newEntity("MARY JONES", "MARY", "JONES")
	jane := newEntity("JANE SMITH", "JANE", "SMITH")
	for _, e := range []*models.Entity{smith, jones, jane} {
		require.NoError(t, repo.Create(ctx, e))
	}

	got, err := repo.SearchCandidates(ctx, []string{"SMITH"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	names := []string{got[0].CanonicalName, got[1].CanonicalName}
	assert.ElementsMatch(t, []string{"JOHN SMITH", "JANE SMITH"}, names)

	limited, err := repo.SearchCandidates(ctx, []string{"SMITH", "JONES"}, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := repo.SearchCandidates(ctx, []string{"DOE"}, 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemory_WithTxRollback(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	boom := errors.New("boom")

	var id uuid.UUID
	err := repo.WithTx(ctx, func(tx EntityRepository) error {
		e := newEntity("JOHN SMITH", "SMITH")
		if err := tx.Create(ctx, e); err != nil {
			return err
		}
		id = e.ID

		// the transaction sees its own staged write
		staged, err := tx.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, staged)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_WithTxCancelledCommitsNothing(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())

	var id uuid.UUID
	err := repo.WithTx(ctx, func(tx EntityRepository) error {
		e := newEntity("JOHN SMITH", "SMITH")
		require.NoError(t, tx.Create(ctx, e))
		id = e.ID
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	got, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_RelationshipsAndOwnership(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	trust := newEntity("SMITH FAMILY TRUST", "SMITH", "FAMILY", "TRUST")
	john := newEntity("JOHN SMITH", "JOHN", "SMITH")
	require.NoError(t, repo.Create(ctx, trust))
	require.NoError(t, repo.Create(ctx, john))

	rel := &models.Relationship{
		FromEntityID:     john.ID,
		ToEntityID:       trust.ID,
		RelationshipType: models.RelationshipTrustee,
		Evidence:         []models.SourceReference{{Tool: "extract", JobID: "job-1"}},
	}
	require.NoError(t, repo.AddRelationship(ctx, rel))
	assert.NotEqual(t, uuid.Nil, rel.ID)
	assert.Equal(t, models.Unverified, rel.VerificationStatus)

	interest := 0.125
	rec := &models.OwnershipRecord{EntityID: john.ID, PropertyRef: "SEC 12-T3N-R4W", Interest: &interest}
	require.NoError(t, repo.AddOwnershipRecord(ctx, rec))

	for _, id := range []uuid.UUID{john.ID, trust.ID} {
		rels, err := repo.RelationshipsFor(ctx, id)
		require.NoError(t, err)
		require.Len(t, rels, 1)
		assert.Equal(t, rel.ID, rels[0].ID)
	}

	recs, err := repo.OwnershipRecordsFor(ctx, john.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 0.125, *recs[0].Interest, 1e-9)

	empty, err := repo.OwnershipRecordsFor(ctx, trust.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemory_RelationshipUnknownEntity(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	john := newEntity("JOHN SMITH", "SMITH")
	require.NoError(t, repo.Create(ctx, john))

	err := repo.AddRelationship(ctx, &models.Relationship{FromEntityID: john.ID, ToEntityID: uuid.New()})
	assert.ErrorIs(t, err, ErrEntityNotFound)

	err = repo.AddOwnershipRecord(ctx, &models.OwnershipRecord{EntityID: uuid.New()})
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestMemory_ConcurrentTransactionsSerialize(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	e := newEntity("JOHN SMITH", "SMITH")
	require.NoError(t, repo.Create(ctx, e))

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			err := repo.WithTx(ctx, func(tx EntityRepository) error {
				cur, err := tx.FindByID(ctx, e.ID)
				if err != nil {
					return err
				}
				cur.Sources = append(cur.Sources, models.SourceReference{Tool: "extract"})
				return tx.Update(ctx, cur)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, writers+1, got.Version)
	assert.Len(t, got.Sources, writers)
}
