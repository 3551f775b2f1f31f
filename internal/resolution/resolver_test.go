package resolution

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/landman/api/internal/config"
	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/repository"
)

func testConfig() config.ResolverConfig {
	return config.ResolverConfig{
		Threshold:      DefaultThreshold,
		NameWeight:     DefaultWeights.Name,
		AddressWeight:  DefaultWeights.Address,
		PropertyWeight: DefaultWeights.Property,
		TypeWeight:     DefaultWeights.Type,
		CandidateLimit: 50,
	}
}

func newTestResolver(t *testing.T) (*Resolver, repository.EntityRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	r, err := NewResolver(repo, testConfig())
	require.NoError(t, err)
	return r, repo
}

func source(job string) models.SourceReference {
	return models.SourceReference{Tool: "extract", JobID: job, RecordedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
}

var austin = models.ParsedAddress{Street: "123 MAIN ST", City: "AUSTIN", State: "TX", Zip: "78701"}

func TestResolve_SameNameAndAddressMatches(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()
	x := Extraction{Name: "JOHN SMITH", Address: austin, EntityType: models.EntityIndividual, Source: source("job-1")}

	first, err := r.Resolve(ctx, x)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "JOHN SMITH", first.Entity.CanonicalName)
	require.Len(t, first.Entity.NameVariants, 1)
	require.Len(t, first.Entity.Addresses, 1)

	x.Source = source("job-2")
	second, err := r.Resolve(ctx, x)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Entity.ID, second.Entity.ID)
	assert.InDelta(t, 0.8, second.Score, 1e-9)

	// identical facts are not repeated, provenance is
	assert.Len(t, second.Entity.NameVariants, 1)
	assert.Len(t, second.Entity.Addresses, 1)
	assert.Len(t, second.Entity.Sources, 2)
	assert.Equal(t, 2, second.Entity.Version)
}

func TestResolve_ThresholdBoundary(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		candidate   string
		wantCreated bool
	}{
		// 0.50 name + 0.20 property + 0 type == 0.70 exactly
		{"score equal to threshold matches", "JOHN SMITH", false},
		// 0.45 name + 0.20 property == 0.65
		{"score below threshold creates", "JOHN SMYTH", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestResolver(t)
			_, err := r.Resolve(ctx, Extraction{
				Name:         "JOHN SMITH",
				EntityType:   models.EntityIndividual,
				PropertyRefs: []string{"SEC 12-T3N-R4W"},
				Source:       source("job-1"),
			})
			require.NoError(t, err)

			got, err := r.Resolve(ctx, Extraction{
				Name:         tt.candidate,
				EntityType:   models.EntityTrust,
				PropertyRefs: []string{"SEC 12-T3N-R4W"},
				Source:       source("job-2"),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, got.Created)
		})
	}
}

func TestResolve_MatchAppendsNewFacts(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	_, err := r.Resolve(ctx, Extraction{Name: "JOHN SMITH", Address: austin, EntityType: models.EntityUnknown, Source: source("job-1")})
	require.NoError(t, err)

	interest := 0.25
	got, err := r.Resolve(ctx, Extraction{
		Name:         "SMITH, JOHN",
		Address:      austin,
		EntityType:   models.EntityIndividual,
		PropertyRefs: []string{"LEASE 42"},
		Interest:     &interest,
		Source:       source("job-2"),
	})
	require.NoError(t, err)
	assert.False(t, got.Created)
	assert.Len(t, got.Entity.NameVariants, 2)
	require.Len(t, got.Entity.Properties, 1)
	assert.Equal(t, "LEASE 42", got.Entity.Properties[0].PropertyRef)
	assert.Equal(t, models.EntityIndividual, got.Entity.EntityType)
	assert.Equal(t, "JOHN SMITH", got.Entity.CanonicalName)
}

func TestResolve_EmptyName(t *testing.T) {
	r, _ := newTestResolver(t)

	_, err := r.Resolve(context.Background(), Extraction{Name: " , "})

	assert.ErrorIs(t, err, ErrEmptyName)
}

// fixedCandidates serves a fixed candidate list and records updates.
type fixedCandidates struct {
	repository.EntityRepository
	candidates []*models.Entity
	updated    []uuid.UUID
}

func (f *fixedCandidates) SearchCandidates(context.Context, []string, int) ([]*models.Entity, error) {
	return f.candidates, nil
}

func (f *fixedCandidates) Update(_ context.Context, e *models.Entity) error {
	f.updated = append(f.updated, e.ID)
	e.Version++
	return nil
}

func TestResolve_TieGoesToMostRecentlyUpdated(t *testing.T) {
	older := &models.Entity{ID: uuid.New(), CanonicalName: "JOHN SMITH", EntityType: models.EntityIndividual, Version: 1,
		Addresses: []models.AddressRecord{{Address: austin}}, UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &models.Entity{ID: uuid.New(), CanonicalName: "JOHN SMITH", EntityType: models.EntityIndividual, Version: 1,
		Addresses: []models.AddressRecord{{Address: austin}}, UpdatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	repo := &fixedCandidates{candidates: []*models.Entity{older, newer}}

	r, err := NewResolver(repo, testConfig())
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), Extraction{Name: "JOHN SMITH", Address: austin, EntityType: models.EntityIndividual})
	require.NoError(t, err)
	assert.False(t, got.Created)
	assert.Equal(t, newer.ID, got.Entity.ID)
	assert.Equal(t, []uuid.UUID{newer.ID}, repo.updated)
}

func TestNewResolver_Errors(t *testing.T) {
	_, err := NewResolver(nil, testConfig())
	assert.Error(t, err)

	bad := testConfig()
	bad.NameWeight = 0.9
	_, err = NewResolver(repository.NewMemoryRepository(), bad)
	assert.Error(t, err)
}

func TestResolve_InTransactionRollsBack(t *testing.T) {
	r, repo := newTestResolver(t)
	ctx := context.Background()

	var id uuid.UUID
	err := repo.WithTx(ctx, func(tx repository.EntityRepository) error {
		res, err := r.In(tx).Resolve(ctx, Extraction{Name: "JANE DOE", Source: source("job-1")})
		if err != nil {
			return err
		}
		id = res.Entity.ID
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}
