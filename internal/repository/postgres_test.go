package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/landman/api/internal/config"
	"github.com/stwalsh4118/landman/api/internal/database"
	"github.com/stwalsh4118/landman/api/internal/models"
)

// getTestConfig returns database configuration for integration tests.
func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "host.docker.internal"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "landman"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  2,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupTestRepository creates a test database connection and repository.
func setupTestRepository(t *testing.T) EntityRepository {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Skipf("Database not reachable: %v", err)
	}
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	return NewPostgresRepository(db)
}

func TestPostgres_CreateUpdateConflict(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	key := "ZZTEST" + uuid.NewString()[:8]
	e := newEntity("JOHN SMITH", key)
	e.Addresses = []models.AddressRecord{{Address: models.ParsedAddress{City: "AUSTIN", State: "TX"}}}
	require.NoError(t, repo.Create(ctx, e))
	assert.Equal(t, 1, e.Version)

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "AUSTIN", got.Addresses[0].Address.City)

	stale := got.Clone()
	got.CanonicalName = "JOHN A SMITH"
	require.NoError(t, repo.Update(ctx, got))
	assert.Equal(t, 2, got.Version)

	assert.ErrorIs(t, repo.Update(ctx, stale), ErrVersionConflict)

	found, err := repo.SearchCandidates(ctx, []string{key}, 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, e.ID, found[0].ID)
}

func TestPostgres_FindByID_NotFound(t *testing.T) {
	repo := setupTestRepository(t)

	got, err := repo.FindByID(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgres_WithTxRollback(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	var id uuid.UUID
	err := repo.WithTx(ctx, func(tx EntityRepository) error {
		e := newEntity("ROLLED BACK", "ZZROLLBACK")
		if err := tx.Create(ctx, e); err != nil {
			return err
		}
		id = e.ID
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgres_RelationshipForeignKey(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	e := newEntity("JANE DOE", "ZZFK")
	require.NoError(t, repo.Create(ctx, e))

	err := repo.AddRelationship(ctx, &models.Relationship{
		FromEntityID:     e.ID,
		ToEntityID:       uuid.New(),
		RelationshipType: models.RelationshipOther,
	})
	assert.ErrorIs(t, err, ErrEntityNotFound)
}
