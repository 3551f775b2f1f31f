package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stwalsh4118/landman/api/internal/database"
	"github.com/stwalsh4118/landman/api/internal/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresRepository is the Postgres implementation of EntityRepository.
type postgresRepository struct {
	db   *database.Database
	q    querier
	inTx bool
}

// NewPostgresRepository creates an EntityRepository backed by db. The
// schema must already exist; see database.EnsureSchema.
func NewPostgresRepository(db *database.Database) EntityRepository {
	return &postgresRepository{
		db: db,
		q:  db.Pool,
	}
}

const entityColumns = `
	id,
	canonical_name,
	entity_type,
	verification_status,
	name_variants,
	addresses,
	properties,
	sources,
	search_keys,
	version,
	created_at,
	updated_at`

func scanEntity(row pgx.Row) (*models.Entity, error) {
	var (
		e                                     models.Entity
		entityType, status                    string
		variants, addresses, properties, srcs []byte
	)
	err := row.Scan(
		&e.ID,
		&e.CanonicalName,
		&entityType,
		&status,
		&variants,
		&addresses,
		&properties,
		&srcs,
		&e.SearchKeys,
		&e.Version,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.EntityType = models.EntityType(entityType)
	e.VerificationStatus = models.VerificationStatus(status)

	for _, f := range []struct {
		raw []byte
		dst any
	}{
		{variants, &e.NameVariants},
		{addresses, &e.Addresses},
		{properties, &e.Properties},
		{srcs, &e.Sources},
	} {
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("failed to decode entity %s: %w", e.ID, err)
		}
	}
	return &e, nil
}

// entityJSON marshals the JSONB columns of e in column order.
func entityJSON(e *models.Entity) ([4][]byte, error) {
	var out [4][]byte
	for i, v := range []any{
		nonNil(e.NameVariants),
		nonNil(e.Addresses),
		nonNil(e.Properties),
		nonNil(e.Sources),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("failed to encode entity %s: %w", e.ID, err)
		}
		out[i] = b
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// FindByID queries a single entity by primary key.
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	query := `SELECT` + entityColumns + `
		FROM entities
		WHERE id = $1`

	e, err := scanEntity(r.q.QueryRow(ctx, query, id))
	if err != nil {
		// Handle no rows found - this is not an error at the repository level
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query entity %s: %w", id, err)
	}
	return e, nil
}

// SearchCandidates uses the GIN index on search_keys for the overlap test.
func (r *postgresRepository) SearchCandidates(ctx context.Context, keys []string, limit int) ([]*models.Entity, error) {
	query := `SELECT` + entityColumns + `
		FROM entities
		WHERE search_keys && $1
		ORDER BY updated_at DESC, id
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, keys, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search entities (keys=%d): %w", len(keys), err)
	}
	defer rows.Close()

	results := []*models.Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity row: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entity rows: %w", err)
	}
	return results, nil
}

func (r *postgresRepository) Create(ctx context.Context, e *models.Entity) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.VerificationStatus == "" {
		e.VerificationStatus = models.Unverified
	}
	docs, err := entityJSON(e)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO entities (
			id, canonical_name, entity_type, verification_status,
			name_variants, addresses, properties, sources,
			search_keys, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $10)`

	_, err = r.q.Exec(ctx, query,
		e.ID, e.CanonicalName, string(e.EntityType), string(e.VerificationStatus),
		docs[0], docs[1], docs[2], docs[3],
		nonNil(e.SearchKeys), now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entity %s: %w", e.ID, err)
	}
	e.Version = 1
	e.CreatedAt, e.UpdatedAt = now, now
	return nil
}

// Update applies the optimistic version check in the WHERE clause.
func (r *postgresRepository) Update(ctx context.Context, e *models.Entity) error {
	docs, err := entityJSON(e)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	query := `
		UPDATE entities SET
			canonical_name = $2,
			entity_type = $3,
			verification_status = $4,
			name_variants = $5,
			addresses = $6,
			properties = $7,
			sources = $8,
			search_keys = $9,
			version = version + 1,
			updated_at = $10
		WHERE id = $1 AND version = $11`

	tag, err := r.q.Exec(ctx, query,
		e.ID, e.CanonicalName, string(e.EntityType), string(e.VerificationStatus),
		docs[0], docs[1], docs[2], docs[3],
		nonNil(e.SearchKeys), now, e.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update entity %s: %w", e.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM entities WHERE id = $1)`, e.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check entity %s: %w", e.ID, err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrEntityNotFound, e.ID)
		}
		return fmt.Errorf("%w: %s at version %d", ErrVersionConflict, e.ID, e.Version)
	}
	e.Version++
	e.UpdatedAt = now
	return nil
}

func (r *postgresRepository) AddRelationship(ctx context.Context, rel *models.Relationship) error {
	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}
	if rel.VerificationStatus == "" {
		rel.VerificationStatus = models.Unverified
	}
	evidence, err := json.Marshal(nonNil(rel.Evidence))
	if err != nil {
		return fmt.Errorf("failed to encode relationship evidence: %w", err)
	}
	rel.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO relationships (
			id, from_entity_id, to_entity_id, relationship_type,
			interest_transferred, effective_date, evidence,
			verification_status, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.q.Exec(ctx, query,
		rel.ID, rel.FromEntityID, rel.ToEntityID, string(rel.RelationshipType),
		rel.InterestTransferred, rel.EffectiveDate, evidence,
		string(rel.VerificationStatus), rel.Notes, rel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert relationship %s -> %s: %w", rel.FromEntityID, rel.ToEntityID, mapForeignKey(err))
	}
	return nil
}

func (r *postgresRepository) AddOwnershipRecord(ctx context.Context, rec *models.OwnershipRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	source, err := json.Marshal(rec.Source)
	if err != nil {
		return fmt.Errorf("failed to encode ownership source: %w", err)
	}
	rec.RecordedAt = time.Now().UTC()

	query := `
		INSERT INTO ownership_records (
			id, entity_id, property_ref, interest, net_acres, source, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.q.Exec(ctx, query,
		rec.ID, rec.EntityID, rec.PropertyRef, rec.Interest, rec.NetAcres, source, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ownership record for %s: %w", rec.EntityID, mapForeignKey(err))
	}
	return nil
}

func (r *postgresRepository) RelationshipsFor(ctx context.Context, id uuid.UUID) ([]models.Relationship, error) {
	query := `
		SELECT
			id,
			from_entity_id,
			to_entity_id,
			relationship_type,
			interest_transferred,
			effective_date,
			evidence,
			verification_status,
			notes,
			created_at
		FROM relationships
		WHERE from_entity_id = $1 OR to_entity_id = $1
		ORDER BY created_at, id`

	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships for %s: %w", id, err)
	}
	defer rows.Close()

	results := []models.Relationship{}
	for rows.Next() {
		var (
			rel             models.Relationship
			relType, status string
			evidence        []byte
		)
		err := rows.Scan(
			&rel.ID,
			&rel.FromEntityID,
			&rel.ToEntityID,
			&relType,
			&rel.InterestTransferred,
			&rel.EffectiveDate,
			&evidence,
			&status,
			&rel.Notes,
			&rel.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relationship row: %w", err)
		}
		rel.RelationshipType = models.RelationshipType(relType)
		rel.VerificationStatus = models.VerificationStatus(status)
		if err := json.Unmarshal(evidence, &rel.Evidence); err != nil {
			return nil, fmt.Errorf("failed to decode relationship %s evidence: %w", rel.ID, err)
		}
		results = append(results, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationship rows: %w", err)
	}
	return results, nil
}

func (r *postgresRepository) OwnershipRecordsFor(ctx context.Context, id uuid.UUID) ([]models.OwnershipRecord, error) {
	query := `
		SELECT id, entity_id, property_ref, interest, net_acres, source, recorded_at
		FROM ownership_records
		WHERE entity_id = $1
		ORDER BY recorded_at, id`

	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ownership records for %s: %w", id, err)
	}
	defer rows.Close()

	results := []models.OwnershipRecord{}
	for rows.Next() {
		var rec models.OwnershipRecord
		var source []byte
		if err := rows.Scan(&rec.ID, &rec.EntityID, &rec.PropertyRef, &rec.Interest, &rec.NetAcres, &source, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ownership row: %w", err)
		}
		if err := json.Unmarshal(source, &rec.Source); err != nil {
			return nil, fmt.Errorf("failed to decode ownership record %s source: %w", rec.ID, err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ownership rows: %w", err)
	}
	return results, nil
}

// WithTx runs fn inside a single pgx transaction. Nested calls join the
// outer transaction.
func (r *postgresRepository) WithTx(ctx context.Context, fn func(tx EntityRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		return fn(&postgresRepository{db: r.db, q: tx, inTx: true})
	})
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// mapForeignKey turns a foreign-key violation into ErrEntityNotFound.
func mapForeignKey(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, pgErr.Detail)
	}
	return err
}
