package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stwalsh4118/landman/api/internal/logger"
	"github.com/stwalsh4118/landman/api/internal/metrics"
	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/repository"
	"github.com/stwalsh4118/landman/api/internal/resolution"
)

// MaxIngestAttempts bounds how often one document is replayed after a
// registry version conflict.
const MaxIngestAttempts = 3

// DefaultSearchLimit caps name searches when the caller gives no limit.
const DefaultSearchLimit = 25

// Service-level errors.
var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrRegistryBusy   = errors.New("registry kept changing during ingest")
	ErrEmptyQuery     = errors.New("search name must not be empty")
)

// IngestSummary counts what one document did to the registry.
type IngestSummary struct {
	Created          int                   `json:"created"`
	Matched          int                   `json:"matched"`
	Skipped          int                   `json:"skipped"`
	Relationships    int                   `json:"relationships"`
	OwnershipRecords int                   `json:"ownership_records"`
	Attempts         int                   `json:"attempts"`
	Results          []*resolution.Result  `json:"results"`
	Proposed         []models.Relationship `json:"proposed_relationships,omitempty"`
}

// EntityDetail is an entity with every edge and ledger line touching it.
type EntityDetail struct {
	Entity           *models.Entity           `json:"entity"`
	Relationships    []models.Relationship    `json:"relationships"`
	OwnershipRecords []models.OwnershipRecord `json:"ownershipRecords"`
}

// SearchHit is one name search result.
type SearchHit struct {
	Entity     *models.Entity `json:"entity"`
	Similarity float64        `json:"similarity"`
}

// RegistryService resolves parser output into the canonical entity registry.
type RegistryService interface {
	// IngestParties resolves every named Exhibit-A entry and tracks its
	// relationship signals, all in one registry transaction.
	IngestParties(ctx context.Context, entries []models.PartyEntry, src models.SourceReference) (*IngestSummary, error)

	// IngestOwners resolves title owners and appends one ownership record
	// per owner that names a property.
	IngestOwners(ctx context.Context, owners []models.OwnerEntry, src models.SourceReference) (*IngestSummary, error)

	// Resolve resolves a single extraction.
	Resolve(ctx context.Context, x resolution.Extraction) (*resolution.Result, error)

	// GetEntity returns the entity with its relationships and ownership.
	// Returns ErrEntityNotFound when no entity has the id.
	GetEntity(ctx context.Context, id uuid.UUID) (*EntityDetail, error)

	// Search returns registry entities sharing a name token with name,
	// most similar first.
	Search(ctx context.Context, name string, limit int) ([]SearchHit, error)

	// Ready reports whether the registry is reachable.
	Ready(ctx context.Context) error
}

type registryService struct {
	repo     repository.EntityRepository
	resolver *resolution.Resolver
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewRegistryService creates a RegistryService over repo.
func NewRegistryService(repo repository.EntityRepository, resolver *resolution.Resolver, m *metrics.Metrics, log *logger.Logger) RegistryService {
	return &registryService{
		repo:     repo,
		resolver: resolver,
		metrics:  m,
		log:      log,
	}
}

// record is one parser row reduced to what resolution needs.
type record struct {
	extraction resolution.Extraction
	signals    []models.RelationshipSignal
	ownership  *models.OwnershipRecord
}

func (s *registryService) IngestParties(ctx context.Context, entries []models.PartyEntry, src models.SourceReference) (*IngestSummary, error) {
	records := make([]*record, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.PrimaryName) == "" {
			continue
		}
		ref := withLocator(src, "entry "+e.EntryNumber)
		records[i] = &record{
			extraction: resolution.Extraction{
				Name:       e.PrimaryName,
				Address:    e.Address(),
				EntityType: e.EntityType,
				Source:     ref,
			},
			signals: e.Signals,
		}
	}
	return s.ingest(ctx, records, src)
}

func (s *registryService) IngestOwners(ctx context.Context, owners []models.OwnerEntry, src models.SourceReference) (*IngestSummary, error) {
	records := make([]*record, len(owners))
	for i, o := range owners {
		if strings.TrimSpace(o.FullName) == "" {
			continue
		}
		ref := withLocator(src, ownerLocator(o))
		rec := &record{
			extraction: resolution.Extraction{
				Name:       o.FullName,
				Address:    o.AddressParts(),
				EntityType: o.EntityType,
				Interest:   o.Interest,
				Source:     ref,
			},
			signals: o.Signals,
		}
		if prop := propertyRef(o); prop != "" {
			rec.extraction.PropertyRefs = []string{prop}
			rec.ownership = &models.OwnershipRecord{
				PropertyRef: prop,
				Interest:    o.Interest,
				NetAcres:    o.NetAcres,
				Source:      ref,
			}
		}
		records[i] = rec
	}
	return s.ingest(ctx, records, src)
}

// ingest replays the whole document when another writer moved an entity
// underneath it. A nil record is a skipped row.
func (s *registryService) ingest(ctx context.Context, records []*record, src models.SourceReference) (*IngestSummary, error) {
	log := s.log.WithJob(src.JobID, src.Tool)
	start := time.Now()

	var lastErr error
	for attempt := 1; attempt <= MaxIngestAttempts; attempt++ {
		var summary *IngestSummary
		err := s.repo.WithTx(ctx, func(tx repository.EntityRepository) error {
			var err error
			summary, err = s.apply(ctx, tx, records)
			return err
		})
		if err == nil {
			summary.Attempts = attempt
			s.observe(summary)
			log.Info("Registry ingest completed", map[string]interface{}{
				"document":      src.Document,
				"created":       summary.Created,
				"matched":       summary.Matched,
				"skipped":       summary.Skipped,
				"relationships": summary.Relationships,
				"attempts":      attempt,
				"duration_ms":   time.Since(start).Milliseconds(),
			})
			return summary, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			log.Error("Registry ingest failed", err, map[string]interface{}{"document": src.Document})
			return nil, fmt.Errorf("failed to ingest %s: %w", src.Document, err)
		}
		lastErr = err
		s.metrics.RegistryRetries.Inc()
		log.Warn("Registry version conflict, retrying document", map[string]interface{}{
			"document": src.Document,
			"attempt":  attempt,
		})
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRegistryBusy, MaxIngestAttempts, lastErr)
}

func (s *registryService) apply(ctx context.Context, tx repository.EntityRepository, records []*record) (*IngestSummary, error) {
	resolver := s.resolver.In(tx)
	tracker := resolution.NewTracker(resolver)
	summary := &IngestSummary{Results: make([]*resolution.Result, 0, len(records))}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rec == nil {
			summary.Skipped++
			continue
		}

		res, err := resolver.Resolve(ctx, rec.extraction)
		if errors.Is(err, resolution.ErrEmptyName) {
			summary.Skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		if res.Created {
			summary.Created++
		} else {
			summary.Matched++
		}

		rels, err := tracker.Track(ctx, res.Entity, rec.signals, rec.extraction.Source)
		if err != nil {
			return nil, err
		}
		summary.Relationships += len(rels)
		summary.Proposed = append(summary.Proposed, rels...)

		if rec.ownership != nil {
			own := *rec.ownership
			own.EntityID = res.Entity.ID
			if err := tx.AddOwnershipRecord(ctx, &own); err != nil {
				return nil, fmt.Errorf("failed to record ownership for %s: %w", res.Entity.ID, err)
			}
			summary.OwnershipRecords++
		}
		summary.Results = append(summary.Results, res)
	}
	return summary, nil
}

// observe records metrics only for committed work so retried attempts are
// not double counted.
func (s *registryService) observe(summary *IngestSummary) {
	for _, r := range summary.Results {
		s.metrics.ObserveResolution(r.Created)
	}
	for _, rel := range summary.Proposed {
		s.metrics.RelationshipsTotal.WithLabelValues(string(rel.RelationshipType)).Inc()
	}
}

func (s *registryService) Resolve(ctx context.Context, x resolution.Extraction) (*resolution.Result, error) {
	var res *resolution.Result
	err := s.repo.WithTx(ctx, func(tx repository.EntityRepository) error {
		var err error
		res, err = s.resolver.In(tx).Resolve(ctx, x)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", x.Name, err)
	}
	s.metrics.ObserveResolution(res.Created)
	return res, nil
}

func (s *registryService) GetEntity(ctx context.Context, id uuid.UUID) (*EntityDetail, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	if e == nil {
		return nil, ErrEntityNotFound
	}
	rels, err := s.repo.RelationshipsFor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationships: %w", err)
	}
	owns, err := s.repo.OwnershipRecordsFor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ownership records: %w", err)
	}
	return &EntityDetail{Entity: e, Relationships: rels, OwnershipRecords: owns}, nil
}

func (s *registryService) Search(ctx context.Context, name string, limit int) ([]SearchHit, error) {
	keys := resolution.SearchKeys(name)
	if len(keys) == 0 {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	found, err := s.repo.SearchCandidates(ctx, keys, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search entities: %w", err)
	}

	hits := make([]SearchHit, 0, len(found))
	for _, e := range found {
		best := resolution.NameSimilarity(name, e.CanonicalName)
		for _, v := range e.NameVariants {
			if sim := resolution.NameSimilarity(name, v.Name); sim > best {
				best = sim
			}
		}
		hits = append(hits, SearchHit{Entity: e, Similarity: best})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	return hits, nil
}

func (s *registryService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func withLocator(src models.SourceReference, locator string) models.SourceReference {
	src.Locator = locator
	return src
}

func ownerLocator(o models.OwnerEntry) string {
	loc := "row " + strconv.Itoa(o.RowNumber)
	if o.Sheet != "" {
		loc = o.Sheet + " " + loc
	}
	return loc
}

// propertyRef prefers the legal description, then the leasehold name.
func propertyRef(o models.OwnerEntry) string {
	if ref := strings.TrimSpace(o.LegalDescription); ref != "" {
		return ref
	}
	return strings.TrimSpace(o.Leasehold)
}

// NewSource stamps a fresh source reference for one tool run.
func NewSource(tool, jobID, document string) models.SourceReference {
	if jobID == "" {
		jobID = uuid.NewString()
	}
	return models.SourceReference{
		Tool:       tool,
		JobID:      jobID,
		Document:   document,
		RecordedAt: time.Now().UTC(),
	}
}
