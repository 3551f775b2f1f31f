package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stwalsh4118/landman/api/internal/extract"
	"github.com/stwalsh4118/landman/api/internal/logger"
	"github.com/stwalsh4118/landman/api/internal/metrics"
	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/pdftext"
	"github.com/stwalsh4118/landman/api/internal/revenue"
	"github.com/stwalsh4118/landman/api/internal/title"
)

// Tool names recorded on every source reference.
const (
	ToolExtract = "extract"
	ToolTitle   = "title"
	ToolRevenue = "revenue"
	ToolAPI     = "api"
)

// ErrEmptyInput is returned when a parse request carries no content.
var ErrEmptyInput = errors.New("no document content provided")

var pdfMagic = []byte("%PDF")

// ExtractResult is one parsed Exhibit-A document.
type ExtractResult struct {
	JobID    string              `json:"job_id"`
	Document string              `json:"document,omitempty"`
	Entries  []models.PartyEntry `json:"entries"`
	Total    int                 `json:"total"`
	Flagged  int                 `json:"flagged"`
}

// TitleResult is one parsed title workbook.
type TitleResult struct {
	JobID      string              `json:"job_id"`
	Document   string              `json:"document"`
	Layout     title.Layout        `json:"layout"`
	Owners     []models.OwnerEntry `json:"owners"`
	Total      int                 `json:"total"`
	Duplicates int                 `json:"duplicates"`
}

// RevenueResult is one parsed revenue statement.
type RevenueResult struct {
	JobID     string                   `json:"job_id"`
	Document  string                   `json:"document"`
	Statement *models.RevenueStatement `json:"statement"`
}

// ParseService runs the document parsers and records their outcome.
type ParseService interface {
	// ParseExhibitA parses Exhibit-A text, or PDF bytes when data starts
	// with the PDF signature.
	ParseExhibitA(ctx context.Context, document string, data []byte) (*ExtractResult, error)

	// ParseTitle parses a CSV or XLSX owner workbook.
	ParseTitle(ctx context.Context, document string, data []byte) (*TitleResult, error)

	// ParseRevenue parses a revenue statement PDF.
	ParseRevenue(ctx context.Context, document string, data []byte) (*RevenueResult, error)
}

type parseService struct {
	extractor *extract.Parser
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewParseService creates a ParseService that parses Exhibit-A entries on
// up to workers goroutines per document.
func NewParseService(workers int, m *metrics.Metrics, log *logger.Logger) ParseService {
	return &parseService{
		extractor: extract.NewParser(workers),
		metrics:   m,
		log:       log,
	}
}

func (s *parseService) ParseExhibitA(ctx context.Context, document string, data []byte) (*ExtractResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}
	jobID := uuid.NewString()
	log := s.log.WithJob(jobID, ToolExtract)
	start := time.Now()

	text := string(data)
	if bytes.HasPrefix(data, pdfMagic) {
		doc, err := pdftext.Extract(data)
		if err != nil {
			s.finish(log, ToolExtract, document, 0, 0, start, err)
			return nil, fmt.Errorf("failed to read exhibit PDF: %w", err)
		}
		text = doc.Text()
	}

	entries, err := s.extractor.Parse(ctx, text)
	if err != nil {
		s.finish(log, ToolExtract, document, 0, 0, start, err)
		return nil, fmt.Errorf("failed to parse exhibit: %w", err)
	}

	flagged := 0
	for _, e := range entries {
		if e.Flagged {
			flagged++
		}
	}
	s.finish(log, ToolExtract, document, len(entries), flagged, start, nil)
	return &ExtractResult{
		JobID:    jobID,
		Document: document,
		Entries:  entries,
		Total:    len(entries),
		Flagged:  flagged,
	}, nil
}

func (s *parseService) ParseTitle(ctx context.Context, document string, data []byte) (*TitleResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	jobID := uuid.NewString()
	log := s.log.WithJob(jobID, ToolTitle)
	start := time.Now()

	report, err := title.ParseFile(ctx, document, data)
	if err != nil {
		s.finish(log, ToolTitle, document, 0, 0, start, err)
		return nil, fmt.Errorf("failed to parse title workbook: %w", err)
	}

	dups := 0
	for _, o := range report.Owners {
		if o.DuplicateFlag {
			dups++
		}
	}
	s.finish(log, ToolTitle, document, len(report.Owners), dups, start, nil)
	return &TitleResult{
		JobID:      jobID,
		Document:   document,
		Layout:     report.Layout,
		Owners:     report.Owners,
		Total:      len(report.Owners),
		Duplicates: dups,
	}, nil
}

func (s *parseService) ParseRevenue(ctx context.Context, document string, data []byte) (*RevenueResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	jobID := uuid.NewString()
	log := s.log.WithJob(jobID, ToolRevenue)
	start := time.Now()

	st, err := revenue.ParseFile(ctx, data)
	if err != nil {
		s.finish(log, ToolRevenue, document, 0, 0, start, err)
		return nil, fmt.Errorf("failed to parse revenue statement: %w", err)
	}
	s.finish(log, ToolRevenue, document, len(st.Rows), len(st.Warnings), start, nil)
	return &RevenueResult{JobID: jobID, Document: document, Statement: st}, nil
}

// finish logs and records one parse. Document-level failures are warnings;
// they are caused by the upload, not by the service.
func (s *parseService) finish(log *logger.Logger, tool, document string, records, flagged int, start time.Time, err error) {
	elapsed := time.Since(start)
	s.metrics.ObserveParse(tool, records, flagged, elapsed, err)

	fields := map[string]interface{}{
		"document":    document,
		"records":     records,
		"flagged":     flagged,
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
		log.Warn("Parse failed", fields)
		return
	}
	log.Info("Parse completed", fields)
}
