// Package extract parses Exhibit-A party lists: numbered blocks of free text
// naming each party and its mailing address.
package extract

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/stwalsh4118/landman/api/internal/models"
)

// Parser parses Exhibit-A text. Entries are independent and are parsed on
// a bounded worker group; output order always matches input order.
type Parser struct {
	workers int
	parse   func(Chunk) models.PartyEntry
}

// NewParser returns a Parser using up to workers goroutines per document.
// A non-positive value selects GOMAXPROCS.
func NewParser(workers int) *Parser {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parser{workers: workers, parse: parseChunk}
}

// Parse segments text into numbered entries and parses each one. The
// returned slice has exactly one entry per segmented chunk; entries that
// fail are returned as flagged placeholders. The only error is ctx's.
func (p *Parser) Parse(ctx context.Context, text string) ([]models.PartyEntry, error) {
	chunks := Segment(text)
	entries := make([]models.PartyEntry, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = safeParse(c, p.parse)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseEntry parses a single entry's text outside any numbered list.
func ParseEntry(label, text string) models.PartyEntry {
	return safeParse(Chunk{Number: label, Text: text}, parseChunk)
}
