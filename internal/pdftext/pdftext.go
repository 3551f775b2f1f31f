// Package pdftext extracts positioned word spans from PDF pages.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrEmptyPDF is returned when the document has no readable text.
	ErrEmptyPDF = errors.New("pdf contains no extractable text")
	// ErrMalformedPDF is returned when the bytes cannot be read as a PDF.
	ErrMalformedPDF = errors.New("malformed pdf")
)

// DefaultRowTolerance is the vertical distance, in points, within which two
// spans are considered to sit on the same visual row.
const DefaultRowTolerance = 3.0

// Span is one word with its horizontal extent and its top edge measured
// from the top of the page.
type Span struct {
	Text string  `json:"text"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
	Y0   float64 `json:"y0"`
}

// Page holds the spans of one page in reading order.
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Spans  []Span  `json:"spans"`
}

// Document is the extracted text layer of a PDF.
type Document struct {
	Pages []Page `json:"pages"`
}

// Extract reads data as a PDF and returns its word spans per page. Pages
// that cannot be read are skipped.
func Extract(data []byte) (doc *Document, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyPDF
	}
	// the reader panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrMalformedPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPDF, err)
	}

	doc = &Document{}
	total := 0
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		width, height := pageSize(page)
		spans := WordsFromGlyphs(page.Content().Text, height)
		total += len(spans)
		doc.Pages = append(doc.Pages, Page{Number: i, Width: width, Height: height, Spans: spans})
	}
	if total == 0 {
		return nil, ErrEmptyPDF
	}
	return doc, nil
}

// Text renders every page as lines of space-joined spans, pages separated
// by a blank line.
func (d *Document) Text() string {
	pages := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		pages = append(pages, strings.Join(p.Lines(), "\n"))
	}
	return strings.Join(pages, "\n\n")
}

// Lines returns the page's rows as text, top to bottom.
func (p Page) Lines() []string {
	rows := Rows(p.Spans, DefaultRowTolerance)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		words := make([]string, len(row))
		for i, s := range row {
			words[i] = s.Text
		}
		lines = append(lines, strings.Join(words, " "))
	}
	return lines
}

// Rows groups spans into visual rows: a span joins the current row when
// its top is within tolerance of the row's first span. Rows are ordered
// top to bottom and spans within a row left to right.
func Rows(spans []Span, tolerance float64) [][]Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := append([]Span(nil), spans...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y0 != sorted[j].Y0 {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var rows [][]Span
	var current []Span
	anchor := sorted[0].Y0
	for _, s := range sorted {
		if len(current) > 0 && math.Abs(s.Y0-anchor) > tolerance {
			rows = append(rows, sortByX(current))
			current = nil
		}
		if len(current) == 0 {
			anchor = s.Y0
		}
		current = append(current, s)
	}
	rows = append(rows, sortByX(current))
	return rows
}

func sortByX(row []Span) []Span {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X0 < row[j].X0 })
	return row
}

// WordsFromGlyphs merges the per-glyph runs the PDF content stream yields
// into word spans. Glyphs are joined while they share a baseline and the
// horizontal gap stays under a fraction of the font size; whitespace glyphs
// always end a word. pageHeight flips the PDF's bottom-up Y axis.
func WordsFromGlyphs(glyphs []pdf.Text, pageHeight float64) []Span {
	if len(glyphs) == 0 {
		return nil
	}
	ordered := append([]pdf.Text(nil), glyphs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if math.Abs(ordered[i].Y-ordered[j].Y) > 0.5 {
			return ordered[i].Y > ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})

	var spans []Span
	var b strings.Builder
	var cur Span
	var lastX1, lastY float64
	flush := func() {
		if b.Len() > 0 {
			cur.Text = b.String()
			spans = append(spans, cur)
			b.Reset()
		}
	}

	for _, g := range ordered {
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = 10
		}
		gap := g.X - lastX1
		sameLine := math.Abs(g.Y-lastY) <= 0.5
		if b.Len() == 0 || !sameLine || gap > size*0.25 || gap < -size {
			flush()
			cur = Span{X0: g.X, Y0: pageHeight - g.Y - size}
		}
		b.WriteString(g.S)
		cur.X1 = g.X + g.W
		lastX1, lastY = cur.X1, g.Y
	}
	flush()
	return spans
}

func pageSize(page pdf.Page) (width, height float64) {
	box := page.V.Key("MediaBox")
	if box.Len() < 4 {
		box = page.V.Key("Parent").Key("MediaBox")
	}
	if box.Len() < 4 {
		// US Letter
		return 612, 792
	}
	return box.Index(2).Float64() - box.Index(0).Float64(), box.Index(3).Float64() - box.Index(1).Float64()
}
