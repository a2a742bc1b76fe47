// Package pdfsynth reconstructs scanned PDFs as searchable documents.
//
// For each source page it renders a raster, re-encodes it as a compressed
// JPEG background, runs OCR, and overlays an invisible text layer with every
// surviving word positioned at its recognized bounding box. The text is
// fully searchable and selectable but visually absent; the page looks like
// the compressed scan.
//
// The output of Assemble is a serialized PDF plus the metadata record the
// accessibility injector (package uameta) needs for the XMP packet. Page
// geometry is preserved 1:1 from the source document.
package pdfsynth

import (
	"bytes"
	"context"
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/ualibraries/pdfua/pkg/ocr"
	"github.com/ualibraries/pdfua/pkg/raster"
)

// PageSource is the read-only view of a source document the assembler
// consumes. *raster.Document satisfies it; tests substitute stubs.
type PageSource interface {
	NumPages() int
	PageSize(page int) (wPt, hPt float64, err error)
	Render(page int, dpi int) (*raster.Raster, error)
}

// Metadata is the document-level metadata applied to the output and handed
// to the accessibility injector.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string // comma-separated
	Language string
}

// PageRecord summarizes one synthesized page, including the full recognized
// word list so callers can export hOCR sidecars.
type PageRecord struct {
	WidthPt  float64
	HeightPt float64
	WidthPx  int
	HeightPx int
	Words    []ocr.Word // all recognized words, pre-filter
	Inserted int        // words that passed the confidence/text predicate
}

// Result is the outcome of assembling one document.
type Result struct {
	PDF   []byte
	Meta  Metadata
	Pages []PageRecord
}

// fpdf cannot write the DisplayDocTitle viewer preference; the capability
// decision is made here once and the accessibility injector applies the
// preference during its rewrite instead.
const writerSetsViewerPrefs = false

// Assemble converts a full source document into a searchable PDF. Page order
// is preserved 1:1. A rasterization or OCR failure on any page aborts the
// whole conversion; no partial document is returned.
func Assemble(ctx context.Context, src PageSource, engine ocr.Engine, sourceName string, cfg Config, logger zerolog.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	meta := Metadata{
		Title:    TitleFromFilename(sourceName),
		Author:   cfg.Author,
		Subject:  cfg.Subject,
		Keywords: cfg.Keywords,
		Language: cfg.Language,
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetKeywords(meta.Keywords, true)
	pdf.SetCreator(cfg.CreatorTool, true)

	if !writerSetsViewerPrefs {
		logger.Debug().Msg("DisplayDocTitle deferred to metadata injection")
	}

	n := src.NumPages()
	result := &Result{Meta: meta, Pages: make([]PageRecord, 0, n)}

	for i := 0; i < n; i++ {
		logger.Info().Int("page", i+1).Int("pages", n).Msg("processing page")

		rec, err := synthesizePage(ctx, pdf, src, engine, i, cfg)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		result.Pages = append(result.Pages, rec)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf generation: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	result.PDF = buf.Bytes()
	return result, nil
}
