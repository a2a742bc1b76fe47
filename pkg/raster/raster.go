// Package raster wraps the external PDF rendering engine (MuPDF via go-fitz)
// behind the two operations the pipeline needs: page geometry in PDF points
// and page-to-bitmap rendering at a chosen resolution. It also re-encodes
// rendered bitmaps as lossy JPEG for use as compressed page backgrounds.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// Raster is a rendered page bitmap. It is ephemeral, scoped to one page's
// processing, and never persisted.
type Raster struct {
	Image  image.Image
	Width  int // pixels
	Height int
	DPI    int
}

// PNG encodes the raster losslessly for handoff to an OCR engine.
func (r *Raster) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image); err != nil {
		return nil, fmt.Errorf("encode raster as png: %w", err)
	}
	return buf.Bytes(), nil
}

// Document is a read-only handle on a source PDF. Callers must Close it on
// every exit path; a long batch run leaks native memory otherwise.
type Document struct {
	doc  *fitz.Document
	path string
}

// Open opens a source PDF for rasterization.
func Open(path string) (*Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Document{doc: doc, path: path}, nil
}

// OpenBytes opens an in-memory PDF for rasterization.
func OpenBytes(data []byte) (*Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf from memory: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Close releases the underlying rendering engine resources.
func (d *Document) Close() error {
	return d.doc.Close()
}

// NumPages returns the page count of the source document.
func (d *Document) NumPages() int {
	return d.doc.NumPage()
}

// PageSize returns the page rectangle in PDF points for the zero-based page
// index. The engine reports bounds at 72 DPI, which is points by definition.
func (d *Document) PageSize(page int) (wPt, hPt float64, err error) {
	bound, err := d.doc.Bound(page)
	if err != nil {
		return 0, 0, fmt.Errorf("page %d bounds: %w", page+1, err)
	}
	return float64(bound.Dx()), float64(bound.Dy()), nil
}

// Render rasterizes the zero-based page index at the given resolution.
func (d *Document) Render(page int, dpi int) (*Raster, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("render page %d: dpi must be positive, got %d", page+1, dpi)
	}
	img, err := d.doc.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render page %d at %d dpi: %w", page+1, dpi, err)
	}
	b := img.Bounds()
	return &Raster{Image: img, Width: b.Dx(), Height: b.Dy(), DPI: dpi}, nil
}
