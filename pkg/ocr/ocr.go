// Package ocr normalizes the output of external OCR engines into a uniform
// sequence of word records with pixel bounding boxes and confidence scores.
//
// The engines themselves are black boxes: Tesseract (via gosseract), Google
// Document AI, and precomputed hOCR sidecar files all satisfy the same Engine
// contract, so the PDF synthesis pipeline never needs to know which one
// produced its words.
//
// Key Types:
//
// - Word: a recognized token with text, confidence (0-100) and pixel box
// - Box: an axis-aligned rectangle in raster pixel units
// - Input: one rasterized page submitted for recognition
// - Engine: the provider contract, one page image in, words out
package ocr

import "context"

// Box is an axis-aligned rectangle in raster pixel coordinates with the
// origin in the upper-left corner of the image.
type Box struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the box has non-positive dimensions.
func (b Box) IsEmpty() bool { return b.Width <= 0 || b.Height <= 0 }

// Word is a single recognized token. Words are reported in the engine's
// detection order, which approximates reading order but is not guaranteed.
type Word struct {
	Text       string
	Confidence float64 // 0-100
	Box        Box
}

// Input encapsulates one rasterized page submitted for OCR.
type Input struct {
	// ID is an optional caller-provided identifier echoed in errors.
	ID string
	// PNG is the encoded page bitmap.
	PNG []byte
	// PageIndex is the zero-based page index in the source document,
	// used by sidecar engines that look words up rather than recognize.
	PageIndex int
	// DPI carries the effective dots-per-inch of the bitmap. Tesseract
	// uses it for layout heuristics; zero means unknown.
	DPI int
	// Languages is a list of language hints (e.g. "eng") that engines can
	// use to select trained data.
	Languages []string
}

// Engine is the OCR provider contract: one page image in, words out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) ([]Word, error)
}

type recognition struct {
	words []Word
	err   error
}

// RunDetached executes a blocking recognition on its own goroutine so the
// caller's context deadline is honored even when the underlying engine has no
// cancellation hook. On expiry the worker goroutine is abandoned; it finishes
// in the background and its result is discarded.
func RunDetached(ctx context.Context, recognize func() ([]Word, error)) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan recognition, 1)
	go func() {
		words, err := recognize()
		done <- recognition{words: words, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.words, r.err
	}
}
