// Package tesseract provides the default OCR engine backed by the Tesseract
// library through gosseract. It lives in its own package so that importers of
// the engine contract (pkg/ocr) do not pick up the cgo dependency on the
// tesseract/leptonica headers.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ualibraries/pdfua/pkg/ocr"
)

// TesseractEngine implements ocr.Engine using the gosseract client. A fresh
// client is created per page so a failed recognition never poisons subsequent
// pages.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

var _ ocr.Engine = (*TesseractEngine)(nil)

// NewTesseractEngine constructs a Tesseract-backed OCR engine. The language
// list is used when an Input carries no hints of its own; empty means
// Tesseract's default ("eng").
func NewTesseractEngine(languages ...string) *TesseractEngine {
	return &TesseractEngine{
		clientFactory: gosseract.NewClient,
		languages:     languages,
	}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize performs word-level OCR on a single page image. The blocking
// gosseract calls run detached so a context deadline interrupts a hung
// recognition; the abandoned worker releases its client when it returns.
func (e *TesseractEngine) Recognize(ctx context.Context, in ocr.Input) ([]ocr.Word, error) {
	return ocr.RunDetached(ctx, func() ([]ocr.Word, error) {
		return e.recognize(in)
	})
}

func (e *TesseractEngine) recognize(in ocr.Input) ([]ocr.Word, error) {
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.PNG); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	langs := in.Languages
	if len(langs) == 0 {
		langs = e.languages
	}
	if len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize words: %w", err)
	}

	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, ocr.Word{
			Text:       strings.TrimRight(b.Word, "\n"),
			Confidence: b.Confidence,
			Box: ocr.Box{
				Left:   float64(b.Box.Min.X),
				Top:    float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
		})
	}
	return words, nil
}
