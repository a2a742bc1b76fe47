package pdfsynth

import (
	"bytes"
	"context"
	"fmt"

	"codeberg.org/go-pdf/fpdf"

	"github.com/ualibraries/pdfua/pkg/ocr"
	"github.com/ualibraries/pdfua/pkg/raster"
)

// synthesizePage appends one page to the output document: the compressed
// raster as a full-page background, then the invisible OCR text layer.
func synthesizePage(ctx context.Context, pdf *fpdf.Fpdf, src PageSource, engine ocr.Engine, page int, cfg Config) (PageRecord, error) {
	wPt, hPt, err := src.PageSize(page)
	if err != nil {
		return PageRecord{}, err
	}

	ras, err := src.Render(page, cfg.DPI)
	if err != nil {
		return PageRecord{}, fmt.Errorf("rasterize: %w", err)
	}

	jpegData, err := raster.EncodeJPEG(ras.Image, cfg.JPEGQuality)
	if err != nil {
		return PageRecord{}, fmt.Errorf("compress: %w", err)
	}

	pdf.AddPageFormat("P", fpdf.SizeType{Wd: wPt, Ht: hPt})

	imageName := fmt.Sprintf("page%d", page)
	opts := fpdf.ImageOptions{ReadDpi: false, ImageType: "JPG"}
	pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(jpegData))
	pdf.ImageOptions(imageName, 0, 0, wPt, hPt, false, opts, 0, "")

	pngData, err := ras.PNG()
	if err != nil {
		return PageRecord{}, err
	}

	ocrCtx := ctx
	if cfg.PageTimeout > 0 {
		var cancel context.CancelFunc
		ocrCtx, cancel = context.WithTimeout(ctx, cfg.PageTimeout)
		defer cancel()
	}
	words, err := engine.Recognize(ocrCtx, ocr.Input{
		ID:        imageName,
		PNG:       pngData,
		PageIndex: page,
		DPI:       ras.DPI,
	})
	if err != nil {
		return PageRecord{}, fmt.Errorf("ocr: %w", err)
	}

	scale, err := NewScaleMap(wPt, hPt, ras.Width, ras.Height)
	if err != nil {
		return PageRecord{}, err
	}

	inserted := drawTextLayer(pdf, words, scale, page+1, cfg)

	return PageRecord{
		WidthPt:  wPt,
		HeightPt: hPt,
		WidthPx:  ras.Width,
		HeightPx: ras.Height,
		Words:    words,
		Inserted: inserted,
	}, nil
}

// drawTextLayer draws the filtered words onto an optional-content layer with
// zero fill opacity. Returns how many words were inserted.
func drawTextLayer(pdf *fpdf.Fpdf, words []ocr.Word, scale ScaleMap, pageNum int, cfg Config) int {
	layer := pdf.AddLayer(fmt.Sprintf("%s (Page %d)", cfg.LayerName, pageNum), true)
	pdf.BeginLayer(layer)
	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)
	// Opacity zero makes the layer invisible; the color is still required
	// by the text operators.
	pdf.SetTextColor(0, 0, 0)
	pdf.SetAlpha(0.0, "Normal")

	inserted := 0
	for _, w := range words {
		if !keepWord(w, cfg.MinConfidence) {
			continue
		}
		drawWord(pdf, w, scale, cfg.Font)
		inserted++
	}

	pdf.EndLayer()
	pdf.SetAlpha(1.0, "Normal")
	return inserted
}

// drawWord renders a single word, stretching the font size so the rendered
// string spans the recognized box width.
func drawWord(pdf *fpdf.Fpdf, word ocr.Word, scale ScaleMap, font FontConfig) {
	x1, y1, x2, _ := scale.Rect(word.Box)
	wordWidth := x2 - x1

	latin1 := toLatin1(word.Text)

	strWidth := pdf.GetStringWidth(latin1)
	if strWidth > 0 && wordWidth > 0 {
		pdf.SetFontSize(font.Size * wordWidth / strWidth)
	}

	fontSize, _ := pdf.GetFontSize()
	pdf.Text(x1, y1+fontSize*font.AscentRatio, latin1)
	pdf.SetFontSize(font.Size)
}
