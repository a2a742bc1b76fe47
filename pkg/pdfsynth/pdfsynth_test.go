package pdfsynth

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ualibraries/pdfua/pkg/ocr"
	"github.com/ualibraries/pdfua/pkg/raster"
)

// stubSource is an in-memory PageSource.
type stubSource struct {
	pages []stubPage
}

type stubPage struct {
	wPt, hPt float64
	wPx, hPx int
}

func (s *stubSource) NumPages() int { return len(s.pages) }

func (s *stubSource) PageSize(page int) (float64, float64, error) {
	p := s.pages[page]
	return p.wPt, p.hPt, nil
}

func (s *stubSource) Render(page int, dpi int) (*raster.Raster, error) {
	p := s.pages[page]
	img := image.NewRGBA(image.Rect(0, 0, p.wPx, p.hPx))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &raster.Raster{Image: img, Width: p.wPx, Height: p.hPx, DPI: dpi}, nil
}

// stubEngine returns canned words per page index.
type stubEngine struct {
	words map[int][]ocr.Word
	err   error
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Recognize(ctx context.Context, in ocr.Input) ([]ocr.Word, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.words[in.PageIndex], nil
}

func testLogger() zerolog.Logger { return zerolog.Nop() }

func word(text string, conf float64) ocr.Word {
	return ocr.Word{Text: text, Confidence: conf, Box: ocr.Box{Left: 10, Top: 10, Width: 40, Height: 12}}
}

func TestAssembleConfidenceFilter(t *testing.T) {
	src := &stubSource{pages: []stubPage{{612, 792, 200, 280}}}
	engine := &stubEngine{words: map[int][]ocr.Word{
		0: {
			word("Hello", 90),
			word("noise", 30),
			word("borderline", 50), // exactly at threshold: excluded
			word("  ", 99),         // whitespace only: excluded
			word("", 99),
			word("world", 51),
		},
	}}

	res, err := Assemble(context.Background(), src, engine, "sample.pdf", DefaultConfig(), testLogger())
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)

	assert.Equal(t, 2, res.Pages[0].Inserted)
	assert.Len(t, res.Pages[0].Words, 6, "pre-filter word list is preserved")
}

func TestAssemblePageCountPreserved(t *testing.T) {
	src := &stubSource{pages: []stubPage{
		{612, 792, 100, 140},
		{612, 792, 100, 140},
		{595, 842, 100, 140},
	}}
	// Page 2 has zero recognized words; it must still be emitted.
	engine := &stubEngine{words: map[int][]ocr.Word{
		0: {word("one", 80)},
		2: {word("three", 80)},
	}}

	res, err := Assemble(context.Background(), src, engine, "multi_page.pdf", DefaultConfig(), testLogger())
	require.NoError(t, err)
	assert.Len(t, res.Pages, 3)
	assert.Equal(t, 0, res.Pages[1].Inserted)
	assert.Equal(t, []byte("%PDF"), res.PDF[:4])
}

func TestAssembleScenarioSinglePage(t *testing.T) {
	src := &stubSource{pages: []stubPage{{612, 792, 1000, 1400}}}
	engine := &stubEngine{words: map[int][]ocr.Word{
		0: {{Text: "Hello", Confidence: 90, Box: ocr.Box{Left: 100, Top: 200, Width: 50, Height: 20}}},
	}}

	res, err := Assemble(context.Background(), src, engine, "hello.pdf", DefaultConfig(), testLogger())
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	assert.Equal(t, 1, res.Pages[0].Inserted)
	assert.Equal(t, 1000, res.Pages[0].WidthPx)
	assert.Equal(t, 1400, res.Pages[0].HeightPx)
	assert.Equal(t, "Hello", res.Meta.Title)
	assert.NotEmpty(t, res.PDF)
}

func TestAssembleMetadataRecord(t *testing.T) {
	src := &stubSource{pages: []stubPage{{612, 792, 100, 140}}}
	engine := &stubEngine{}

	cfg := DefaultConfig()
	cfg.Author = "Example Libraries"
	cfg.Subject = "Digitized Collection"
	cfg.Keywords = "OCR, archive"

	res, err := Assemble(context.Background(), src, engine, "/scans/annual_report_1999.pdf", cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "Annual Report 1999", res.Meta.Title)
	assert.Equal(t, "Example Libraries", res.Meta.Author)
	assert.Equal(t, "Digitized Collection", res.Meta.Subject)
	assert.Equal(t, "OCR, archive", res.Meta.Keywords)
	assert.Equal(t, "en-US", res.Meta.Language)
}

func TestAssembleAbortsOnOCRFailure(t *testing.T) {
	src := &stubSource{pages: []stubPage{{612, 792, 100, 140}}}
	engine := &stubEngine{err: fmt.Errorf("engine crashed")}

	res, err := Assemble(context.Background(), src, engine, "broken.pdf", DefaultConfig(), testLogger())
	assert.Error(t, err)
	assert.Nil(t, res, "no partial document on page failure")
}

func TestAssembleRejectsInvalidConfig(t *testing.T) {
	src := &stubSource{pages: []stubPage{{612, 792, 100, 140}}}

	cfg := DefaultConfig()
	cfg.DPI = 0
	_, err := Assemble(context.Background(), src, &stubEngine{}, "x.pdf", cfg, testLogger())
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.JPEGQuality = 96
	_, err = Assemble(context.Background(), src, &stubEngine{}, "x.pdf", cfg, testLogger())
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.MinConfidence = 101
	_, err = Assemble(context.Background(), src, &stubEngine{}, "x.pdf", cfg, testLogger())
	assert.Error(t, err)
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "My Scanned File", TitleFromFilename("/input/my_scanned_file.pdf"))
	assert.Equal(t, "Report", TitleFromFilename("report.PDF"))
	assert.Equal(t, "Annual Report 2003", TitleFromFilename("annual_report_2003.pdf"))
}
