// Package batch drives the conversion of whole directory trees: it discovers
// source PDFs, mirrors the directory structure under the output root, runs
// the synthesis pipeline plus accessibility injection per file, and reports a
// structured per-file result. No single file's failure aborts the run.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ualibraries/pdfua/pkg/ocr"
	"github.com/ualibraries/pdfua/pkg/pdfsynth"
	"github.com/ualibraries/pdfua/pkg/raster"
	"github.com/ualibraries/pdfua/pkg/uameta"
)

// FileConverter converts one source PDF into a finished output file.
// Pipeline is the production implementation.
type FileConverter interface {
	Convert(ctx context.Context, inputPath, outputPath string) FileResult
}

// Run walks the input tree, converts every PDF and aggregates the results.
// It returns an error only when the run itself cannot proceed (bad config,
// unreadable input root, canceled context) — per-file errors land in the
// summary instead.
func Run(ctx context.Context, conv FileConverter, cfg Config, logger zerolog.Logger) (Summary, error) {
	summary := Summary{Started: time.Now()}

	if err := cfg.Validate(); err != nil {
		return summary, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return summary, fmt.Errorf("create output directory: %w", err)
	}

	inputs, err := discover(cfg.InputDir, cfg.Recursive)
	if err != nil {
		return summary, fmt.Errorf("scan input directory: %w", err)
	}
	logger.Info().Int("files", len(inputs)).Str("input", cfg.InputDir).Msg("starting batch")

	for _, inputPath := range inputs {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(summary.Started)
			return summary, err
		}

		rel, err := filepath.Rel(cfg.InputDir, inputPath)
		if err != nil {
			rel = filepath.Base(inputPath)
		}
		outputPath := filepath.Join(cfg.OutputDir, rel)
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			summary.Results = append(summary.Results, FileResult{
				Input: inputPath, Output: outputPath, Status: StatusFailed,
				Err: fmt.Errorf("create output subdirectory: %w", err),
			})
			continue
		}

		var result FileResult
		if _, err := os.Stat(outputPath); err == nil && !cfg.Overwrite {
			result = FileResult{
				Input: inputPath, Output: outputPath, Status: StatusSkipped,
				Err: fmt.Errorf("output exists (enable overwrite to replace)"),
			}
		} else {
			result = conv.Convert(ctx, inputPath, outputPath)
		}
		summary.Results = append(summary.Results, result)

		evt := logger.Info()
		if result.Status == StatusFailed {
			evt = logger.Error().Err(result.Err)
		} else if result.Err != nil {
			evt = logger.Warn().Err(result.Err)
		}
		evt.Str("file", rel).Stringer("status", result.Status).Msg("file finished")
	}

	summary.Duration = time.Since(summary.Started)
	return summary, nil
}

// discover lists the PDF files under root in walk order.
func discover(root string, recursive bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// Pipeline is the production FileConverter: rasterize, OCR, synthesize,
// then inject accessibility metadata.
type Pipeline struct {
	Engine ocr.Engine
	Config Config
	Logger zerolog.Logger
}

// Convert processes one source PDF. The assembled searchable PDF is written
// before metadata injection; when injection fails the assembled file stays
// on disk and the result reports partial success rather than rolling back.
func (p *Pipeline) Convert(ctx context.Context, inputPath, outputPath string) FileResult {
	result := FileResult{Input: inputPath, Output: outputPath}
	fail := func(err error) FileResult {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fail(fmt.Errorf("read source: %w", err))
	}

	if !p.Config.Force {
		if layers, err := pdfsynth.DetectOCRLayers(data, p.Config.Synth.LayerName); err == nil && layers.HasOCRLayer {
			result.Status = StatusSkipped
			result.Err = fmt.Errorf("existing OCR layer %q (enable force to reconvert)", layers.OCRLayerName)
			return result
		}
	}

	src, err := raster.OpenBytes(data)
	if err != nil {
		return fail(fmt.Errorf("open source: %w", err))
	}
	defer src.Close()

	engine, err := p.engineFor(inputPath)
	if err != nil {
		return fail(err)
	}

	logger := p.Logger.With().Str("file", filepath.Base(inputPath)).Logger()
	res, err := pdfsynth.Assemble(ctx, src, engine, inputPath, p.Config.Synth, logger)
	if err != nil {
		return fail(fmt.Errorf("assemble: %w", err))
	}
	result.Pages = len(res.Pages)
	for _, pg := range res.Pages {
		result.WordsInserted += pg.Inserted
	}

	if err := os.WriteFile(outputPath, res.PDF, 0o644); err != nil {
		return fail(fmt.Errorf("write output: %w", err))
	}

	if p.Config.HOCROutDir != "" {
		if err := p.writeHOCRSidecar(inputPath, res); err != nil {
			logger.Warn().Err(err).Msg("hOCR sidecar export failed")
		}
	}

	rec := uameta.NewRecord()
	final, err := uameta.Inject(res.PDF, uameta.Meta{
		Title:       res.Meta.Title,
		Author:      res.Meta.Author,
		Subject:     res.Meta.Subject,
		Keywords:    res.Meta.Keywords,
		Language:    res.Meta.Language,
		Producer:    "pdfcpu",
		CreatorTool: p.Config.Synth.CreatorTool,
	}, rec)
	if err != nil {
		result.Status = StatusPartial
		result.Err = fmt.Errorf("metadata injection: %w", err)
		return result
	}
	if err := os.WriteFile(outputPath, final, 0o644); err != nil {
		result.Status = StatusPartial
		result.Err = fmt.Errorf("write annotated output: %w", err)
		return result
	}

	result.Status = StatusOK
	return result
}

// engineFor returns the OCR engine for one input, preferring a precomputed
// hOCR sidecar when HOCRInDir is configured.
func (p *Pipeline) engineFor(inputPath string) (ocr.Engine, error) {
	if p.Config.HOCRInDir == "" {
		if p.Engine == nil {
			return nil, fmt.Errorf("no OCR engine configured")
		}
		return p.Engine, nil
	}
	sidecar := filepath.Join(p.Config.HOCRInDir, stem(inputPath)+".hocr")
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return nil, fmt.Errorf("read hOCR sidecar: %w", err)
	}
	engine, err := ocr.NewHOCREngine(data)
	if err != nil {
		return nil, fmt.Errorf("parse hOCR sidecar %s: %w", sidecar, err)
	}
	return engine, nil
}

// writeHOCRSidecar exports the recognized words of a conversion as hOCR.
func (p *Pipeline) writeHOCRSidecar(inputPath string, res *pdfsynth.Result) error {
	pages := make([]ocr.HOCRPage, 0, len(res.Pages))
	for i, pg := range res.Pages {
		pages = append(pages, ocr.HOCRPage{
			PageNumber: i + 1,
			Width:      pg.WidthPx,
			Height:     pg.HeightPx,
			Words:      pg.Words,
		})
	}
	data, err := ocr.GenerateHOCR(res.Meta.Title, pages)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.Config.HOCROutDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.Config.HOCROutDir, stem(inputPath)+".hocr"), data, 0o644)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
