// pdfua is a command-line tool that converts scanned PDFs into searchable,
// compressed, accessibility-enhanced PDFs.
//
// Every page of every input is rendered to a bitmap, recognized with OCR,
// re-encoded as a compressed JPEG background with an invisible text layer on
// top, and finished with PDF/UA accessibility metadata (MarkInfo, language,
// XMP packet with unique identifiers and the UA conformance part).
//
// Usage:
//
//	pdfua -input ./input_pdfs -output ./output_pdfs [options]
//
// Required flags:
//
//	-input string   Root directory containing source *.pdf files
//	-output string  Directory receiving the converted files (mirrors the input tree)
//
// Processing options:
//
//	-dpi int          Rasterization resolution (default 150)
//	-quality int      JPEG quality 1-95 (default 80)
//	-min-conf float   Confidence threshold; words at or below are dropped (default 50)
//	-lang string      Document language tag (default "en-US")
//	-author string    Metadata author
//	-subject string   Metadata subject
//	-keywords string  Comma-separated metadata keywords
//	-page-timeout duration  Bound on one page's OCR call (default none)
//	-flat             Do not walk subdirectories
//	-overwrite        Replace existing output files
//	-force            Convert even when an existing OCR layer is detected
//
// OCR engine options:
//
//	-engine string        "tesseract" (default) or "docai"
//	-ocr-langs string     Comma-separated language hints for Tesseract (e.g. "eng,deu")
//	-docai-config string  YAML file with project_id, location, processor_id (required for -engine docai)
//	-debug-api string     File receiving raw Document AI responses as JSON
//	-hocr-out string      Directory receiving one hOCR sidecar per converted file
//	-hocr-in string       Directory with precomputed <name>.hocr files used instead of an engine
//
// Authentication for Document AI uses the GOOGLE_APPLICATION_CREDENTIALS
// environment variable.
//
// Exit status is 0 when the batch run completed, even if individual files
// failed; per-file outcomes are reported on the log stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ualibraries/pdfua/pkg/batch"
	"github.com/ualibraries/pdfua/pkg/ocr"
	"github.com/ualibraries/pdfua/pkg/ocr/tesseract"
)

func main() {
	inputDir := flag.String("input", "", "Root directory containing source PDF files")
	outputDir := flag.String("output", "", "Directory receiving the converted files")
	dpi := flag.Int("dpi", 0, "Rasterization resolution (default 150)")
	quality := flag.Int("quality", 0, "JPEG quality 1-95 (default 80)")
	minConf := flag.Float64("min-conf", -1, "Confidence threshold (default 50)")
	lang := flag.String("lang", "", "Document language tag (default en-US)")
	author := flag.String("author", "", "Metadata author")
	subject := flag.String("subject", "", "Metadata subject")
	keywords := flag.String("keywords", "", "Comma-separated metadata keywords")
	pageTimeout := flag.Duration("page-timeout", 0, "Bound on one page's OCR call (0 = none)")
	flat := flag.Bool("flat", false, "Do not walk subdirectories")
	overwrite := flag.Bool("overwrite", false, "Replace existing output files")
	force := flag.Bool("force", false, "Convert even when an existing OCR layer is detected")
	engineName := flag.String("engine", "tesseract", "OCR engine: tesseract or docai")
	ocrLangs := flag.String("ocr-langs", "", "Comma-separated Tesseract language hints")
	docaiConfig := flag.String("docai-config", "", "YAML config for the Document AI engine")
	debugAPI := flag.String("debug-api", "", "File receiving raw Document AI responses as JSON")
	hocrOut := flag.String("hocr-out", "", "Directory receiving hOCR sidecars")
	hocrIn := flag.String("hocr-in", "", "Directory with precomputed hOCR files")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	if *inputDir == "" || *outputDir == "" {
		fmt.Println("Error: -input and -output are required")
		flag.Usage()
		os.Exit(1)
	}

	cfg := batch.DefaultConfig()
	cfg.InputDir = *inputDir
	cfg.OutputDir = *outputDir
	cfg.Recursive = !*flat
	cfg.Overwrite = *overwrite
	cfg.Force = *force
	cfg.HOCROutDir = *hocrOut
	cfg.HOCRInDir = *hocrIn
	cfg.Synth.PageTimeout = *pageTimeout
	if *dpi > 0 {
		cfg.Synth.DPI = *dpi
	}
	if *quality > 0 {
		cfg.Synth.JPEGQuality = *quality
	}
	if *minConf >= 0 {
		cfg.Synth.MinConfidence = *minConf
	}
	if *lang != "" {
		cfg.Synth.Language = *lang
	}
	if *author != "" {
		cfg.Synth.Author = *author
	}
	if *subject != "" {
		cfg.Synth.Subject = *subject
	}
	if *keywords != "" {
		cfg.Synth.Keywords = *keywords
	}

	var engine ocr.Engine
	if *hocrIn == "" {
		var err error
		engine, err = buildEngine(*engineName, *ocrLangs, *docaiConfig, *debugAPI)
		if err != nil {
			logger.Error().Err(err).Msg("engine setup failed")
			os.Exit(1)
		}
	}

	pipeline := &batch.Pipeline{Engine: engine, Config: cfg, Logger: logger}
	summary, err := batch.Run(context.Background(), pipeline, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("batch run aborted")
		os.Exit(1)
	}

	logger.Info().
		Int("ok", summary.Count(batch.StatusOK)).
		Int("partial", summary.Count(batch.StatusPartial)).
		Int("skipped", summary.Count(batch.StatusSkipped)).
		Int("failed", summary.Count(batch.StatusFailed)).
		Dur("duration", summary.Duration).
		Msg("batch complete")
}

// buildEngine constructs the configured OCR engine.
func buildEngine(name, langs, docaiConfigPath, debugAPIPath string) (ocr.Engine, error) {
	switch name {
	case "tesseract":
		var languages []string
		if langs != "" {
			languages = strings.Split(langs, ",")
		}
		return tesseract.NewTesseractEngine(languages...), nil

	case "docai":
		if docaiConfigPath == "" {
			return nil, fmt.Errorf("-engine docai requires -docai-config")
		}
		cfg, err := loadDocAIConfig(docaiConfigPath)
		if err != nil {
			return nil, err
		}
		engine, err := ocr.NewDocAIEngine(cfg)
		if err != nil {
			return nil, err
		}
		if debugAPIPath != "" {
			f, err := os.Create(debugAPIPath)
			if err != nil {
				return nil, fmt.Errorf("create debug-api file: %w", err)
			}
			engine.DebugWriter = f
		}
		return engine, nil

	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

// loadDocAIConfig reads a YAML file with the Document AI processor settings.
func loadDocAIConfig(path string) (ocr.DocAIConfig, error) {
	var cfg ocr.DocAIConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}
