package batch

import (
	"fmt"

	"github.com/ualibraries/pdfua/pkg/pdfsynth"
)

// Config holds the batch driver options.
type Config struct {
	InputDir  string // root directory scanned for *.pdf (case-insensitive)
	OutputDir string // mirror tree created on demand
	Recursive bool   // walk subdirectories of InputDir
	Overwrite bool   // replace existing output files
	Force     bool   // convert even when an existing OCR layer is detected

	// HOCROutDir, when set, receives one hOCR sidecar per converted file.
	HOCROutDir string
	// HOCRInDir, when set, supplies precomputed <stem>.hocr files that
	// replace the OCR engine for matching inputs.
	HOCRInDir string

	Synth pdfsynth.Config
}

// DefaultConfig returns a batch config with conversion defaults and
// recursive directory walking enabled.
func DefaultConfig() Config {
	return Config{
		Recursive: true,
		Synth:     pdfsynth.DefaultConfig(),
	}
}

// Validate checks the directory contract and conversion ranges.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if err := c.Synth.Validate(); err != nil {
		return err
	}
	return nil
}
