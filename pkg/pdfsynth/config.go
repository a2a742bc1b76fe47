package pdfsynth

import (
	"fmt"
	"time"

	"github.com/ualibraries/pdfua/pkg/raster"
)

// Config holds the knobs for one document conversion. All values are
// explicit call-time configuration; there is no process-wide state.
type Config struct {
	DPI           int           // rasterization resolution
	JPEGQuality   int           // background compression quality, 1-95
	MinConfidence float64       // words at or below this confidence are discarded
	Language      string        // document language tag
	Author        string        // metadata defaults
	Subject       string
	Keywords      string        // comma-separated
	CreatorTool   string
	LayerName     string        // base name of the OCR text layer
	PageTimeout   time.Duration // bound on one page's OCR call, 0 = none
	Font          FontConfig
}

// FontConfig contains font settings for the invisible OCR text.
type FontConfig struct {
	Name        string  // core font name (e.g. "Helvetica")
	Style       string  // "", "B", "I", "BI"
	Size        float64 // base font size before per-word width fitting
	AscentRatio float64 // vertical positioning ratio
}

// DefaultFont is Helvetica at the base size the original pipeline used.
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        8,
	AscentRatio: 0.718,
}

// DefaultConfig returns the conversion defaults: 150 DPI, JPEG quality 80,
// confidence threshold 50 (strict), language en-US. The threshold and font
// size defaults are behavior-preserving policy values, not recommendations.
func DefaultConfig() Config {
	return Config{
		DPI:           150,
		JPEGQuality:   80,
		MinConfidence: 50,
		Language:      "en-US",
		Author:        "University of Arizona Libraries",
		Subject:       "Lymphology Journal Article",
		Keywords:      "OCR, accessibility, PDF/UA, Lymphology",
		CreatorTool:   "UA Libraries OCR and Accessibility Pipeline",
		LayerName:     "OCR Text",
		Font:          DefaultFont,
	}
}

// Validate checks all ranges before a conversion starts.
func (c Config) Validate() error {
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.JPEGQuality < raster.MinJPEGQuality || c.JPEGQuality > raster.MaxJPEGQuality {
		return fmt.Errorf("jpeg quality %d outside valid range %d-%d",
			c.JPEGQuality, raster.MinJPEGQuality, raster.MaxJPEGQuality)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return fmt.Errorf("confidence threshold %.1f outside valid range 0-100", c.MinConfidence)
	}
	if c.Language == "" {
		return fmt.Errorf("language tag must not be empty")
	}
	if c.Font.Name == "" || c.Font.Size <= 0 {
		return fmt.Errorf("font config requires a name and positive size")
	}
	return nil
}
