package pdfsynth

import (
	"fmt"

	"github.com/ualibraries/pdfua/pkg/ocr"
)

// ScaleMap carries the affine scale factors between raster pixel space and
// PDF point space for one page. The factors are always derived from the
// actual page and raster dimensions, never from the requested DPI, so output
// geometry is independent of the chosen resolution.
type ScaleMap struct {
	X float64 // points per pixel, horizontal
	Y float64
}

// NewScaleMap computes the pixel-to-point scale pair for a page. A raster
// with a zero dimension is a caller error; the mapping assumes the raster
// was produced from the page at 0° rotation with no skew.
func NewScaleMap(pageWPt, pageHPt float64, rasterWPx, rasterHPx int) (ScaleMap, error) {
	if rasterWPx <= 0 || rasterHPx <= 0 {
		return ScaleMap{}, fmt.Errorf("raster dimensions must be positive, got %dx%d", rasterWPx, rasterHPx)
	}
	return ScaleMap{
		X: pageWPt / float64(rasterWPx),
		Y: pageHPt / float64(rasterHPx),
	}, nil
}

// Rect maps a word box in raster pixels to a PDF rectangle in points,
// returned as (x1, y1, x2, y2) with the origin at the page's top-left.
func (m ScaleMap) Rect(b ocr.Box) (x1, y1, x2, y2 float64) {
	x1 = b.Left * m.X
	y1 = b.Top * m.Y
	x2 = (b.Left + b.Width) * m.X
	y2 = (b.Top + b.Height) * m.Y
	return x1, y1, x2, y2
}
