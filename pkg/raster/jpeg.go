package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
)

// JPEG quality bounds accepted by EncodeJPEG.
const (
	MinJPEGQuality = 1
	MaxJPEGQuality = 95
)

// EncodeJPEG re-encodes a page bitmap as lossy JPEG at the given quality.
// Images carrying an alpha channel or a palette are flattened onto a white
// background first; a JPEG page background cannot carry alpha. The output is
// deterministic for identical input and quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < MinJPEGQuality || quality > MaxJPEGQuality {
		return nil, fmt.Errorf("jpeg quality %d outside valid range %d-%d", quality, MinJPEGQuality, MaxJPEGQuality)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flattenToRGB(img), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// flattenToRGB returns an opaque truth-color version of img.
func flattenToRGB(img image.Image) image.Image {
	if opaque, ok := img.(interface{ Opaque() bool }); ok {
		if _, paletted := img.(*image.Paletted); opaque.Opaque() && !paletted {
			return img
		}
	}
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)
	return flat
}
