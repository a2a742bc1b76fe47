package pdfsynth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ualibraries/pdfua/pkg/ocr"
)

func TestDetectOCRLayersSyntheticData(t *testing.T) {
	data := []byte(`%PDF-1.4
1 0 obj <</Type /OCG /Name (OCR Text \(Page 1\))>> endobj
2 0 obj <</Type /OCG /Name (Watermark)>> endobj
%%EOF`)

	result, err := DetectOCRLayers(data, "OCR Text")
	require.NoError(t, err)
	assert.True(t, result.HasOCRLayer)
	assert.NotEmpty(t, result.Layers)
}

// utf16Name encodes a layer name the way fpdf serializes it: UTF-16BE with a
// BOM, parens and backslashes escaped.
func utf16Name(s string) string {
	raw := []byte{0xFE, 0xFF}
	for _, r := range s {
		raw = append(raw, byte(r>>8), byte(r))
	}
	var esc []byte
	for _, c := range raw {
		if c == '(' || c == ')' || c == '\\' {
			esc = append(esc, '\\')
		}
		esc = append(esc, c)
	}
	return string(esc)
}

func TestDetectOCRLayersUTF16Names(t *testing.T) {
	data := []byte("%PDF-1.4\n1 0 obj <</Type /OCG /Name (" +
		utf16Name("OCR Text (Page 1)") + ")>> endobj\n%%EOF")

	result, err := DetectOCRLayers(data, "OCR Text")
	require.NoError(t, err)
	assert.True(t, result.HasOCRLayer, "layers found: %v", result.Layers)
}

func TestDetectOCRLayersNoLayer(t *testing.T) {
	result, err := DetectOCRLayers([]byte("%PDF-1.4\nplain document\n%%EOF"), "OCR Text")
	require.NoError(t, err)
	assert.False(t, result.HasOCRLayer)

	_, err = DetectOCRLayers(nil, "OCR Text")
	assert.Error(t, err)
}

// The detector must recognize this pipeline's own output, which is what the
// skip-unless-forced guard relies on.
func TestDetectOCRLayersOnOwnOutput(t *testing.T) {
	src := &stubSource{pages: []stubPage{{612, 792, 100, 140}}}
	engine := &stubEngine{words: map[int][]ocr.Word{0: {word("hello", 90)}}}

	res, err := Assemble(context.Background(), src, engine, "own_output.pdf", DefaultConfig(), testLogger())
	require.NoError(t, err)

	result, err := DetectOCRLayers(res.PDF, DefaultConfig().LayerName)
	require.NoError(t, err)
	assert.True(t, result.HasOCRLayer, "layers found: %v", result.Layers)
}
