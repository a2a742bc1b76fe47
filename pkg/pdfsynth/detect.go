package pdfsynth

import (
	"fmt"
	"regexp"
	"strings"
)

// LayerCheckResult reports what optional-content layers a PDF carries and
// whether one of them looks like a text layer this pipeline produced.
type LayerCheckResult struct {
	Layers       []string
	HasOCRLayer  bool
	OCRLayerName string
}

var ocgNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*\(([^)]+)\)`),
	regexp.MustCompile(`<</Type/OCG/Name\(([^)]+)\)`),
	regexp.MustCompile(`/Name\s*\(([^)]+)\)[\s\S]{1,50}/Type\s*/OCG`),
}

// DetectOCRLayers scans raw PDF data for optional-content group names and
// matches them against the layer naming scheme of drawTextLayer. Converting
// a file that already carries such a layer would duplicate its OCR text.
func DetectOCRLayers(pdfData []byte, layerName string) (LayerCheckResult, error) {
	if len(pdfData) == 0 {
		return LayerCheckResult{}, fmt.Errorf("empty PDF data")
	}

	content := string(pdfData)
	seen := make(map[string]bool)
	var result LayerCheckResult

	for _, re := range ocgNamePatterns {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			if len(match) < 2 {
				continue
			}
			name := unescapePDFString(match[1])
			// fpdf serializes layer names as UTF-16BE with a BOM.
			if decoded, err := decodeUTF16BE([]byte(name)); err == nil {
				name = decoded
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			result.Layers = append(result.Layers, name)
		}
	}

	pageLayer := regexp.MustCompile(fmt.Sprintf(`^%s\s*\(Page\s*\d+`, regexp.QuoteMeta(layerName)))
	for _, name := range result.Layers {
		if name == layerName || pageLayer.MatchString(name) {
			result.HasOCRLayer = true
			result.OCRLayerName = name
			break
		}
	}
	return result, nil
}

func unescapePDFString(s string) string {
	s = strings.ReplaceAll(s, `\(`, "(")
	s = strings.ReplaceAll(s, `\)`, ")")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// decodeUTF16BE decodes a BOM-prefixed UTF-16BE byte string. Input without
// the BOM is rejected; the caller keeps the raw string in that case.
func decodeUTF16BE(b []byte) (string, error) {
	if len(b) < 2 || b[0] != 0xFE || b[1] != 0xFF {
		return "", fmt.Errorf("no UTF-16BE BOM")
	}
	b = b[2:]
	var runes []rune
	for i := 0; i+1 < len(b); i += 2 {
		runes = append(runes, rune(uint16(b[i])<<8|uint16(b[i+1])))
	}
	return string(runes), nil
}
