package pdfsynth

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"

	"github.com/ualibraries/pdfua/pkg/ocr"
)

// keepWord is the insertion predicate: nonempty trimmed text and confidence
// strictly above the threshold. A word at exactly the threshold is discarded.
func keepWord(w ocr.Word, minConf float64) bool {
	return strings.TrimSpace(w.Text) != "" && w.Confidence > minConf
}

// TitleFromFilename derives a document title from a source path: the file
// stem with underscores replaced by spaces, title-cased. The caser is built
// per call; cases.Caser carries state and is not safe for concurrent use.
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return cases.Title(language.AmericanEnglish).String(strings.ReplaceAll(stem, "_", " "))
}

// toLatin1 converts text to ISO-8859-1 to avoid PDF encoding issues with the
// core fonts, falling back to the raw text when conversion fails.
func toLatin1(s string) string {
	latin1, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return s
	}
	return latin1
}
