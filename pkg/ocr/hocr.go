package ocr

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/net/html"
)

//go:embed templates/hocr.tmpl
var hocrTemplateFS embed.FS

// HOCRPage carries one page worth of recognized words for sidecar export.
type HOCRPage struct {
	PageNumber int // 1-based
	Width      int // raster pixels
	Height     int
	Words      []Word
}

// GenerateHOCR renders pages of recognized words as an hOCR HTML document,
// the interchange format understood by most OCR tooling.
func GenerateHOCR(title string, pages []HOCRPage) ([]byte, error) {
	tmpl, err := template.New("hocr.tmpl").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
		"html": func(s string) string {
			var buf bytes.Buffer
			template.HTMLEscape(&buf, []byte(s))
			return buf.String()
		},
		"int": func(f float64) int { return int(f + 0.5) },
		"add": func(a, b float64) float64 { return a + b },
	}).ParseFS(hocrTemplateFS, "templates/hocr.tmpl")
	if err != nil {
		return nil, fmt.Errorf("error parsing hOCR template: %w", err)
	}

	data := struct {
		Title string
		Pages []HOCRPage
	}{Title: title, Pages: pages}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("error rendering hOCR template: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseHOCRWords extracts word records per page from hOCR data. Only the
// ocr_page and ocrx_word levels are consumed; the intermediate area,
// paragraph and line grouping carries nothing the synthesis pipeline needs.
func ParseHOCRWords(data []byte) ([][]Word, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR data: %w", err)
	}

	var pages [][]Word
	var walkPage func(n *html.Node, words *[]Word)
	walkPage = func(n *html.Node, words *[]Word) {
		if n.Type == html.ElementNode && hasClass(n, "ocrx_word") {
			if w, ok := wordFromNode(n); ok {
				*words = append(*words, w)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkPage(c, words)
		}
	}

	var findPages func(n *html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			var words []Word
			walkPage(n, &words)
			pages = append(pages, words)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)

	if len(pages) == 0 {
		return nil, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return pages, nil
}

// parseHOCRTitle breaks down an hOCR title attribute into its components.
// Example input: "bbox 100 200 300 400; x_wconf 95"
func parseHOCRTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(strings.TrimSpace(part))
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

func wordFromNode(n *html.Node) (Word, bool) {
	var w Word
	for _, attr := range n.Attr {
		if attr.Key != "title" {
			continue
		}
		props := parseHOCRTitle(attr.Val)
		bbox, ok := props["bbox"]
		if !ok || len(bbox) < 4 {
			return w, false
		}
		x1, _ := strconv.ParseFloat(bbox[0], 64)
		y1, _ := strconv.ParseFloat(bbox[1], 64)
		x2, _ := strconv.ParseFloat(bbox[2], 64)
		y2, _ := strconv.ParseFloat(bbox[3], 64)
		w.Box = Box{Left: x1, Top: y1, Width: x2 - x1, Height: y2 - y1}
		if conf, ok := props["x_wconf"]; ok && len(conf) > 0 {
			w.Confidence, _ = strconv.ParseFloat(conf[0], 64)
		}
	}
	w.Text = strings.TrimSpace(nodeText(n))
	return w, true
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" && strings.Contains(a.Val, class) {
			return true
		}
	}
	return false
}

// HOCREngine satisfies Engine from a precomputed multi-page hOCR document,
// allowing conversion runs to reuse OCR output produced elsewhere.
type HOCREngine struct {
	pages [][]Word
}

// NewHOCREngine parses raw hOCR data into a page-indexed engine.
func NewHOCREngine(data []byte) (*HOCREngine, error) {
	pages, err := ParseHOCRWords(data)
	if err != nil {
		return nil, err
	}
	return &HOCREngine{pages: pages}, nil
}

func (e *HOCREngine) Name() string { return "hocr" }

// NumPages reports how many pages the parsed hOCR document contains.
func (e *HOCREngine) NumPages() int { return len(e.pages) }

// Recognize returns the precomputed words for the page named by in.PageIndex.
func (e *HOCREngine) Recognize(ctx context.Context, in Input) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.PageIndex < 0 || in.PageIndex >= len(e.pages) {
		return nil, fmt.Errorf("hOCR data has %d pages, no page index %d", len(e.pages), in.PageIndex)
	}
	return e.pages[in.PageIndex], nil
}
