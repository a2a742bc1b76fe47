package uameta

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
	"time"
)

//go:embed templates/xmp.tmpl
var xmpTemplateFS embed.FS

// UAConformancePart is the PDF/UA part identifier written as pdfuaid:part.
const UAConformancePart = 1

// BuildXMP renders the XMP RDF/XML packet for one output document.
func BuildXMP(meta Meta, rec Record) ([]byte, error) {
	tmpl, err := template.New("xmp.tmpl").Funcs(template.FuncMap{
		"xml": escapeXML,
	}).ParseFS(xmpTemplateFS, "templates/xmp.tmpl")
	if err != nil {
		return nil, fmt.Errorf("error parsing xmp template: %w", err)
	}

	data := struct {
		Meta
		KeywordItems []string
		CreateDate   string
		DocumentID   string
		InstanceID   string
		Part         int
	}{
		Meta:         meta,
		KeywordItems: splitKeywords(meta.Keywords),
		CreateDate:   rec.CreatedAt.UTC().Format(time.RFC3339),
		DocumentID:   "uuid:" + rec.DocumentID.String(),
		InstanceID:   "uuid:" + rec.InstanceID.String(),
		Part:         UAConformancePart,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("error rendering xmp template: %w", err)
	}
	return buf.Bytes(), nil
}

// splitKeywords breaks a comma-separated keyword string into trimmed,
// nonempty list items for the rdf:Bag.
func splitKeywords(keywords string) []string {
	var items []string
	for _, k := range strings.Split(keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			items = append(items, k)
		}
	}
	return items
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
