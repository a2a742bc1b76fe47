// Package uameta injects the accessibility metadata subset of PDF/UA into a
// serialized PDF: the MarkInfo tagged-document marker, the document language,
// the DisplayDocTitle viewer preference, and an XMP RDF/XML packet carrying
// Dublin Core fields, timestamps, unique identifiers and the UA conformance
// part. It operates on the low-level object model (pdfcpu) and performs a
// full rewrite, which yields a cleaner byte layout for strict validators.
//
// Structural tagging (reading order, tag tree, alt text) is out of scope;
// only the metadata and declaration subset of UA conformance is produced.
package uameta

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Record carries the per-artifact accessibility identifiers. A fresh Record
// is generated for every output document and never reused across files, so
// the identifiers are unique per artifact rather than per content.
type Record struct {
	Tagged     bool
	DocumentID uuid.UUID
	InstanceID uuid.UUID
	CreatedAt  time.Time
}

// NewRecord generates a fresh accessibility record with new identifiers.
func NewRecord() Record {
	return Record{
		Tagged:     true,
		DocumentID: uuid.New(),
		InstanceID: uuid.New(),
		CreatedAt:  time.Now().UTC(),
	}
}

// Meta is the document metadata embedded in the XMP packet.
type Meta struct {
	Title       string
	Author      string
	Subject     string
	Keywords    string // comma-separated
	Language    string
	Producer    string
	CreatorTool string
}

// Inject reopens a serialized PDF, sets the tagged-document marker, language
// and viewer preference on the catalog, attaches the XMP metadata stream and
// rewrites the document with garbage collection and stream deflation.
// Encryption is never applied; accessibility tooling must be able to read
// the content without a password.
//
// Running Inject on its own output replaces the previous MarkInfo and
// Metadata entries, so exactly one of each remains.
func Inject(pdfData []byte, meta Meta, rec Record) ([]byte, error) {
	conf := model.NewDefaultConfiguration()

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdfData), conf)
	if err != nil {
		return nil, fmt.Errorf("reopen pdf: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("resolve catalog: %w", err)
	}

	rootDict["MarkInfo"] = types.Dict(map[string]types.Object{
		"Marked": types.Boolean(rec.Tagged),
	})
	if meta.Language != "" {
		rootDict["Lang"] = types.StringLiteral(meta.Language)
	}
	rootDict["ViewerPreferences"] = types.Dict(map[string]types.Object{
		"DisplayDocTitle": types.Boolean(true),
	})

	packet, err := BuildXMP(meta, rec)
	if err != nil {
		return nil, fmt.Errorf("build xmp packet: %w", err)
	}

	// The metadata stream stays unfiltered so validators and indexers can
	// locate the packet by scanning. StreamLength must be set; the writer
	// dereferences it.
	packetLen := int64(len(packet))
	sd := types.StreamDict{
		Dict: types.Dict(map[string]types.Object{
			"Type":    types.Name("Metadata"),
			"Subtype": types.Name("XML"),
			"Length":  types.Integer(len(packet)),
		}),
		StreamLength: &packetLen,
		Content:      packet,
		Raw:          packet,
	}
	ir, err := ctx.IndRefForNewObject(sd)
	if err != nil {
		return nil, fmt.Errorf("attach metadata stream: %w", err)
	}
	rootDict["Metadata"] = *ir

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("rewrite pdf: %w", err)
	}
	return buf.Bytes(), nil
}
