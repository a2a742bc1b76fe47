package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/encoding/protojson"
)

// DocAIConfig holds the Google Document AI processor coordinates.
type DocAIConfig struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// Validate checks that all processor coordinates are present.
func (c DocAIConfig) Validate() error {
	if c.ProjectID == "" || c.Location == "" || c.ProcessorID == "" {
		return fmt.Errorf("docai config requires project_id, location and processor_id")
	}
	return nil
}

// DocAIEngine implements Engine using Google Document AI. Authentication
// uses the GOOGLE_APPLICATION_CREDENTIALS environment variable.
type DocAIEngine struct {
	cfg DocAIConfig

	// DebugWriter, when set, receives the raw Document proto of every
	// response as protojson.
	DebugWriter io.Writer
}

// NewDocAIEngine constructs a Document AI backed OCR engine.
func NewDocAIEngine(cfg DocAIConfig) (*DocAIEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &DocAIEngine{cfg: cfg}, nil
}

func (e *DocAIEngine) Name() string { return "docai" }

// Recognize sends the page image to the configured processor and converts
// the token layout back into pixel-space words.
func (e *DocAIEngine) Recognize(ctx context.Context, in Input) ([]Word, error) {
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", e.cfg.Location)

	client, err := documentai.NewDocumentProcessorClient(
		ctx,
		option.WithEndpoint(endpoint),
		option.WithCredentialsFile(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf(
		"projects/%s/locations/%s/processors/%s",
		e.cfg.ProjectID, e.cfg.Location, e.cfg.ProcessorID,
	)

	req := &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  in.PNG,
				MimeType: "image/png",
			},
		},
		SkipHumanReview: true,
	}

	resp, err := client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	doc := resp.Document

	if e.DebugWriter != nil {
		if raw, err := protojson.Marshal(doc); err == nil {
			fmt.Fprintln(e.DebugWriter, string(raw))
		}
	}

	if len(doc.Pages) == 0 {
		return nil, nil
	}
	return wordsFromPage(doc.Pages[0], doc.Text), nil
}

// wordsFromPage flattens a Document AI page into word records, scaling the
// normalized vertices (0-1) to actual pixel dimensions.
func wordsFromPage(page *documentaipb.Document_Page, fullText string) []Word {
	words := make([]Word, 0, len(page.Tokens))
	for _, token := range page.Tokens {
		text := strings.TrimSpace(textFromLayout(token.Layout, fullText))
		text = strings.ReplaceAll(text, "\n", " ")
		text = strings.ReplaceAll(text, "\r", "")

		box, ok := boxFromLayout(token.Layout, page.Dimension)
		if !ok {
			continue
		}

		var conf float64
		if token.Layout != nil {
			conf = float64(token.Layout.Confidence * 100)
		}
		words = append(words, Word{Text: text, Confidence: conf, Box: box})
	}
	return words
}

// textFromLayout slices the document text referenced by a layout's first
// text anchor segment.
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil || len(layout.TextAnchor.TextSegments) == 0 {
		return ""
	}
	seg := layout.TextAnchor.TextSegments[0]
	start, end := seg.StartIndex, seg.EndIndex
	if start < 0 || end > int64(len(fullText)) || start > end {
		return ""
	}
	return fullText[start:end]
}

// boxFromLayout converts a layout's normalized bounding poly to a pixel box.
func boxFromLayout(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) (Box, bool) {
	if layout == nil || layout.BoundingPoly == nil || dim == nil || len(layout.BoundingPoly.NormalizedVertices) < 4 {
		return Box{}, false
	}
	v := layout.BoundingPoly.NormalizedVertices
	minX := float64(v[0].X) * float64(dim.Width)
	minY := float64(v[0].Y) * float64(dim.Height)
	maxX := float64(v[2].X) * float64(dim.Width)
	maxY := float64(v[2].Y) * float64(dim.Height)
	return Box{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}, true
}
