package ocr

import (
	"context"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz"

	"billscan/internal/domain"
	"billscan/internal/port"
)

// columnGap splits a text-layer line into pseudo-columns on runs of two or
// more spaces, which is how vector text layers render tabular layouts.
var columnGap = regexp.MustCompile(`\s{2,}`)

// EmbeddedTextAdapter extracts the vector text layer from PDF inputs. It is
// the cheapest strategy and runs first: no OCR engine is involved, so
// confidence is 1.0 and tokens carry no bounding boxes (the text layer does
// not preserve raster positions in this path).
type EmbeddedTextAdapter struct{}

// NewEmbeddedTextAdapter creates the embedded-text detection adapter.
func NewEmbeddedTextAdapter() *EmbeddedTextAdapter {
	return &EmbeddedTextAdapter{}
}

func (a *EmbeddedTextAdapter) Name() string { return "embedded-text" }

// Attempt succeeds only when the document reports an extractable text layer
// and at least one non-empty block; image-only scans fall through to the
// OCR adapters.
func (a *EmbeddedTextAdapter) Attempt(_ context.Context, input port.AcquireInput) (*domain.OCRResult, error) {
	if len(input.Bytes) == 0 {
		return nil, NewAdapterError(a.Name(), domain.ErrEmptyDocument)
	}
	if input.ContentType != "application/pdf" {
		// Raster formats never carry a text layer.
		return nil, NewAdapterError(a.Name(), domain.ErrNoTextLayer)
	}

	doc, err := fitz.NewFromMemory(input.Bytes)
	if err != nil {
		return nil, NewAdapterError(a.Name(), err)
	}
	defer doc.Close()

	result := &domain.OCRResult{
		Tokens:   []domain.Token{},
		Tables:   []domain.Table{},
		Metadata: domain.OCRMetadata{Engine: "embedded-text", PageCount: doc.NumPage()},
	}

	hasText := false
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return nil, NewAdapterError(a.Name(), err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		hasText = true
		page := n + 1

		var rows [][]domain.Cell
		for _, line := range strings.Split(text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			for _, word := range strings.Fields(line) {
				result.Tokens = append(result.Tokens, domain.Token{
					Text:       word,
					Confidence: 1.0,
					Page:       page,
				})
			}
			if cells, ok := splitColumns(line); ok {
				rows = append(rows, cells)
			}
		}
		if len(rows) > 0 {
			result.Tables = append(result.Tables, domain.Table{Page: page, Rows: rows})
		}
	}

	if !hasText {
		return nil, NewAdapterError(a.Name(), domain.ErrNoTextLayer)
	}
	return result, nil
}

// splitColumns turns a wide-gap line into table cells. The hint stays
// permissive (any two-column line qualifies): the extractor applies its own
// charge-bearing checks, so over-detecting tables here is harmless.
func splitColumns(line string) ([]domain.Cell, bool) {
	parts := columnGap.Split(strings.TrimSpace(line), -1)
	if len(parts) < 2 {
		return nil, false
	}
	cells := make([]domain.Cell, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		cells = append(cells, domain.Cell{Text: p, Confidence: 1.0})
	}
	if len(cells) < 2 {
		return nil, false
	}
	return cells, true
}
