package ocr

import (
	"context"
	"fmt"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"billscan/internal/config"
	"billscan/internal/domain"
	"billscan/internal/port"
)

// processorClient is the slice of the Document AI client the adapter needs;
// tests substitute a fake.
type processorClient interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
}

// CloudOCRAdapter sends the document to a Google Document AI OCR processor.
// It is the second strategy in the chain: paid, accurate, and the only one
// that returns engine-detected tables for raster inputs.
type CloudOCRAdapter struct {
	client    processorClient
	processor string
}

// NewCloudOCRAdapter creates the Document AI adapter from processor
// settings.
func NewCloudOCRAdapter(ctx context.Context, cfg *config.DocAIConfig) (*CloudOCRAdapter, error) {
	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)),
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating documentai client: %w", err)
	}
	return &CloudOCRAdapter{
		client:    client,
		processor: fmt.Sprintf("projects/%s/locations/%s/processors/%s", cfg.ProjectID, cfg.Location, cfg.ProcessorID),
	}, nil
}

// newCloudOCRAdapterWithClient wires a pre-built client (for testing).
func newCloudOCRAdapterWithClient(client processorClient, processor string) *CloudOCRAdapter {
	return &CloudOCRAdapter{client: client, processor: processor}
}

func (a *CloudOCRAdapter) Name() string { return "documentai" }

func (a *CloudOCRAdapter) Attempt(ctx context.Context, input port.AcquireInput) (*domain.OCRResult, error) {
	if len(input.Bytes) == 0 {
		return nil, NewAdapterError(a.Name(), domain.ErrEmptyDocument)
	}

	req := &documentaipb.ProcessRequest{
		Name: a.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  input.Bytes,
				MimeType: input.ContentType,
			},
		},
	}
	resp, err := a.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, NewAdapterError(a.Name(), err)
	}

	doc := resp.GetDocument()
	if doc == nil {
		return nil, NewAdapterError(a.Name(), fmt.Errorf("empty process response"))
	}
	return canonicalFromDocument(doc), nil
}

// canonicalFromDocument flattens a Document AI response into the canonical
// token/table shape. Bounding boxes come from normalized vertices scaled to
// page pixel dimensions.
func canonicalFromDocument(doc *documentaipb.Document) *domain.OCRResult {
	text := doc.GetText()
	result := &domain.OCRResult{
		Tokens:   []domain.Token{},
		Tables:   []domain.Table{},
		Metadata: domain.OCRMetadata{Engine: "documentai", PageCount: len(doc.GetPages())},
	}

	for pi, page := range doc.GetPages() {
		pageNum := pi + 1
		if n := page.GetPageNumber(); n > 0 {
			pageNum = int(n)
		}
		dim := page.GetDimension()

		for _, tok := range page.GetTokens() {
			layout := tok.GetLayout()
			word := anchorText(text, layout.GetTextAnchor())
			if word == "" {
				continue
			}
			result.Tokens = append(result.Tokens, domain.Token{
				Text:       word,
				Box:        boxFromLayout(layout, dim),
				Confidence: float64(layout.GetConfidence()),
				Page:       pageNum,
			})
		}

		for _, table := range page.GetTables() {
			rows := make([][]domain.Cell, 0, len(table.GetHeaderRows())+len(table.GetBodyRows()))
			for _, tr := range table.GetHeaderRows() {
				rows = append(rows, cellsFromRow(tr, text, dim))
			}
			for _, tr := range table.GetBodyRows() {
				rows = append(rows, cellsFromRow(tr, text, dim))
			}
			if len(rows) > 0 {
				result.Tables = append(result.Tables, domain.Table{Page: pageNum, Rows: rows})
			}
		}
	}
	return result
}

func cellsFromRow(row *documentaipb.Document_Page_Table_TableRow, text string, dim *documentaipb.Document_Page_Dimension) []domain.Cell {
	cells := make([]domain.Cell, 0, len(row.GetCells()))
	for _, c := range row.GetCells() {
		layout := c.GetLayout()
		cells = append(cells, domain.Cell{
			Text:       anchorText(text, layout.GetTextAnchor()),
			Box:        boxFromLayout(layout, dim),
			Confidence: float64(layout.GetConfidence()),
		})
	}
	return cells
}

// anchorText resolves a text anchor's segments against the full document
// text.
func anchorText(text string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil {
		return ""
	}
	var out []byte
	for _, seg := range anchor.GetTextSegments() {
		start, end := seg.GetStartIndex(), seg.GetEndIndex()
		if start < 0 || end > int64(len(text)) || start >= end {
			continue
		}
		out = append(out, text[start:end]...)
	}
	return strings.TrimSpace(string(out))
}

func boxFromLayout(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) *domain.BoundingBox {
	poly := layout.GetBoundingPoly()
	if poly == nil {
		return nil
	}
	verts := poly.GetNormalizedVertices()
	if len(verts) == 0 {
		return nil
	}
	minX, minY := float64(verts[0].GetX()), float64(verts[0].GetY())
	maxX, maxY := minX, minY
	for _, v := range verts[1:] {
		x, y := float64(v.GetX()), float64(v.GetY())
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}
	w, h := 1.0, 1.0
	if dim != nil {
		w, h = float64(dim.GetWidth()), float64(dim.GetHeight())
	}
	return &domain.BoundingBox{
		X: minX * w,
		Y: minY * h,
		W: (maxX - minX) * w,
		H: (maxY - minY) * h,
	}
}
