package domain

import (
	"github.com/google/uuid"
)

// BoundingBox locates a token or cell on its page, in pixel coordinates of
// the rendered page (origin top-left).
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Token is a single recognized word. Immutable once produced by an adapter.
type Token struct {
	Text       string       `json:"text"`
	Box        *BoundingBox `json:"bounding_box,omitempty"`
	Confidence float64      `json:"confidence"`
	Page       int          `json:"page"`
}

// Cell is one cell of a detected table.
type Cell struct {
	Text       string       `json:"text"`
	Box        *BoundingBox `json:"bounding_box,omitempty"`
	Confidence float64      `json:"confidence"`
}

// Table is a structural hint from the OCR engine. Tables are not guaranteed
// accurate; a document with no detected tables is valid.
type Table struct {
	Page int      `json:"page"`
	Rows [][]Cell `json:"rows"`
}

// OCRMetadata records which engine produced a result.
type OCRMetadata struct {
	Engine    string `json:"engine"`
	PageCount int    `json:"page_count"`
}

// OCRResult is the canonical output of the acquisition layer. It is produced
// once per document, owned by the pipeline run, and discarded after
// extraction.
type OCRResult struct {
	Tokens   []Token     `json:"tokens"`
	Tables   []Table     `json:"tables"`
	Metadata OCRMetadata `json:"metadata"`
}

// EmptyOCRResult returns a well-formed zero-confidence result, used when
// every acquisition adapter has failed so downstream stages degrade
// gracefully instead of crashing.
func EmptyOCRResult() *OCRResult {
	return &OCRResult{
		Tokens:   []Token{},
		Tables:   []Table{},
		Metadata: OCRMetadata{Engine: "none", PageCount: 0},
	}
}

// Empty reports whether the result carries no recognized text.
func (r *OCRResult) Empty() bool {
	for i := range r.Tokens {
		if r.Tokens[i].Text != "" {
			return false
		}
	}
	for i := range r.Tables {
		for _, row := range r.Tables[i].Rows {
			for _, cell := range row {
				if cell.Text != "" {
					return false
				}
			}
		}
	}
	return true
}

// Provenance binds an extracted item back to its source pixels. Page is
// always set (1-based); Box may be nil when the originating adapter could not
// supply positional data, e.g. the embedded-text path.
type Provenance struct {
	Page       int          `json:"page"`
	Box        *BoundingBox `json:"bounding_box,omitempty"`
	Confidence float64      `json:"confidence"`
}

// LineItem is the output unit of extraction. Exactly one of two shapes is
// possible: a structured item with a validated Code and CodeSystem, or an
// unstructured row with Note set and Code absent. Both never hold at once.
type LineItem struct {
	ArtifactID   uuid.UUID  `json:"artifact_id"`
	CaseID       uuid.UUID  `json:"case_id"`
	Code         string     `json:"code,omitempty"`
	CodeSystem   CodeSystem `json:"code_system,omitempty"`
	Description  string     `json:"description,omitempty"`
	Units        float64    `json:"units,omitempty"`
	ChargeCents  int64      `json:"charge_cents,omitempty"`
	AllowedCents int64      `json:"allowed_cents,omitempty"`
	Note         string     `json:"note,omitempty"`
	OCR          Provenance `json:"ocr"`
}

// Structured reports whether the item carries a validated code.
func (li *LineItem) Structured() bool {
	return li.Code != "" && li.Note == ""
}

// Classification is the document classifier's output. Confidence below the
// classifier's internal threshold still yields a best-guess label.
type Classification struct {
	DocType    DocType `json:"doc_type"`
	Confidence float64 `json:"confidence"`
}
