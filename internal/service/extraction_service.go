package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"billscan/internal/classify"
	"billscan/internal/domain"
	"billscan/internal/extract"
	"billscan/internal/port"
	"billscan/internal/reconcile"
)

// ExtractionResult bundles everything one pipeline run produces. The
// canonical OCR result itself is discarded at this boundary; only line items
// with provenance and the reconciliation report escape.
type ExtractionResult struct {
	ArtifactID     uuid.UUID             `json:"artifact_id"`
	CaseID         uuid.UUID             `json:"case_id"`
	Classification domain.Classification `json:"classification"`
	Engine         string                `json:"engine"`
	Items          []domain.LineItem     `json:"items"`
	Reconciliation reconcile.Report      `json:"reconciliation"`
}

// ExtractionService runs the full pipeline for one document: acquire,
// classify, extract, reconcile. It holds no per-document state, so
// independent invocations may run concurrently.
type ExtractionService struct {
	acquirer  port.Acquirer
	extractor *extract.Extractor
}

// NewExtractionService creates an ExtractionService.
func NewExtractionService(acquirer port.Acquirer, extractor *extract.Extractor) *ExtractionService {
	return &ExtractionService{acquirer: acquirer, extractor: extractor}
}

// Extract runs the pipeline. Every call is bound to exactly one
// (artifactID, caseID) pair — the binding is what keeps one document's items
// out of another case's result set — so nil IDs are refused up front. All
// other conditions degrade to data: an unreadable document yields an empty
// item list, never an error.
func (s *ExtractionService) Extract(ctx context.Context, artifactID, caseID uuid.UUID, input port.AcquireInput) (*ExtractionResult, error) {
	if artifactID == uuid.Nil || caseID == uuid.Nil {
		return nil, domain.ErrMissingIdentity
	}

	ocrResult := s.acquirer.Acquire(ctx, input)

	classification := classify.Classify(classify.Input{
		Bytes:       input.Bytes,
		Filename:    input.Filename,
		ContentType: input.ContentType,
		OCR:         ocrResult,
	})

	items := s.extractor.Extract(artifactID, caseID, ocrResult, classification.DocType)
	report := reconcile.Reconcile(items, ocrResult)

	if report.GrossMismatch {
		log.Printf("service.ExtractionService: artifact %s: extracted sum %d cents disagrees with declared total %d cents",
			artifactID, report.SumCents, report.DeclaredCents)
	}

	return &ExtractionResult{
		ArtifactID:     artifactID,
		CaseID:         caseID,
		Classification: classification,
		Engine:         ocrResult.Metadata.Engine,
		Items:          items,
		Reconciliation: report,
	}, nil
}
