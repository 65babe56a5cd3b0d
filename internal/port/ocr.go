package port

import (
	"context"

	"billscan/internal/domain"
)

// AcquireInput carries the raw document into an acquisition attempt.
type AcquireInput struct {
	Bytes       []byte
	ContentType string
	Filename    string
}

// OCRAdapter is a single acquisition strategy. Attempt either produces a
// canonical OCR result or fails; the orchestrator treats any error (or
// timeout) as "no result" and advances to the next adapter.
type OCRAdapter interface {
	Name() string
	Attempt(ctx context.Context, input AcquireInput) (*domain.OCRResult, error)
}

// Acquirer is the orchestrated acquisition surface consumed by the
// extraction service. Implementations never return an error: on total
// failure they return an empty, well-formed, zero-confidence result.
type Acquirer interface {
	Acquire(ctx context.Context, input AcquireInput) *domain.OCRResult
}
