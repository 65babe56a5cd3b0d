// Package ocr implements the hybrid acquisition layer: three interchangeable
// strategies producing one canonical token/table result, tried strictly in
// order under a first-success policy.
package ocr

import (
	"context"
	"fmt"
	"log"
	"time"

	"billscan/internal/domain"
	"billscan/internal/port"
)

// HybridAcquirer tries adapters in priority order and returns the first
// non-empty result. It implements port.Acquirer.
//
// Attempts are sequential, never raced: racing would double-bill the paid
// cloud engine. Each attempt runs under its own timeout so a hung adapter is
// treated like a failed one. Acquire never fails; when every adapter fails
// it returns an empty, well-formed, zero-confidence result so downstream
// stages degrade instead of crashing.
type HybridAcquirer struct {
	adapters []port.OCRAdapter
	timeout  time.Duration
}

// NewHybridAcquirer creates a HybridAcquirer over an ordered adapter list.
func NewHybridAcquirer(adapters []port.OCRAdapter, timeout time.Duration) *HybridAcquirer {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &HybridAcquirer{adapters: adapters, timeout: timeout}
}

// Acquire runs the adapter chain. The first adapter to produce a non-empty,
// non-erroring result wins; later adapters are not consulted.
func (h *HybridAcquirer) Acquire(ctx context.Context, input port.AcquireInput) *domain.OCRResult {
	for _, adapter := range h.adapters {
		result, err := h.attempt(ctx, adapter, input)
		if err != nil {
			log.Printf("ocr.HybridAcquirer: %s yielded no result: %v", adapter.Name(), err)
			continue
		}
		if result == nil || result.Empty() {
			log.Printf("ocr.HybridAcquirer: %s returned an empty result, advancing", adapter.Name())
			continue
		}
		log.Printf("ocr.HybridAcquirer: accepted %s result (%d tokens, %d tables, %d pages)",
			adapter.Name(), len(result.Tokens), len(result.Tables), result.Metadata.PageCount)
		return result
	}

	log.Printf("ocr.HybridAcquirer: all %d adapters failed, returning empty result", len(h.adapters))
	return domain.EmptyOCRResult()
}

// attempt wraps a single adapter call with a timeout and panic recovery so
// one misbehaving strategy can never abort the pipeline.
func (h *HybridAcquirer) attempt(ctx context.Context, adapter port.OCRAdapter, input port.AcquireInput) (result *domain.OCRResult, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewAdapterError(adapter.Name(), fmt.Errorf("panic: %v", r))
		}
	}()

	return adapter.Attempt(attemptCtx, input)
}
