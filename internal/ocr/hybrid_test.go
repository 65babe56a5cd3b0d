package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billscan/internal/domain"
	"billscan/internal/port"
	"billscan/mocks"
)

func nonEmptyResult(engine string) *domain.OCRResult {
	return &domain.OCRResult{
		Tokens:   []domain.Token{{Text: "TOTAL", Confidence: 0.9, Page: 1}},
		Tables:   []domain.Table{},
		Metadata: domain.OCRMetadata{Engine: engine, PageCount: 1},
	}
}

func testInput() port.AcquireInput {
	return port.AcquireInput{
		Bytes:       []byte("%PDF-1.4"),
		ContentType: "application/pdf",
		Filename:    "statement.pdf",
	}
}

func TestHybridAcquirerFirstSuccessWins(t *testing.T) {
	first := new(mocks.MockOCRAdapter)
	second := new(mocks.MockOCRAdapter)

	first.On("Name").Return("embedded-text")
	first.On("Attempt", mock.Anything, mock.Anything).Return(nonEmptyResult("embedded-text"), nil)

	h := NewHybridAcquirer([]port.OCRAdapter{first, second}, 0)
	result := h.Acquire(context.Background(), testInput())

	assert.Equal(t, "embedded-text", result.Metadata.Engine)
	first.AssertExpectations(t)
	second.AssertNotCalled(t, "Attempt", mock.Anything, mock.Anything)
}

func TestHybridAcquirerAdvancesPastFailure(t *testing.T) {
	first := new(mocks.MockOCRAdapter)
	second := new(mocks.MockOCRAdapter)

	first.On("Name").Return("embedded-text")
	first.On("Attempt", mock.Anything, mock.Anything).Return(nil, errors.New("no text layer"))
	second.On("Name").Return("tesseract")
	second.On("Attempt", mock.Anything, mock.Anything).Return(nonEmptyResult("tesseract"), nil)

	h := NewHybridAcquirer([]port.OCRAdapter{first, second}, 0)
	result := h.Acquire(context.Background(), testInput())

	assert.Equal(t, "tesseract", result.Metadata.Engine)
}

func TestHybridAcquirerAdvancesPastEmptyResult(t *testing.T) {
	first := new(mocks.MockOCRAdapter)
	second := new(mocks.MockOCRAdapter)

	first.On("Name").Return("embedded-text")
	first.On("Attempt", mock.Anything, mock.Anything).Return(domain.EmptyOCRResult(), nil)
	second.On("Name").Return("documentai")
	second.On("Attempt", mock.Anything, mock.Anything).Return(nonEmptyResult("documentai"), nil)

	h := NewHybridAcquirer([]port.OCRAdapter{first, second}, 0)
	result := h.Acquire(context.Background(), testInput())

	assert.Equal(t, "documentai", result.Metadata.Engine)
}

func TestHybridAcquirerAllFail(t *testing.T) {
	first := new(mocks.MockOCRAdapter)
	second := new(mocks.MockOCRAdapter)

	first.On("Name").Return("embedded-text")
	first.On("Attempt", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	second.On("Name").Return("tesseract")
	second.On("Attempt", mock.Anything, mock.Anything).Return(nil, errors.New("also boom"))

	h := NewHybridAcquirer([]port.OCRAdapter{first, second}, 0)
	result := h.Acquire(context.Background(), testInput())

	require.NotNil(t, result)
	assert.True(t, result.Empty())
	assert.Equal(t, "none", result.Metadata.Engine)
}

type panickyAdapter struct{}

func (panickyAdapter) Name() string { return "panicky" }
func (panickyAdapter) Attempt(context.Context, port.AcquireInput) (*domain.OCRResult, error) {
	panic("adapter bug")
}

func TestHybridAcquirerRecoversPanic(t *testing.T) {
	second := new(mocks.MockOCRAdapter)
	second.On("Name").Return("tesseract")
	second.On("Attempt", mock.Anything, mock.Anything).Return(nonEmptyResult("tesseract"), nil)

	h := NewHybridAcquirer([]port.OCRAdapter{panickyAdapter{}, second}, 0)
	result := h.Acquire(context.Background(), testInput())

	assert.Equal(t, "tesseract", result.Metadata.Engine)
}

func TestAdapterErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewAdapterError("tesseract", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "tesseract")
}
