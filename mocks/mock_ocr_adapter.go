package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billscan/internal/domain"
	"billscan/internal/port"
)

// MockOCRAdapter is a mock implementation of port.OCRAdapter.
type MockOCRAdapter struct {
	mock.Mock
}

func (m *MockOCRAdapter) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockOCRAdapter) Attempt(ctx context.Context, input port.AcquireInput) (*domain.OCRResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OCRResult), args.Error(1)
}
