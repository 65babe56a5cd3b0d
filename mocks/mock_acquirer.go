package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billscan/internal/domain"
	"billscan/internal/port"
)

// MockAcquirer is a mock implementation of port.Acquirer.
type MockAcquirer struct {
	mock.Mock
}

func (m *MockAcquirer) Acquire(ctx context.Context, input port.AcquireInput) *domain.OCRResult {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return domain.EmptyOCRResult()
	}
	return args.Get(0).(*domain.OCRResult)
}
