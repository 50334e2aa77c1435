package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"telehealth/internal/extraction"
)

// MockExtractor is a mock implementation of extraction.Extractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, req extraction.Request) (*extraction.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extraction.Result), args.Error(1)
}
