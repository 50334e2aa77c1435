package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"telehealth/internal/port"
)

// MockCompletionProvider is a mock implementation of port.CompletionProvider.
type MockCompletionProvider struct {
	mock.Mock
}

func (m *MockCompletionProvider) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CompletionOutput), args.Error(1)
}

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}
