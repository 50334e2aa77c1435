package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"telehealth/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmergencyAlert(ctx context.Context, notice port.EmergencyNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}
