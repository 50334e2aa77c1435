package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

// MockAppointmentRepo is a mock implementation of port.AppointmentRepository.
type MockAppointmentRepo struct {
	mock.Mock
}

func (m *MockAppointmentRepo) Create(ctx context.Context, appt *domain.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *MockAppointmentRepo) GetByID(ctx context.Context, apptID uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, apptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.Appointment, int, error) {
	args := m.Called(ctx, patientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Appointment), args.Int(1), args.Error(2)
}

func (m *MockAppointmentRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, offset, limit int) ([]domain.Appointment, int, error) {
	args := m.Called(ctx, doctorID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Appointment), args.Int(1), args.Error(2)
}

func (m *MockAppointmentRepo) ListUpcomingByPatient(ctx context.Context, patientID uuid.UUID, from time.Time, limit int) ([]domain.Appointment, error) {
	args := m.Called(ctx, patientID, from, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepo) HasConflict(ctx context.Context, doctorID uuid.UUID, start time.Time, durationMinutes int, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, doctorID, start, durationMinutes, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAppointmentRepo) Update(ctx context.Context, appt *domain.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

// MockPrescriptionRepo is a mock implementation of port.PrescriptionRepository.
type MockPrescriptionRepo struct {
	mock.Mock
}

func (m *MockPrescriptionRepo) Create(ctx context.Context, rx *domain.Prescription) error {
	args := m.Called(ctx, rx)
	return args.Error(0)
}

func (m *MockPrescriptionRepo) GetByID(ctx context.Context, rxID uuid.UUID) (*domain.Prescription, error) {
	args := m.Called(ctx, rxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.Prescription, int, error) {
	args := m.Called(ctx, patientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Prescription), args.Int(1), args.Error(2)
}

func (m *MockPrescriptionRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, offset, limit int) ([]domain.Prescription, int, error) {
	args := m.Called(ctx, doctorID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Prescription), args.Int(1), args.Error(2)
}

// MockHealthReadingRepo is a mock implementation of port.HealthReadingRepository.
type MockHealthReadingRepo struct {
	mock.Mock
}

func (m *MockHealthReadingRepo) Create(ctx context.Context, reading *domain.HealthReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockHealthReadingRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, filter port.ReadingFilter, offset, limit int) ([]domain.HealthReading, int, error) {
	args := m.Called(ctx, patientID, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.HealthReading), args.Int(1), args.Error(2)
}

func (m *MockHealthReadingRepo) ListAllByPatient(ctx context.Context, patientID uuid.UUID, filter port.ReadingFilter) ([]domain.HealthReading, error) {
	args := m.Called(ctx, patientID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HealthReading), args.Error(1)
}

func (m *MockHealthReadingRepo) Delete(ctx context.Context, patientID, readingID uuid.UUID) error {
	args := m.Called(ctx, patientID, readingID)
	return args.Error(0)
}

// MockChatMessageRepo is a mock implementation of port.ChatMessageRepository.
type MockChatMessageRepo struct {
	mock.Mock
}

func (m *MockChatMessageRepo) Create(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatMessageRepo) ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, patientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}

func (m *MockChatMessageRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.ChatMessage, int, error) {
	args := m.Called(ctx, patientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ChatMessage), args.Int(1), args.Error(2)
}

func (m *MockChatMessageRepo) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	args := m.Called(ctx, patientID)
	return args.Error(0)
}

// MockEmergencyAlertRepo is a mock implementation of port.EmergencyAlertRepository.
type MockEmergencyAlertRepo struct {
	mock.Mock
}

func (m *MockEmergencyAlertRepo) Create(ctx context.Context, alert *domain.EmergencyAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockEmergencyAlertRepo) UpdateStatus(ctx context.Context, alertID uuid.UUID, status domain.AlertStatus, notifyErr string) error {
	args := m.Called(ctx, alertID, status, notifyErr)
	return args.Error(0)
}

func (m *MockEmergencyAlertRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.EmergencyAlert, int, error) {
	args := m.Called(ctx, patientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.EmergencyAlert), args.Int(1), args.Error(2)
}
