package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"telehealth/internal/domain"
	"telehealth/internal/export"
	"telehealth/internal/port"
	"telehealth/internal/service"
)

// MockPatientService is a mock implementation of service.PatientService.
type MockPatientService struct {
	mock.Mock
}

func (m *MockPatientService) GetMine(ctx context.Context, userID uuid.UUID) (*domain.Patient, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientService) UpdateMine(ctx context.Context, userID uuid.UUID, input service.UpdatePatientInput) (*domain.Patient, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientService) GetByID(ctx context.Context, actor service.Actor, patientID uuid.UUID) (*domain.Patient, error) {
	args := m.Called(ctx, actor, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientService) List(ctx context.Context, actor service.Actor, offset, limit int) ([]domain.Patient, int, error) {
	args := m.Called(ctx, actor, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Patient), args.Int(1), args.Error(2)
}

// MockDashboardService is a mock implementation of service.DashboardService.
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Get(ctx context.Context, userID uuid.UUID) (*service.Dashboard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Dashboard), args.Error(1)
}

// MockDoctorService is a mock implementation of service.DoctorService.
type MockDoctorService struct {
	mock.Mock
}

func (m *MockDoctorService) List(ctx context.Context, filter port.DoctorFilter, offset, limit int) ([]domain.Doctor, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Doctor), args.Int(1), args.Error(2)
}

func (m *MockDoctorService) GetByID(ctx context.Context, doctorID uuid.UUID) (*domain.Doctor, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

func (m *MockDoctorService) GetMine(ctx context.Context, userID uuid.UUID) (*domain.Doctor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

func (m *MockDoctorService) Create(ctx context.Context, input service.CreateDoctorInput) (*domain.Doctor, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

func (m *MockDoctorService) UpdateMine(ctx context.Context, userID uuid.UUID, input service.UpdateDoctorInput) (*domain.Doctor, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

// MockAppointmentService is a mock implementation of service.AppointmentService.
type MockAppointmentService struct {
	mock.Mock
}

func (m *MockAppointmentService) Book(ctx context.Context, userID uuid.UUID, input service.BookAppointmentInput) (*domain.Appointment, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentService) ListMine(ctx context.Context, actor service.Actor, offset, limit int) ([]domain.Appointment, int, error) {
	args := m.Called(ctx, actor, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Appointment), args.Int(1), args.Error(2)
}

func (m *MockAppointmentService) Get(ctx context.Context, actor service.Actor, apptID uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, actor, apptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentService) UpdateStatus(ctx context.Context, actor service.Actor, apptID uuid.UUID, input service.UpdateAppointmentStatusInput) (*domain.Appointment, error) {
	args := m.Called(ctx, actor, apptID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentService) Reschedule(ctx context.Context, actor service.Actor, apptID uuid.UUID, input service.RescheduleInput) (*domain.Appointment, error) {
	args := m.Called(ctx, actor, apptID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

// MockPrescriptionService is a mock implementation of service.PrescriptionService.
type MockPrescriptionService struct {
	mock.Mock
}

func (m *MockPrescriptionService) Create(ctx context.Context, userID uuid.UUID, input service.CreatePrescriptionInput) (*domain.Prescription, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prescription), args.Error(1)
}

func (m *MockPrescriptionService) Get(ctx context.Context, actor service.Actor, rxID uuid.UUID) (*domain.Prescription, error) {
	args := m.Called(ctx, actor, rxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prescription), args.Error(1)
}

func (m *MockPrescriptionService) ListMine(ctx context.Context, actor service.Actor, offset, limit int) ([]domain.Prescription, int, error) {
	args := m.Called(ctx, actor, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Prescription), args.Int(1), args.Error(2)
}

func (m *MockPrescriptionService) ListForPatient(ctx context.Context, actor service.Actor, patientID uuid.UUID, offset, limit int) ([]domain.Prescription, int, error) {
	args := m.Called(ctx, actor, patientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Prescription), args.Int(1), args.Error(2)
}

func (m *MockPrescriptionService) FileURL(ctx context.Context, actor service.Actor, rxID uuid.UUID) (string, error) {
	args := m.Called(ctx, actor, rxID)
	return args.String(0), args.Error(1)
}

// MockChatService is a mock implementation of service.ChatService.
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Send(ctx context.Context, userID uuid.UUID, input service.SendMessageInput) (*service.ChatExchange, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChatExchange), args.Error(1)
}

func (m *MockChatService) History(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ChatMessage, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ChatMessage), args.Int(1), args.Error(2)
}

func (m *MockChatService) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockHealthReadingService is a mock implementation of service.HealthReadingService.
type MockHealthReadingService struct {
	mock.Mock
}

func (m *MockHealthReadingService) Record(ctx context.Context, userID uuid.UUID, input service.RecordReadingInput) (*domain.HealthReading, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthReading), args.Error(1)
}

func (m *MockHealthReadingService) RecordFromPhoto(ctx context.Context, userID uuid.UUID, input service.PhotoReadingInput) (*domain.HealthReading, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthReading), args.Error(1)
}

func (m *MockHealthReadingService) List(ctx context.Context, userID uuid.UUID, filter port.ReadingFilter, offset, limit int) ([]domain.HealthReading, int, error) {
	args := m.Called(ctx, userID, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.HealthReading), args.Int(1), args.Error(2)
}

func (m *MockHealthReadingService) ListForPatient(ctx context.Context, actor service.Actor, patientID uuid.UUID, filter port.ReadingFilter, offset, limit int) ([]domain.HealthReading, int, error) {
	args := m.Called(ctx, actor, patientID, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.HealthReading), args.Int(1), args.Error(2)
}

func (m *MockHealthReadingService) Delete(ctx context.Context, userID, readingID uuid.UUID) error {
	args := m.Called(ctx, userID, readingID)
	return args.Error(0)
}

func (m *MockHealthReadingService) Export(ctx context.Context, userID uuid.UUID, filter port.ReadingFilter, format export.Format) (*service.ExportFile, error) {
	args := m.Called(ctx, userID, filter, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportFile), args.Error(1)
}

// MockEmergencyService is a mock implementation of service.EmergencyService.
type MockEmergencyService struct {
	mock.Mock
}

func (m *MockEmergencyService) TriggerSOS(ctx context.Context, userID uuid.UUID, input service.TriggerSOSInput) (*domain.EmergencyAlert, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmergencyAlert), args.Error(1)
}

func (m *MockEmergencyService) ReportMotion(ctx context.Context, userID uuid.UUID, input service.MotionInput) (*service.MotionResult, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MotionResult), args.Error(1)
}

func (m *MockEmergencyService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.EmergencyAlert, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.EmergencyAlert), args.Int(1), args.Error(2)
}
