package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

// MockPatientRepo is a mock implementation of port.PatientRepository.
type MockPatientRepo struct {
	mock.Mock
}

func (m *MockPatientRepo) Create(ctx context.Context, patient *domain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepo) GetByID(ctx context.Context, patientID uuid.UUID) (*domain.Patient, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Patient, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientRepo) List(ctx context.Context, offset, limit int) ([]domain.Patient, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Patient), args.Int(1), args.Error(2)
}

func (m *MockPatientRepo) Update(ctx context.Context, patient *domain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

// MockDoctorRepo is a mock implementation of port.DoctorRepository.
type MockDoctorRepo struct {
	mock.Mock
}

func (m *MockDoctorRepo) Create(ctx context.Context, doctor *domain.Doctor) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

func (m *MockDoctorRepo) GetByID(ctx context.Context, doctorID uuid.UUID) (*domain.Doctor, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

func (m *MockDoctorRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Doctor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

func (m *MockDoctorRepo) List(ctx context.Context, filter port.DoctorFilter, offset, limit int) ([]domain.Doctor, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Doctor), args.Int(1), args.Error(2)
}

func (m *MockDoctorRepo) Update(ctx context.Context, doctor *domain.Doctor) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}
