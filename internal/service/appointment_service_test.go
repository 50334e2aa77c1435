package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"telehealth/internal/domain"
	"telehealth/internal/service"
	"telehealth/mocks"
)

type apptFixture struct {
	svc         service.AppointmentService
	repo        *mocks.MockAppointmentRepo
	patientRepo *mocks.MockPatientRepo
	doctorRepo  *mocks.MockDoctorRepo
	patient     *domain.Patient
	doctor      *domain.Doctor
}

func newApptFixture() apptFixture {
	f := apptFixture{
		repo:        new(mocks.MockAppointmentRepo),
		patientRepo: new(mocks.MockPatientRepo),
		doctorRepo:  new(mocks.MockDoctorRepo),
		patient:     &domain.Patient{ID: uuid.New(), UserID: uuid.New()},
		doctor:      &domain.Doctor{ID: uuid.New(), UserID: uuid.New(), IsAvailable: true},
	}
	f.svc = service.NewAppointmentService(f.repo, f.patientRepo, f.doctorRepo)
	f.patientRepo.On("GetByUserID", mock.Anything, f.patient.UserID).Return(f.patient, nil).Maybe()
	f.doctorRepo.On("GetByUserID", mock.Anything, f.doctor.UserID).Return(f.doctor, nil).Maybe()
	f.doctorRepo.On("GetByID", mock.Anything, f.doctor.ID).Return(f.doctor, nil).Maybe()
	return f
}

func (f apptFixture) patientActor() service.Actor {
	return service.Actor{UserID: f.patient.UserID, Role: domain.RolePatient}
}

func (f apptFixture) doctorActor() service.Actor {
	return service.Actor{UserID: f.doctor.UserID, Role: domain.RoleDoctor}
}

func (f apptFixture) existing(status domain.AppointmentStatus) *domain.Appointment {
	appt := &domain.Appointment{
		ID:              uuid.New(),
		PatientID:       f.patient.ID,
		DoctorID:        f.doctor.ID,
		ScheduledAt:     time.Now().Add(72 * time.Hour).UTC(),
		DurationMinutes: 30,
		Status:          status,
	}
	f.repo.On("GetByID", mock.Anything, appt.ID).Return(appt, nil)
	return appt
}

func TestAppointmentService_Book_Success(t *testing.T) {
	f := newApptFixture()
	start := time.Now().Add(48 * time.Hour)

	f.repo.On("HasConflict", mock.Anything, f.doctor.ID, start.UTC(), 30, (*uuid.UUID)(nil)).Return(false, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Appointment")).Return(nil)

	appt, err := f.svc.Book(context.Background(), f.patient.UserID, service.BookAppointmentInput{
		DoctorID:    f.doctor.ID,
		ScheduledAt: start,
		Reason:      "  follow-up  ",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentScheduled, appt.Status)
	assert.Equal(t, 30, appt.DurationMinutes)
	assert.Equal(t, "follow-up", appt.Reason)
	assert.Equal(t, f.patient.ID, appt.PatientID)
}

func TestAppointmentService_Book_Rejections(t *testing.T) {
	t.Run("past time", func(t *testing.T) {
		f := newApptFixture()
		_, err := f.svc.Book(context.Background(), f.patient.UserID, service.BookAppointmentInput{
			DoctorID: f.doctor.ID, ScheduledAt: time.Now().Add(-time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrAppointmentInPast)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("slot taken", func(t *testing.T) {
		f := newApptFixture()
		f.repo.On("HasConflict", mock.Anything, f.doctor.ID, mock.Anything, 45, (*uuid.UUID)(nil)).Return(true, nil)
		_, err := f.svc.Book(context.Background(), f.patient.UserID, service.BookAppointmentInput{
			DoctorID: f.doctor.ID, ScheduledAt: time.Now().Add(24 * time.Hour), DurationMinutes: 45,
		})
		assert.ErrorIs(t, err, domain.ErrSlotTaken)
	})

	t.Run("overlapping booking lost the race", func(t *testing.T) {
		f := newApptFixture()
		f.repo.On("HasConflict", mock.Anything, f.doctor.ID, mock.Anything, 30, (*uuid.UUID)(nil)).Return(false, nil)
		f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Appointment")).Return(domain.ErrSlotTaken)
		_, err := f.svc.Book(context.Background(), f.patient.UserID, service.BookAppointmentInput{
			DoctorID: f.doctor.ID, ScheduledAt: time.Now().Add(24*time.Hour + 15*time.Minute),
		})
		assert.ErrorIs(t, err, domain.ErrSlotTaken)
	})

	t.Run("doctor unavailable", func(t *testing.T) {
		f := newApptFixture()
		f.doctor.IsAvailable = false
		_, err := f.svc.Book(context.Background(), f.patient.UserID, service.BookAppointmentInput{
			DoctorID: f.doctor.ID, ScheduledAt: time.Now().Add(24 * time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrDoctorUnavailable)
	})

	t.Run("no patient profile", func(t *testing.T) {
		f := newApptFixture()
		stranger := uuid.New()
		f.patientRepo.On("GetByUserID", mock.Anything, stranger).Return(nil, domain.ErrNotFound)
		_, err := f.svc.Book(context.Background(), stranger, service.BookAppointmentInput{
			DoctorID: f.doctor.ID, ScheduledAt: time.Now().Add(24 * time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrPatientProfileMissing)
	})
}

func TestAppointmentService_ListMine_ByRole(t *testing.T) {
	f := newApptFixture()
	f.repo.On("ListByPatient", mock.Anything, f.patient.ID, 0, 20).Return([]domain.Appointment{{}}, 1, nil)
	f.repo.On("ListByDoctor", mock.Anything, f.doctor.ID, 0, 20).Return([]domain.Appointment{{}, {}}, 2, nil)

	_, total, err := f.svc.ListMine(context.Background(), f.patientActor(), 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = f.svc.ListMine(context.Background(), f.doctorActor(), 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, _, err = f.svc.ListMine(context.Background(), service.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}, 0, 20)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAppointmentService_Get_HidesOthersAppointments(t *testing.T) {
	f := newApptFixture()
	appt := f.existing(domain.AppointmentScheduled)
	other := &domain.Doctor{ID: uuid.New(), UserID: uuid.New()}
	f.doctorRepo.On("GetByUserID", mock.Anything, other.UserID).Return(other, nil)

	_, err := f.svc.Get(context.Background(), service.Actor{UserID: other.UserID, Role: domain.RoleDoctor}, appt.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.svc.Get(context.Background(), service.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, got.ID)
}

func TestAppointmentService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.AppointmentStatus
		to      domain.AppointmentStatus
		byRole  domain.UserRole
		wantErr error
	}{
		{"doctor confirms", domain.AppointmentScheduled, domain.AppointmentConfirmed, domain.RoleDoctor, nil},
		{"doctor completes", domain.AppointmentConfirmed, domain.AppointmentCompleted, domain.RoleDoctor, nil},
		{"patient cancels", domain.AppointmentScheduled, domain.AppointmentCancelled, domain.RolePatient, nil},
		{"patient cannot confirm", domain.AppointmentScheduled, domain.AppointmentConfirmed, domain.RolePatient, domain.ErrForbidden},
		{"completed is terminal", domain.AppointmentCompleted, domain.AppointmentCancelled, domain.RoleDoctor, domain.ErrInvalidStatusTransition},
		{"cannot skip confirmation", domain.AppointmentScheduled, domain.AppointmentCompleted, domain.RoleDoctor, domain.ErrInvalidStatusTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newApptFixture()
			appt := f.existing(tt.from)
			f.repo.On("Update", mock.Anything, appt).Return(nil).Maybe()

			actor := f.doctorActor()
			if tt.byRole == domain.RolePatient {
				actor = f.patientActor()
			}

			got, err := f.svc.UpdateStatus(context.Background(), actor, appt.ID, service.UpdateAppointmentStatusInput{
				Status: tt.to,
				Notes:  ptr(" see in two weeks "),
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			assert.Equal(t, "see in two weeks", got.Notes)
		})
	}
}

func TestAppointmentService_Reschedule(t *testing.T) {
	f := newApptFixture()
	appt := f.existing(domain.AppointmentConfirmed)
	newStart := time.Now().Add(96 * time.Hour)

	f.repo.On("HasConflict", mock.Anything, f.doctor.ID, newStart.UTC(), 30, &appt.ID).Return(false, nil)
	f.repo.On("Update", mock.Anything, appt).Return(nil)

	got, err := f.svc.Reschedule(context.Background(), f.patientActor(), appt.ID, service.RescheduleInput{ScheduledAt: newStart})

	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentScheduled, got.Status)
	assert.True(t, got.ScheduledAt.Equal(newStart))
}

func TestAppointmentService_Reschedule_ClosedAppointment(t *testing.T) {
	f := newApptFixture()
	appt := f.existing(domain.AppointmentCancelled)

	_, err := f.svc.Reschedule(context.Background(), f.patientActor(), appt.ID, service.RescheduleInput{
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}
