package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

const defaultAppointmentMinutes = 30

// BookAppointmentInput is the DTO for a patient booking a consultation.
type BookAppointmentInput struct {
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=5,max=240"`
	Reason          string    `json:"reason"`
}

// UpdateAppointmentStatusInput is the DTO for moving an appointment through its lifecycle.
type UpdateAppointmentStatusInput struct {
	Status domain.AppointmentStatus `json:"status" binding:"required"`
	Notes  *string                  `json:"notes"`
}

// RescheduleInput is the DTO for moving an open appointment to a new time.
type RescheduleInput struct {
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=5,max=240"`
}

// AppointmentService defines the appointment booking contract.
type AppointmentService interface {
	Book(ctx context.Context, userID uuid.UUID, input BookAppointmentInput) (*domain.Appointment, error)
	ListMine(ctx context.Context, actor Actor, offset, limit int) ([]domain.Appointment, int, error)
	Get(ctx context.Context, actor Actor, apptID uuid.UUID) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, actor Actor, apptID uuid.UUID, input UpdateAppointmentStatusInput) (*domain.Appointment, error)
	Reschedule(ctx context.Context, actor Actor, apptID uuid.UUID, input RescheduleInput) (*domain.Appointment, error)
}

type appointmentService struct {
	repo        port.AppointmentRepository
	patientRepo port.PatientRepository
	doctorRepo  port.DoctorRepository
	now         func() time.Time
}

// NewAppointmentService creates a new AppointmentService implementation.
func NewAppointmentService(
	repo port.AppointmentRepository,
	patientRepo port.PatientRepository,
	doctorRepo port.DoctorRepository,
) AppointmentService {
	return &appointmentService{
		repo:        repo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		now:         time.Now,
	}
}

func (s *appointmentService) Book(ctx context.Context, userID uuid.UUID, input BookAppointmentInput) (*domain.Appointment, error) {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, err
	}

	doctor, err := s.doctorRepo.GetByID(ctx, input.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsAvailable {
		return nil, domain.ErrDoctorUnavailable
	}

	duration := input.DurationMinutes
	if duration <= 0 {
		duration = defaultAppointmentMinutes
	}
	start := input.ScheduledAt.UTC()
	if err := s.checkSlot(ctx, doctor.ID, start, duration, nil); err != nil {
		return nil, err
	}

	appt := &domain.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		ScheduledAt:     start,
		DurationMinutes: duration,
		Reason:          strings.TrimSpace(input.Reason),
		Status:          domain.AppointmentScheduled,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// checkSlot rejects past start times and overlaps with the doctor's open appointments.
func (s *appointmentService) checkSlot(ctx context.Context, doctorID uuid.UUID, start time.Time, duration int, exclude *uuid.UUID) error {
	if !start.After(s.now()) {
		return domain.ErrAppointmentInPast
	}
	conflict, err := s.repo.HasConflict(ctx, doctorID, start, duration, exclude)
	if err != nil {
		return fmt.Errorf("appointment.checkSlot: %w", err)
	}
	if conflict {
		return domain.ErrSlotTaken
	}
	return nil
}

func (s *appointmentService) ListMine(ctx context.Context, actor Actor, offset, limit int) ([]domain.Appointment, int, error) {
	switch actor.Role {
	case domain.RolePatient:
		p, err := patientFor(ctx, s.patientRepo, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		return s.repo.ListByPatient(ctx, p.ID, offset, limit)
	case domain.RoleDoctor:
		d, err := doctorFor(ctx, s.doctorRepo, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		return s.repo.ListByDoctor(ctx, d.ID, offset, limit)
	default:
		return nil, 0, domain.ErrForbidden
	}
}

func (s *appointmentService) Get(ctx context.Context, actor Actor, apptID uuid.UUID) (*domain.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// authorize allows admins, the booking patient, and the assigned doctor.
// Others get ErrNotFound so appointment ids are not probeable.
func (s *appointmentService) authorize(ctx context.Context, actor Actor, appt *domain.Appointment) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RolePatient:
		p, err := patientFor(ctx, s.patientRepo, actor.UserID)
		if err != nil {
			return err
		}
		if p.ID == appt.PatientID {
			return nil
		}
	case domain.RoleDoctor:
		d, err := doctorFor(ctx, s.doctorRepo, actor.UserID)
		if err != nil {
			return err
		}
		if d.ID == appt.DoctorID {
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *appointmentService) UpdateStatus(ctx context.Context, actor Actor, apptID uuid.UUID, input UpdateAppointmentStatusInput) (*domain.Appointment, error) {
	appt, err := s.Get(ctx, actor, apptID)
	if err != nil {
		return nil, err
	}
	if !appt.Status.CanTransitionTo(input.Status) {
		return nil, domain.ErrInvalidStatusTransition
	}
	// Patients may only cancel; confirming and completing belong to the doctor.
	if actor.Role == domain.RolePatient && input.Status != domain.AppointmentCancelled {
		return nil, domain.ErrForbidden
	}

	appt.Status = input.Status
	if input.Notes != nil {
		appt.Notes = strings.TrimSpace(*input.Notes)
	}
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *appointmentService) Reschedule(ctx context.Context, actor Actor, apptID uuid.UUID, input RescheduleInput) (*domain.Appointment, error) {
	appt, err := s.Get(ctx, actor, apptID)
	if err != nil {
		return nil, err
	}
	if !appt.Status.IsOpen() {
		return nil, domain.ErrInvalidStatusTransition
	}

	duration := input.DurationMinutes
	if duration <= 0 {
		duration = appt.DurationMinutes
	}
	start := input.ScheduledAt.UTC()
	if err := s.checkSlot(ctx, appt.DoctorID, start, duration, &appt.ID); err != nil {
		return nil, err
	}

	appt.ScheduledAt = start
	appt.DurationMinutes = duration
	// A moved appointment needs the doctor to confirm again.
	appt.Status = domain.AppointmentScheduled
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}
