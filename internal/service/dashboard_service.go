package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

const dashboardItems = 5

// Dashboard is the patient home screen.
type Dashboard struct {
	Patient              *domain.Patient        `json:"patient"`
	UpcomingAppointments []domain.Appointment   `json:"upcoming_appointments"`
	RecentPrescriptions  []domain.Prescription  `json:"recent_prescriptions"`
	LatestReadings       []domain.HealthReading `json:"latest_readings"`
}

// DashboardService defines the patient dashboard contract.
type DashboardService interface {
	Get(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
}

type dashboardService struct {
	patientRepo port.PatientRepository
	apptRepo    port.AppointmentRepository
	rxRepo      port.PrescriptionRepository
	readingRepo port.HealthReadingRepository
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService implementation.
func NewDashboardService(
	patientRepo port.PatientRepository,
	apptRepo port.AppointmentRepository,
	rxRepo port.PrescriptionRepository,
	readingRepo port.HealthReadingRepository,
) DashboardService {
	return &dashboardService{
		patientRepo: patientRepo,
		apptRepo:    apptRepo,
		rxRepo:      rxRepo,
		readingRepo: readingRepo,
		now:         time.Now,
	}
}

// Get loads the three dashboard sections concurrently. The first failure
// cancels the others.
func (s *dashboardService) Get(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Patient: patient}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appts, err := s.apptRepo.ListUpcomingByPatient(gctx, patient.ID, s.now().UTC(), dashboardItems)
		d.UpcomingAppointments = appts
		return err
	})
	g.Go(func() error {
		rxs, _, err := s.rxRepo.ListByPatient(gctx, patient.ID, 0, dashboardItems)
		d.RecentPrescriptions = rxs
		return err
	})
	g.Go(func() error {
		readings, _, err := s.readingRepo.ListByPatient(gctx, patient.ID, port.ReadingFilter{}, 0, dashboardItems)
		d.LatestReadings = readings
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if d.UpcomingAppointments == nil {
		d.UpcomingAppointments = []domain.Appointment{}
	}
	if d.RecentPrescriptions == nil {
		d.RecentPrescriptions = []domain.Prescription{}
	}
	if d.LatestReadings == nil {
		d.LatestReadings = []domain.HealthReading{}
	}
	return d, nil
}
