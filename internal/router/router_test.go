package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"telehealth/internal/domain"
	"telehealth/internal/handler"
	"telehealth/internal/logging"
	"telehealth/internal/router"
	"telehealth/internal/service"
	"telehealth/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type fixture struct {
	engine   *gin.Engine
	tokens   *mocks.MockAuthService
	users    *mocks.MockUserService
	doctors  *mocks.MockDoctorService
	readings *mocks.MockHealthReadingService
}

func newFixture() fixture {
	f := fixture{
		tokens:   new(mocks.MockAuthService),
		users:    new(mocks.MockUserService),
		doctors:  new(mocks.MockDoctorService),
		readings: new(mocks.MockHealthReadingService),
	}
	h := router.Handlers{
		Auth:         handler.NewAuthHandler(f.tokens, nil),
		User:         handler.NewUserHandler(f.users),
		Patient:      handler.NewPatientHandler(new(mocks.MockPatientService), new(mocks.MockDashboardService)),
		Doctor:       handler.NewDoctorHandler(f.doctors),
		Appointment:  handler.NewAppointmentHandler(new(mocks.MockAppointmentService)),
		Prescription: handler.NewPrescriptionHandler(new(mocks.MockPrescriptionService)),
		Chat:         handler.NewChatHandler(new(mocks.MockChatService)),
		Reading:      handler.NewHealthReadingHandler(f.readings),
		Emergency:    handler.NewEmergencyHandler(new(mocks.MockEmergencyService)),
		Health:       handler.NewHealthHandler(okPinger{}),
	}
	f.engine = router.Setup(f.tokens, h, []string{"https://app.example.com"}, logging.Discard())
	return f
}

func (f fixture) as(role domain.UserRole) (uuid.UUID, string) {
	id := uuid.New()
	token := string(role) + "-token"
	f.tokens.On("ValidateToken", token).Return(&service.Claims{UserID: id, Role: role}, nil)
	return id, token
}

func (f fixture) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_Healthz(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_ProtectedRequiresToken(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/api/v1/users/me", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Me(t *testing.T) {
	f := newFixture()
	id, token := f.as(domain.RolePatient)
	f.users.On("GetByID", mock.Anything, id).Return(&domain.User{ID: id}, nil)

	w := f.do(http.MethodGet, "/api/v1/users/me", token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), id.String()))
}

func TestRouter_RoleGuards(t *testing.T) {
	tests := []struct {
		name       string
		role       domain.UserRole
		method     string
		path       string
		wantStatus int
	}{
		{"patient cannot onboard doctors", domain.RolePatient, http.MethodPost, "/api/v1/doctors", http.StatusForbidden},
		{"patient cannot list users", domain.RolePatient, http.MethodGet, "/api/v1/users", http.StatusForbidden},
		{"doctor cannot record readings", domain.RoleDoctor, http.MethodPost, "/api/v1/readings", http.StatusForbidden},
		{"doctor cannot chat", domain.RoleDoctor, http.MethodGet, "/api/v1/chat/messages", http.StatusForbidden},
		{"admin cannot trigger SOS", domain.RoleAdmin, http.MethodPost, "/api/v1/emergency/sos", http.StatusForbidden},
		{"patient cannot browse patients", domain.RolePatient, http.MethodGet, "/api/v1/patients", http.StatusForbidden},
		{"doctor cannot book appointments", domain.RoleDoctor, http.MethodPost, "/api/v1/appointments", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, token := f.as(tt.role)

			w := f.do(tt.method, tt.path, token)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRouter_DoctorDirectoryOpenToPatients(t *testing.T) {
	f := newFixture()
	_, token := f.as(domain.RolePatient)
	f.doctors.On("List", mock.Anything, mock.Anything, 0, 20).Return([]domain.Doctor{}, 0, nil)

	w := f.do(http.MethodGet, "/api/v1/doctors", token)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/readings", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
