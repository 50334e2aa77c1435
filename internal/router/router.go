package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "telehealth/docs" // registers the OpenAPI document
	"telehealth/internal/domain"
	"telehealth/internal/handler"
	"telehealth/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Patient      *handler.PatientHandler
	Doctor       *handler.DoctorHandler
	Appointment  *handler.AppointmentHandler
	Prescription *handler.PrescriptionHandler
	Chat         *handler.ChatHandler
	Reading      *handler.HealthReadingHandler
	Emergency    *handler.EmergencyHandler
	Health       *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	tokens middleware.TokenValidator,
	h Handlers,
	allowedOrigins []string,
	logger *slog.Logger,
) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/social-login", h.Auth.SocialLogin)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))

	admin := middleware.RequireRole(domain.RoleAdmin)
	patientOnly := middleware.RequireRole(domain.RolePatient)
	doctorOnly := middleware.RequireRole(domain.RoleDoctor)
	staff := middleware.RequireRole(domain.RoleDoctor, domain.RoleAdmin)

	users := protected.Group("/users")
	users.GET("/me", h.User.Me)
	users.POST("", admin, h.User.Create)
	users.GET("", admin, h.User.List)
	users.GET("/:id", h.User.GetByID)
	users.PUT("/:id", h.User.Update)
	users.DELETE("/:id", admin, h.User.Delete)

	patients := protected.Group("/patients")
	patients.GET("/me", patientOnly, h.Patient.GetMe)
	patients.PUT("/me", patientOnly, h.Patient.UpdateMe)
	patients.GET("/me/dashboard", patientOnly, h.Patient.Dashboard)
	patients.GET("", staff, h.Patient.List)
	patients.GET("/:id", staff, h.Patient.GetByID)
	patients.GET("/:id/prescriptions", staff, h.Prescription.ListForPatient)
	patients.GET("/:id/readings", staff, h.Reading.ListForPatient)

	doctors := protected.Group("/doctors")
	doctors.GET("", h.Doctor.List)
	doctors.GET("/me", doctorOnly, h.Doctor.GetMe)
	doctors.PUT("/me", doctorOnly, h.Doctor.UpdateMe)
	doctors.GET("/:id", h.Doctor.GetByID)
	doctors.POST("", admin, h.Doctor.Create)

	appts := protected.Group("/appointments")
	appts.POST("", patientOnly, h.Appointment.Book)
	appts.GET("", h.Appointment.List)
	appts.GET("/:id", h.Appointment.GetByID)
	appts.PUT("/:id/status", h.Appointment.UpdateStatus)
	appts.PUT("/:id/schedule", h.Appointment.Reschedule)

	rx := protected.Group("/prescriptions")
	rx.POST("", doctorOnly, h.Prescription.Create)
	rx.GET("", h.Prescription.List)
	rx.GET("/:id", h.Prescription.GetByID)
	rx.GET("/:id/file", h.Prescription.FileURL)

	chat := protected.Group("/chat", patientOnly)
	chat.POST("/messages", h.Chat.Send)
	chat.GET("/messages", h.Chat.History)
	chat.DELETE("/messages", h.Chat.Clear)

	readings := protected.Group("/readings", patientOnly)
	readings.POST("", h.Reading.Record)
	readings.POST("/photo", h.Reading.RecordFromPhoto)
	readings.GET("", h.Reading.List)
	readings.GET("/export", h.Reading.Export)
	readings.DELETE("/:id", h.Reading.Delete)

	emergency := protected.Group("/emergency", patientOnly)
	emergency.POST("/sos", h.Emergency.SOS)
	emergency.POST("/motion", h.Emergency.Motion)
	emergency.GET("/alerts", h.Emergency.List)

	return r
}
