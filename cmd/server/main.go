package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "telehealth/internal/auth/google"
	"telehealth/internal/completion"
	"telehealth/internal/completion/claude"
	"telehealth/internal/completion/gemini"
	"telehealth/internal/completion/googleai"
	"telehealth/internal/completion/openai"
	"telehealth/internal/config"
	"telehealth/internal/document"
	"telehealth/internal/email/noop"
	"telehealth/internal/email/ses"
	"telehealth/internal/extraction"
	"telehealth/internal/handler"
	"telehealth/internal/logging"
	"telehealth/internal/port"
	"telehealth/internal/repository/postgres"
	"telehealth/internal/router"
	"telehealth/internal/service"
	s3storage "telehealth/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	patientRepo := postgres.NewPatientRepo(db)
	doctorRepo := postgres.NewDoctorRepo(db)
	apptRepo := postgres.NewAppointmentRepo(db)
	rxRepo := postgres.NewPrescriptionRepo(db)
	readingRepo := postgres.NewHealthReadingRepo(db)
	chatRepo := postgres.NewChatMessageRepo(db)
	alertRepo := postgres.NewEmergencyAlertRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	sender, err := newEmailSender(&cfg.Email, logger)
	if err != nil {
		return err
	}

	provider, err := newCompletionProvider(&cfg.Completion, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize completion provider: %w", err)
	}
	extractor := extraction.NewClient(provider,
		extraction.WithTimeout(cfg.Extraction.Timeout()),
		extraction.WithLogger(logger),
	)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, patientRepo, cfg.JWT, logger)
	var socialSvc service.SocialAuthService
	if cfg.Google.ClientID != "" {
		verifiers := map[string]port.SocialTokenVerifier{}
		v := googleauth.NewVerifier(cfg.Google.ClientID)
		verifiers[v.Provider()] = v
		socialSvc = service.NewSocialAuthService(verifiers, userRepo, patientRepo, authSvc, logger)
	}
	userSvc := service.NewUserService(userRepo)
	patientSvc := service.NewPatientService(patientRepo)
	doctorSvc := service.NewDoctorService(doctorRepo, userRepo, logger)
	apptSvc := service.NewAppointmentService(apptRepo, patientRepo, doctorRepo)
	rxSvc := service.NewPrescriptionService(rxRepo, patientRepo, doctorRepo, apptRepo,
		extractor, document.NewPDFTextExtractor(), s3Client, &cfg.S3, logger)
	chatSvc := service.NewChatService(chatRepo, patientRepo, extractor, cfg.Extraction.ChatHistoryLimit, logger)
	readingSvc := service.NewHealthReadingService(readingRepo, patientRepo, extractor, s3Client, &cfg.S3,
		cfg.Extraction.ReadingConfidenceThreshold, logger)
	emergencySvc := service.NewEmergencyService(alertRepo, patientRepo, sender, cfg.Emergency.FallThresholdG, logger)
	dashboardSvc := service.NewDashboardService(patientRepo, apptRepo, rxRepo, readingRepo)

	// Initialize handlers
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc, socialSvc),
		User:         handler.NewUserHandler(userSvc),
		Patient:      handler.NewPatientHandler(patientSvc, dashboardSvc),
		Doctor:       handler.NewDoctorHandler(doctorSvc),
		Appointment:  handler.NewAppointmentHandler(apptSvc),
		Prescription: handler.NewPrescriptionHandler(rxSvc),
		Chat:         handler.NewChatHandler(chatSvc),
		Reading:      handler.NewHealthReadingHandler(readingSvc),
		Emergency:    handler.NewEmergencyHandler(emergencySvc),
		Health:       handler.NewHealthHandler(db),
	}

	r := router.Setup(authSvc, handlers, cfg.CORS.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func newCompletionProvider(cfg *config.CompletionConfig, logger *slog.Logger) (port.CompletionProvider, error) {
	registry := completion.NewRegistry()
	registry.Register("gemini", func(c *config.CompletionProviderConfig) (port.CompletionProvider, error) {
		return gemini.NewProvider(c), nil
	})
	registry.Register("claude", func(c *config.CompletionProviderConfig) (port.CompletionProvider, error) {
		return claude.NewProvider(c), nil
	})
	registry.Register("openai", func(c *config.CompletionProviderConfig) (port.CompletionProvider, error) {
		return openai.NewProvider(c), nil
	})
	registry.Register("genai", func(c *config.CompletionProviderConfig) (port.CompletionProvider, error) {
		p, err := googleai.NewProvider(context.Background(), c)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
	return registry.Build(cfg, logger)
}

func newEmailSender(cfg *config.EmailConfig, logger *slog.Logger) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		sender, err := ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		return sender, nil
	case "", "noop":
		return noop.NewNoopSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}
