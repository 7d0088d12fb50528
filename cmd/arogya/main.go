package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/arogya-his/arogya-his/internal/admissions"
	"github.com/arogya-his/arogya-his/internal/app"
	"github.com/arogya-his/arogya-his/internal/auth"
	"github.com/arogya-his/arogya-his/internal/billing"
	"github.com/arogya-his/arogya-his/internal/observability"
	"github.com/arogya-his/arogya-his/internal/patients"
	"github.com/arogya-his/arogya-his/internal/payments"
	"github.com/arogya-his/arogya-his/internal/platform/cache"
	"github.com/arogya-his/arogya-his/internal/platform/db"
	"github.com/arogya-his/arogya-his/internal/rbac"
	"github.com/arogya-his/arogya-his/internal/registrations"
	"github.com/arogya-his/arogya-his/internal/services"
	"github.com/arogya-his/arogya-his/internal/shared"
	"github.com/arogya-his/arogya-his/jobs"
	"github.com/arogya-his/arogya-his/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "arogya_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Source: rbacService, Logger: logger}

	metrics := observability.NewMetrics()

	patientRepo := patients.NewRepository(dbpool)
	patientService := patients.NewService(patientRepo)
	patientHandler := patients.NewHandler(logger, patientService, rbacMiddleware)

	registrationRepo := registrations.NewRepository(dbpool)
	registrationService := registrations.NewService(registrationRepo, auditLogger)
	registrationHandler := registrations.NewHandler(logger, registrationService, rbacMiddleware)

	admissionRepo := admissions.NewRepository(dbpool)
	admissionService := admissions.NewService(admissionRepo, auditLogger)
	admissionHandler := admissions.NewHandler(logger, admissionService, rbacMiddleware)

	serviceRepo := services.NewRepository(dbpool)
	serviceService := services.NewService(serviceRepo)
	serviceHandler := services.NewHandler(logger, serviceService, rbacMiddleware)

	billingRepo := billing.NewRepository(dbpool)
	billingService := billing.NewService(billingRepo, auditLogger, metrics)
	billingHandler := billing.NewHandler(logger, billingService, registrationService, admissionService, serviceService, rbacMiddleware)

	paymentRepo := payments.NewRepository(dbpool)
	paymentService := payments.NewService(paymentRepo, auditLogger)
	paymentHandler := payments.NewHandler(logger, paymentService, rbacMiddleware)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, billingService, patientService, logger, cfg.HospitalName, cfg.HospitalAddress)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		AuthHandler:          authHandler,
		PatientsHandler:      patientHandler,
		RegistrationsHandler: registrationHandler,
		AdmissionsHandler:    admissionHandler,
		ServicesHandler:      serviceHandler,
		BillingHandler:       billingHandler,
		PaymentsHandler:      paymentHandler,
		ReportHandler:        reportHandler,
		JobHandler:           jobHandler,
		RBACMiddleware:       rbacMiddleware,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
