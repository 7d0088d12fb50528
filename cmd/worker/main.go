package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/arogya-his/arogya-his/internal/app"
	"github.com/arogya-his/arogya-his/internal/auth"
	"github.com/arogya-his/arogya-his/internal/observability"
	"github.com/arogya-his/arogya-his/internal/platform/db"
	"github.com/arogya-his/arogya-his/internal/shared"
	"github.com/arogya-his/arogya-his/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	idempotencyStore := shared.NewIdempotencyStore(pool)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	metrics := observability.NewMetrics()

	cleanupJob := jobs.NewCleanupJob(idempotencyStore, authService, logger)
	integrityJob := jobs.NewBillIntegrityJob(pool, logger, metrics)

	cleanupTask, err := jobs.NewCleanupTask(jobs.CleanupPayload{IdempotencyMaxAgeHours: 48})
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}
	integrityTask, err := jobs.NewIntegrityScanTask(jobs.IntegrityScanPayload{WindowDays: 90})
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskMaintenanceCleanup, Handler: cleanupJob.Handle},
			{Type: jobs.TaskBillIntegrityScan, Handler: integrityJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "45 1 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
