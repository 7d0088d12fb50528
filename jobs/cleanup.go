package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/arogya-his/arogya-his/internal/auth"
	"github.com/arogya-his/arogya-his/internal/shared"
)

// CleanupJob prunes expired idempotency keys and stale session rows.
type CleanupJob struct {
	Idempotency *shared.IdempotencyStore
	Sessions    *auth.Service
	Logger      *slog.Logger
}

// NewCleanupJob initialises the maintenance cleanup handler.
func NewCleanupJob(idempotency *shared.IdempotencyStore, sessions *auth.Service, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{Idempotency: idempotency, Sessions: sessions, Logger: logger}
}

// Handle executes the cleanup logic.
func (j *CleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("cleanup: handler not configured")
	}
	var payload CleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.IdempotencyMaxAgeHours <= 0 {
		payload.IdempotencyMaxAgeHours = 48
	}

	logger := j.logger().With(slog.Int("idempotency_max_age_hours", payload.IdempotencyMaxAgeHours))
	logger.Info("starting maintenance cleanup")
	start := time.Now()

	if j.Idempotency != nil {
		maxAge := time.Duration(payload.IdempotencyMaxAgeHours) * time.Hour
		if err := j.Idempotency.Cleanup(ctx, maxAge); err != nil {
			logger.Error("idempotency cleanup failed", slog.Any("error", err))
			return err
		}
	}

	var swept int64
	if j.Sessions != nil {
		n, err := j.Sessions.SweepExpiredSessions(ctx)
		if err != nil {
			logger.Error("session sweep failed", slog.Any("error", err))
			return err
		}
		swept = n
	}

	logger.Info("completed maintenance cleanup",
		slog.Int64("sessions_swept", swept),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *CleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
