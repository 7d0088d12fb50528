package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMaintenanceCleanup prunes expired idempotency keys and session rows.
	TaskMaintenanceCleanup = "maintenance:cleanup"
	// TaskBillIntegrityScan audits persisted discharge bills for inconsistent figures.
	TaskBillIntegrityScan = "billing:integrity_scan"
)

// CleanupPayload bounds the maintenance cleanup run.
type CleanupPayload struct {
	IdempotencyMaxAgeHours int `json:"idempotency_max_age_hours"`
}

// NewCleanupTask constructs an Asynq task.
func NewCleanupTask(payload CleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMaintenanceCleanup, data), nil
}

// IntegrityScanPayload bounds the bill integrity scan.
type IntegrityScanPayload struct {
	WindowDays float64 `json:"window_days"`
}

// NewIntegrityScanTask constructs an Asynq task.
func NewIntegrityScanTask(payload IntegrityScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillIntegrityScan, data), nil
}
