package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arogya-his/arogya-his/internal/observability"
)

// amountTolerance absorbs float drift when comparing stored currency figures.
const amountTolerance = 0.01

// BillIntegrityJob scans recent discharge bills for figures that disagree
// with their line items or with each other.
type BillIntegrityJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewBillIntegrityJob initialises the integrity scan handler.
func NewBillIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) *BillIntegrityJob {
	return &BillIntegrityJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type billIssue struct {
	BillID  int64
	BillNo  string
	Problem string
	Stored  float64
	Derived float64
}

// Handle executes the integrity scan logic.
func (j *BillIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("bill integrity: handler not configured")
	}
	var payload IntegrityScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowDays <= 0 {
		payload.WindowDays = 90
	}

	start := j.now()
	logger := j.logger().With(slog.Float64("window_days", payload.WindowDays))
	logger.Info("starting bill integrity scan")

	scanned, issues, err := j.scan(ctx, payload, start)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}

	for _, issue := range issues {
		logger.Warn("bill integrity issue",
			slog.Int64("bill_id", issue.BillID),
			slog.String("bill_no", issue.BillNo),
			slog.String("problem", issue.Problem),
			slog.Float64("stored", issue.Stored),
			slog.Float64("derived", issue.Derived),
		)
		if j.Metrics != nil {
			j.Metrics.IntegrityIssue()
		}
	}

	logger.Info("completed bill integrity scan",
		slog.Int("scanned", scanned),
		slog.Int("issues", len(issues)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *BillIntegrityJob) scan(ctx context.Context, payload IntegrityScanPayload, now time.Time) (int, []billIssue, error) {
	if j.Pool == nil {
		return 0, nil, errors.New("bill integrity: pool not configured")
	}
	since := now.Add(-time.Duration(payload.WindowDays*24) * time.Hour)
	rows, err := j.Pool.Query(ctx, `SELECT b.id, b.bill_no, b.total_amount, b.outstanding_amount, b.refundable_amount,
COALESCE(SUM(i.amount), 0)::double precision
FROM discharge_bills b
LEFT JOIN discharge_bill_items i ON i.bill_id = b.id
WHERE b.updated_at >= $1
GROUP BY b.id
ORDER BY b.id`, since)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	scanned := 0
	var issues []billIssue
	for rows.Next() {
		var (
			id                             int64
			billNo                         string
			total, outstanding, refundable float64
			itemSum                        float64
		)
		if err := rows.Scan(&id, &billNo, &total, &outstanding, &refundable, &itemSum); err != nil {
			return 0, nil, err
		}
		scanned++
		if math.Abs(total-itemSum) > amountTolerance {
			issues = append(issues, billIssue{
				BillID: id, BillNo: billNo,
				Problem: "total disagrees with item sum",
				Stored:  total, Derived: itemSum,
			})
		}
		if outstanding > amountTolerance && refundable > amountTolerance {
			issues = append(issues, billIssue{
				BillID: id, BillNo: billNo,
				Problem: "outstanding and refundable both nonzero",
				Stored:  outstanding, Derived: refundable,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	return scanned, issues, nil
}

func (j *BillIntegrityJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *BillIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
