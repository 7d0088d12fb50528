package payments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arogya-his/arogya-his/internal/billing"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByBill returns payment rows for a bill, oldest first.
func (r *Repository) ListByBill(ctx context.Context, billID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, bill_id, direction, amount, method, note, recorded_by, recorded_at FROM bill_payments WHERE bill_id = $1 ORDER BY id`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.BillID, &p.Direction, &p.Amount, &p.Method, &p.Note, &p.RecordedBy, &p.RecordedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepo{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// GetBillForUpdate locks the bill row for the duration of the settlement.
func (t *txRepo) GetBillForUpdate(ctx context.Context, billID int64) (*billing.DischargeBill, error) {
	var b billing.DischargeBill
	err := t.tx.QueryRow(ctx, `SELECT id, bill_no, section, patient_id, registration_id, doctor_id, admission_date, discharge_date, total_amount, paid_amount, outstanding_amount, refundable_amount, ip_joining_amount, status, created_by, created_at, updated_at FROM discharge_bills WHERE id = $1 FOR UPDATE`, billID).
		Scan(&b.ID, &b.BillNo, &b.Section, &b.PatientID, &b.RegistrationID, &b.DoctorID, &b.AdmissionDate, &b.DischargeDate, &b.TotalAmount, &b.PaidAmount, &b.OutstandingAmount, &b.RefundableAmount, &b.IPJoiningAmount, &b.Status, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, billing.ErrBillNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *txRepo) UpdateBillSettlement(ctx context.Context, bill *billing.DischargeBill) error {
	_, err := t.tx.Exec(ctx, `UPDATE discharge_bills SET paid_amount=$1, outstanding_amount=$2, refundable_amount=$3, updated_at=$4 WHERE id=$5`,
		bill.PaidAmount, bill.OutstandingAmount, bill.RefundableAmount, bill.UpdatedAt, bill.ID)
	return err
}

func (t *txRepo) CreatePayment(ctx context.Context, p *Payment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO bill_payments (bill_id, direction, amount, method, note, recorded_by, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`, p.BillID, p.Direction, p.Amount, p.Method, p.Note, p.RecordedBy, p.RecordedAt).Scan(&id)
	return id, err
}
