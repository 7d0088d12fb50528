package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arogya-his/arogya-his/internal/registrations"
)

const billColumns = `id, bill_no, section, patient_id, registration_id, doctor_id, admission_date, discharge_date, total_amount, paid_amount, outstanding_amount, refundable_amount, ip_joining_amount, status, created_by, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanBill(row pgx.Row) (*DischargeBill, error) {
	var b DischargeBill
	err := row.Scan(&b.ID, &b.BillNo, &b.Section, &b.PatientID, &b.RegistrationID, &b.DoctorID, &b.AdmissionDate, &b.DischargeDate, &b.TotalAmount, &b.PaidAmount, &b.OutstandingAmount, &b.RefundableAmount, &b.IPJoiningAmount, &b.Status, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindBillByRegistration returns the bill for a visit, ErrBillNotFound when none exists.
func (r *Repository) FindBillByRegistration(ctx context.Context, registrationID int64) (*DischargeBill, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM discharge_bills WHERE registration_id = $1`, registrationID)
	return scanBill(row)
}

// GetBill returns a bill by primary key.
func (r *Repository) GetBill(ctx context.Context, id int64) (*DischargeBill, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM discharge_bills WHERE id = $1`, id)
	return scanBill(row)
}

// ListItems returns the line item rows under a bill.
func (r *Repository) ListItems(ctx context.Context, billID int64) ([]DischargeBillItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, bill_id, category, description, quantity, rate, amount, reference_id, reference_type FROM discharge_bill_items WHERE bill_id = $1 ORDER BY id`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DischargeBillItem
	for rows.Next() {
		var it DischargeBillItem
		if err := rows.Scan(&it.ID, &it.BillID, &it.Category, &it.Description, &it.Quantity, &it.Rate, &it.Amount, &it.ReferenceID, &it.ReferenceType); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
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

func (t *txRepo) FindBillByRegistration(ctx context.Context, registrationID int64) (*DischargeBill, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+billColumns+` FROM discharge_bills WHERE registration_id = $1 FOR UPDATE`, registrationID)
	return scanBill(row)
}

// AllocateBillNumber hands out the next section-scoped number for the current
// month. The upsert bumps the counter atomically so concurrent saves never
// receive the same number.
func (t *txRepo) AllocateBillNumber(ctx context.Context, section registrations.Section) (string, error) {
	prefix, err := sectionPrefix(section)
	if err != nil {
		return "", err
	}
	period := time.Now().Format("0601")
	var next int64
	err = t.tx.QueryRow(ctx, `INSERT INTO bill_sequences (section, period, next_no) VALUES ($1, $2, 1)
ON CONFLICT (section, period) DO UPDATE SET next_no = bill_sequences.next_no + 1
RETURNING next_no`, section, period).Scan(&next)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, period, next), nil
}

func (t *txRepo) CreateBill(ctx context.Context, bill *DischargeBill) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO discharge_bills (bill_no, section, patient_id, registration_id, doctor_id, admission_date, discharge_date, total_amount, paid_amount, outstanding_amount, refundable_amount, ip_joining_amount, status, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`,
		bill.BillNo, bill.Section, bill.PatientID, bill.RegistrationID, bill.DoctorID, bill.AdmissionDate, bill.DischargeDate, bill.TotalAmount, bill.PaidAmount, bill.OutstandingAmount, bill.RefundableAmount, bill.IPJoiningAmount, bill.Status, bill.CreatedBy, bill.CreatedAt, bill.UpdatedAt).Scan(&id)
	return id, err
}

func (t *txRepo) UpdateBill(ctx context.Context, bill *DischargeBill) error {
	_, err := t.tx.Exec(ctx, `UPDATE discharge_bills SET doctor_id=$1, admission_date=$2, discharge_date=$3, total_amount=$4, paid_amount=$5, outstanding_amount=$6, refundable_amount=$7, ip_joining_amount=$8, status=$9, updated_at=$10 WHERE id=$11`,
		bill.DoctorID, bill.AdmissionDate, bill.DischargeDate, bill.TotalAmount, bill.PaidAmount, bill.OutstandingAmount, bill.RefundableAmount, bill.IPJoiningAmount, bill.Status, bill.UpdatedAt, bill.ID)
	return err
}

// ReplaceLineItems deletes every item under the bill and re-inserts the new set.
func (t *txRepo) ReplaceLineItems(ctx context.Context, billID int64, items []DischargeBillItem) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM discharge_bill_items WHERE bill_id = $1`, billID); err != nil {
		return err
	}
	for _, it := range items {
		_, err := t.tx.Exec(ctx, `INSERT INTO discharge_bill_items (bill_id, category, description, quantity, rate, amount, reference_id, reference_type)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, billID, it.Category, it.Description, it.Quantity, it.Rate, it.Amount, it.ReferenceID, it.ReferenceType)
		if err != nil {
			return err
		}
	}
	return nil
}

func sectionPrefix(section registrations.Section) (string, error) {
	switch section {
	case registrations.SectionPediatrics:
		return "PED", nil
	case registrations.SectionDermatology:
		return "DER", nil
	default:
		return "", ErrInvalidSection
	}
}
