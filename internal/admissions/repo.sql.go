package admissions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arogya-his/arogya-his/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const admissionColumns = `id, registration_id, patient_id, room_id, payment_amount, status, admitted_at, discharged_at, created_by, created_at, updated_at`

func scanAdmission(row pgx.Row) (*Admission, error) {
	var adm Admission
	if err := row.Scan(&adm.ID, &adm.RegistrationID, &adm.PatientID, &adm.RoomID, &adm.PaymentAmount,
		&adm.Status, &adm.AdmittedAt, &adm.DischargedAt, &adm.CreatedBy, &adm.CreatedAt, &adm.UpdatedAt); err != nil {
		return nil, err
	}
	return &adm, nil
}

// Create inserts an active admission.
func (r *Repository) Create(ctx context.Context, input AdmitInput) (*Admission, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO admissions
(registration_id, patient_id, room_id, payment_amount, status, admitted_at, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), $6, NOW(), NOW())
RETURNING `+admissionColumns,
		input.RegistrationID, input.PatientID, input.RoomID, input.PaymentAmount, StatusActive, input.CreatedBy)
	return scanAdmission(row)
}

// Get fetches an admission by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Admission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+admissionColumns+` FROM admissions WHERE id=$1`, id)
	adm, err := scanAdmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return adm, nil
}

// FindActiveByPatient returns the patient's open admission, if any.
func (r *Repository) FindActiveByPatient(ctx context.Context, patientID int64) (*Admission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+admissionColumns+` FROM admissions
WHERE patient_id=$1 AND status=$2 ORDER BY admitted_at DESC LIMIT 1`, patientID, StatusActive)
	adm, err := scanAdmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return adm, nil
}

// FindByRegistration returns the admission attached to a registration.
func (r *Repository) FindByRegistration(ctx context.Context, registrationID int64) (*Admission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+admissionColumns+` FROM admissions
WHERE registration_id=$1 ORDER BY admitted_at DESC LIMIT 1`, registrationID)
	adm, err := scanAdmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return adm, nil
}

// Discharge marks an active admission as discharged.
func (r *Repository) Discharge(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE admissions
SET status=$2, discharged_at=NOW(), updated_at=NOW()
WHERE id=$1 AND status=$3`, id, StatusDischarged, StatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RoomAvailability computes free beds per room from open admissions.
func (r *Repository) RoomAvailability(ctx context.Context, section string) ([]RoomAvailability, error) {
	query := `SELECT rm.id, rm.name, rm.section, rm.capacity, rm.daily_rate,
       count(a.id) FILTER (WHERE a.status = 'active') AS occupied
FROM rooms rm
LEFT JOIN admissions a ON a.room_id = rm.id
WHERE ($1 = '' OR rm.section = $1)
GROUP BY rm.id
ORDER BY rm.name`
	rows, err := r.pool.Query(ctx, query, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoomAvailability
	for rows.Next() {
		var ra RoomAvailability
		if err := rows.Scan(&ra.ID, &ra.Name, &ra.Section, &ra.Capacity, &ra.DailyRate, &ra.Occupied); err != nil {
			return nil, err
		}
		ra.Available = ra.Capacity - ra.Occupied
		if ra.Available < 0 {
			ra.Available = 0
		}
		out = append(out, ra)
	}
	return out, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
