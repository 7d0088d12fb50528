package registrations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

const regColumns = `id, reg_no, patient_id, doctor_id, section, kind, fee, status, registered_at, created_by, created_at, updated_at`

func scanRegistration(row pgx.Row) (*Registration, error) {
	var reg Registration
	if err := row.Scan(&reg.ID, &reg.RegNo, &reg.PatientID, &reg.DoctorID, &reg.Section, &reg.Kind,
		&reg.Fee, &reg.Status, &reg.RegisteredAt, &reg.CreatedBy, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Create inserts a registration with status open.
func (r *Repository) Create(ctx context.Context, regNo string, input CreateRegistrationInput) (*Registration, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO registrations
(reg_no, patient_id, doctor_id, section, kind, fee, status, registered_at, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8, NOW(), NOW())
RETURNING `+regColumns,
		regNo, input.PatientID, input.DoctorID, input.Section, input.Kind, input.Fee, StatusOpen, input.CreatedBy)
	return scanRegistration(row)
}

// Get fetches a registration by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Registration, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+regColumns+` FROM registrations WHERE id=$1`, id)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

// List returns registrations matching the filter, newest first.
func (r *Repository) List(ctx context.Context, req ListRequest) ([]Registration, error) {
	conds := []string{"1=1"}
	args := []any{}
	idx := 1
	if req.PatientID != 0 {
		conds = append(conds, fmt.Sprintf("patient_id=$%d", idx))
		args = append(args, req.PatientID)
		idx++
	}
	if req.Section != "" {
		conds = append(conds, fmt.Sprintf("section=$%d", idx))
		args = append(args, req.Section)
		idx++
	}
	if req.Status != "" {
		conds = append(conds, fmt.Sprintf("status=$%d", idx))
		args = append(args, req.Status)
		idx++
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	query := `SELECT ` + regColumns + ` FROM registrations WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(` ORDER BY registered_at DESC LIMIT $%d`, idx)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Registration
	for rows.Next() {
		var reg Registration
		if err := rows.Scan(&reg.ID, &reg.RegNo, &reg.PatientID, &reg.DoctorID, &reg.Section, &reg.Kind,
			&reg.Fee, &reg.Status, &reg.RegisteredAt, &reg.CreatedBy, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// SetStatus moves the registration to a new lifecycle state.
func (r *Repository) SetStatus(ctx context.Context, id int64, status RegistrationStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE registrations SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GenerateNumber allocates the next registration number for a section.
// RG-{PED|DER}-{YY}{MM}-{SEQ}
func (r *Repository) GenerateNumber(ctx context.Context, section Section) (string, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM registrations WHERE section=$1`, section).Scan(&count); err != nil {
		return "", err
	}
	return fmt.Sprintf("RG-%s-%s-%04d", sectionPrefix(section), time.Now().Format("0601"), count+1), nil
}

// ListDoctors returns doctors, optionally filtered by section.
func (r *Repository) ListDoctors(ctx context.Context, section Section) ([]Doctor, error) {
	query := `SELECT id, name, specialty, section FROM doctors`
	args := []any{}
	if section != "" {
		query += ` WHERE section=$1`
		args = append(args, section)
	}
	query += ` ORDER BY name`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.Section); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func sectionPrefix(section Section) string {
	if section == SectionDermatology {
		return "DER"
	}
	return "PED"
}

var _ RepositoryPort = (*Repository)(nil)
