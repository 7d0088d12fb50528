package patients

import (
	"context"
	"errors"
	"fmt"
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

const patientColumns = `id, mrn, name, gender, dob, phone, guardian, address, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.MRN, &p.Name, &p.Gender, &p.DOB, &p.Phone, &p.Guardian, &p.Address, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a patient row.
func (r *Repository) Create(ctx context.Context, mrn string, input CreatePatientInput) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO patients (mrn, name, gender, dob, phone, guardian, address, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
RETURNING `+patientColumns,
		mrn, input.Name, input.Gender, input.DOB, input.Phone, input.Guardian, input.Address)
	return scanPatient(row)
}

// Update rewrites the editable patient fields.
func (r *Repository) Update(ctx context.Context, id int64, input UpdatePatientInput) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `UPDATE patients
SET name=$2, gender=$3, dob=$4, phone=$5, guardian=$6, address=$7, updated_at=NOW()
WHERE id=$1
RETURNING `+patientColumns,
		id, input.Name, input.Gender, input.DOB, input.Phone, input.Guardian, input.Address)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Get fetches a patient by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id=$1`, id)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Search matches name, phone, or MRN prefix with pagination.
func (r *Repository) Search(ctx context.Context, req SearchRequest) ([]Patient, int, error) {
	pattern := "%" + req.Query + "%"
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM patients
WHERE ($1 = '%%' OR name ILIKE $1 OR phone LIKE $1 OR mrn ILIKE $1)`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	rows, err := r.pool.Query(ctx, `SELECT `+patientColumns+` FROM patients
WHERE ($1 = '%%' OR name ILIKE $1 OR phone LIKE $1 OR mrn ILIKE $1)
ORDER BY name
LIMIT $2 OFFSET $3`, pattern, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.MRN, &p.Name, &p.Gender, &p.DOB, &p.Phone, &p.Guardian, &p.Address, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// GenerateMRN allocates the next medical record number.
// MR-{YY}{MM}-{SEQ}
func (r *Repository) GenerateMRN(ctx context.Context) (string, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM patients`).Scan(&count); err != nil {
		return "", err
	}
	return fmt.Sprintf("MR-%s-%04d", time.Now().Format("0601"), count+1), nil
}

var _ RepositoryPort = (*Repository)(nil)
