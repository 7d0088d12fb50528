package services

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateInjection inserts an injection record.
func (r *Repository) CreateInjection(ctx context.Context, input LogInjectionInput) (*Injection, error) {
	var inj Injection
	err := r.pool.QueryRow(ctx, `INSERT INTO injections (registration_id, drug_name, dose, route, charge, given_at, created_by)
VALUES ($1, $2, $3, $4, $5, NOW(), $6)
RETURNING id, registration_id, drug_name, dose, route, charge, given_at, created_by`,
		input.RegistrationID, input.DrugName, input.Dose, input.Route, input.Charge, input.CreatedBy).
		Scan(&inj.ID, &inj.RegistrationID, &inj.DrugName, &inj.Dose, &inj.Route, &inj.Charge, &inj.GivenAt, &inj.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &inj, nil
}

// CreateVaccination inserts a vaccination record.
func (r *Repository) CreateVaccination(ctx context.Context, input LogVaccinationInput) (*Vaccination, error) {
	var vac Vaccination
	err := r.pool.QueryRow(ctx, `INSERT INTO vaccinations (registration_id, vaccine_name, dose_number, batch_no, charge, given_at, created_by)
VALUES ($1, $2, $3, $4, $5, NOW(), $6)
RETURNING id, registration_id, vaccine_name, dose_number, batch_no, charge, given_at, created_by`,
		input.RegistrationID, input.VaccineName, input.DoseNumber, input.BatchNo, input.Charge, input.CreatedBy).
		Scan(&vac.ID, &vac.RegistrationID, &vac.VaccineName, &vac.DoseNumber, &vac.BatchNo, &vac.Charge, &vac.GivenAt, &vac.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &vac, nil
}

// CreateNewbornVaccination inserts a newborn vaccination record.
func (r *Repository) CreateNewbornVaccination(ctx context.Context, input LogVaccinationInput) (*NewbornVaccination, error) {
	var vac NewbornVaccination
	err := r.pool.QueryRow(ctx, `INSERT INTO newborn_vaccinations (registration_id, newborn_name, vaccine_name, charge, given_at, created_by)
VALUES ($1, $2, $3, $4, NOW(), $5)
RETURNING id, registration_id, newborn_name, vaccine_name, charge, given_at, created_by`,
		input.RegistrationID, input.NewbornName, input.VaccineName, input.Charge, input.CreatedBy).
		Scan(&vac.ID, &vac.RegistrationID, &vac.NewbornName, &vac.VaccineName, &vac.Charge, &vac.GivenAt, &vac.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &vac, nil
}

// CreateProcedure inserts a dermatology procedure record.
func (r *Repository) CreateProcedure(ctx context.Context, input LogProcedureInput) (*DermatologyProcedure, error) {
	var proc DermatologyProcedure
	err := r.pool.QueryRow(ctx, `INSERT INTO dermatology_procedures (registration_id, procedure_name, sessions, charge, given_at, created_by)
VALUES ($1, $2, $3, $4, NOW(), $5)
RETURNING id, registration_id, procedure_name, sessions, charge, given_at, created_by`,
		input.RegistrationID, input.ProcedureName, input.Sessions, input.Charge, input.CreatedBy).
		Scan(&proc.ID, &proc.RegistrationID, &proc.ProcedureName, &proc.Sessions, &proc.Charge, &proc.GivenAt, &proc.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &proc, nil
}

// ListUsage collects every service recorded under a registration.
func (r *Repository) ListUsage(ctx context.Context, registrationID int64) (*Usage, error) {
	usage := &Usage{}

	rows, err := r.pool.Query(ctx, `SELECT id, registration_id, drug_name, dose, route, charge, given_at, created_by
FROM injections WHERE registration_id=$1 ORDER BY given_at`, registrationID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var inj Injection
		if err := rows.Scan(&inj.ID, &inj.RegistrationID, &inj.DrugName, &inj.Dose, &inj.Route, &inj.Charge, &inj.GivenAt, &inj.CreatedBy); err != nil {
			rows.Close()
			return nil, err
		}
		usage.Injections = append(usage.Injections, inj)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT id, registration_id, vaccine_name, dose_number, batch_no, charge, given_at, created_by
FROM vaccinations WHERE registration_id=$1 ORDER BY given_at`, registrationID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var vac Vaccination
		if err := rows.Scan(&vac.ID, &vac.RegistrationID, &vac.VaccineName, &vac.DoseNumber, &vac.BatchNo, &vac.Charge, &vac.GivenAt, &vac.CreatedBy); err != nil {
			rows.Close()
			return nil, err
		}
		usage.Vaccinations = append(usage.Vaccinations, vac)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT id, registration_id, newborn_name, vaccine_name, charge, given_at, created_by
FROM newborn_vaccinations WHERE registration_id=$1 ORDER BY given_at`, registrationID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var vac NewbornVaccination
		if err := rows.Scan(&vac.ID, &vac.RegistrationID, &vac.NewbornName, &vac.VaccineName, &vac.Charge, &vac.GivenAt, &vac.CreatedBy); err != nil {
			rows.Close()
			return nil, err
		}
		usage.NewbornVaccinations = append(usage.NewbornVaccinations, vac)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT id, registration_id, procedure_name, sessions, charge, given_at, created_by
FROM dermatology_procedures WHERE registration_id=$1 ORDER BY given_at`, registrationID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var proc DermatologyProcedure
		if err := rows.Scan(&proc.ID, &proc.RegistrationID, &proc.ProcedureName, &proc.Sessions, &proc.Charge, &proc.GivenAt, &proc.CreatedBy); err != nil {
			rows.Close()
			return nil, err
		}
		usage.DermatologyProcedures = append(usage.DermatologyProcedures, proc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return usage, nil
}

var _ RepositoryPort = (*Repository)(nil)
