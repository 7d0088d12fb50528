package services

import "context"

// RepositoryPort defines data access methods for service usage.
type RepositoryPort interface {
	CreateInjection(ctx context.Context, input LogInjectionInput) (*Injection, error)
	CreateVaccination(ctx context.Context, input LogVaccinationInput) (*Vaccination, error)
	CreateNewbornVaccination(ctx context.Context, input LogVaccinationInput) (*NewbornVaccination, error)
	CreateProcedure(ctx context.Context, input LogProcedureInput) (*DermatologyProcedure, error)
	ListUsage(ctx context.Context, registrationID int64) (*Usage, error)
}
