package services

import (
	"context"
	"errors"
	"strings"
)

// Service handles service-usage logging.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// LogInjection records a drug administration.
func (s *Service) LogInjection(ctx context.Context, input LogInjectionInput) (*Injection, error) {
	if input.RegistrationID == 0 {
		return nil, errors.New("registration ID required")
	}
	if strings.TrimSpace(input.DrugName) == "" {
		return nil, errors.New("drug name required")
	}
	if input.Charge < 0 {
		return nil, errors.New("charge cannot be negative")
	}
	return s.repo.CreateInjection(ctx, input)
}

// LogVaccination records a vaccination; newborn entries go to their own table.
func (s *Service) LogVaccination(ctx context.Context, input LogVaccinationInput) (any, error) {
	if input.RegistrationID == 0 {
		return nil, errors.New("registration ID required")
	}
	if strings.TrimSpace(input.VaccineName) == "" {
		return nil, errors.New("vaccine name required")
	}
	if input.Charge < 0 {
		return nil, errors.New("charge cannot be negative")
	}
	if input.Newborn {
		if strings.TrimSpace(input.NewbornName) == "" {
			return nil, errors.New("newborn name required")
		}
		return s.repo.CreateNewbornVaccination(ctx, input)
	}
	return s.repo.CreateVaccination(ctx, input)
}

// LogProcedure records a dermatology procedure.
func (s *Service) LogProcedure(ctx context.Context, input LogProcedureInput) (*DermatologyProcedure, error) {
	if input.RegistrationID == 0 {
		return nil, errors.New("registration ID required")
	}
	if strings.TrimSpace(input.ProcedureName) == "" {
		return nil, errors.New("procedure name required")
	}
	if input.Sessions < 1 {
		return nil, errors.New("sessions must be at least 1")
	}
	if input.Charge < 0 {
		return nil, errors.New("charge cannot be negative")
	}
	return s.repo.CreateProcedure(ctx, input)
}

// ListUsage returns everything billable recorded under a registration.
func (s *Service) ListUsage(ctx context.Context, registrationID int64) (*Usage, error) {
	if registrationID == 0 {
		return nil, errors.New("registration ID required")
	}
	return s.repo.ListUsage(ctx, registrationID)
}
