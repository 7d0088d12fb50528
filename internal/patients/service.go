package patients

import (
	"context"
	"errors"
	"strings"
)

// Service handles patient registry logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Register creates a new patient with a freshly allocated MRN.
func (s *Service) Register(ctx context.Context, input CreatePatientInput) (*Patient, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, errors.New("patient name required")
	}
	mrn, err := s.repo.GenerateMRN(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, mrn, input)
}

// Update edits patient demographics. The MRN never changes.
func (s *Service) Update(ctx context.Context, id int64, input UpdatePatientInput) (*Patient, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, errors.New("patient name required")
	}
	return s.repo.Update(ctx, id, input)
}

// Get returns a single patient.
func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.Get(ctx, id)
}

// Search performs a paginated lookup by name, phone, or MRN.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]Patient, int, error) {
	req.Query = strings.TrimSpace(req.Query)
	return s.repo.Search(ctx, req)
}
