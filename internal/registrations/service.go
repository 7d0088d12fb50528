package registrations

import (
	"context"
	"errors"
	"strconv"

	"github.com/arogya-his/arogya-his/internal/shared"
)

// Service handles registration business logic.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Open registers a new visit and allocates its registration number.
func (s *Service) Open(ctx context.Context, input CreateRegistrationInput) (*Registration, error) {
	if input.PatientID == 0 {
		return nil, errors.New("patient ID required")
	}
	if input.DoctorID == 0 {
		return nil, errors.New("doctor ID required")
	}
	if !input.Section.Valid() {
		return nil, errors.New("unknown section")
	}
	if input.Fee < 0 {
		return nil, errors.New("fee cannot be negative")
	}
	regNo, err := s.repo.GenerateNumber(ctx, input.Section)
	if err != nil {
		return nil, err
	}
	reg, err := s.repo.Create(ctx, regNo, input)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.CreatedBy,
			Action:   "registration.open",
			Entity:   "registration",
			EntityID: strconv.FormatInt(reg.ID, 10),
			Meta:     map[string]any{"reg_no": reg.RegNo, "section": reg.Section},
		})
	}
	return reg, nil
}

// Get returns one registration.
func (s *Service) Get(ctx context.Context, id int64) (*Registration, error) {
	return s.repo.Get(ctx, id)
}

// List returns registrations matching the filter.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Registration, error) {
	return s.repo.List(ctx, req)
}

// Cancel voids an open registration.
func (s *Service) Cancel(ctx context.Context, id int64, actorID int64) error {
	reg, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if reg.Status != StatusOpen {
		return errors.New("only open registrations can be cancelled")
	}
	if err := s.repo.SetStatus(ctx, id, StatusCancelled); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "registration.cancel",
			Entity:   "registration",
			EntityID: strconv.FormatInt(id, 10),
		})
	}
	return nil
}

// MarkDischarged flags a visit as discharged once its bill is finalized.
func (s *Service) MarkDischarged(ctx context.Context, id int64) error {
	return s.repo.SetStatus(ctx, id, StatusDischarged)
}

// Doctors lists consulting physicians for a section.
func (s *Service) Doctors(ctx context.Context, section Section) ([]Doctor, error) {
	return s.repo.ListDoctors(ctx, section)
}
