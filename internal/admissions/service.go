package admissions

import (
	"context"
	"errors"
	"strconv"

	"github.com/arogya-his/arogya-his/internal/shared"
)

// ErrNoBedsAvailable indicates the selected room is fully occupied.
var ErrNoBedsAvailable = errors.New("admissions: no beds available in room")

// ErrAlreadyAdmitted indicates the patient already has an active admission.
var ErrAlreadyAdmitted = errors.New("admissions: patient already admitted")

// Service handles admission business logic.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Admit opens an inpatient stay after checking bed availability.
func (s *Service) Admit(ctx context.Context, input AdmitInput) (*Admission, error) {
	if input.RegistrationID == 0 {
		return nil, errors.New("registration ID required")
	}
	if input.PatientID == 0 {
		return nil, errors.New("patient ID required")
	}
	if input.PaymentAmount < 0 {
		return nil, errors.New("advance amount cannot be negative")
	}

	if existing, err := s.repo.FindActiveByPatient(ctx, input.PatientID); err == nil && existing != nil {
		return nil, ErrAlreadyAdmitted
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	rooms, err := s.repo.RoomAvailability(ctx, "")
	if err != nil {
		return nil, err
	}
	found := false
	for _, room := range rooms {
		if room.ID == input.RoomID {
			found = true
			if room.Available <= 0 {
				return nil, ErrNoBedsAvailable
			}
			break
		}
	}
	if !found {
		return nil, errors.New("unknown room")
	}

	adm, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.CreatedBy,
			Action:   "admission.admit",
			Entity:   "admission",
			EntityID: strconv.FormatInt(adm.ID, 10),
			Meta:     map[string]any{"room_id": adm.RoomID, "advance": adm.PaymentAmount},
		})
	}
	return adm, nil
}

// Get returns one admission.
func (s *Service) Get(ctx context.Context, id int64) (*Admission, error) {
	return s.repo.Get(ctx, id)
}

// FindActiveAdmission returns the patient's open admission or ErrNotFound.
func (s *Service) FindActiveAdmission(ctx context.Context, patientID int64) (*Admission, error) {
	return s.repo.FindActiveByPatient(ctx, patientID)
}

// FindByRegistration returns the admission attached to a registration.
func (s *Service) FindByRegistration(ctx context.Context, registrationID int64) (*Admission, error) {
	return s.repo.FindByRegistration(ctx, registrationID)
}

// Discharge closes an active admission.
func (s *Service) Discharge(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Discharge(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "admission.discharge",
			Entity:   "admission",
			EntityID: strconv.FormatInt(id, 10),
		})
	}
	return nil
}

// RoomAvailability lists rooms with free-bed counts.
func (s *Service) RoomAvailability(ctx context.Context, section string) ([]RoomAvailability, error) {
	return s.repo.RoomAvailability(ctx, section)
}
