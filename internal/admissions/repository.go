package admissions

import "context"

// RepositoryPort defines data access methods for admissions.
type RepositoryPort interface {
	Create(ctx context.Context, input AdmitInput) (*Admission, error)
	Get(ctx context.Context, id int64) (*Admission, error)
	FindActiveByPatient(ctx context.Context, patientID int64) (*Admission, error)
	FindByRegistration(ctx context.Context, registrationID int64) (*Admission, error)
	Discharge(ctx context.Context, id int64) error
	RoomAvailability(ctx context.Context, section string) ([]RoomAvailability, error)
}
