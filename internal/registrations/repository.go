package registrations

import "context"

// RepositoryPort defines data access methods for registrations.
type RepositoryPort interface {
	Create(ctx context.Context, regNo string, input CreateRegistrationInput) (*Registration, error)
	Get(ctx context.Context, id int64) (*Registration, error)
	List(ctx context.Context, req ListRequest) ([]Registration, error)
	SetStatus(ctx context.Context, id int64, status RegistrationStatus) error
	GenerateNumber(ctx context.Context, section Section) (string, error)
	ListDoctors(ctx context.Context, section Section) ([]Doctor, error)
}
