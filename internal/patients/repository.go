package patients

import "context"

// RepositoryPort defines data access methods for patients.
type RepositoryPort interface {
	Create(ctx context.Context, mrn string, input CreatePatientInput) (*Patient, error)
	Update(ctx context.Context, id int64, input UpdatePatientInput) (*Patient, error)
	Get(ctx context.Context, id int64) (*Patient, error)
	Search(ctx context.Context, req SearchRequest) ([]Patient, int, error)
	GenerateMRN(ctx context.Context) (string, error)
}
