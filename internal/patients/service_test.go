package patients

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arogya-his/arogya-his/internal/shared"
)

type memoryPatientRepo struct {
	patients map[int64]*Patient
	nextID   int64
	nextMRN  int64
}

func newMemoryPatientRepo() *memoryPatientRepo {
	return &memoryPatientRepo{patients: make(map[int64]*Patient)}
}

func (r *memoryPatientRepo) GenerateMRN(ctx context.Context) (string, error) {
	r.nextMRN++
	return fmt.Sprintf("MRN-%06d", r.nextMRN), nil
}

func (r *memoryPatientRepo) Create(ctx context.Context, mrn string, input CreatePatientInput) (*Patient, error) {
	r.nextID++
	p := &Patient{
		ID:        r.nextID,
		MRN:       mrn,
		Name:      input.Name,
		Gender:    input.Gender,
		DOB:       input.DOB,
		Phone:     input.Phone,
		Guardian:  input.Guardian,
		Address:   input.Address,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.patients[p.ID] = p
	copied := *p
	return &copied, nil
}

func (r *memoryPatientRepo) Update(ctx context.Context, id int64, input UpdatePatientInput) (*Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	p.Name = input.Name
	p.Gender = input.Gender
	p.DOB = input.DOB
	p.Phone = input.Phone
	p.Guardian = input.Guardian
	p.Address = input.Address
	p.UpdatedAt = time.Now()
	copied := *p
	return &copied, nil
}

func (r *memoryPatientRepo) Get(ctx context.Context, id int64) (*Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memoryPatientRepo) Search(ctx context.Context, req SearchRequest) ([]Patient, int, error) {
	var out []Patient
	for _, p := range r.patients {
		if req.Query == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(req.Query)) ||
			strings.Contains(p.Phone, req.Query) || strings.Contains(p.MRN, req.Query) {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func TestRegisterAllocatesMRN(t *testing.T) {
	repo := newMemoryPatientRepo()
	svc := NewService(repo)

	first, err := svc.Register(context.Background(), CreatePatientInput{
		Name:   "Meera Sharma",
		Gender: "female",
		Phone:  "9876543210",
	})
	require.NoError(t, err)
	require.Equal(t, "MRN-000001", first.MRN)

	second, err := svc.Register(context.Background(), CreatePatientInput{
		Name:   "Arjun Pillai",
		Gender: "male",
		Phone:  "9876500000",
	})
	require.NoError(t, err)
	require.Equal(t, "MRN-000002", second.MRN)
	require.NotEqual(t, first.ID, second.ID)
}

func TestRegisterRejectsBlankName(t *testing.T) {
	svc := NewService(newMemoryPatientRepo())

	_, err := svc.Register(context.Background(), CreatePatientInput{Name: "   ", Gender: "female", Phone: "9876543210"})
	require.EqualError(t, err, "patient name required")
}

func TestUpdateKeepsMRN(t *testing.T) {
	repo := newMemoryPatientRepo()
	svc := NewService(repo)

	p, err := svc.Register(context.Background(), CreatePatientInput{
		Name:   "Meera Sharma",
		Gender: "female",
		Phone:  "9876543210",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), p.ID, UpdatePatientInput{
		Name:   "Meera S. Sharma",
		Gender: "female",
		Phone:  "9876543211",
	})
	require.NoError(t, err)
	require.Equal(t, p.MRN, updated.MRN)
	require.Equal(t, "Meera S. Sharma", updated.Name)
	require.Equal(t, "9876543211", updated.Phone)
}

func TestUpdateUnknownPatient(t *testing.T) {
	svc := NewService(newMemoryPatientRepo())

	_, err := svc.Update(context.Background(), 99, UpdatePatientInput{Name: "Nobody", Gender: "other", Phone: "1234567"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSearchTrimsQuery(t *testing.T) {
	repo := newMemoryPatientRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), CreatePatientInput{
		Name:   "Meera Sharma",
		Gender: "female",
		Phone:  "9876543210",
	})
	require.NoError(t, err)

	results, total, err := svc.Search(context.Background(), SearchRequest{Query: "  sharma  ", Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, results, 1)
	require.Equal(t, "Meera Sharma", results[0].Name)
}
