package registrations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arogya-his/arogya-his/internal/shared"
)

type memoryRegistrationRepo struct {
	regs      map[int64]*Registration
	doctors   []Doctor
	sequences map[Section]int64
	nextID    int64
}

func newMemoryRegistrationRepo() *memoryRegistrationRepo {
	return &memoryRegistrationRepo{
		regs:      make(map[int64]*Registration),
		sequences: make(map[Section]int64),
	}
}

func (r *memoryRegistrationRepo) GenerateNumber(ctx context.Context, section Section) (string, error) {
	prefix := "P"
	if section == SectionDermatology {
		prefix = "D"
	}
	r.sequences[section]++
	return fmt.Sprintf("REG-%s-%04d", prefix, r.sequences[section]), nil
}

func (r *memoryRegistrationRepo) Create(ctx context.Context, regNo string, input CreateRegistrationInput) (*Registration, error) {
	r.nextID++
	reg := &Registration{
		ID:           r.nextID,
		RegNo:        regNo,
		PatientID:    input.PatientID,
		DoctorID:     input.DoctorID,
		Section:      input.Section,
		Kind:         input.Kind,
		Fee:          input.Fee,
		Status:       StatusOpen,
		RegisteredAt: time.Now(),
		CreatedBy:    input.CreatedBy,
	}
	r.regs[reg.ID] = reg
	copied := *reg
	return &copied, nil
}

func (r *memoryRegistrationRepo) Get(ctx context.Context, id int64) (*Registration, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *reg
	return &copied, nil
}

func (r *memoryRegistrationRepo) List(ctx context.Context, req ListRequest) ([]Registration, error) {
	var out []Registration
	for _, reg := range r.regs {
		if req.PatientID != 0 && reg.PatientID != req.PatientID {
			continue
		}
		if req.Section != "" && reg.Section != req.Section {
			continue
		}
		if req.Status != "" && reg.Status != req.Status {
			continue
		}
		out = append(out, *reg)
	}
	return out, nil
}

func (r *memoryRegistrationRepo) SetStatus(ctx context.Context, id int64, status RegistrationStatus) error {
	reg, ok := r.regs[id]
	if !ok {
		return shared.ErrNotFound
	}
	reg.Status = status
	return nil
}

func (r *memoryRegistrationRepo) ListDoctors(ctx context.Context, section Section) ([]Doctor, error) {
	var out []Doctor
	for _, d := range r.doctors {
		if d.Section == section {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestOpenAllocatesSectionScopedNumbers(t *testing.T) {
	repo := newMemoryRegistrationRepo()
	svc := NewService(repo, nil)

	ped, err := svc.Open(context.Background(), CreateRegistrationInput{
		PatientID: 1, DoctorID: 1, Section: SectionPediatrics, Kind: VisitInpatient, Fee: 5000,
	})
	require.NoError(t, err)
	require.Equal(t, "REG-P-0001", ped.RegNo)
	require.Equal(t, StatusOpen, ped.Status)

	der, err := svc.Open(context.Background(), CreateRegistrationInput{
		PatientID: 2, DoctorID: 2, Section: SectionDermatology, Kind: VisitOutpatient, Fee: 800,
	})
	require.NoError(t, err)
	require.Equal(t, "REG-D-0001", der.RegNo)
}

func TestOpenValidation(t *testing.T) {
	svc := NewService(newMemoryRegistrationRepo(), nil)
	ctx := context.Background()

	_, err := svc.Open(ctx, CreateRegistrationInput{DoctorID: 1, Section: SectionPediatrics, Kind: VisitOutpatient})
	require.EqualError(t, err, "patient ID required")

	_, err = svc.Open(ctx, CreateRegistrationInput{PatientID: 1, Section: SectionPediatrics, Kind: VisitOutpatient})
	require.EqualError(t, err, "doctor ID required")

	_, err = svc.Open(ctx, CreateRegistrationInput{PatientID: 1, DoctorID: 1, Section: "cardiology", Kind: VisitOutpatient})
	require.EqualError(t, err, "unknown section")

	_, err = svc.Open(ctx, CreateRegistrationInput{PatientID: 1, DoctorID: 1, Section: SectionPediatrics, Kind: VisitOutpatient, Fee: -1})
	require.EqualError(t, err, "fee cannot be negative")
}

func TestCancelOnlyOpenRegistrations(t *testing.T) {
	repo := newMemoryRegistrationRepo()
	svc := NewService(repo, nil)

	reg, err := svc.Open(context.Background(), CreateRegistrationInput{
		PatientID: 1, DoctorID: 1, Section: SectionPediatrics, Kind: VisitOutpatient, Fee: 500,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), reg.ID, 7))

	got, err := svc.Get(context.Background(), reg.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)

	err = svc.Cancel(context.Background(), reg.ID, 7)
	require.EqualError(t, err, "only open registrations can be cancelled")
}

func TestMarkDischarged(t *testing.T) {
	repo := newMemoryRegistrationRepo()
	svc := NewService(repo, nil)

	reg, err := svc.Open(context.Background(), CreateRegistrationInput{
		PatientID: 1, DoctorID: 1, Section: SectionPediatrics, Kind: VisitInpatient, Fee: 5000,
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkDischarged(context.Background(), reg.ID))

	got, err := svc.Get(context.Background(), reg.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDischarged, got.Status)
}

func TestDoctorsFiltersBySection(t *testing.T) {
	repo := newMemoryRegistrationRepo()
	repo.doctors = []Doctor{
		{ID: 1, Name: "Dr. Rao", Specialty: "Pediatrics", Section: SectionPediatrics},
		{ID: 2, Name: "Dr. Nair", Specialty: "Dermatology", Section: SectionDermatology},
	}
	svc := NewService(repo, nil)

	docs, err := svc.Doctors(context.Background(), SectionDermatology)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "Dr. Nair", docs[0].Name)
}
