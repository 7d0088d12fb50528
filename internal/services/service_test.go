package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryUsageRepo struct {
	usage  map[int64]*Usage
	nextID int64
}

func newMemoryUsageRepo() *memoryUsageRepo {
	return &memoryUsageRepo{usage: make(map[int64]*Usage)}
}

func (r *memoryUsageRepo) bucket(registrationID int64) *Usage {
	u, ok := r.usage[registrationID]
	if !ok {
		u = &Usage{}
		r.usage[registrationID] = u
	}
	return u
}

func (r *memoryUsageRepo) CreateInjection(ctx context.Context, input LogInjectionInput) (*Injection, error) {
	r.nextID++
	inj := Injection{
		ID:             r.nextID,
		RegistrationID: input.RegistrationID,
		DrugName:       input.DrugName,
		Dose:           input.Dose,
		Route:          input.Route,
		Charge:         input.Charge,
		GivenAt:        time.Now(),
		CreatedBy:      input.CreatedBy,
	}
	u := r.bucket(input.RegistrationID)
	u.Injections = append(u.Injections, inj)
	return &inj, nil
}

func (r *memoryUsageRepo) CreateVaccination(ctx context.Context, input LogVaccinationInput) (*Vaccination, error) {
	r.nextID++
	vac := Vaccination{
		ID:             r.nextID,
		RegistrationID: input.RegistrationID,
		VaccineName:    input.VaccineName,
		DoseNumber:     input.DoseNumber,
		BatchNo:        input.BatchNo,
		Charge:         input.Charge,
		GivenAt:        time.Now(),
		CreatedBy:      input.CreatedBy,
	}
	u := r.bucket(input.RegistrationID)
	u.Vaccinations = append(u.Vaccinations, vac)
	return &vac, nil
}

func (r *memoryUsageRepo) CreateNewbornVaccination(ctx context.Context, input LogVaccinationInput) (*NewbornVaccination, error) {
	r.nextID++
	vac := NewbornVaccination{
		ID:             r.nextID,
		RegistrationID: input.RegistrationID,
		NewbornName:    input.NewbornName,
		VaccineName:    input.VaccineName,
		Charge:         input.Charge,
		GivenAt:        time.Now(),
		CreatedBy:      input.CreatedBy,
	}
	u := r.bucket(input.RegistrationID)
	u.NewbornVaccinations = append(u.NewbornVaccinations, vac)
	return &vac, nil
}

func (r *memoryUsageRepo) CreateProcedure(ctx context.Context, input LogProcedureInput) (*DermatologyProcedure, error) {
	r.nextID++
	proc := DermatologyProcedure{
		ID:             r.nextID,
		RegistrationID: input.RegistrationID,
		ProcedureName:  input.ProcedureName,
		Sessions:       input.Sessions,
		Charge:         input.Charge,
		GivenAt:        time.Now(),
		CreatedBy:      input.CreatedBy,
	}
	u := r.bucket(input.RegistrationID)
	u.DermatologyProcedures = append(u.DermatologyProcedures, proc)
	return &proc, nil
}

func (r *memoryUsageRepo) ListUsage(ctx context.Context, registrationID int64) (*Usage, error) {
	copied := *r.bucket(registrationID)
	return &copied, nil
}

func TestLogInjection(t *testing.T) {
	svc := NewService(newMemoryUsageRepo())

	inj, err := svc.LogInjection(context.Background(), LogInjectionInput{
		RegistrationID: 10,
		DrugName:       "Ceftriaxone",
		Dose:           "500mg",
		Route:          "IV",
		Charge:         500,
	})
	require.NoError(t, err)
	require.Equal(t, "Ceftriaxone", inj.DrugName)
	require.Equal(t, 500.0, inj.Charge)
}

func TestLogInjectionValidation(t *testing.T) {
	svc := NewService(newMemoryUsageRepo())
	ctx := context.Background()

	_, err := svc.LogInjection(ctx, LogInjectionInput{DrugName: "Ceftriaxone"})
	require.EqualError(t, err, "registration ID required")

	_, err = svc.LogInjection(ctx, LogInjectionInput{RegistrationID: 10, DrugName: "  "})
	require.EqualError(t, err, "drug name required")

	_, err = svc.LogInjection(ctx, LogInjectionInput{RegistrationID: 10, DrugName: "Ceftriaxone", Charge: -1})
	require.EqualError(t, err, "charge cannot be negative")
}

func TestLogVaccinationRoutesNewbornEntries(t *testing.T) {
	repo := newMemoryUsageRepo()
	svc := NewService(repo)
	ctx := context.Background()

	out, err := svc.LogVaccination(ctx, LogVaccinationInput{
		RegistrationID: 10,
		VaccineName:    "Hepatitis B",
		DoseNumber:     1,
		Charge:         900,
	})
	require.NoError(t, err)
	require.IsType(t, &Vaccination{}, out)

	out, err = svc.LogVaccination(ctx, LogVaccinationInput{
		RegistrationID: 10,
		VaccineName:    "BCG",
		Charge:         350,
		Newborn:        true,
		NewbornName:    "Baby Sharma",
	})
	require.NoError(t, err)
	require.IsType(t, &NewbornVaccination{}, out)

	usage, err := svc.ListUsage(ctx, 10)
	require.NoError(t, err)
	require.Len(t, usage.Vaccinations, 1)
	require.Len(t, usage.NewbornVaccinations, 1)
	require.Equal(t, "Baby Sharma", usage.NewbornVaccinations[0].NewbornName)
}

func TestLogVaccinationNewbornRequiresName(t *testing.T) {
	svc := NewService(newMemoryUsageRepo())

	_, err := svc.LogVaccination(context.Background(), LogVaccinationInput{
		RegistrationID: 10,
		VaccineName:    "BCG",
		Newborn:        true,
	})
	require.EqualError(t, err, "newborn name required")
}

func TestLogProcedureValidation(t *testing.T) {
	svc := NewService(newMemoryUsageRepo())
	ctx := context.Background()

	proc, err := svc.LogProcedure(ctx, LogProcedureInput{
		RegistrationID: 20,
		ProcedureName:  "Cryotherapy",
		Sessions:       3,
		Charge:         1200,
	})
	require.NoError(t, err)
	require.Equal(t, 3, proc.Sessions)

	_, err = svc.LogProcedure(ctx, LogProcedureInput{RegistrationID: 20, ProcedureName: "Cryotherapy", Sessions: 0})
	require.EqualError(t, err, "sessions must be at least 1")
}

func TestListUsageBundlesEverything(t *testing.T) {
	svc := NewService(newMemoryUsageRepo())
	ctx := context.Background()

	_, err := svc.LogInjection(ctx, LogInjectionInput{RegistrationID: 10, DrugName: "Ceftriaxone", Charge: 500})
	require.NoError(t, err)
	_, err = svc.LogVaccination(ctx, LogVaccinationInput{RegistrationID: 10, VaccineName: "Hepatitis B", Charge: 900})
	require.NoError(t, err)
	_, err = svc.LogProcedure(ctx, LogProcedureInput{RegistrationID: 10, ProcedureName: "Cryotherapy", Sessions: 1, Charge: 1200})
	require.NoError(t, err)

	usage, err := svc.ListUsage(ctx, 10)
	require.NoError(t, err)
	require.Len(t, usage.Injections, 1)
	require.Len(t, usage.Vaccinations, 1)
	require.Len(t, usage.DermatologyProcedures, 1)

	_, err = svc.ListUsage(ctx, 0)
	require.EqualError(t, err, "registration ID required")
}
