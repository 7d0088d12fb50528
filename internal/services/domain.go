package services

import "time"

// Kind tags each service record variant.
type Kind string

const (
	KindInjection            Kind = "injection"
	KindVaccination          Kind = "vaccination"
	KindNewbornVaccination   Kind = "newborn_vaccination"
	KindDermatologyProcedure Kind = "dermatology_procedure"
)

// Injection is a drug administration entry.
type Injection struct {
	ID             int64     `json:"id"`
	RegistrationID int64     `json:"registration_id"`
	DrugName       string    `json:"drug_name"`
	Dose           string    `json:"dose"`
	Route          string    `json:"route"`
	Charge         float64   `json:"charge"`
	GivenAt        time.Time `json:"given_at"`
	CreatedBy      int64     `json:"created_by"`
}

// Vaccination is a scheduled-immunisation entry.
type Vaccination struct {
	ID             int64     `json:"id"`
	RegistrationID int64     `json:"registration_id"`
	VaccineName    string    `json:"vaccine_name"`
	DoseNumber     int       `json:"dose_number"`
	BatchNo        string    `json:"batch_no"`
	Charge         float64   `json:"charge"`
	GivenAt        time.Time `json:"given_at"`
	CreatedBy      int64     `json:"created_by"`
}

// NewbornVaccination is an immunisation given to a newborn during the mother's stay.
type NewbornVaccination struct {
	ID             int64     `json:"id"`
	RegistrationID int64     `json:"registration_id"`
	NewbornName    string    `json:"newborn_name"`
	VaccineName    string    `json:"vaccine_name"`
	Charge         float64   `json:"charge"`
	GivenAt        time.Time `json:"given_at"`
	CreatedBy      int64     `json:"created_by"`
}

// DermatologyProcedure is a dermatology treatment session entry.
type DermatologyProcedure struct {
	ID             int64     `json:"id"`
	RegistrationID int64     `json:"registration_id"`
	ProcedureName  string    `json:"procedure_name"`
	Sessions       int       `json:"sessions"`
	Charge         float64   `json:"charge"`
	GivenAt        time.Time `json:"given_at"`
	CreatedBy      int64     `json:"created_by"`
}

// Usage bundles every billable service recorded under one registration.
type Usage struct {
	Injections            []Injection            `json:"injections"`
	Vaccinations          []Vaccination          `json:"vaccinations"`
	NewbornVaccinations   []NewbornVaccination   `json:"newborn_vaccinations"`
	DermatologyProcedures []DermatologyProcedure `json:"dermatology_procedures"`
}

// LogInjectionInput carries fields for recording an injection.
type LogInjectionInput struct {
	RegistrationID int64   `json:"registration_id" validate:"required,gt=0"`
	DrugName       string  `json:"drug_name" validate:"required"`
	Dose           string  `json:"dose"`
	Route          string  `json:"route"`
	Charge         float64 `json:"charge" validate:"gte=0"`
	CreatedBy      int64   `json:"-"`
}

// LogVaccinationInput carries fields for recording a vaccination.
type LogVaccinationInput struct {
	RegistrationID int64   `json:"registration_id" validate:"required,gt=0"`
	VaccineName    string  `json:"vaccine_name" validate:"required"`
	DoseNumber     int     `json:"dose_number" validate:"gte=0"`
	BatchNo        string  `json:"batch_no"`
	Charge         float64 `json:"charge" validate:"gte=0"`
	Newborn        bool    `json:"newborn"`
	NewbornName    string  `json:"newborn_name"`
	CreatedBy      int64   `json:"-"`
}

// LogProcedureInput carries fields for recording a dermatology procedure.
type LogProcedureInput struct {
	RegistrationID int64   `json:"registration_id" validate:"required,gt=0"`
	ProcedureName  string  `json:"procedure_name" validate:"required"`
	Sessions       int     `json:"sessions" validate:"gte=1"`
	Charge         float64 `json:"charge" validate:"gte=0"`
	CreatedBy      int64   `json:"-"`
}
