package registrations

import "time"

// Section identifies the hospital department a visit belongs to.
type Section string

const (
	SectionPediatrics  Section = "pediatrics"
	SectionDermatology Section = "dermatology"
)

// Valid reports whether the section is a known department.
func (s Section) Valid() bool {
	return s == SectionPediatrics || s == SectionDermatology
}

// VisitKind distinguishes outpatient visits from inpatient admissions.
type VisitKind string

const (
	VisitOutpatient VisitKind = "op"
	VisitInpatient  VisitKind = "ip"
)

// RegistrationStatus enumerates visit lifecycle states.
type RegistrationStatus string

const (
	StatusOpen       RegistrationStatus = "open"
	StatusDischarged RegistrationStatus = "discharged"
	StatusCancelled  RegistrationStatus = "cancelled"
)

// Registration is one patient visit in a section.
type Registration struct {
	ID           int64              `json:"id"`
	RegNo        string             `json:"reg_no"`
	PatientID    int64              `json:"patient_id"`
	DoctorID     int64              `json:"doctor_id"`
	Section      Section            `json:"section"`
	Kind         VisitKind          `json:"kind"`
	Fee          float64            `json:"fee"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registered_at"`
	CreatedBy    int64              `json:"created_by"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Doctor is a consulting physician attached to a section.
type Doctor struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Specialty string  `json:"specialty"`
	Section   Section `json:"section"`
}

// CreateRegistrationInput carries fields for opening a visit.
type CreateRegistrationInput struct {
	PatientID int64     `json:"patient_id" validate:"required,gt=0"`
	DoctorID  int64     `json:"doctor_id" validate:"required,gt=0"`
	Section   Section   `json:"section" validate:"required,oneof=pediatrics dermatology"`
	Kind      VisitKind `json:"kind" validate:"required,oneof=op ip"`
	Fee       float64   `json:"fee" validate:"gte=0"`
	CreatedBy int64     `json:"-"`
}

// ListRequest filters the registration listing.
type ListRequest struct {
	PatientID int64
	Section   Section
	Status    RegistrationStatus
	Limit     int
}
