package patients

import "time"

// Patient is a person registered with the hospital.
type Patient struct {
	ID        int64      `json:"id"`
	MRN       string     `json:"mrn"`
	Name      string     `json:"name"`
	Gender    string     `json:"gender"`
	DOB       *time.Time `json:"dob,omitempty"`
	Phone     string     `json:"phone"`
	Guardian  string     `json:"guardian,omitempty"`
	Address   string     `json:"address,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreatePatientInput carries fields for registering a patient.
type CreatePatientInput struct {
	Name     string     `json:"name" validate:"required,min=2"`
	Gender   string     `json:"gender" validate:"required,oneof=male female other"`
	DOB      *time.Time `json:"dob"`
	Phone    string     `json:"phone" validate:"required,min=6"`
	Guardian string     `json:"guardian"`
	Address  string     `json:"address"`
}

// UpdatePatientInput carries editable fields.
type UpdatePatientInput struct {
	Name     string     `json:"name" validate:"required,min=2"`
	Gender   string     `json:"gender" validate:"required,oneof=male female other"`
	DOB      *time.Time `json:"dob"`
	Phone    string     `json:"phone" validate:"required,min=6"`
	Guardian string     `json:"guardian"`
	Address  string     `json:"address"`
}

// SearchRequest filters the patient listing.
type SearchRequest struct {
	Query   string
	Page    int
	PerPage int
}
