package admissions

import "time"

// AdmissionStatus enumerates inpatient admission states.
type AdmissionStatus string

const (
	StatusActive     AdmissionStatus = "active"
	StatusDischarged AdmissionStatus = "discharged"
)

// Admission is an inpatient stay tied to a registration.
type Admission struct {
	ID             int64           `json:"id"`
	RegistrationID int64           `json:"registration_id"`
	PatientID      int64           `json:"patient_id"`
	RoomID         int64           `json:"room_id"`
	PaymentAmount  float64         `json:"payment_amount"`
	Status         AdmissionStatus `json:"status"`
	AdmittedAt     time.Time       `json:"admitted_at"`
	DischargedAt   *time.Time      `json:"discharged_at,omitempty"`
	CreatedBy      int64           `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Room is an inpatient room with a fixed bed capacity.
type Room struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Section   string  `json:"section"`
	Capacity  int     `json:"capacity"`
	DailyRate float64 `json:"daily_rate"`
}

// RoomAvailability pairs a room with its current free-bed count.
type RoomAvailability struct {
	Room
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}

// AdmitInput carries fields for opening an admission.
type AdmitInput struct {
	RegistrationID int64   `json:"registration_id" validate:"required,gt=0"`
	PatientID      int64   `json:"patient_id" validate:"required,gt=0"`
	RoomID         int64   `json:"room_id" validate:"required,gt=0"`
	PaymentAmount  float64 `json:"payment_amount" validate:"gte=0"`
	CreatedBy      int64   `json:"-"`
}
