package billing

import (
	"math"
	"time"

	"github.com/arogya-his/arogya-his/internal/registrations"
)

// BillStatus enumerates discharge bill lifecycle states.
type BillStatus string

const (
	BillStatusDraft     BillStatus = "draft"
	BillStatusFinalized BillStatus = "finalized"
)

// BillableLineItem is one chargeable row on a discharge bill draft.
// Items sourced from a recorded service carry a reference and keep their
// category locked; manually added items are freely editable.
type BillableLineItem struct {
	Category      string  `json:"category" validate:"required"`
	Description   string  `json:"description"`
	Quantity      int     `json:"quantity" validate:"required,gte=1"`
	Rate          float64 `json:"rate" validate:"gte=0"`
	Amount        float64 `json:"amount"`
	ReferenceID   *int64  `json:"reference_id,omitempty"`
	ReferenceType string  `json:"reference_type,omitempty"`
}

// Normalize recomputes the amount from quantity and rate.
func (li *BillableLineItem) Normalize() {
	li.Amount = float64(li.Quantity) * li.Rate
}

// Locked reports whether the item came from a recorded service entry.
func (li BillableLineItem) Locked() bool {
	return li.ReferenceID != nil
}

// DischargeBill is the persisted bill header, one per registration.
type DischargeBill struct {
	ID                int64                 `json:"id"`
	BillNo            string                `json:"bill_no"`
	Section           registrations.Section `json:"section"`
	PatientID         int64                 `json:"patient_id"`
	RegistrationID    int64                 `json:"registration_id"`
	DoctorID          int64                 `json:"doctor_id"`
	AdmissionDate     time.Time             `json:"admission_date"`
	DischargeDate     time.Time             `json:"discharge_date"`
	TotalAmount       float64               `json:"total_amount"`
	PaidAmount        float64               `json:"paid_amount"`
	OutstandingAmount float64               `json:"outstanding_amount"`
	RefundableAmount  float64               `json:"refundable_amount"`
	IPJoiningAmount   float64               `json:"ip_joining_amount"`
	Status            BillStatus            `json:"status"`
	CreatedBy         int64                 `json:"created_by"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// Resettle recomputes outstanding and refundable from the stored total,
// paid and advance figures. Used after a payment or refund changes PaidAmount.
func (b *DischargeBill) Resettle() {
	receivable := b.TotalAmount - b.IPJoiningAmount
	received := b.PaidAmount - b.IPJoiningAmount
	b.OutstandingAmount = math.Max(0, receivable-received)
	b.RefundableAmount = math.Max(0, received-math.Max(0, receivable))
}

// DischargeBillItem is a persisted line item row under a bill header.
type DischargeBillItem struct {
	ID            int64   `json:"id"`
	BillID        int64   `json:"bill_id"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	Quantity      int     `json:"quantity"`
	Rate          float64 `json:"rate"`
	Amount        float64 `json:"amount"`
	ReferenceID   *int64  `json:"reference_id,omitempty"`
	ReferenceType string  `json:"reference_type,omitempty"`
}

// CategoryTotal is one display bucket of the summary, in first-occurrence order.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Summary is the reconciliation result shown to the cashier before saving.
type Summary struct {
	CategoryTotals   []CategoryTotal `json:"category_totals"`
	TotalAmount      float64         `json:"total_amount"`
	IPJoiningAmount  float64         `json:"ip_joining_amount"`
	AmountReceivable float64         `json:"amount_receivable"`
	PaidAmount       float64         `json:"paid_amount"`
	AmountReceived   float64         `json:"amount_received"`
	Outstanding      float64         `json:"outstanding"`
	Refundable       float64         `json:"refundable"`
	ExistingBillNo   string          `json:"existing_bill_no,omitempty"`
}

// SaveBillInput carries everything needed to finalize (or re-finalize) a bill.
type SaveBillInput struct {
	RegistrationID int64                 `json:"registration_id" validate:"required,gt=0"`
	PatientID      int64                 `json:"patient_id" validate:"required,gt=0"`
	DoctorID       int64                 `json:"doctor_id" validate:"required,gt=0"`
	Section        registrations.Section `json:"section" validate:"required"`
	AdmissionDate  time.Time             `json:"admission_date"`
	DischargeDate  time.Time             `json:"discharge_date"`
	AdvanceAmount  float64               `json:"advance_amount" validate:"gte=0"`
	LineItems      []BillableLineItem    `json:"line_items" validate:"required,min=1,dive"`
	CreatedBy      int64                 `json:"-"`
}

// ComputeRequest is the preview payload: same context, nothing persisted.
type ComputeRequest struct {
	RegistrationID int64              `json:"registration_id" validate:"required,gt=0"`
	AdvanceAmount  float64            `json:"advance_amount" validate:"gte=0"`
	LineItems      []BillableLineItem `json:"line_items" validate:"required,min=1,dive"`
}
