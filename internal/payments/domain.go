package payments

import "time"

// Method labels how money changed hands. Labels only, no gateway involved.
type Method string

const (
	MethodCash Method = "cash"
	MethodUPI  Method = "upi"
)

// Valid reports whether the method is a known label.
func (m Method) Valid() bool {
	return m == MethodCash || m == MethodUPI
}

// Direction distinguishes money received from money paid back.
type Direction string

const (
	DirectionPayment Direction = "payment"
	DirectionRefund  Direction = "refund"
)

// Payment is one receipt or refund row recorded against a discharge bill.
type Payment struct {
	ID         int64     `json:"id"`
	BillID     int64     `json:"bill_id"`
	Direction  Direction `json:"direction"`
	Amount     float64   `json:"amount"`
	Method     Method    `json:"method"`
	Note       string    `json:"note,omitempty"`
	RecordedBy int64     `json:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RecordPaymentInput carries fields for receiving money against a bill.
type RecordPaymentInput struct {
	BillID     int64   `json:"bill_id" validate:"required,gt=0"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Method     Method  `json:"method" validate:"required"`
	Note       string  `json:"note"`
	RecordedBy int64   `json:"-"`
}

// RecordRefundInput carries fields for paying money back to the patient.
type RecordRefundInput struct {
	BillID     int64   `json:"bill_id" validate:"required,gt=0"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Method     Method  `json:"method" validate:"required"`
	Note       string  `json:"note"`
	RecordedBy int64   `json:"-"`
}
