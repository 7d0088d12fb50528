package payments

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/arogya-his/arogya-his/internal/shared"
)

var (
	// ErrInvalidMethod rejects unknown payment method labels.
	ErrInvalidMethod = errors.New("payments: invalid method")
	// ErrRefundExceedsRefundable rejects refunds larger than what the bill owes back.
	ErrRefundExceedsRefundable = errors.New("payments: refund exceeds refundable amount")
)

// Service records payments and refunds and keeps the bill settlement
// figures consistent with them.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// RecordPayment receives money against a bill. The payment row and the
// updated bill figures commit in the same transaction.
func (s *Service) RecordPayment(ctx context.Context, input RecordPaymentInput) (*Payment, error) {
	if !input.Method.Valid() {
		return nil, ErrInvalidMethod
	}
	if input.Amount <= 0 {
		return nil, errors.New("payments: amount must be positive")
	}

	payment := &Payment{
		BillID:     input.BillID,
		Direction:  DirectionPayment,
		Amount:     input.Amount,
		Method:     input.Method,
		Note:       input.Note,
		RecordedBy: input.RecordedBy,
		RecordedAt: time.Now(),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		bill, err := tx.GetBillForUpdate(ctx, input.BillID)
		if err != nil {
			return err
		}
		bill.PaidAmount += input.Amount
		bill.Resettle()
		bill.UpdatedAt = payment.RecordedAt
		if err := tx.UpdateBillSettlement(ctx, bill); err != nil {
			return err
		}
		id, err := tx.CreatePayment(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "payment.record", payment)
	return payment, nil
}

// RecordRefund pays money back to the patient. The amount cannot exceed the
// bill's current refundable figure.
func (s *Service) RecordRefund(ctx context.Context, input RecordRefundInput) (*Payment, error) {
	if !input.Method.Valid() {
		return nil, ErrInvalidMethod
	}
	if input.Amount <= 0 {
		return nil, errors.New("payments: amount must be positive")
	}

	refund := &Payment{
		BillID:     input.BillID,
		Direction:  DirectionRefund,
		Amount:     input.Amount,
		Method:     input.Method,
		Note:       input.Note,
		RecordedBy: input.RecordedBy,
		RecordedAt: time.Now(),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		bill, err := tx.GetBillForUpdate(ctx, input.BillID)
		if err != nil {
			return err
		}
		if input.Amount > bill.RefundableAmount {
			return ErrRefundExceedsRefundable
		}
		bill.PaidAmount -= input.Amount
		bill.Resettle()
		bill.UpdatedAt = refund.RecordedAt
		if err := tx.UpdateBillSettlement(ctx, bill); err != nil {
			return err
		}
		id, err := tx.CreatePayment(ctx, refund)
		if err != nil {
			return err
		}
		refund.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "payment.refund", refund)
	return refund, nil
}

// ListByBill returns every payment and refund recorded against a bill.
func (s *Service) ListByBill(ctx context.Context, billID int64) ([]Payment, error) {
	return s.repo.ListByBill(ctx, billID)
}

func (s *Service) record(ctx context.Context, action string, p *Payment) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  p.RecordedBy,
		Action:   action,
		Entity:   "bill_payment",
		EntityID: strconv.FormatInt(p.ID, 10),
		Meta: map[string]any{
			"bill_id": p.BillID,
			"amount":  p.Amount,
			"method":  string(p.Method),
		},
	})
}
