package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arogya-his/arogya-his/internal/billing"
)

type memoryPaymentRepo struct {
	bill     *billing.DischargeBill
	payments []Payment
	nextID   int64
}

func (r *memoryPaymentRepo) ListByBill(ctx context.Context, billID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.BillID == billID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryPaymentRepo) GetBillForUpdate(ctx context.Context, billID int64) (*billing.DischargeBill, error) {
	if r.bill == nil || r.bill.ID != billID {
		return nil, billing.ErrBillNotFound
	}
	copied := *r.bill
	return &copied, nil
}

func (r *memoryPaymentRepo) UpdateBillSettlement(ctx context.Context, bill *billing.DischargeBill) error {
	copied := *bill
	r.bill = &copied
	return nil
}

func (r *memoryPaymentRepo) CreatePayment(ctx context.Context, p *Payment) (int64, error) {
	r.nextID++
	p.ID = r.nextID
	r.payments = append(r.payments, *p)
	return r.nextID, nil
}

func outstandingBill() *billing.DischargeBill {
	return &billing.DischargeBill{
		ID:                1,
		BillNo:            "PED-2608-0001",
		TotalAmount:       5500,
		PaidAmount:        5000,
		OutstandingAmount: 500,
		IPJoiningAmount:   5000,
		Status:            billing.BillStatusFinalized,
	}
}

func TestRecordPaymentSettlesOutstanding(t *testing.T) {
	repo := &memoryPaymentRepo{bill: outstandingBill()}
	svc := NewService(repo, nil)

	p, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		BillID: 1, Amount: 500, Method: MethodCash, RecordedBy: 2,
	})
	require.NoError(t, err)
	require.Equal(t, DirectionPayment, p.Direction)
	require.Equal(t, 5500.0, repo.bill.PaidAmount)
	require.Equal(t, 0.0, repo.bill.OutstandingAmount)
	require.Equal(t, 0.0, repo.bill.RefundableAmount)
}

func TestRecordPaymentOverpaymentBecomesRefundable(t *testing.T) {
	repo := &memoryPaymentRepo{bill: outstandingBill()}
	svc := NewService(repo, nil)

	_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		BillID: 1, Amount: 800, Method: MethodUPI, RecordedBy: 2,
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, repo.bill.OutstandingAmount)
	require.Equal(t, 300.0, repo.bill.RefundableAmount)
}

func TestRecordPaymentValidation(t *testing.T) {
	repo := &memoryPaymentRepo{bill: outstandingBill()}
	svc := NewService(repo, nil)

	_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{BillID: 1, Amount: 100, Method: "cheque"})
	require.ErrorIs(t, err, ErrInvalidMethod)

	_, err = svc.RecordPayment(context.Background(), RecordPaymentInput{BillID: 1, Amount: 0, Method: MethodCash})
	require.ErrorContains(t, err, "positive")

	_, err = svc.RecordPayment(context.Background(), RecordPaymentInput{BillID: 99, Amount: 100, Method: MethodCash})
	require.ErrorIs(t, err, billing.ErrBillNotFound)
	require.Empty(t, repo.payments)
}

func TestRecordRefundWithinRefundable(t *testing.T) {
	bill := outstandingBill()
	bill.PaidAmount = 5800
	bill.Resettle()
	repo := &memoryPaymentRepo{bill: bill}
	svc := NewService(repo, nil)

	refund, err := svc.RecordRefund(context.Background(), RecordRefundInput{
		BillID: 1, Amount: 300, Method: MethodCash, RecordedBy: 2,
	})
	require.NoError(t, err)
	require.Equal(t, DirectionRefund, refund.Direction)
	require.Equal(t, 5500.0, repo.bill.PaidAmount)
	require.Equal(t, 0.0, repo.bill.RefundableAmount)
	require.Equal(t, 0.0, repo.bill.OutstandingAmount)
}

func TestRecordRefundCannotExceedRefundable(t *testing.T) {
	bill := outstandingBill()
	bill.PaidAmount = 5600
	bill.Resettle()
	repo := &memoryPaymentRepo{bill: bill}
	svc := NewService(repo, nil)

	_, err := svc.RecordRefund(context.Background(), RecordRefundInput{
		BillID: 1, Amount: 200, Method: MethodCash,
	})
	require.ErrorIs(t, err, ErrRefundExceedsRefundable)
	require.Equal(t, 5600.0, repo.bill.PaidAmount)
	require.Empty(t, repo.payments)
}

func TestListByBillIncludesBothDirections(t *testing.T) {
	repo := &memoryPaymentRepo{bill: outstandingBill()}
	svc := NewService(repo, nil)

	_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{BillID: 1, Amount: 800, Method: MethodCash})
	require.NoError(t, err)
	_, err = svc.RecordRefund(context.Background(), RecordRefundInput{BillID: 1, Amount: 300, Method: MethodCash})
	require.NoError(t, err)

	list, err := svc.ListByBill(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, DirectionPayment, list[0].Direction)
	require.Equal(t, DirectionRefund, list[1].Direction)
}
