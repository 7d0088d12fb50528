package payments

import (
	"context"

	"github.com/arogya-his/arogya-his/internal/billing"
)

// TxRepository exposes the operations that must share one transaction when a
// payment or refund settles against the bill.
type TxRepository interface {
	GetBillForUpdate(ctx context.Context, billID int64) (*billing.DischargeBill, error)
	UpdateBillSettlement(ctx context.Context, bill *billing.DischargeBill) error
	CreatePayment(ctx context.Context, p *Payment) (int64, error)
}

// RepositoryPort defines data access methods for payments.
type RepositoryPort interface {
	ListByBill(ctx context.Context, billID int64) ([]Payment, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}
