package billing

import (
	"context"

	"github.com/arogya-his/arogya-his/internal/registrations"
)

// TxRepository exposes the operations that must share one transaction
// when a bill is finalized or edited.
type TxRepository interface {
	FindBillByRegistration(ctx context.Context, registrationID int64) (*DischargeBill, error)
	AllocateBillNumber(ctx context.Context, section registrations.Section) (string, error)
	CreateBill(ctx context.Context, bill *DischargeBill) (int64, error)
	UpdateBill(ctx context.Context, bill *DischargeBill) error
	ReplaceLineItems(ctx context.Context, billID int64, items []DischargeBillItem) error
}

// RepositoryPort defines data access methods for discharge bills.
type RepositoryPort interface {
	FindBillByRegistration(ctx context.Context, registrationID int64) (*DischargeBill, error)
	GetBill(ctx context.Context, id int64) (*DischargeBill, error)
	ListItems(ctx context.Context, billID int64) ([]DischargeBillItem, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}
