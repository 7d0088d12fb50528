package billing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arogya-his/arogya-his/internal/registrations"
	"github.com/arogya-his/arogya-his/internal/services"
)

type memoryBillRepo struct {
	bills      map[int64]*DischargeBill
	items      map[int64][]DischargeBillItem
	sequences  map[string]int64
	nextBillID int64
	failTx     error
}

func newMemoryBillRepo() *memoryBillRepo {
	return &memoryBillRepo{
		bills:     make(map[int64]*DischargeBill),
		items:     make(map[int64][]DischargeBillItem),
		sequences: make(map[string]int64),
	}
}

func (r *memoryBillRepo) FindBillByRegistration(ctx context.Context, registrationID int64) (*DischargeBill, error) {
	for _, b := range r.bills {
		if b.RegistrationID == registrationID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, ErrBillNotFound
}

func (r *memoryBillRepo) GetBill(ctx context.Context, id int64) (*DischargeBill, error) {
	b, ok := r.bills[id]
	if !ok {
		return nil, ErrBillNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memoryBillRepo) ListItems(ctx context.Context, billID int64) ([]DischargeBillItem, error) {
	return r.items[billID], nil
}

func (r *memoryBillRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r.failTx != nil {
		return r.failTx
	}
	return fn(ctx, r)
}

func (r *memoryBillRepo) AllocateBillNumber(ctx context.Context, section registrations.Section) (string, error) {
	prefix, err := sectionPrefix(section)
	if err != nil {
		return "", err
	}
	r.sequences[string(section)]++
	return fmt.Sprintf("%s-2608-%04d", prefix, r.sequences[string(section)]), nil
}

func (r *memoryBillRepo) CreateBill(ctx context.Context, bill *DischargeBill) (int64, error) {
	r.nextBillID++
	copied := *bill
	copied.ID = r.nextBillID
	r.bills[copied.ID] = &copied
	return copied.ID, nil
}

func (r *memoryBillRepo) UpdateBill(ctx context.Context, bill *DischargeBill) error {
	if _, ok := r.bills[bill.ID]; !ok {
		return ErrBillNotFound
	}
	copied := *bill
	r.bills[bill.ID] = &copied
	return nil
}

func (r *memoryBillRepo) ReplaceLineItems(ctx context.Context, billID int64, items []DischargeBillItem) error {
	r.items[billID] = append([]DischargeBillItem(nil), items...)
	return nil
}

func pediatricsDraft() SaveBillInput {
	return SaveBillInput{
		RegistrationID: 11,
		PatientID:      7,
		DoctorID:       3,
		Section:        registrations.SectionPediatrics,
		AdvanceAmount:  5000,
		LineItems: []BillableLineItem{
			{Category: "Registration", Description: "Registration fee", Quantity: 1, Rate: 5000},
			{Category: "Injections", Description: "Ceftriaxone 1g", Quantity: 1, Rate: 500},
		},
		CreatedBy: 1,
	}
}

func TestLineItemAmountFollowsQuantityAndRate(t *testing.T) {
	li := BillableLineItem{Category: "Injections", Quantity: 2, Rate: 150}
	li.Normalize()
	require.Equal(t, 300.0, li.Amount)

	li.Quantity = 3
	li.Normalize()
	require.Equal(t, 450.0, li.Amount)

	li.Rate = 100
	li.Normalize()
	require.Equal(t, 300.0, li.Amount)
}

func TestComputeTotalsNewPediatricsBill(t *testing.T) {
	items := []BillableLineItem{
		{Category: "Registration", Quantity: 1, Rate: 5000},
		{Category: "Injections", Quantity: 1, Rate: 500},
	}
	summary, err := ComputeTotals(items, 5000, nil)
	require.NoError(t, err)
	require.Equal(t, 5500.0, summary.TotalAmount)
	require.Equal(t, 5000.0, summary.IPJoiningAmount)
	require.Equal(t, 500.0, summary.AmountReceivable)
	require.Equal(t, 5000.0, summary.PaidAmount)
	require.Equal(t, 0.0, summary.AmountReceived)
	require.Equal(t, 500.0, summary.Outstanding)
	require.Equal(t, 0.0, summary.Refundable)
	require.Empty(t, summary.ExistingBillNo)
}

func TestComputeTotalsCategoryGrouping(t *testing.T) {
	items := []BillableLineItem{
		{Category: "Injections", Quantity: 1, Rate: 200},
		{Category: "Vaccinations", Quantity: 2, Rate: 750},
		{Category: "Injections", Quantity: 1, Rate: 300},
	}
	summary, err := ComputeTotals(items, 0, nil)
	require.NoError(t, err)

	require.Len(t, summary.CategoryTotals, 2)
	require.Equal(t, "Injections", summary.CategoryTotals[0].Category)
	require.Equal(t, 500.0, summary.CategoryTotals[0].Amount)
	require.Equal(t, "Vaccinations", summary.CategoryTotals[1].Category)
	require.Equal(t, 1500.0, summary.CategoryTotals[1].Amount)

	var categorySum, itemSum float64
	for _, ct := range summary.CategoryTotals {
		categorySum += ct.Amount
	}
	for _, li := range items {
		itemSum += li.Amount
	}
	require.Equal(t, itemSum, categorySum)
	require.Equal(t, summary.TotalAmount, categorySum)
}

func TestComputeTotalsRejectsInvalidInput(t *testing.T) {
	_, err := ComputeTotals(nil, 0, nil)
	require.ErrorIs(t, err, ErrEmptyLineItems)

	_, err = ComputeTotals([]BillableLineItem{{Category: "X", Quantity: 0, Rate: 100}}, 0, nil)
	require.ErrorContains(t, err, "quantity must be positive")

	_, err = ComputeTotals([]BillableLineItem{{Category: "X", Quantity: -1, Rate: 100}}, 0, nil)
	require.ErrorContains(t, err, "quantity must be positive")

	_, err = ComputeTotals([]BillableLineItem{{Category: "X", Quantity: 1, Rate: -5}}, 0, nil)
	require.ErrorContains(t, err, "rate cannot be negative")

	_, err = ComputeTotals([]BillableLineItem{{Category: "X", Quantity: 1, Rate: 5}}, -1, nil)
	require.ErrorContains(t, err, "advance")
}

// An advance larger than the bill total leaves the receivable negative but is
// not paid back: both outstanding and refundable settle at zero.
func TestComputeTotalsAdvanceExceedsTotal(t *testing.T) {
	existing := &DischargeBill{
		BillNo:          "PED-2608-0001",
		TotalAmount:     3000,
		IPJoiningAmount: 3500,
		PaidAmount:      3500,
	}
	summary, err := ComputeTotals([]BillableLineItem{{Category: "Registration", Quantity: 1, Rate: 3000}}, 0, existing)
	require.NoError(t, err)
	require.Equal(t, 3000.0, summary.TotalAmount)
	require.Equal(t, 3500.0, summary.IPJoiningAmount)
	require.Equal(t, -500.0, summary.AmountReceivable)
	require.Equal(t, 0.0, summary.AmountReceived)
	require.Equal(t, 0.0, summary.Outstanding)
	require.Equal(t, 0.0, summary.Refundable)
}

func TestComputeTotalsOutstandingRefundableExclusive(t *testing.T) {
	cases := []struct {
		name     string
		existing *DischargeBill
		advance  float64
	}{
		{name: "new underpaid", advance: 100},
		{name: "new fully covered", advance: 1000},
		{name: "existing overpaid", existing: &DischargeBill{TotalAmount: 1000, IPJoiningAmount: 200, PaidAmount: 1800}},
		{name: "existing outstanding", existing: &DischargeBill{TotalAmount: 1000, IPJoiningAmount: 200, PaidAmount: 400}},
		{name: "existing advance exceeds total", existing: &DischargeBill{TotalAmount: 1000, IPJoiningAmount: 1500, PaidAmount: 1500}},
	}
	items := []BillableLineItem{{Category: "Registration", Quantity: 1, Rate: 1000}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary, err := ComputeTotals(items, tc.advance, tc.existing)
			require.NoError(t, err)
			require.GreaterOrEqual(t, summary.Outstanding, 0.0)
			require.GreaterOrEqual(t, summary.Refundable, 0.0)
			require.False(t, summary.Outstanding > 0 && summary.Refundable > 0)
		})
	}
}

func TestSaveOrUpdateFirstFinalize(t *testing.T) {
	repo := newMemoryBillRepo()
	svc := NewService(repo, nil, nil)

	bill, err := svc.SaveOrUpdate(context.Background(), pediatricsDraft())
	require.NoError(t, err)
	require.Equal(t, "PED-2608-0001", bill.BillNo)
	require.Equal(t, BillStatusFinalized, bill.Status)
	require.Equal(t, 5500.0, bill.TotalAmount)
	require.Equal(t, 5000.0, bill.PaidAmount)
	require.Equal(t, 500.0, bill.OutstandingAmount)
	require.Equal(t, 0.0, bill.RefundableAmount)

	items, err := repo.ListItems(context.Background(), bill.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 5000.0, items[0].Amount)
	require.Equal(t, 500.0, items[1].Amount)
}

func TestSaveOrUpdateIsIdempotentForUnmodifiedDraft(t *testing.T) {
	repo := newMemoryBillRepo()
	svc := NewService(repo, nil, nil)

	first, err := svc.SaveOrUpdate(context.Background(), pediatricsDraft())
	require.NoError(t, err)
	second, err := svc.SaveOrUpdate(context.Background(), pediatricsDraft())
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.BillNo, second.BillNo)
	require.Equal(t, first.TotalAmount, second.TotalAmount)
	require.Equal(t, first.PaidAmount, second.PaidAmount)
	require.Equal(t, first.OutstandingAmount, second.OutstandingAmount)
	require.Equal(t, first.RefundableAmount, second.RefundableAmount)
	require.Len(t, repo.bills, 1)
}

// Editing line items on a finalized bill keeps the stored total: the total
// is authoritative once saved and is not recomputed from the current items.
func TestSaveOrUpdateKeepsStoredTotalOnEdit(t *testing.T) {
	repo := newMemoryBillRepo()
	svc := NewService(repo, nil, nil)

	first, err := svc.SaveOrUpdate(context.Background(), pediatricsDraft())
	require.NoError(t, err)

	edited := pediatricsDraft()
	edited.LineItems[1].Description = "Ceftriaxone 1g IV"
	second, err := svc.SaveOrUpdate(context.Background(), edited)
	require.NoError(t, err)
	require.Equal(t, first.TotalAmount, second.TotalAmount)

	grown := pediatricsDraft()
	grown.LineItems = append(grown.LineItems, BillableLineItem{Category: "Vaccinations", Quantity: 1, Rate: 900})
	third, err := svc.SaveOrUpdate(context.Background(), grown)
	require.NoError(t, err)
	require.Equal(t, first.TotalAmount, third.TotalAmount)

	items, err := repo.ListItems(context.Background(), third.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
}

func TestSaveOrUpdateSectionScopedNumbering(t *testing.T) {
	repo := newMemoryBillRepo()
	svc := NewService(repo, nil, nil)

	ped, err := svc.SaveOrUpdate(context.Background(), pediatricsDraft())
	require.NoError(t, err)

	derm := pediatricsDraft()
	derm.RegistrationID = 12
	derm.Section = registrations.SectionDermatology
	dermBill, err := svc.SaveOrUpdate(context.Background(), derm)
	require.NoError(t, err)

	require.Equal(t, "PED-2608-0001", ped.BillNo)
	require.Equal(t, "DER-2608-0001", dermBill.BillNo)
}

func TestSaveOrUpdateRejectsBadDrafts(t *testing.T) {
	repo := newMemoryBillRepo()
	svc := NewService(repo, nil, nil)

	input := pediatricsDraft()
	input.Section = "cardiology"
	_, err := svc.SaveOrUpdate(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidSection)

	input = pediatricsDraft()
	input.LineItems = nil
	_, err = svc.SaveOrUpdate(context.Background(), input)
	require.ErrorIs(t, err, ErrEmptyLineItems)

	input = pediatricsDraft()
	input.LineItems[0].Quantity = 0
	_, err = svc.SaveOrUpdate(context.Background(), input)
	require.ErrorContains(t, err, "quantity must be positive")
	require.Empty(t, repo.bills)
}

func TestSaveOrUpdateAbortsWholeOperationOnFailure(t *testing.T) {
	repo := newMemoryBillRepo()
	repo.failTx = fmt.Errorf("connection reset")
	svc := NewService(repo, nil, nil)

	_, err := svc.SaveOrUpdate(context.Background(), pediatricsDraft())
	require.Error(t, err)
	require.Empty(t, repo.bills)
	require.Empty(t, repo.items)
}

func TestBuildDraftFromUsage(t *testing.T) {
	usage := &services.Usage{
		Injections: []services.Injection{
			{ID: 1, DrugName: "Ceftriaxone", Dose: "1g", Charge: 500},
		},
		Vaccinations: []services.Vaccination{
			{ID: 2, VaccineName: "MMR", Charge: 900},
		},
		NewbornVaccinations: []services.NewbornVaccination{
			{ID: 3, NewbornName: "Baby of Meera", VaccineName: "BCG", Charge: 350},
		},
		DermatologyProcedures: []services.DermatologyProcedure{
			{ID: 4, ProcedureName: "Cryotherapy", Sessions: 3, Charge: 1200},
		},
	}
	items := BuildDraftFromUsage(usage, 5000)
	require.Len(t, items, 5)

	require.Equal(t, "Registration", items[0].Category)
	require.False(t, items[0].Locked())
	require.Equal(t, 5000.0, items[0].Amount)

	for _, li := range items[1:] {
		require.True(t, li.Locked())
		require.Equal(t, float64(li.Quantity)*li.Rate, li.Amount)
	}
	require.Equal(t, "Injections", items[1].Category)
	require.Equal(t, "Ceftriaxone 1g", items[1].Description)
	require.Equal(t, "Newborn Vaccinations", items[3].Category)
	require.Equal(t, 3, items[4].Quantity)
	require.Equal(t, 3600.0, items[4].Amount)
}
