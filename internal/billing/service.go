package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/arogya-his/arogya-his/internal/observability"
	"github.com/arogya-his/arogya-his/internal/services"
	"github.com/arogya-his/arogya-his/internal/shared"
)

var (
	// ErrBillNotFound indicates no bill exists for the lookup key.
	ErrBillNotFound = errors.New("billing: bill not found")
	// ErrEmptyLineItems rejects a draft with nothing billable on it.
	ErrEmptyLineItems = errors.New("billing: at least one line item required")
	// ErrInvalidSection rejects an unknown department.
	ErrInvalidSection = errors.New("billing: invalid section")
)

// Service is the single authoritative path for computing and persisting
// discharge bills. Every finalize and edit goes through SaveOrUpdate.
type Service struct {
	repo    RepositoryPort
	audit   *shared.AuditLogger
	metrics *observability.Metrics
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, audit: audit, metrics: metrics}
}

// ComputeTotals derives the financial summary for a set of line items given
// the admission advance and, when editing, the previously persisted bill.
// Once a bill exists its stored total_amount is authoritative: the total is
// not recomputed from the current line items.
func ComputeTotals(lineItems []BillableLineItem, advanceAmount float64, existing *DischargeBill) (*Summary, error) {
	if len(lineItems) == 0 {
		return nil, ErrEmptyLineItems
	}
	if advanceAmount < 0 {
		return nil, fmt.Errorf("billing: advance amount cannot be negative")
	}

	var itemSum float64
	totalsByCategory := map[string]int{}
	var categoryTotals []CategoryTotal
	for i := range lineItems {
		li := &lineItems[i]
		if li.Quantity <= 0 {
			return nil, fmt.Errorf("billing: line item %d: quantity must be positive", i+1)
		}
		if li.Rate < 0 {
			return nil, fmt.Errorf("billing: line item %d: rate cannot be negative", i+1)
		}
		li.Normalize()
		itemSum += li.Amount
		idx, ok := totalsByCategory[li.Category]
		if !ok {
			idx = len(categoryTotals)
			totalsByCategory[li.Category] = idx
			categoryTotals = append(categoryTotals, CategoryTotal{Category: li.Category})
		}
		categoryTotals[idx].Amount += li.Amount
	}

	summary := &Summary{CategoryTotals: categoryTotals}
	if existing != nil {
		summary.TotalAmount = existing.TotalAmount
		summary.IPJoiningAmount = existing.IPJoiningAmount
		summary.PaidAmount = existing.PaidAmount
		summary.ExistingBillNo = existing.BillNo
	} else {
		summary.TotalAmount = itemSum
		summary.IPJoiningAmount = advanceAmount
		summary.PaidAmount = advanceAmount
	}
	summary.AmountReceivable = summary.TotalAmount - summary.IPJoiningAmount
	summary.AmountReceived = summary.PaidAmount - summary.IPJoiningAmount
	summary.Outstanding = math.Max(0, summary.AmountReceivable-summary.AmountReceived)
	// The receivable is floored at zero here so an advance larger than the
	// bill total is not reported as refundable. The receivable itself is
	// surfaced unclamped.
	summary.Refundable = math.Max(0, summary.AmountReceived-math.Max(0, summary.AmountReceivable))
	return summary, nil
}

// Preview computes the summary for the cashier without persisting anything.
func (s *Service) Preview(ctx context.Context, req ComputeRequest) (*Summary, error) {
	existing, err := s.repo.FindBillByRegistration(ctx, req.RegistrationID)
	if err != nil && !errors.Is(err, ErrBillNotFound) {
		return nil, err
	}
	return ComputeTotals(req.LineItems, req.AdvanceAmount, existing)
}

// SaveOrUpdate finalizes a new bill or re-finalizes an existing one. The
// existence check, number allocation, header write and line item replace all
// run inside one transaction, so a failure leaves no orphaned header and two
// concurrent saves for the same registration cannot both create a bill.
func (s *Service) SaveOrUpdate(ctx context.Context, input SaveBillInput) (*DischargeBill, error) {
	if !input.Section.Valid() {
		return nil, ErrInvalidSection
	}
	if input.DischargeDate.IsZero() {
		input.DischargeDate = time.Now()
	}

	var (
		bill    *DischargeBill
		created bool
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.FindBillByRegistration(ctx, input.RegistrationID)
		if err != nil && !errors.Is(err, ErrBillNotFound) {
			return err
		}
		summary, err := ComputeTotals(input.LineItems, input.AdvanceAmount, existing)
		if err != nil {
			return err
		}

		now := time.Now()
		if existing == nil {
			billNo, err := tx.AllocateBillNumber(ctx, input.Section)
			if err != nil {
				return fmt.Errorf("allocate bill number: %w", err)
			}
			bill = &DischargeBill{
				BillNo:            billNo,
				Section:           input.Section,
				PatientID:         input.PatientID,
				RegistrationID:    input.RegistrationID,
				DoctorID:          input.DoctorID,
				AdmissionDate:     input.AdmissionDate,
				DischargeDate:     input.DischargeDate,
				TotalAmount:       summary.TotalAmount,
				PaidAmount:        summary.PaidAmount,
				OutstandingAmount: summary.Outstanding,
				RefundableAmount:  summary.Refundable,
				IPJoiningAmount:   summary.IPJoiningAmount,
				Status:            BillStatusFinalized,
				CreatedBy:         input.CreatedBy,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			id, err := tx.CreateBill(ctx, bill)
			if err != nil {
				return fmt.Errorf("create bill: %w", err)
			}
			bill.ID = id
			created = true
		} else {
			bill = existing
			bill.DoctorID = input.DoctorID
			bill.AdmissionDate = input.AdmissionDate
			bill.DischargeDate = input.DischargeDate
			bill.TotalAmount = summary.TotalAmount
			bill.PaidAmount = summary.PaidAmount
			bill.OutstandingAmount = summary.Outstanding
			bill.RefundableAmount = summary.Refundable
			bill.IPJoiningAmount = summary.IPJoiningAmount
			bill.Status = BillStatusFinalized
			bill.UpdatedAt = now
			if err := tx.UpdateBill(ctx, bill); err != nil {
				return fmt.Errorf("update bill: %w", err)
			}
		}

		items := make([]DischargeBillItem, 0, len(input.LineItems))
		for _, li := range input.LineItems {
			items = append(items, DischargeBillItem{
				BillID:        bill.ID,
				Category:      li.Category,
				Description:   li.Description,
				Quantity:      li.Quantity,
				Rate:          li.Rate,
				Amount:        li.Amount,
				ReferenceID:   li.ReferenceID,
				ReferenceType: li.ReferenceType,
			})
		}
		if err := tx.ReplaceLineItems(ctx, bill.ID, items); err != nil {
			return fmt.Errorf("replace line items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := "bill.update"
	if created {
		action = "bill.finalize"
		if s.metrics != nil {
			s.metrics.BillFinalized(string(bill.Section))
		}
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.CreatedBy,
			Action:   action,
			Entity:   "discharge_bill",
			EntityID: strconv.FormatInt(bill.ID, 10),
			Meta: map[string]any{
				"bill_no":     bill.BillNo,
				"total":       bill.TotalAmount,
				"outstanding": bill.OutstandingAmount,
				"refundable":  bill.RefundableAmount,
			},
		})
	}
	return bill, nil
}

// GetByRegistration returns the persisted bill and its items for a visit.
func (s *Service) GetByRegistration(ctx context.Context, registrationID int64) (*DischargeBill, []DischargeBillItem, error) {
	bill, err := s.repo.FindBillByRegistration(ctx, registrationID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.ListItems(ctx, bill.ID)
	if err != nil {
		return nil, nil, err
	}
	return bill, items, nil
}

// Get returns a bill header and items by primary key.
func (s *Service) Get(ctx context.Context, id int64) (*DischargeBill, []DischargeBillItem, error) {
	bill, err := s.repo.GetBill(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.ListItems(ctx, bill.ID)
	if err != nil {
		return nil, nil, err
	}
	return bill, items, nil
}

// BuildDraftFromUsage turns recorded service usage into locked line items,
// prefixed with the registration fee when one was charged.
func BuildDraftFromUsage(usage *services.Usage, registrationFee float64) []BillableLineItem {
	var items []BillableLineItem
	if registrationFee > 0 {
		items = append(items, BillableLineItem{
			Category:    "Registration",
			Description: "Registration fee",
			Quantity:    1,
			Rate:        registrationFee,
			Amount:      registrationFee,
		})
	}
	for _, inj := range usage.Injections {
		id := inj.ID
		desc := inj.DrugName
		if inj.Dose != "" {
			desc += " " + inj.Dose
		}
		items = append(items, BillableLineItem{
			Category:      "Injections",
			Description:   desc,
			Quantity:      1,
			Rate:          inj.Charge,
			Amount:        inj.Charge,
			ReferenceID:   &id,
			ReferenceType: string(services.KindInjection),
		})
	}
	for _, vac := range usage.Vaccinations {
		id := vac.ID
		items = append(items, BillableLineItem{
			Category:      "Vaccinations",
			Description:   vac.VaccineName,
			Quantity:      1,
			Rate:          vac.Charge,
			Amount:        vac.Charge,
			ReferenceID:   &id,
			ReferenceType: string(services.KindVaccination),
		})
	}
	for _, nv := range usage.NewbornVaccinations {
		id := nv.ID
		items = append(items, BillableLineItem{
			Category:      "Newborn Vaccinations",
			Description:   nv.NewbornName + ": " + nv.VaccineName,
			Quantity:      1,
			Rate:          nv.Charge,
			Amount:        nv.Charge,
			ReferenceID:   &id,
			ReferenceType: string(services.KindNewbornVaccination),
		})
	}
	for _, proc := range usage.DermatologyProcedures {
		id := proc.ID
		sessions := proc.Sessions
		if sessions < 1 {
			sessions = 1
		}
		items = append(items, BillableLineItem{
			Category:      "Dermatology Procedures",
			Description:   proc.ProcedureName,
			Quantity:      sessions,
			Rate:          proc.Charge,
			Amount:        float64(sessions) * proc.Charge,
			ReferenceID:   &id,
			ReferenceType: string(services.KindDermatologyProcedure),
		})
	}
	return items
}
