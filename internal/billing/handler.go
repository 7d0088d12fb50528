package billing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arogya-his/arogya-his/internal/admissions"
	"github.com/arogya-his/arogya-his/internal/platform/httpx"
	"github.com/arogya-his/arogya-his/internal/rbac"
	"github.com/arogya-his/arogya-his/internal/registrations"
	"github.com/arogya-his/arogya-his/internal/services"
	"github.com/arogya-his/arogya-his/internal/shared"
)

// RegistrationSource looks up the visit a bill is drafted against.
type RegistrationSource interface {
	Get(ctx context.Context, id int64) (*registrations.Registration, error)
}

// AdmissionSource looks up the admission advance for a visit.
type AdmissionSource interface {
	FindByRegistration(ctx context.Context, registrationID int64) (*admissions.Admission, error)
}

// UsageSource lists the billable services recorded under a visit.
type UsageSource interface {
	ListUsage(ctx context.Context, registrationID int64) (*services.Usage, error)
}

// Handler manages discharge bill endpoints.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	registrations RegistrationSource
	admissions    AdmissionSource
	usage         UsageSource
	rbac          rbac.Middleware
	validate      *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, regs RegistrationSource, adms AdmissionSource, usage UsageSource, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:        logger,
		service:       service,
		registrations: regs,
		admissions:    adms,
		usage:         usage,
		rbac:          rbac,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermBillingView))
		r.Get("/{id}", h.get)
		r.Get("/registration/{registrationID}", h.getByRegistration)
		r.Get("/registration/{registrationID}/draft", h.draft)
		r.Post("/compute", h.compute)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermBillingFinalize))
		r.Post("/", h.save)
	})
}

type billResponse struct {
	Bill  *DischargeBill      `json:"bill"`
	Items []DischargeBillItem `json:"items"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid bill ID", "")
		return
	}
	bill, items, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBillNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Bill not found", "")
			return
		}
		h.logger.Error("get bill", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Lookup failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, billResponse{Bill: bill, Items: items})
}

func (h *Handler) getByRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID, err := strconv.ParseInt(chi.URLParam(r, "registrationID"), 10, 64)
	if err != nil || registrationID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid registration ID", "")
		return
	}
	bill, items, err := h.service.GetByRegistration(r.Context(), registrationID)
	if err != nil {
		if errors.Is(err, ErrBillNotFound) {
			httpx.Problem(w, http.StatusNotFound, "No bill for registration", "")
			return
		}
		h.logger.Error("get bill by registration", slog.Any("error", err), slog.Int64("registration_id", registrationID))
		httpx.Problem(w, http.StatusInternalServerError, "Lookup failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, billResponse{Bill: bill, Items: items})
}

type draftResponse struct {
	RegistrationID int64              `json:"registration_id"`
	Section        string             `json:"section"`
	PatientID      int64              `json:"patient_id"`
	DoctorID       int64              `json:"doctor_id"`
	AdvanceAmount  float64            `json:"advance_amount"`
	LineItems      []BillableLineItem `json:"line_items"`
	Summary        *Summary           `json:"summary"`
}

// draft assembles the opening state of the reconciliation screen: recorded
// service usage mapped to locked line items plus the admission advance.
func (h *Handler) draft(w http.ResponseWriter, r *http.Request) {
	registrationID, err := strconv.ParseInt(chi.URLParam(r, "registrationID"), 10, 64)
	if err != nil || registrationID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid registration ID", "")
		return
	}
	reg, err := h.registrations.Get(r.Context(), registrationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Registration not found", "")
			return
		}
		h.logger.Error("load registration", slog.Any("error", err), slog.Int64("registration_id", registrationID))
		httpx.Problem(w, http.StatusInternalServerError, "Lookup failed", shared.UserSafeMessage(err))
		return
	}

	var advance float64
	adm, err := h.admissions.FindByRegistration(r.Context(), registrationID)
	switch {
	case err == nil:
		advance = adm.PaymentAmount
	case errors.Is(err, shared.ErrNotFound):
		// outpatient visit, no advance
	default:
		h.logger.Error("load admission", slog.Any("error", err), slog.Int64("registration_id", registrationID))
		httpx.Problem(w, http.StatusInternalServerError, "Lookup failed", shared.UserSafeMessage(err))
		return
	}

	usage, err := h.usage.ListUsage(r.Context(), registrationID)
	if err != nil {
		h.logger.Error("load usage", slog.Any("error", err), slog.Int64("registration_id", registrationID))
		httpx.Problem(w, http.StatusInternalServerError, "Lookup failed", shared.UserSafeMessage(err))
		return
	}

	items := BuildDraftFromUsage(usage, reg.Fee)
	resp := draftResponse{
		RegistrationID: registrationID,
		Section:        string(reg.Section),
		PatientID:      reg.PatientID,
		DoctorID:       reg.DoctorID,
		AdvanceAmount:  advance,
		LineItems:      items,
	}
	if len(items) > 0 {
		summary, err := h.service.Preview(r.Context(), ComputeRequest{
			RegistrationID: registrationID,
			AdvanceAmount:  advance,
			LineItems:      items,
		})
		if err != nil {
			h.logger.Error("compute draft summary", slog.Any("error", err), slog.Int64("registration_id", registrationID))
			httpx.Problem(w, http.StatusInternalServerError, "Computation failed", shared.UserSafeMessage(err))
			return
		}
		resp.Summary = summary
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	summary, err := h.service.Preview(r.Context(), req)
	if err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Computation rejected", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var input SaveBillInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	input.CreatedBy = shared.CurrentUserID(r.Context())
	bill, err := h.service.SaveOrUpdate(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyLineItems), errors.Is(err, ErrInvalidSection):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Bill rejected", err.Error())
		default:
			h.logger.Error("save bill", slog.Any("error", err), slog.Int64("registration_id", input.RegistrationID))
			httpx.Problem(w, http.StatusInternalServerError, "Save failed", shared.UserSafeMessage(err))
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}
