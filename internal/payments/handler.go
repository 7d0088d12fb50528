package payments

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arogya-his/arogya-his/internal/billing"
	"github.com/arogya-his/arogya-his/internal/platform/httpx"
	"github.com/arogya-his/arogya-his/internal/rbac"
	"github.com/arogya-his/arogya-his/internal/shared"
)

// Handler manages payment endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		rbac:     rbac,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPaymentsView))
		r.Get("/bill/{billID}", h.listByBill)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermPaymentsRecord))
		r.Post("/", h.recordPayment)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermPaymentsRefund))
		r.Post("/refunds", h.recordRefund)
	})
}

func (h *Handler) listByBill(w http.ResponseWriter, r *http.Request) {
	billID, err := strconv.ParseInt(chi.URLParam(r, "billID"), 10, 64)
	if err != nil || billID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid bill ID", "")
		return
	}
	list, err := h.service.ListByBill(r.Context(), billID)
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err), slog.Int64("bill_id", billID))
		httpx.Problem(w, http.StatusInternalServerError, "Listing failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": list})
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var input RecordPaymentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	input.RecordedBy = shared.CurrentUserID(r.Context())
	payment, err := h.service.RecordPayment(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrBillNotFound):
			httpx.Problem(w, http.StatusNotFound, "Bill not found", "")
		case errors.Is(err, ErrInvalidMethod):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Payment rejected", err.Error())
		default:
			h.logger.Error("record payment", slog.Any("error", err), slog.Int64("bill_id", input.BillID))
			httpx.Problem(w, http.StatusInternalServerError, "Recording failed", shared.UserSafeMessage(err))
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) recordRefund(w http.ResponseWriter, r *http.Request) {
	var input RecordRefundInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	input.RecordedBy = shared.CurrentUserID(r.Context())
	refund, err := h.service.RecordRefund(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrBillNotFound):
			httpx.Problem(w, http.StatusNotFound, "Bill not found", "")
		case errors.Is(err, ErrInvalidMethod), errors.Is(err, ErrRefundExceedsRefundable):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Refund rejected", err.Error())
		default:
			h.logger.Error("record refund", slog.Any("error", err), slog.Int64("bill_id", input.BillID))
			httpx.Problem(w, http.StatusInternalServerError, "Recording failed", shared.UserSafeMessage(err))
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, refund)
}
