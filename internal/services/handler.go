package services

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arogya-his/arogya-his/internal/platform/httpx"
	"github.com/arogya-his/arogya-his/internal/rbac"
	"github.com/arogya-his/arogya-his/internal/shared"
)

// Handler manages service-usage endpoints.
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

// MountRoutes registers service-usage routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermServicesView))
		r.Get("/usage/{registrationID}", h.usage)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermServicesEdit))
		r.Post("/injections", h.logInjection)
		r.Post("/vaccinations", h.logVaccination)
		r.Post("/procedures", h.logProcedure)
	})
}

func (h *Handler) usage(w http.ResponseWriter, r *http.Request) {
	registrationID, err := strconv.ParseInt(chi.URLParam(r, "registrationID"), 10, 64)
	if err != nil || registrationID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid registration ID", "")
		return
	}
	usage, err := h.service.ListUsage(r.Context(), registrationID)
	if err != nil {
		h.logger.Error("list usage", slog.Any("error", err), slog.Int64("registration_id", registrationID))
		httpx.Problem(w, http.StatusInternalServerError, "Listing failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, usage)
}

func (h *Handler) logInjection(w http.ResponseWriter, r *http.Request) {
	var input LogInjectionInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	input.CreatedBy = shared.CurrentUserID(r.Context())
	inj, err := h.service.LogInjection(r.Context(), input)
	if err != nil {
		h.logger.Error("log injection", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Recording failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, inj)
}

func (h *Handler) logVaccination(w http.ResponseWriter, r *http.Request) {
	var input LogVaccinationInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	input.CreatedBy = shared.CurrentUserID(r.Context())
	rec, err := h.service.LogVaccination(r.Context(), input)
	if err != nil {
		h.logger.Error("log vaccination", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Recording failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) logProcedure(w http.ResponseWriter, r *http.Request) {
	var input LogProcedureInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	input.CreatedBy = shared.CurrentUserID(r.Context())
	proc, err := h.service.LogProcedure(r.Context(), input)
	if err != nil {
		h.logger.Error("log procedure", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Recording failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, proc)
}
