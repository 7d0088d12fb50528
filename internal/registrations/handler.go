package registrations

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arogya-his/arogya-his/internal/platform/httpx"
	"github.com/arogya-his/arogya-his/internal/rbac"
	"github.com/arogya-his/arogya-his/internal/shared"
)

// Handler manages registration endpoints.
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

// MountRoutes registers registration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermRegistrationsView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/doctors", h.doctors)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermRegistrationsEdit))
		r.Post("/", h.create)
		r.Post("/{id}/cancel", h.cancel)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	patientID, _ := strconv.ParseInt(r.URL.Query().Get("patient_id"), 10, 64)
	regs, err := h.service.List(r.Context(), ListRequest{
		PatientID: patientID,
		Section:   Section(r.URL.Query().Get("section")),
		Status:    RegistrationStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		h.logger.Error("list registrations", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Listing failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"registrations": regs})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid registration ID", "")
		return
	}
	reg, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Registration not found", "")
			return
		}
		h.logger.Error("get registration", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Lookup failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, reg)
}

func (h *Handler) doctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.service.Doctors(r.Context(), Section(r.URL.Query().Get("section")))
	if err != nil {
		h.logger.Error("list doctors", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Listing failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"doctors": doctors})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateRegistrationInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	input.CreatedBy = shared.CurrentUserID(r.Context())
	reg, err := h.service.Open(r.Context(), input)
	if err != nil {
		h.logger.Error("open registration", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Registration failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, reg)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid registration ID", "")
		return
	}
	if err := h.service.Cancel(r.Context(), id, shared.CurrentUserID(r.Context())); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Registration not found", "")
			return
		}
		h.logger.Error("cancel registration", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusBadRequest, "Cancel failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
