package admissions

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

// Handler manages admission endpoints.
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

// MountRoutes registers admission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAdmissionsView))
		r.Get("/{id}", h.get)
		r.Get("/active", h.active)
		r.Get("/rooms", h.rooms)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermAdmissionsEdit))
		r.Post("/", h.admit)
		r.Post("/{id}/discharge", h.discharge)
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid admission ID", "")
		return
	}
	adm, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Admission not found", "")
			return
		}
		h.logger.Error("get admission", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Lookup failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, adm)
}

// active answers "does this patient have an open admission" for the billing flow.
func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	patientID, err := strconv.ParseInt(r.URL.Query().Get("patient_id"), 10, 64)
	if err != nil || patientID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid patient ID", "")
		return
	}
	adm, err := h.service.FindActiveAdmission(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "No active admission for patient", "")
			return
		}
		h.logger.Error("find active admission", slog.Any("error", err), slog.Int64("patient_id", patientID))
		httpx.Problem(w, http.StatusInternalServerError, "Lookup failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, adm)
}

func (h *Handler) rooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.RoomAvailability(r.Context(), r.URL.Query().Get("section"))
	if err != nil {
		h.logger.Error("room availability", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Listing failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (h *Handler) admit(w http.ResponseWriter, r *http.Request) {
	var input AdmitInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	input.CreatedBy = shared.CurrentUserID(r.Context())
	adm, err := h.service.Admit(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoBedsAvailable), errors.Is(err, ErrAlreadyAdmitted):
			httpx.Problem(w, http.StatusConflict, "Admission rejected", err.Error())
		default:
			h.logger.Error("admit patient", slog.Any("error", err))
			httpx.Problem(w, http.StatusBadRequest, "Admission failed", shared.UserSafeMessage(err))
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, adm)
}

func (h *Handler) discharge(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid admission ID", "")
		return
	}
	if err := h.service.Discharge(r.Context(), id, shared.CurrentUserID(r.Context())); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "No active admission to discharge", "")
			return
		}
		h.logger.Error("discharge admission", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Discharge failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "discharged"})
}
