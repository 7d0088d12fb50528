package patients

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

// Handler manages patient endpoints.
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

// MountRoutes registers patient routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPatientsView))
		r.Get("/", h.search)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermPatientsEdit))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
	})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	items, total, err := h.service.Search(r.Context(), SearchRequest{
		Query:   r.URL.Query().Get("q"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		h.logger.Error("search patients", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Search failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"patients":   items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid patient ID", "")
		return
	}
	patient, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Patient not found", "")
			return
		}
		h.logger.Error("get patient", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Lookup failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, patient)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreatePatientInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	patient, err := h.service.Register(r.Context(), input)
	if err != nil {
		h.logger.Error("register patient", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Registration failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, patient)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid patient ID", "")
		return
	}
	var input UpdatePatientInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	patient, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Patient not found", "")
			return
		}
		h.logger.Error("update patient", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusBadRequest, "Update failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, patient)
}
