package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/arogya-his/arogya-his/internal/billing"
	"github.com/arogya-his/arogya-his/internal/patients"
	"github.com/arogya-his/arogya-his/internal/platform/httpx"
)

// BillSource loads a bill with its line items.
type BillSource interface {
	Get(ctx context.Context, id int64) (*billing.DischargeBill, []billing.DischargeBillItem, error)
}

// PatientSource loads the patient named on the bill.
type PatientSource interface {
	Get(ctx context.Context, id int64) (*patients.Patient, error)
}

// Handler manages report endpoints.
type Handler struct {
	client          *Client
	bills           BillSource
	patients        PatientSource
	logger          *slog.Logger
	hospitalName    string
	hospitalAddress string
	group           singleflight.Group
}

// NewHandler creates a report handler.
func NewHandler(client *Client, bills BillSource, patients PatientSource, logger *slog.Logger, hospitalName, hospitalAddress string) *Handler {
	return &Handler{
		client:          client,
		bills:           bills,
		patients:        patients,
		logger:          logger,
		hospitalName:    hospitalName,
		hospitalAddress: hospitalAddress,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/bills/{id}.pdf", h.billPDF)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// billPDF renders the printable bill. Concurrent requests for the same bill
// share one Gotenberg conversion.
func (h *Handler) billPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid bill ID", "")
		return
	}

	key := fmt.Sprintf("bill-pdf-%d", id)
	result, err, _ := h.group.Do(key, func() (any, error) {
		return h.render(r.Context(), id)
	})
	if err != nil {
		if errors.Is(err, billing.ErrBillNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Bill not found", "")
			return
		}
		h.logger.Error("render bill pdf", slog.Any("error", err), slog.Int64("bill_id", id))
		httpx.Problem(w, http.StatusBadGateway, "Rendering failed", "")
		return
	}

	pdf := result.([]byte)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=bill-%d.pdf", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) render(ctx context.Context, id int64) ([]byte, error) {
	bill, items, err := h.bills.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patient, err := h.patients.Get(ctx, bill.PatientID)
	if err != nil {
		return nil, err
	}
	html, err := RenderBillHTML(BillDocument{
		HospitalName:    h.hospitalName,
		HospitalAddress: h.hospitalAddress,
		Bill:            bill,
		Items:           items,
		Patient:         patient,
		GeneratedAt:     time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return h.client.RenderHTML(ctx, html)
}
