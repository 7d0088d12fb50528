package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/arogya-his/arogya-his/internal/admissions"
	"github.com/arogya-his/arogya-his/internal/auth"
	"github.com/arogya-his/arogya-his/internal/billing"
	"github.com/arogya-his/arogya-his/internal/observability"
	"github.com/arogya-his/arogya-his/internal/patients"
	"github.com/arogya-his/arogya-his/internal/payments"
	"github.com/arogya-his/arogya-his/internal/rbac"
	"github.com/arogya-his/arogya-his/internal/registrations"
	"github.com/arogya-his/arogya-his/internal/services"
	"github.com/arogya-his/arogya-his/internal/shared"
	"github.com/arogya-his/arogya-his/jobs"
	"github.com/arogya-his/arogya-his/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	SessionManager       *shared.SessionManager
	CSRFManager          *shared.CSRFManager
	AuthHandler          *auth.Handler
	PatientsHandler      *patients.Handler
	RegistrationsHandler *registrations.Handler
	AdmissionsHandler    *admissions.Handler
	ServicesHandler      *services.Handler
	BillingHandler       *billing.Handler
	PaymentsHandler      *payments.Handler
	ReportHandler        *report.Handler
	JobHandler           *jobs.Handler
	RBACMiddleware       rbac.Middleware
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with Arogya defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
		CSRFExempt:     []string{"/auth/login"},
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/patients", params.PatientsHandler.MountRoutes)
	r.Route("/registrations", params.RegistrationsHandler.MountRoutes)
	r.Route("/admissions", params.AdmissionsHandler.MountRoutes)
	r.Route("/services", params.ServicesHandler.MountRoutes)
	r.Route("/billing", params.BillingHandler.MountRoutes)
	r.Route("/payments", params.PaymentsHandler.MountRoutes)
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
