package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freightbox-tms/freightbox/internal/auth"
	"github.com/freightbox-tms/freightbox/internal/invoices"
	"github.com/freightbox-tms/freightbox/internal/ledger"
	"github.com/freightbox-tms/freightbox/internal/lr"
	"github.com/freightbox-tms/freightbox/internal/masterdata/customers"
	"github.com/freightbox-tms/freightbox/internal/observability"
	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/thn"
	"github.com/freightbox-tms/freightbox/jobs"
	"github.com/freightbox-tms/freightbox/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Config *Config

	AuthService *auth.Service

	AuthHandler     *auth.Handler
	CustomerHandler *customers.Handler
	LRHandler       *lr.Handler
	InvoiceHandler  *invoices.Handler
	THNHandler      *thn.Handler
	PaymentHandler  *payments.Handler
	LedgerHandler   *ledger.Handler
	ReportHandler   *report.Handler
	JobHandler      *jobs.Handler

	Metrics    *observability.Metrics
	Middleware MiddlewareConfig
}

// NewRouter constructs the chi.Router with FreightBox defaults. Everything
// under /api/v1 requires a valid bearer token except login.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(params.Middleware) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthService.RequireAuth)

			params.CustomerHandler.MountRoutes(r)
			params.LRHandler.MountRoutes(r)
			params.InvoiceHandler.MountRoutes(r)
			params.THNHandler.MountRoutes(r)
			params.PaymentHandler.MountRoutes(r)
			params.LedgerHandler.MountRoutes(r)
			if params.ReportHandler != nil {
				params.ReportHandler.MountRoutes(r)
			}
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
