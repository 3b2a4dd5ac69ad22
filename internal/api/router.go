// Package api exposes the ledger over a JSON HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/secure"

	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/observability"
	"github.com/mmynk/settleup/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	Groups   *service.GroupService
	Expenses *service.ExpenseService
	Health   Pinger
	Metrics  *observability.Metrics
	Logger   *slog.Logger

	CORSAllowedOrigin  string
	RateLimitPerMinute int // zero disables rate limiting
	DefaultPageSize    int
	MaxPageSize        int
}

type handler struct {
	groups          *service.GroupService
	expenses        *service.ExpenseService
	health          Pinger
	validate        *validator.Validate
	defaultPageSize int
	maxPageSize     int
}

// NewRouter builds the chi router with the full middleware stack.
func NewRouter(opts Options) http.Handler {
	h := &handler{
		groups:          opts.Groups,
		expenses:        opts.Expenses,
		health:          opts.Health,
		validate:        newValidator(),
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
	}
	if h.defaultPageSize <= 0 {
		h.defaultPageSize = 100
	}
	if h.maxPageSize < h.defaultPageSize {
		h.maxPageSize = h.defaultPageSize
	}

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
	})

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.RequestLogger(opts.Logger),
		chimw.Recoverer,
		opts.Metrics.Middleware,
		middleware.CORS(opts.CORSAllowedOrigin),
		secureMiddleware.Handler,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: "route not found", ErrorCode: CodeNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Detail: "method not allowed", ErrorCode: CodeBadRequest})
	})

	r.Get("/healthz", h.healthz)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute))
		}

		r.Get("/categories", h.listCategories)
		r.Post("/shares/resolve", h.resolveShares)

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", h.createGroup)
			r.Get("/", h.listGroups)

			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", h.getGroup)
				r.Post("/members", h.addMembers)
				r.Post("/expenses", h.createExpense)
				r.Get("/expenses", h.listExpenses)
				r.Get("/balances", h.getBalances)
				r.Get("/settlements", h.getSettlements)
				r.Post("/payments", h.createPayment)
				r.Get("/payments", h.listPayments)
			})
		})

		r.Route("/expenses/{expenseID}", func(r chi.Router) {
			r.Get("/", h.getExpense)
			r.Put("/", h.updateExpense)
			r.Delete("/", h.deleteExpense)
		})

		r.Delete("/payments/{paymentID}", h.deletePayment)
	})

	return r
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
