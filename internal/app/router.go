package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridianbank/meridian/internal/accounts"
	"github.com/meridianbank/meridian/internal/audit"
	"github.com/meridianbank/meridian/internal/auth"
	"github.com/meridianbank/meridian/internal/ledger"
	"github.com/meridianbank/meridian/internal/observability"
	"github.com/meridianbank/meridian/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Tokens          *auth.TokenIssuer
	AuthHandler     *auth.Handler
	AccountsHandler *accounts.Handler
	LedgerHandler   *ledger.Handler
	UsersHandler    *users.Handler
	AuditHandler    *audit.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(AuthRateLimiter(params.Config))
			params.AuthHandler.MountRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(params.Tokens))

			r.Route("/accounts", func(r chi.Router) {
				params.AccountsHandler.MountRoutes(r)
				r.Route("/{accountID}/transactions", func(r chi.Router) {
					params.LedgerHandler.MountRoutes(r)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				params.UsersHandler.MountAdminRoutes(r)
				params.LedgerHandler.MountAdminRoutes(r)
				params.AuditHandler.MountAdminRoutes(r)
				params.AccountsHandler.MountAdminRoutes(r)
			})
		})
	})

	return r
}
