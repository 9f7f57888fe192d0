package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fintrack/fintrack/internal/accounts"
	"github.com/fintrack/fintrack/internal/auth"
	"github.com/fintrack/fintrack/internal/categories"
	"github.com/fintrack/fintrack/internal/ledger"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AccountsHandler   *accounts.Handler
	AuthHandler       *auth.Handler
	AuthMiddleware    auth.Middleware
	CategoriesHandler *categories.Handler
	LedgerHandler     *ledger.Handler
}

// NewRouter constructs the chi.Router with Fintrack defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.AccountsHandler.MountPublicRoutes(r)
		params.AuthHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAccount)

			params.AccountsHandler.MountRoutes(r)
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
			params.LedgerHandler.MountRoutes(r)
		})
	})

	return r
}
