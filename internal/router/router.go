package router

import (
	"encoding/json"
	"net/http"

	"inventory/internal/auth"
	"inventory/internal/handler"
	"inventory/internal/middleware"
	"inventory/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Auth       *handler.AuthHandler
}

// Options controls the cross-cutting parts of the router.
type Options struct {
	// Sessions validates bearer tokens. Nil disables authentication.
	Sessions *auth.SessionManager
	// Registry receives the HTTP metrics and backs /metrics.
	Registry *prometheus.Registry
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(opts.Registry)

	r := chi.NewRouter()

	// Order: RequestID -> Recovery -> Logging -> Metrics -> CORS
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(metrics.Handler)
	r.Use(middleware.CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "not found", Code: model.ErrCodeNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{Error: "method not allowed", Code: model.ErrCodeMethodNotAllowed})
	})

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	r.Post("/api/auth/login", h.Auth.Login)

	r.Group(func(r chi.Router) {
		if opts.Sessions != nil {
			r.Use(middleware.SessionAuth(opts.Sessions, logger))
		}

		r.Get("/api/auth/session", h.Auth.Session)

		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Post("/", h.Products.Create)
			r.Put("/", h.Products.Update)
			r.Delete("/", h.Products.Delete)

			// Registered before /{id} so "categories" is never taken as an id.
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.Categories.List)
				r.Post("/", h.Categories.Create)
				r.Delete("/", h.Categories.Delete)
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Products.GetByID)
				r.Put("/", h.Products.Update)
				r.Delete("/", h.Products.Delete)
				r.Post("/reduce-stock", h.Products.ReduceStock)
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body model.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
