package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AndreFerreira5/starranja/internal/domain"
	"github.com/AndreFerreira5/starranja/internal/infrastructure/http/handlers"
	"github.com/AndreFerreira5/starranja/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	HealthHandler       *handlers.HealthHandler
	UsersHandler        *handlers.UsersHandler
	ClientsHandler      *handlers.ClientsHandler
	VehiclesHandler     *handlers.VehiclesHandler
	WorkOrdersHandler   *handlers.WorkOrdersHandler
	InvoicesHandler     *handlers.InvoicesHandler
	AppointmentsHandler *handlers.AppointmentsHandler
	RequireAuth         func(http.Handler) http.Handler
	Log                 zerolog.Logger
	Secure              func(http.Handler) http.Handler
	CORS                func(http.Handler) http.Handler
	IPRateLimit         func(http.Handler) http.Handler
	Metrics             bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	r.Use(chimid.AllowContentType("application/json"))
	r.Use(chimid.SetHeader("Content-Type", "application/json"))
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/register", cfg.AuthHandler.Register)
	})

	// Everything below requires a verified token.
	r.Group(func(r chi.Router) {
		r.Use(cfg.RequireAuth)

		manager := middleware.RequireRoles(domain.RoleMecanicoGerente, domain.RoleGerente, domain.RoleAdmin)
		backOffice := middleware.RequireRoles(domain.RoleGerente, domain.RoleAdmin)

		r.Get("/users/me", cfg.UsersHandler.Me)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", cfg.ClientsHandler.List)
			r.Get("/{id}", cfg.ClientsHandler.Get)
			r.Post("/", cfg.ClientsHandler.Create)
			r.Put("/{id}", cfg.ClientsHandler.Update)
			r.With(backOffice).Delete("/{id}", cfg.ClientsHandler.Delete)
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", cfg.VehiclesHandler.ListByClient)
			r.Get("/{id}", cfg.VehiclesHandler.Get)
			r.Post("/", cfg.VehiclesHandler.Create)
			r.Put("/{id}", cfg.VehiclesHandler.Update)
			r.With(backOffice).Delete("/{id}", cfg.VehiclesHandler.Delete)
		})

		r.Route("/work-orders", func(r chi.Router) {
			r.Get("/", cfg.WorkOrdersHandler.List)
			r.Get("/{id}", cfg.WorkOrdersHandler.Get)
			r.Post("/", cfg.WorkOrdersHandler.Create)
			r.Patch("/{id}/quote", cfg.WorkOrdersHandler.SetQuote)
			r.Patch("/{id}/status", cfg.WorkOrdersHandler.UpdateStatus)
			r.With(manager).Post("/{id}/decision", cfg.WorkOrdersHandler.Decide)
			r.With(manager).Patch("/{id}/mechanics", cfg.WorkOrdersHandler.AssignMechanics)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(backOffice)
			r.Get("/", cfg.InvoicesHandler.ListByClient)
			r.Get("/{id}", cfg.InvoicesHandler.Get)
			r.Post("/", cfg.InvoicesHandler.Create)
			r.Patch("/{id}/status", cfg.InvoicesHandler.SetStatus)
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.AppointmentsHandler.List)
			r.Get("/{id}", cfg.AppointmentsHandler.Get)
			r.Post("/", cfg.AppointmentsHandler.Create)
			r.Patch("/{id}", cfg.AppointmentsHandler.Update)
		})
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
