package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/atencion-digital/tramites-bot/internal/actions"
	"github.com/atencion-digital/tramites-bot/internal/catalog"
	"github.com/atencion-digital/tramites-bot/internal/citizens"
	httpmiddleware "github.com/atencion-digital/tramites-bot/internal/http/middleware"
	"github.com/atencion-digital/tramites-bot/internal/tickets"
	"github.com/atencion-digital/tramites-bot/internal/turnos"
	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	CitizensHandler *citizens.Handler
	CatalogHandler  *catalog.Handler
	TicketsHandler  *tickets.Handler
	TurnosHandler   *turnos.Handler
	ActionsHandler  *actions.Handler
	MetricsHandler  http.Handler

	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// Requests/sec and burst for the action webhook. Zero disables limiting.
	WebhookRateLimit float64
	WebhookBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	adminOnly := httpmiddleware.AdminJWT(cfg.AdminAuthSecret)

	if cfg.CitizensHandler != nil {
		r.Route("/citizens", func(r chi.Router) {
			r.Post("/", cfg.CitizensHandler.Create)
			r.Get("/", cfg.CitizensHandler.List)
			r.Get("/{dni}", cfg.CitizensHandler.GetByDNI)
			r.Put("/{dni}", cfg.CitizensHandler.Update)
			r.With(adminOnly).Delete("/{dni}", cfg.CitizensHandler.Delete)
		})
	}

	if cfg.CatalogHandler != nil {
		r.Get("/departments", cfg.CatalogHandler.ListDepartments)
		r.Get("/departments/{id}/procedures", cfg.CatalogHandler.ListProcedures)
	}

	if cfg.TicketsHandler != nil {
		r.Route("/tickets", func(r chi.Router) {
			r.Post("/", cfg.TicketsHandler.Create)
			r.Get("/", cfg.TicketsHandler.List)
			r.Get("/{id}", cfg.TicketsHandler.GetByID)
			r.With(adminOnly).Put("/{id}/status", cfg.TicketsHandler.UpdateStatus)
		})
	}

	if cfg.TurnosHandler != nil {
		r.Route("/turnos", func(r chi.Router) {
			r.Post("/", cfg.TurnosHandler.Create)
			r.Get("/", cfg.TurnosHandler.List)
			r.Get("/{id}", cfg.TurnosHandler.GetByID)
			r.Put("/{id}/cancelar", cfg.TurnosHandler.Cancel)
		})
	}

	// Dialogue engine webhook. One endpoint, dispatched on next_action.
	if cfg.ActionsHandler != nil {
		r.Group(func(hook chi.Router) {
			if cfg.WebhookRateLimit > 0 {
				hook.Use(httpmiddleware.RateLimit(cfg.WebhookRateLimit, cfg.WebhookBurst))
			}
			hook.Post("/webhook", cfg.ActionsHandler.Webhook)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
