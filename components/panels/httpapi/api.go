// Package httpapi exposes the marketplace panels as a JSON API on chi, for
// clients that authenticate with bearer tokens instead of the server
// rendered pages.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/goliatone/go-market-dashboard/components/dashboard"
	dashcmd "github.com/goliatone/go-market-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/panels/commands"
	"github.com/goliatone/go-market-dashboard/internal/lib/sl"
)

// Verifier turns a bearer token into the viewer it was issued for.
type Verifier interface {
	Verify(token string) (panels.Viewer, error)
}

// Config wires the API with the panel controller, commands and hooks.
type Config struct {
	Panels    *panels.Controller
	Overview  *dashboard.Controller
	Actions   *commands.Bus
	Widgets   *dashcmd.Widgets
	Broadcast *dashboard.BroadcastHook
	Verifier  Verifier
	Logger    *slog.Logger
}

// NewRouter builds the chi handler serving /api/v1.
func NewRouter(cfg Config) (http.Handler, error) {
	if cfg.Panels == nil {
		return nil, errors.New("httpapi: panels controller is required")
	}
	if cfg.Actions == nil {
		return nil, errors.New("httpapi: command bus is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("httpapi: token verifier is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := &handlers{
		log:       log,
		panels:    cfg.Panels,
		overview:  cfg.Overview,
		actions:   cfg.Actions,
		widgets:   cfg.Widgets,
		broadcast: cfg.Broadcast,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "requested resource not found"})
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusMethodNotAllowed)
		render.JSON(w, r, map[string]string{"error": "method not allowed"})
	})

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(Authenticate(log, cfg.Verifier))

		v1.Get("/me", h.me)
		if h.overview != nil {
			v1.Get("/overview", h.overviewLayout)
		}
		v1.Route("/panels/{screen}", func(r chi.Router) {
			r.Get("/", h.list)
			r.Post("/{action}", h.dispatch)
			r.Post("/{id}/{action}", h.dispatch)
		})
		v1.Route("/settings", func(r chi.Router) {
			r.Get("/", h.settings)
			r.Put("/", h.saveSettings)
		})
		v1.Route("/documents", func(r chi.Router) {
			r.Get("/", h.documents)
			r.Post("/", h.addDocument)
			r.Delete("/{id}", h.removeDocument)
		})
		v1.Put("/token", h.saveToken)

		if h.widgets != nil {
			v1.Route("/widgets", func(r chi.Router) {
				r.Post("/", h.assignWidget)
				r.Put("/{id}", h.updateWidget)
				r.Delete("/{id}", h.removeWidget)
				r.Post("/reorder", h.reorderWidgets)
				r.Post("/refresh", h.refreshWidget)
			})
			v1.Put("/preferences", h.savePreferences)
		}
		if h.broadcast != nil {
			viewerOf := func(r *http.Request) dashboard.ViewerContext {
				viewer, _ := panels.ViewerFromContext(r.Context())
				return dashboardViewer(viewer)
			}
			v1.Get("/events/ws", h.broadcast.WebSocketHandler(viewerOf))
			v1.Get("/events/sse", h.broadcast.SSEHandler(viewerOf))
		}
	})

	log.With(sl.Module("api.router")).Debug("panel api routes mounted")
	return router, nil
}
