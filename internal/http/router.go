package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"assistant-ai/internal/handlers"
	"assistant-ai/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Assistant service.AssistantService
	Backend   handlers.BackendPinger
	// Storage location the health check pings
	IndexLocation string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.Assistant)
	indexHandler := handlers.NewIndexHandler(deps.Assistant)
	documentsHandler := handlers.NewDocumentsHandler(deps.Assistant)
	healthHandler := handlers.NewHealthHandler(deps.Backend, deps.IndexLocation)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/ask", askHandler)
			r.Method(http.MethodPost, "/index", indexHandler)
			r.Method(http.MethodGet, "/documents", documentsHandler)
		})
	})

	return r
}
