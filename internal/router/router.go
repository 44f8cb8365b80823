package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-event-scout/internal/api/catalog"
	"github.com/FACorreiaa/go-event-scout/internal/api/discovery"
)

// Config contains dependencies needed for the router setup.
// CatalogHandler is nil when Postgres is not configured; the catalog routes
// are simply not mounted and discovery works standalone.
type Config struct {
	DiscoveryHandler *discovery.Handler
	CatalogHandler   *catalog.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Heartbeat/Health check endpoint
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/discovery/caterers", cfg.DiscoveryHandler.SearchCaterers)
		r.Post("/discovery/venues", cfg.DiscoveryHandler.SearchVenues)

		if cfg.CatalogHandler != nil {
			r.Post("/catalog/sync", cfg.CatalogHandler.Sync)
		}
	})

	return r
}
