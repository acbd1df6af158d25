package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"daybrief/pkg/daybrief"
)

// Options configures the router.
type Options struct {
	Logger *slog.Logger
	// AdminAllowlist holds the client IPs permitted on /api/admin routes.
	// Empty list disables the admin surface entirely.
	AdminAllowlist []string
}

// NewRouter builds the HTTP API router.
func NewRouter(core *daybrief.Core, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Compress(5))
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoveryLoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	h := &handler{core: core, logger: logger}

	r.Get("/api/health", h.health)

	// Summaries
	r.Get("/api/summary", h.getSummary)
	r.Get("/api/summaries", h.listSummaries)
	r.Post("/api/summary/refresh", h.refreshSummary)
	r.Get("/api/summary/status", h.generationStatus)

	// Watchlist
	r.Get("/api/watchlist", h.getWatchlist)
	r.Post("/api/watchlist", h.addWatchSymbol)
	r.Delete("/api/watchlist/{symbol}", h.removeWatchSymbol)

	// Admin
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminAllowlistMiddleware(logger, opts.AdminAllowlist))
		r.Post("/summary/generate", h.adminGenerate)
		r.Get("/summary/status", h.generationStatus)
	})

	return r
}

type handler struct {
	core   *daybrief.Core
	logger *slog.Logger
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
