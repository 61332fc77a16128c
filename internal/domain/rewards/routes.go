package rewards

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pawhaven/pawhaven-api/internal/middleware"
)

// Routes registers rewards routes. All of them are admin-only
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin())

		r.Post("/run", h.Run)
		r.Post("/backfill", h.Backfill)
		r.Get("/runs", h.Runs)
		r.Get("/pending", h.Pending)
	})

	return r
}
