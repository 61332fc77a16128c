package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers account routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.Me)
		r.Get("/me/transactions", h.Transactions)
	})

	return r
}
