package audit

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pawhaven/pawhaven-api/internal/domain/account"
	"github.com/pawhaven/pawhaven-api/internal/middleware"
	"github.com/pawhaven/pawhaven-api/internal/pkg/response"
)

// Handler exposes the admin audit endpoint
type Handler struct {
	service *Service
}

// NewHandler creates new audit handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Account audits one account's balances against its transaction logs
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid account ID")
		return
	}

	report, err := h.service.Audit(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, report)
}

// Routes registers audit routes. Admin-only
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin())

		r.Get("/accounts/{id}", h.Account)
	})

	return r
}
