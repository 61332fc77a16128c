package care

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pawhaven/pawhaven-api/internal/middleware"
	"github.com/pawhaven/pawhaven-api/internal/pkg/response"
	"github.com/pawhaven/pawhaven-api/internal/pkg/validator"
)

// Handler handles care action endpoints
type Handler struct {
	service *Service
}

// NewHandler creates new care handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Perform applies one care action for the authenticated account
func (h *Handler) Perform(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req ActionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Perform(r.Context(), accountID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownAction):
			response.BadRequest(w, "Unknown care action")
		case errors.Is(err, ErrRateLimited):
			w.Header().Set("Retry-After", result.RateLimit.ResetAt.UTC().Format(http.TimeFormat))
			response.TooManyRequests(w, "Too many actions, slow down")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

// Routes registers care routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/actions", h.Perform)
	})

	return r
}
