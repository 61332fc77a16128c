package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pawhaven/pawhaven-api/internal/domain/account"
	"github.com/pawhaven/pawhaven-api/internal/pkg/response"
	"github.com/pawhaven/pawhaven-api/internal/pkg/validator"
)

// Handler handles auth endpoints
type Handler struct {
	service *Service
}

// NewHandler creates new auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register creates a new account and returns an access token
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	acc, token, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			response.Conflict(w, "Email already registered")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiry(h.service.jwt.GetAccessTTL()),
		AccountID:   acc.ID.String(),
		Role:        acc.Role,
	})
}

// Login verifies credentials and returns an access token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	acc, token, limit, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, "Invalid email or password")
		case errors.Is(err, ErrBanned):
			response.Forbidden(w, "Account is banned")
		default:
			response.InternalError(w)
		}
		return
	}
	if limit != nil {
		w.Header().Set("Retry-After", limit.ResetAt.UTC().Format(http.TimeFormat))
		response.TooManyRequests(w, "Too many login attempts, try again later")
		return
	}

	response.OK(w, AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiry(h.service.jwt.GetAccessTTL()),
		AccountID:   acc.ID.String(),
		Role:        acc.Role,
	})
}

func expiry(ttl time.Duration) time.Time {
	return time.Now().UTC().Add(ttl)
}

// Routes registers auth routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	return r
}
