package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrUnknownAction is returned when no policy exists for the action.
var ErrUnknownAction = errors.New("unknown rate limit action")

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`

	// Degraded marks a check that was allowed only because the window
	// store was unreachable. Rate limiting is a safety net, not a
	// correctness gate, so availability wins over strict enforcement.
	Degraded bool `json:"degraded,omitempty"`
}

// WindowStore counts hits per key inside a fixed window that starts at the
// first hit. Hit returns the count including the current hit and the time
// left until the window expires.
type WindowStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// Limiter guards sensitive actions with per-(account, action) windows.
type Limiter struct {
	store WindowStore
}

func NewLimiter(store WindowStore) *Limiter {
	return &Limiter{store: store}
}

// Check applies the predefined policy for the action.
func (l *Limiter) Check(ctx context.Context, action Action, key string) (Result, error) {
	policy, ok := PolicyFor(action)
	if !ok {
		return Result{}, ErrUnknownAction
	}
	return l.CheckWithPolicy(ctx, action, key, policy), nil
}

// CheckWithPolicy counts a hit against the (key, action) window and decides
// whether the action may proceed. A store failure fails open: the action is
// allowed and the result is flagged as degraded.
func (l *Limiter) CheckWithPolicy(ctx context.Context, action Action, key string, policy Policy) Result {
	now := time.Now()
	storeKey := fmt.Sprintf("ratelimit:%s:%s", key, action)

	count, ttl, err := l.store.Hit(ctx, storeKey, policy.Window)
	if err != nil {
		log.Warn().Err(err).
			Str("action", string(action)).
			Str("key", key).
			Msg("Rate limit store unreachable, failing open")
		return Result{
			Allowed:   true,
			Remaining: policy.MaxAttempts - 1,
			ResetAt:   now.Add(policy.Window),
			Degraded:  true,
		}
	}

	resetAt := now.Add(ttl)

	if count > int64(policy.MaxAttempts) {
		return Result{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   resetAt,
		}
	}

	return Result{
		Allowed:   true,
		Remaining: policy.MaxAttempts - int(count),
		ResetAt:   resetAt,
	}
}
