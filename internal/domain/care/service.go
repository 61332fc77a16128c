package care

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pawhaven/pawhaven-api/internal/domain/account"
	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
	"github.com/pawhaven/pawhaven-api/internal/domain/ratelimit"
	"github.com/pawhaven/pawhaven-api/internal/domain/xp"
)

// Result summarizes one completed care action.
type Result struct {
	Action      string           `json:"action"`
	CoinsEarned int              `json:"coins_earned"`
	XP          *xp.AwardResult  `json:"xp"`
	RateLimit   ratelimit.Result `json:"rate_limit"`
}

// Awarder is the XP engine surface a care action needs.
type Awarder interface {
	CheckAndAward(ctx context.Context, accountID uuid.UUID, amount int, activity string) (*xp.AwardResult, error)
}

// Service applies care actions: the coin payout is written to the balance
// first and the log row second; the XP payout goes through the daily cap.
type Service struct {
	accounts account.Repository
	recorder ledger.Recorder
	awards   Awarder
	limiter  *ratelimit.Limiter
}

func NewService(accounts account.Repository, recorder ledger.Recorder, awards Awarder, limiter *ratelimit.Limiter) *Service {
	return &Service{
		accounts: accounts,
		recorder: recorder,
		awards:   awards,
		limiter:  limiter,
	}
}

// Perform executes one care action for the account. Verified against the
// financial_transaction window: coin grants are balance mutations, so they
// share that policy.
func (s *Service) Perform(ctx context.Context, accountID uuid.UUID, action string) (*Result, error) {
	reward, ok := RewardFor(action)
	if !ok {
		return nil, ErrUnknownAction
	}

	limit, err := s.limiter.Check(ctx, ratelimit.ActionFinancialTransaction, accountID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: rate limit check", ErrInternal)
	}
	if !limit.Allowed {
		return &Result{Action: action, RateLimit: limit}, ErrRateLimited
	}

	if err := s.accounts.AddCoins(ctx, accountID, reward.Coins); err != nil {
		return nil, err
	}

	// The coins are already on the balance; a failed log row is drift for
	// the audit pass, not a reason to fail the action.
	if err := s.recorder.Record(ctx, ledger.Entry{
		AccountID:   accountID,
		CoinsDelta:  reward.Coins,
		Activity:    ledger.ActivityCareAction,
		Description: action,
	}); err != nil {
		log.Error().Err(err).
			Str("account_id", accountID.String()).
			Str("action", action).
			Msg("Failed to record care action coins")
	}

	award, err := s.awards.CheckAndAward(ctx, accountID, reward.XP, ledger.ActivityCareAction)
	if err != nil {
		return nil, err
	}

	return &Result{
		Action:      action,
		CoinsEarned: reward.Coins,
		XP:          award,
		RateLimit:   limit,
	}, nil
}
