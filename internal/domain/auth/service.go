package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pawhaven/pawhaven-api/internal/domain/account"
	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
	"github.com/pawhaven/pawhaven-api/internal/domain/ratelimit"
	"github.com/pawhaven/pawhaven-api/internal/pkg/jwt"
	"github.com/pawhaven/pawhaven-api/internal/pkg/password"
)

// SignupBonusCoins is granted once, on registration.
const SignupBonusCoins = 500

// Service handles registration and login. Login attempts are rate limited
// per email so credential stuffing burns out quickly; registration is not.
type Service struct {
	accounts account.Repository
	recorder ledger.Recorder
	limiter  *ratelimit.Limiter
	jwt      *jwt.Service
}

func NewService(accounts account.Repository, recorder ledger.Recorder, limiter *ratelimit.Limiter, jwtService *jwt.Service) *Service {
	return &Service{
		accounts: accounts,
		recorder: recorder,
		limiter:  limiter,
		jwt:      jwtService,
	}
}

// Register creates a new player account and grants the signup bonus.
func (s *Service) Register(ctx context.Context, email, plainPassword string) (*account.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%w: hash password", ErrInternal)
	}

	acc := &account.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         account.RolePlayer,
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, "", err
	}

	// Balance first, log second. A failed bonus never fails the signup.
	if err := s.accounts.AddCoins(ctx, acc.ID, SignupBonusCoins); err != nil {
		log.Error().Err(err).
			Str("account_id", acc.ID.String()).
			Msg("Failed to grant signup bonus")
	} else {
		acc.Coins = SignupBonusCoins
		if err := s.recorder.Record(ctx, ledger.Entry{
			AccountID:   acc.ID,
			CoinsDelta:  SignupBonusCoins,
			Activity:    ledger.ActivitySignupBonus,
			Description: "welcome bonus",
		}); err != nil {
			log.Error().Err(err).
				Str("account_id", acc.ID.String()).
				Msg("Failed to record signup bonus transaction")
		}
	}

	token, err := s.jwt.GenerateAccessToken(acc.ID, acc.Role, acc.IsBanned)
	if err != nil {
		return nil, "", fmt.Errorf("%w: issue token", ErrInternal)
	}

	log.Info().
		Str("account_id", acc.ID.String()).
		Msg("Account registered")

	return acc, token, nil
}

// Login verifies credentials and issues an access token. The rate limit
// check runs before the password check, so hammering a wrong password locks
// the email out for the rest of the window.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (*account.Account, string, *ratelimit.Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	limit, err := s.limiter.Check(ctx, ratelimit.ActionLoginAttempt, email)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%w: rate limit check", ErrInternal)
	}
	if !limit.Allowed {
		return nil, "", &limit, nil
	}

	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			// Uniform response for unknown email and wrong password.
			return nil, "", nil, ErrInvalidCredentials
		}
		return nil, "", nil, err
	}

	if !password.Verify(plainPassword, acc.PasswordHash) {
		return nil, "", nil, ErrInvalidCredentials
	}

	if acc.IsBanned {
		return nil, "", nil, ErrBanned
	}

	token, err := s.jwt.GenerateAccessToken(acc.ID, acc.Role, acc.IsBanned)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%w: issue token", ErrInternal)
	}

	return acc, token, nil, nil
}
