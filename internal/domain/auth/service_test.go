package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pawhaven/pawhaven-api/internal/domain/account"
	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
	"github.com/pawhaven/pawhaven-api/internal/domain/ratelimit"
	"github.com/pawhaven/pawhaven-api/internal/pkg/jwt"
	"github.com/pawhaven/pawhaven-api/internal/pkg/password"
)

type accountsStub struct {
	byEmail map[string]*account.Account
	created []*account.Account
	coins   map[uuid.UUID]int
}

func newAccountsStub() *accountsStub {
	return &accountsStub{
		byEmail: make(map[string]*account.Account),
		coins:   make(map[uuid.UUID]int),
	}
}

func (s *accountsStub) Create(ctx context.Context, acc *account.Account) error {
	if _, ok := s.byEmail[acc.Email]; ok {
		return account.ErrEmailTaken
	}
	s.byEmail[acc.Email] = acc
	s.created = append(s.created, acc)
	return nil
}

func (s *accountsStub) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	for _, acc := range s.byEmail {
		if acc.ID == id {
			return acc, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (s *accountsStub) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	acc, ok := s.byEmail[email]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return acc, nil
}

func (s *accountsStub) GetBalances(ctx context.Context, id uuid.UUID) (*account.Balances, error) {
	return &account.Balances{Coins: s.coins[id]}, nil
}

func (s *accountsStub) AddCoins(ctx context.Context, id uuid.UUID, amount int) error {
	s.coins[id] += amount
	return nil
}

type recorderStub struct {
	entries []ledger.Entry
}

func (r *recorderStub) Record(ctx context.Context, entry ledger.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

// windowStub counts hits in memory with a fixed window ttl.
type windowStub struct {
	counts map[string]int64
}

func (s *windowStub) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s.counts == nil {
		s.counts = make(map[string]int64)
	}
	s.counts[key]++
	return s.counts[key], window, nil
}

func newTestService(accounts *accountsStub, rec *recorderStub) *Service {
	limiter := ratelimit.NewLimiter(&windowStub{})
	jwtSvc := jwt.NewService("test-secret", 15*time.Minute)
	return NewService(accounts, rec, limiter, jwtSvc)
}

func TestRegisterGrantsSignupBonus(t *testing.T) {
	accounts := newAccountsStub()
	rec := &recorderStub{}
	svc := newTestService(accounts, rec)

	acc, token, err := svc.Register(context.Background(), "Paw@Example.com", "hunter22222")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if token == "" {
		t.Error("expected an access token")
	}
	if acc.Email != "paw@example.com" {
		t.Errorf("email not normalized: %s", acc.Email)
	}
	if accounts.coins[acc.ID] != SignupBonusCoins {
		t.Errorf("expected %d bonus coins, got %d", SignupBonusCoins, accounts.coins[acc.ID])
	}
	if len(rec.entries) != 1 || rec.entries[0].Activity != ledger.ActivitySignupBonus {
		t.Errorf("signup bonus not recorded: %+v", rec.entries)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	accounts := newAccountsStub()
	svc := newTestService(accounts, &recorderStub{})
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "paw@example.com", "hunter22222"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, _, err := svc.Register(ctx, "paw@example.com", "hunter22222")
	if !errors.Is(err, account.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginHappyPath(t *testing.T) {
	accounts := newAccountsStub()
	svc := newTestService(accounts, &recorderStub{})
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "paw@example.com", "hunter22222"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	acc, token, limit, err := svc.Login(ctx, "paw@example.com", "hunter22222")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if limit != nil {
		t.Fatalf("not rate limited, got %+v", limit)
	}
	if token == "" || acc == nil {
		t.Error("expected account and token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	accounts := newAccountsStub()
	svc := newTestService(accounts, &recorderStub{})
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "paw@example.com", "hunter22222"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, _, _, err := svc.Login(ctx, "paw@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc := newTestService(newAccountsStub(), &recorderStub{})

	_, _, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginBannedAccount(t *testing.T) {
	accounts := newAccountsStub()
	hash, err := password.Hash("hunter22222")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	accounts.byEmail["banned@example.com"] = &account.Account{
		ID:           uuid.New(),
		Email:        "banned@example.com",
		PasswordHash: hash,
		Role:         account.RolePlayer,
		IsBanned:     true,
	}
	svc := newTestService(accounts, &recorderStub{})

	_, _, _, err = svc.Login(context.Background(), "banned@example.com", "hunter22222")
	if !errors.Is(err, ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	accounts := newAccountsStub()
	svc := newTestService(accounts, &recorderStub{})
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "paw@example.com", "hunter22222"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Burn the whole login window with bad passwords.
	for i := 0; i < 5; i++ {
		if _, _, _, err := svc.Login(ctx, "paw@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// The sixth attempt is rejected before the password is even checked.
	_, _, limit, err := svc.Login(ctx, "paw@example.com", "hunter22222")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if limit == nil || limit.Allowed {
		t.Fatalf("expected rate limit denial, got %+v", limit)
	}
}
