package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetBalances(ctx context.Context, id uuid.UUID) (*Balances, error)
	AddCoins(ctx context.Context, id uuid.UUID, amount int) error
}

// AccountRepository provides account row access.
type AccountRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, acc *Account) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO accounts (
			id, email, password_hash, role, gems, coins, xp,
			daily_xp_earned, care_badge_days, is_premium, is_banned
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, FALSE)
	`, acc.ID, acc.Email, acc.PasswordHash, acc.Role, acc.Gems, acc.Coins, acc.XP, acc.IsPremium)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("%w: insert account", ErrInternal)
	}

	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acc Account
	err := r.db.GetContext(ctx2, &acc, `
		SELECT id, email, password_hash, role, gems, coins, xp,
		       daily_xp_earned,
		       last_xp_date::text AS last_xp_date,
		       last_daily_reward_date::text AS last_daily_reward_date,
		       care_badge_days, is_premium, is_banned, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: get account", ErrInternal)
	}

	return &acc, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acc Account
	err := r.db.GetContext(ctx2, &acc, `
		SELECT id, email, password_hash, role, gems, coins, xp,
		       daily_xp_earned,
		       last_xp_date::text AS last_xp_date,
		       last_daily_reward_date::text AS last_daily_reward_date,
		       care_badge_days, is_premium, is_banned, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: get account by email", ErrInternal)
	}

	return &acc, nil
}

func (r *AccountRepository) GetBalances(ctx context.Context, id uuid.UUID) (*Balances, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var b Balances
	err := r.db.GetContext(ctx2, &b, `SELECT gems, coins, xp FROM accounts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: get balances", ErrInternal)
	}

	return &b, nil
}

// AddCoins applies a coin delta to the cached balance. Callers record the
// matching ledger row afterwards (balance-first, log-second).
func (r *AccountRepository) AddCoins(ctx context.Context, id uuid.UUID, amount int) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE accounts
		SET coins = coins + $2, updated_at = NOW()
		WHERE id = $1
	`, id, amount)
	if err != nil {
		return fmt.Errorf("%w: update coins", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrAccountNotFound
	}

	return nil
}
