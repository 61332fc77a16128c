package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// tableFor maps logs onto their backing tables. Keeping the mapping closed
// here means log names never reach SQL unchecked.
var tableFor = map[Log]string{
	LogGems:  "gem_transactions",
	LogCoins: "coin_transactions",
	LogXP:    "xp_transactions",
}

type Repository interface {
	Insert(ctx context.Context, log Log, accountID uuid.UUID, amountDelta int, activity, description string) error
	SumByAccount(ctx context.Context, log Log, accountID uuid.UUID) (int, error)
	ListByAccount(ctx context.Context, log Log, accountID uuid.UUID, pagination Pagination) ([]Transaction, error)
}

// LedgerRepository provides append-only access to the three transaction logs.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Insert(ctx context.Context, log Log, accountID uuid.UUID, amountDelta int, activity, description string) error {
	table, ok := tableFor[log]
	if !ok {
		return ErrUnknownLog
	}

	if strings.TrimSpace(description) == "" {
		description = "balance adjustment"
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, account_id, amount_delta, activity, description)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
	`, table)

	if _, err := r.db.ExecContext(ctx2, query, accountID, amountDelta, activity, description); err != nil {
		return fmt.Errorf("%w: insert %s transaction", ErrInternal, log)
	}

	return nil
}

func (r *LedgerRepository) SumByAccount(ctx context.Context, log Log, accountID uuid.UUID) (int, error) {
	table, ok := tableFor[log]
	if !ok {
		return 0, ErrUnknownLog
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var sum int
	query := fmt.Sprintf(`SELECT COALESCE(SUM(amount_delta), 0) FROM %s WHERE account_id = $1`, table)
	if err := r.db.GetContext(ctx2, &sum, query, accountID); err != nil {
		return 0, fmt.Errorf("%w: sum %s transactions", ErrInternal, log)
	}

	return sum, nil
}

func (r *LedgerRepository) ListByAccount(ctx context.Context, log Log, accountID uuid.UUID, pagination Pagination) ([]Transaction, error) {
	table, ok := tableFor[log]
	if !ok {
		return nil, ErrUnknownLog
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions := make([]Transaction, 0)
	query := fmt.Sprintf(`
		SELECT id, account_id, amount_delta, activity, description, created_at
		FROM %s
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, table)
	if err := r.db.SelectContext(ctx2, &transactions, query, accountID, limit, pagination.Offset); err != nil {
		return nil, fmt.Errorf("%w: list %s transactions", ErrInternal, log)
	}

	return transactions, nil
}
