package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pawhaven/pawhaven-api/internal/domain/account"
	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
)

// tolerance absorbs rounding and in-flight writes. The cached balance and
// the log sum may differ by at most this much before the account is flagged.
const tolerance = 1

// BalanceReader reads an account's cached balances.
type BalanceReader interface {
	GetBalances(ctx context.Context, id uuid.UUID) (*account.Balances, error)
}

// Discrepancy is one currency whose cached balance has drifted from its
// transaction log beyond tolerance.
type Discrepancy struct {
	Log       ledger.Log `json:"log"`
	Balance   int        `json:"balance"`
	LedgerSum int        `json:"ledger_sum"`
	Delta     int        `json:"delta"`
}

// Report is the result of auditing one account across all three logs.
type Report struct {
	AccountID     uuid.UUID     `json:"account_id"`
	Clean         bool          `json:"clean"`
	Discrepancies []Discrepancy `json:"discrepancies"`
	CheckedAt     time.Time     `json:"checked_at"`
}

// Service cross-checks cached balances against the transaction logs.
// Balances are written first and logs second, so a crash or suppressed log
// write shows up here as a positive delta on the affected currency.
type Service struct {
	balances BalanceReader
	reader   ledger.Reader
}

func NewService(balances BalanceReader, reader ledger.Reader) *Service {
	return &Service{balances: balances, reader: reader}
}

// Audit compares each of the account's cached balances with the signed sum
// of its transaction log.
func (s *Service) Audit(ctx context.Context, accountID uuid.UUID) (*Report, error) {
	b, err := s.balances.GetBalances(ctx, accountID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		AccountID:     accountID,
		Clean:         true,
		Discrepancies: []Discrepancy{},
		CheckedAt:     time.Now().UTC(),
	}

	checks := []struct {
		log     ledger.Log
		balance int
	}{
		{ledger.LogGems, b.Gems},
		{ledger.LogCoins, b.Coins},
		{ledger.LogXP, b.XP},
	}

	for _, c := range checks {
		sum, err := s.reader.Sum(ctx, c.log, accountID)
		if err != nil {
			return nil, fmt.Errorf("sum %s log: %w", c.log, err)
		}

		delta := c.balance - sum
		if delta > tolerance || delta < -tolerance {
			report.Clean = false
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Log:       c.log,
				Balance:   c.balance,
				LedgerSum: sum,
				Delta:     delta,
			})
		}
	}

	if !report.Clean {
		log.Warn().
			Str("account_id", accountID.String()).
			Int("discrepancies", len(report.Discrepancies)).
			Msg("Balance audit found drift")
	}

	return report, nil
}
