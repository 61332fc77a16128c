package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Recorder appends immutable rows to the transaction logs. It is the single
// write path into the logs; balances are always mutated by the caller first,
// and a failed log write is never compensated by rolling the balance back.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Reader exposes the read side used by history listings and the audit pass.
type Reader interface {
	Sum(ctx context.Context, log Log, accountID uuid.UUID) (int, error)
	List(ctx context.Context, log Log, accountID uuid.UUID, pagination Pagination) ([]Transaction, error)
}

// Service implements Recorder and Reader on top of the ledger repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record writes one row per non-zero delta. A single logical event touching
// multiple currencies produces multiple rows sharing activity/description,
// not one multi-currency row. All three writes are attempted even when an
// earlier one fails, so a partial failure loses as little history as
// possible; the combined failure is logged and returned to the caller.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	if entry.GemsDelta == 0 && entry.CoinsDelta == 0 && entry.XPDelta == 0 {
		return ErrEmptyEntry
	}

	var failed []Log

	if entry.GemsDelta != 0 {
		if err := s.repo.Insert(ctx, LogGems, entry.AccountID, entry.GemsDelta, entry.Activity, entry.Description); err != nil {
			log.Error().Err(err).
				Str("account_id", entry.AccountID.String()).
				Int("delta", entry.GemsDelta).
				Str("activity", entry.Activity).
				Msg("Failed to record gem transaction")
			failed = append(failed, LogGems)
		}
	}

	if entry.CoinsDelta != 0 {
		if err := s.repo.Insert(ctx, LogCoins, entry.AccountID, entry.CoinsDelta, entry.Activity, entry.Description); err != nil {
			log.Error().Err(err).
				Str("account_id", entry.AccountID.String()).
				Int("delta", entry.CoinsDelta).
				Str("activity", entry.Activity).
				Msg("Failed to record coin transaction")
			failed = append(failed, LogCoins)
		}
	}

	if entry.XPDelta != 0 {
		if err := s.repo.Insert(ctx, LogXP, entry.AccountID, entry.XPDelta, entry.Activity, entry.Description); err != nil {
			log.Error().Err(err).
				Str("account_id", entry.AccountID.String()).
				Int("delta", entry.XPDelta).
				Str("activity", entry.Activity).
				Msg("Failed to record xp transaction")
			failed = append(failed, LogXP)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: logs %v", ErrRecordFailed, failed)
	}

	return nil
}

// Sum returns the signed total of one log for an account.
func (s *Service) Sum(ctx context.Context, log Log, accountID uuid.UUID) (int, error) {
	return s.repo.SumByAccount(ctx, log, accountID)
}

// List returns paginated transaction history for an account.
func (s *Service) List(ctx context.Context, log Log, accountID uuid.UUID, pagination Pagination) ([]Transaction, error) {
	return s.repo.ListByAccount(ctx, log, accountID, pagination)
}
