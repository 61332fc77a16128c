package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/pawhaven/pawhaven-api/internal/domain/account"
	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
)

type balancesStub struct {
	balances map[uuid.UUID]account.Balances
}

func (s *balancesStub) GetBalances(ctx context.Context, id uuid.UUID) (*account.Balances, error) {
	b, ok := s.balances[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return &b, nil
}

type readerStub struct {
	sums   map[ledger.Log]int
	sumErr error
}

func (s *readerStub) Sum(ctx context.Context, log ledger.Log, accountID uuid.UUID) (int, error) {
	if s.sumErr != nil {
		return 0, s.sumErr
	}
	return s.sums[log], nil
}

func (s *readerStub) List(ctx context.Context, log ledger.Log, accountID uuid.UUID, p ledger.Pagination) ([]ledger.Transaction, error) {
	return nil, nil
}

func TestAuditCleanAccount(t *testing.T) {
	id := uuid.New()
	svc := NewService(
		&balancesStub{balances: map[uuid.UUID]account.Balances{
			id: {Gems: 50, Coins: 3000, XP: 1200},
		}},
		&readerStub{sums: map[ledger.Log]int{
			ledger.LogGems:  50,
			ledger.LogCoins: 3000,
			ledger.LogXP:    1200,
		}},
	)

	report, err := svc.Audit(context.Background(), id)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}

	if !report.Clean {
		t.Errorf("expected clean report, got discrepancies: %+v", report.Discrepancies)
	}
	if len(report.Discrepancies) != 0 {
		t.Errorf("expected no discrepancies, got %d", len(report.Discrepancies))
	}
}

func TestAuditDetectsSuppressedLogWrite(t *testing.T) {
	// A balance was credited 1000 coins but the log row was never written.
	id := uuid.New()
	svc := NewService(
		&balancesStub{balances: map[uuid.UUID]account.Balances{
			id: {Coins: 4000},
		}},
		&readerStub{sums: map[ledger.Log]int{ledger.LogCoins: 3000}},
	)

	report, err := svc.Audit(context.Background(), id)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}

	if report.Clean {
		t.Fatal("expected drift to be flagged")
	}
	if len(report.Discrepancies) != 1 {
		t.Fatalf("expected 1 discrepancy, got %d", len(report.Discrepancies))
	}
	d := report.Discrepancies[0]
	if d.Log != ledger.LogCoins || d.Delta != 1000 {
		t.Errorf("unexpected discrepancy: %+v", d)
	}
}

func TestAuditTolerance(t *testing.T) {
	id := uuid.New()
	svc := NewService(
		&balancesStub{balances: map[uuid.UUID]account.Balances{
			id: {Gems: 51, Coins: 2999, XP: 100},
		}},
		&readerStub{sums: map[ledger.Log]int{
			ledger.LogGems:  50,
			ledger.LogCoins: 3000,
			ledger.LogXP:    100,
		}},
	)

	report, err := svc.Audit(context.Background(), id)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}

	if !report.Clean {
		t.Errorf("drift of 1 must pass, got: %+v", report.Discrepancies)
	}
}

func TestAuditUnknownAccount(t *testing.T) {
	svc := NewService(&balancesStub{balances: map[uuid.UUID]account.Balances{}}, &readerStub{})

	_, err := svc.Audit(context.Background(), uuid.New())
	if !errors.Is(err, account.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAuditSumFailure(t *testing.T) {
	id := uuid.New()
	svc := NewService(
		&balancesStub{balances: map[uuid.UUID]account.Balances{id: {}}},
		&readerStub{sumErr: errors.New("connection refused")},
	)

	if _, err := svc.Audit(context.Background(), id); err == nil {
		t.Fatal("expected error when log sum fails")
	}
}
