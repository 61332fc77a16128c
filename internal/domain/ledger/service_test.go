package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type insertCall struct {
	log    Log
	delta  int
	action string
}

type repoStub struct {
	inserts []insertCall
	failOn  map[Log]error
	sums    map[Log]int
}

func (r *repoStub) Insert(_ context.Context, log Log, _ uuid.UUID, delta int, activity, _ string) error {
	if err, ok := r.failOn[log]; ok {
		return err
	}
	r.inserts = append(r.inserts, insertCall{log: log, delta: delta, action: activity})
	return nil
}

func (r *repoStub) SumByAccount(_ context.Context, log Log, _ uuid.UUID) (int, error) {
	return r.sums[log], nil
}

func (r *repoStub) ListByAccount(context.Context, Log, uuid.UUID, Pagination) ([]Transaction, error) {
	return nil, nil
}

func TestRecordWritesOneRowPerNonZeroDelta(t *testing.T) {
	repo := &repoStub{}
	svc := NewService(repo)

	err := svc.Record(context.Background(), Entry{
		AccountID:   uuid.New(),
		CoinsDelta:  1000,
		GemsDelta:   10,
		Activity:    ActivityDailyReward,
		Description: "daily reward",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.inserts) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(repo.inserts))
	}
	for _, call := range repo.inserts {
		if call.action != ActivityDailyReward {
			t.Fatalf("rows must share the activity tag, got %q", call.action)
		}
	}
}

func TestRecordEmptyEntry(t *testing.T) {
	svc := NewService(&repoStub{})

	err := svc.Record(context.Background(), Entry{AccountID: uuid.New()})
	if !errors.Is(err, ErrEmptyEntry) {
		t.Fatalf("expected ErrEmptyEntry, got %v", err)
	}
}

func TestRecordPartialFailureStillWritesOtherLogs(t *testing.T) {
	repo := &repoStub{failOn: map[Log]error{LogGems: ErrInternal}}
	svc := NewService(repo)

	err := svc.Record(context.Background(), Entry{
		AccountID:  uuid.New(),
		GemsDelta:  10,
		CoinsDelta: 1000,
		XPDelta:    50,
		Activity:   ActivityDailyReward,
	})
	if !errors.Is(err, ErrRecordFailed) {
		t.Fatalf("expected ErrRecordFailed, got %v", err)
	}

	// The coin and xp rows must land even though the gem write failed.
	if len(repo.inserts) != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", len(repo.inserts))
	}
}
