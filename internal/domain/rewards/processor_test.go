package rewards

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
)

type fakeAccount struct {
	id        uuid.UUID
	premium   bool
	banned    bool
	coins     int
	gems      int
	badgeDays int
	lastDate  *string
}

// repoStub keeps accounts in memory and reproduces the conditional-write
// semantics of GrantDaily so the processors can be exercised without a
// database.
type repoStub struct {
	accounts []*fakeAccount
	runs     []*Run
	listErr  error
	grantErr map[uuid.UUID]error
	// advance simulates a concurrent writer moving the reward date
	// between the eligibility query and the grant.
	advance map[uuid.UUID]bool
}

func (s *repoStub) CreateRun(ctx context.Context, run *Run) error {
	cp := *run
	s.runs = append(s.runs, &cp)
	return nil
}

func (s *repoStub) FinalizeRun(ctx context.Context, runID uuid.UUID, status RunStatus, processed, rewarded, errorsCount int, detail RunErrorList) error {
	for _, r := range s.runs {
		if r.ID == runID {
			if r.Status != RunStatusRunning {
				return errors.New("run already finalized")
			}
			r.Status = status
			r.UsersProcessed = processed
			r.UsersRewarded = rewarded
			r.ErrorsCount = errorsCount
			r.ErrorDetail = detail
			return nil
		}
	}
	return errors.New("run not found")
}

func (s *repoStub) HasCompletedRun(ctx context.Context, date string) (bool, error) {
	for _, r := range s.runs {
		if r.RunDate == date && r.Status == RunStatusCompleted && r.TriggeredBy != TriggerBackfill {
			return true, nil
		}
	}
	return false, nil
}

func (s *repoStub) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	out := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, *r)
	}
	return out, nil
}

func (s *repoStub) CountPending(ctx context.Context, date string) (int, error) {
	n := 0
	for _, a := range s.accounts {
		if !a.banned && (a.lastDate == nil || *a.lastDate < date) {
			n++
		}
	}
	return n, nil
}

func (s *repoStub) ListEligible(ctx context.Context, date string) ([]Candidate, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Candidate, 0)
	for _, a := range s.accounts {
		if a.banned {
			continue
		}
		if a.lastDate != nil && *a.lastDate >= date {
			continue
		}
		var prev *string
		if a.lastDate != nil {
			v := *a.lastDate
			prev = &v
		}
		out = append(out, Candidate{
			ID:                  a.id,
			IsPremium:           a.premium,
			CareBadgeDays:       a.badgeDays,
			LastDailyRewardDate: prev,
		})
	}
	return out, nil
}

func (s *repoStub) GrantDaily(ctx context.Context, accountID uuid.UUID, coins, gems int, date string, prevDate *string) (bool, error) {
	if err := s.grantErr[accountID]; err != nil {
		return false, err
	}
	for _, a := range s.accounts {
		if a.id != accountID {
			continue
		}
		if s.advance[accountID] {
			v := date
			a.lastDate = &v
			s.advance[accountID] = false
		}
		if a.banned {
			return false, nil
		}
		if !sameDate(a.lastDate, prevDate) {
			return false, nil
		}
		if a.lastDate != nil && *a.lastDate >= date {
			return false, nil
		}
		a.coins += coins
		a.gems += gems
		a.badgeDays++
		v := date
		a.lastDate = &v
		return true, nil
	}
	return false, nil
}

func sameDate(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type recorderStub struct {
	entries []ledger.Entry
	failFor map[uuid.UUID]bool
}

func (r *recorderStub) Record(ctx context.Context, entry ledger.Entry) error {
	if r.failFor[entry.AccountID] {
		return errors.New("ledger unavailable")
	}
	r.entries = append(r.entries, entry)
	return nil
}

func strPtr(s string) *string { return &s }

func TestRunDailyGrantsCoinsAndPremiumGems(t *testing.T) {
	free := &fakeAccount{id: uuid.New(), coins: 500}
	premium := &fakeAccount{id: uuid.New(), premium: true, gems: 5}
	repo := &repoStub{accounts: []*fakeAccount{free, premium}}
	rec := &recorderStub{}
	p := NewProcessor(repo, rec)

	run, err := p.RunDaily(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("RunDaily failed: %v", err)
	}

	if run.Status != RunStatusCompleted {
		t.Errorf("expected completed status, got %s", run.Status)
	}
	if run.UsersProcessed != 2 || run.UsersRewarded != 2 || run.ErrorsCount != 0 {
		t.Errorf("unexpected counts: processed=%d rewarded=%d errors=%d",
			run.UsersProcessed, run.UsersRewarded, run.ErrorsCount)
	}
	if free.coins != 500+DailyCoinsReward || free.gems != 0 {
		t.Errorf("free account: coins=%d gems=%d", free.coins, free.gems)
	}
	if premium.coins != DailyCoinsReward || premium.gems != 5+PremiumGemBonus {
		t.Errorf("premium account: coins=%d gems=%d", premium.coins, premium.gems)
	}
	if free.badgeDays != 1 || premium.badgeDays != 1 {
		t.Errorf("care badge days: free=%d premium=%d", free.badgeDays, premium.badgeDays)
	}
}

func TestRunDailyRecordsTransactions(t *testing.T) {
	premium := &fakeAccount{id: uuid.New(), premium: true}
	repo := &repoStub{accounts: []*fakeAccount{premium}}
	rec := &recorderStub{}
	p := NewProcessor(repo, rec)

	if _, err := p.RunDaily(context.Background(), TriggerCron); err != nil {
		t.Fatalf("RunDaily failed: %v", err)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Activity != ledger.ActivityDailyReward {
		t.Errorf("expected activity %s, got %s", ledger.ActivityDailyReward, e.Activity)
	}
	if e.CoinsDelta != DailyCoinsReward || e.GemsDelta != PremiumGemBonus {
		t.Errorf("unexpected deltas: coins=%d gems=%d", e.CoinsDelta, e.GemsDelta)
	}
}

func TestRunDailySkipsBannedAccounts(t *testing.T) {
	banned := &fakeAccount{id: uuid.New(), banned: true}
	active := &fakeAccount{id: uuid.New()}
	repo := &repoStub{accounts: []*fakeAccount{banned, active}}
	p := NewProcessor(repo, &recorderStub{})

	run, err := p.RunDaily(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("RunDaily failed: %v", err)
	}

	if run.UsersProcessed != 1 || run.UsersRewarded != 1 {
		t.Errorf("unexpected counts: processed=%d rewarded=%d", run.UsersProcessed, run.UsersRewarded)
	}
	if banned.coins != 0 {
		t.Errorf("banned account was granted %d coins", banned.coins)
	}
}

func TestRunDailyIsolatesAccountErrors(t *testing.T) {
	broken := &fakeAccount{id: uuid.New()}
	fine := &fakeAccount{id: uuid.New()}
	repo := &repoStub{
		accounts: []*fakeAccount{broken, fine},
		grantErr: map[uuid.UUID]error{broken.id: errors.New("row locked")},
	}
	p := NewProcessor(repo, &recorderStub{})

	run, err := p.RunDaily(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("RunDaily failed: %v", err)
	}

	if run.Status != RunStatusCompleted {
		t.Errorf("expected completed despite account error, got %s", run.Status)
	}
	if run.UsersProcessed != 2 || run.UsersRewarded != 1 || run.ErrorsCount != 1 {
		t.Errorf("unexpected counts: processed=%d rewarded=%d errors=%d",
			run.UsersProcessed, run.UsersRewarded, run.ErrorsCount)
	}
	if len(run.ErrorDetail) != 1 || run.ErrorDetail[0].AccountID != broken.id.String() {
		t.Errorf("error detail does not name the failed account: %+v", run.ErrorDetail)
	}
	if fine.coins != DailyCoinsReward {
		t.Errorf("healthy account not rewarded, coins=%d", fine.coins)
	}
}

func TestRunDailyConcurrentGrantNotDoubled(t *testing.T) {
	acc := &fakeAccount{id: uuid.New()}
	repo := &repoStub{
		accounts: []*fakeAccount{acc},
		advance:  map[uuid.UUID]bool{acc.id: true},
	}
	p := NewProcessor(repo, &recorderStub{})

	run, err := p.RunDaily(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("RunDaily failed: %v", err)
	}

	if run.UsersRewarded != 0 || run.ErrorsCount != 0 {
		t.Errorf("concurrent advance should be a silent skip: rewarded=%d errors=%d",
			run.UsersRewarded, run.ErrorsCount)
	}
	if acc.coins != 0 {
		t.Errorf("account double-granted, coins=%d", acc.coins)
	}
}

func TestRunDailyRecorderFailureKeepsGrant(t *testing.T) {
	acc := &fakeAccount{id: uuid.New()}
	repo := &repoStub{accounts: []*fakeAccount{acc}}
	rec := &recorderStub{failFor: map[uuid.UUID]bool{acc.id: true}}
	p := NewProcessor(repo, rec)

	run, err := p.RunDaily(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("RunDaily failed: %v", err)
	}

	if acc.coins != DailyCoinsReward {
		t.Errorf("grant should stand when the transaction write fails, coins=%d", acc.coins)
	}
	if run.ErrorsCount != 1 {
		t.Errorf("suppressed transaction write must be reported, errors=%d", run.ErrorsCount)
	}
}

func TestRunDailyEligibilityFailureFailsRun(t *testing.T) {
	repo := &repoStub{listErr: errors.New("connection refused")}
	p := NewProcessor(repo, &recorderStub{})

	_, err := p.RunDaily(context.Background(), TriggerCron)
	if !errors.Is(err, ErrRunFailed) {
		t.Fatalf("expected ErrRunFailed, got %v", err)
	}

	if len(repo.runs) != 1 || repo.runs[0].Status != RunStatusFailed {
		t.Errorf("execution log row not finalized as failed: %+v", repo.runs)
	}
}

func TestRunDailyWritesExecutionLog(t *testing.T) {
	repo := &repoStub{accounts: []*fakeAccount{{id: uuid.New()}}}
	p := NewProcessor(repo, &recorderStub{})

	run, err := p.RunDaily(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("RunDaily failed: %v", err)
	}

	if len(repo.runs) != 1 {
		t.Fatalf("expected 1 run row, got %d", len(repo.runs))
	}
	stored := repo.runs[0]
	if stored.ID != run.ID || stored.Status != RunStatusCompleted || stored.TriggeredBy != TriggerManual {
		t.Errorf("stored run mismatch: %+v", stored)
	}
}

type notifierStub struct {
	events []interface{}
}

func (n *notifierStub) Publish(event interface{}) {
	n.events = append(n.events, event)
}

func TestRunDailyPublishesToNotifier(t *testing.T) {
	repo := &repoStub{accounts: []*fakeAccount{{id: uuid.New()}}}
	n := &notifierStub{}
	p := NewProcessor(repo, &recorderStub{}).WithNotifier(n)

	if _, err := p.RunDaily(context.Background(), TriggerManual); err != nil {
		t.Fatalf("RunDaily failed: %v", err)
	}

	if len(n.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(n.events))
	}
	if _, ok := n.events[0].(*Run); !ok {
		t.Errorf("published event is not a run: %T", n.events[0])
	}
}
