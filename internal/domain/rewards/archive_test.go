package rewards

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pawhaven/pawhaven-api/internal/pkg/storage"
)

func TestArchiveRunRoundTripsThroughLocalStore(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	run := &Run{
		ID:             uuid.New(),
		RunDate:        "2026-08-29",
		Status:         RunStatusCompleted,
		TriggeredBy:    TriggerCron,
		UsersProcessed: 42,
		UsersRewarded:  40,
		ErrorsCount:    2,
		StartedAt:      time.Now().UTC(),
	}

	archive := NewRunArchive(store)
	if err := archive.ArchiveRun(context.Background(), run); err != nil {
		t.Fatalf("ArchiveRun failed: %v", err)
	}

	body, err := store.Get(context.Background(), "runs/2026-08-29/"+run.ID.String()+".json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}

	var got Run
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("archived document is not valid JSON: %v", err)
	}
	if got.ID != run.ID || got.UsersRewarded != 40 || got.Status != RunStatusCompleted {
		t.Errorf("archived run mismatch: %+v", got)
	}
}

func TestLocalStoreMissingKey(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	if _, err := store.Get(context.Background(), "runs/absent.json"); err != storage.ErrObjectNotFound {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
