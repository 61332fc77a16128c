package rewards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pawhaven/pawhaven-api/internal/pkg/storage"
)

// RunArchive persists finalized run summaries to an object store so the
// execution log survives database retention windows.
type RunArchive struct {
	store storage.ObjectStore
}

func NewRunArchive(store storage.ObjectStore) *RunArchive {
	return &RunArchive{store: store}
}

// ArchiveRun uploads the run summary as a JSON document keyed by date and
// run id, e.g. runs/2026-08-29/1b4e28b4-....json.
func (a *RunArchive) ArchiveRun(ctx context.Context, run *Run) error {
	doc, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	key := fmt.Sprintf("runs/%s/%s.json", run.RunDate, run.ID)
	if err := a.store.Put(ctx, key, bytes.NewReader(doc), "application/json"); err != nil {
		return fmt.Errorf("upload run archive: %w", err)
	}

	return nil
}
