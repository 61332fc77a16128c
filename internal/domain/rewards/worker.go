package rewards

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Worker triggers the daily reward batch on a schedule. It ticks more often
// than once a day; the completed-run check keeps each calendar day to a
// single automated run.
type Worker struct {
	processor *Processor
	repo      Repository
	interval  time.Duration
	stopCh    chan struct{}
}

// NewWorker creates a new rewards worker
func NewWorker(processor *Processor, repo Repository, interval time.Duration) *Worker {
	if interval == 0 {
		interval = 1 * time.Hour
	}
	return &Worker{
		processor: processor,
		repo:      repo,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background worker
func (w *Worker) Start() {
	log.Info().Dur("interval", w.interval).Msg("Starting daily rewards worker...")
	go w.loop()
}

// Stop gracefully stops the background worker
func (w *Worker) Stop() {
	log.Info().Msg("Stopping daily rewards worker...")
	close(w.stopCh)
}

func (w *Worker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately on startup
	w.runIfDue()

	for {
		select {
		case <-ticker.C:
			w.runIfDue()
		case <-w.stopCh:
			return
		}
	}
}

func (w *Worker) runIfDue() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	today := time.Now().UTC().Format(dateLayout)

	done, err := w.repo.HasCompletedRun(ctx, today)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check for completed reward run")
		return
	}
	if done {
		log.Debug().Str("date", today).Msg("Daily reward run already completed, skipping")
		return
	}

	if _, err := w.processor.RunDaily(ctx, TriggerCron); err != nil {
		log.Error().Err(err).Msg("Scheduled daily reward run failed")
	}
}
