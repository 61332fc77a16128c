package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawhaven/pawhaven-api/internal/config"
	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
	"github.com/pawhaven/pawhaven-api/internal/domain/rewards"
	"github.com/pawhaven/pawhaven-api/internal/pkg/database"
	"github.com/pawhaven/pawhaven-api/internal/pkg/logger"
)

// Replays missed daily rewards over a date range without going through the
// HTTP surface. Useful after an outage longer than the API's own window.
func main() {
	start := flag.String("start", "", "start date (YYYY-MM-DD)")
	end := flag.String("end", "", "end date (YYYY-MM-DD)")
	flag.Parse()

	if *start == "" || *end == "" {
		fmt.Fprintln(os.Stderr, "usage: backfill -start YYYY-MM-DD -end YYYY-MM-DD")
		os.Exit(2)
	}

	cfg := config.Load()

	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	ledgerService := ledger.NewService(ledger.NewRepository(db))
	processor := rewards.NewProcessor(rewards.NewRepository(db), ledgerService)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, err := processor.Backfill(ctx, *start, *end)
	if err != nil {
		log.Fatal().Err(err).Msg("Backfill failed")
	}

	fmt.Printf("days processed:  %d\n", result.DaysProcessed)
	fmt.Printf("rewards given:   %d\n", result.TotalRewardsGiven)
	fmt.Printf("errors:          %d\n", result.ErrorsCount)
	for _, e := range result.Errors {
		fmt.Printf("  %s %s: %s\n", e.Date, e.AccountID, e.Message)
	}

	if result.ErrorsCount > 0 {
		os.Exit(1)
	}
}
