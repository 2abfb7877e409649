// Command cleanup removes expired edit locks, settled rollback-log entries
// past the retention window, and processed outbox rows. It is intended to
// be invoked by an external cron job, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/routeworks/memoflow-backend/internal/adapter/postgres"
	editlockrepo "github.com/routeworks/memoflow-backend/internal/adapter/postgres/editlock"
	outboxrepo "github.com/routeworks/memoflow-backend/internal/adapter/postgres/outbox"
	rollbackrepo "github.com/routeworks/memoflow-backend/internal/adapter/postgres/rollbacklog"
	"github.com/routeworks/memoflow-backend/internal/app"
	"github.com/routeworks/memoflow-backend/internal/config"
)

// Processed outbox rows are kept a week for debugging, then dropped.
const outboxRetention = 7 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	locks := editlockrepo.New(pool)
	ledger := rollbackrepo.New(pool)
	tasks := outboxrepo.New(pool)

	failed := false

	expired, err := locks.PurgeExpired(ctx)
	if err != nil {
		logger.Error("purge expired locks", slog.String("error", err.Error()))
		failed = true
	} else {
		logger.Info("expired locks purged", slog.Int64("deleted", expired))
	}

	ledgerCutoff := time.Now().AddDate(0, 0, -cfg.Workflow.RollbackRetentionDays)
	settled, err := ledger.PurgeSettledBefore(ctx, ledgerCutoff)
	if err != nil {
		logger.Error("purge rollback log", slog.String("error", err.Error()), slog.Time("cutoff", ledgerCutoff))
		failed = true
	} else {
		logger.Info("settled rollback entries purged",
			slog.Int64("deleted", settled),
			slog.Time("cutoff", ledgerCutoff),
		)
	}

	outboxCutoff := time.Now().Add(-outboxRetention)
	processed, err := tasks.PurgeProcessedBefore(ctx, outboxCutoff)
	if err != nil {
		logger.Error("purge outbox", slog.String("error", err.Error()), slog.Time("cutoff", outboxCutoff))
		failed = true
	} else {
		logger.Info("processed outbox tasks purged",
			slog.Int64("deleted", processed),
			slog.Time("cutoff", outboxCutoff),
		)
	}

	if failed {
		os.Exit(1)
	}
}
