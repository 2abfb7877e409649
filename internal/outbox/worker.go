package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/config"
	"github.com/routeworks/memoflow-backend/internal/domain"
)

type taskStore interface {
	ClaimBatch(ctx context.Context, limit int) ([]domain.OutboxTask, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, dispatchErr string, maxAttempts int) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Dispatcher executes one side-effect task. A returned error leaves the
// task pending for retry until the attempt budget is exhausted.
type Dispatcher interface {
	Dispatch(ctx context.Context, task domain.OutboxTask) error
}

// Worker drains the outbox in the background. Each poll claims a batch
// with row locks held for the duration of the transaction, so multiple
// workers never dispatch the same task twice.
type Worker struct {
	tx          txManager
	tasks       taskStore
	dispatchers map[domain.OutboxTaskType]Dispatcher
	cfg         config.OutboxConfig
	log         *slog.Logger
}

func NewWorker(
	log *slog.Logger,
	tx txManager,
	tasks taskStore,
	dispatchers map[domain.OutboxTaskType]Dispatcher,
	cfg config.OutboxConfig,
) *Worker {
	return &Worker{
		tx:          tx,
		tasks:       tasks,
		dispatchers: dispatchers,
		cfg:         cfg,
		log:         log.With("component", "outbox_worker"),
	}
}

// Run polls until the context is cancelled. It blocks; start it in its
// own goroutine.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.log.InfoContext(ctx, "outbox worker started",
		slog.Duration("poll_interval", w.cfg.PollInterval),
		slog.Int("batch_size", w.cfg.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			w.log.InfoContext(ctx, "outbox worker stopped")
			return
		case <-ticker.C:
			if err := w.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				w.log.ErrorContext(ctx, "outbox batch failed", slog.Any("error", err))
			}
		}
	}
}

// ProcessBatch claims and dispatches one batch of pending tasks. Exported
// so tests and the cleanup job can drive the worker synchronously.
func (w *Worker) ProcessBatch(ctx context.Context) error {
	return w.tx.RunInTx(ctx, func(ctx context.Context) error {
		tasks, err := w.tasks.ClaimBatch(ctx, w.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("claim batch: %w", err)
		}

		for _, task := range tasks {
			w.dispatch(ctx, task)
		}
		return nil
	})
}

func (w *Worker) dispatch(ctx context.Context, task domain.OutboxTask) {
	dispatcher, ok := w.dispatchers[task.Type]
	if !ok {
		w.fail(ctx, task, fmt.Sprintf("no dispatcher for task type %s", task.Type))
		return
	}

	if err := dispatcher.Dispatch(ctx, task); err != nil {
		w.fail(ctx, task, err.Error())
		return
	}

	if err := w.tasks.MarkProcessed(ctx, task.ID); err != nil {
		w.log.ErrorContext(ctx, "failed to mark task processed",
			slog.String("task_id", task.ID.String()),
			slog.Any("error", err),
		)
	}
}

func (w *Worker) fail(ctx context.Context, task domain.OutboxTask, reason string) {
	w.log.WarnContext(ctx, "task dispatch failed",
		slog.String("task_id", task.ID.String()),
		slog.String("task_type", task.Type.String()),
		slog.Int("attempt", task.Attempts+1),
		slog.String("reason", reason),
	)
	if err := w.tasks.MarkFailed(ctx, task.ID, reason, w.cfg.MaxAttempts); err != nil {
		w.log.ErrorContext(ctx, "failed to mark task failed",
			slog.String("task_id", task.ID.String()),
			slog.Any("error", err),
		)
	}
}
