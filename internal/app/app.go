package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/adapter/postgres"
	editlockrepo "github.com/routeworks/memoflow-backend/internal/adapter/postgres/editlock"
	memorepo "github.com/routeworks/memoflow-backend/internal/adapter/postgres/memo"
	outboxrepo "github.com/routeworks/memoflow-backend/internal/adapter/postgres/outbox"
	rollbackrepo "github.com/routeworks/memoflow-backend/internal/adapter/postgres/rollbacklog"
	userrepo "github.com/routeworks/memoflow-backend/internal/adapter/postgres/user"
	"github.com/routeworks/memoflow-backend/internal/auth"
	"github.com/routeworks/memoflow-backend/internal/config"
	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/internal/outbox"
	"github.com/routeworks/memoflow-backend/internal/pubsub"
	"github.com/routeworks/memoflow-backend/internal/service/editlock"
	"github.com/routeworks/memoflow-backend/internal/service/rollback"
	"github.com/routeworks/memoflow-backend/internal/service/workflow"
	"github.com/routeworks/memoflow-backend/internal/transport/middleware"
	"github.com/routeworks/memoflow-backend/internal/transport/rest"
	"github.com/routeworks/memoflow-backend/internal/transport/ws"
)

// Run is the application entry point: config, logger, database, services,
// outbox worker, and the HTTP server. It blocks until ctx is cancelled,
// then shuts the server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	memos := memorepo.New(pool)
	locks := editlockrepo.New(pool)
	ledger := rollbackrepo.New(pool)
	tasks := outboxrepo.New(pool)
	users := userrepo.New(pool)

	bus := pubsub.NewBus()

	lockSvc := editlock.NewService(logger, locks, bus, cfg.Lock.TTL)
	workflowSvc := workflow.NewService(logger, memos, ledger, tasks, users, locks, bus, cfg.Workflow.MaxRecipients)
	rollbackSvc := rollback.NewService(logger, ledger, memos)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	worker := outbox.NewWorker(logger, txManager, tasks, map[domain.OutboxTaskType]outbox.Dispatcher{
		domain.OutboxTaskNotification: outbox.NewNotifier(logger, memos),
		domain.OutboxTaskCalendar:     outbox.NewWebhook(logger, "calendar", cfg.Outbox.CalendarURL, cfg.Outbox.HTTPTimeout),
		domain.OutboxTaskBackup:       outbox.NewWebhook(logger, "backup", cfg.Outbox.BackupURL, cfg.Outbox.HTTPTimeout),
	}, cfg.Outbox)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx)

	hub := ws.NewHub(logger, bus)

	var limit middleware.Middleware
	if cfg.Server.RateLimitPerMinute > 0 {
		limiter := middleware.NewRateLimiter(time.Minute)
		defer limiter.Stop()
		limit = limiter.Limit(cfg.Server.RateLimitPerMinute)
	}

	router := rest.NewRouter(logger, rest.Handlers{
		Locks:      rest.NewLockHandler(lockSvc, logger),
		Memos:      rest.NewMemoHandler(workflowSvc, logger),
		Rollback:   rest.NewRollbackHandler(rollbackSvc, logger),
		Health:     rest.NewHealthHandler(pool, BuildVersion()),
		LockEvents: hub.ServeLocks,
	}, middleware.Auth(tokenValidator{jwtManager}), limit, cfg.CORS)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// tokenValidator adapts the JWT manager to the auth middleware.
type tokenValidator struct {
	jwt *auth.JWTManager
}

func (v tokenValidator) ValidateToken(_ context.Context, token string) (uuid.UUID, string, error) {
	return v.jwt.ValidateAccessToken(token)
}
