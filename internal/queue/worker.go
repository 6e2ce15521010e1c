package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lunabriana98-creator/luna-app/internal/coach"
	"github.com/lunabriana98-creator/luna-app/internal/database"
	"github.com/lunabriana98-creator/luna-app/pkg/metrics"
)

// Worker processes queued rewrite tasks
type Worker struct {
	server          *asynq.Server
	coach           *coach.Coach
	db              *database.DB
	logger          *slog.Logger
	businessMetrics *metrics.BusinessMetrics
}

// NewWorker creates a new queue worker
func NewWorker(redisAddr string, concurrency int, c *coach.Coach, db *database.DB, logger *slog.Logger, bm *metrics.BusinessMetrics) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"rewrite": 6,
				"batch":   3,
			},
			RetryDelayFunc: retryDelay,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Error("task processing failed",
					"task_type", task.Type(),
					"error", err,
					"retry_count", retryCount,
					"max_retry", maxRetry,
				)
			}),
		},
	)

	return &Worker{
		server:          server,
		coach:           c,
		db:              db,
		logger:          logger,
		businessMetrics: bm,
	}
}

// retryDelay backs off 30s, 1m, 5m, then 15m for all later attempts.
func retryDelay(n int, err error, t *asynq.Task) time.Duration {
	switch n {
	case 1:
		return 30 * time.Second
	case 2:
		return 1 * time.Minute
	case 3:
		return 5 * time.Minute
	default:
		return 15 * time.Minute
	}
}

// Start begins processing tasks. Blocks until Shutdown is called.
func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRewriteText, w.handleRewriteText)

	w.logger.Info("starting queue worker")
	return w.server.Run(mux)
}

// Shutdown gracefully stops the worker
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down queue worker")
	w.server.Shutdown()
}
