package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/trace"
)

// Client wraps the Asynq client for enqueueing rewrite tasks
type Client struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewClient creates a new queue client
func NewClient(redisAddr string, logger *slog.Logger) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		logger: logger,
	}
}

// Close closes the underlying Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueRewriteText enqueues a single text for asynchronous rewriting.
// Returns the task ID.
func (c *Client) EnqueueRewriteText(ctx context.Context, revisionID, text string) (string, error) {
	payload := RewriteTextPayload{
		RevisionID: revisionID,
		Text:       text,
		EnqueuedAt: time.Now().UnixNano(),
	}

	// Propagate trace context into the payload so the worker can link its
	// span to this request.
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		payload.TraceID = spanCtx.TraceID().String()
		payload.SpanID = spanCtx.SpanID().String()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeRewriteText, data)

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue("rewrite"),
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.logger.Info("enqueued rewrite task",
		"task_id", info.ID,
		"revision_id", revisionID,
		"queue", info.Queue,
	)

	return info.ID, nil
}

// EnqueueBatchRewrite enqueues multiple texts on the lower-priority batch
// queue. Returns one task ID per text, in input order.
func (c *Client) EnqueueBatchRewrite(ctx context.Context, revisionIDs, texts []string) ([]string, error) {
	if len(revisionIDs) != len(texts) {
		return nil, fmt.Errorf("revision ID count (%d) does not match text count (%d)", len(revisionIDs), len(texts))
	}

	var spanCtx = trace.SpanContextFromContext(ctx)

	taskIDs := make([]string, 0, len(texts))
	for i, text := range texts {
		payload := RewriteTextPayload{
			RevisionID: revisionIDs[i],
			Text:       text,
			EnqueuedAt: time.Now().UnixNano(),
		}
		if spanCtx.IsValid() {
			payload.TraceID = spanCtx.TraceID().String()
			payload.SpanID = spanCtx.SpanID().String()
		}

		data, err := json.Marshal(payload)
		if err != nil {
			return taskIDs, fmt.Errorf("failed to marshal payload for text %d: %w", i, err)
		}

		info, err := c.client.EnqueueContext(ctx, asynq.NewTask(TypeRewriteText, data),
			asynq.Queue("batch"),
			asynq.MaxRetry(5),
			asynq.Timeout(2*time.Minute),
			asynq.Retention(24*time.Hour),
		)
		if err != nil {
			return taskIDs, fmt.Errorf("failed to enqueue text %d: %w", i, err)
		}
		taskIDs = append(taskIDs, info.ID)
	}

	c.logger.Info("enqueued batch rewrite", "count", len(taskIDs))

	return taskIDs, nil
}
