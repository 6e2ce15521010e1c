package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lunabriana98-creator/luna-app/internal/models"
)

// Task type constants
const (
	TypeRewriteText = "coach:rewrite_text"
)

// RewriteTextPayload represents the payload for an asynchronous rewrite
type RewriteTextPayload struct {
	RevisionID string `json:"revision_id"`
	Text       string `json:"text"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// handleRewriteText runs the coherence engine on a queued text and persists
// the resulting revision.
func (w *Worker) handleRewriteText(ctx context.Context, t *asynq.Task) error {
	var payload RewriteTextPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	var queueWaitTime time.Duration
	if payload.EnqueuedAt > 0 {
		queueWaitTime = time.Since(time.Unix(0, payload.EnqueuedAt))
	}

	w.logger.Info("rewriting queued text",
		"revision_id", payload.RevisionID,
		"text_length", len(payload.Text),
		"queue_wait_seconds", queueWaitTime.Seconds(),
	)

	// Recreate trace context from payload so the worker span links back to
	// the enqueueing request.
	if payload.TraceID != "" && payload.SpanID != "" {
		traceID, err := trace.TraceIDFromHex(payload.TraceID)
		if err == nil {
			spanID, err := trace.SpanIDFromHex(payload.SpanID)
			if err == nil {
				remoteSpanCtx := trace.NewSpanContext(trace.SpanContextConfig{
					TraceID:    traceID,
					SpanID:     spanID,
					TraceFlags: trace.FlagsSampled,
					Remote:     true,
				})
				ctx = trace.ContextWithRemoteSpanContext(ctx, remoteSpanCtx)

				var span trace.Span
				ctx, span = otel.Tracer("lunacoach").Start(ctx, "asynq.task.process",
					trace.WithSpanKind(trace.SpanKindConsumer),
					trace.WithAttributes(
						attribute.String("task.type", TypeRewriteText),
						attribute.String("revision.id", payload.RevisionID),
						attribute.Int("text.length", len(payload.Text)),
						attribute.Float64("queue.wait_time_seconds", queueWaitTime.Seconds()),
					),
				)
				defer span.End()
			}
		}
	}

	timer := time.Now()
	report := w.coach.Transform(payload.Text)

	now := time.Now()
	revision := &models.Revision{
		ID:        payload.RevisionID,
		Report:    report,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := w.db.SaveRevision(revision); err != nil {
		w.businessMetrics.ObserveDurationWithExemplar(ctx, time.Since(timer).Seconds(), "error")
		w.businessMetrics.RewritesTotal.WithLabelValues("error").Inc()

		if isRetriableStorageError(err) {
			retryCount, _ := asynq.GetRetryCount(ctx)
			w.logger.Warn("retriable storage error, will retry",
				"revision_id", payload.RevisionID,
				"error", err,
				"retry_count", retryCount,
			)
			return err // Let Asynq retry
		}
		return fmt.Errorf("failed to save revision: %w", err)
	}

	w.businessMetrics.ObserveDurationWithExemplar(ctx, time.Since(timer).Seconds(), "success")
	w.businessMetrics.RewritesTotal.WithLabelValues("success").Inc()
	w.businessMetrics.ConfidenceGain.Observe(report.ConfidenceAfter - report.ConfidenceBefore)
	w.businessMetrics.WordsRemovedTotal.Add(float64(report.TotalWordsRemoved))
	for _, ch := range report.Changes {
		w.businessMetrics.ChangesTotal.WithLabelValues(string(ch.ChangeType)).Inc()
	}

	w.logger.Info("rewrite completed",
		"revision_id", payload.RevisionID,
		"total_changes", report.TotalChanges,
		"confidence_before", report.ConfidenceBefore,
		"confidence_after", report.ConfidenceAfter,
	)

	return nil
}

// isRetriableStorageError determines if an error is retriable (lock/
// connection contention) vs permanent (invalid data).
func isRetriableStorageError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	retriablePatterns := []string{
		"database is locked",
		"database table is locked",
		"busy",
		"i/o timeout",
		"connection refused",
		"connection reset",
		"context deadline exceeded",
	}

	for _, pattern := range retriablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
