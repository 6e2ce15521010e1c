package queue

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetriableStorageError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retriable bool
	}{
		{"nil error", nil, false},
		{"database locked", errors.New("database is locked"), true},
		{"table locked", errors.New("database table is locked"), true},
		{"sqlite busy", errors.New("SQLITE_BUSY: database busy"), true},
		{"io timeout", errors.New("read tcp: i/o timeout"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"deadline exceeded", errors.New("context deadline exceeded"), true},
		{"constraint violation", errors.New("UNIQUE constraint failed: revisions.id"), false},
		{"syntax error", errors.New("SQL logic error: near \"FORM\""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retriable, isRetriableStorageError(tt.err))
		})
	}
}

func TestRetryDelay(t *testing.T) {
	dummy := asynq.NewTask(TypeRewriteText, nil)

	assert.Equal(t, 30*time.Second, retryDelay(1, nil, dummy))
	assert.Equal(t, 1*time.Minute, retryDelay(2, nil, dummy))
	assert.Equal(t, 5*time.Minute, retryDelay(3, nil, dummy))
	assert.Equal(t, 15*time.Minute, retryDelay(4, nil, dummy))
	assert.Equal(t, 15*time.Minute, retryDelay(10, nil, dummy))
}

func TestRewriteTextPayloadRoundTrip(t *testing.T) {
	payload := RewriteTextPayload{
		RevisionID: "rev-123",
		Text:       "I think maybe we could ship this.",
		TraceID:    "4bf92f3577b34da6a3ce929d0e0e4736",
		SpanID:     "00f067aa0ba902b7",
		EnqueuedAt: time.Now().UnixNano(),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded RewriteTextPayload
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, payload.RevisionID, decoded.RevisionID)
	assert.Equal(t, payload.Text, decoded.Text)
	assert.Equal(t, payload.TraceID, decoded.TraceID)
	assert.Equal(t, payload.EnqueuedAt, decoded.EnqueuedAt)
}

func TestRewriteTextPayloadOmitsEmptyTraceFields(t *testing.T) {
	payload := RewriteTextPayload{
		RevisionID: "rev-456",
		Text:       "Just checking.",
		EnqueuedAt: time.Now().UnixNano(),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "trace_id")
	assert.NotContains(t, string(data), "span_id")
}
