// Package workflow wraps the external workflow orchestrator that fans out
// per-chunk processing. The pipeline only depends on the Client interface,
// so it degrades to synchronous processing when no orchestrator is
// configured.
package workflow

import (
	"context"
	"time"
)

// Status is the caller-facing state of a session workflow execution.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// SessionRequest is the input of a whole-recording workflow execution.
type SessionRequest struct {
	SessionID string   `json:"session_id"`
	UserID    string   `json:"user_id"`
	Bucket    string   `json:"bucket"`
	AudioKeys []string `json:"audio_keys"`
	AudioURL  string   `json:"audio_url,omitempty"`
}

// Event is one history entry of a workflow execution, used for debugging.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Client starts and inspects session workflow executions.
type Client interface {
	// StartSession begins an asynchronous execution and returns its handle.
	StartSession(ctx context.Context, req SessionRequest) (string, error)
	// Describe returns the mapped status and, for completed executions,
	// the serialized result.
	Describe(ctx context.Context, executionID string) (Status, []byte, error)
	// History returns recent execution events.
	History(ctx context.Context, executionID string) ([]Event, error)
	Close()
}
