// Package record persists finished recordings in a key-value style store,
// keyed by recording id and filterable by user.
package record

import (
	"context"

	"koenote-pipeline/internal/app/errors"
	"koenote-pipeline/internal/app/model"
)

// ErrNotFound is returned when no recording exists for the given id.
var ErrNotFound = errors.ErrRecordNotFound

// Store is the finished-recording contract. Put has upsert semantics so
// re-combining a session overwrites its existing record.
type Store interface {
	Put(ctx context.Context, rec model.FinishedRecording) error
	Get(ctx context.Context, id string) (model.FinishedRecording, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]model.FinishedRecording, error)
	Close() error
}
