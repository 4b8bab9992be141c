// Package blob abstracts the object store holding chunk audio and the
// pipeline's intermediate and final JSON artifacts.
package blob

import (
	"context"
	"time"

	"koenote-pipeline/internal/app/errors"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// Store is the object-store contract consumed by the pipeline.
type Store interface {
	// Get returns the object's bytes, ErrNotFound when absent.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// Put writes the object, overwriting any previous version.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	// List returns the keys under the given prefix.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	// Remove deletes the given keys, ignoring ones that are already gone.
	Remove(ctx context.Context, bucket string, keys []string) error
	// Download writes the object to a local file.
	Download(ctx context.Context, bucket, key, localPath string) error
	// PresignedPut returns a URL allowing a direct client upload.
	PresignedPut(ctx context.Context, bucket, key, contentType string, expiry time.Duration) (string, error)
}
