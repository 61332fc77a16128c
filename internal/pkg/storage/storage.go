package storage

import (
	"context"
	"io"
)

// ObjectStore is the minimal interface the run archive needs from a storage
// backend: put a document, read it back.
type ObjectStore interface {
	// Put stores an object at the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get retrieves an object by key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
