package modelstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a model does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for persisting serialized models.
type Store interface {
	// Put writes a model atomically, replacing any previous version.
	Put(ctx context.Context, name string, data []byte) error
	// Get reads a model in full.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes a model. Deleting a missing model is not an error.
	Delete(ctx context.Context, name string) error
	// List returns all model names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
