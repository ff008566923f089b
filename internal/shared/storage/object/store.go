package object

import (
	"context"
	"io"
)

// Store persists job output under a caller-chosen key.
type Store interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	// Location describes where a key lives, for operator output.
	Location(storageKey string) string
}
