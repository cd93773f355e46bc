// Package blob stores run-scoped ephemeral JSON values: barcode worklists
// and oversized report bodies. Large lists are persisted here and passed by
// reference in continuation messages to keep message size bounded.
package blob

import (
	"context"
	"time"
)

// Store is a keyed JSON blob store with per-key expiry.
// The redis implementation is in redis_store.go; tests use MockStore.
type Store interface {
	PutJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, keys ...string) error
}
