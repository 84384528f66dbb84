// Package store exposes the path-addressable document store the ticket
// ledger is persisted in. Paths are slash-separated; a collection path holds
// uniquely-keyed children, a document path holds a single value. Subscribers
// receive the full collection snapshot on every change.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Snapshot is a full collection state keyed by store-generated sub-keys.
type Snapshot map[string]json.RawMessage

// Unsubscribe releases a live subscription. Safe to call once; the
// subscription leaks for the process lifetime if it is never called.
type Unsubscribe func()

type DocumentStore interface {
	// Write overwrites the document at path.
	Write(ctx context.Context, path string, value any) error

	// Append adds value under a freshly generated sub-key of the
	// collection at path and returns that key.
	Append(ctx context.Context, path string, value any) (string, error)

	// SetChild overwrites one child of the collection at path.
	SetChild(ctx context.Context, path, key string, value any) error

	// Collection returns the current snapshot of the collection at path.
	// An absent collection yields an empty snapshot, not an error.
	Collection(ctx context.Context, path string) (Snapshot, error)

	// Subscribe delivers the current snapshot immediately and again after
	// every change until unsubscribed. Deliveries fully replace one
	// another; the last one wins.
	Subscribe(ctx context.Context, path string, fn func(Snapshot)) (Unsubscribe, error)
}

// TicketsPath is the per-owner ticket collection.
func TicketsPath(ownerID string) string {
	return fmt.Sprintf("users/%s/tickets", ownerID)
}

// UserInfoPath is the per-owner contact profile document.
func UserInfoPath(ownerID string) string {
	return fmt.Sprintf("users/%s/userInfo", ownerID)
}
