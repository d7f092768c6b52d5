package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for keys with no stored value. Callers
// treat it as "use the default state", never as a failure.
var ErrNotFound = errors.New("store: key not found")

// Store is the persistent key-value adapter the document store writes
// through. Values are opaque bytes; JSON encoding is the caller's concern.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Keys lists every stored key, namespaced and foreign alike.
	Keys(ctx context.Context) ([]string, error)
	// Clear wipes the entire underlying store.
	Clear(ctx context.Context) error
}

type Subscription interface {
	Unsubscribe()
}

// WatchHandler is invoked whenever the watched key changes from outside the
// current process. No delivery-latency or ordering guarantee.
type WatchHandler func(ctx context.Context, key string)

// Watcher is the external-change observer a multi-instance deployment
// needs. Adapters without change detection simply don't implement it.
type Watcher interface {
	Watch(ctx context.Context, key string, handler WatchHandler) (Subscription, error)
}
