package localstore

import (
	"context"
	"os"
	"time"

	portstore "github.com/alanyang/promptbox/internal/port/store"
)

// fingerprint captures the observable state of a key's file. Comparing
// fingerprints is how the poller detects external writes without reading
// the value.
type fingerprint struct {
	exists  bool
	size    int64
	modTime time.Time
}

func (s *Store) stat(key string) fingerprint {
	info, err := os.Stat(s.path(key))
	if err != nil {
		return fingerprint{}
	}
	return fingerprint{exists: true, size: info.Size(), modTime: info.ModTime()}
}

// Watch polls the key's file and invokes handler whenever its fingerprint
// changes, including creation and removal. This is the file-system
// substitute for the browser's cross-tab storage event: best effort, no
// latency bound, no ordering guarantee relative to the writer.
func (s *Store) Watch(ctx context.Context, key string, handler portstore.WatchHandler) (portstore.Subscription, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)

		last := s.stat(key)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				current := s.stat(key)
				if current != last {
					last = current
					handler(watchCtx, key)
				}
			}
		}
	}()

	return sub, nil
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
