package localstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	portstore "github.com/alanyang/promptbox/internal/port/store"
)

const fileExt = ".json"

// Store persists one file per key under a base directory, the local-disk
// stand-in for the browser's key-value storage. Writes are atomic
// (temp file + rename) so a reader never observes a half-written value.
type Store struct {
	dir          string
	pollInterval time.Duration
}

type Option func(*Store)

// WithPollInterval sets how often Watch checks the key for external
// changes. Default is one second.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) { s.pollInterval = d }
}

func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s := &Store{dir: dir, pollInterval: time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid characters in key %q", key)
	}
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, portstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", key, err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming %s into place: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(entry.Name(), fileExt))
	}
	return keys, nil
}

func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
