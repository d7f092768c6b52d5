// Package admin implements the destructive maintenance operations: scoped
// removal of this application's persisted state and a full wipe of the
// backing store.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyang/promptbox/internal/domain/document"
	"github.com/alanyang/promptbox/internal/domain/event"
	porteventbus "github.com/alanyang/promptbox/internal/port/eventbus"
	portstore "github.com/alanyang/promptbox/internal/port/store"
)

// DocumentReloader is the slice of the document store the admin service
// needs: after a wipe the in-memory document must be rebuilt from (now
// empty) persistent state.
type DocumentReloader interface {
	Load(ctx context.Context) document.Document
}

type Service struct {
	store portstore.Store
	bus   porteventbus.EventBus
	doc   DocumentReloader
}

func NewService(store portstore.Store, bus porteventbus.EventBus, doc DocumentReloader) *Service {
	return &Service{store: store, bus: bus, doc: doc}
}

// ClearAppData removes this application's keys only: the three well-known
// slots plus any other key carrying the namespace token. Keys belonging to
// other tenants of the same store survive. Returns the removed keys.
func (s *Service) ClearAppData(ctx context.Context) ([]string, error) {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing store keys: %w", err)
	}

	known := map[string]bool{
		document.KeyData:    true,
		document.KeyHandoff: true,
		document.KeyFilters: true,
	}

	var removed []string
	for _, key := range keys {
		if !known[key] && !strings.Contains(strings.ToLower(key), document.NamespaceToken) {
			continue
		}
		if err := s.store.Remove(ctx, key); err != nil {
			slog.WarnContext(ctx, "failed to remove app key", "key", key, "error", err)
			continue
		}
		removed = append(removed, key)
	}

	s.finishClear(ctx)
	return removed, nil
}

// ClearAll wipes the entire backing store, foreign keys included.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	s.finishClear(ctx)
	return nil
}

func (s *Service) finishClear(ctx context.Context) {
	// Rebuild the in-memory document from the now-empty store so the next
	// read doesn't serve pre-wipe state.
	s.doc.Load(ctx)
	if err := s.bus.Publish(ctx, event.New(event.TypeDataCleared, "")); err != nil {
		slog.WarnContext(ctx, "failed to publish data-cleared event", "error", err)
	}
}
