package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alanyang/promptbox/internal/domain/document"
	"github.com/alanyang/promptbox/internal/domain/event"
	"github.com/alanyang/promptbox/internal/domain/prompt"
	"github.com/alanyang/promptbox/internal/metrics"
	porteventbus "github.com/alanyang/promptbox/internal/port/eventbus"
	portstore "github.com/alanyang/promptbox/internal/port/store"
)

// Payload is the one-shot mailbox message carrying an edited or created
// prompt from the editing context back to the main document, plus the
// categories and tags the editor introduced that the vocabulary snapshot
// did not yet contain. JSON field names follow the persisted format.
type Payload struct {
	NewCategories []string      `json:"newCategories"`
	NewTags       []string      `json:"newTags"`
	Prompt        prompt.Prompt `json:"prompt"`
}

// Service owns the hand-off slot and the courtesy vocabulary snapshot.
// The document store consumes the slot; the editor produces into it.
type Service struct {
	store portstore.Store
	bus   porteventbus.EventBus
}

func NewService(store portstore.Store, bus porteventbus.EventBus) *Service {
	return &Service{store: store, bus: bus}
}

// Submit writes the payload into the hand-off slot, replacing any pending
// payload (last writer wins, matching the editing flow: one editor, one
// pending save).
func (s *Service) Submit(ctx context.Context, p Payload) error {
	if err := p.Prompt.Validate(); err != nil {
		return fmt.Errorf("invalid hand-off prompt: %w", err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling hand-off payload: %w", err)
	}
	if err := s.store.Set(ctx, document.KeyHandoff, data); err != nil {
		return fmt.Errorf("writing hand-off slot: %w", err)
	}
	if err := s.bus.Publish(ctx, event.New(event.TypeHandoffSubmitted, p.Prompt.ID)); err != nil {
		slog.WarnContext(ctx, "failed to publish hand-off event", "prompt_id", p.Prompt.ID, "error", err)
	}
	return nil
}

// Consume reads the hand-off slot without clearing it; the consumer clears
// after a successful apply so a crash between read and apply re-delivers.
// Returns nil when the slot is empty. A malformed payload is discarded
// (logged, slot removed) and reported as empty — one bad hand-off must
// never prevent the application from rendering.
func (s *Service) Consume(ctx context.Context) *Payload {
	data, err := s.store.Get(ctx, document.KeyHandoff)
	if errors.Is(err, portstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to read hand-off slot", "error", err)
		return nil
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil || p.Prompt.Title == "" {
		slog.WarnContext(ctx, "discarding malformed hand-off payload", "error", err)
		metrics.HandoffDiscards.Inc()
		s.Clear(ctx)
		return nil
	}
	return &p
}

// Clear empties the hand-off slot.
func (s *Service) Clear(ctx context.Context) {
	if err := s.store.Remove(ctx, document.KeyHandoff); err != nil {
		slog.WarnContext(ctx, "failed to clear hand-off slot", "error", err)
	}
}

// SnapshotFilters writes the courtesy vocabulary snapshot the main view
// leaves for the editor before navigating, so the editor can tell which
// labels are new without loading the whole document.
func (s *Service) SnapshotFilters(ctx context.Context, vocab document.Vocabulary) error {
	data, err := json.Marshal(vocab)
	if err != nil {
		return fmt.Errorf("marshaling filters snapshot: %w", err)
	}
	if err := s.store.Set(ctx, document.KeyFilters, data); err != nil {
		return fmt.Errorf("writing filters snapshot: %w", err)
	}
	return nil
}

// EditorFilters reads the snapshot back. Missing or corrupt snapshots fall
// back to the sentinel-only vocabulary.
func (s *Service) EditorFilters(ctx context.Context) document.Vocabulary {
	fallback := document.Vocabulary{
		Categories: []string{document.Sentinel},
		Tags:       []string{document.Sentinel},
	}

	data, err := s.store.Get(ctx, document.KeyFilters)
	if err != nil {
		if !errors.Is(err, portstore.ErrNotFound) {
			slog.WarnContext(ctx, "failed to read filters snapshot", "error", err)
		}
		return fallback
	}

	var vocab document.Vocabulary
	if err := json.Unmarshal(data, &vocab); err != nil {
		slog.WarnContext(ctx, "discarding corrupt filters snapshot", "error", err)
		return fallback
	}
	if len(vocab.Categories) == 0 {
		vocab.Categories = fallback.Categories
	}
	if len(vocab.Tags) == 0 {
		vocab.Tags = fallback.Tags
	}
	return vocab
}
