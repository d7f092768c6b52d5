package document

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	domaindoc "github.com/alanyang/promptbox/internal/domain/document"
	"github.com/alanyang/promptbox/internal/domain/event"
	domainfilter "github.com/alanyang/promptbox/internal/domain/filter"
	domainprompt "github.com/alanyang/promptbox/internal/domain/prompt"
	"github.com/alanyang/promptbox/internal/metrics"
	porteventbus "github.com/alanyang/promptbox/internal/port/eventbus"
	portstore "github.com/alanyang/promptbox/internal/port/store"
	handoffsvc "github.com/alanyang/promptbox/internal/service/handoff"
)

// Service is the document store: it owns the in-memory document, keeps it
// mirrored to the backing store after every mutation, and maintains the
// vocabulary and filter-selection invariants.
//
// One mutex serializes all mutations, so no operation can be observed
// half-applied within this process. Two processes sharing a data directory
// remain last-writer-wins at the storage layer — a known limitation of the
// single-user design, not something this service tries to merge.
type Service struct {
	store  portstore.Store
	bus    porteventbus.EventBus
	editor *handoffsvc.Service

	defaultDoc func() domaindoc.Document

	mu  sync.Mutex
	doc domaindoc.Document
	sel domainfilter.Selection
}

type Option func(*Service)

// WithDefault sets the document used when no prior state exists or the
// persisted payload fails to decode. Defaults to the empty document.
func WithDefault(fn func() domaindoc.Document) Option {
	return func(s *Service) { s.defaultDoc = fn }
}

func NewService(store portstore.Store, bus porteventbus.EventBus, editor *handoffsvc.Service, opts ...Option) *Service {
	s := &Service{
		store:      store,
		bus:        bus,
		editor:     editor,
		defaultDoc: domaindoc.Empty,
		sel:        domainfilter.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.doc = s.defaultDoc()
	return s
}

// Load replaces the in-memory document with the persisted state. Missing
// or corrupt state falls back to the default — never an error: every
// failure mode here degrades to a usable document.
func (s *Service) Load(ctx context.Context) domaindoc.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Get(ctx, domaindoc.KeyData)
	switch {
	case errors.Is(err, portstore.ErrNotFound):
		s.doc = s.defaultDoc()
	case err != nil:
		slog.WarnContext(ctx, "failed to read persisted document, using default", "error", err)
		s.doc = s.defaultDoc()
	default:
		var doc domaindoc.Document
		if jsonErr := json.Unmarshal(data, &doc); jsonErr != nil {
			slog.WarnContext(ctx, "persisted document is corrupt, using default", "error", jsonErr)
			s.doc = s.defaultDoc()
		} else {
			// Heal vocabulary drift left by a foreign writer.
			doc.Filters = domaindoc.Reconcile(doc.PromptCards)
			s.doc = doc
		}
	}

	metrics.PromptCount.Set(float64(len(s.doc.PromptCards)))
	return s.doc.Clone()
}

// Document returns a deep copy of the current document.
func (s *Service) Document() domaindoc.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Selection returns the current filter selection.
func (s *Service) Selection() domainfilter.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneSelection()
}

// VisiblePrompts applies the current selection to the prompt collection.
func (s *Service) VisiblePrompts() []domainprompt.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domainfilter.Visible(s.doc.Clone().PromptCards, s.sel)
}

// VisibleWith applies an explicit selection, leaving the stored one alone.
func (s *Service) VisibleWith(sel domainfilter.Selection) []domainprompt.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domainfilter.Visible(s.doc.Clone().PromptCards, sel)
}

// CreateOrUpdatePrompt upserts a prompt keyed on id. An update replaces
// every field except Pinned — an edit must never silently unpin. A new
// prompt is appended unpinned, with an id derived from the title when the
// caller didn't assign one.
func (s *Service) CreateOrUpdatePrompt(ctx context.Context, p domainprompt.Prompt) domainprompt.Prompt {
	s.mu.Lock()
	stored, eventType := s.upsertLocked(p)
	s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.RecordMutation(opForEvent(eventType))
	s.publish(ctx, event.New(eventType, stored.ID))
	return stored
}

func opForEvent(t event.Type) string {
	if t == event.TypePromptCreated {
		return "create"
	}
	return "update"
}

func (s *Service) upsertLocked(p domainprompt.Prompt) (domainprompt.Prompt, event.Type) {
	p = p.Normalize()
	if p.ID == "" {
		p.ID = domainprompt.NewID(p.Title, func(id string) bool {
			return s.indexLocked(id) >= 0
		})
	}

	eventType := event.TypePromptCreated
	if i := s.indexLocked(p.ID); i >= 0 {
		p.Pinned = s.doc.PromptCards[i].Pinned
		s.doc.PromptCards[i] = p
		eventType = event.TypePromptUpdated
	} else {
		p.Pinned = false
		s.doc.PromptCards = append(s.doc.PromptCards, p)
	}

	s.doc.Filters = domaindoc.Reconcile(s.doc.PromptCards)
	return p, eventType
}

// DeletePrompt removes the prompt and any vocabulary entries it was the
// last user of. Unknown ids are a no-op — another instance may have
// deleted the prompt already.
func (s *Service) DeletePrompt(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.doc.PromptCards = append(s.doc.PromptCards[:i], s.doc.PromptCards[i+1:]...)
	s.doc.Filters = domaindoc.Reconcile(s.doc.PromptCards)
	s.pruneSelectionLocked()
	s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.RecordMutation("delete")
	s.publish(ctx, event.New(event.TypePromptDeleted, id))
	return true
}

// DeleteCategory strips the category from every prompt and from the
// vocabulary atomically, and prunes it from the active selection. The
// sentinel cannot be deleted.
func (s *Service) DeleteCategory(ctx context.Context, name string) bool {
	return s.deleteLabel(ctx, name, "delete_category",
		func(p *domainprompt.Prompt) *[]string { return &p.Categories },
		func(v *domaindoc.Vocabulary) []string { return v.Categories },
		func(sel *domainfilter.Selection) *[]string { return &sel.Categories },
	)
}

// DeleteTag is symmetric to DeleteCategory.
func (s *Service) DeleteTag(ctx context.Context, name string) bool {
	return s.deleteLabel(ctx, name, "delete_tag",
		func(p *domainprompt.Prompt) *[]string { return &p.Tags },
		func(v *domaindoc.Vocabulary) []string { return v.Tags },
		func(sel *domainfilter.Selection) *[]string { return &sel.Tags },
	)
}

func (s *Service) deleteLabel(
	ctx context.Context,
	name, op string,
	promptAxis func(*domainprompt.Prompt) *[]string,
	vocabAxis func(*domaindoc.Vocabulary) []string,
	selectionAxis func(*domainfilter.Selection) *[]string,
) bool {
	if name == domaindoc.Sentinel {
		return false
	}

	s.mu.Lock()
	if !contains(vocabAxis(&s.doc.Filters), name) {
		s.mu.Unlock()
		return false
	}
	for i := range s.doc.PromptCards {
		axis := promptAxis(&s.doc.PromptCards[i])
		*axis = remove(*axis, name)
	}
	s.doc.Filters = domaindoc.Reconcile(s.doc.PromptCards)

	axis := selectionAxis(&s.sel)
	*axis = domainfilter.Prune(*axis, name)

	s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.RecordMutation(op)
	s.publish(ctx, event.New(event.TypeVocabularyChanged, name))
	return true
}

// TogglePin flips the prompt's pinned flag. Returns false on unknown id.
func (s *Service) TogglePin(ctx context.Context, id string) (domainprompt.Prompt, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return domainprompt.Prompt{}, false
	}
	s.doc.PromptCards[i].Pinned = !s.doc.PromptCards[i].Pinned
	stored := s.doc.PromptCards[i]
	s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.RecordMutation("pin")
	s.publish(ctx, event.New(event.TypePromptPinned, id))
	return stored, true
}

// SetRating sets the prompt's rating, clamping out-of-domain values to the
// nearest tier. Returns false on unknown id.
func (s *Service) SetRating(ctx context.Context, id string, rating domainprompt.Rating) (domainprompt.Prompt, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return domainprompt.Prompt{}, false
	}
	s.doc.PromptCards[i].Rating = rating.Clamp()
	stored := s.doc.PromptCards[i]
	s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.RecordMutation("rate")
	s.publish(ctx, event.New(event.TypePromptRated, id))
	return stored, true
}

// ToggleCategory toggles the category in the active selection and returns
// the new selection.
func (s *Service) ToggleCategory(name string) domainfilter.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Categories = domainfilter.Toggle(s.sel.Categories, name)
	return s.cloneSelection()
}

// ToggleTag toggles the tag in the active selection.
func (s *Service) ToggleTag(name string) domainfilter.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Tags = domainfilter.Toggle(s.sel.Tags, name)
	return s.cloneSelection()
}

// SetSearch replaces the search text.
func (s *Service) SetSearch(text string) domainfilter.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Search = text
	return s.cloneSelection()
}

// SyncFromEditor consumes the hand-off slot and merges it into the
// document: upsert the embedded prompt (pinned state preserved), merge the
// newly introduced categories and tags, then clear the slot. Re-delivery
// after a crash between read and clear is harmless — the upsert keys on
// prompt id, so applying the same payload twice is idempotent.
func (s *Service) SyncFromEditor(ctx context.Context) bool {
	payload := s.editor.Consume(ctx)
	if payload == nil {
		return false
	}

	s.mu.Lock()
	stored, _ := s.upsertLocked(payload.Prompt)
	s.doc.Filters.Categories = domaindoc.Merge(s.doc.Filters.Categories, payload.NewCategories)
	s.doc.Filters.Tags = domaindoc.Merge(s.doc.Filters.Tags, payload.NewTags)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.editor.Clear(ctx)

	metrics.RecordMutation("sync")
	s.publish(ctx, event.New(event.TypeDocumentSynced, stored.ID))
	return true
}

// SnapshotFilters writes the current vocabulary to the courtesy slot the
// editor reads, called by the main view before opening the editor.
func (s *Service) SnapshotFilters(ctx context.Context) error {
	s.mu.Lock()
	vocab := s.doc.Clone().Filters
	s.mu.Unlock()
	return s.editor.SnapshotFilters(ctx, vocab)
}

func (s *Service) indexLocked(id string) int {
	for i, p := range s.doc.PromptCards {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// pruneSelectionLocked drops selection entries no longer present in the
// vocabulary after a structural change.
func (s *Service) pruneSelectionLocked() {
	for _, name := range append([]string(nil), s.sel.Categories...) {
		if name != domaindoc.Sentinel && !contains(s.doc.Filters.Categories, name) {
			s.sel.Categories = domainfilter.Prune(s.sel.Categories, name)
		}
	}
	for _, name := range append([]string(nil), s.sel.Tags...) {
		if name != domaindoc.Sentinel && !contains(s.doc.Filters.Tags, name) {
			s.sel.Tags = domainfilter.Prune(s.sel.Tags, name)
		}
	}
}

// persistLocked mirrors the whole document to the backing store. A write
// failure costs durability, not correctness: the in-memory document stays
// authoritative for this session, so the mutation is not rolled back.
func (s *Service) persistLocked(ctx context.Context) {
	metrics.PromptCount.Set(float64(len(s.doc.PromptCards)))

	data, err := json.Marshal(s.doc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal document", "error", err)
		metrics.PersistFailures.Inc()
		return
	}
	if err := s.store.Set(ctx, domaindoc.KeyData, data); err != nil {
		slog.WarnContext(ctx, "failed to persist document, continuing with in-memory state", "error", err)
		metrics.PersistFailures.Inc()
	}
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if err := s.bus.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "failed to publish document event", "type", e.Type, "entity_id", e.EntityID, "error", err)
	}
}

func (s *Service) cloneSelection() domainfilter.Selection {
	return domainfilter.Selection{
		Categories: append([]string(nil), s.sel.Categories...),
		Tags:       append([]string(nil), s.sel.Tags...),
		Search:     s.sel.Search,
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func remove(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
