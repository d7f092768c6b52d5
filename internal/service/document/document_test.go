package document_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domaindoc "github.com/alanyang/promptbox/internal/domain/document"
	"github.com/alanyang/promptbox/internal/domain/event"
	domainprompt "github.com/alanyang/promptbox/internal/domain/prompt"
	"github.com/alanyang/promptbox/internal/mocks"
	portstore "github.com/alanyang/promptbox/internal/port/store"
	docsvc "github.com/alanyang/promptbox/internal/service/document"
	handoffsvc "github.com/alanyang/promptbox/internal/service/handoff"
)

func newDocSvc(t *testing.T, opts ...docsvc.Option) (*docsvc.Service, *mocks.MockStore, *mocks.MockEventBus) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	bus := mocks.NewMockEventBus(ctrl)
	editor := handoffsvc.NewService(store, bus)
	return docsvc.NewService(store, bus, editor, opts...), store, bus
}

func matchEventType(et event.Type) gomock.Matcher {
	return eventTypeMatcher{et}
}

type eventTypeMatcher struct{ want event.Type }

func (m eventTypeMatcher) Matches(x interface{}) bool {
	e, ok := x.(event.Event)
	return ok && e.Type == m.want
}
func (m eventTypeMatcher) String() string { return "event.Type=" + string(m.want) }

// ── Load ──────────────────────────────────────────────────────────────────────

func TestLoad_FreshInstall(t *testing.T) {
	svc, store, _ := newDocSvc(t)
	store.EXPECT().Get(gomock.Any(), domaindoc.KeyData).Return(nil, portstore.ErrNotFound)

	doc := svc.Load(context.Background())
	assert.Empty(t, doc.PromptCards)
	assert.Equal(t, []string{domaindoc.Sentinel}, doc.Filters.Categories)
	assert.Equal(t, []string{domaindoc.Sentinel}, doc.Filters.Tags)
}

func TestLoad_CorruptPayloadFallsBackToDefault(t *testing.T) {
	svc, store, _ := newDocSvc(t)
	store.EXPECT().Get(gomock.Any(), domaindoc.KeyData).Return([]byte("{not json"), nil)

	doc := svc.Load(context.Background())
	assert.Empty(t, doc.PromptCards)
	assert.Equal(t, []string{domaindoc.Sentinel}, doc.Filters.Categories)
}

func TestLoad_UsesConfiguredDefault(t *testing.T) {
	svc, store, _ := newDocSvc(t, docsvc.WithDefault(domaindoc.Seeded))
	store.EXPECT().Get(gomock.Any(), domaindoc.KeyData).Return(nil, portstore.ErrNotFound)

	doc := svc.Load(context.Background())
	assert.NotEmpty(t, doc.PromptCards)
}

func TestLoad_HealsVocabularyDrift(t *testing.T) {
	svc, store, _ := newDocSvc(t)
	persisted := domaindoc.Document{
		Filters: domaindoc.Vocabulary{Categories: []string{domaindoc.Sentinel}, Tags: []string{domaindoc.Sentinel}},
		PromptCards: []domainprompt.Prompt{
			{ID: "p1", Title: "One", Categories: []string{"Alpha"}, Tags: []string{"go"}},
		},
	}
	data, err := json.Marshal(persisted)
	require.NoError(t, err)
	store.EXPECT().Get(gomock.Any(), domaindoc.KeyData).Return(data, nil)

	doc := svc.Load(context.Background())
	assert.Equal(t, []string{domaindoc.Sentinel, "Alpha"}, doc.Filters.Categories)
	assert.Equal(t, []string{domaindoc.Sentinel, "go"}, doc.Filters.Tags)
}

// ── CreateOrUpdatePrompt ──────────────────────────────────────────────────────

func TestCreateOrUpdatePrompt_CreateAssignsIDAndReconciles(t *testing.T) {
	svc, store, bus := newDocSvc(t)
	store.EXPECT().Set(gomock.Any(), domaindoc.KeyData, gomock.Any()).Return(nil)
	bus.EXPECT().Publish(gomock.Any(), matchEventType(event.TypePromptCreated)).Return(nil)

	stored := svc.CreateOrUpdatePrompt(context.Background(), domainprompt.Prompt{
		Title:      "Bug Triage",
		Categories: []string{"Coding"},
	})

	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.Pinned)

	doc := svc.Document()
	require.Len(t, doc.PromptCards, 1)
	assert.Contains(t, doc.Filters.Categories, "Coding")
}

func TestCreateOrUpdatePrompt_UpdatePreservesPinned(t *testing.T) {
	svc, store, bus := newDocSvc(t)
	store.EXPECT().Set(gomock.Any(), domaindoc.KeyData, gomock.Any()).Return(nil).AnyTimes()
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	created := svc.CreateOrUpdatePrompt(context.Background(), domainprompt.Prompt{Title: "Pinned One"})
	_, ok := svc.TogglePin(context.Background(), created.ID)
	require.True(t, ok)

	// An edit arriving with the zero pinned flag must not unpin.
	updated := svc.CreateOrUpdatePrompt(context.Background(), domainprompt.Prompt{
		ID:    created.ID,
		Title: "Pinned One v2",
	})
	assert.True(t, updated.Pinned)
	assert.Equal(t, "Pinned One v2", updated.Title)

	doc := svc.Document()
	require.Len(t, doc.PromptCards, 1)
}

func TestCreateOrUpdatePrompt_PersistFailureKeepsMutation(t *testing.T) {
	svc, store, bus := newDocSvc(t)
	store.EXPECT().Set(gomock.Any(), domaindoc.KeyData, gomock.Any()).Return(errors.New("disk full"))
	bus.EXPECT().Publish(gomock.Any(), matchEventType(event.TypePromptCreated)).Return(nil)

	stored := svc.CreateOrUpdatePrompt(context.Background(), domainprompt.Prompt{Title: "Survivor"})

	doc := svc.Document()
	require.Len(t, doc.PromptCards, 1)
	assert.Equal(t, stored.ID, doc.PromptCards[0].ID)
}

// ── DeletePrompt ──────────────────────────────────────────────────────────────

func TestDeletePrompt_UnknownIDIsNoOp(t *testing.T) {
	svc, _, _ := newDocSvc(t)
	assert.False(t, svc.DeletePrompt(context.Background(), "nope"))
}

func TestDeletePrompt_CascadesVocabularyAndSelection(t *testing.T) {
	svc, store, bus := newDocSvc(t)
	store.EXPECT().Set(gomock.Any(), domaindoc.KeyData, gomock.Any()).Return(nil).AnyTimes()
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	solo := svc.CreateOrUpdatePrompt(context.Background(), domainprompt.Prompt{
		Title:      "Sole user",
		Categories: []string{"Solo"},
	})
	svc.CreateOrUpdatePrompt(context.Background(), domainprompt.Prompt{
		Title:      "Other",
		Categories: []string{"Shared"},
	})
	sel := svc.ToggleCategory("Solo")
	require.Equal(t, []string{"Solo"}, sel.Categories)

	require.True(t, svc.DeletePrompt(context.Background(), solo.ID))

	doc := svc.Document()
	assert.NotContains(t, doc.Filters.Categories, "Solo")
	assert.Contains(t, doc.Filters.Categories, "Shared")
	assert.Equal(t, []string{domaindoc.Sentinel}, svc.Selection().Categories)
}

// ── DeleteCategory / DeleteTag ────────────────────────────────────────────────

func TestDeleteCategory_SentinelRejected(t *testing.T) {
	svc, _, _ := newDocSvc(t)
	assert.False(t, svc.DeleteCategory(context.Background(), domaindoc.Sentinel))
}

func TestDeleteCategory_UnknownNameIsNoOp(t *testing.T) {
	svc, _, _ := newDocSvc(t)
	assert.False(t, svc.DeleteCategory(context.Background(), "Ghost"))
}

func TestDeleteCategory_StripsPromptsAndSelection(t *testing.T) {
	svc, store, bus := newDocSvc(t)
	store.EXPECT().Set(gomock.Any(), domaindoc.KeyData, gomock.Any()).Return(nil).AnyTimes()
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	created := svc.CreateOrUpdatePrompt(context.Background(), domainprompt.Prompt{
		Title:      "Two cats",
		Categories: []string{"Keep", "Drop"},
	})
	svc.ToggleCategory("Drop")

	require.True(t, svc.DeleteCategory(context.Background(), "Drop"))

	doc := svc.Document()
	require.Len(t, doc.PromptCards, 1)
	assert.Equal(t, []string{"Keep"}, doc.PromptCards[0].Categories)
	assert.NotContains(t, doc.Filters.Categories, "Drop")
	assert.Equal(t, []string{domaindoc.Sentinel}, svc.Selection().Categories)
	assert.Equal(t, created.ID, doc.PromptCards[0].ID)
}

func TestDeleteTag_Strips(t *testing.T) {
	svc, store, bus := newDocSvc(t)
	store.EXPECT().Set(gomock.Any(), domaindoc.KeyData, gomock.Any()).Return(nil).AnyTimes()
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc.CreateOrUpdatePrompt(context.Background(), domainprompt.Prompt{
		Title: "Tagged",
		Tags:  []string{"go", "sql"},
	})

	require.True(t, svc.DeleteTag(context.Background(), "sql"))

	doc := svc.Document()
	assert.Equal(t, []string{"go"}, doc.PromptCards[0].Tags)
	assert.NotContains(t, doc.Filters.Tags, "sql")
}

// ── TogglePin / SetRating ─────────────────────────────────────────────────────

func TestTogglePin_UnknownID(t *testing.T) {
	svc, _, _ := newDocSvc(t)
	_, ok := svc.TogglePin(context.Background(), "nope")
	assert.False(t, ok)
}

func TestSetRating_ClampsOutOfRange(t *testing.T) {
	svc, store, bus := newDocSvc(t)
	store.EXPECT().Set(gomock.Any(), domaindoc.KeyData, gomock.Any()).Return(nil).AnyTimes()
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	created := svc.CreateOrUpdatePrompt(context.Background(), domainprompt.Prompt{Title: "Rated"})

	stored, ok := svc.SetRating(context.Background(), created.ID, domainprompt.Rating(99))
	require.True(t, ok)
	assert.Equal(t, domainprompt.RatingExcellent, stored.Rating)

	stored, ok = svc.SetRating(context.Background(), created.ID, domainprompt.Rating(-1))
	require.True(t, ok)
	assert.Equal(t, domainprompt.RatingUnset, stored.Rating)
}

func TestSetRating_UnknownID(t *testing.T) {
	svc, _, _ := newDocSvc(t)
	_, ok := svc.SetRating(context.Background(), "nope", domainprompt.RatingGood)
	assert.False(t, ok)
}

// ── SyncFromEditor ────────────────────────────────────────────────────────────

func TestSyncFromEditor_EmptySlot(t *testing.T) {
	svc, store, _ := newDocSvc(t)
	store.EXPECT().Get(gomock.Any(), domaindoc.KeyHandoff).Return(nil, portstore.ErrNotFound)

	assert.False(t, svc.SyncFromEditor(context.Background()))
}

func TestSyncFromEditor_AppliesAndClears(t *testing.T) {
	svc, store, bus := newDocSvc(t)
	payload := handoffsvc.Payload{
		NewCategories: []string{"Fresh"},
		NewTags:       []string{"new-tag"},
		Prompt:        domainprompt.Prompt{Title: "From editor", Categories: []string{"Fresh"}},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	store.EXPECT().Get(gomock.Any(), domaindoc.KeyHandoff).Return(data, nil)
	store.EXPECT().Set(gomock.Any(), domaindoc.KeyData, gomock.Any()).Return(nil)
	store.EXPECT().Remove(gomock.Any(), domaindoc.KeyHandoff).Return(nil)
	bus.EXPECT().Publish(gomock.Any(), matchEventType(event.TypeDocumentSynced)).Return(nil)

	require.True(t, svc.SyncFromEditor(context.Background()))

	doc := svc.Document()
	require.Len(t, doc.PromptCards, 1)
	assert.Equal(t, "From editor", doc.PromptCards[0].Title)
	assert.Contains(t, doc.Filters.Categories, "Fresh")
	assert.Contains(t, doc.Filters.Tags, "new-tag")
}

func TestSyncFromEditor_RedeliveryIsIdempotent(t *testing.T) {
	svc, store, bus := newDocSvc(t)
	payload := handoffsvc.Payload{
		Prompt: domainprompt.Prompt{ID: "stable-id", Title: "Once"},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	// The same payload delivered twice, as after a crash between apply and clear.
	store.EXPECT().Get(gomock.Any(), domaindoc.KeyHandoff).Return(data, nil).Times(2)
	store.EXPECT().Set(gomock.Any(), domaindoc.KeyData, gomock.Any()).Return(nil).Times(2)
	store.EXPECT().Remove(gomock.Any(), domaindoc.KeyHandoff).Return(nil).Times(2)
	bus.EXPECT().Publish(gomock.Any(), matchEventType(event.TypeDocumentSynced)).Return(nil).Times(2)

	require.True(t, svc.SyncFromEditor(context.Background()))
	require.True(t, svc.SyncFromEditor(context.Background()))

	doc := svc.Document()
	assert.Len(t, doc.PromptCards, 1)
}

// ── Selection ─────────────────────────────────────────────────────────────────

func TestToggleCategory_ReturnsClone(t *testing.T) {
	svc, _, _ := newDocSvc(t)
	sel := svc.ToggleCategory("Writing")
	sel.Categories[0] = "mutated"

	assert.Equal(t, []string{"Writing"}, svc.Selection().Categories)
}

func TestSetSearch(t *testing.T) {
	svc, _, _ := newDocSvc(t)
	sel := svc.SetSearch("api")
	assert.Equal(t, "api", sel.Search)
	assert.Equal(t, "api", svc.Selection().Search)
}

// ── SnapshotFilters ───────────────────────────────────────────────────────────

func TestSnapshotFilters_WritesCurrentVocabulary(t *testing.T) {
	svc, store, bus := newDocSvc(t)
	store.EXPECT().Set(gomock.Any(), domaindoc.KeyData, gomock.Any()).Return(nil)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	svc.CreateOrUpdatePrompt(context.Background(), domainprompt.Prompt{
		Title:      "Snap",
		Categories: []string{"Writing"},
	})

	store.EXPECT().Set(gomock.Any(), domaindoc.KeyFilters, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, data []byte) error {
			var vocab domaindoc.Vocabulary
			require.NoError(t, json.Unmarshal(data, &vocab))
			assert.Contains(t, vocab.Categories, "Writing")
			return nil
		})

	require.NoError(t, svc.SnapshotFilters(context.Background()))
}
