package admin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/promptbox/internal/adapter/memory"
	domaindoc "github.com/alanyang/promptbox/internal/domain/document"
	"github.com/alanyang/promptbox/internal/domain/event"
	"github.com/alanyang/promptbox/internal/mocks"
	portstore "github.com/alanyang/promptbox/internal/port/store"
	adminsvc "github.com/alanyang/promptbox/internal/service/admin"
)

type fakeReloader struct{ loads int }

func (f *fakeReloader) Load(context.Context) domaindoc.Document {
	f.loads++
	return domaindoc.Empty()
}

func newAdminSvc(t *testing.T) (*adminsvc.Service, *memory.Store, *fakeReloader) {
	t.Helper()
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockEventBus(ctrl)
	bus.EXPECT().Publish(gomock.Any(), eventTypeMatcher{event.TypeDataCleared}).Return(nil).AnyTimes()

	store := memory.NewStore()
	reloader := &fakeReloader{}
	return adminsvc.NewService(store, bus, reloader), store, reloader
}

type eventTypeMatcher struct{ want event.Type }

func (m eventTypeMatcher) Matches(x interface{}) bool {
	e, ok := x.(event.Event)
	return ok && e.Type == m.want
}
func (m eventTypeMatcher) String() string { return "event.Type=" + string(m.want) }

func TestClearAppData_RemovesOnlyNamespacedKeys(t *testing.T) {
	svc, store, reloader := newAdminSvc(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, domaindoc.KeyData, []byte("{}")))
	require.NoError(t, store.Set(ctx, domaindoc.KeyHandoff, []byte("{}")))
	require.NoError(t, store.Set(ctx, domaindoc.KeyFilters, []byte("{}")))
	require.NoError(t, store.Set(ctx, "my_prompt_drafts", []byte("x")))
	require.NoError(t, store.Set(ctx, "unrelated_app_state", []byte("y")))

	removed, err := svc.ClearAppData(ctx)
	require.NoError(t, err)
	assert.Len(t, removed, 4)

	_, err = store.Get(ctx, domaindoc.KeyData)
	assert.ErrorIs(t, err, portstore.ErrNotFound)
	_, err = store.Get(ctx, "my_prompt_drafts")
	assert.ErrorIs(t, err, portstore.ErrNotFound)

	// Foreign keys survive a scoped clear.
	val, err := store.Get(ctx, "unrelated_app_state")
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), val)

	assert.Equal(t, 1, reloader.loads)
}

func TestClearAppData_EmptyStore(t *testing.T) {
	svc, _, reloader := newAdminSvc(t)

	removed, err := svc.ClearAppData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, 1, reloader.loads)
}

func TestClearAll_WipesEverything(t *testing.T) {
	svc, store, reloader := newAdminSvc(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, domaindoc.KeyData, []byte("{}")))
	require.NoError(t, store.Set(ctx, "unrelated_app_state", []byte("y")))

	require.NoError(t, svc.ClearAll(ctx))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, 1, reloader.loads)
}
