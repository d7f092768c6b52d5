package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alanyang/promptbox/internal/adapter/localstore"
	"github.com/alanyang/promptbox/internal/adapter/memory"
	"github.com/alanyang/promptbox/internal/config"
	domaindoc "github.com/alanyang/promptbox/internal/domain/document"
	portstore "github.com/alanyang/promptbox/internal/port/store"
	adminsvc "github.com/alanyang/promptbox/internal/service/admin"
	docsvc "github.com/alanyang/promptbox/internal/service/document"
	handoffsvc "github.com/alanyang/promptbox/internal/service/handoff"
	"github.com/alanyang/promptbox/internal/transport"
	mcptransport "github.com/alanyang/promptbox/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the
// server.
type App struct {
	Server     *http.Server
	DocSvc     *docsvc.Service
	handoffSub portstore.Subscription
}

// Build is the composition root: the only place concrete types are wired
// to their interface dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	// ── Storage ──────────────────────────────────────────────────────────────
	store, err := localstore.New(cfg.Storage.Dir, localstore.WithPollInterval(cfg.PollInterval()))
	if err != nil {
		return nil, fmt.Errorf("opening data directory: %w", err)
	}

	eventBus := memory.NewEventBus()

	// ── Services ─────────────────────────────────────────────────────────────
	handoffSvc := handoffsvc.NewService(store, eventBus)

	docOpts := []docsvc.Option{}
	if cfg.Storage.Seed {
		docOpts = append(docOpts, docsvc.WithDefault(domaindoc.Seeded))
	}
	docSvc := docsvc.NewService(store, eventBus, handoffSvc, docOpts...)
	docSvc.Load(ctx)

	adminSvc := adminsvc.NewService(store, eventBus, docSvc)

	// ── Transport ────────────────────────────────────────────────────────────
	mcpServer := mcptransport.New(docSvc)
	router := transport.NewRouter(ctx, docSvc, handoffSvc, adminSvc, mcpServer, eventBus)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	// A foreign writer dropping a payload into the hand-off slot (another
	// process sharing the data directory) is picked up by the file watcher
	// and applied exactly like an in-process sync.
	sub, err := store.Watch(ctx, domaindoc.KeyHandoff, func(ctx context.Context, key string) {
		if docSvc.SyncFromEditor(ctx) {
			slog.InfoContext(ctx, "applied hand-off payload from storage watch", "key", key)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("watching hand-off slot: %w", err)
	}

	slog.Info("application wired", "addr", cfg.Server.Addr, "data_dir", cfg.Storage.Dir)

	return &App{
		Server:     server,
		DocSvc:     docSvc,
		handoffSub: sub,
	}, nil
}

// Stop releases background resources; the HTTP server is shut down by the
// caller.
func (a *App) Stop() {
	if a.handoffSub != nil {
		a.handoffSub.Unsubscribe()
	}
}
