package transport

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alanyang/promptbox/internal/domain/event"
	porteventbus "github.com/alanyang/promptbox/internal/port/eventbus"
	adminsvc "github.com/alanyang/promptbox/internal/service/admin"
	docsvc "github.com/alanyang/promptbox/internal/service/document"
	handoffsvc "github.com/alanyang/promptbox/internal/service/handoff"

	adminhandler "github.com/alanyang/promptbox/internal/transport/admin"
	editorhandler "github.com/alanyang/promptbox/internal/transport/editor"
	filterhandler "github.com/alanyang/promptbox/internal/transport/filters"
	mcphandler "github.com/alanyang/promptbox/internal/transport/mcp"
	prompthandler "github.com/alanyang/promptbox/internal/transport/prompt"
	wshandler "github.com/alanyang/promptbox/internal/transport/ws"
)

func NewRouter(
	ctx context.Context,
	docSvc *docsvc.Service,
	handoffSvc *handoffsvc.Service,
	adminSvc *adminsvc.Service,
	mcpServer *mcphandler.Server,
	eventBus porteventbus.EventBus,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	api := r.Group("/api")

	api.GET("/document", prompthandler.GetDocument(docSvc))
	prompthandler.Register(api.Group("/prompts"), docSvc)
	filterhandler.Register(api.Group("/filters"), docSvc)
	editorhandler.Register(api.Group("/editor"), docSvc, handoffSvc)
	adminhandler.Register(api.Group("/admin"), adminSvc)

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	// Bridge: one subscription per channel; every event in a channel is
	// forwarded to WS clients, event.Type in the payload lets the client
	// filter.
	for _, ch := range []event.Channel{
		event.ChannelDocument,
		event.ChannelEditor,
	} {
		c := ch
		if _, err := eventBus.Subscribe(ctx, c, func(_ context.Context, e event.Event) {
			hub.Broadcast(e)
		}); err != nil {
			slog.Error("failed to subscribe channel to WS hub", "channel", c, "error", err)
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Any("/mcp", gin.WrapH(mcpServer.Handler()))

	return r
}
