// Package mcp exposes the prompt library to MCP clients: tools to list
// and fetch prompts, and a native prompt that injects a library entry
// directly into the client's context.
package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	docsvc "github.com/alanyang/promptbox/internal/service/document"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
}

func New(docSvc *docsvc.Service) *Server {
	mcpSrv := mcpserver.NewMCPServer(
		"promptbox",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
	)

	RegisterTools(mcpSrv, docSvc)
	RegisterPrompts(mcpSrv, docSvc)

	return &Server{httpSrv: mcpserver.NewStreamableHTTPServer(mcpSrv)}
}

// Handler returns an http.Handler that serves the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}
