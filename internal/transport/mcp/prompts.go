package mcp

import (
	"context"
	"fmt"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	docsvc "github.com/alanyang/promptbox/internal/service/document"
)

// RegisterPrompts registers the library-prompt MCP native prompt, which
// delivers a stored prompt's content straight into the client context.
func RegisterPrompts(s *mcpserver.MCPServer, docSvc *docsvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt("library-prompt",
			mcpmcp.WithPromptDescription("A prompt from the personal library, injected verbatim."),
			mcpmcp.WithArgument("id",
				mcpmcp.ArgumentDescription("Prompt id as returned by the list_prompts tool."),
				mcpmcp.RequiredArgument(),
			),
		),
		libraryPromptHandler(docSvc),
	)
}

func libraryPromptHandler(docSvc *docsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		id := req.Params.Arguments["id"]
		if id == "" {
			return nil, fmt.Errorf("id is required")
		}

		for _, p := range docSvc.Document().PromptCards {
			if p.ID != id {
				continue
			}
			return mcpmcp.NewGetPromptResult(
				p.Title,
				[]mcpmcp.PromptMessage{
					mcpmcp.NewPromptMessage(
						mcpmcp.RoleUser,
						mcpmcp.TextContent{
							Type: "text",
							Text: p.Content,
						},
					),
				},
			), nil
		}
		return nil, fmt.Errorf("no prompt with id %q", id)
	}
}
