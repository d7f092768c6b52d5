package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domaindoc "github.com/alanyang/promptbox/internal/domain/document"
	domainfilter "github.com/alanyang/promptbox/internal/domain/filter"
	docsvc "github.com/alanyang/promptbox/internal/service/document"
)

// RegisterTools registers all MCP tools on the server.
func RegisterTools(s *mcpserver.MCPServer, docSvc *docsvc.Service) {
	s.AddTool(mcpmcp.NewTool("list_prompts",
		mcpmcp.WithDescription("List prompts in the library. Optional filters narrow by category, tag, or a case-insensitive title/description search. Pinned prompts are listed first."),
		mcpmcp.WithString("category", mcpmcp.Description("Only prompts carrying this category")),
		mcpmcp.WithString("tag", mcpmcp.Description("Only prompts carrying this tag")),
		mcpmcp.WithString("search", mcpmcp.Description("Case-insensitive substring match on title and description")),
	), listPromptsHandler(docSvc))

	s.AddTool(mcpmcp.NewTool("get_prompt",
		mcpmcp.WithDescription("Fetch one prompt by id, including its full content and example content."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Prompt id as returned by list_prompts")),
	), getPromptHandler(docSvc))
}

func listPromptsHandler(docSvc *docsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		sel := domainfilter.Selection{
			Categories: []string{domaindoc.Sentinel},
			Tags:       []string{domaindoc.Sentinel},
			Search:     mcpmcp.ParseString(req, "search", ""),
		}
		if v := mcpmcp.ParseString(req, "category", ""); v != "" {
			sel.Categories = []string{v}
		}
		if v := mcpmcp.ParseString(req, "tag", ""); v != "" {
			sel.Tags = []string{v}
		}

		prompts := docSvc.VisibleWith(sel)

		type summary struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Description string `json:"description"`
			Rating      string `json:"rating"`
			Pinned      bool   `json:"pinned"`
		}
		out := make([]summary, 0, len(prompts))
		for _, p := range prompts {
			out = append(out, summary{
				ID:          p.ID,
				Title:       p.Title,
				Description: p.Description,
				Rating:      p.Rating.Label(),
				Pinned:      p.Pinned,
			})
		}

		data, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("marshal prompt list: %w", err)
		}
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}

func getPromptHandler(docSvc *docsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id := mcpmcp.ParseString(req, "id", "")
		if id == "" {
			return mcpmcp.NewToolResultText("error: id is required"), nil
		}

		for _, p := range docSvc.Document().PromptCards {
			if p.ID == id {
				data, err := json.Marshal(p)
				if err != nil {
					return nil, fmt.Errorf("marshal prompt: %w", err)
				}
				return mcpmcp.NewToolResultText(string(data)), nil
			}
		}
		return mcpmcp.NewToolResultText(fmt.Sprintf("error: no prompt with id %q", id)), nil
	}
}
