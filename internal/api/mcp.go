package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/avlasiuk/campaignwiz/internal/audience"
	"github.com/avlasiuk/campaignwiz/internal/lever"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Audiences *audience.Service
	Levers    *lever.Service
}

// NewMCPServer creates an MCP server exposing the campaign generation
// tools over stdio.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"campaignwiz",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("campaignwiz — audience and growth lever generation for marketing campaigns."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("generate_audiences",
			mcp.WithDescription("Generate target audience suggestions for a campaign prompt. Falls back to curated samples when the upstream AI service is unavailable."),
			mcp.WithString("prompt", mcp.Description("Free-text description of the campaign and its goals"), mcp.Required()),
		),
		mcpGenerateAudiences(deps),
	)

	s.AddTool(
		mcp.NewTool("modify_audience",
			mcp.WithDescription("Modify one audience in a list according to a free-text instruction. Applies keyword heuristics locally when the upstream AI service is unavailable."),
			mcp.WithString("audience_id", mcp.Description("ID of the audience to modify"), mcp.Required()),
			mcp.WithString("prompt", mcp.Description("Modification instruction, e.g. 'make it more specific'"), mcp.Required()),
			mcp.WithString("audiences", mcp.Description("JSON array of the current audiences"), mcp.Required()),
		),
		mcpModifyAudience(deps),
	)

	s.AddTool(
		mcp.NewTool("generate_growth_levers",
			mcp.WithDescription("Generate three growth lever recommendations per audience. Falls back to template-based levers when the upstream AI service is unavailable."),
			mcp.WithString("audiences", mcp.Description("JSON array of the selected audiences"), mcp.Required()),
		),
		mcpGenerateLevers(deps),
	)

	return s
}

func mcpGenerateAudiences(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prompt, err := req.RequireString("prompt")
		if err != nil {
			return mcpError("prompt is required"), nil
		}

		generated, notice := deps.Audiences.Generate(ctx, prompt, nil)
		return mcpResult(map[string]any{
			"audiences": generated,
			"notice":    notice,
		})
	}
}

func mcpModifyAudience(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		audienceID, err := req.RequireString("audience_id")
		if err != nil {
			return mcpError("audience_id is required"), nil
		}
		prompt, err := req.RequireString("prompt")
		if err != nil {
			return mcpError("prompt is required"), nil
		}
		audiencesJSON, err := req.RequireString("audiences")
		if err != nil {
			return mcpError("audiences is required"), nil
		}

		var current []audience.Audience
		if err := json.Unmarshal([]byte(audiencesJSON), &current); err != nil {
			return mcpError(fmt.Sprintf("invalid audiences JSON: %v", err)), nil
		}

		updated, notice := deps.Audiences.Modify(ctx, audienceID, prompt, current)
		return mcpResult(map[string]any{
			"audiences": updated,
			"notice":    notice,
		})
	}
}

func mcpGenerateLevers(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		audiencesJSON, err := req.RequireString("audiences")
		if err != nil {
			return mcpError("audiences is required"), nil
		}

		var selected []audience.Audience
		if err := json.Unmarshal([]byte(audiencesJSON), &selected); err != nil {
			return mcpError(fmt.Sprintf("invalid audiences JSON: %v", err)), nil
		}
		if len(selected) == 0 {
			return mcpError("audiences must not be empty"), nil
		}

		levers, notice := deps.Levers.Generate(ctx, selected)
		return mcpResult(map[string]any{
			"growth_levers": levers,
			"notice":        notice,
		})
	}
}

func mcpResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
