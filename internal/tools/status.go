package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerServerStatus() {
	tool := mcp.NewTool("get_server_status",
		mcp.WithDescription("Check that the hiring MCP server is running."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, s.handleServerStatus)
}

func (s *Server) handleServerStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(map[string]string{
		"status":  "running",
		"server":  serverName,
		"version": serverVersion,
	})
}
