package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tdnguyen/hiring-mcp/internal/basehiring"
)

func (s *Server) registerJobDescription() {
	tool := mcp.NewTool("get_job_description",
		mcp.WithDescription("Get the job description (JD) for an opening by name or id. "+
			"With no argument, or when nothing matches, lists every active opening instead."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("opening_name_or_id",
			mcp.Description("Opening name or id. Leave empty to list all active openings."),
		),
	)
	s.mcp.AddTool(tool, s.handleJobDescription)
}

func (s *Server) handleJobDescription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("opening_name_or_id", ""))

	openings, err := s.openings()
	if err != nil {
		return errorResult("listing openings: %v", err)
	}

	allOpenings := func(message string, extra map[string]any) (*mcp.CallToolResult, error) {
		payload := map[string]any{
			"success":        true,
			"message":        message,
			"total_openings": len(openings),
			"openings":       openingItems(openings),
		}
		if query != "" {
			payload["query"] = query
		}
		for k, v := range extra {
			payload[k] = v
		}
		return textResult(payload)
	}

	if query == "" {
		return allOpenings("Returning all active openings.", nil)
	}

	resolution, err := s.resolver.ResolveOpening(query)
	if err != nil {
		return errorResult("resolving opening: %v", err)
	}
	if !resolution.Found {
		return allOpenings(
			fmt.Sprintf("No opening matched %q. Returning all active openings.", query),
			map[string]any{"similarity_score": resolution.BestScore},
		)
	}

	jd := s.jobDescriptionFor(resolution.ID)
	if jd == nil {
		return allOpenings(
			fmt.Sprintf("Opening %q has no job description. Returning all active openings.", resolution.Name),
			map[string]any{
				"opening_id":       resolution.ID,
				"opening_name":     resolution.Name,
				"similarity_score": resolution.Score,
			},
		)
	}

	stages, err := s.stages(resolution.ID)
	if err != nil {
		s.logger.Warn("could not load opening stages")
		stages = nil
	}

	return textResult(map[string]any{
		"success":          true,
		"query":            query,
		"opening_id":       resolution.ID,
		"opening_name":     resolution.Name,
		"similarity_score": resolution.Score,
		"job_description":  jd.Text,
		"stages":           stages,
	})
}

type openingItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func openingItems(openings []basehiring.Opening) []openingItem {
	items := make([]openingItem, len(openings))
	for i, opening := range openings {
		items[i] = openingItem{ID: opening.ID, Name: opening.Name}
	}
	return items
}
