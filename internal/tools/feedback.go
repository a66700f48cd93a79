package tools

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerFeedbackData() {
	tool := mcp.NewTool("get_feedback_data",
		mcp.WithDescription("Get interview feedback answers from the results sheet, "+
			"grouped by question and candidate."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("start_date",
			mcp.Description("Only feedback submitted on or after this date (YYYY-MM-DD)."),
		),
		mcp.WithString("job_description",
			mcp.Description("Job title to filter feedback by, fuzzy-matched. Leave empty for all jobs."),
		),
	)
	s.mcp.AddTool(tool, s.handleFeedbackData)
}

func (s *Server) handleFeedbackData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.sheet.Enabled() {
		return errorResult("feedback data is not available: no results sheet configured")
	}

	var start *time.Time
	startDate := req.GetString("start_date", "")
	if startDate != "" {
		parsed, err := parseDate(startDate)
		if err != nil {
			return errorResult("invalid start_date %q, want YYYY-MM-DD", startDate)
		}
		start = &parsed
	}

	jobQuery := strings.TrimSpace(req.GetString("job_description", ""))

	feedback, err := s.sheet.Feedback(ctx, start, jobQuery)
	if err != nil {
		return errorResult("reading feedback: %v", err)
	}

	payload := map[string]any{
		"success":         true,
		"total_questions": len(feedback),
		"feedback":        feedback,
	}
	if startDate != "" {
		payload["start_date"] = startDate
	}
	if jobQuery != "" {
		payload["job_description"] = jobQuery
	}

	return textResult(payload)
}
