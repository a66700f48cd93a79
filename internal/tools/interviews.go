package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerInterviewsByOpening() {
	tool := mcp.NewTool("get_interviews_by_opening",
		mcp.WithDescription("Look up the interview schedule, optionally filtered by opening "+
			"and by a single date or a date range."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("opening_name_or_id",
			mcp.Description("Opening name or id to filter by. Leave empty for all openings."),
		),
		mcp.WithString("date",
			mcp.Description("Interviews on exactly this date (YYYY-MM-DD). Overrides start_date and end_date."),
		),
		mcp.WithString("start_date",
			mcp.Description("Interviews on or after this date (YYYY-MM-DD)."),
		),
		mcp.WithString("end_date",
			mcp.Description("Interviews on or before this date (YYYY-MM-DD)."),
		),
	)
	s.mcp.AddTool(tool, s.handleInterviewsByOpening)
}

type interviewView struct {
	ID            string `json:"id"`
	CandidateID   string `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	OpeningID     string `json:"opening_id"`
	OpeningName   string `json:"opening_name"`
	Time          string `json:"time"`
}

func (s *Server) handleInterviewsByOpening(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("opening_name_or_id", ""))
	day := req.GetString("date", "")
	startDate := req.GetString("start_date", "")
	endDate := req.GetString("end_date", "")

	var dayTime time.Time
	var start, end *time.Time
	if day != "" {
		parsed, err := parseDate(day)
		if err != nil {
			return errorResult("invalid date %q, want YYYY-MM-DD", day)
		}
		dayTime = parsed
		// A specific date wins over the range.
		startDate, endDate = "", ""
	}
	if startDate != "" {
		parsed, err := parseDate(startDate)
		if err != nil {
			return errorResult("invalid start_date %q, want YYYY-MM-DD", startDate)
		}
		start = &parsed
	}
	if endDate != "" {
		parsed, err := parseDate(endDate)
		if err != nil {
			return errorResult("invalid end_date %q, want YYYY-MM-DD", endDate)
		}
		end = &parsed
	}

	var message string
	openingID := ""
	var score *float64
	if query != "" {
		resolution, err := s.resolver.ResolveOpening(query)
		if err != nil {
			return errorResult("resolving opening: %v", err)
		}
		if resolution.Found {
			openingID = resolution.ID
			score = &resolution.Score
		} else {
			// An unmatched opening falls back to the full schedule.
			message = fmt.Sprintf("No opening matched %q, returning all interviews.", query)
		}
	}

	interviews, err := s.hiring.ListInterviews()
	if err != nil {
		return errorResult("listing interviews: %v", err)
	}

	if openingID != "" {
		interviews = interviews.FilterByOpening(openingID)
	}
	if day != "" {
		interviews = interviews.FilterByDate(dayTime)
	} else {
		interviews = interviews.FilterByRange(start, end)
	}

	views := make([]interviewView, 0, interviews.Len())
	for _, interview := range interviews.Items {
		views = append(views, interviewView{
			ID:            interview.ID,
			CandidateID:   interview.CandidateID,
			CandidateName: interview.CandidateName,
			OpeningID:     interview.OpeningID,
			OpeningName:   interview.OpeningName,
			Time:          interview.LocalTime(),
		})
	}

	payload := map[string]any{
		"success":          true,
		"total_interviews": len(views),
		"interviews":       views,
	}
	if query != "" {
		payload["query"] = query
	}
	if day != "" {
		payload["date"] = day
	}
	if startDate != "" {
		payload["start_date"] = startDate
	}
	if endDate != "" {
		payload["end_date"] = endDate
	}
	if score != nil {
		payload["similarity_score"] = *score
	}
	if message != "" {
		payload["message"] = message
	}

	return textResult(payload)
}
