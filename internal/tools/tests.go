package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTestResults() {
	tool := mcp.NewTool("get_test_results",
		mcp.WithDescription("Get a candidate's test results from the results sheet. "+
			"Search by candidate_id, or by candidate_name plus opening_name. "+
			"Pass test_name to pick a single test."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("candidate_id",
			mcp.Description("Candidate id. Required unless candidate_name and opening_name are given."),
		),
		mcp.WithString("candidate_name",
			mcp.Description("Candidate name, fuzzy-matched against sheet rows."),
		),
		mcp.WithString("opening_name",
			mcp.Description("Opening name, used together with candidate_name to disambiguate."),
		),
		mcp.WithString("test_name",
			mcp.Description("Test name to pick one result, fuzzy-matched. Leave empty for all results."),
		),
	)
	s.mcp.AddTool(tool, s.handleTestResults)
}

func (s *Server) handleTestResults(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.sheet.Enabled() {
		return errorResult("test results are not available: no results sheet configured")
	}

	candidateID := strings.TrimSpace(req.GetString("candidate_id", ""))
	candidateName := strings.TrimSpace(req.GetString("candidate_name", ""))
	openingName := strings.TrimSpace(req.GetString("opening_name", ""))

	payload := map[string]any{"success": true}

	if candidateID == "" {
		if candidateName == "" {
			return errorResult("provide candidate_id, or candidate_name with opening_name")
		}

		lookup, err := s.sheet.FindCandidate(ctx, candidateName, openingName)
		if err != nil {
			return errorResult("searching results sheet: %v", err)
		}
		if !lookup.Found {
			return errorResult("%s", lookup.Reason)
		}

		candidateID = lookup.ID
		payload["similarity_score"] = lookup.Score
	}

	results, err := s.sheet.ResultsForCandidate(ctx, candidateID)
	if err != nil {
		return errorResult("reading test results: %v", err)
	}

	payload["candidate_id"] = candidateID

	if testName := strings.TrimSpace(req.GetString("test_name", "")); testName != "" {
		lookup := s.sheet.FindTest(results, testName)
		if !lookup.Found {
			return errorResult("%s", lookup.Reason)
		}
		payload["test_name_query"] = testName
		payload["test_similarity_score"] = lookup.Score
		payload["result"] = lookup.Result
		return textResult(payload)
	}

	payload["total_results"] = len(results)
	payload["results"] = results
	return textResult(payload)
}
