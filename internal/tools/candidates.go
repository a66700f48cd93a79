package tools

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/tdnguyen/hiring-mcp/internal/basehiring"
	"github.com/tdnguyen/hiring-mcp/internal/logger"
	"github.com/tdnguyen/hiring-mcp/internal/match"
	"github.com/tdnguyen/hiring-mcp/internal/sheets"
)

// When an opening has more candidates than this, the list tool keeps only
// the recently updated ones to stay within a usable response size.
const (
	candidateListLimit = 10
	recentWindow       = 7 * 24 * time.Hour
)

func (s *Server) registerCandidatesByOpening() {
	tool := mcp.NewTool("get_candidates_by_opening",
		mcp.WithDescription("List candidates of an opening for broad screening. "+
			"Includes CV text, reviews, form data and test results per candidate."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("opening_name_or_id",
			mcp.Required(),
			mcp.Description("Opening name or id."),
		),
		mcp.WithString("start_date",
			mcp.Description("Only candidates created on or after this date (YYYY-MM-DD)."),
		),
		mcp.WithString("end_date",
			mcp.Description("Only candidates created on or before this date (YYYY-MM-DD)."),
		),
		mcp.WithString("stage_name",
			mcp.Description("Filter by recruitment stage, fuzzy-matched. Leave empty for all stages."),
		),
	)
	s.mcp.AddTool(tool, s.handleCandidatesByOpening)
}

type candidateSummary struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	Gender      string              `json:"gender,omitempty"`
	CVURL       string              `json:"cv_url,omitempty"`
	CVText      string              `json:"cv_text,omitempty"`
	Review      string              `json:"review,omitempty"`
	Reviews     []basehiring.Review `json:"reviews"`
	FormData    map[string]any      `json:"form_data"`
	OpeningID   string              `json:"opening_id"`
	StageID     string              `json:"stage_id"`
	StageName   string              `json:"stage_name"`
	TestResults []sheets.TestResult `json:"test_results,omitempty"`
}

func (s *Server) handleCandidatesByOpening(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("opening_name_or_id", ""))
	if query == "" {
		return errorResult("opening_name_or_id is required")
	}

	startDate := req.GetString("start_date", "")
	endDate := req.GetString("end_date", "")
	if startDate != "" {
		if _, err := parseDate(startDate); err != nil {
			return errorResult("invalid start_date %q, want YYYY-MM-DD", startDate)
		}
	}
	if endDate != "" {
		if _, err := parseDate(endDate); err != nil {
			return errorResult("invalid end_date %q, want YYYY-MM-DD", endDate)
		}
	}
	if startDate != "" && endDate != "" && startDate > endDate {
		return errorResult("end_date must not be before start_date")
	}

	resolution, err := s.resolver.ResolveOpening(query)
	if err != nil {
		return errorResult("resolving opening: %v", err)
	}
	if !resolution.Found {
		return errorResult("%s", resolution.Reason)
	}

	candidates, err := s.hiring.ListCandidates(&basehiring.CandidateListParams{
		OpeningID: resolution.ID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return errorResult("listing candidates: %v", err)
	}

	candidates = filterByStage(candidates, req.GetString("stage_name", ""), s.resolver.Thresholds().Stage)

	if len(candidates) > candidateListLimit {
		cutoff := time.Now().Add(-recentWindow).Unix()
		var recent []*basehiring.Candidate
		for _, candidate := range candidates {
			if candidate.LastUpdate >= cutoff {
				recent = append(recent, candidate)
			}
		}
		candidates = recent
	}

	users := s.users()
	summaries := make([]candidateSummary, 0, len(candidates))
	for _, candidate := range candidates {
		summary := candidateSummary{
			ID:        candidate.ID,
			Name:      candidate.Name,
			Email:     candidate.Email,
			Phone:     candidate.Phone,
			Gender:    candidate.Gender,
			CVURL:     candidate.CVURL(),
			Review:    basehiring.FirstReviewText(candidate.Evaluations),
			Reviews:   basehiring.BuildReviews(candidate.Evaluations, users),
			FormData:  candidate.FormData(),
			OpeningID: resolution.ID,
			StageID:   candidate.StageID,
			StageName: candidate.StageName,
		}

		// CV text is fetched after all filtering so skipped candidates
		// cost no downloads.
		if summary.CVURL != "" {
			text, err := s.extractor.TextFromURL(ctx, summary.CVURL)
			if err != nil {
				s.logger.Debug("cv extraction failed",
					zap.String("candidate_id", candidate.ID), zap.Error(err))
			} else {
				summary.CVText = text
				s.logger.Debug("extracted cv text",
					zap.String("candidate_id", candidate.ID),
					zap.String("preview", logger.TruncateForLog(text, 200)),
				)
			}
		}

		if s.sheet.Enabled() {
			if results, err := s.sheet.ResultsForCandidate(ctx, candidate.ID); err == nil {
				summary.TestResults = results
			}
		}

		summaries = append(summaries, summary)
	}

	payload := map[string]any{
		"success":          true,
		"query":            query,
		"opening_id":       resolution.ID,
		"opening_name":     resolution.Name,
		"similarity_score": resolution.Score,
		"total_candidates": len(summaries),
		"candidates":       summaries,
	}
	if jd := s.jobDescriptionFor(resolution.ID); jd != nil {
		payload["job_description"] = jd.Text
	}

	return textResult(payload)
}

// filterByStage keeps candidates in the stage best matching the query.
// When nothing clears the threshold, every candidate is kept rather than
// returning an empty list for a typo.
func filterByStage(candidates []*basehiring.Candidate, stageQuery string, threshold float64) []*basehiring.Candidate {
	stageQuery = strings.TrimSpace(stageQuery)
	if stageQuery == "" {
		return candidates
	}

	seen := make(map[string]struct{})
	var stages []string
	for _, candidate := range candidates {
		if candidate.StageName == "" {
			continue
		}
		if _, ok := seen[candidate.StageName]; ok {
			continue
		}
		seen[candidate.StageName] = struct{}{}
		stages = append(stages, candidate.StageName)
	}

	if len(stages) == 0 {
		return candidates
	}

	result, ok := match.FindBestMatch(stageQuery, stages, threshold)
	if !ok {
		return candidates
	}

	var filtered []*basehiring.Candidate
	for _, candidate := range candidates {
		if candidate.StageName == result.Value {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}
