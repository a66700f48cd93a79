package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/tdnguyen/hiring-mcp/internal/basehiring"
	"github.com/tdnguyen/hiring-mcp/internal/sheets"
)

func (s *Server) registerCandidateDetails() {
	tool := mcp.NewTool("get_candidate_details",
		mcp.WithDescription("Deep dive into one or more specific candidates: full CV text, "+
			"detailed reviews, form fields and test results, grouped by opening."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("candidate_id",
			mcp.Description("Candidate id, or several ids separated by commas."),
		),
		mcp.WithString("opening_name_or_id",
			mcp.Description("Opening name or id. Required when searching by candidate_name."),
		),
		mcp.WithString("candidate_name",
			mcp.Description("Candidate name, or several names separated by commas. Fuzzy-matched within the opening."),
		),
	)
	s.mcp.AddTool(tool, s.handleCandidateDetails)
}

type candidateDetailView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email,omitempty"`
	Phone       string              `json:"phone,omitempty"`
	StageName   string              `json:"stage_name,omitempty"`
	Source      string              `json:"source,omitempty"`
	BirthDate   string              `json:"birth_date,omitempty"`
	Gender      string              `json:"gender,omitempty"`
	Address     string              `json:"address,omitempty"`
	NationalID  string              `json:"national_id,omitempty"`
	CVURL       string              `json:"cv_url,omitempty"`
	CVText      string              `json:"cv_text,omitempty"`
	Reviews     []basehiring.Review `json:"reviews"`
	Fields      map[string]any      `json:"fields,omitempty"`
	TestResults []sheets.TestResult `json:"test_results,omitempty"`
}

type openingGroup struct {
	OpeningID      string                `json:"opening_id,omitempty"`
	OpeningName    string                `json:"opening_name,omitempty"`
	JobDescription string                `json:"job_description,omitempty"`
	Candidates     []candidateDetailView `json:"candidates"`
}

func (s *Server) handleCandidateDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := splitList(req.GetString("candidate_id", ""))
	names := req.GetString("candidate_name", "")
	openingQuery := strings.TrimSpace(req.GetString("opening_name_or_id", ""))

	if len(ids) == 0 && names == "" {
		return errorResult("provide candidate_id or candidate_name")
	}
	if names != "" && openingQuery == "" {
		return errorResult("opening_name_or_id is required when searching by candidate_name")
	}

	var openingScore *float64
	var unresolved []map[string]any

	if names != "" {
		resolution, err := s.resolver.ResolveOpening(openingQuery)
		if err != nil {
			return errorResult("resolving opening: %v", err)
		}
		if !resolution.Found {
			return errorResult("%s", resolution.Reason)
		}
		openingScore = &resolution.Score

		batch, err := s.resolver.ResolveCandidates(names, resolution.ID)
		if err != nil {
			return errorResult("resolving candidates: %v", err)
		}
		for _, matchEntry := range batch.Resolved {
			ids = append(ids, matchEntry.ID)
		}
		for _, miss := range batch.Unresolved {
			unresolved = append(unresolved, map[string]any{
				"query":      miss.Query,
				"best_score": miss.BestScore,
				"message":    miss.Reason,
			})
		}
	}

	if len(ids) == 0 {
		return errorResult("no candidate matched any of the given names")
	}

	users := s.users()
	groups := make(map[string]*openingGroup)
	var order []string
	total := 0

	for _, id := range ids {
		details, err := s.hiring.GetCandidate(id)
		if err != nil {
			// One bad id must not sink the whole batch.
			s.logger.Warn("skipping candidate", zap.String("candidate_id", id), zap.Error(err))
			continue
		}

		view := candidateDetailView{
			ID:         details.ID,
			Name:       details.Name,
			Email:      details.Email,
			Phone:      details.Phone,
			StageName:  details.StageName,
			Source:     details.Source,
			BirthDate:  details.BirthDate,
			Gender:     details.Gender,
			Address:    details.Address,
			NationalID: details.NationalID,
			CVURL:      details.CVURL,
			Reviews:    basehiring.BuildReviews(details.Evaluations, users),
			Fields:     details.Fields,
		}

		if view.CVURL != "" {
			if text, err := s.extractor.TextFromURL(ctx, view.CVURL); err == nil {
				view.CVText = text
			}
		}

		if s.sheet.Enabled() {
			if results, err := s.sheet.ResultsForCandidate(ctx, details.ID); err == nil {
				view.TestResults = results
			}
		}

		key := details.OpeningID
		if key == "" {
			key = details.OpeningName
		}
		if key == "" {
			key = "unknown"
		}

		group, ok := groups[key]
		if !ok {
			group = &openingGroup{OpeningID: details.OpeningID, OpeningName: details.OpeningName}
			groups[key] = group
			order = append(order, key)
		}
		group.Candidates = append(group.Candidates, view)
		total++
	}

	if total == 0 {
		return errorResult("could not fetch details for any of the requested candidates")
	}

	groupList := make([]*openingGroup, 0, len(order))
	for _, key := range order {
		group := groups[key]
		if group.OpeningID != "" {
			if details, err := s.hiring.GetOpening(group.OpeningID); err == nil {
				group.JobDescription = details.Description
			} else if jd := s.jobDescriptionFor(group.OpeningID); jd != nil {
				group.JobDescription = jd.Text
			}
		}
		groupList = append(groupList, group)
	}

	payload := map[string]any{
		"success":          true,
		"total_candidates": total,
		"total_openings":   len(groupList),
		"openings":         groupList,
	}
	if openingScore != nil {
		payload["opening_similarity_score"] = *openingScore
	}
	if len(unresolved) > 0 {
		payload["unresolved_names"] = unresolved
	}

	return textResult(payload)
}

func splitList(value string) []string {
	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
