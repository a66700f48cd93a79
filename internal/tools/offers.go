package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/tdnguyen/hiring-mcp/internal/document"
	"github.com/tdnguyen/hiring-mcp/internal/htmltext"
)

func (s *Server) registerOfferLetter() {
	tool := mcp.NewTool("get_offer_letter",
		mcp.WithDescription("Get a candidate's offer letter text. Search by candidate_id, "+
			"or by opening_name_or_id plus candidate_name."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("candidate_id",
			mcp.Description("Candidate id. Required unless opening_name_or_id and candidate_name are given."),
		),
		mcp.WithString("opening_name_or_id",
			mcp.Description("Opening name or id, used together with candidate_name."),
		),
		mcp.WithString("candidate_name",
			mcp.Description("Candidate name, fuzzy-matched within the opening."),
		),
	)
	s.mcp.AddTool(tool, s.handleOfferLetter)
}

// offerLetter is the extracted document of the newest message carrying one.
type offerLetter struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Text string `json:"text"`
}

func (s *Server) handleOfferLetter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	candidateID := strings.TrimSpace(req.GetString("candidate_id", ""))
	openingQuery := strings.TrimSpace(req.GetString("opening_name_or_id", ""))
	candidateName := strings.TrimSpace(req.GetString("candidate_name", ""))

	if candidateID == "" {
		if openingQuery == "" || candidateName == "" {
			return errorResult("provide candidate_id, or both opening_name_or_id and candidate_name")
		}

		resolution, err := s.resolver.ResolveOpening(openingQuery)
		if err != nil {
			return errorResult("resolving opening: %v", err)
		}
		if !resolution.Found {
			return errorResult("%s", resolution.Reason)
		}

		batch, err := s.resolver.ResolveCandidates(candidateName, resolution.ID)
		if err != nil {
			return errorResult("resolving candidate: %v", err)
		}
		if len(batch.Resolved) == 0 {
			reason := fmt.Sprintf("no candidate matched %q in opening %q", candidateName, resolution.Name)
			if len(batch.Unresolved) > 0 {
				reason = batch.Unresolved[0].Reason
			}
			return errorResult("%s", reason)
		}
		candidateID = batch.Resolved[0].ID
	}

	offer, err := s.findOfferLetter(ctx, candidateID)
	if err != nil {
		return errorResult("fetching offer letter: %v", err)
	}
	if offer == nil {
		return textResult(map[string]any{
			"success": false,
			"message": fmt.Sprintf("no offer letter found for candidate %s", candidateID),
		})
	}

	return textResult(map[string]any{
		"success": true,
		"data":    offer,
	})
}

// findOfferLetter walks the candidate's messages newest first and returns
// the first attached or linked document whose text can be extracted.
// Attachments win over links found in the message body.
func (s *Server) findOfferLetter(ctx context.Context, candidateID string) (*offerLetter, error) {
	messages, err := s.hiring.ListCandidateMessages(candidateID)
	if err != nil {
		return nil, err
	}

	for _, message := range messages {
		var files []htmltext.Link

		if message.HasAttachment > 0 {
			for _, attachment := range message.Attachments {
				url := attachment.FileURL()
				name := attachment.Name
				if name == "" {
					name = "unknown"
				}
				if url != "" && htmltext.IsDocumentFile(url, name) {
					files = append(files, htmltext.Link{URL: url, Name: name})
				}
			}
		}
		if len(files) == 0 {
			files = htmltext.FindDocumentLinks(message.Content)
		}

		for _, file := range files {
			data, err := s.extractor.Download(ctx, file.URL)
			if err != nil {
				s.logger.Debug("offer letter download failed",
					zap.String("url", file.URL), zap.Error(err))
				continue
			}

			text, err := document.ExtractByName(data, file.Name)
			if err != nil || strings.TrimSpace(text) == "" {
				continue
			}

			return &offerLetter{URL: file.URL, Name: file.Name, Text: text}, nil
		}
	}

	return nil, nil
}
