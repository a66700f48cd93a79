package sheets

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/tdnguyen/hiring-mcp/internal/match"
)

// Feedback rows are regular test rows whose test name contains this marker.
const feedbackMarker = "feedback"

// feedbackQA captures (question number, question text, answer) triples from
// the sheet's exported test content. The markers are part of the sheet's
// export format.
var feedbackQA = regexp.MustCompile(`(?s)Câu hỏi (\d+)\.(.*?)\nCâu trả lời của thí sinh\s*(.*?)\s*Đây là câu hỏi mở`)

// The sheet's Time column is filled by hand in several formats.
var sheetDateFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// Feedback returns interview feedback grouped question -> candidate ->
// answer. start drops rows submitted before it; jobQuery fuzzy-filters rows
// by the applied-for position using the stage threshold, which is loose
// enough to catch partial job titles.
func (c *Client) Feedback(ctx context.Context, start *time.Time, jobQuery string) (map[string]map[string]string, error) {
	rows, err := c.AllRows(ctx)
	if err != nil {
		return nil, err
	}

	var feedback []Row
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.str(colTestName)), feedbackMarker) {
			feedback = append(feedback, row)
		}
	}

	if start != nil {
		var kept []Row
		for _, row := range feedback {
			submitted, ok := parseSheetDate(row.str(colTime))
			if !ok {
				continue
			}
			if !submitted.Before(*start) {
				kept = append(kept, row)
			}
		}
		feedback = kept
	}

	if jobQuery != "" && len(feedback) > 0 {
		titles := make([]string, len(feedback))
		for i, row := range feedback {
			titles[i] = row.str(colOpeningName)
		}

		scores := match.Scores(jobQuery, titles)
		var kept []Row
		for i, row := range feedback {
			if scores[i] >= c.thresholds.Stage {
				kept = append(kept, row)
			}
		}
		feedback = kept
	}

	result := make(map[string]map[string]string)
	for _, row := range feedback {
		candidate := row.str(colCandidateName)
		if candidate == "" {
			candidate = "Unknown"
		}

		content := row.str(colContent)
		if content == "" {
			continue
		}

		for _, qa := range feedbackQA.FindAllStringSubmatch(content, -1) {
			question := strings.Join(strings.Fields(qa[2]), " ")
			answer := strings.TrimSpace(qa[3])
			if question == "" {
				continue
			}

			if _, ok := result[question]; !ok {
				result[question] = make(map[string]string)
			}
			result[question][candidate] = answer
		}
	}

	return result, nil
}

func parseSheetDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}

	for _, format := range sheetDateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
