package sheets

import (
	"context"
	"fmt"

	"github.com/tdnguyen/hiring-mcp/internal/match"
)

// TestResult is one normalized test submission of a candidate.
type TestResult struct {
	TestName string `json:"test_name"`
	Score    string `json:"score"`
	Time     string `json:"time"`
	Link     string `json:"link"`
	Content  string `json:"test_content"`
}

// ResultsForCandidate returns all test submissions recorded for the given
// candidate id.
func (c *Client) ResultsForCandidate(ctx context.Context, candidateID string) ([]TestResult, error) {
	rows, err := c.read(ctx, map[string]string{colCandidateID: candidateID})
	if err != nil {
		return nil, err
	}

	results := make([]TestResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, TestResult{
			TestName: row.str(colTestName),
			Score:    row.str(colScore),
			Time:     row.str(colTime),
			Link:     row.str(colLink),
			Content:  row.str(colContent),
		})
	}

	return results, nil
}

// CandidateLookup is the outcome of searching the sheet by candidate and
// opening name.
type CandidateLookup struct {
	Found     bool
	ID        string
	Score     float64
	Threshold float64
	Reason    string
}

// FindCandidate locates a candidate id in the sheet by fuzzy-matching the
// combined "name opening" text, mirroring how sheet rows are keyed by both.
func (c *Client) FindCandidate(ctx context.Context, candidateName, openingName string) (*CandidateLookup, error) {
	rows, err := c.AllRows(ctx)
	if err != nil {
		return nil, err
	}

	threshold := c.thresholds.Candidate
	lookup := &CandidateLookup{Threshold: threshold}

	type sheetCandidate struct {
		id       string
		combined string
	}

	seen := make(map[string]struct{})
	var pool []sheetCandidate
	for _, row := range rows {
		id := row.str(colCandidateID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pool = append(pool, sheetCandidate{
			id:       id,
			combined: row.str(colCandidateName) + " " + row.str(colOpeningName),
		})
	}

	if len(pool) == 0 {
		lookup.Reason = "sheet has no candidate rows to search"
		return lookup, nil
	}

	combined := make([]string, len(pool))
	for i, entry := range pool {
		combined[i] = entry.combined
	}

	result, ok := match.FindBestMatch(candidateName+" "+openingName, combined, threshold)
	lookup.Score = result.Score
	if !ok {
		lookup.Reason = fmt.Sprintf(
			"no sheet candidate matched %q: best score %.2f is below threshold %.2f",
			candidateName, result.Score, threshold)
		return lookup, nil
	}

	lookup.Found = true
	lookup.ID = pool[result.Index].id

	return lookup, nil
}

// TestLookup is the outcome of picking one test out of a candidate's
// submissions.
type TestLookup struct {
	Found     bool
	Result    TestResult
	Score     float64
	Threshold float64
	Reason    string
}

// FindTest fuzzy-picks a single test from the list by name.
func (c *Client) FindTest(results []TestResult, query string) *TestLookup {
	threshold := c.thresholds.Test
	lookup := &TestLookup{Threshold: threshold}

	names := make([]string, 0, len(results))
	indexes := make([]int, 0, len(results))
	for i, result := range results {
		if result.TestName == "" {
			continue
		}
		names = append(names, result.TestName)
		indexes = append(indexes, i)
	}

	if len(names) == 0 {
		lookup.Reason = "candidate has no named tests"
		return lookup
	}

	result, ok := match.FindBestMatch(query, names, threshold)
	lookup.Score = result.Score
	if !ok {
		lookup.Reason = fmt.Sprintf(
			"no test matched %q: best score %.2f is below threshold %.2f", query, result.Score, threshold)
		return lookup
	}

	lookup.Found = true
	lookup.Result = results[indexes[result.Index]]

	return lookup
}
