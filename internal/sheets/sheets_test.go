package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tdnguyen/hiring-mcp/internal/match"
)

func newSheetServer(t *testing.T, rows []Row) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Action  string            `json:"action"`
			Filters map[string]string `json:"filters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if body.Action != "read_data" {
			t.Errorf("got action %q, want read_data", body.Action)
		}

		filtered := rows
		if id, ok := body.Filters["candidate_id"]; ok && id != "" {
			filtered = nil
			for _, row := range rows {
				if row["candidate_id"] == id {
					filtered = append(filtered, row)
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    filtered,
		})
	}))
}

func newSheetClient(url string) *Client {
	return New(url, zap.NewNop(), match.DefaultThresholds())
}

func TestEnabled(t *testing.T) {
	if newSheetClient("").Enabled() {
		t.Error("client without a script url must be disabled")
	}
	if !newSheetClient("http://example.com").Enabled() {
		t.Error("client with a script url must be enabled")
	}
}

func TestResultsForCandidate(t *testing.T) {
	srv := newSheetServer(t, []Row{
		{
			"candidate_id":       "111",
			"Tên bài test":       "Logic Test",
			"Score":              "8/10",
			"Time":               "15/03/2025 10:00:00",
			"Link":               "https://sheet/link1",
			"test content":       "some content",
			"Tên ứng viên":       "Nguyen Van A",
			"Công việc ứng tuyển": "Backend Developer",
		},
		{"candidate_id": "222", "Tên bài test": "Other Test"},
	})
	defer srv.Close()

	results, err := newSheetClient(srv.URL).ResultsForCandidate(context.Background(), "111")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	got := results[0]
	if got.TestName != "Logic Test" || got.Score != "8/10" || got.Link != "https://sheet/link1" {
		t.Errorf("got %+v", got)
	}
}

func TestFindCandidate(t *testing.T) {
	srv := newSheetServer(t, []Row{
		{"candidate_id": "111", "Tên ứng viên": "Nguyen Van A", "Công việc ứng tuyển": "Backend Developer"},
		{"candidate_id": "111", "Tên ứng viên": "Nguyen Van A", "Công việc ứng tuyển": "Backend Developer"},
		{"candidate_id": "222", "Tên ứng viên": "Tran Thi B", "Công việc ứng tuyển": "Sales Intern"},
	})
	defer srv.Close()

	client := newSheetClient(srv.URL)

	lookup, err := client.FindCandidate(context.Background(), "Nguyen Van A", "Backend Developer")
	if err != nil {
		t.Fatal(err)
	}
	if !lookup.Found || lookup.ID != "111" {
		t.Fatalf("got %+v", lookup)
	}
	if lookup.Score != 1.0 {
		t.Errorf("exact name+opening should score 1.0, got %v", lookup.Score)
	}
}

func TestFindCandidateMiss(t *testing.T) {
	srv := newSheetServer(t, []Row{
		{"candidate_id": "111", "Tên ứng viên": "Nguyen Van A", "Công việc ứng tuyển": "Backend Developer"},
	})
	defer srv.Close()

	lookup, err := newSheetClient(srv.URL).FindCandidate(context.Background(), "Totally Unknown", "Unrelated Role")
	if err != nil {
		t.Fatal(err)
	}
	if lookup.Found {
		t.Fatalf("got %+v, want a miss", lookup)
	}
	if lookup.Reason == "" {
		t.Error("miss should carry a reason")
	}
}

func TestFindTest(t *testing.T) {
	client := newSheetClient("http://unused")
	results := []TestResult{
		{TestName: "Logic Test", Score: "8/10"},
		{TestName: "English Test", Score: "7/10"},
		{TestName: ""},
	}

	lookup := client.FindTest(results, "logic test")
	if !lookup.Found || lookup.Result.Score != "8/10" {
		t.Fatalf("got %+v", lookup)
	}

	miss := client.FindTest(results, "chemistry exam")
	if miss.Found {
		t.Fatalf("got %+v, want a miss", miss)
	}
}

func TestFindTestEmptyNames(t *testing.T) {
	client := newSheetClient("http://unused")

	lookup := client.FindTest([]TestResult{{TestName: ""}}, "anything")
	if lookup.Found {
		t.Fatal("unnamed tests must not match")
	}
	if lookup.Reason == "" {
		t.Error("miss should carry a reason")
	}
}

const feedbackContent = "Câu hỏi 1. Bạn đánh giá quy trình phỏng vấn thế nào?\n" +
	"Câu trả lời của thí sinh\nRất chuyên nghiệp\nĐây là câu hỏi mở\n" +
	"Câu hỏi 2. Bạn biết đến công ty qua đâu?\n" +
	"Câu trả lời của thí sinh\nQua LinkedIn\nĐây là câu hỏi mở"

func TestFeedbackParsesQuestions(t *testing.T) {
	srv := newSheetServer(t, []Row{
		{
			"Tên bài test":       "Feedback phỏng vấn",
			"Tên ứng viên":       "Nguyen Van A",
			"Công việc ứng tuyển": "Backend Developer",
			"Time":               "15/03/2025 10:00:00",
			"test content":       feedbackContent,
		},
		{
			"Tên bài test": "Logic Test",
			"Tên ứng viên": "Tran Thi B",
			"test content": "not feedback",
		},
	})
	defer srv.Close()

	feedback, err := newSheetClient(srv.URL).Feedback(context.Background(), nil, "")
	if err != nil {
		t.Fatal(err)
	}

	if len(feedback) != 2 {
		t.Fatalf("got %d questions, want 2: %v", len(feedback), feedback)
	}

	answers, ok := feedback["Bạn đánh giá quy trình phỏng vấn thế nào?"]
	if !ok {
		t.Fatalf("question missing, got %v", feedback)
	}
	if answers["Nguyen Van A"] != "Rất chuyên nghiệp" {
		t.Errorf("got answer %q", answers["Nguyen Van A"])
	}
}

func TestFeedbackStartDateFilter(t *testing.T) {
	srv := newSheetServer(t, []Row{
		{
			"Tên bài test": "Feedback round 1",
			"Tên ứng viên": "Old Candidate",
			"Time":         "01/03/2025",
			"test content": feedbackContent,
		},
		{
			"Tên bài test": "Feedback round 1",
			"Tên ứng viên": "New Candidate",
			"Time":         "2025-03-20 10:00:00",
			"test content": feedbackContent,
		},
	})
	defer srv.Close()

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	feedback, err := newSheetClient(srv.URL).Feedback(context.Background(), &start, "")
	if err != nil {
		t.Fatal(err)
	}

	for question, answers := range feedback {
		if _, ok := answers["Old Candidate"]; ok {
			t.Errorf("question %q still has the filtered-out candidate", question)
		}
		if _, ok := answers["New Candidate"]; !ok {
			t.Errorf("question %q lost the kept candidate", question)
		}
	}
}

func TestFeedbackJobFilter(t *testing.T) {
	srv := newSheetServer(t, []Row{
		{
			"Tên bài test":       "Feedback round 1",
			"Tên ứng viên":       "Backend Person",
			"Công việc ứng tuyển": "Backend Developer",
			"test content":       feedbackContent,
		},
		{
			"Tên bài test":       "Feedback round 1",
			"Tên ứng viên":       "Sales Person",
			"Công việc ứng tuyển": "Sales Intern",
			"test content":       feedbackContent,
		},
	})
	defer srv.Close()

	feedback, err := newSheetClient(srv.URL).Feedback(context.Background(), nil, "Backend")
	if err != nil {
		t.Fatal(err)
	}

	for question, answers := range feedback {
		if _, ok := answers["Sales Person"]; ok {
			t.Errorf("question %q kept a row from another job", question)
		}
		if _, ok := answers["Backend Person"]; !ok {
			t.Errorf("question %q lost the matching row", question)
		}
	}
}

func TestParseSheetDate(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"15/03/2025 10:00:00", true},
		{"15/03/2025", true},
		{"2025-03-15 10:00:00", true},
		{"2025-03-15", true},
		{"not a date", false},
		{"", false},
	}

	for _, tc := range cases {
		if _, ok := parseSheetDate(tc.value); ok != tc.ok {
			t.Errorf("parseSheetDate(%q) ok = %v, want %v", tc.value, ok, tc.ok)
		}
	}
}

func TestRowStr(t *testing.T) {
	row := Row{"a": " text ", "b": 42, "c": nil}

	if got := row.str("a"); got != "text" {
		t.Errorf("str(a) = %q", got)
	}
	if got := row.str("b"); got != "42" {
		t.Errorf("str(b) = %q", got)
	}
	if got := row.str("c"); got != "" {
		t.Errorf("str(c) = %q", got)
	}
	if got := row.str("missing"); got != "" {
		t.Errorf("str(missing) = %q", got)
	}
}
