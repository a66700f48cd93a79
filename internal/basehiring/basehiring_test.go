package basehiring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(context.Background(), zap.NewNop(), "test-token")
	client.APIURL = srv.URL
	client.AccountURL = srv.URL

	return client, srv
}

func TestListActiveOpeningsFiltersByStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostFormValue("access_token_v2"); got != "test-token" {
			t.Errorf("token = %q", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"openings": []map[string]any{
				{"id": 101, "name": "Backend Developer", "status": "10"},
				{"id": "202", "name": "Closed Role", "status": "20"},
				{"id": "303", "name": "Sales Intern", "status": "10"},
			},
		})
	})

	openings, err := client.ListActiveOpenings()
	if err != nil {
		t.Fatal(err)
	}

	if len(openings) != 2 {
		t.Fatalf("got %d openings, want 2: %+v", len(openings), openings)
	}
	// Numeric ids decode weakly into strings.
	if openings[0].ID != "101" || openings[0].Name != "Backend Developer" {
		t.Errorf("got %+v", openings[0])
	}
}

func TestListJobDescriptionsSkipsShortContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"openings": []map[string]any{
				{"id": "1", "name": "Full JD", "status": "10", "content": "<p>We are hiring a backend developer to build services.</p>"},
				{"id": "2", "name": "Placeholder", "status": "10", "content": "<p>tbd</p>"},
				{"id": "3", "name": "Inactive", "status": "20", "content": "<p>Long enough but not active anymore.</p>"},
			},
		})
	})

	jds, err := client.ListJobDescriptions()
	if err != nil {
		t.Fatal(err)
	}

	if len(jds) != 1 {
		t.Fatalf("got %d JDs, want 1: %+v", len(jds), jds)
	}
	if jds[0].ID != "1" {
		t.Errorf("got %+v", jds[0])
	}
	if jds[0].Text != "We are hiring a backend developer to build services." {
		t.Errorf("text = %q", jds[0].Text)
	}
}

func TestGetOpeningStagesAndDescription(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostFormValue("id"); got != "101" {
			t.Errorf("id = %q", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"opening": map[string]any{
				"id":      "101",
				"name":    "Backend Developer",
				"content": "<p>Build and run services.</p>",
				"stats": map[string]any{
					"stages": []map[string]any{
						{"name": "Screening"},
						{"name": "Interview"},
						{"name": ""},
					},
				},
			},
		})
	})

	details, err := client.GetOpening("101")
	if err != nil {
		t.Fatal(err)
	}

	if len(details.Stages) != 2 {
		t.Fatalf("got stages %v, want 2 non-empty", details.Stages)
	}
	if details.Description != "Build and run services." {
		t.Errorf("description = %q", details.Description)
	}
}

func TestGetCandidateOpeningExportFallback(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code": 1,
			"candidate": map[string]any{
				"id":    "555",
				"name":  "Nguyen Van A",
				"email": "a@example.com",
				"cvs":   []string{"https://cdn/cv.pdf"},
				"form": []map[string]any{
					{"id": "expected_salary", "value": "1000"},
				},
				"fields": []map[string]any{
					{"id": "source_detail", "value": "referral"},
				},
				"evaluations": []map[string]any{
					{
						"id":             "e1",
						"username":       "reviewer1",
						"content":        "<p>Strong candidate</p>",
						"opening_export": map[string]any{"id": "101", "name": "Backend Developer"},
					},
				},
			},
		})
	})

	details, err := client.GetCandidate("555")
	if err != nil {
		t.Fatal(err)
	}

	// No root-level export, so the evaluation's export wins.
	if details.OpeningID != "101" || details.OpeningName != "Backend Developer" {
		t.Errorf("opening = %q %q", details.OpeningID, details.OpeningName)
	}
	if details.CVURL != "https://cdn/cv.pdf" {
		t.Errorf("cv url = %q", details.CVURL)
	}
	// Form and fields merge into one map.
	if details.Fields["expected_salary"] != "1000" || details.Fields["source_detail"] != "referral" {
		t.Errorf("fields = %v", details.Fields)
	}
}

func TestGetCandidateNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": 0, "message": "not found"})
	})

	if _, err := client.GetCandidate("999"); err == nil {
		t.Fatal("expected an error for a missing candidate")
	}
}

func TestListUsersWithoutAccountToken(t *testing.T) {
	client := New(context.Background(), zap.NewNop(), "test-token")

	users, err := client.ListUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 0 {
		t.Errorf("got %v, want empty map", users)
	}
}

func TestDecodeItemsWeakTyping(t *testing.T) {
	input := []map[string]any{
		{"id": 123, "name": "numeric id", "last_update": "1700000000"},
	}

	var candidates []*Candidate
	if err := decodeItems(input, &candidates); err != nil {
		t.Fatal(err)
	}

	if candidates[0].ID != "123" {
		t.Errorf("id = %q, want 123", candidates[0].ID)
	}
	if candidates[0].LastUpdate != 1700000000 {
		t.Errorf("last_update = %d", candidates[0].LastUpdate)
	}
}

func TestAttachmentFileURL(t *testing.T) {
	cases := []struct {
		att  Attachment
		want string
	}{
		{Attachment{Src: "s", URL: "u", Org: "o"}, "s"},
		{Attachment{URL: "u", Org: "o"}, "u"},
		{Attachment{Org: "o"}, "o"},
		{Attachment{}, ""},
	}

	for _, tc := range cases {
		if got := tc.att.FileURL(); got != tc.want {
			t.Errorf("FileURL(%+v) = %q, want %q", tc.att, got, tc.want)
		}
	}
}

func TestBuildReviews(t *testing.T) {
	users := map[string]UserInfo{
		"reviewer1": {Name: "Le Thi C", Title: "Engineering Manager"},
	}
	evaluations := []Evaluation{
		{ID: "e1", Username: "reviewer1", Content: "<p>Strong <b>candidate</b></p>"},
		{ID: "e2", Username: "unknown_user", Content: "ok"},
		{ID: "e3", Username: "reviewer1", Content: ""},
		{ID: "e4", Username: "", Content: "anonymous note"},
	}

	reviews := BuildReviews(evaluations, users)
	if len(reviews) != 3 {
		t.Fatalf("got %d reviews, want 3 (empty content skipped)", len(reviews))
	}

	if reviews[0].Name != "Le Thi C" || reviews[0].Title != "Engineering Manager" {
		t.Errorf("got %+v", reviews[0])
	}
	if reviews[0].Content != "Strong candidate" {
		t.Errorf("content = %q", reviews[0].Content)
	}
	if reviews[1].Name != "unknown_user" {
		t.Errorf("unknown reviewer should keep username, got %q", reviews[1].Name)
	}
	if reviews[2].Name != "N/A" {
		t.Errorf("missing username should become N/A, got %q", reviews[2].Name)
	}
}

func TestFormatLocal(t *testing.T) {
	if got := FormatLocal(0); got != "" {
		t.Errorf("FormatLocal(0) = %q, want empty", got)
	}

	// 2025-03-15 03:00:00 UTC is 10:00 in Ho Chi Minh City (UTC+7).
	got := FormatLocal(1742007600)
	want := "2025-03-15T10:00:00+07:00"
	if got != want {
		t.Errorf("FormatLocal = %q, want %q", got, want)
	}
}

func TestInterviewFilters(t *testing.T) {
	// 2025-03-15 10:00 and 2025-03-16 10:00 local time.
	interviews := &Interviews{Items: []*Interview{
		{ID: "1", OpeningID: "101", Time: 1742007600},
		{ID: "2", OpeningID: "202", Time: 1742094000},
		{ID: "3", OpeningID: "101", Time: 0},
	}}

	byOpening := interviews.FilterByOpening("101")
	if byOpening.Len() != 2 {
		t.Errorf("by opening: got %d, want 2", byOpening.Len())
	}

	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	byDate := interviews.FilterByDate(day)
	if byDate.Len() != 1 || byDate.Items[0].ID != "1" {
		t.Errorf("by date: got %+v", byDate.Items)
	}

	start := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	byRange := interviews.FilterByRange(&start, nil)
	if byRange.Len() != 1 || byRange.Items[0].ID != "2" {
		t.Errorf("by range: got %+v", byRange.Items)
	}

	if interviews.FilterByRange(nil, nil).Len() != 3 {
		t.Error("open range should keep everything")
	}
}
