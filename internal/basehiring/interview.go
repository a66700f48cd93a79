package basehiring

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Interview keeps only the schedule-relevant fields of interview/list rows.
type Interview struct {
	ID            string `json:"id"`
	CandidateID   string `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	OpeningID     string `json:"opening_id"`
	OpeningName   string `json:"opening_name"`
	Time          int64  `json:"time"`
}

// LocalTime renders the interview timestamp in the company timezone, empty
// when the API gave no time.
func (i *Interview) LocalTime() string {
	return FormatLocal(i.Time)
}

type Interviews struct {
	Items []*Interview
}

func (i *Interviews) Len() int {
	return len(i.Items)
}

// FilterByOpening keeps interviews belonging to the given opening.
func (i *Interviews) FilterByOpening(openingID string) *Interviews {
	filtered := &Interviews{}
	for _, interview := range i.Items {
		if interview.OpeningID == openingID {
			filtered.Items = append(filtered.Items, interview)
		}
	}
	return filtered
}

// FilterByDate keeps interviews happening on exactly the given local date.
// Interviews without a timestamp are dropped.
func (i *Interviews) FilterByDate(date time.Time) *Interviews {
	filtered := &Interviews{}
	want := date.Format("2006-01-02")
	for _, interview := range i.Items {
		if interview.Time == 0 {
			continue
		}
		if LocalDate(interview.Time).Format("2006-01-02") == want {
			filtered.Items = append(filtered.Items, interview)
		}
	}
	return filtered
}

// FilterByRange keeps interviews whose local date falls inside the
// inclusive [start, end] range. Nil bounds are open.
func (i *Interviews) FilterByRange(start, end *time.Time) *Interviews {
	if start == nil && end == nil {
		return i
	}

	filtered := &Interviews{}
	for _, interview := range i.Items {
		if interview.Time == 0 {
			continue
		}

		day := LocalDate(interview.Time)
		if start != nil && day.Before(*start) {
			continue
		}
		if end != nil && day.After(*end) {
			continue
		}
		filtered.Items = append(filtered.Items, interview)
	}
	return filtered
}

type interviewListResponse struct {
	Interviews []map[string]any `json:"interviews"`
}

// ListInterviews returns the full interview schedule. Date and opening
// filtering happens client-side on the rendered local time.
func (c *Client) ListInterviews() (*Interviews, error) {
	var response interviewListResponse
	if err := c.postForm(c.APIURL+"/interview/list", c.authForm(), &response); err != nil {
		return nil, fmt.Errorf("listing interviews: %w", err)
	}

	var items []*Interview
	if err := decodeItems(response.Interviews, &items); err != nil {
		return nil, err
	}

	c.logger.Debug("got interviews", zap.Int("count", len(items)))

	return &Interviews{Items: items}, nil
}
