package basehiring

import (
	"fmt"

	"go.uber.org/zap"
)

// Candidate is a row from candidate/list. Ids and timestamps arrive as
// strings or numbers depending on the endpoint, so decoding is weakly
// typed.
type Candidate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Gender      string       `json:"gender"`
	CVs         []string     `json:"cvs"`
	StageID     string       `json:"stage_id"`
	StageName   string       `json:"stage_name"`
	LastUpdate  int64        `json:"last_update"`
	Form        []FormField  `json:"form"`
	Evaluations []Evaluation `json:"evaluations"`
}

// FormField is one entry of the API's fields/form arrays.
type FormField struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// Evaluation is a reviewer note attached to a candidate, HTML body included.
type Evaluation struct {
	ID            string      `json:"id"`
	Username      string      `json:"username"`
	Content       string      `json:"content"`
	OpeningExport *OpeningRef `json:"opening_export"`
}

// OpeningRef is the opening summary embedded in candidate payloads.
type OpeningRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CVURL returns the first CV link, if any.
func (c *Candidate) CVURL() string {
	if len(c.CVs) == 0 {
		return ""
	}
	return c.CVs[0]
}

// FormData flattens the form array into an id->value map.
func (c *Candidate) FormData() map[string]any {
	return flattenFields(c.Form)
}

func flattenFields(fields []FormField) map[string]any {
	flat := make(map[string]any, len(fields))
	for _, field := range fields {
		if field.ID != "" {
			flat[field.ID] = field.Value
		}
	}
	return flat
}

// CandidateListParams narrows candidate/list results. Dates use YYYY-MM-DD.
type CandidateListParams struct {
	OpeningID string
	StartDate string
	EndDate   string
}

type candidateListResponse struct {
	Candidates []map[string]any `json:"candidates"`
}

// ListCandidates returns all candidates of an opening, optionally limited
// to a date range.
func (c *Client) ListCandidates(params *CandidateListParams) ([]*Candidate, error) {
	form := c.authForm()
	form.Set("opening_id", params.OpeningID)
	if params.StartDate != "" {
		form.Set("start_date", params.StartDate)
	}
	if params.EndDate != "" {
		form.Set("end_date", params.EndDate)
	}

	var response candidateListResponse
	if err := c.postForm(c.APIURL+"/candidate/list", form, &response); err != nil {
		return nil, fmt.Errorf("listing candidates for opening %s: %w", params.OpeningID, err)
	}

	var candidates []*Candidate
	if err := decodeItems(response.Candidates, &candidates); err != nil {
		return nil, err
	}

	c.logger.Debug("got candidates",
		zap.String("opening_id", params.OpeningID),
		zap.Int("count", len(candidates)),
	)

	return candidates, nil
}

// CandidatesForOpening is the pool-building shorthand used by the resolver.
func (c *Client) CandidatesForOpening(openingID string) ([]*Candidate, error) {
	return c.ListCandidates(&CandidateListParams{OpeningID: openingID})
}

// CandidateDetails is the flattened record assembled from candidate/get.
type CandidateDetails struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	OpeningID   string
	OpeningName string
	StageID     string
	StageName   string
	Source      string
	BirthDate   string
	Gender      string
	Address     string
	NationalID  string
	CVURL       string
	// Fields merges the API's fields and form arrays, keyed by field id.
	Fields      map[string]any
	Evaluations []Evaluation
}

type candidateGetResponse struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Candidate map[string]any `json:"candidate"`
}

type candidateDetailsPayload struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	Title         string       `json:"title"`
	StageID       string       `json:"stage_id"`
	StageName     string       `json:"stage_name"`
	Status        string       `json:"status"`
	Source        string       `json:"source"`
	DOB           string       `json:"dob"`
	GenderText    string       `json:"gender_text"`
	Address       string       `json:"address"`
	SSN           string       `json:"ssn"`
	CVs           []string     `json:"cvs"`
	Fields        []FormField  `json:"fields"`
	Form          []FormField  `json:"form"`
	Evaluations   []Evaluation `json:"evaluations"`
	OpeningExport *OpeningRef  `json:"opening_export"`
}

// GetCandidate fetches one candidate by exact id. The opening reference is
// taken from the root-level export when present, falling back to the first
// evaluation's export and then the title field.
func (c *Client) GetCandidate(id string) (*CandidateDetails, error) {
	form := c.authForm()
	form.Set("id", id)

	var response candidateGetResponse
	if err := c.postForm(c.APIURL+"/candidate/get", form, &response); err != nil {
		return nil, fmt.Errorf("getting candidate %s: %w", id, err)
	}

	if response.Code != 1 || response.Candidate == nil {
		return nil, fmt.Errorf("candidate %s not found: %s", id, response.Message)
	}

	var payload candidateDetailsPayload
	if err := decodeItems(response.Candidate, &payload); err != nil {
		return nil, err
	}

	export := payload.OpeningExport
	if export == nil {
		for _, eval := range payload.Evaluations {
			if eval.OpeningExport != nil {
				export = eval.OpeningExport
				break
			}
		}
	}

	details := &CandidateDetails{
		ID:          payload.ID,
		Name:        payload.Name,
		Email:       payload.Email,
		Phone:       payload.Phone,
		StageID:     payload.StageID,
		StageName:   payload.StageName,
		Source:      payload.Source,
		BirthDate:   payload.DOB,
		Gender:      payload.GenderText,
		Address:     payload.Address,
		NationalID:  payload.SSN,
		Fields:      flattenFields(payload.Fields),
		Evaluations: payload.Evaluations,
	}

	if details.StageName == "" {
		details.StageName = payload.Status
	}

	if export != nil {
		details.OpeningID = export.ID
		details.OpeningName = export.Name
	}
	if details.OpeningName == "" {
		details.OpeningName = payload.Title
	}

	if len(payload.CVs) > 0 {
		details.CVURL = payload.CVs[0]
	}

	for id, value := range flattenFields(payload.Form) {
		details.Fields[id] = value
	}

	return details, nil
}

// Message is a candidate conversation entry; offer letters are found in its
// attachments or in links inside the HTML body.
type Message struct {
	ID            string       `json:"id"`
	Content       string       `json:"content"`
	HasAttachment int          `json:"has_attachment"`
	Attachments   []Attachment `json:"attachments"`
}

type Attachment struct {
	Src  string `json:"src"`
	URL  string `json:"url"`
	Org  string `json:"org"`
	Name string `json:"name"`
}

// FileURL returns the first populated link field.
func (a Attachment) FileURL() string {
	for _, candidate := range []string{a.Src, a.URL, a.Org} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

type messageListResponse struct {
	Messages []map[string]any `json:"messages"`
}

// ListCandidateMessages returns the candidate's messages, newest first as
// delivered by the API.
func (c *Client) ListCandidateMessages(id string) ([]*Message, error) {
	form := c.authForm()
	form.Set("id", id)

	var response messageListResponse
	if err := c.postForm(c.APIURL+"/candidate/messages", form, &response); err != nil {
		return nil, fmt.Errorf("listing messages for candidate %s: %w", id, err)
	}

	var messages []*Message
	if err := decodeItems(response.Messages, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}
