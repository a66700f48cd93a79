package basehiring

import (
	"fmt"

	"github.com/tdnguyen/hiring-mcp/internal/htmltext"
	"go.uber.org/zap"
)

// Only openings with this status are visible to the tools.
const openingStatusActive = "10"

// Minimum cleaned length for a job description to be considered real
// content rather than a placeholder.
const minJobDescriptionLen = 10

// Opening is an (id, display name) pair used to build matching pools.
type Opening struct {
	ID   string
	Name string
}

// JobDescription is an active opening together with its cleaned JD text.
type JobDescription struct {
	ID   string
	Name string
	Text string
	HTML string
}

// OpeningDetails is the full record returned by opening/get.
type OpeningDetails struct {
	ID          string
	Name        string
	Stages      []string
	Description string
}

type openingPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Content string `json:"content"`
}

type openingListResponse struct {
	Openings []map[string]any `json:"openings"`
}

// ListActiveOpenings returns (id, name) pairs for every active opening.
func (c *Client) ListActiveOpenings() ([]Opening, error) {
	payloads, err := c.listOpenings()
	if err != nil {
		return nil, err
	}

	openings := make([]Opening, 0, len(payloads))
	for _, op := range payloads {
		if op.Status != openingStatusActive {
			continue
		}
		openings = append(openings, Opening{ID: op.ID, Name: op.Name})
	}

	c.logger.Debug("got active openings", zap.Int("count", len(openings)))

	return openings, nil
}

// ListJobDescriptions returns active openings whose JD carries enough text
// to be useful.
func (c *Client) ListJobDescriptions() ([]JobDescription, error) {
	payloads, err := c.listOpenings()
	if err != nil {
		return nil, err
	}

	jds := make([]JobDescription, 0, len(payloads))
	for _, op := range payloads {
		if op.Status != openingStatusActive {
			continue
		}

		text := htmltext.Clean(op.Content)
		if len(text) < minJobDescriptionLen {
			continue
		}

		jds = append(jds, JobDescription{ID: op.ID, Name: op.Name, Text: text, HTML: op.Content})
	}

	return jds, nil
}

func (c *Client) listOpenings() ([]*openingPayload, error) {
	var response openingListResponse
	if err := c.postForm(c.APIURL+"/opening/list", c.authForm(), &response); err != nil {
		return nil, fmt.Errorf("listing openings: %w", err)
	}

	var payloads []*openingPayload
	if err := decodeItems(response.Openings, &payloads); err != nil {
		return nil, err
	}

	return payloads, nil
}

type openingGetResponse struct {
	Opening map[string]any `json:"opening"`
}

type openingDetailsPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Stats   struct {
		Stages []struct {
			Name string `json:"name"`
		} `json:"stages"`
	} `json:"stats"`
}

// GetOpening fetches a single opening with its recruitment stages and
// cleaned job description.
func (c *Client) GetOpening(id string) (*OpeningDetails, error) {
	form := c.authForm()
	form.Set("id", id)

	var response openingGetResponse
	if err := c.postForm(c.APIURL+"/opening/get", form, &response); err != nil {
		return nil, fmt.Errorf("getting opening %s: %w", id, err)
	}

	if response.Opening == nil {
		return nil, fmt.Errorf("opening %s not found", id)
	}

	var payload openingDetailsPayload
	if err := decodeItems(response.Opening, &payload); err != nil {
		return nil, err
	}

	stages := make([]string, 0, len(payload.Stats.Stages))
	for _, stage := range payload.Stats.Stages {
		if stage.Name != "" {
			stages = append(stages, stage.Name)
		}
	}

	return &OpeningDetails{
		ID:          payload.ID,
		Name:        payload.Name,
		Stages:      stages,
		Description: htmltext.Clean(payload.Content),
	}, nil
}

// StagesForOpening returns the names of the opening's recruitment stages.
func (c *Client) StagesForOpening(id string) ([]string, error) {
	details, err := c.GetOpening(id)
	if err != nil {
		return nil, err
	}

	return details.Stages, nil
}
