// Package sheets reads candidate test results and interview feedback from a
// Google-Apps-Script-backed spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tdnguyen/hiring-mcp/internal/match"
	"go.uber.org/zap"
	"resty.dev/v3"
)

// Column headers as they appear in the spreadsheet. The sheet is maintained
// in Vietnamese; these are wire constants, not display strings.
const (
	colCandidateID   = "candidate_id"
	colTestName      = "Tên bài test"
	colScore         = "Score"
	colTime          = "Time"
	colLink          = "Link"
	colContent       = "test content"
	colCandidateName = "Tên ứng viên"
	colOpeningName   = "Công việc ứng tuyển"
)

type Client struct {
	scriptURL  string
	http       *resty.Client
	logger     *zap.Logger
	thresholds match.Thresholds
}

func New(scriptURL string, logger *zap.Logger, thresholds match.Thresholds) *Client {
	return &Client{
		scriptURL:  scriptURL,
		http:       resty.New().SetTimeout(30 * time.Second),
		logger:     logger,
		thresholds: thresholds,
	}
}

// Enabled reports whether a script URL was configured. Tools depending on
// the sheet return a friendly message instead of failing when it is not.
func (c *Client) Enabled() bool {
	return c.scriptURL != ""
}

// Row is one raw spreadsheet row, keyed by column header.
type Row map[string]any

type readResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    []Row  `json:"data"`
}

func (c *Client) read(ctx context.Context, filters map[string]string) ([]Row, error) {
	body := map[string]any{"action": "read_data"}
	if filters != nil {
		body["filters"] = filters
	}

	var response readResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&response).
		Post(c.scriptURL)
	if err != nil {
		return nil, fmt.Errorf("calling sheet script: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sheet script returned %s", resp.Status())
	}
	if !response.Success {
		return nil, fmt.Errorf("sheet script reported failure: %s", response.Message)
	}

	c.logger.Debug("read sheet rows", zap.Int("count", len(response.Data)))

	return response.Data, nil
}

// AllRows returns every row of the results sheet.
func (c *Client) AllRows(ctx context.Context) ([]Row, error) {
	return c.read(ctx, map[string]string{})
}

func (r Row) str(col string) string {
	value, ok := r[col]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", value))
}
