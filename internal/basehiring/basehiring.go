// Package basehiring is a client for the Base hiring public API and the
// Base account API. All endpoints are form-encoded POSTs authenticated with
// an access token.
package basehiring

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL        = "https://hiring.base.vn/publicapi/v2"
	accountAPIURL = "https://account.base.vn/extapi/v1"
	userAgent     = "hiring-mcp (github.com/tdnguyen/hiring-mcp)"

	tokenField = "access_token_v2"
)

type Client struct {
	// ctx used only for http requests right now
	ctx          context.Context
	token        string
	accountToken string
	logger       *zap.Logger
	HTTPClient   *http.Client
	UserAgent    string
	APIURL       string
	AccountURL   string
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	return &Client{
		ctx:        ctx,
		token:      token,
		APIURL:     apiURL,
		AccountURL: accountAPIURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// SetAccountToken enables the account users endpoint. Without it user
// lookups return an empty map instead of failing.
func (c *Client) SetAccountToken(token string) {
	c.accountToken = token
}
