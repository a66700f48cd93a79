package basehiring

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const contentTypeForm = "application/x-www-form-urlencoded"

// postForm makes an authenticated POST request and decodes the JSON
// response into target. The access token is added by the caller since the
// hiring and account APIs use different tokens.
func (c *Client) postForm(endpoint string, form url.Values, target any) error {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", contentTypeForm)
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip")

	c.logger.Debug("make request", zap.String("url", endpoint))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}

	return nil
}

func (c *Client) authForm() url.Values {
	form := url.Values{}
	form.Set(tokenField, c.token)
	return form
}

// decodeItems converts generic JSON maps into typed structs. Weak typing
// tolerates the API switching between string and numeric ids.
func decodeItems(input, output any) error {
	cfg := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           output,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
