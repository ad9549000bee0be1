// Package telegram is the Bot API boundary: long-poll update fetches,
// message sends and poll creation over plain HTTP.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// httpDo is a package-level variable for testability.
var httpDo = func(client *http.Client, req *http.Request) (*http.Response, error) {
	return client.Do(req)
}

// Client calls the Telegram Bot API for one bot token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Bot API client. The HTTP timeout leaves room for
// long-poll requests; per-call contexts bound everything tighter.
func NewClient(token string) *Client {
	return &Client{
		baseURL: "https://api.telegram.org/bot" + token + "/",
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// invoke performs one Bot API call with form-encoded parameters and
// returns the raw response body. The API accepts every method as a
// POST with url-encoded params, which keeps one request path for all
// of getUpdates, sendMessage and sendPoll.
func (c *Client) invoke(ctx context.Context, method string, params url.Values) ([]byte, error) {
	slog.Debug("telegram API call", "component", "telegram", "operation", method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: new request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpDo(c.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d: %s", method, resp.StatusCode, string(body))
	}
	return body, nil
}
