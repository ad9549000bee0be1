// Package dokuwiki answers search queries against a DokuWiki instance
// over its XML-RPC interface.
package dokuwiki

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/daisukixci/telegram-bot/internal/platform"
)

const rpcPath = "lib/exe/xmlrpc.php"

// One retry smooths over transient wiki hiccups before Search reports
// a failure. Package vars so tests can shrink the delay.
var (
	searchAttempts   = 2
	searchRetryDelay = 500 * time.Millisecond
)

// httpDo is a package-level variable for testability.
var httpDo = func(client *http.Client, req *http.Request) (*http.Response, error) {
	return client.Do(req)
}

// Client searches a DokuWiki instance. With credentials it logs in
// once (cookie auth) before the first search; without them it queries
// anonymously.
type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
	loggedIn   bool
}

// NewClient creates a client for the wiki at baseURL, which must end
// in "/". user and password may be empty for public wikis.
func NewClient(baseURL, user, password string) *Client {
	// The jar carries the DokuWiki auth cookie between login and search.
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:  baseURL,
		user:     user,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

// Search runs a fulltext search and returns one page link per hit, in
// the wiki's ranking order.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	if c.user != "" && !c.loggedIn {
		if err := c.login(ctx); err != nil {
			// Public pages may still be searchable without a session.
			slog.Warn("wiki login failed, searching anonymously",
				"component", "dokuwiki",
				"operation", "login",
				"error", err,
			)
		}
	}

	var result *value
	err := platform.Retry(ctx, searchAttempts, searchRetryDelay, func() error {
		var callErr error
		result, callErr = c.call(ctx, "dokuwiki.search", query)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("dokuwiki: search: %w", err)
	}
	if result.Array == nil {
		return nil, fmt.Errorf("dokuwiki: search: unexpected response shape")
	}

	var links []string
	for _, hit := range result.Array.Values {
		if hit.Struct == nil {
			continue
		}
		for _, m := range hit.Struct.Members {
			if m.Name == "id" && m.Value.String != nil {
				links = append(links, c.baseURL+"?id="+*m.Value.String)
				break
			}
		}
	}

	slog.Info("wiki search completed",
		"component", "dokuwiki",
		"operation", "search",
		"query", query,
		"results", len(links),
	)
	return links, nil
}

// login establishes the wiki session cookie.
func (c *Client) login(ctx context.Context) error {
	result, err := c.call(ctx, "dokuwiki.login", c.user, c.password)
	if err != nil {
		return err
	}
	if result.Boolean == nil || *result.Boolean != "1" {
		return fmt.Errorf("dokuwiki: login rejected for user %q", c.user)
	}
	c.loggedIn = true
	slog.Info("wiki login succeeded", "component", "dokuwiki", "operation", "login", "user", c.user)
	return nil
}

// call performs one XML-RPC method call and returns the first result
// value. Faults are surfaced as errors.
func (c *Client) call(ctx context.Context, method string, args ...string) (*value, error) {
	body, err := marshalCall(method, args)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+rpcPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: new request: %w", method, err)
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := httpDo(c.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d: %s", method, resp.StatusCode, string(respBody))
	}

	var parsed methodResponse
	if err := xml.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%s: unmarshal: %w", method, err)
	}
	if parsed.Fault != nil {
		return nil, fmt.Errorf("%s: fault: %s", method, parsed.Fault.message())
	}
	if len(parsed.Params) == 0 {
		return nil, fmt.Errorf("%s: empty response", method)
	}
	return &parsed.Params[0], nil
}
