// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package zenodo is a typed client for the Zenodo REST API: record
// search and retrieval, deposition creation, bucket uploads, and the
// publish and newversion actions.
package zenodo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/zenodo-cli/internal/httputil"
)

// DefaultBaseURL is the production Zenodo API root.
const DefaultBaseURL = "https://zenodo.org/api"

// SandboxBaseURL is the API root of the Zenodo sandbox instance.
const SandboxBaseURL = "https://sandbox.zenodo.org/api"

// Client calls the Zenodo REST API. A zero Token is valid for read-only
// operations; write operations require one.
type Client struct {
	BaseURL   string
	Token     string
	UserAgent string

	// HTTPClient is used for all requests. Nil falls back to
	// http.DefaultClient.
	HTTPClient *http.Client

	// MaxRetries bounds 429 retries on GET requests. Zero uses the
	// httputil default.
	MaxRetries int
}

// New returns a Client for the given API root. An empty baseURL selects
// the production instance.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		UserAgent:  "zenodo-cli/0.1",
		HTTPClient: httpClient,
	}
}

// HasToken reports whether the client carries an access token.
func (c *Client) HasToken() bool {
	return c.Token != ""
}

// SiteURL returns the web site root corresponding to the API root,
// used to build record and deposit page URLs.
func (c *Client) SiteURL() string {
	return strings.TrimSuffix(c.BaseURL, "/api")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// APIError is returned when a call completes with an unexpected HTTP
// status. It carries the status code and the response body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status code %d: %s", e.StatusCode, e.Body)
}

// apiErr reads the response body (bounded) into an APIError.
func apiErr(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// newRequest builds a request with the User-Agent and, when a token is
// configured, the bearer Authorization header.
func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// doJSON performs a JSON request/response round trip. GET requests go
// through the 429-retry helper; other methods use a single attempt
// because their bodies cannot be replayed. A status other than
// wantStatus produces an *APIError.
func (c *Client) doJSON(ctx context.Context, method, url string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var resp *http.Response
	if method == http.MethodGet {
		resp, err = httputil.DoWithRetry(ctx, c.httpClient(), req, c.MaxRetries)
	} else {
		resp, err = c.httpClient().Do(req)
	}
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return apiErr(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// decodeLenient decodes JSON from r into v, tolerating an empty body.
// Bucket uploads on some Invenio deployments answer 200 with no body.
func decodeLenient(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
