// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zenodo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pdiddy/zenodo-cli/internal/httputil"
)

// SearchOptions are the query parameters of the records search endpoint.
type SearchOptions struct {
	// Query is the final q parameter. Multiple keywords are expected to
	// be joined with " AND " before the call.
	Query string

	// Size is the page size (default 20).
	Size int

	// Page is the 1-based page number (default 1).
	Page int

	// Sort is "bestmatch" or "mostrecent" (default bestmatch).
	Sort string

	// Community restricts results to a Zenodo community.
	Community string
}

// SearchRecords queries /records and returns the decoded response.
func (c *Client) SearchRecords(ctx context.Context, opts SearchOptions) (*SearchResponse, error) {
	size := opts.Size
	if size <= 0 {
		size = 20
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	sortOrder := opts.Sort
	if sortOrder == "" {
		sortOrder = "bestmatch"
	}

	params := url.Values{
		"q":    {opts.Query},
		"size": {fmt.Sprintf("%d", size)},
		"page": {fmt.Sprintf("%d", page)},
		"sort": {sortOrder},
	}
	if opts.Community != "" {
		params.Set("communities", opts.Community)
	}

	var resp SearchResponse
	reqURL := c.BaseURL + "/records?" + params.Encode()
	if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRecord fetches a single record by ID.
func (c *Client) GetRecord(ctx context.Context, recordID string) (*Record, error) {
	var rec Record
	reqURL := c.BaseURL + "/records/" + url.PathEscape(recordID)
	if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, http.StatusOK, &rec); err != nil {
		return nil, fmt.Errorf("getting record %s: %w", recordID, err)
	}
	return &rec, nil
}

// DownloadFile opens a file's content stream from its links.self URL.
// The caller must close the returned body.
func (c *Client) DownloadFile(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient(), req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, apiErr(resp)
	}
	return resp.Body, nil
}
