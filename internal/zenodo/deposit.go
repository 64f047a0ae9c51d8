// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zenodo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// metadataEnvelope wraps deposition metadata for the wire format
// {"metadata": {...}}.
type metadataEnvelope struct {
	Metadata DepositionMetadata `json:"metadata"`
}

// CreateDeposition creates an empty deposition (POST {}, expects 201).
func (c *Client) CreateDeposition(ctx context.Context) (*Deposition, error) {
	var dep Deposition
	reqURL := c.BaseURL + "/deposit/depositions"
	if err := c.doJSON(ctx, http.MethodPost, reqURL, struct{}{}, http.StatusCreated, &dep); err != nil {
		return nil, fmt.Errorf("creating deposition: %w", err)
	}
	return &dep, nil
}

// GetDeposition fetches a deposition by ID.
func (c *Client) GetDeposition(ctx context.Context, depositionID int) (*Deposition, error) {
	var dep Deposition
	reqURL := fmt.Sprintf("%s/deposit/depositions/%d", c.BaseURL, depositionID)
	if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, http.StatusOK, &dep); err != nil {
		return nil, fmt.Errorf("getting deposition %d: %w", depositionID, err)
	}
	return &dep, nil
}

// UpdateDepositionMetadata replaces a deposition's metadata (PUT,
// expects 200).
func (c *Client) UpdateDepositionMetadata(ctx context.Context, depositionID int, meta DepositionMetadata) (*Deposition, error) {
	var dep Deposition
	reqURL := fmt.Sprintf("%s/deposit/depositions/%d", c.BaseURL, depositionID)
	if err := c.doJSON(ctx, http.MethodPut, reqURL, metadataEnvelope{Metadata: meta}, http.StatusOK, &dep); err != nil {
		return nil, fmt.Errorf("updating metadata: %w", err)
	}
	return &dep, nil
}

// UploadFileToBucket streams a file into a deposition's bucket
// (PUT {bucket}/{filename}, expects 200). The body is not replayable,
// so no retry is attempted.
func (c *Client) UploadFileToBucket(ctx context.Context, bucketURL, filename string, r io.Reader, size int64) (*FileEntry, error) {
	reqURL := bucketURL + "/" + url.PathEscape(filename)
	req, err := c.newRequest(ctx, http.MethodPut, reqURL, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if size > 0 {
		req.ContentLength = size
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiErr(resp)
	}

	var entry FileEntry
	if err := decodeLenient(resp.Body, &entry); err != nil {
		return nil, fmt.Errorf("parsing upload response: %w", err)
	}
	return &entry, nil
}

// PublishDeposition publishes a draft (POST actions/publish, expects
// 202).
func (c *Client) PublishDeposition(ctx context.Context, depositionID int) (*Deposition, error) {
	var dep Deposition
	reqURL := fmt.Sprintf("%s/deposit/depositions/%d/actions/publish", c.BaseURL, depositionID)
	if err := c.doJSON(ctx, http.MethodPost, reqURL, nil, http.StatusAccepted, &dep); err != nil {
		return nil, err
	}
	return &dep, nil
}

// NewDepositionVersion creates a new version draft of a published
// deposition (POST actions/newversion, expects 201). The new draft's ID
// is in the returned deposition's links.latest_draft.
func (c *Client) NewDepositionVersion(ctx context.Context, depositionID int) (*Deposition, error) {
	var dep Deposition
	reqURL := fmt.Sprintf("%s/deposit/depositions/%d/actions/newversion", c.BaseURL, depositionID)
	if err := c.doJSON(ctx, http.MethodPost, reqURL, nil, http.StatusCreated, &dep); err != nil {
		return nil, fmt.Errorf("creating new version of deposition %d: %w", depositionID, err)
	}
	return &dep, nil
}
