// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deposit drives the write side of the API: creating
// depositions, streaming files into buckets, publishing, and creating
// new versions.
package deposit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/zenodo-cli/internal/zenodo"
	"github.com/pdiddy/zenodo-cli/pkg/types"
)

// ErrNoToken is returned before any network call when a write operation
// has no access token to work with.
var ErrNoToken = errors.New("no API token provided: set ZENODO_ACCESS_TOKEN in your .env file or pass --token")

// UploadResult reports the outcome of an upload.
type UploadResult struct {
	DepositionID int
	URL          string
	Published    bool
	Uploaded     int
	Failed       int
}

// Upload creates a deposition, sets its metadata, and streams the given
// files into its bucket. A failed file logs a warning and the rest
// continue; when every file fails the upload errors and is never
// published. Unless cfg.Draft is set, the publish action is attempted
// afterwards; a publish rejection downgrades to a warning and the draft
// URL is returned.
func Upload(ctx context.Context, c *zenodo.Client, files []string, meta types.DepositMeta, cfg types.UploadConfig, w io.Writer) (*UploadResult, error) {
	if !c.HasToken() {
		return nil, ErrNoToken
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("provide one or more files to upload")
	}
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
	}

	fmt.Fprintln(w, "Creating new deposition...")
	dep, err := c.CreateDeposition(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create deposition: %w", err)
	}
	if dep.Links.Bucket == "" {
		return nil, fmt.Errorf("deposition %d has no bucket link", dep.ID)
	}

	fmt.Fprintln(w, "Updating metadata...")
	if _, err := c.UpdateDepositionMetadata(ctx, dep.ID, buildMetadata(meta, files[0], cfg)); err != nil {
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	result := &UploadResult{DepositionID: dep.ID}
	for _, path := range files {
		name := filepath.Base(path)
		fmt.Fprintf(w, "Uploading file: %s...\n", name)
		if err := uploadOne(ctx, c, dep.Links.Bucket, path); err != nil {
			fmt.Fprintf(w, "warning: failed to upload %s: %v\n", name, err)
			result.Failed++
			continue
		}
		result.Uploaded++
	}
	if result.Uploaded == 0 {
		return nil, fmt.Errorf("all %d file upload(s) failed", result.Failed)
	}
	fmt.Fprintf(w, "%d file(s) uploaded successfully.\n", result.Uploaded)

	if cfg.Draft {
		dep, err := c.GetDeposition(ctx, dep.ID)
		if err == nil {
			result.URL = dep.Links.HTML
		}
		fmt.Fprintln(w, "Deposition saved as draft. You can publish it manually.")
		return result, nil
	}

	fmt.Fprintln(w, "Publishing deposition...")
	published, err := c.PublishDeposition(ctx, dep.ID)
	if err != nil {
		fmt.Fprintf(w, "Warning: Deposition not published: %v\n", err)
		fmt.Fprintln(w, "The deposition has been saved as draft. You can publish it manually.")
		if draft, getErr := c.GetDeposition(ctx, dep.ID); getErr == nil {
			result.URL = draft.Links.HTML
		}
		return result, nil
	}

	result.Published = true
	result.URL = published.Links.RecordHTML
	if result.URL == "" {
		result.URL = published.Links.HTML
	}
	fmt.Fprintln(w, "Deposition published successfully!")
	return result, nil
}

// NewVersion creates a new version draft of a published deposition,
// optionally uploads files into the new draft's bucket, and optionally
// publishes it.
func NewVersion(ctx context.Context, c *zenodo.Client, depositionID int, files []string, publish bool, w io.Writer) (*UploadResult, error) {
	if !c.HasToken() {
		return nil, ErrNoToken
	}

	fmt.Fprintf(w, "Creating new version of deposition %d...\n", depositionID)
	dep, err := c.NewDepositionVersion(ctx, depositionID)
	if err != nil {
		return nil, err
	}

	draftID, err := dep.LatestDraftID()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "New draft deposition: %d\n", draftID)

	draft, err := c.GetDeposition(ctx, draftID)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{DepositionID: draftID, URL: draft.Links.HTML}
	for _, path := range files {
		name := filepath.Base(path)
		fmt.Fprintf(w, "Uploading file: %s...\n", name)
		if err := uploadOne(ctx, c, draft.Links.Bucket, path); err != nil {
			fmt.Fprintf(w, "warning: failed to upload %s: %v\n", name, err)
			result.Failed++
			continue
		}
		result.Uploaded++
	}
	if len(files) > 0 && result.Uploaded == 0 {
		return nil, fmt.Errorf("all %d file upload(s) failed", result.Failed)
	}

	if !publish {
		fmt.Fprintln(w, "New version saved as draft. You can publish it manually.")
		return result, nil
	}

	fmt.Fprintln(w, "Publishing new version...")
	published, err := c.PublishDeposition(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to publish new version: %w", err)
	}
	result.Published = true
	result.URL = published.Links.RecordHTML
	if result.URL == "" {
		result.URL = published.Links.HTML
	}
	return result, nil
}

// Publish publishes a draft deposition. Unlike the upload flow, a
// rejection here is a hard error.
func Publish(ctx context.Context, c *zenodo.Client, depositionID int, w io.Writer) (string, error) {
	if !c.HasToken() {
		return "", ErrNoToken
	}

	fmt.Fprintf(w, "Publishing deposition %d...\n", depositionID)
	dep, err := c.PublishDeposition(ctx, depositionID)
	if err != nil {
		return "", fmt.Errorf("failed to publish deposition %d: %w", depositionID, err)
	}

	url := dep.Links.RecordHTML
	if url == "" {
		url = dep.Links.HTML
	}
	fmt.Fprintln(w, "Deposition published successfully!")
	return url, nil
}

// uploadOne streams a local file into the bucket under its base name.
func uploadOne(ctx context.Context, c *zenodo.Client, bucketURL, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = c.UploadFileToBucket(ctx, bucketURL, filepath.Base(path), f, info.Size())
	return err
}

// buildMetadata fills deposition metadata defaults: title falls back to
// the first file's name, description notes the upload, creators fall
// back to the configured default, and the upload type to dataset.
func buildMetadata(meta types.DepositMeta, firstFile string, cfg types.UploadConfig) zenodo.DepositionMetadata {
	fileName := filepath.Base(firstFile)

	title := meta.Title
	if title == "" {
		title = fileName
	}
	description := meta.Description
	if description == "" {
		description = "Uploaded via zenodo-cli: " + fileName
	}
	uploadType := meta.UploadType
	if uploadType == "" {
		uploadType = "dataset"
	}

	creators := make([]zenodo.Creator, 0, len(meta.Creators))
	for _, name := range meta.Creators {
		if name = strings.TrimSpace(name); name != "" {
			creators = append(creators, zenodo.Creator{Name: name})
		}
	}
	if len(creators) == 0 {
		name := cfg.DefaultCreator
		if name == "" {
			name = "zenodo-cli user"
		}
		creators = []zenodo.Creator{{Name: name}}
	}

	communities := make([]zenodo.Community, 0, len(meta.Communities))
	for _, id := range meta.Communities {
		if id = strings.TrimSpace(id); id != "" {
			communities = append(communities, zenodo.Community{Identifier: id})
		}
	}

	return zenodo.DepositionMetadata{
		Title:       title,
		UploadType:  uploadType,
		Description: description,
		Creators:    creators,
		Keywords:    meta.Keywords,
		Communities: communities,
	}
}
