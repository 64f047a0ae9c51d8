// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search builds record queries and renders search results.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/zenodo-cli/internal/zenodo"
	"github.com/pdiddy/zenodo-cli/pkg/types"
)

// descriptionLimit is the display truncation length for descriptions.
const descriptionLimit = 200

// BuildQuery joins keywords with " AND " into the q parameter.
func BuildQuery(keywords []string) string {
	return strings.Join(keywords, " AND ")
}

// Run executes a keyword search against the records endpoint.
func Run(ctx context.Context, c *zenodo.Client, keywords []string, cfg types.SearchConfig) (*zenodo.SearchResponse, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("provide one or more keywords to search for")
	}
	return c.SearchRecords(ctx, zenodo.SearchOptions{
		Query:     BuildQuery(keywords),
		Size:      cfg.PageSize,
		Page:      cfg.Page,
		Sort:      cfg.Sort,
		Community: cfg.Community,
	})
}

// DisplayResults writes the search results in a readable numbered
// format: title, authors, publication date, DOI, record URL, keywords
// when present, and a truncated description.
func DisplayResults(resp *zenodo.SearchResponse, siteURL string, w io.Writer) {
	fmt.Fprintf(w, "\nFound %d results\n\n", int(resp.Hits.Total))
	fmt.Fprintln(w, strings.Repeat("-", 80))

	if len(resp.Hits.Hits) == 0 {
		fmt.Fprintln(w, "No results found for your search query.")
		return
	}

	for i, hit := range resp.Hits.Hits {
		md := hit.Metadata

		title := md.Title
		if title == "" {
			title = "No title"
		}
		published := md.PublicationDate
		if published == "" {
			published = "Unknown date"
		}
		doi := md.DOI
		if doi == "" {
			doi = hit.DOI
		}
		if doi == "" {
			doi = "No DOI"
		}
		description := md.Description
		if description == "" {
			description = "No description"
		}

		fmt.Fprintf(w, "%d. %s\n", i+1, title)
		fmt.Fprintf(w, "   Authors: %s\n", zenodo.CreatorNames(md.Creators))
		fmt.Fprintf(w, "   Published: %s\n", published)
		fmt.Fprintf(w, "   DOI: %s\n", doi)
		fmt.Fprintf(w, "   URL: %s/record/%d\n", siteURL, hit.ID)
		if len(md.Keywords) > 0 {
			fmt.Fprintf(w, "   Keywords: %s\n", strings.Join(md.Keywords, ", "))
		}
		fmt.Fprintf(w, "   Description: %s\n", TruncateDescription(description))
		fmt.Fprintln(w, strings.Repeat("-", 80))
	}
}

// TruncateDescription shortens a description to 200 characters plus an
// ellipsis. The cut counts runes so multi-byte text is not split.
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= descriptionLimit {
		return s
	}
	return string(runes[:descriptionLimit]) + "..."
}

// FormatJSON writes the matched records as indented JSON to w.
func FormatJSON(resp *zenodo.SearchResponse, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp.Hits.Hits)
}

// SaveResults writes the raw decoded response to a JSON file.
func SaveResults(resp *zenodo.SearchResponse, path string) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
