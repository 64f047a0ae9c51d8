// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package versions reconstructs a record's version history. Zenodo does
// not expose a canonical version list for an arbitrary member ID, so
// this runs several search strategies and merges their hits. The result
// is best-effort: title search can both miss real siblings and catch
// false positives.
package versions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/zenodo-cli/internal/zenodo"
)

// versionSuffixRe matches a trailing "<major>.<minor>" version suffix
// in a DOI, e.g. "10.5281/zenodo.1234.v2.1" or ".../dataset-3.4".
var versionSuffixRe = regexp.MustCompile(`(\d+)\.(\d+)$`)

// Entry is one reconstructed version of a record.
type Entry struct {
	RecordID        int    `json:"record_id"`
	Version         string `json:"version"`
	PublicationDate string `json:"publication_date"`
	DOI             string `json:"doi"`
	Title           string `json:"title"`
}

// History fetches the record and reconstructs its version set. The
// search strategies run in order — concept DOI, DOI prefix, concept
// record ID, first three title words — stopping as soon as two or more
// distinct record IDs have been collected. Hits are merged,
// deduplicated by record ID, annotated with a version string, and
// sorted descending by (publication date, numeric version). The queried
// record itself is prepended when the searches did not return it.
func History(ctx context.Context, c *zenodo.Client, recordID string) ([]Entry, error) {
	rec, err := c.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	var merged []zenodo.Record
	seen := make(map[int]bool)

	for _, query := range strategyQueries(rec) {
		if len(seen) >= 2 {
			break
		}
		resp, err := c.SearchRecords(ctx, zenodo.SearchOptions{Query: query, Size: 20, Sort: "mostrecent"})
		if err != nil {
			continue
		}
		for _, hit := range resp.Hits.Hits {
			if seen[hit.ID] {
				continue
			}
			seen[hit.ID] = true
			merged = append(merged, hit)
		}
	}

	if !seen[rec.ID] {
		merged = append([]zenodo.Record{*rec}, merged...)
	}

	entries := make([]Entry, len(merged))
	for i, r := range merged {
		entries[i] = Entry{
			RecordID:        r.ID,
			Version:         versionOf(r),
			PublicationDate: r.Metadata.PublicationDate,
			DOI:             recordDOI(r),
			Title:           r.Metadata.Title,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].PublicationDate != entries[j].PublicationDate {
			return entries[i].PublicationDate > entries[j].PublicationDate
		}
		mi, ni := parseVersion(entries[i].Version)
		mj, nj := parseVersion(entries[j].Version)
		if mi != mj {
			return mi > mj
		}
		return ni > nj
	})

	return entries, nil
}

// strategyQueries builds the ordered search queries for a record.
// Strategies without the data they need are skipped.
func strategyQueries(rec *zenodo.Record) []string {
	var queries []string

	if rec.ConceptDOI != "" {
		queries = append(queries, fmt.Sprintf("conceptdoi:%q", rec.ConceptDOI))
	}

	doi := recordDOI(*rec)
	if loc := versionSuffixRe.FindStringIndex(doi); loc != nil {
		prefix := strings.TrimRight(doi[:loc[0]], ".-")
		if prefix != "" {
			queries = append(queries, prefix)
		}
	}

	if rec.ConceptRecID != "" {
		queries = append(queries, fmt.Sprintf("conceptrecid:%q", rec.ConceptRecID))
	}

	if words := strings.Fields(rec.Metadata.Title); len(words) > 0 {
		if len(words) > 3 {
			words = words[:3]
		}
		queries = append(queries, strings.Join(words, " "))
	}

	return queries
}

// versionOf annotates a record with a version string: a trailing
// "<major>.<minor>" suffix from the DOI, else the metadata version
// field, else "1".
func versionOf(rec zenodo.Record) string {
	if m := versionSuffixRe.FindStringSubmatch(recordDOI(rec)); m != nil {
		return m[1] + "." + m[2]
	}
	if rec.Metadata.Version != "" {
		return rec.Metadata.Version
	}
	return "1"
}

func recordDOI(rec zenodo.Record) string {
	if rec.DOI != "" {
		return rec.DOI
	}
	return rec.Metadata.DOI
}

// parseVersion interprets a version string as a (major, minor) integer
// pair. A bare integer is (n, 0); anything unparseable is (0, 0). A
// leading "v" is tolerated.
func parseVersion(v string) (major, minor int) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	parts := strings.SplitN(v, ".", 3)
	major, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}

// FormatTable writes the version history as a table to w.
func FormatTable(entries []Entry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No versions found.")
		return
	}

	fmt.Fprintf(w, "%-8s  %-10s  %-12s  %-35s  %s\n",
		"Version", "Record", "Published", "DOI", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, e := range entries {
		doi := e.DOI
		if len(doi) > 35 {
			doi = doi[:32] + "..."
		}
		fmt.Fprintf(w, "%-8s  %-10d  %-12s  %-35s  %s\n",
			e.Version, e.RecordID, e.PublicationDate, doi, e.Title)
	}

	fmt.Fprintf(w, "\n%d version(s)\n", len(entries))
}

// FormatJSON writes the version history as indented JSON to w.
func FormatJSON(entries []Entry, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
