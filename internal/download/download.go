// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download streams record files to local disk.
package download

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/zenodo-cli/internal/zenodo"
	"github.com/pdiddy/zenodo-cli/pkg/types"
)

// Recorder indexes a completed record download. A nil Recorder disables
// indexing; a Recorder failure is a warning, never a download failure.
type Recorder interface {
	Add(ctx context.Context, entry types.LibraryEntry) error
}

// BatchResult holds the outcome of a keyword download run.
type BatchResult struct {
	Downloaded int
	Failed     int
}

// Total returns the total number of records processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Failed
}

// HasFailures reports whether any records failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Record downloads all files of a record into destDir. Individual file
// failures produce a warning and the loop continues. When cfg requests
// it, a metadata.json with the full record JSON is written alongside
// the files.
func Record(ctx context.Context, c *zenodo.Client, recordID, destDir string, cfg types.DownloadConfig, rec Recorder, w io.Writer) error {
	record, err := c.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}

	title := record.Metadata.Title
	if title == "" {
		title = "Unknown Title"
	}
	fmt.Fprintf(w, "Downloading files for record: %s\n", title)

	if destDir == "" {
		destDir = "."
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", destDir, err)
	}

	if cfg.WriteMetadata {
		if err := writeMetadata(record, filepath.Join(destDir, "metadata.json")); err != nil {
			fmt.Fprintf(w, "warning: could not write metadata.json: %v\n", err)
		}
	}

	if len(record.Files) == 0 {
		fmt.Fprintln(w, "No files found in this record.")
		recordInLibrary(ctx, rec, record, destDir, w)
		return nil
	}

	fmt.Fprintf(w, "Found %d file(s).\n", len(record.Files))

	for _, file := range record.Files {
		name := SanitizeFilename(file.Key)
		fmt.Fprintf(w, "Downloading: %s (%s)\n", name, humanSize(file.Size))

		destPath := filepath.Join(destDir, name)
		if err := downloadFile(ctx, c, file, destPath, cfg.VerifyChecksum); err != nil {
			fmt.Fprintf(w, "warning: failed to download %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "Saved to: %s\n", destPath)
	}

	recordInLibrary(ctx, rec, record, destDir, w)
	return nil
}

// ByQuery searches for records matching keywords and downloads each
// matching record into its own numbered subdirectory with a
// metadata.json. Per-record failures produce a warning and the loop
// continues.
func ByQuery(ctx context.Context, c *zenodo.Client, keywords []string, destDir string, cfg types.DownloadConfig, rec Recorder, w io.Writer) (BatchResult, error) {
	query := strings.Join(keywords, " AND ")
	fmt.Fprintf(w, "Searching Zenodo for: %s\n", query)

	resp, err := c.SearchRecords(ctx, zenodo.SearchOptions{
		Query: query,
		Size:  20,
		Page:  1,
		Sort:  cfg.Sort,
	})
	if err != nil {
		return BatchResult{}, err
	}

	hits := resp.Hits.Hits
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found for your search query.")
		return BatchResult{}, nil
	}

	maxRecords := cfg.MaxRecords
	if maxRecords <= 0 {
		maxRecords = 10
	}
	if len(hits) < maxRecords {
		maxRecords = len(hits)
	}

	fmt.Fprintf(w, "\nFound %d results. Will download files from up to %d records.\n",
		int(resp.Hits.Total), maxRecords)

	if destDir == "" {
		destDir = "."
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating directory %s: %w", destDir, err)
	}

	var result BatchResult
	for i, hit := range hits[:maxRecords] {
		if i > 0 && cfg.Delay > 0 {
			time.Sleep(cfg.Delay)
		}

		recordTitle := hit.Metadata.Title
		if recordTitle == "" {
			recordTitle = fmt.Sprintf("record_%d", hit.ID)
		}
		recordDir := filepath.Join(destDir, fmt.Sprintf("%d_%s", i+1, SafeTitle(recordTitle)))
		if err := os.MkdirAll(recordDir, 0o755); err != nil {
			fmt.Fprintf(w, "warning: could not create %s: %v\n", recordDir, err)
			result.Failed++
			continue
		}

		if err := writeMetadata(&hit, filepath.Join(recordDir, "metadata.json")); err != nil {
			fmt.Fprintf(w, "warning: could not write metadata.json: %v\n", err)
		}

		fmt.Fprintf(w, "\nDownloading record %d/%d: %s\n", i+1, maxRecords, recordTitle)

		recCfg := cfg
		recCfg.WriteMetadata = false // already written from the search hit
		if err := Record(ctx, c, fmt.Sprintf("%d", hit.ID), recordDir, recCfg, rec, w); err != nil {
			fmt.Fprintf(w, "Error downloading record %d: %v\n", hit.ID, err)
			result.Failed++
			continue
		}
		result.Downloaded++
	}

	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d failed (total: %d)\n",
		result.Downloaded, result.Failed, result.Total())
	fmt.Fprintf(w, "Download complete. Files saved to %s\n", destDir)
	return result, nil
}

// downloadFile streams one file to a temporary file in the destination
// directory and renames it on success. When verify is set and the API
// advertised an md5 checksum, a mismatch fails the file.
func downloadFile(ctx context.Context, c *zenodo.Client, file zenodo.FileEntry, destPath string, verify bool) error {
	if file.Links.Self == "" {
		return fmt.Errorf("file %s has no download URL", file.Key)
	}

	body, err := c.DownloadFile(ctx, file.Links.Self)
	if err != nil {
		return err
	}
	defer body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	hash := md5.New()
	_, copyErr := io.Copy(tmpFile, io.TeeReader(body, hash))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if verify {
		if want, ok := strings.CutPrefix(file.Checksum, "md5:"); ok {
			got := hex.EncodeToString(hash.Sum(nil))
			if got != want {
				os.Remove(tmpPath)
				return fmt.Errorf("checksum mismatch: got md5:%s, want md5:%s", got, want)
			}
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// recordInLibrary adds the record to the local index, best-effort.
func recordInLibrary(ctx context.Context, rec Recorder, record *zenodo.Record, destDir string, w io.Writer) {
	if rec == nil {
		return
	}

	creators := make([]string, len(record.Metadata.Creators))
	for i, c := range record.Metadata.Creators {
		creators[i] = c.Name
	}
	entry := types.LibraryEntry{
		RecordID:        record.ID,
		Title:           record.Metadata.Title,
		Creators:        creators,
		DOI:             record.DOI,
		ConceptDOI:      record.ConceptDOI,
		Version:         record.Metadata.Version,
		PublicationDate: record.Metadata.PublicationDate,
		Description:     record.Metadata.Description,
		Files:           len(record.Files),
		DestPath:        destDir,
		FetchedAt:       time.Now().UTC(),
	}
	if entry.DOI == "" {
		entry.DOI = record.Metadata.DOI
	}
	if err := rec.Add(ctx, entry); err != nil {
		fmt.Fprintf(w, "warning: could not index record in library: %v\n", err)
	}
}

// writeMetadata writes a record as indented JSON.
func writeMetadata(record *zenodo.Record, path string) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SanitizeFilename replaces path separators so a remote filename cannot
// escape the destination directory.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return name
}

// SafeTitle converts a record title into a directory-safe name:
// letters, digits, dot, underscore, dash and space survive, everything
// else becomes an underscore, capped at 50 characters.
func SafeTitle(title string) string {
	runes := make([]rune, 0, len(title))
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			runes = append(runes, r)
		case r == '.' || r == '_' || r == '-' || r == ' ':
			runes = append(runes, r)
		default:
			runes = append(runes, '_')
		}
	}
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}

// humanSize renders a byte count the way the record listing does:
// "X.X KB" below one MiB, "X.X MB" otherwise.
func humanSize(size int64) string {
	if size < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
}
