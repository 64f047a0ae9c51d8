// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/zenodo-cli/internal/zenodo"
	"github.com/pdiddy/zenodo-cli/pkg/types"
)

// --- helpers ---

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"data.csv", "data.csv"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{`dir\file.txt`, "dir_file.txt"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeTitle(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "Climate Data v2.1", "Climate Data v2.1"},
		{"special chars replaced", "a/b:c*d", "a_b_c_d"},
		{"capped at 50", strings.Repeat("x", 80), strings.Repeat("x", 50)},
		{"non-ASCII letters kept", "Données Météo 2023", "Données Météo 2023"},
		{"cap counts runes", strings.Repeat("é", 80), strings.Repeat("é", 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeTitle(tt.in); got != tt.want {
				t.Errorf("SafeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHumanSize(t *testing.T) {
	if got := humanSize(512); got != "0.5 KB" {
		t.Errorf("humanSize(512) = %q", got)
	}
	if got := humanSize(3 * 1024 * 1024); got != "3.0 MB" {
		t.Errorf("humanSize(3MiB) = %q", got)
	}
}

// --- Record ---

func md5sum(s string) string {
	h := md5.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// recordServer serves one record with the given file entries, plus the
// file bodies under /files/.
func recordServer(t *testing.T, files []map[string]any, bodies map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var ts *httptest.Server
	mux.HandleFunc("/records/123", func(w http.ResponseWriter, r *http.Request) {
		for _, f := range files {
			key := f["key"].(string)
			f["links"] = map[string]string{"self": ts.URL + "/files/" + key}
		}
		rec := map[string]any{
			"id":  123,
			"doi": "10.5281/zenodo.123",
			"metadata": map[string]any{
				"title":            "Test Record",
				"publication_date": "2023-01-01",
			},
			"files": files,
		}
		json.NewEncoder(w).Encode(rec)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/files/")
		body, ok := bodies[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	})
	ts = httptest.NewServer(mux)
	return ts
}

func TestRecordDownloadsFiles(t *testing.T) {
	const content = "col1,col2\n1,2\n"
	ts := recordServer(t, []map[string]any{
		{"key": "data.csv", "size": len(content), "checksum": "md5:" + md5sum(content)},
	}, map[string]string{"data.csv": content})
	defer ts.Close()

	dir := t.TempDir()
	c := zenodo.New(ts.URL, "", ts.Client())
	var buf bytes.Buffer

	err := Record(context.Background(), c, "123", dir, types.DownloadConfig{VerifyChecksum: true}, nil, &buf)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "data.csv"))
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", data, content)
	}

	out := buf.String()
	for _, want := range []string{
		"Downloading files for record: Test Record",
		"Found 1 file(s).",
		"Downloading: data.csv",
		"Saved to: " + filepath.Join(dir, "data.csv"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// No stray temp files left behind.
	matches, _ := filepath.Glob(filepath.Join(dir, ".download-*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left over: %v", matches)
	}
}

func TestRecordChecksumMismatchFailsOnlyThatFile(t *testing.T) {
	ts := recordServer(t, []map[string]any{
		{"key": "bad.csv", "size": 4, "checksum": "md5:" + md5sum("other content")},
		{"key": "good.csv", "size": 4, "checksum": "md5:" + md5sum("good")},
	}, map[string]string{"bad.csv": "evil", "good.csv": "good"})
	defer ts.Close()

	dir := t.TempDir()
	c := zenodo.New(ts.URL, "", ts.Client())
	var buf bytes.Buffer

	err := Record(context.Background(), c, "123", dir, types.DownloadConfig{VerifyChecksum: true}, nil, &buf)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "bad.csv")); !os.IsNotExist(err) {
		t.Error("corrupt file should not be kept")
	}
	if _, err := os.Stat(filepath.Join(dir, "good.csv")); err != nil {
		t.Errorf("good file missing: %v", err)
	}
	if !strings.Contains(buf.String(), "warning: failed to download bad.csv") {
		t.Errorf("output = %q, want checksum warning", buf.String())
	}
	if !strings.Contains(buf.String(), "checksum mismatch") {
		t.Errorf("output = %q, want checksum mismatch reason", buf.String())
	}
}

func TestRecordSkipsVerifyWhenDisabled(t *testing.T) {
	ts := recordServer(t, []map[string]any{
		{"key": "data.csv", "size": 4, "checksum": "md5:" + md5sum("something else")},
	}, map[string]string{"data.csv": "evil"})
	defer ts.Close()

	dir := t.TempDir()
	c := zenodo.New(ts.URL, "", ts.Client())
	var buf bytes.Buffer

	err := Record(context.Background(), c, "123", dir, types.DownloadConfig{VerifyChecksum: false}, nil, &buf)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data.csv")); err != nil {
		t.Errorf("file should be kept with verification off: %v", err)
	}
}

func TestRecordWritesMetadata(t *testing.T) {
	ts := recordServer(t, nil, nil)
	defer ts.Close()

	dir := t.TempDir()
	c := zenodo.New(ts.URL, "", ts.Client())
	var buf bytes.Buffer

	err := Record(context.Background(), c, "123", dir, types.DownloadConfig{WriteMetadata: true}, nil, &buf)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		t.Fatalf("metadata.json missing: %v", err)
	}
	var rec zenodo.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("metadata.json is not valid JSON: %v", err)
	}
	if rec.ID != 123 {
		t.Errorf("ID = %d, want 123", rec.ID)
	}
	if !strings.Contains(buf.String(), "No files found in this record.") {
		t.Errorf("output = %q", buf.String())
	}
}

// fakeRecorder captures library entries.
type fakeRecorder struct {
	entries []types.LibraryEntry
	err     error
}

func (f *fakeRecorder) Add(_ context.Context, entry types.LibraryEntry) error {
	f.entries = append(f.entries, entry)
	return f.err
}

func TestRecordIndexesInLibrary(t *testing.T) {
	const content = "payload"
	ts := recordServer(t, []map[string]any{
		{"key": "data.csv", "size": len(content), "checksum": "md5:" + md5sum(content)},
	}, map[string]string{"data.csv": content})
	defer ts.Close()

	dir := t.TempDir()
	c := zenodo.New(ts.URL, "", ts.Client())
	rec := &fakeRecorder{}
	var buf bytes.Buffer

	if err := Record(context.Background(), c, "123", dir, types.DownloadConfig{}, rec, &buf); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("recorder called %d times, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.RecordID != 123 || e.Title != "Test Record" || e.Files != 1 || e.DestPath != dir {
		t.Errorf("entry = %+v", e)
	}
	if e.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestRecordRecorderFailureIsWarning(t *testing.T) {
	ts := recordServer(t, nil, nil)
	defer ts.Close()

	c := zenodo.New(ts.URL, "", ts.Client())
	rec := &fakeRecorder{err: fmt.Errorf("disk full")}
	var buf bytes.Buffer

	err := Record(context.Background(), c, "123", t.TempDir(), types.DownloadConfig{}, rec, &buf)
	if err != nil {
		t.Fatalf("recorder failure must not fail the download: %v", err)
	}
	if !strings.Contains(buf.String(), "warning: could not index record in library") {
		t.Errorf("output = %q, want indexing warning", buf.String())
	}
}

// --- ByQuery ---

func TestByQuery(t *testing.T) {
	const content = "abc"
	mux := http.NewServeMux()
	var ts *httptest.Server
	var gotQ string

	mux.HandleFunc("/records", func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		fmt.Fprintf(w, `{"hits": {"total": 2, "hits": [
			{"id": 1, "metadata": {"title": "First Result"}, "files": [
				{"key": "a.txt", "size": 3, "checksum": "md5:%s", "links": {"self": %q}}
			]},
			{"id": 2, "metadata": {"title": "Second: Result?"}, "files": []}
		]}}`, md5sum(content), ts.URL+"/files/a.txt")
	})
	mux.HandleFunc("/records/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id": 1, "metadata": {"title": "First Result"}, "files": [
			{"key": "a.txt", "size": 3, "checksum": "md5:%s", "links": {"self": %q}}
		]}`, md5sum(content), ts.URL+"/files/a.txt")
	})
	mux.HandleFunc("/records/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 2, "metadata": {"title": "Second: Result?"}, "files": []}`)
	})
	mux.HandleFunc("/files/a.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, content)
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	dir := t.TempDir()
	c := zenodo.New(ts.URL, "", ts.Client())
	var buf bytes.Buffer

	result, err := ByQuery(context.Background(), c, []string{"climate", "ocean"}, dir,
		types.DownloadConfig{VerifyChecksum: true, MaxRecords: 10}, nil, &buf)
	if err != nil {
		t.Fatalf("ByQuery: %v", err)
	}

	if gotQ != "climate AND ocean" {
		t.Errorf("q = %q, want keywords joined with \" AND \"", gotQ)
	}
	if result.Downloaded != 2 || result.Failed != 0 {
		t.Errorf("result = %+v, want 2 downloaded", result)
	}

	// Each record gets a numbered, title-derived directory with its
	// search-hit metadata.
	first := filepath.Join(dir, "1_First Result")
	second := filepath.Join(dir, "2_Second_ Result_")
	if _, err := os.Stat(filepath.Join(first, "a.txt")); err != nil {
		t.Errorf("first record file missing: %v", err)
	}
	for _, d := range []string{first, second} {
		if _, err := os.Stat(filepath.Join(d, "metadata.json")); err != nil {
			t.Errorf("metadata.json missing in %s: %v", d, err)
		}
	}

	out := buf.String()
	for _, want := range []string{
		"Found 2 results. Will download files from up to 2 records.",
		"Downloading record 1/2: First Result",
		"Batch summary: 2 downloaded, 0 failed (total: 2)",
		"Download complete. Files saved to " + dir,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestByQueryNoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hits": {"hits": [], "total": 0}}`)
	}))
	defer ts.Close()

	c := zenodo.New(ts.URL, "", ts.Client())
	var buf bytes.Buffer
	result, err := ByQuery(context.Background(), c, []string{"nothing"}, t.TempDir(), types.DownloadConfig{}, nil, &buf)
	if err != nil {
		t.Fatalf("ByQuery: %v", err)
	}
	if result.Total() != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
	if !strings.Contains(buf.String(), "No results found for your search query.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestByQueryRespectsMaxRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/records", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hits": {"total": 3, "hits": [
			{"id": 1, "metadata": {"title": "One"}, "files": []},
			{"id": 2, "metadata": {"title": "Two"}, "files": []},
			{"id": 3, "metadata": {"title": "Three"}, "files": []}
		]}}`)
	})
	mux.HandleFunc("/records/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/records/")
		fmt.Fprintf(w, `{"id": %s, "metadata": {"title": "Record"}, "files": []}`, id)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	dir := t.TempDir()
	c := zenodo.New(ts.URL, "", ts.Client())
	var buf bytes.Buffer

	result, err := ByQuery(context.Background(), c, []string{"x"}, dir, types.DownloadConfig{MaxRecords: 2}, nil, &buf)
	if err != nil {
		t.Fatalf("ByQuery: %v", err)
	}
	if result.Downloaded != 2 {
		t.Errorf("Downloaded = %d, want 2 (capped by MaxRecords)", result.Downloaded)
	}
	if _, err := os.Stat(filepath.Join(dir, "3_Three")); !os.IsNotExist(err) {
		t.Error("third record should not have been downloaded")
	}
}
