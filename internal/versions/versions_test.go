package versions

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/zenodo-cli/internal/zenodo"
)

// --- parseVersion ---

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in          string
		major, minor int
	}{
		{"2.1", 2, 1},
		{"3", 3, 0},
		{"v1.4", 1, 4},
		{"10.20.30", 10, 20},
		{"garbage", 0, 0},
		{"", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			major, minor := parseVersion(tt.in)
			if major != tt.major || minor != tt.minor {
				t.Errorf("parseVersion(%q) = (%d, %d), want (%d, %d)",
					tt.in, major, minor, tt.major, tt.minor)
			}
		})
	}
}

// --- versionOf ---

func TestVersionOf(t *testing.T) {
	tests := []struct {
		name string
		rec  zenodo.Record
		want string
	}{
		{
			"DOI suffix wins",
			zenodo.Record{DOI: "10.1234/dataset-2.3", Metadata: zenodo.RecordMetadata{Version: "9"}},
			"2.3",
		},
		{
			"metadata version fallback",
			zenodo.Record{DOI: "10.5281/zenodo.555", Metadata: zenodo.RecordMetadata{Version: "4"}},
			"4",
		},
		{
			"default is 1",
			zenodo.Record{DOI: "10.5281/zenodo.555"},
			"1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := versionOf(tt.rec); got != tt.want {
				t.Errorf("versionOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- strategyQueries ---

func TestStrategyQueries(t *testing.T) {
	rec := &zenodo.Record{
		ID:           555,
		ConceptDOI:   "10.5281/zenodo.554",
		ConceptRecID: "554",
		DOI:          "10.1234/dataset-2.3",
		Metadata: zenodo.RecordMetadata{
			Title: "Alpha Beta Gamma Delta Epsilon",
		},
	}

	queries := strategyQueries(rec)
	if len(queries) != 4 {
		t.Fatalf("len(queries) = %d, want 4: %v", len(queries), queries)
	}
	if queries[0] != `conceptdoi:"10.5281/zenodo.554"` {
		t.Errorf("concept DOI query = %q", queries[0])
	}
	if queries[1] != "10.1234/dataset" {
		t.Errorf("DOI prefix query = %q", queries[1])
	}
	if queries[2] != `conceptrecid:"554"` {
		t.Errorf("concept record ID query = %q", queries[2])
	}
	if queries[3] != "Alpha Beta Gamma" {
		t.Errorf("title query = %q, want first three words", queries[3])
	}
}

func TestStrategyQueriesTitleOnly(t *testing.T) {
	rec := &zenodo.Record{ID: 1, Metadata: zenodo.RecordMetadata{Title: "Short Title"}}
	queries := strategyQueries(rec)
	if len(queries) != 1 || queries[0] != "Short Title" {
		t.Errorf("queries = %v, want only the title words", queries)
	}
}

// --- History (mocked API) ---

// historyServer serves /records/{id} from record and /records searches
// from hitsByQuery, counting search calls.
func historyServer(t *testing.T, record string, hitsByQuery map[string]string, searchCalls *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/records/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, record)
	})
	mux.HandleFunc("/records", func(w http.ResponseWriter, r *http.Request) {
		*searchCalls++
		q := r.URL.Query().Get("q")
		if hits, ok := hitsByQuery[q]; ok {
			fmt.Fprintf(w, `{"hits": {"hits": %s, "total": 2}}`, hits)
			return
		}
		fmt.Fprint(w, `{"hits": {"hits": [], "total": 0}}`)
	})
	return httptest.NewServer(mux)
}

const queriedRecord = `{
	"id": 555,
	"conceptdoi": "10.5281/zenodo.554",
	"conceptrecid": "554",
	"doi": "10.5281/zenodo.555",
	"metadata": {"title": "Alpha Beta Gamma Delta", "publication_date": "2023-02-01", "version": "2"}
}`

func TestHistoryDeduplicatesAndSorts(t *testing.T) {
	// The concept DOI search returns the queried record plus a sibling,
	// with the queried record repeated.
	hits := `[
		{"id": 555, "doi": "10.5281/zenodo.555", "metadata": {"title": "Alpha Beta Gamma Delta", "publication_date": "2023-02-01", "version": "2"}},
		{"id": 444, "doi": "10.5281/zenodo.444", "metadata": {"title": "Alpha Beta Gamma Delta", "publication_date": "2022-01-15", "version": "1"}},
		{"id": 555, "doi": "10.5281/zenodo.555", "metadata": {"title": "Alpha Beta Gamma Delta", "publication_date": "2023-02-01", "version": "2"}}
	]`
	var calls int
	ts := historyServer(t, queriedRecord, map[string]string{
		`conceptdoi:"10.5281/zenodo.554"`: hits,
	}, &calls)
	defer ts.Close()

	c := zenodo.New(ts.URL, "", ts.Client())
	entries, err := History(context.Background(), c, "555")
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (deduplicated): %+v", len(entries), entries)
	}
	seen := map[int]bool{}
	for _, e := range entries {
		if seen[e.RecordID] {
			t.Errorf("record ID %d emitted twice", e.RecordID)
		}
		seen[e.RecordID] = true
	}

	// Descending by publication date.
	if entries[0].RecordID != 555 || entries[1].RecordID != 444 {
		t.Errorf("order = [%d %d], want [555 444]", entries[0].RecordID, entries[1].RecordID)
	}
	if entries[0].Version != "2" || entries[1].Version != "1" {
		t.Errorf("versions = [%s %s], want [2 1]", entries[0].Version, entries[1].Version)
	}
}

func TestHistoryStopsEarlyAtTwoIDs(t *testing.T) {
	hits := `[
		{"id": 555, "metadata": {"publication_date": "2023-02-01"}},
		{"id": 444, "metadata": {"publication_date": "2022-01-15"}}
	]`
	var calls int
	ts := historyServer(t, queriedRecord, map[string]string{
		`conceptdoi:"10.5281/zenodo.554"`: hits,
	}, &calls)
	defer ts.Close()

	c := zenodo.New(ts.URL, "", ts.Client())
	if _, err := History(context.Background(), c, "555"); err != nil {
		t.Fatalf("History: %v", err)
	}

	// Two distinct IDs after the first strategy: the remaining
	// strategies must not run.
	if calls != 1 {
		t.Errorf("search calls = %d, want 1 (early stop)", calls)
	}
}

func TestHistoryFallsThroughStrategies(t *testing.T) {
	// Concept DOI and concept recid searches return nothing; the title
	// search finds a sibling.
	hits := `[
		{"id": 777, "metadata": {"title": "Alpha Beta Gamma Delta", "publication_date": "2024-06-01", "version": "3"}}
	]`
	var calls int
	ts := historyServer(t, queriedRecord, map[string]string{
		"Alpha Beta Gamma": hits,
	}, &calls)
	defer ts.Close()

	c := zenodo.New(ts.URL, "", ts.Client())
	entries, err := History(context.Background(), c, "555")
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	if calls != 3 {
		t.Errorf("search calls = %d, want 3 (conceptdoi, conceptrecid, title)", calls)
	}

	// The queried record was never a search hit, so it is prepended and
	// then sorted with the rest.
	ids := map[int]bool{}
	for _, e := range entries {
		ids[e.RecordID] = true
	}
	if !ids[555] || !ids[777] {
		t.Errorf("entries = %+v, want both 555 and 777", entries)
	}
	if entries[0].RecordID != 777 {
		t.Errorf("newest first: got %d", entries[0].RecordID)
	}
}

func TestHistorySortsByVersionWithinDate(t *testing.T) {
	hits := `[
		{"id": 1, "doi": "10.1234/data-1.2", "metadata": {"publication_date": "2023-01-01"}},
		{"id": 2, "doi": "10.1234/data-1.10", "metadata": {"publication_date": "2023-01-01"}},
		{"id": 3, "doi": "10.1234/data-2.0", "metadata": {"publication_date": "2023-01-01"}}
	]`
	var calls int
	ts := historyServer(t, queriedRecord, map[string]string{
		`conceptdoi:"10.5281/zenodo.554"`: hits,
	}, &calls)
	defer ts.Close()

	c := zenodo.New(ts.URL, "", ts.Client())
	entries, err := History(context.Background(), c, "555")
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	// Same date throughout: numeric (major, minor) ordering decides.
	var order []int
	for _, e := range entries {
		if e.RecordID == 555 {
			continue // the queried record sorts by its own date
		}
		order = append(order, e.RecordID)
	}
	want := []int{3, 2, 1} // 2.0 > 1.10 > 1.2
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

// --- formatting ---

func TestFormatTable(t *testing.T) {
	entries := []Entry{
		{RecordID: 555, Version: "2", PublicationDate: "2023-02-01", DOI: "10.5281/zenodo.555", Title: "Alpha"},
	}
	var buf bytes.Buffer
	FormatTable(entries, &buf)
	out := buf.String()
	for _, want := range []string{"555", "2023-02-01", "10.5281/zenodo.555", "Alpha", "1 version(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	if !strings.Contains(buf.String(), "No versions found.") {
		t.Errorf("output = %q", buf.String())
	}
}
