// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zenodo

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is a published Zenodo record as returned by /api/records.
type Record struct {
	ID           int            `json:"id"`
	ConceptRecID string         `json:"conceptrecid,omitempty"`
	ConceptDOI   string         `json:"conceptdoi,omitempty"`
	DOI          string         `json:"doi,omitempty"`
	Metadata     RecordMetadata `json:"metadata"`
	Files        []FileEntry    `json:"files,omitempty"`
	Links        RecordLinks    `json:"links,omitempty"`
}

// RecordMetadata holds the metadata block of a record.
type RecordMetadata struct {
	Title           string    `json:"title,omitempty"`
	Creators        []Creator `json:"creators,omitempty"`
	PublicationDate string    `json:"publication_date,omitempty"`
	Description     string    `json:"description,omitempty"`
	Keywords        []string  `json:"keywords,omitempty"`
	DOI             string    `json:"doi,omitempty"`
	Version         string    `json:"version,omitempty"`
}

// Creator is an author entry shared by records and depositions.
type Creator struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
}

// CreatorNames joins creator names with ", " for display.
func CreatorNames(creators []Creator) string {
	names := make([]string, len(creators))
	for i, c := range creators {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

// FileEntry is a file attached to a record or deposition. The checksum
// comes as "md5:<hex>".
type FileEntry struct {
	Key      string    `json:"key"`
	Checksum string    `json:"checksum,omitempty"`
	Size     int64     `json:"size"`
	Links    FileLinks `json:"links"`
}

// FileLinks holds the download URL for a file entry.
type FileLinks struct {
	Self string `json:"self,omitempty"`
}

// RecordLinks holds the hypermedia links of a record.
type RecordLinks struct {
	Self string `json:"self,omitempty"`
	HTML string `json:"html,omitempty"`
}

// SearchResponse is the envelope returned by the records search endpoint.
type SearchResponse struct {
	Hits Hits `json:"hits"`
}

// Hits holds the matched records and the total count.
type Hits struct {
	Hits  []Record `json:"hits"`
	Total Total    `json:"total"`
}

// Total decodes the hits.total field, which older Zenodo deployments
// return as a bare integer and newer ones as {"value": N, "relation": ...}.
type Total int

// UnmarshalJSON accepts both the integer and the object form.
func (t *Total) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var obj struct {
			Value int `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("parsing hits.total object: %w", err)
		}
		*t = Total(obj.Value)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parsing hits.total: %w", err)
	}
	*t = Total(n)
	return nil
}

// Deposition is the mutable draft form of a record, identified by a
// deposition ID with an associated upload bucket.
type Deposition struct {
	ID           int                 `json:"id"`
	ConceptRecID string              `json:"conceptrecid,omitempty"`
	DOI          string              `json:"doi,omitempty"`
	Metadata     DepositionMetadata  `json:"metadata,omitempty"`
	Files        []FileEntry         `json:"files,omitempty"`
	Links        DepositionLinks     `json:"links"`
	State        string              `json:"state,omitempty"`
	Submitted    bool                `json:"submitted,omitempty"`
}

// DepositionMetadata is the metadata payload sent when updating a
// deposition, wrapped as {"metadata": {...}} on the wire.
type DepositionMetadata struct {
	Title           string      `json:"title,omitempty"`
	UploadType      string      `json:"upload_type,omitempty"`
	Description     string      `json:"description,omitempty"`
	Creators        []Creator   `json:"creators,omitempty"`
	Keywords        []string    `json:"keywords,omitempty"`
	Communities     []Community `json:"communities,omitempty"`
	PublicationDate string      `json:"publication_date,omitempty"`
	Version         string      `json:"version,omitempty"`
}

// Community restricts a deposition to a Zenodo community.
type Community struct {
	Identifier string `json:"identifier"`
}

// DepositionLinks holds the hypermedia links of a deposition.
type DepositionLinks struct {
	Bucket      string `json:"bucket,omitempty"`
	HTML        string `json:"html,omitempty"`
	RecordHTML  string `json:"record_html,omitempty"`
	LatestDraft string `json:"latest_draft,omitempty"`
	Self        string `json:"self,omitempty"`
}

// LatestDraftID extracts the new draft's deposition ID from the
// links.latest_draft URL returned by the newversion action.
func (d *Deposition) LatestDraftID() (int, error) {
	draftURL := d.Links.LatestDraft
	if draftURL == "" {
		return 0, fmt.Errorf("deposition %d has no latest_draft link", d.ID)
	}
	tail := draftURL[strings.LastIndex(draftURL, "/")+1:]
	id, err := strconv.Atoi(tail)
	if err != nil {
		return 0, fmt.Errorf("parsing draft ID from %q: %w", draftURL, err)
	}
	return id, nil
}
