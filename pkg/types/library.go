// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// LibraryEntry is one downloaded record as indexed in the local
// library database.
type LibraryEntry struct {
	RecordID        int       `json:"record_id" yaml:"record_id"`
	Title           string    `json:"title" yaml:"title"`
	Creators        []string  `json:"creators,omitempty" yaml:"creators,omitempty"`
	DOI             string    `json:"doi,omitempty" yaml:"doi,omitempty"`
	ConceptDOI      string    `json:"concept_doi,omitempty" yaml:"concept_doi,omitempty"`
	Version         string    `json:"version,omitempty" yaml:"version,omitempty"`
	PublicationDate string    `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	Description     string    `json:"description,omitempty" yaml:"description,omitempty"`
	Files           int       `json:"files" yaml:"files"`
	DestPath        string    `json:"dest_path,omitempty" yaml:"dest_path,omitempty"`
	FetchedAt       time.Time `json:"fetched_at" yaml:"fetched_at"`
}
