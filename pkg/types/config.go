package types

import "time"

// HTTPConfig holds shared HTTP settings used by commands that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "zenodo-cli/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search command.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the number of results per page (default 20).
	PageSize int `json:"page_size" yaml:"page_size"`

	// Page is the 1-based page number to retrieve.
	Page int `json:"page" yaml:"page"`

	// Sort is "bestmatch" or "mostrecent".
	Sort string `json:"sort" yaml:"sort"`

	// Community restricts results to a Zenodo community.
	Community string `json:"community,omitempty" yaml:"community,omitempty"`
}

// DownloadConfig holds settings for the download commands.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// WriteMetadata also writes a metadata.json next to the files.
	WriteMetadata bool `json:"write_metadata" yaml:"write_metadata"`

	// VerifyChecksum checks each file against the md5 checksum the API
	// advertises. On by default; --no-verify disables it.
	VerifyChecksum bool `json:"verify_checksum" yaml:"verify_checksum"`

	// MaxRecords caps how many records a keyword download fetches (default 10).
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// Sort is the search sort order for keyword downloads.
	Sort string `json:"sort" yaml:"sort"`

	// Delay is a politeness delay between consecutive records.
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// UploadConfig holds settings for the upload commands.
type UploadConfig struct {
	HTTPConfig `yaml:",inline"`

	// Draft leaves the deposition unpublished. Without it the publish
	// action is always attempted after file upload.
	Draft bool `json:"draft" yaml:"draft"`

	// DefaultCreator is used when no creators are given.
	DefaultCreator string `json:"default_creator,omitempty" yaml:"default_creator,omitempty"`
}

// LibraryConfig holds settings for the local download index.
type LibraryConfig struct {
	// Dir is the directory holding library.db
	// (default ~/.local/share/zenodo-cli).
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
