// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DepositMeta is the user-facing metadata for a new deposition, as
// gathered from flags and description-file frontmatter. Empty fields
// get defaults before the metadata is sent.
type DepositMeta struct {
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	UploadType  string   `json:"upload_type,omitempty" yaml:"upload_type,omitempty"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Creators    []string `json:"creators,omitempty" yaml:"creators,omitempty"`
	Communities []string `json:"communities,omitempty" yaml:"communities,omitempty"`
}
