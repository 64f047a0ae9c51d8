// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deposit

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"

	"github.com/pdiddy/zenodo-cli/pkg/types"
)

// descriptionMD renders description files. Zenodo descriptions are
// HTML, so Markdown is converted with GFM extensions.
var descriptionMD = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		&frontmatter.Extender{},
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithXHTML(),
	),
)

// LoadDescriptionFile reads a Markdown description file, renders its
// body to HTML, and merges any YAML frontmatter (title, keywords,
// upload_type, creators, communities) into meta. Fields already set in
// meta win over frontmatter values; the rendered body always becomes
// the description.
func LoadDescriptionFile(path string, meta *types.DepositMeta) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading description file: %w", err)
	}

	var buf bytes.Buffer
	pc := parser.NewContext()
	if err := descriptionMD.Convert(src, &buf, parser.WithContext(pc)); err != nil {
		return fmt.Errorf("rendering description file: %w", err)
	}
	meta.Description = buf.String()

	fm := frontmatter.Get(pc)
	if fm == nil {
		return nil
	}

	var fromFile types.DepositMeta
	if err := fm.Decode(&fromFile); err != nil {
		return fmt.Errorf("parsing description frontmatter: %w", err)
	}

	if meta.Title == "" {
		meta.Title = fromFile.Title
	}
	if meta.UploadType == "" {
		meta.UploadType = fromFile.UploadType
	}
	if len(meta.Keywords) == 0 {
		meta.Keywords = fromFile.Keywords
	}
	if len(meta.Creators) == 0 {
		meta.Creators = fromFile.Creators
	}
	if len(meta.Communities) == 0 {
		meta.Communities = fromFile.Communities
	}
	return nil
}
