// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deposit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/zenodo-cli/pkg/types"
)

func writeDescription(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "description.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDescriptionFileRendersHTML(t *testing.T) {
	path := writeDescription(t, "# Results\n\nThis dataset holds **raw** measurements.\n")

	var meta types.DepositMeta
	require.NoError(t, LoadDescriptionFile(path, &meta))

	assert.Contains(t, meta.Description, "<h1>Results</h1>")
	assert.Contains(t, meta.Description, "<strong>raw</strong>")
}

func TestLoadDescriptionFileRendersGFMTable(t *testing.T) {
	path := writeDescription(t, "| run | value |\n| --- | --- |\n| 1 | 3.2 |\n")

	var meta types.DepositMeta
	require.NoError(t, LoadDescriptionFile(path, &meta))

	assert.Contains(t, meta.Description, "<table>")
}

func TestLoadDescriptionFileFrontmatter(t *testing.T) {
	path := writeDescription(t, `---
title: Salinity Profiles 2023
upload_type: publication
keywords: [ocean, salinity]
creators: ["Doe, Jane"]
communities: [oceanography]
---

Body text.
`)

	var meta types.DepositMeta
	require.NoError(t, LoadDescriptionFile(path, &meta))

	assert.Equal(t, "Salinity Profiles 2023", meta.Title)
	assert.Equal(t, "publication", meta.UploadType)
	assert.Equal(t, []string{"ocean", "salinity"}, meta.Keywords)
	assert.Equal(t, []string{"Doe, Jane"}, meta.Creators)
	assert.Equal(t, []string{"oceanography"}, meta.Communities)
	assert.Contains(t, meta.Description, "Body text.")
	assert.NotContains(t, meta.Description, "Salinity Profiles 2023",
		"frontmatter must not leak into the rendered body")
}

func TestLoadDescriptionFileExplicitFieldsWin(t *testing.T) {
	path := writeDescription(t, `---
title: From File
keywords: [file]
---

Body.
`)

	meta := types.DepositMeta{Title: "From Flag", Keywords: []string{"flag"}}
	require.NoError(t, LoadDescriptionFile(path, &meta))

	assert.Equal(t, "From Flag", meta.Title)
	assert.Equal(t, []string{"flag"}, meta.Keywords)
}

func TestLoadDescriptionFileMissing(t *testing.T) {
	var meta types.DepositMeta
	err := LoadDescriptionFile(filepath.Join(t.TempDir(), "nope.md"), &meta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading description file")
}
