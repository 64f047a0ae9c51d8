package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/zenodo-cli/internal/deposit"
	"github.com/pdiddy/zenodo-cli/pkg/types"
)

var uploadCmd = &cobra.Command{
	Use:   "upload file",
	Short: "Upload a file to Zenodo as a new deposition",
	Long: `Upload creates a new deposition, sets its metadata, streams the file
into the deposition's bucket, and publishes it. Pass --draft to leave
the deposition unpublished. Requires an access token.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var uploadMultipleCmd = &cobra.Command{
	Use:   "upload-multiple file [file...]",
	Short: "Upload several files as a single deposition",
	Long: `Upload-multiple creates one deposition holding all the given files.
A failed file logs a warning and the rest continue; when every file
fails the command errors and nothing is published.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	for _, cmd := range []*cobra.Command{uploadCmd, uploadMultipleCmd} {
		cmd.Flags().String("title", "", "title for the upload (default: first file's name)")
		cmd.Flags().String("description", "", "description for the upload")
		cmd.Flags().String("description-file", "", "Markdown file rendered to HTML as the description (optional YAML frontmatter carries metadata)")
		cmd.Flags().String("keywords", "", "comma-separated list of keywords")
		cmd.Flags().String("type", "", "upload type (default: dataset)")
		cmd.Flags().String("creators", "", "semicolon-separated creator names")
		cmd.Flags().String("community", "", "Zenodo community for the deposition")
		cmd.Flags().Bool("draft", false, "leave the deposition as a draft instead of publishing")
	}

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(uploadMultipleCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	meta, err := depositMetaFromFlags(cmd)
	if err != nil {
		return err
	}

	draft, _ := cmd.Flags().GetBool("draft")
	cfg := types.UploadConfig{
		HTTPConfig:     types.HTTPConfig{UserAgent: defaultUserAgent},
		Draft:          draft,
		DefaultCreator: viper.GetString("default_creator"),
	}

	result, err := deposit.Upload(context.Background(), newClient(cmd), args, meta, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.URL != "" {
		fmt.Printf("Record URL: %s\n", result.URL)
	}
	return nil
}

// depositMetaFromFlags gathers deposition metadata from flags and an
// optional description file. Explicit flags win over frontmatter.
func depositMetaFromFlags(cmd *cobra.Command) (types.DepositMeta, error) {
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	uploadType, _ := cmd.Flags().GetString("type")
	keywords, _ := cmd.Flags().GetString("keywords")
	creators, _ := cmd.Flags().GetString("creators")
	community, _ := cmd.Flags().GetString("community")
	if community == "" {
		community = viper.GetString("community")
	}

	meta := types.DepositMeta{
		Title:       title,
		Description: description,
		UploadType:  uploadType,
		Keywords:    splitList(keywords, ","),
		Creators:    splitList(creators, ";"),
	}
	if community != "" {
		meta.Communities = []string{community}
	}

	if descFile, _ := cmd.Flags().GetString("description-file"); descFile != "" {
		if meta.Description != "" {
			return meta, fmt.Errorf("--description and --description-file are mutually exclusive")
		}
		if err := deposit.LoadDescriptionFile(descFile, &meta); err != nil {
			return meta, err
		}
	}
	return meta, nil
}

// splitList splits a separated flag value, dropping empty elements.
func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
