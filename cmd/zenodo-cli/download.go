package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/zenodo-cli/internal/download"
	"github.com/pdiddy/zenodo-cli/internal/library"
	"github.com/pdiddy/zenodo-cli/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download record_id [output_dir]",
	Short: "Download all files from a Zenodo record",
	Long: `Download fetches a record's metadata and streams each of its files to
the output directory (default: current directory). Files are verified
against the md5 checksum the API advertises unless --no-verify is set.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

var downloadKeywordsCmd = &cobra.Command{
	Use:   "download-via-keywords keyword [keyword...] [output_dir]",
	Short: "Download files from records matching keywords",
	Long: `Download-via-keywords searches for records matching the keywords and
downloads each matching record into its own numbered subdirectory with a
metadata.json. The last argument is treated as the output directory when
it names an existing directory or looks like a path.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownloadKeywords,
}

func init() {
	downloadCmd.Flags().Bool("metadata", false, "also write metadata.json next to the files")
	downloadCmd.Flags().Bool("no-verify", false, "skip md5 checksum verification")

	downloadKeywordsCmd.Flags().Int("max-records", 10, "maximum number of records to download")
	downloadKeywordsCmd.Flags().StringP("sort", "s", "bestmatch", "sort order: 'bestmatch' or 'mostrecent'")
	downloadKeywordsCmd.Flags().Duration("delay", 0, "delay between consecutive records")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(downloadKeywordsCmd)
}

// openLibrary opens the download index. Failures are reported as a
// warning; downloads proceed unindexed.
func openLibrary() *library.Store {
	store, err := library.NewStore(types.LibraryConfig{Dir: viper.GetString("library_dir")})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open library index: %v\n", err)
		return nil
	}
	return store
}

// recorderOrNil avoids a non-nil interface wrapping a nil *Store.
func recorderOrNil(store *library.Store) download.Recorder {
	if store == nil {
		return nil
	}
	return store
}

func runDownload(cmd *cobra.Command, args []string) error {
	recordID := args[0]
	outputDir := ""
	if len(args) > 1 {
		outputDir = args[1]
	}

	writeMetadata, _ := cmd.Flags().GetBool("metadata")
	noVerify, _ := cmd.Flags().GetBool("no-verify")

	cfg := types.DownloadConfig{
		HTTPConfig:     types.HTTPConfig{UserAgent: defaultUserAgent},
		WriteMetadata:  writeMetadata,
		VerifyChecksum: !noVerify,
	}

	store := openLibrary()
	if store != nil {
		defer store.Close()
	}

	return download.Record(context.Background(), newClient(cmd), recordID, outputDir, cfg, recorderOrNil(store), os.Stdout)
}

func runDownloadKeywords(cmd *cobra.Command, args []string) error {
	keywords, outputDir := splitKeywordArgs(args)
	if len(keywords) == 0 {
		return fmt.Errorf("provide one or more keywords to search for")
	}
	if outputDir != "" {
		fmt.Printf("Using output directory: %s\n", outputDir)
	}

	maxRecords, _ := cmd.Flags().GetInt("max-records")
	sortOrder, _ := cmd.Flags().GetString("sort")
	delay, _ := cmd.Flags().GetDuration("delay")

	cfg := types.DownloadConfig{
		HTTPConfig:     types.HTTPConfig{UserAgent: defaultUserAgent},
		WriteMetadata:  true,
		VerifyChecksum: true,
		MaxRecords:     maxRecords,
		Sort:           sortOrder,
		Delay:          delay,
	}

	store := openLibrary()
	if store != nil {
		defer store.Close()
	}

	result, err := download.ByQuery(context.Background(), newClient(cmd), keywords, outputDir, cfg, recorderOrNil(store), os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d record(s) failed to download", result.Failed)
	}
	return nil
}

// splitKeywordArgs peels a trailing output directory off the keyword
// list: the last argument counts as a directory when it already exists
// as one or contains a path separator. An empty last argument stays a
// keyword.
func splitKeywordArgs(args []string) (keywords []string, outputDir string) {
	if len(args) < 2 {
		return args, ""
	}
	last := args[len(args)-1]
	if last == "" {
		return args, ""
	}
	if info, err := os.Stat(last); err == nil && info.IsDir() {
		return args[:len(args)-1], last
	}
	if os.IsPathSeparator(last[0]) || last[0] == '.' || containsPathSep(last) {
		return args[:len(args)-1], last
	}
	return args, ""
}

func containsPathSep(s string) bool {
	for i := 0; i < len(s); i++ {
		if os.IsPathSeparator(s[i]) {
			return true
		}
	}
	return false
}
