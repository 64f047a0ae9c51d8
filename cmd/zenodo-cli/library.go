// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/zenodo-cli/internal/library"
	"github.com/pdiddy/zenodo-cli/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Browse the local index of downloaded records",
	Long: `Library manages a local SQLite index of every record downloaded by
this tool. Use subcommands to list past downloads, search them offline,
or export the index.`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloaded records, most recent first",
	RunE:  runLibraryList,
}

var librarySearchCmd = &cobra.Command{
	Use:   "search query",
	Short: "Full-text search over downloaded records",
	Long: `Search matches the query against the titles and descriptions of
indexed records using SQLite FTS5.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLibrarySearch,
}

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library index to YAML or JSON",
	RunE:  runLibraryExport,
}

func init() {
	libraryCmd.PersistentFlags().String("library-dir", "", "library directory (default ~/.local/share/zenodo-cli)")
	libraryCmd.PersistentFlags().Int("limit", 0, "maximum results (0 = use default)")
	libraryCmd.PersistentFlags().Bool("json", false, "output as JSON")

	libraryExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(libraryExportCmd)

	rootCmd.AddCommand(libraryCmd)
}

func libraryStore(cmd *cobra.Command) (*library.Store, error) {
	dir, _ := cmd.Flags().GetString("library-dir")
	if dir == "" {
		dir = viper.GetString("library_dir")
	}
	return library.NewStore(types.LibraryConfig{Dir: dir})
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	store, err := libraryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatLibraryEntries(entries, jsonOutput)
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	store, err := libraryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatLibraryEntries(entries, jsonOutput)
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	store, err := libraryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")
	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background())
	case "json":
		path, err = store.ExportJSON(context.Background())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", path)
	return nil
}

func formatLibraryEntries(entries []types.LibraryEntry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No records in the library.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-45s  %-12s  %-6s  %s\n",
		"Record", "Title", "Published", "Files", "Fetched")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, e := range entries {
		title := e.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-10d  %-45s  %-12s  %-6d  %s\n",
			e.RecordID, title, e.PublicationDate, e.Files, e.FetchedAt.Format("2006-01-02"))
	}

	fmt.Fprintf(os.Stdout, "\n%d record(s)\n", len(entries))
	return nil
}
