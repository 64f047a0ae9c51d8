package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/zenodo-cli/internal/search"
	"github.com/pdiddy/zenodo-cli/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search keyword [keyword...]",
	Short: "Search Zenodo records by keyword",
	Long: `Search queries the Zenodo records endpoint. Multiple keywords are
combined with AND. Results show title, authors, publication date, DOI,
record URL, and a truncated description.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntP("results", "r", 20, "number of results per page")
	searchCmd.Flags().IntP("page", "p", 1, "page number to retrieve")
	searchCmd.Flags().StringP("sort", "s", "bestmatch", "sort order: 'bestmatch' or 'mostrecent'")
	searchCmd.Flags().String("community", "", "restrict results to a Zenodo community")
	searchCmd.Flags().Bool("save", false, "save results to a JSON file")
	searchCmd.Flags().StringP("output", "o", "zenodo_results.json", "output filename for saved results")
	searchCmd.Flags().Bool("json", false, "print results as JSON instead of the listing")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	pageSize, _ := cmd.Flags().GetInt("results")
	page, _ := cmd.Flags().GetInt("page")
	sortOrder, _ := cmd.Flags().GetString("sort")
	community, _ := cmd.Flags().GetString("community")
	if community == "" {
		community = viper.GetString("community")
	}
	if sortOrder != "bestmatch" && sortOrder != "mostrecent" {
		return fmt.Errorf("invalid sort order %q: use 'bestmatch' or 'mostrecent'", sortOrder)
	}

	cfg := types.SearchConfig{
		PageSize:  pageSize,
		Page:      page,
		Sort:      sortOrder,
		Community: community,
	}

	client := newClient(cmd)
	fmt.Printf("Searching Zenodo for: %s\n", strings.Join(args, " AND "))

	resp, err := search.Run(context.Background(), client, args, cfg)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if err := search.FormatJSON(resp, os.Stdout); err != nil {
			return err
		}
	} else {
		search.DisplayResults(resp, client.SiteURL(), os.Stdout)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		output, _ := cmd.Flags().GetString("output")
		if err := search.SaveResults(resp, output); err != nil {
			return err
		}
		fmt.Printf("Results saved to %s\n", output)
	}
	return nil
}
