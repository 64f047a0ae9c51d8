package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zenodo-cli/internal/versions"
)

var versionsCmd = &cobra.Command{
	Use:   "versions record_id",
	Short: "List a record's reconstructed version history",
	Long: `Versions reconstructs the version history of a record by running
several searches (concept DOI, DOI prefix, concept record ID, title
words) and merging the results. The reconstruction is best-effort: the
API does not expose a canonical version list for an arbitrary record.`,
	Args: cobra.ExactArgs(1),
	RunE: runVersions,
}

func init() {
	versionsCmd.Flags().Bool("json", false, "output the version history as JSON")

	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	entries, err := versions.History(context.Background(), newClient(cmd), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return versions.FormatJSON(entries, os.Stdout)
	}
	versions.FormatTable(entries, os.Stdout)
	return nil
}
