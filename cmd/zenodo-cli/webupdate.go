package main

import (
	"fmt"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

var webUpdateCmd = &cobra.Command{
	Use:   "web-update record_id",
	Short: "Open a record's deposit page in the browser for manual updates",
	Long: `Web-update opens the deposit edit page for a record in the default
browser, for changes the API cannot make. Pass --record to open the
public record view instead. When no browser can be started the URL is
printed for manual use.`,
	Args: cobra.ExactArgs(1),
	RunE: runWebUpdate,
}

func init() {
	webUpdateCmd.Flags().Bool("record", false, "open the public record page instead of the deposit edit page")

	rootCmd.AddCommand(webUpdateCmd)
}

func runWebUpdate(cmd *cobra.Command, args []string) error {
	site := newClient(cmd).SiteURL()

	url := site + "/deposit/" + args[0]
	if record, _ := cmd.Flags().GetBool("record"); record {
		url = site + "/record/" + args[0]
	}

	if err := open.Start(url); err != nil {
		fmt.Println("Could not start a browser. Open this URL manually:")
	}
	fmt.Println(url)
	return nil
}
