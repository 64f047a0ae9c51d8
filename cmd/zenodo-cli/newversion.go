package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zenodo-cli/internal/deposit"
)

var newVersionCmd = &cobra.Command{
	Use:   "version deposition_id [file...]",
	Short: "Create a new version of a published deposition",
	Long: `Version creates a new version draft of a published deposition and
optionally uploads replacement or additional files into the new draft's
bucket. The draft stays unpublished unless --publish is set. Requires an
access token.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNewVersion,
}

func init() {
	newVersionCmd.Flags().Bool("publish", false, "publish the new version after uploading")

	rootCmd.AddCommand(newVersionCmd)
}

func runNewVersion(cmd *cobra.Command, args []string) error {
	depositionID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid deposition ID %q", args[0])
	}
	publish, _ := cmd.Flags().GetBool("publish")

	result, err := deposit.NewVersion(context.Background(), newClient(cmd), depositionID, args[1:], publish, os.Stdout)
	if err != nil {
		return err
	}
	if result.URL != "" {
		fmt.Printf("Record URL: %s\n", result.URL)
	}
	return nil
}
