package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zenodo-cli/internal/deposit"
)

var publishCmd = &cobra.Command{
	Use:   "publish deposition_id",
	Short: "Publish a draft deposition",
	Long: `Publish issues the publish action for a draft deposition, making it a
public, immutable record. Requires an access token.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	depositionID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid deposition ID %q", args[0])
	}

	url, err := deposit.Publish(context.Background(), newClient(cmd), depositionID, os.Stdout)
	if err != nil {
		return err
	}
	if url != "" {
		fmt.Printf("Record URL: %s\n", url)
	}
	return nil
}
