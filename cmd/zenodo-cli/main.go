// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the zenodo-cli tool: search,
// download, upload, versioning, and publishing against the Zenodo
// research-data repository.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/zenodo-cli/internal/secrets"
	"github.com/pdiddy/zenodo-cli/internal/zenodo"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "zenodo-cli/0.1"

	tokenEnvVar     = "ZENODO_ACCESS_TOKEN"
	tokenSecretName = "zenodo-access-token"
)

// loadedSecrets holds tokens loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the zenodo-cli tool.
var rootCmd = &cobra.Command{
	Use:     "zenodo-cli",
	Short:   "Command-line client for the Zenodo research-data repository",
	Version: version,
	Long: `zenodo-cli talks to the Zenodo REST API. It searches records by keyword,
downloads record files, uploads files as new depositions, creates new
versions of existing depositions, publishes drafts, and reconstructs a
record's version history.

Search and download work without a token. Upload, version, and publish
need a Zenodo access token: pass --token, set ZENODO_ACCESS_TOKEN (a .env
file in the working directory is loaded at startup), or put the token in
.secrets/zenodo-access-token.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env before anything reads the environment.
		godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./zenodo-cli.yaml or ~/.config/zenodo-cli/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "Zenodo API base URL (default https://zenodo.org/api)")
	rootCmd.PersistentFlags().Bool("sandbox", false, "use the Zenodo sandbox instance")
	rootCmd.PersistentFlags().StringP("token", "t", "", "Zenodo API access token (overrides .env)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("zenodo-cli")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "zenodo-cli"))
		}
	}

	viper.SetEnvPrefix("ZENODO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolveToken returns the access token for this invocation: the --token
// flag wins, then the environment (after the .env load), then the
// secrets directory, then the config file. Empty means anonymous.
func resolveToken(cmd *cobra.Command) string {
	if token, _ := cmd.Flags().GetString("token"); token != "" {
		return token
	}
	if token := os.Getenv(tokenEnvVar); token != "" {
		return token
	}
	if token, ok := loadedSecrets[tokenSecretName]; ok {
		return token
	}
	return viper.GetString("access_token")
}

// apiBase resolves the API root: --base-url outright, else the sandbox
// switch, else the configured or default production root.
func apiBase(cmd *cobra.Command) string {
	if base, _ := cmd.Flags().GetString("base-url"); base != "" {
		return base
	}
	if sandbox, _ := cmd.Flags().GetBool("sandbox"); sandbox {
		return zenodo.SandboxBaseURL
	}
	if base := viper.GetString("base_url"); base != "" {
		return base
	}
	return zenodo.DefaultBaseURL
}

// newClient builds the API client for a command invocation.
func newClient(cmd *cobra.Command) *zenodo.Client {
	timeout := viper.GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	c := zenodo.New(apiBase(cmd), resolveToken(cmd), &http.Client{Timeout: timeout})
	c.UserAgent = defaultUserAgent
	return c
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
