// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the newspulse CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/newspulse/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// Credential environment variables. Each one takes precedence over the
// matching file in .secrets/.
const (
	envNewsAPIKey     = "NEWS_API_KEY"
	envHuggingFaceKey = "HUGGINGFACE_API_KEY"
	envAnthropicKey   = "ANTHROPIC_API_KEY"
)

// rootCmd is the base command for the newspulse CLI.
var rootCmd = &cobra.Command{
	Use:   "newspulse",
	Short: "Fetch news, classify headline sentiment, and report",
	Long: `newspulse fetches recent articles for a query from a news search
service, classifies each headline's sentiment through a hosted model, and
aggregates the labels into a report.

Run a single analysis with "analyze", serve the pipeline over HTTP with
"serve", replay a serverless event with "invoke", and browse archived runs
with "history".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", slog.New(slog.NewTextHandler(os.Stderr, nil)))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./newspulse.yaml or ~/.config/newspulse/newspulse.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log pipeline progress to stderr")
}

func initConfig() {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("newspulse")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "newspulse"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("NEWSPULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
