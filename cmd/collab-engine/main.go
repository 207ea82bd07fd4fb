// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the collab-engine CLI.
// Implements: prd010-engine (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/collab-engine/internal/engine"
	"github.com/pdiddy/collab-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// Exit codes: configuration errors and strict-input errors are
// distinguishable for scripting; everything else is 1.
const (
	exitConfig = 2
	exitInput  = 3
)

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the collab-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "collab-engine",
	Short: "Rank collaborators from Microsoft 365 interaction signals",
	Long: `collab-engine fuses calendar, Teams chat, document sharing, and Graph
people-ranking snapshots into a single ranked, deduplicated collaborator
list with dormancy labels and per-person evidence.

The analyze subcommand runs the full pipeline over JSON snapshot files.
The classify and taxonomy subcommands expose the meeting classifier for
inspection and debugging.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environments set variables directly.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./collab-engine.yaml or ~/.config/collab-engine/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("collab-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "collab-engine"))
		}
	}

	viper.SetEnvPrefix("COLLAB_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the diagnostics logger. All diagnostics go to stderr;
// stdout stays reserved for requested output.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.InfoLevel
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		switch {
		case errors.Is(err, engine.ErrConfig):
			os.Exit(exitConfig)
		case errors.Is(err, engine.ErrInput):
			os.Exit(exitInput)
		}
		os.Exit(1)
	}
}
