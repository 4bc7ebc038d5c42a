// Package cmd implements the tablematch command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tablematch/tablematch/internal/config"
	"github.com/tablematch/tablematch/pkg/logging"
)

var (
	configFile string

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tablematch",
	Short: "Reconcile two tabular datasets under a declared column mapping",
	Long: `Tablematch classifies every row of a candidate table as matched,
unmatched, or ambiguous against a position table, using a user-configurable
mapping from arbitrary source columns to canonical match fields.

Matching runs three engines in a fixed fallback order: exact key, fuzzy
signature, and multi-key fallback. Data problems (duplicate keys, zero
matches, ties) surface as report rows, never as failures.`,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and runs it with a
// signal-aware context so long matches can be canceled cleanly.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
	rootCmd.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.tablematch.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "auto", "log format (auto, console, json)")

	for _, flag := range []string{"log-level", "log-format"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	// A .env file is optional; ignore a missing one.
	_ = godotenv.Load()

	config.SetDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".tablematch")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		logging.Default().Debug().
			Str("config_file", viper.ConfigFileUsed()).
			Msg("Loaded config file")
	}
}

// setup configures logging before any subcommand runs.
func setup(_ *cobra.Command, _ []string) error {
	settings := config.LoadSettings()
	logging.Configure(&logging.Config{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
	})
	return nil
}
