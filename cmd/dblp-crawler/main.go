// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dblp-crawler CLI. The crawl
// subcommand runs a batch of DBLP queries; export rebuilds the workbook
// from crawl history without touching the network.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the dblp-crawler CLI.
var rootCmd = &cobra.Command{
	Use:   "dblp-crawler",
	Short: "Harvest DBLP publication listings into spreadsheet reports",
	Long: `dblp-crawler queries the DBLP publication search API for every
keyword x venue x year combination, tolerating rate limits and transient
failures, and aggregates the results into an Excel workbook with one sheet
per keyword. Completed queries are recorded in a local SQLite database so
interrupted batches can resume, and per-publication BibTeX records can be
downloaded alongside.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./dblp-crawler.yaml or ~/.config/dblp-crawler/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit JSON log lines instead of console output")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dblp-crawler")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dblp-crawler"))
		}
	}

	viper.SetEnvPrefix("DBLP_CRAWLER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.BindPFlags(rootCmd.PersistentFlags())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the run's logger from the persistent flags. Everything
// downstream receives this value explicitly; no global logger state.
func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stderr
	if viper.GetBool("log-json") {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(level).With().Timestamp().Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
