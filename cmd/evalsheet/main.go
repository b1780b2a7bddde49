// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the evalsheet CLI, a client for the
// remote answer-sheet evaluation service: manage model answers, upload and
// evaluate student answer sheets, and browse historical results including
// the explainable-AI breakdown.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evalsheet/internal/api"
	"github.com/pdiddy/evalsheet/internal/session"
	"github.com/pdiddy/evalsheet/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "evalsheet/0.1"
	defaultBaseURL   = "http://localhost:8000"
)

// logger is the process logger; --verbose raises it to debug level.
var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()

// rootCmd is the base command for the evalsheet CLI.
var rootCmd = &cobra.Command{
	Use:   "evalsheet",
	Short: "Client for the answer-sheet evaluation service",
	Long: `evalsheet submits scanned or typed student answer sheets to the remote
OCR and semantic-scoring service and browses the results.

Typical flow: create model answers with "answers create", submit a sheet
with "evaluate", and inspect past evaluations with "results list" and
"results show". Local submission attempts are logged to a journal viewable
with "history".`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger = logger.Level(zerolog.DebugLevel)
		}
		cmd.SetContext(logger.WithContext(cmd.Context()))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./evalsheet.yaml or ~/.config/evalsheet/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("evalsheet")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "evalsheet"))
		}
	}

	viper.SetEnvPrefix("EVALSHEET")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configDir returns the directory for local state (session, journal).
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evalsheet"
	}
	return filepath.Join(home, ".config", "evalsheet")
}

// loadConfig assembles the client configuration from viper with defaults.
func loadConfig() types.ClientConfig {
	cfg := types.ClientConfig{
		Service: types.ServiceConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   defaultTimeout,
				UserAgent: defaultUserAgent,
			},
			BaseURL: defaultBaseURL,
		},
		Journal: types.JournalConfig{Dir: configDir()},
	}

	if v := viper.GetString("service.base_url"); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := viper.GetDuration("service.timeout"); v > 0 {
		cfg.Service.Timeout = v
	}
	if v := viper.GetString("service.user_agent"); v != "" {
		cfg.Service.UserAgent = v
	}
	if v := viper.GetInt("service.max_retries"); v > 0 {
		cfg.Service.MaxRetries = v
	}
	if v := viper.GetString("journal.dir"); v != "" {
		cfg.Journal.Dir = v
	}
	if v := viper.GetInt("journal.max_entries"); v > 0 {
		cfg.Journal.MaxEntries = v
	}
	return cfg
}

// newClient builds an API client with the stored session token attached.
func newClient(cfg types.ClientConfig) *api.Client {
	token, err := session.Load(configDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not read session: %v\n", err)
	}
	return api.New(cfg.Service, token)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
