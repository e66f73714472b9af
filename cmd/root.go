// Package cmd implements the cashplan CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashplan/internal/advisor"
	"github.com/theirongolddev/cashplan/internal/config"
	"github.com/theirongolddev/cashplan/internal/log"
	"github.com/theirongolddev/cashplan/internal/store"
)

var (
	flagConfig  string
	flagVerbose bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "cashplan",
	Short: "Cash cushion and monthly card limit advisor",
	Long: "Classify cards against their bank's monthly outflow limit, size the " +
		"foreign-currency sale that restores your cash cushion, and plan where " +
		"to deposit the proceeds.",
	SilenceUsage: true,
	RunE:         runAdvise,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
}

func newLogger() zerolog.Logger {
	cfg := log.DefaultConfig()
	switch {
	case flagVerbose:
		cfg.Level = zerolog.DebugLevel
	case flagQuiet:
		cfg.Level = zerolog.ErrorLevel
	}
	return log.New(cfg)
}

func loadConfig() (config.Config, error) {
	if flagConfig != "" {
		return config.LoadFrom(flagConfig)
	}
	return config.Load()
}

// loadSettings is the shared setup path: config, validated settings, and
// the opened ledger. The caller closes the ledger.
func loadSettings(logger zerolog.Logger) (config.Config, advisor.Settings, *store.Ledger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, advisor.Settings{}, nil, err
	}
	settings, err := cfg.Advisory()
	if err != nil {
		return cfg, settings, nil, fmt.Errorf("%w (run `cashplan setup` to configure)", err)
	}

	ledger, err := store.Open(cfg.DBPath(), store.Tables{
		Primary:  cfg.Ledger.PrimaryTable,
		Fallback: cfg.Ledger.FallbackTable,
	}, logger)
	if err != nil {
		return cfg, settings, nil, err
	}
	return cfg, settings, ledger, nil
}
