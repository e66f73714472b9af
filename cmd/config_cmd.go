package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashplan/internal/config"
	"github.com/theirongolddev/cashplan/internal/publish"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := flagConfig
	if path == "" {
		path = config.Path()
	}
	fmt.Printf("  Config file: %s\n", path)
	if config.Exists() || flagConfig != "" {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currencies: %s / %s\n", cfg.General.LocalCurrency, cfg.General.ForeignCurrency)
	fmt.Printf("    Timezone:   %s\n", cfg.General.Timezone)
	fmt.Println()

	fmt.Println("  [Ledger]")
	fmt.Printf("    Database: %s\n", cfg.DBPath())
	fmt.Printf("    Tables:   %s (fallback %s)\n", cfg.Ledger.PrimaryTable, cfg.Ledger.FallbackTable)
	fmt.Println()

	fmt.Println("  [Limits]")
	fmt.Printf("    Default monthly cap: %s\n", optional(cfg.Limits.DefaultMonthlyCap))
	for bank, c := range cfg.Limits.Overrides {
		fmt.Printf("    %-19s %.0f\n", bank+":", c)
	}
	fmt.Printf("    Assessable:  %s\n", list(cfg.Limits.AssessableBanks))
	fmt.Printf("    Extendable:  %s\n", list(cfg.Limits.ExtendableBanks))
	fmt.Printf("    Wallets:     %s\n", list(cfg.Limits.WalletBanks))
	fmt.Printf("    Preference:  %s\n", list(cfg.Limits.BankPreference))
	fmt.Println()

	fmt.Println("  [Cushion]")
	fmt.Printf("    Target: %s\n", optional(cfg.Cushion.Target))
	fmt.Println()

	fmt.Println("  [FX]")
	fmt.Printf("    Sell rate: %s (fee %.2f%%, margin %.2f%%)\n", optional(cfg.FX.SellRate), cfg.FX.SellFeePct, cfg.FX.FXMarginPct)
	fmt.Printf("    Buy rate:  %s\n", optional(cfg.FX.BuyRate))
	fmt.Printf("    Min sale %g, keep %g\n", cfg.FX.MinSale, cfg.FX.MinKeep)
	fmt.Println()

	fmt.Println("  [Publish]")
	if cfg.Publish.AMQPURL != "" {
		fmt.Printf("    AMQP URL: %s\n", publish.RedactURL(cfg.Publish.AMQPURL))
	} else {
		fmt.Println("    AMQP URL: not configured")
	}
	fmt.Printf("    Exchange: %s (key %s)\n", cfg.Publish.Exchange, cfg.Publish.RoutingKey)
	fmt.Println()

	if _, err := cfg.Advisory(); err != nil {
		fmt.Printf("  Problems: %v\n\n", err)
	}
	if unknown := cfg.UnknownBanks(); len(unknown) > 0 {
		fmt.Printf("  Unrecognized banks: %s\n\n", strings.Join(unknown, ", "))
	}
	fmt.Println("  Run `cashplan setup` to reconfigure.")
	return nil
}

func optional(v *float64) string {
	if v == nil {
		return "not set"
	}
	return fmt.Sprintf("%g", *v)
}

func list(v []string) string {
	if len(v) == 0 {
		return "none"
	}
	return strings.Join(v, ", ")
}
