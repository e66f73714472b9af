// Package config loads the cashplan TOML configuration and its environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/theirongolddev/cashplan/internal/model"
)

// Environment variables that override the config file.
const (
	EnvSellRate      = "CASHPLAN_SELL_RATE"
	EnvBuyRate       = "CASHPLAN_BUY_RATE"
	EnvCushionTarget = "CASHPLAN_CUSHION_TARGET"
	EnvDB            = "CASHPLAN_DB"
	EnvAMQPURL       = "CASHPLAN_AMQP_URL"
)

// Config holds all cashplan configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Limits  LimitsConfig  `toml:"limits"`
	Cushion CushionConfig `toml:"cushion"`
	FX      FXConfig      `toml:"fx"`
	Publish PublishConfig `toml:"publish"`
}

// GeneralConfig holds currency and calendar settings.
type GeneralConfig struct {
	LocalCurrency   string `toml:"local_currency"`
	ForeignCurrency string `toml:"foreign_currency"`
	Timezone        string `toml:"timezone"`
}

// LedgerConfig locates the ledger database.
type LedgerConfig struct {
	DBPath        string `toml:"db_path,omitempty"`
	PrimaryTable  string `toml:"primary_table"`
	FallbackTable string `toml:"fallback_table"`
}

// LimitsConfig holds the monthly outflow policy.
type LimitsConfig struct {
	DefaultMonthlyCap *float64           `toml:"default_monthly_cap,omitempty"`
	Overrides         map[string]float64 `toml:"overrides,omitempty"`
	AssessableBanks   []string           `toml:"assessable_banks"`
	ExtendableBanks   []string           `toml:"extendable_banks"`
	WalletBanks       []string           `toml:"wallet_banks"`
	BankPreference    []string           `toml:"bank_preference"`
}

// CushionConfig holds the local cash cushion target.
type CushionConfig struct {
	Target *float64 `toml:"target,omitempty"`
}

// FXConfig holds exchange rates and sale constraints, all per foreign unit.
type FXConfig struct {
	SellRate    *float64 `toml:"sell_rate,omitempty"`
	BuyRate     *float64 `toml:"buy_rate,omitempty"`
	SellFeePct  float64  `toml:"sell_fee_pct"`
	FXMarginPct float64  `toml:"fx_margin_pct"`
	MinSale     float64  `toml:"min_sale"`
	MinKeep     float64  `toml:"min_keep"`
}

// PublishConfig holds the AMQP delivery settings for rendered advice.
type PublishConfig struct {
	AMQPURL    string `toml:"amqp_url,omitempty"`
	Exchange   string `toml:"exchange"`
	RoutingKey string `toml:"routing_key"`
}

// DefaultConfig returns the default configuration. Caps, the cushion target
// and the sell rate have no defaults and must be configured.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LocalCurrency:   "CUP",
			ForeignCurrency: "USD",
			Timezone:        "America/Havana",
		},
		Ledger: LedgerConfig{
			PrimaryTable:  "movements",
			FallbackTable: "legacy_movements",
		},
		Limits: LimitsConfig{
			AssessableBanks: []string{"BANDEC", "BPA", "METRO", "MITRANSFER"},
			BankPreference:  []string{"BANDEC", "BPA", "METRO", "MITRANSFER"},
		},
		Publish: PublishConfig{
			Exchange:   "cashplan",
			RoutingKey: "advice",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cashplan")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DBPath returns the ledger database path, defaulting to the config dir.
func (c Config) DBPath() string {
	if c.Ledger.DBPath != "" {
		return c.Ledger.DBPath
	}
	return filepath.Join(Dir(), "ledger.db")
}

// Load reads the config file at Path and applies .env and environment
// overrides.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't
// exist, then applies .env and environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config file
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("reading .env: %w", err)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides rates, the cushion target and locations from CASHPLAN_*
// variables. A variable that is set but not a number is a configuration error.
func ApplyEnv(cfg *Config) error {
	for _, o := range []struct {
		key string
		dst **float64
	}{
		{EnvSellRate, &cfg.FX.SellRate},
		{EnvBuyRate, &cfg.FX.BuyRate},
		{EnvCushionTarget, &cfg.Cushion.Target},
	} {
		v := os.Getenv(o.key)
		if v == "" {
			continue
		}
		f, err := ParseNumber(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", model.ErrInvalidConfiguration, o.key, err)
		}
		*o.dst = &f
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.Ledger.DBPath = v
	}
	if v := os.Getenv(EnvAMQPURL); v != "" {
		cfg.Publish.AMQPURL = v
	}
	return nil
}

// ParseNumber parses a finite decimal number. NaN and infinities are
// rejected even though strconv accepts them.
func ParseNumber(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || !finite(f) {
		return 0, fmt.Errorf("%q is not a number", v)
	}
	return f, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is the user's config file
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
