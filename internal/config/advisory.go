package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/advisor"
	"github.com/theirongolddev/cashplan/internal/bank"
	"github.com/theirongolddev/cashplan/internal/model"
)

// Advisory validates the config and converts it into advisor settings.
// Every problem is reported in one ErrInvalidConfiguration error. An
// absent per-bank cap is not a problem: the default cap applies.
func (c Config) Advisory() (advisor.Settings, error) {
	var problems []string
	require := func(name string, v *float64, positive bool) decimal.Decimal {
		switch {
		case v == nil:
			problems = append(problems, name+" is not set")
		case !finite(*v):
			problems = append(problems, fmt.Sprintf("%s %v is not a number", name, *v))
		case positive && *v <= 0:
			problems = append(problems, fmt.Sprintf("%s %v must be positive", name, *v))
		case *v < 0:
			problems = append(problems, fmt.Sprintf("%s %v must not be negative", name, *v))
		default:
			return decimal.NewFromFloat(*v)
		}
		return decimal.Zero
	}
	percent := func(name string, v float64) decimal.Decimal {
		if !finite(v) || v < 0 || v >= 100 {
			problems = append(problems, fmt.Sprintf("%s %v must be in [0, 100)", name, v))
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	}
	nonNegative := func(name string, v float64) decimal.Decimal {
		if !finite(v) || v < 0 {
			problems = append(problems, fmt.Sprintf("%s %v must be a non-negative number", name, v))
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	}

	s := advisor.Settings{
		DefaultCap:      require("limits.default_monthly_cap", c.Limits.DefaultMonthlyCap, false),
		CapOverrides:    make(map[string]decimal.Decimal, len(c.Limits.Overrides)),
		AssessableBanks: c.Limits.AssessableBanks,
		ExtendableBanks: c.Limits.ExtendableBanks,
		WalletBanks:     c.Limits.WalletBanks,
		BankPreference:  c.Limits.BankPreference,
		CushionTarget:   require("cushion.target", c.Cushion.Target, false),
		SellRate:        require("fx.sell_rate", c.FX.SellRate, true),
		SellFeePct:      percent("fx.sell_fee_pct", c.FX.SellFeePct),
		FXMarginPct:     percent("fx.fx_margin_pct", c.FX.FXMarginPct),
		MinSaleForeign:  nonNegative("fx.min_sale", c.FX.MinSale),
		MinKeepForeign:  nonNegative("fx.min_keep", c.FX.MinKeep),
		LocalCurrency:   strings.ToUpper(strings.TrimSpace(c.General.LocalCurrency)),
		ForeignCurrency: strings.ToUpper(strings.TrimSpace(c.General.ForeignCurrency)),
	}

	for label, v := range c.Limits.Overrides {
		if !finite(v) || v < 0 {
			problems = append(problems, fmt.Sprintf("limits.overrides.%s %v must be a non-negative number", label, v))
			continue
		}
		s.CapOverrides[label] = decimal.NewFromFloat(v)
	}

	if c.FX.BuyRate != nil {
		if finite(*c.FX.BuyRate) {
			r := decimal.NewFromFloat(*c.FX.BuyRate)
			s.BuyRate = &r
		} else {
			problems = append(problems, fmt.Sprintf("fx.buy_rate %v is not a number", *c.FX.BuyRate))
		}
	}

	if s.LocalCurrency == "" {
		problems = append(problems, "general.local_currency is not set")
	}
	if s.ForeignCurrency == "" {
		problems = append(problems, "general.foreign_currency is not set")
	}

	s.Location = time.Local
	if c.General.Timezone != "" {
		loc, err := time.LoadLocation(c.General.Timezone)
		if err != nil {
			problems = append(problems, fmt.Sprintf("general.timezone %q: %v", c.General.Timezone, err))
		} else {
			s.Location = loc
		}
	}

	if len(problems) > 0 {
		return advisor.Settings{}, fmt.Errorf("%w: %s", model.ErrInvalidConfiguration, strings.Join(problems, "; "))
	}
	return s, nil
}

// UnknownBanks lists, sorted, the normalized [limits] bank labels that
// match no known bank.
func (c Config) UnknownBanks() []string {
	seen := make(map[string]bool)
	var unknown []string
	add := func(labels ...string) {
		for _, label := range labels {
			code := bank.Normalize(label)
			if code == "" || seen[code] || bank.Known(code) {
				continue
			}
			seen[code] = true
			unknown = append(unknown, code)
		}
	}
	add(c.Limits.AssessableBanks...)
	add(c.Limits.ExtendableBanks...)
	add(c.Limits.WalletBanks...)
	add(c.Limits.BankPreference...)
	for label := range c.Limits.Overrides {
		add(label)
	}
	sort.Strings(unknown)
	return unknown
}
