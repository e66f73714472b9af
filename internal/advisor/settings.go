package advisor

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/cushion"
	"github.com/theirongolddev/cashplan/internal/model"
	"github.com/theirongolddev/cashplan/internal/pipeline"
)

// Settings is the validated configuration of one advisory run.
type Settings struct {
	DefaultCap      decimal.Decimal
	CapOverrides    map[string]decimal.Decimal // bank label -> monthly cap
	AssessableBanks []string
	ExtendableBanks []string
	WalletBanks     []string
	BankPreference  []string

	CushionTarget  decimal.Decimal
	SellRate       decimal.Decimal
	SellFeePct     decimal.Decimal
	FXMarginPct    decimal.Decimal
	MinSaleForeign decimal.Decimal
	MinKeepForeign decimal.Decimal
	BuyRate        *decimal.Decimal // optional, only used for display

	LocalCurrency   string
	ForeignCurrency string
	Location        *time.Location
}

// Policy builds the limit policy.
func (s Settings) Policy() model.LimitPolicy {
	return model.NewLimitPolicy(s.DefaultCap, s.CapOverrides, s.ExtendableBanks, s.WalletBanks)
}

// CushionParams builds the planner parameters.
func (s Settings) CushionParams() cushion.Params {
	return cushion.Params{
		CushionTarget:  s.CushionTarget,
		SellRate:       s.SellRate,
		SellFeePct:     s.SellFeePct,
		FXMarginPct:    s.FXMarginPct,
		MinSaleForeign: s.MinSaleForeign,
		MinKeepForeign: s.MinKeepForeign,
	}
}

// Filter builds the aggregator filter.
func (s Settings) Filter() pipeline.Filter {
	return pipeline.Filter{
		AssessableBanks: s.AssessableBanks,
		LocalCurrency:   s.LocalCurrency,
		ForeignCurrency: s.ForeignCurrency,
	}
}

// Validate checks what the planner doesn't: caps and currencies.
func (s Settings) Validate() error {
	if s.DefaultCap.IsNegative() {
		return fmt.Errorf("%w: default cap %s must not be negative", model.ErrInvalidConfiguration, s.DefaultCap)
	}
	for bank, c := range s.CapOverrides {
		if c.IsNegative() {
			return fmt.Errorf("%w: cap for %s %s must not be negative", model.ErrInvalidConfiguration, bank, c)
		}
	}
	if s.LocalCurrency == "" || s.ForeignCurrency == "" {
		return fmt.Errorf("%w: local and foreign currency are required", model.ErrInvalidConfiguration)
	}
	return s.CushionParams().Validate()
}
