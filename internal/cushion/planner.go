// Package cushion sizes a foreign-currency sale that restores the local cash
// cushion.
package cushion

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Input is the cash position the plan starts from.
type Input struct {
	Assets           decimal.Decimal // local currency
	Liabilities      decimal.Decimal // local currency; sign ignored
	ForeignAvailable decimal.Decimal // foreign currency currently held
}

// Params are the configured targets, rates and floors.
type Params struct {
	CushionTarget  decimal.Decimal
	SellRate       decimal.Decimal // local units per foreign unit
	SellFeePct     decimal.Decimal
	FXMarginPct    decimal.Decimal
	MinSaleForeign decimal.Decimal
	MinKeepForeign decimal.Decimal
}

// Validate reports every out-of-domain parameter at once.
func (p Params) Validate() error {
	var problems []string
	if !p.SellRate.IsPositive() {
		problems = append(problems, fmt.Sprintf("sell rate %s must be positive", p.SellRate))
	}
	if p.SellFeePct.IsNegative() || p.SellFeePct.GreaterThanOrEqual(hundred) {
		problems = append(problems, fmt.Sprintf("sell fee %s%% must be in [0, 100)", p.SellFeePct))
	}
	if p.FXMarginPct.IsNegative() || p.FXMarginPct.GreaterThanOrEqual(hundred) {
		problems = append(problems, fmt.Sprintf("fx margin %s%% must be in [0, 100)", p.FXMarginPct))
	}
	if p.CushionTarget.IsNegative() {
		problems = append(problems, fmt.Sprintf("cushion target %s must not be negative", p.CushionTarget))
	}
	if p.MinSaleForeign.IsNegative() {
		problems = append(problems, fmt.Sprintf("minimum sale %s must not be negative", p.MinSaleForeign))
	}
	if p.MinKeepForeign.IsNegative() {
		problems = append(problems, fmt.Sprintf("minimum foreign to keep %s must not be negative", p.MinKeepForeign))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", model.ErrInvalidConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// NetSellRate is the local currency actually received per foreign unit
// after the sell fee and the fx margin: rate * (1-fee/100) * (1-margin/100).
func NetSellRate(rate, feePct, marginPct decimal.Decimal) decimal.Decimal {
	afterFee := rate.Mul(hundred.Sub(feePct)).Div(hundred)
	return afterFee.Mul(hundred.Sub(marginPct)).Div(hundred)
}

// LocalProceeds converts a foreign amount into whole local units at the
// net rate, rounding down.
func LocalProceeds(foreign, netRate decimal.Decimal) decimal.Decimal {
	return foreign.Mul(netRate).Floor()
}

// ForeignNeeded is the smallest whole foreign amount whose proceeds cover
// local at the net rate.
func ForeignNeeded(local, netRate decimal.Decimal) decimal.Decimal {
	if !local.IsPositive() || !netRate.IsPositive() {
		return decimal.Zero
	}
	foreign := local.Div(netRate).Ceil()
	for LocalProceeds(foreign, netRate).LessThan(local) {
		foreign = foreign.Add(decimal.NewFromInt(1))
	}
	return foreign
}

// Plan measures the position against the cushion target and sizes two sale
// recommendations: SaleTarget is everything the shortfall needs, SaleNow is
// what can be sold from current holdings without going under the keep floor.
// Neither is ever below the minimum sale size.
func Plan(in Input, p Params) (model.CushionPlan, error) {
	if err := p.Validate(); err != nil {
		return model.CushionPlan{}, err
	}

	liabilities := in.Liabilities.Abs()
	net := in.Assets.Sub(liabilities)
	rate := NetSellRate(p.SellRate, p.SellFeePct, p.FXMarginPct)
	if !rate.IsPositive() {
		return model.CushionPlan{}, fmt.Errorf("%w: net sell rate %s is not positive", model.ErrInvalidConfiguration, rate)
	}

	plan := model.CushionPlan{
		Assets:            in.Assets,
		Liabilities:       liabilities,
		Net:               net,
		CushionTarget:     p.CushionTarget,
		Shortfall:         decimal.Max(p.CushionTarget.Sub(net), decimal.Zero),
		DisposableSurplus: decimal.Max(net.Sub(p.CushionTarget), decimal.Zero),
		NetSellRate:       rate,
		ForeignAvailable:  in.ForeignAvailable,
		SaleNow:           model.SaleRecommendation{Foreign: decimal.Zero, LocalIn: decimal.Zero},
		SaleTarget:        model.SaleRecommendation{Foreign: decimal.Zero, LocalIn: decimal.Zero},
	}

	if plan.Shortfall.IsPositive() {
		target := decimal.Max(ForeignNeeded(plan.Shortfall, rate), p.MinSaleForeign)
		plan.SaleTarget = model.SaleRecommendation{
			Foreign: target,
			LocalIn: LocalProceeds(target, rate),
		}

		sellable := decimal.Max(in.ForeignAvailable.Sub(p.MinKeepForeign), decimal.Zero).Floor()
		now := decimal.Min(target, sellable)
		if now.IsPositive() && now.GreaterThanOrEqual(p.MinSaleForeign) {
			plan.SaleNow = model.SaleRecommendation{
				Foreign: now,
				LocalIn: LocalProceeds(now, rate),
			}
		}
	}

	plan.RemainingUnallocated = decimal.Max(plan.Shortfall.Sub(plan.SaleNow.LocalIn), decimal.Zero)
	plan.ProjectedNet = net.Add(plan.SaleNow.LocalIn)
	plan.ProjectedExposure = decimal.Max(plan.ProjectedNet.Neg(), decimal.Zero)
	return plan, nil
}
