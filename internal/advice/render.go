// Package advice renders an advisory run into plain-text report sections.
package advice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/cli"
	"github.com/theirongolddev/cashplan/internal/limits"
	"github.com/theirongolddev/cashplan/internal/model"
)

// Report is everything Render needs. TargetPlan is nil when it would be the
// same as Plan.
type Report struct {
	Period     time.Time // start of the month the limits apply to
	Cushion    model.CushionPlan
	Limits     limits.Result
	Plan       model.DistributionPlan
	TargetPlan *model.DistributionPlan
	History    model.Comparison

	LocalCurrency   string
	ForeignCurrency string
	BuyRate         *decimal.Decimal // local per foreign; nil or <= 0 hides equivalents
}

// Render returns the report sections in fixed order: current state,
// objective, sale plan, projection, liquidity by bank, monthly limits,
// destinations, and history when there is any. Without a usable buy rate a
// single note explaining the missing equivalents is appended last.
func Render(r Report) []string {
	x := renderer{r}
	sections := []string{
		x.currentState(),
		x.objective(),
		x.salePlan(),
		x.projection(),
		x.liquidity(),
		x.limitsTable(),
		x.destinations(),
	}
	if !r.History.Empty() {
		sections = append(sections, x.history())
	}
	if !x.hasRate() {
		sections = append(sections, x.missingRateNote())
	}
	return sections
}

type renderer struct {
	r Report
}

func (x renderer) hasRate() bool {
	_, ok := cli.ForeignEquivalent(decimal.Zero, x.r.BuyRate)
	return ok
}

// money formats a local amount with its foreign equivalent when available.
func (x renderer) money(a decimal.Decimal) string {
	s := cli.FormatMoney(a, x.r.LocalCurrency)
	if eq := cli.FormatEquivalent(a, x.r.BuyRate, x.r.ForeignCurrency); eq != "" {
		s += " " + eq
	}
	return s
}

// cell is money without the currency code, for table columns.
func (x renderer) cell(a decimal.Decimal) string {
	s := cli.FormatAmount(a)
	if eq := cli.FormatEquivalent(a, x.r.BuyRate, x.r.ForeignCurrency); eq != "" {
		s += " " + eq
	}
	return s
}

func (x renderer) foreign(a decimal.Decimal) string {
	return cli.FormatMoney(a, x.r.ForeignCurrency)
}

func section(title string, lines ...string) string {
	var b strings.Builder
	b.WriteString(title)
	for _, l := range lines {
		b.WriteString("\n")
		b.WriteString(l)
	}
	return b.String()
}
