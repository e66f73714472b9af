package advice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/cli"
	"github.com/theirongolddev/cashplan/internal/model"
)

func (x renderer) currentState() string {
	c := x.r.Cushion
	return section("💼 Current state",
		"Assets: "+x.money(c.Assets),
		"Liabilities: "+x.money(c.Liabilities),
		"Net: "+x.money(c.Net),
	)
}

func (x renderer) objective() string {
	c := x.r.Cushion
	lines := []string{"Cushion target: " + x.money(c.CushionTarget)}
	switch {
	case c.Shortfall.IsPositive():
		lines = append(lines, "Shortfall: "+x.money(c.Shortfall))
	case c.DisposableSurplus.IsPositive():
		lines = append(lines, "Above target by: "+x.money(c.DisposableSurplus))
	default:
		lines = append(lines, "Net position is exactly on target.")
	}
	return section("🎯 Objective", lines...)
}

func (x renderer) salePlan() string {
	c := x.r.Cushion
	title := fmt.Sprintf("💱 Sale plan (net %s %s per %s)",
		cli.FormatFixed2(c.NetSellRate), x.r.LocalCurrency, x.r.ForeignCurrency)

	if !c.Shortfall.IsPositive() {
		return section(title, "No sale needed: the net position covers the cushion target.")
	}

	var lines []string
	if c.SaleNow.IsZero() {
		lines = append(lines, fmt.Sprintf("Sell now: nothing (%s available after the keep floor and minimum sale)",
			x.foreign(c.ForeignAvailable)))
	} else {
		lines = append(lines, fmt.Sprintf("Sell now: %s → %s", x.foreign(c.SaleNow.Foreign), x.money(c.SaleNow.LocalIn)))
	}
	lines = append(lines, fmt.Sprintf("Sell to reach target: %s → %s", x.foreign(c.SaleTarget.Foreign), x.money(c.SaleTarget.LocalIn)))
	if c.RemainingUnallocated.IsPositive() {
		lines = append(lines, "Still uncovered after selling now: "+x.money(c.RemainingUnallocated))
	}
	return section(title, lines...)
}

func (x renderer) projection() string {
	c := x.r.Cushion
	lines := []string{"Projected net: " + x.money(c.ProjectedNet)}
	if c.ProjectedExposure.IsPositive() {
		lines = append(lines, "Negative-balance exposure: "+x.money(c.ProjectedExposure))
	} else {
		lines = append(lines, "No negative-balance exposure.")
	}
	return section("📈 After selling now", lines...)
}

type bankLiquidity struct {
	bank       string
	cards      int
	balance    decimal.Decimal
	depositCap decimal.Decimal
}

func (x renderer) liquidity() string {
	var (
		order  []string
		byBank = make(map[string]*bankLiquidity)
	)
	for _, c := range x.r.Limits.Cards {
		bl, ok := byBank[c.Bank()]
		if !ok {
			bl = &bankLiquidity{bank: c.Bank(), balance: decimal.Zero, depositCap: decimal.Zero}
			byBank[c.Bank()] = bl
			order = append(order, c.Bank())
		}
		bl.cards++
		bl.balance = bl.balance.Add(c.Balance)
		bl.depositCap = bl.depositCap.Add(c.DepositCap)
	}

	if len(order) == 0 {
		return section("🏦 Liquidity by bank", "No cards on record.")
	}

	lines := make([]string, 0, len(order))
	for _, b := range order {
		bl := byBank[b]
		lines = append(lines, fmt.Sprintf("%s (%d): balance %s · deposit room %s",
			bl.bank, bl.cards, x.money(bl.balance), x.money(bl.depositCap)))
	}
	return section("🏦 Liquidity by bank", lines...)
}

func (x renderer) limitsTable() string {
	title := "📅 Monthly limits"
	if !x.r.Period.IsZero() {
		title += " · " + x.r.Period.Format("January 2006")
	}
	res := x.r.Limits
	if len(res.Cards) == 0 {
		return section(title, "No assessable cards this month.")
	}

	t := cli.Table{
		Headers: []string{"Card", "Used", "Balance", "Remaining", "Deposit cap"},
	}
	for _, c := range res.Cards {
		t.Rows = append(t.Rows, []string{
			cardLabel(c.Status, c.Bank(), c.Card.Masked),
			x.cell(c.UsedOut),
			x.cell(c.Balance),
			x.cell(c.Remaining),
			x.cell(c.DepositCap),
		})
	}

	totals := fmt.Sprintf("%s %d blocked · %s %d extendable · remaining %s",
		model.StatusBlocked.Glyph(), res.Totals.Blocked,
		model.StatusExtendable.Glyph(), res.Totals.Extendable,
		x.money(res.Totals.Remaining))
	return section(title, strings.TrimRight(cli.RenderPlainTable(t), "\n"), totals)
}

func (x renderer) destinations() string {
	title := "📥 Where to deposit the proceeds"
	if !x.r.Plan.Requested.IsPositive() {
		return section(title, "Nothing to deposit: no sale is recommended right now.")
	}

	parts := []string{x.planBlock("Selling now", x.r.Plan)}
	if x.r.TargetPlan != nil && x.r.TargetPlan.Requested.IsPositive() {
		parts = append(parts, x.planBlock("Selling to target", *x.r.TargetPlan))
	}
	return section(title, strings.Join(parts, "\n\n"))
}

func (x renderer) planBlock(label string, p model.DistributionPlan) string {
	lines := []string{fmt.Sprintf("%s (%s): %s", label, p.Mode, x.money(p.Requested))}

	if len(p.Assignments) > 0 {
		t := cli.Table{Headers: []string{"Card", "Amount", "Room after"}}
		for _, a := range p.Assignments {
			t.Rows = append(t.Rows, []string{
				cardLabel(a.Status, a.Bank, a.Masked),
				x.cell(a.Amount),
				x.cell(a.CapacityAfter),
			})
		}
		lines = append(lines, strings.TrimRight(cli.RenderPlainTable(t), "\n"))
	}

	if p.Leftover.IsPositive() {
		lines = append(lines, "No destination for: "+x.money(p.Leftover))
	}
	return strings.Join(lines, "\n")
}

func (x renderer) history() string {
	var lines []string
	add := func(label string, d *model.Delta) {
		if d == nil {
			return
		}
		net := cli.FormatDelta(d.Net) + " " + x.r.LocalCurrency
		if eq := cli.FormatEquivalent(d.Net, x.r.BuyRate, x.r.ForeignCurrency); eq != "" {
			net += " " + eq
		}
		lines = append(lines, fmt.Sprintf("%s (%s): net %s · assets %s · liabilities %s · %s %s",
			label, d.Since.Format("02 Jan 15:04"), net,
			cli.FormatDelta(d.Assets), cli.FormatDelta(d.Liabilities),
			x.r.ForeignCurrency, cli.FormatDelta(d.ForeignAvailable)))
	}
	add("Previous day", x.r.History.PrevDay)
	add("Previous month", x.r.History.PrevMonth)
	return section("🕰 Compared with", lines...)
}

func (x renderer) missingRateNote() string {
	return fmt.Sprintf("ℹ️ No %s buy rate is configured, so %s equivalents are not shown.",
		x.r.ForeignCurrency, x.r.ForeignCurrency)
}

func cardLabel(s model.Status, bank, masked string) string {
	if masked == "" {
		return s.Glyph() + " " + bank
	}
	return s.Glyph() + " " + bank + " " + masked
}
