// Package limits classifies cards against their bank's monthly outflow cap
// and distributes cash across them without breaking those caps.
package limits

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/model"
)

// Totals aggregates a classification run.
type Totals struct {
	Blocked    int
	Extendable int
	Remaining  decimal.Decimal
}

// Result holds classified cards in input order plus their totals.
type Result struct {
	Cards  []model.ClassifiedCard
	Totals Totals
}

// Classify applies policy to every usage record. It never fails; cards keep
// the order of rows.
func Classify(rows []model.UsageRecord, policy model.LimitPolicy) Result {
	res := Result{
		Cards:  make([]model.ClassifiedCard, 0, len(rows)),
		Totals: Totals{Remaining: decimal.Zero},
	}
	for _, r := range rows {
		c := ClassifyCard(r, policy)
		switch c.Status {
		case model.StatusBlocked:
			res.Totals.Blocked++
		case model.StatusExtendable:
			res.Totals.Extendable++
		}
		res.Totals.Remaining = res.Totals.Remaining.Add(c.Remaining)
		res.Cards = append(res.Cards, c)
	}
	return res
}

// ClassifyCard computes remaining capacity, deposit cap and status for one record.
func ClassifyCard(r model.UsageRecord, policy model.LimitPolicy) model.ClassifiedCard {
	code := r.Card.Bank
	limit := policy.CapFor(code)

	remaining := decimal.Max(limit.Sub(r.UsedOut), decimal.Zero)
	balancePos := decimal.Max(r.Balance, decimal.Zero)
	depositCap := decimal.Max(remaining.Sub(balancePos), decimal.Zero)

	status := model.StatusOK
	if r.UsedOut.GreaterThanOrEqual(limit) {
		if policy.IsExtendable(code) {
			status = model.StatusExtendable
		} else {
			status = model.StatusBlocked
		}
	}

	return model.ClassifiedCard{
		UsageRecord: r,
		Cap:         limit,
		Remaining:   remaining,
		BalancePos:  balancePos,
		DepositCap:  depositCap,
		Status:      status,
		IsWallet:    policy.IsWallet(code),
	}
}
