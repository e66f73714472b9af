package limits

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/model"
)

// Distribute allocates amount across cards in bank-preference order.
//
// OK bank cards are filled up to their deposit cap first. Whatever is left
// goes in full to the first extendable bank card, and in ModeTarget any
// remainder after that goes to the first wallet card. Blocked cards never
// receive anything. TotalAssigned+Leftover always equals amount.
func Distribute(amount decimal.Decimal, cards []model.ClassifiedCard, order []string, mode model.Mode) model.DistributionPlan {
	plan := model.DistributionPlan{
		Mode:          mode,
		Requested:     amount,
		TotalAssigned: decimal.Zero,
		Leftover:      amount,
	}
	if !amount.IsPositive() {
		return plan
	}

	sorted := SortByPreference(cards, order)
	need := amount

	assign := func(c model.ClassifiedCard, amt decimal.Decimal, step model.Step) {
		plan.Assignments = append(plan.Assignments, model.Assignment{
			Bank:           c.Bank(),
			CardID:         c.Card.ID,
			Masked:         c.Card.Masked,
			Amount:         amt,
			CapacityBefore: c.DepositCap,
			CapacityAfter:  c.DepositCap.Sub(amt),
			Status:         c.Status,
			Step:           step,
		})
		plan.TotalAssigned = plan.TotalAssigned.Add(amt)
		need = need.Sub(amt)
	}

	for _, c := range sorted {
		if !need.IsPositive() {
			break
		}
		if c.Status != model.StatusOK || c.IsWallet || !c.DepositCap.IsPositive() {
			continue
		}
		assign(c, decimal.Min(need, c.DepositCap), model.StepCapacity)
	}

	if need.IsPositive() {
		for _, c := range sorted {
			if c.Status == model.StatusExtendable && !c.IsWallet {
				assign(c, need, model.StepOverflow)
				break
			}
		}
	}

	if need.IsPositive() && mode == model.ModeTarget {
		for _, c := range sorted {
			if c.IsWallet && c.Status != model.StatusBlocked {
				assign(c, need, model.StepWallet)
				break
			}
		}
	}

	plan.Leftover = need
	return plan
}
