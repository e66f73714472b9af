// Package model defines the domain types shared by the advisory pipeline.
package model

import "github.com/shopspring/decimal"

// Card is a bank-linked sub-account as the ledger reports it.
type Card struct {
	ID       string
	Masked   string // masked display number, e.g. "****1234"
	Bank     string // normalized bank code
	Currency string
	Balance  decimal.Decimal
}

// UsageRecord holds one card's outflow for the current calendar month.
type UsageRecord struct {
	Card    Card
	UsedOut decimal.Decimal // sum of |negative movements| since period start
	Balance decimal.Decimal // latest signed balance
}

// Status classifies how much monthly outflow capacity a card has left.
type Status int

const (
	StatusOK Status = iota
	StatusExtendable
	StatusBlocked
)

func (s Status) String() string {
	switch s {
	case StatusExtendable:
		return "EXTENDABLE"
	case StatusBlocked:
		return "BLOCKED"
	default:
		return "OK"
	}
}

// Glyph returns the marker used in the limits table.
func (s Status) Glyph() string {
	switch s {
	case StatusExtendable:
		return "🟡"
	case StatusBlocked:
		return "⛔"
	default:
		return "✅"
	}
}

// ClassifiedCard is a UsageRecord with its bank's limit policy applied.
type ClassifiedCard struct {
	UsageRecord
	Cap        decimal.Decimal
	Remaining  decimal.Decimal // max(Cap-UsedOut, 0)
	BalancePos decimal.Decimal // max(Balance, 0)
	DepositCap decimal.Decimal // max(Remaining-BalancePos, 0)
	Status     Status
	IsWallet   bool
}

// Bank is shorthand for the card's normalized bank code.
func (c ClassifiedCard) Bank() string {
	return c.Card.Bank
}
