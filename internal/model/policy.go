package model

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/bank"
)

// LimitPolicy holds the monthly outflow caps per bank.
// Keys are normalized bank codes.
type LimitPolicy struct {
	DefaultCap decimal.Decimal
	Overrides  map[string]decimal.Decimal
	Extendable map[string]bool
	Wallet     map[string]bool
}

// NewLimitPolicy builds a policy, normalizing every bank label it is given.
func NewLimitPolicy(defaultCap decimal.Decimal, overrides map[string]decimal.Decimal, extendable, wallet []string) LimitPolicy {
	p := LimitPolicy{
		DefaultCap: defaultCap,
		Overrides:  make(map[string]decimal.Decimal, len(overrides)),
		Extendable: make(map[string]bool, len(extendable)),
		Wallet:     make(map[string]bool, len(wallet)),
	}
	for label, c := range overrides {
		p.Overrides[bank.Normalize(label)] = c
	}
	for _, label := range extendable {
		p.Extendable[bank.Normalize(label)] = true
	}
	for _, label := range wallet {
		p.Wallet[bank.Normalize(label)] = true
	}
	return p
}

// CapFor returns the bank's own cap, or the default cap when it has none.
func (p LimitPolicy) CapFor(code string) decimal.Decimal {
	if c, ok := p.Overrides[code]; ok {
		return c
	}
	return p.DefaultCap
}

// IsExtendable reports whether the bank may exceed its nominal cap.
func (p LimitPolicy) IsExtendable(code string) bool {
	return p.Extendable[code]
}

// IsWallet reports whether the bank is a peer-transfer pool.
func (p LimitPolicy) IsWallet(code string) bool {
	return p.Wallet[code]
}
