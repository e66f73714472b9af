package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Mode selects how aggressively a DistributionPlan places cash.
type Mode int

const (
	// ModeNow places cash into bank-capped cards only.
	ModeNow Mode = iota
	// ModeTarget may also park the remainder in a wallet-type pool.
	ModeTarget
)

func (m Mode) String() string {
	if m == ModeTarget {
		return "TARGET"
	}
	return "NOW"
}

// ParseMode accepts "now" or "target" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "now", "":
		return ModeNow, nil
	case "target":
		return ModeTarget, nil
	}
	return ModeNow, fmt.Errorf("unknown distribution mode %q (want now or target)", s)
}

// Step records which pass of the distribution produced an assignment.
type Step int

const (
	StepCapacity Step = iota // OK card, bounded by its deposit cap
	StepOverflow             // extendable bank absorbing the remainder
	StepWallet               // wallet pool absorbing the remainder (TARGET only)
)

func (s Step) String() string {
	switch s {
	case StepOverflow:
		return "overflow"
	case StepWallet:
		return "wallet"
	default:
		return "capacity"
	}
}

// Assignment places part of a requested amount on one card.
type Assignment struct {
	Bank           string
	CardID         string
	Masked         string
	Amount         decimal.Decimal
	CapacityBefore decimal.Decimal
	CapacityAfter  decimal.Decimal // negative when an overflow exceeds the deposit cap
	Status         Status
	Step           Step
}

// DistributionPlan is the ordered result of distributing one amount.
type DistributionPlan struct {
	Mode          Mode
	Requested     decimal.Decimal
	Assignments   []Assignment
	TotalAssigned decimal.Decimal
	Leftover      decimal.Decimal
}

// Reconciles reports whether the plan's totals add up exactly.
func (p DistributionPlan) Reconciles() bool {
	sum := decimal.Zero
	for _, a := range p.Assignments {
		sum = sum.Add(a.Amount)
	}
	return sum.Equal(p.TotalAssigned) && p.TotalAssigned.Add(p.Leftover).Equal(p.Requested)
}

// SaleRecommendation is an amount of foreign currency to sell and the local
// currency it brings in.
type SaleRecommendation struct {
	Foreign decimal.Decimal
	LocalIn decimal.Decimal
}

// IsZero reports whether nothing should be sold.
func (s SaleRecommendation) IsZero() bool {
	return s.Foreign.IsZero()
}

// CushionPlan is the cash position measured against the cushion target.
type CushionPlan struct {
	Assets               decimal.Decimal
	Liabilities          decimal.Decimal
	Net                  decimal.Decimal
	CushionTarget        decimal.Decimal
	Shortfall            decimal.Decimal
	DisposableSurplus    decimal.Decimal
	SaleNow              SaleRecommendation
	SaleTarget           SaleRecommendation
	RemainingUnallocated decimal.Decimal

	NetSellRate       decimal.Decimal
	ForeignAvailable  decimal.Decimal
	ProjectedNet      decimal.Decimal // Net after SaleNow lands
	ProjectedExposure decimal.Decimal // negative balance left after SaleNow
}
