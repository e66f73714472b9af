package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a recorded cash position used for historical comparison.
type Snapshot struct {
	ID               string
	At               time.Time
	Assets           decimal.Decimal
	Liabilities      decimal.Decimal
	Net              decimal.Decimal
	ForeignAvailable decimal.Decimal
}

// Delta is the change between a past snapshot and the current position.
type Delta struct {
	Since            time.Time
	Assets           decimal.Decimal
	Liabilities      decimal.Decimal
	Net              decimal.Decimal
	ForeignAvailable decimal.Decimal
}

// Comparison groups the deltas rendered in the history section.
// A nil field means no snapshot exists for that horizon.
type Comparison struct {
	PrevDay   *Delta
	PrevMonth *Delta
}

// Empty reports whether there is nothing to compare against.
func (c Comparison) Empty() bool {
	return c.PrevDay == nil && c.PrevMonth == nil
}
