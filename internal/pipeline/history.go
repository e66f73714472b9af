package pipeline

import (
	"time"

	"github.com/theirongolddev/cashplan/internal/model"
)

// Horizons returns the cut-offs for historical comparison: the start of
// today and the start of this month, in loc. The prior-day snapshot is the
// latest one before the first, the prior-month one the latest before the
// second.
func Horizons(now time.Time, loc *time.Location) (dayStart, monthStart time.Time) {
	if loc == nil {
		loc = time.Local
	}
	t := now.In(loc)
	dayStart = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	monthStart = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return dayStart, monthStart
}

// SnapshotOf captures a cushion plan's position.
func SnapshotOf(id string, at time.Time, p model.CushionPlan) model.Snapshot {
	return model.Snapshot{
		ID:               id,
		At:               at,
		Assets:           p.Assets,
		Liabilities:      p.Liabilities,
		Net:              p.Net,
		ForeignAvailable: p.ForeignAvailable,
	}
}

// Compare diffs the current position against the prior-day and
// prior-month snapshots. A nil snapshot leaves its delta nil.
func Compare(curr model.Snapshot, prevDay, prevMonth *model.Snapshot) model.Comparison {
	var c model.Comparison
	if prevDay != nil {
		d := diffSnapshots(*prevDay, curr)
		c.PrevDay = &d
	}
	if prevMonth != nil {
		d := diffSnapshots(*prevMonth, curr)
		c.PrevMonth = &d
	}
	return c
}

func diffSnapshots(prev, curr model.Snapshot) model.Delta {
	return model.Delta{
		Since:            prev.At,
		Assets:           curr.Assets.Sub(prev.Assets),
		Liabilities:      curr.Liabilities.Sub(prev.Liabilities),
		Net:              curr.Net.Sub(prev.Net),
		ForeignAvailable: curr.ForeignAvailable.Sub(prev.ForeignAvailable),
	}
}
