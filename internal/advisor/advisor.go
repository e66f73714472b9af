// Package advisor runs a complete cash advisory: it reads the ledger,
// classifies cards against their monthly limits, sizes the foreign-currency
// sale and distributes its proceeds, then renders the report.
package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/cashplan/internal/advice"
	"github.com/theirongolddev/cashplan/internal/cushion"
	"github.com/theirongolddev/cashplan/internal/limits"
	"github.com/theirongolddev/cashplan/internal/log"
	"github.com/theirongolddev/cashplan/internal/model"
	"github.com/theirongolddev/cashplan/internal/pipeline"
)

// Ledger supplies card usage and balances.
type Ledger interface {
	pipeline.Source
}

// History stores snapshots for day-over-day and month-over-month comparison.
type History interface {
	SnapshotBefore(ctx context.Context, t time.Time) (*model.Snapshot, error)
	SaveSnapshot(ctx context.Context, s model.Snapshot) error
}

// Deps are the collaborators of a run. History and Now are optional.
type Deps struct {
	Ledger  Ledger
	History History
	Log     zerolog.Logger
	Now     func() time.Time
}

// Result is a finished advisory. Sections are ready to deliver verbatim.
type Result struct {
	RunID       string
	GeneratedAt time.Time
	Sections    []string

	Plan       model.DistributionPlan // proceeds of SaleNow, ModeNow
	TargetPlan model.DistributionPlan // proceeds of SaleTarget, ModeTarget
	Cushion    model.CushionPlan
	Limits     limits.Result
	History    model.Comparison
	Snapshot   model.Snapshot // current position, for Record
	Rejected   int            // ledger rows skipped as invalid
}

// Run produces one advisory. Ledger failures abort the run; no partial
// report is rendered. A failing history store only drops the comparison.
func Run(ctx context.Context, s Settings, deps Deps) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	started := now()
	runID := uuid.NewString()
	logger := log.WithComponent(deps.Log, log.ComponentAdvisor).With().Str(log.FieldRunID, runID).Logger()

	window := pipeline.MonthWindow(started, s.Location)
	dayStart, monthStart := pipeline.Horizons(started, s.Location)

	var (
		col                pipeline.Collection
		prevDay, prevMonth *model.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		col, err = pipeline.NewAggregator(deps.Ledger, deps.Log).Collect(gctx, window, s.Filter())
		return err
	})
	if deps.History != nil {
		g.Go(func() error {
			prevDay = snapshotBefore(gctx, deps.History, dayStart, logger)
			return nil
		})
		g.Go(func() error {
			prevMonth = snapshotBefore(gctx, deps.History, monthStart, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	res := limits.Classify(col.Usage, s.Policy())

	cp, err := cushion.Plan(col.Position, s.CushionParams())
	if err != nil {
		return nil, err
	}

	planNow := limits.Distribute(cp.SaleNow.LocalIn, res.Cards, s.BankPreference, model.ModeNow)
	planTarget := limits.Distribute(cp.SaleTarget.LocalIn, res.Cards, s.BankPreference, model.ModeTarget)

	snap := pipeline.SnapshotOf(runID, started, cp)
	history := pipeline.Compare(snap, prevDay, prevMonth)

	report := advice.Report{
		Period:          window.Start,
		Cushion:         cp,
		Limits:          res,
		Plan:            planNow,
		History:         history,
		LocalCurrency:   s.LocalCurrency,
		ForeignCurrency: s.ForeignCurrency,
		BuyRate:         s.BuyRate,
	}
	if !samePlacement(planNow, planTarget) {
		report.TargetPlan = &planTarget
	}

	logger.Info().
		Int(log.FieldCards, len(res.Cards)).
		Str(log.FieldShortfall, cp.Shortfall.String()).
		Str(log.FieldAmount, planNow.Requested.String()).
		Str(log.FieldLeftover, planNow.Leftover.String()).
		Int64(log.FieldDuration, now().Sub(started).Milliseconds()).
		Msg("advisory ready")

	return &Result{
		RunID:       runID,
		GeneratedAt: started,
		Sections:    advice.Render(report),
		Plan:        planNow,
		TargetPlan:  planTarget,
		Cushion:     cp,
		Limits:      res,
		History:     history,
		Snapshot:    snap,
		Rejected:    len(col.Rejected),
	}, nil
}

// Record saves the run's position so later runs can compare against it.
func Record(ctx context.Context, h History, r *Result) error {
	if err := h.SaveSnapshot(ctx, r.Snapshot); err != nil {
		return fmt.Errorf("recording snapshot: %w", err)
	}
	return nil
}

func snapshotBefore(ctx context.Context, h History, t time.Time, logger zerolog.Logger) *model.Snapshot {
	s, err := h.SnapshotBefore(ctx, t)
	if err != nil {
		logger.Warn().Err(err).Str(log.FieldOperation, log.OpSnapshot).Time("before", t).Msg("history unavailable")
		return nil
	}
	return s
}

// samePlacement reports whether two plans put the same amounts on the same
// cards.
func samePlacement(a, b model.DistributionPlan) bool {
	if !a.Requested.Equal(b.Requested) || !a.Leftover.Equal(b.Leftover) || len(a.Assignments) != len(b.Assignments) {
		return false
	}
	for i := range a.Assignments {
		if a.Assignments[i].CardID != b.Assignments[i].CardID || !a.Assignments[i].Amount.Equal(b.Assignments[i].Amount) {
			return false
		}
	}
	return true
}
