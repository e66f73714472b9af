// Package pipeline turns raw ledger rows into validated monthly usage
// records and the cash position the planner starts from.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/cashplan/internal/bank"
	"github.com/theirongolddev/cashplan/internal/cushion"
	"github.com/theirongolddev/cashplan/internal/log"
	"github.com/theirongolddev/cashplan/internal/model"
	"github.com/theirongolddev/cashplan/internal/store"
)

// Source is the ledger as the aggregator needs it.
type Source interface {
	ListCardUsage(ctx context.Context, start, end time.Time, banks []string) ([]store.UsageRow, error)
	ListBalances(ctx context.Context) ([]store.BalanceRow, error)
}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow returns the calendar month containing now, in loc.
func MonthWindow(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	t := now.In(loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Filter selects which rows count.
type Filter struct {
	AssessableBanks []string
	LocalCurrency   string // the unit monthly caps are expressed in
	ForeignCurrency string
}

// Collection is everything the advisory needs from the ledger.
type Collection struct {
	Usage    []model.UsageRecord
	Position cushion.Input
	Rejected []error // rows skipped because they failed validation
}

// Aggregator reads the ledger and validates what it gets back.
type Aggregator struct {
	source Source
	log    zerolog.Logger
}

// NewAggregator returns an Aggregator over source.
func NewAggregator(source Source, logger zerolog.Logger) *Aggregator {
	return &Aggregator{source: source, log: log.WithComponent(logger, log.ComponentPipeline)}
}

// Collect reads usage rows and balances concurrently and validates both.
// A ledger failure is returned as is; invalid rows are skipped and
// reported in Rejected.
func (a *Aggregator) Collect(ctx context.Context, w Window, f Filter) (Collection, error) {
	var (
		usage    []store.UsageRow
		balances []store.BalanceRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		usage, err = a.source.ListCardUsage(gctx, w.Start, w.End, f.AssessableBanks)
		return err
	})
	g.Go(func() error {
		var err error
		balances, err = a.source.ListBalances(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Collection{}, err
	}

	records, rejected := BuildUsage(usage, balances, f)
	pos, posRejected := Position(balances, f.LocalCurrency, f.ForeignCurrency)
	rejected = append(rejected, posRejected...)

	for _, err := range rejected {
		a.log.Warn().Err(err).Msg("skipping invalid ledger row")
	}
	a.log.Debug().
		Int(log.FieldRows, len(usage)).
		Int(log.FieldCards, len(records)).
		Time("start", w.Start).
		Msg("collected monthly usage")

	return Collection{Usage: records, Position: pos, Rejected: rejected}, nil
}

// BuildUsage validates usage rows into records, keeping cards whose
// normalized bank is assessable and whose currency is the local one.
// Assessable cards with no movements in the window but a non-zero balance
// are included with zero usage. Records are ordered by card ID.
func BuildUsage(usage []store.UsageRow, balances []store.BalanceRow, f Filter) ([]model.UsageRecord, []error) {
	assessable := make(map[string]bool, len(f.AssessableBanks))
	for _, b := range f.AssessableBanks {
		assessable[bank.Normalize(b)] = true
	}
	keep := func(bankLabel, currency string) bool {
		return assessable[bank.Normalize(bankLabel)] && strings.EqualFold(strings.TrimSpace(currency), f.LocalCurrency)
	}

	var (
		records  []model.UsageRecord
		rejected []error
		seen     = make(map[string]bool)
	)

	for _, r := range usage {
		if !keep(r.Bank, r.Currency) {
			continue
		}
		rec, err := usageRecord(r.CardID, r.Number, r.Bank, r.Currency, r.Balance, r.Amounts)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		seen[rec.Card.ID] = true
		records = append(records, rec)
	}

	for _, b := range balances {
		if b.Kind != store.KindCard || seen[b.AccountID] || !keep(b.Bank, b.Currency) {
			continue
		}
		rec, err := usageRecord(b.AccountID, b.Number, b.Bank, b.Currency, b.Balance, nil)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		if rec.Balance.IsZero() {
			continue
		}
		seen[rec.Card.ID] = true
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Card.ID < records[j].Card.ID
	})
	return records, rejected
}

func usageRecord(id, number, bankLabel, currency, balance string, amounts []string) (model.UsageRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.UsageRecord{}, fmt.Errorf("card with %s number %q has no id", bankLabel, bank.MaskNumber(number))
	}
	bal, err := parseAmount(balance)
	if err != nil {
		return model.UsageRecord{}, fmt.Errorf("card %s: balance: %w", id, err)
	}

	used := decimal.Zero
	for _, s := range amounts {
		amt, err := parseAmount(s)
		if err != nil {
			return model.UsageRecord{}, fmt.Errorf("card %s: movement: %w", id, err)
		}
		if amt.IsNegative() {
			used = used.Add(amt.Neg())
		}
	}

	card := model.Card{
		ID:       id,
		Masked:   bank.MaskNumber(number),
		Bank:     bank.Normalize(bankLabel),
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
		Balance:  bal,
	}
	return model.UsageRecord{Card: card, UsedOut: used, Balance: bal}, nil
}

// Position sums balances into assets, liabilities and foreign holdings.
// Local balances count as assets when positive and liabilities when
// negative; debt accounts always count as liabilities. Only positive
// foreign balances are available for sale. Other currencies are ignored.
func Position(balances []store.BalanceRow, local, foreign string) (cushion.Input, []error) {
	in := cushion.Input{Assets: decimal.Zero, Liabilities: decimal.Zero, ForeignAvailable: decimal.Zero}
	var rejected []error

	for _, b := range balances {
		cur := strings.TrimSpace(b.Currency)
		isLocal := strings.EqualFold(cur, local)
		isForeign := strings.EqualFold(cur, foreign)
		if !isLocal && !isForeign {
			continue
		}
		amt, err := parseAmount(b.Balance)
		if err != nil {
			rejected = append(rejected, fmt.Errorf("account %s: balance: %w", b.AccountID, err))
			continue
		}

		switch {
		case isLocal && b.Kind == store.KindDebt:
			in.Liabilities = in.Liabilities.Add(amt.Abs())
		case isLocal && amt.IsNegative():
			in.Liabilities = in.Liabilities.Add(amt.Neg())
		case isLocal:
			in.Assets = in.Assets.Add(amt)
		case amt.IsPositive():
			in.ForeignAvailable = in.ForeignAvailable.Add(amt)
		}
	}
	return in, rejected
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	return d, nil
}
