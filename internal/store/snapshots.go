package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/log"
	"github.com/theirongolddev/cashplan/internal/model"
)

// SaveSnapshot records a cash position. Saving the same ID twice replaces it.
func (l *Ledger) SaveSnapshot(ctx context.Context, s model.Snapshot) error {
	_, err := l.db.ExecContext(ctx, `INSERT OR REPLACE INTO snapshots
		(id, taken_at, assets, liabilities, net, foreign_available)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.At.UTC().Format(tsLayout),
		s.Assets.String(), s.Liabilities.String(), s.Net.String(), s.ForeignAvailable.String(),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	l.log.Debug().Str(log.FieldOperation, log.OpSnapshot).Str(log.FieldRunID, s.ID).Msg("snapshot saved")
	return nil
}

// SnapshotBefore returns the latest snapshot taken strictly before t, or
// nil when there is none.
func (l *Ledger) SnapshotBefore(ctx context.Context, t time.Time) (*model.Snapshot, error) {
	var (
		s                                   model.Snapshot
		at, assets, liab, net, foreignAvail string
	)
	err := l.db.QueryRowContext(ctx, `SELECT id, taken_at, assets, liabilities, net, foreign_available
		FROM snapshots WHERE taken_at < ? ORDER BY taken_at DESC LIMIT 1`,
		t.UTC().Format(tsLayout),
	).Scan(&s.ID, &at, &assets, &liab, &net, &foreignAvail)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	if s.At, err = time.Parse(tsLayout, at); err != nil {
		return nil, fmt.Errorf("snapshot %s: taken_at: %w", s.ID, err)
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&s.Assets, assets},
		{&s.Liabilities, liab},
		{&s.Net, net},
		{&s.ForeignAvailable, foreignAvail},
	} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", s.ID, err)
		}
	}
	return &s, nil
}
