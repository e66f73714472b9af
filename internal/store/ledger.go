// Package store reads cards, movements and balances from the SQLite ledger
// and persists advisory snapshots.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/cashplan/internal/bank"
	"github.com/theirongolddev/cashplan/internal/log"
	"github.com/theirongolddev/cashplan/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Account kinds in the accounts table.
const (
	KindCard = "card"
	KindCash = "cash"
	KindDebt = "debt"
)

// tsLayout is fixed-width UTC so timestamps compare correctly as text.
const tsLayout = "2006-01-02T15:04:05Z"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Tables names the movement tables read by ListCardUsage.
type Tables struct {
	Primary  string
	Fallback string
}

// UsageRow is one card with its raw signed movements in a window, as read
// from the ledger. Values are unvalidated text.
type UsageRow struct {
	CardID   string
	Number   string
	Bank     string
	Currency string
	Balance  string
	Amounts  []string
}

// BalanceRow is one account's current balance, unvalidated.
type BalanceRow struct {
	AccountID string
	Name      string
	Kind      string
	Bank      string
	Number    string
	Currency  string
	Balance   string
}

// Ledger provides read access to the ledger database.
type Ledger struct {
	db     *sql.DB
	tables Tables
	log    zerolog.Logger
}

// Open migrates and opens the ledger database at dbPath.
func Open(dbPath string, tables Tables, logger zerolog.Logger) (*Ledger, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	l, err := New(db, tables, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// New wraps an open database. Table names are interpolated into queries, so
// they must be plain identifiers.
func New(db *sql.DB, tables Tables, logger zerolog.Logger) (*Ledger, error) {
	for _, name := range []string{tables.Primary, tables.Fallback} {
		if !tableName.MatchString(name) {
			return nil, fmt.Errorf("%w: ledger table name %q", model.ErrInvalidConfiguration, name)
		}
	}
	return &Ledger{
		db:     db,
		tables: tables,
		log:    log.WithComponent(logger, log.ComponentStore),
	}, nil
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// ListCardUsage returns every card with movements in [start, end) whose
// normalized bank is in banks (all banks when banks is empty).
//
// The primary table is read first. If it can't be read or has no rows in
// the window, the fallback table is read instead. Failing both is
// ErrDataUnavailable.
func (l *Ledger) ListCardUsage(ctx context.Context, start, end time.Time, banks []string) ([]UsageRow, error) {
	rows, primaryErr := l.queryUsage(ctx, l.tables.Primary, start, end, banks)
	if primaryErr == nil && len(rows) > 0 {
		return rows, nil
	}

	ev := l.log.Warn().Str(log.FieldOperation, log.OpListUsage).Str(log.FieldSource, l.tables.Fallback)
	if primaryErr != nil {
		ev = ev.Err(primaryErr)
	}
	ev.Msg("primary movements unavailable, reading fallback")

	fallback, err := l.queryUsage(ctx, l.tables.Fallback, start, end, banks)
	if err != nil {
		if primaryErr != nil {
			return nil, fmt.Errorf("%w: %s: %v; %s: %v", model.ErrDataUnavailable,
				l.tables.Primary, primaryErr, l.tables.Fallback, err)
		}
		// The primary read worked and the window is simply empty.
		l.log.Warn().Err(err).Str(log.FieldSource, l.tables.Fallback).Msg("fallback movements unreadable")
		return rows, nil
	}

	l.log.Debug().Str(log.FieldSource, l.tables.Fallback).Int(log.FieldRows, len(fallback)).Msg("read fallback movements")
	return fallback, nil
}

func (l *Ledger) queryUsage(ctx context.Context, table string, start, end time.Time, banks []string) ([]UsageRow, error) {
	q := fmt.Sprintf(`SELECT a.id, a.number, a.bank, a.currency, a.balance, m.amount
		FROM %s m
		JOIN accounts a ON a.id = m.account_id
		WHERE a.kind = ? AND m.occurred_at >= ? AND m.occurred_at < ?
		ORDER BY a.id, m.occurred_at`, table)

	rs, err := l.db.QueryContext(ctx, q, KindCard, start.UTC().Format(tsLayout), end.UTC().Format(tsLayout))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rs.Close() }()

	allowed := make(map[string]bool, len(banks))
	for _, b := range banks {
		allowed[bank.Normalize(b)] = true
	}

	var out []UsageRow
	for rs.Next() {
		var r UsageRow
		var amount string
		if err := rs.Scan(&r.CardID, &r.Number, &r.Bank, &r.Currency, &r.Balance, &amount); err != nil {
			return nil, err
		}
		if len(allowed) > 0 && !allowed[bank.Normalize(r.Bank)] {
			continue
		}
		if n := len(out); n > 0 && out[n-1].CardID == r.CardID {
			out[n-1].Amounts = append(out[n-1].Amounts, amount)
			continue
		}
		r.Amounts = []string{amount}
		out = append(out, r)
	}
	return out, rs.Err()
}

// ListBalances returns every account's current balance.
func (l *Ledger) ListBalances(ctx context.Context) ([]BalanceRow, error) {
	rs, err := l.db.QueryContext(ctx,
		`SELECT id, name, kind, bank, number, currency, balance FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading balances: %v", model.ErrDataUnavailable, err)
	}
	defer func() { _ = rs.Close() }()

	var out []BalanceRow
	for rs.Next() {
		var r BalanceRow
		if err := rs.Scan(&r.AccountID, &r.Name, &r.Kind, &r.Bank, &r.Number, &r.Currency, &r.Balance); err != nil {
			return nil, fmt.Errorf("scanning balance: %w", err)
		}
		out = append(out, r)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading balances: %v", model.ErrDataUnavailable, err)
	}
	l.log.Debug().Str(log.FieldOperation, log.OpListBalances).Int(log.FieldRows, len(out)).Msg("read balances")
	return out, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
