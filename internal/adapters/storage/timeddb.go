package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"playbook/internal/adapters/http/perf"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Queryer runs statements. Queries are written with ? placeholders.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is a transaction begun through SQLDB.
type Tx interface {
	Queryer
	Commit() error
	Rollback() error
}

// SQLDB is the database interface used by all stores.
type SQLDB interface {
	Queryer
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

// Selecter scans result sets into slices of structs.
type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// DefaultSlowQuery is the threshold used when none is configured.
const DefaultSlowQuery = 100 * time.Millisecond

// TimedDB wraps a *sql.DB to rebind placeholders for the driver, log slow
// queries and record timings to a collector.
type TimedDB struct {
	db        *sqlx.DB
	collector *perf.Collector
	threshold time.Duration
}

var (
	_ SQLDB    = (*TimedDB)(nil)
	_ Selecter = (*TimedDB)(nil)
)

// NewTimedDB wraps db, which was opened with driver. collector may be nil.
// PRE: db is a valid database connection
// POST: Returns a TimedDB using DefaultSlowQuery
func NewTimedDB(db *sql.DB, driver string, collector *perf.Collector) *TimedDB {
	return &TimedDB{
		db:        sqlx.NewDb(db, bindDriver(driver)),
		collector: collector,
		threshold: DefaultSlowQuery,
	}
}

// WithSlowQueryThreshold sets the duration above which queries log at WARN.
func (t *TimedDB) WithSlowQueryThreshold(d time.Duration) *TimedDB {
	if d > 0 {
		t.threshold = d
	}
	return t
}

// bindDriver maps our driver names onto the names sqlx knows bind types for.
func bindDriver(driver string) string {
	if driver == DriverSQLite {
		return "sqlite3"
	}
	return driver
}

// RawDB returns the underlying *sql.DB.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db.DB
}

// Rebind converts ? placeholders to the driver's bind style.
func (t *TimedDB) Rebind(query string) string {
	return t.db.Rebind(query)
}

func (t *TimedDB) observe(op string, start time.Time) {
	observe(t.collector, t.threshold, op, start)
}

func observe(collector *perf.Collector, threshold time.Duration, op string, start time.Time) {
	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000.0
	if elapsed >= threshold {
		slog.Warn("slow_query", "op", op, "duration_ms", ms)
	} else {
		slog.Debug("query", "op", op, "duration_ms", ms)
	}
	collector.Record(perf.Sample{Kind: perf.KindQuery, Label: op, DurationMs: ms, At: start})
}

// ExecContext runs a statement.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	defer t.observe("ExecContext", start)
	return t.db.ExecContext(ctx, t.db.Rebind(query), args...)
}

// QueryContext runs a query returning rows.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	defer t.observe("QueryContext", start)
	return t.db.QueryContext(ctx, t.db.Rebind(query), args...)
}

// QueryRowContext runs a query returning at most one row.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	defer t.observe("QueryRowContext", start)
	return t.db.QueryRowContext(ctx, t.db.Rebind(query), args...)
}

// SelectContext scans all rows into dest, a pointer to a slice.
func (t *TimedDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	start := time.Now()
	defer t.observe("SelectContext", start)
	return t.db.SelectContext(ctx, dest, t.db.Rebind(query), args...)
}

// GetContext scans a single row into dest.
func (t *TimedDB) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	start := time.Now()
	defer t.observe("GetContext", start)
	return t.db.GetContext(ctx, dest, t.db.Rebind(query), args...)
}

// BeginTx starts a transaction whose statements are rebound and timed too.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTxx(ctx, opts)
	t.observe("BeginTx", start)
	if err != nil {
		return nil, err
	}
	return &timedTx{tx: tx, collector: t.collector, threshold: t.threshold}, nil
}

// Close closes the underlying database.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// PingContext verifies the connection is alive.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

type timedTx struct {
	tx        *sqlx.Tx
	collector *perf.Collector
	threshold time.Duration
}

func (t *timedTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	defer observe(t.collector, t.threshold, "tx.ExecContext", start)
	return t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
}

func (t *timedTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	defer observe(t.collector, t.threshold, "tx.QueryContext", start)
	return t.tx.QueryContext(ctx, t.tx.Rebind(query), args...)
}

func (t *timedTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	defer observe(t.collector, t.threshold, "tx.QueryRowContext", start)
	return t.tx.QueryRowContext(ctx, t.tx.Rebind(query), args...)
}

func (t *timedTx) Commit() error   { return t.tx.Commit() }
func (t *timedTx) Rollback() error { return t.tx.Rollback() }

// TimeLayout is fixed width so stored timestamps sort as text.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t the way every table stores timestamps.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp. Empty input yields the zero time.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
