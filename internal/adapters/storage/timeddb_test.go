package storage

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"playbook/internal/adapters/http/perf"
)

func newTimed(t *testing.T, collector *perf.Collector) *TimedDB {
	t.Helper()
	db := openTestDB(t)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatal(err)
	}
	return NewTimedDB(db, DriverSQLite, collector)
}

// TestTimedDB_RecordsQueries verifies each call records one sample.
func TestTimedDB_RecordsQueries(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := newTimed(t, collector)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q", val)
	}
	if collector.TotalRecorded() != 2 {
		t.Errorf("TotalRecorded = %d, want 2", collector.TotalRecorded())
	}
}

// TestTimedDB_Tx verifies commit and rollback through the wrapper.
func TestTimedDB_Tx(t *testing.T) {
	tdb := newTimed(t, nil)
	ctx := context.Background()

	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	tx.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "a")
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}

	tx, _ = tdb.BeginTx(ctx, nil)
	tx.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "2", "b")
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	var n int
	tdb.QueryRowContext(ctx, "SELECT COUNT(*) FROM test").Scan(&n)
	if n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

// TestTimedDB_Select verifies struct scanning.
func TestTimedDB_Select(t *testing.T) {
	tdb := newTimed(t, nil)
	ctx := context.Background()
	tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?), (?, ?)", "1", "a", "2", "b")

	var rows []struct {
		ID  string `db:"id"`
		Val string `db:"val"`
	}
	if err := tdb.SelectContext(ctx, &rows, "SELECT id, val FROM test ORDER BY id"); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1].Val != "b" {
		t.Errorf("rows = %+v", rows)
	}
}

// TestRebind_Postgres verifies placeholders are rewritten for postgres.
func TestRebind_Postgres(t *testing.T) {
	got := sqlx.Rebind(sqlx.BindType(bindDriver(DriverPostgres)), "SELECT 1 WHERE a = ? AND b = ?")
	if got != "SELECT 1 WHERE a = $1 AND b = $2" {
		t.Errorf("rebind = %q", got)
	}
	if q := NewTimedDB(openTestDB(t), DriverSQLite, nil).Rebind("a = ?"); q != "a = ?" {
		t.Errorf("sqlite rebind = %q", q)
	}
}

// TestFormatParseTime verifies stored timestamps sort and round-trip.
func TestFormatParseTime(t *testing.T) {
	a := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	b := a.Add(100 * time.Millisecond)
	if !(FormatTime(a) < FormatTime(b)) {
		t.Errorf("%s should sort before %s", FormatTime(a), FormatTime(b))
	}
	if !ParseTime(FormatTime(b)).Equal(b) {
		t.Errorf("round trip lost precision")
	}
	if FormatTime(time.Time{}) != "" || !ParseTime("").IsZero() {
		t.Error("zero time handling")
	}
}
