package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// migration is one forward-only schema step. Statements run in order inside
// a single transaction and must be valid on both SQLite and Postgres.
type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{1, "activation schema", []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			failed_logins INTEGER NOT NULL DEFAULT 0,
			locked_until TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'started',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			access_code_used TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_status ON profiles(status)`,
		`CREATE TABLE IF NOT EXISTS module_completion (
			user_id TEXT NOT NULL,
			exercise TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			PRIMARY KEY (user_id, exercise)
		)`,
		`CREATE TABLE IF NOT EXISTS friction_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			struggle_1 TEXT NOT NULL DEFAULT '',
			struggle_2 TEXT NOT NULL DEFAULT '',
			struggle_3 TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_friction_logs_created ON friction_logs(created_at)`,
		`CREATE TABLE IF NOT EXISTS mundane_makeover (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			redesign_description TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS visibility_signals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			colleague_name TEXT NOT NULL,
			impact_note TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pulse_surveys (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			q1 INTEGER NOT NULL,
			q2 INTEGER NOT NULL,
			q3 INTEGER NOT NULL DEFAULT 0,
			q4 INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			UNIQUE (user_id, type)
		)`,
		`CREATE TABLE IF NOT EXISTS seat_inventory (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_seats INTEGER NOT NULL,
			claimed_seats INTEGER NOT NULL DEFAULT 0
		)`,
		`INSERT INTO seat_inventory (id, total_seats, claimed_seats) VALUES (1, 500, 0) ON CONFLICT (id) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS access_codes (
			code TEXT PRIMARY KEY,
			claimed INTEGER NOT NULL DEFAULT 0,
			claimed_by TEXT NOT NULL DEFAULT '',
			claimed_at TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			granted_at TEXT NOT NULL,
			PRIMARY KEY (user_id, role)
		)`,
	}},
	{2, "outbox", []string{
		`CREATE TABLE IF NOT EXISTS outbox (
			id TEXT PRIMARY KEY,
			action_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 5,
			last_attempted_at TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			external_id TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, created_at)`,
	}},
}

// LatestSchemaVersion is the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Open connects to driver/dsn and applies the pragmas SQLite needs for
// concurrent use.
// PRE: driver is DriverSQLite or DriverPostgres
// POST: Returns a pinged *sql.DB
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if driver == DriverSQLite && dsn != ":memory:" {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	switch {
	case dsn == ":memory:":
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	case driver == DriverSQLite:
		db.SetMaxOpenConns(8)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// MigrateDB applies every migration newer than the recorded schema version.
// PRE: db is reachable
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(ctx context.Context, db *sql.DB, driver string) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	bind := sqlx.BindType(bindDriver(driver))

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range m.statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}
		insert := sqlx.Rebind(bind, `INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, insert, m.version, m.name, FormatTime(time.Now())); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Info("db_event", "event", "migrated", "version", m.version, "name", m.name)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}
