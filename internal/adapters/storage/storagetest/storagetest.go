// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"playbook/internal/adapters/storage"
)

// Open returns a migrated in-memory SQLite database closed at test end.
func Open(t testing.TB) *storage.TimedDB {
	t.Helper()
	ctx := context.Background()
	raw, err := storage.Open(ctx, storage.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	if err := storage.MigrateDB(ctx, raw, storage.DriverSQLite); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return storage.NewTimedDB(raw, storage.DriverSQLite, nil)
}
