// Package testutil opens migrated in-memory databases for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/authd/database"
	"github.com/kbukum/authd/database/migration"
	"github.com/kbukum/authd/logger"
)

// MemoryDSN is a private in-memory SQLite database with foreign keys on.
// Pair it with a single connection so every query sees the same database.
const MemoryDSN = "file::memory:?_foreign_keys=on"

// NewDB opens a fresh in-memory database with the full schema applied.
// The database is closed when the test ends.
func NewDB(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), Config(), logger.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migration.Up(db.GormDB); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// Config returns a database config for a single-connection in-memory
// database that never recycles its connection.
func Config() database.Config {
	return database.Config{
		DSN:             MemoryDSN,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: "0",
		ConnMaxIdleTime: "0",
		MaxRetries:      1,
		LogLevel:        "silent",
	}
}
