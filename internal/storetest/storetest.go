// Package storetest opens throwaway SQLite databases with the full schema for
// repository and service tests.
package storetest

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/stashkeeper-backend/pkg/db"
	"github.com/angelmondragon/stashkeeper-backend/pkg/migrate"
)

// DSN returns a file-backed SQLite DSN under dir. Transactions begin with
// BEGIN IMMEDIATE so concurrent writers queue on the database lock instead of
// failing on upgrade, standing in for Postgres row locks.
func DSN(dir string) string {
	return fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on",
		filepath.Join(dir, "test.db"))
}

// Open returns a migrated database client that is closed when t finishes.
func Open(t testing.TB) *db.Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(DSN(t.TempDir())), &gorm.Config{
		Logger:                 gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent}),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migrate.AutoMigrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	client := db.NewFromGorm(conn)
	t.Cleanup(func() { _ = client.Close() })
	return client
}
