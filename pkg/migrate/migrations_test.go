package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/stashkeeper-backend/pkg/db/models"
	"github.com/angelmondragon/stashkeeper-backend/pkg/migrate"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matches %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestItemsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_items.sql")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS item_sequences",
		"PRIMARY KEY (owner_id, kind)",
		"CREATE TABLE IF NOT EXISTS items",
		"purchase_price numeric(12,2) NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS items_owner_number_idx",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestTrackedItemsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_tracked_items.sql")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS tracked_items",
		"status text NOT NULL DEFAULT 'STORAGE'",
		"REFERENCES tracked_items(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS usage_periods_one_open_idx ON usage_periods (item_id) WHERE end_date IS NULL",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate dir: %v", err)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Item Tags")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_item_tags.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestCreateSQLMigrationSortsAfterNewest(t *testing.T) {
	dir := t.TempDir()
	future := filepath.Join(dir, "29990101000000_later.sql")
	if err := os.WriteFile(future, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	path, err := migrate.CreateSQLMigration(dir, "next")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "29990101000001_next.sql" {
		t.Fatalf("expected version after newest, got %s", filepath.Base(path))
	}
}

func TestValidateDirRejectsBrokenFiles(t *testing.T) {
	cases := map[string]string{
		"20260101000000_no_down.sql":    "-- +goose Up\nSELECT 1;\n",
		"20260101000000_unbalanced.sql": "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
		"20260101000000_down_first.sql": "-- +goose Down\n-- +goose Up\n",
		"not_a_migration.sql":           "-- +goose Up\n-- +goose Down\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := migrate.ValidateDir(dir); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestAutoMigrateEnforcesSingleOpenPeriod(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "schema.db") + "?_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx := context.Background()
	if err := migrate.AutoMigrate(ctx, conn); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	item := models.TrackedItem{OwnerID: uuid.New(), ItemNumber: 1, Name: "quilt", Season: "WINTER"}
	if err := conn.Create(&item).Error; err != nil {
		t.Fatalf("create tracked item: %v", err)
	}
	first := models.UsagePeriod{ItemID: item.ID, StartDate: item.CreatedAt}
	if err := conn.Create(&first).Error; err != nil {
		t.Fatalf("create first period: %v", err)
	}
	second := models.UsagePeriod{ItemID: item.ID, StartDate: item.CreatedAt}
	if err := conn.Create(&second).Error; err == nil {
		t.Fatalf("expected the open period index to reject a second open period")
	}
}
