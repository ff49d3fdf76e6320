// Package testutil builds throwaway SQLite stores for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"soultrack/followup/internal/db"
	gormModels "soultrack/followup/internal/models/gorm"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// NewStore opens a migrated SQLite database in a temp dir and returns the
// GORM and sqlx handles sharing its pool.
func NewStore(t *testing.T) (*gorm.DB, *sqlx.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "soultrack.db") + "?_busy_timeout=5000"
	gdb, err := db.InitORM("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	sdb, err := db.SqlxFromGorm(gdb, "sqlite3")
	if err != nil {
		t.Fatalf("Failed to wrap sqlx: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })
	return gdb, sdb
}

func SeedCell(t *testing.T, gdb *gorm.DB, cell gormModels.CellGroup) *gormModels.CellGroup {
	t.Helper()
	if err := gdb.Create(&cell).Error; err != nil {
		t.Fatalf("Failed to seed cellule: %v", err)
	}
	return &cell
}

func SeedProfile(t *testing.T, gdb *gorm.DB, profile gormModels.Profile) *gormModels.Profile {
	t.Helper()
	if err := gdb.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}
	return &profile
}

func SeedContact(t *testing.T, gdb *gorm.DB, contact gormModels.Contact) *gormModels.Contact {
	t.Helper()
	if err := gdb.Create(&contact).Error; err != nil {
		t.Fatalf("Failed to seed contact: %v", err)
	}
	return &contact
}

func SeedFollowUp(t *testing.T, gdb *gorm.DB, record gormModels.FollowUpRecord) *gormModels.FollowUpRecord {
	t.Helper()
	if err := gdb.Create(&record).Error; err != nil {
		t.Fatalf("Failed to seed follow-up: %v", err)
	}
	return &record
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, gdb *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := gdb.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	return n
}
