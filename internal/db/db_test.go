package db

import (
	"path/filepath"
	"testing"

	"github.com/littlegems/admissions/internal/models"
)

func TestInitPath(t *testing.T) {
	if err := InitPath(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("init: %v", err)
	}
	if Conn() == nil {
		t.Fatal("no connection")
	}

	// All three tables migrated.
	for _, table := range []string{"users", "applications", "application_children"} {
		if !Conn().Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}

	// WAL requested via the DSN.
	var mode string
	if err := Conn().Raw("PRAGMA journal_mode").Scan(&mode).Error; err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	// Composite indexes created by hand after migration.
	var n int64
	Conn().Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name IN ('idx_app_user_status','idx_app_child_app')").Scan(&n)
	if n != 2 {
		t.Errorf("found %d manual indexes, want 2", n)
	}
}

func TestUniqueReference(t *testing.T) {
	if err := InitPath(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("init: %v", err)
	}

	a := models.Application{ReferenceNumber: "LGS-000001", UserID: "u1", ParentFullName: "A", Status: "pending"}
	if err := Conn().Create(&a).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	b := models.Application{ReferenceNumber: "LGS-000001", UserID: "u2", ParentFullName: "B", Status: "pending"}
	if err := Conn().Create(&b).Error; err == nil {
		t.Fatal("duplicate reference number must be rejected")
	}
}
