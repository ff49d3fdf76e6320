package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"soultrack/followup/internal/config"
	"soultrack/followup/internal/db"
	"soultrack/followup/internal/lifecycle"
	gormModels "soultrack/followup/internal/models/gorm"
	"soultrack/followup/internal/testutil"

	"gorm.io/gorm"
)

// useSQLite points the CLI at a fresh database file and returns a handle
// for seeding it.
func useSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "soultrackctl.db"))
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("RETENTION_MONTHS", "3")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	gdb, sdb, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })
	return gdb
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		jsonOutput = false
		verbose = false
		reconcileChurch = 0
		reconcileBranch = 0
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSweepCommand_JSON(t *testing.T) {
	gdb := useSQLite(t)

	contact := testutil.SeedContact(t, gdb, gormModels.Contact{
		ContactKey: "old-refusal", Prenom: "Jean", Nom: "Dupont", Telephone: "+23055512345",
		Status: lifecycle.StatusRefused, ChurchID: 1, BranchID: 1,
	})
	if err := gdb.Model(contact).UpdateColumn("updated_at", time.Now().AddDate(0, -4, 0)).Error; err != nil {
		t.Fatalf("Failed to age contact: %v", err)
	}
	testutil.SeedContact(t, gdb, gormModels.Contact{
		ContactKey: "fresh", Prenom: "Awa", Nom: "Diallo", Telephone: "+23055599999",
		Status: lifecycle.StatusNew, ChurchID: 1, BranchID: 1,
	})

	out, err := runCLI(t, "sweep", "--json")
	if err != nil {
		t.Fatalf("sweep failed: %v (%s)", err, out)
	}

	var result struct {
		FollowUps int64
		Contacts  int64
		Cutoff    time.Time
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", out, err)
	}
	if result.Contacts != 1 || result.FollowUps != 0 {
		t.Errorf("Expected one expired refusal purged, got %+v", result)
	}
	if result.Cutoff.IsZero() {
		t.Error("Expected a cutoff in the output")
	}
	if n := testutil.Count(t, gdb, &gormModels.Contact{}, "contact_key = ?", "fresh"); n != 1 {
		t.Errorf("Expected the new contact to survive, got %d", n)
	}
}

func TestReconcileResolveCommand(t *testing.T) {
	gdb := useSQLite(t)

	rec := gormModels.TransferReconciliation{
		ContactKey: "jean", Operation: "integrate", SourceTable: "suivis", TargetTable: "membres",
		ChurchID: 1, BranchID: 1,
	}
	if err := gdb.Create(&rec).Error; err != nil {
		t.Fatalf("Failed to seed reconciliation: %v", err)
	}

	out, err := runCLI(t, "reconcile", "resolve", strconv.FormatInt(rec.ID, 10), "--json")
	if err != nil {
		t.Fatalf("resolve failed: %v (%s)", err, out)
	}
	var got gormModels.TransferReconciliation
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", out, err)
	}
	if got.ID != rec.ID || !got.Resolved {
		t.Errorf("Expected row %d resolved, got %+v", rec.ID, got)
	}
	if n := testutil.Count(t, gdb, &gormModels.TransferReconciliation{}, "resolved = ?", true); n != 1 {
		t.Errorf("Expected the row to be resolved in the store, got %d", n)
	}

	if _, err := runCLI(t, "reconcile", "resolve", "9999"); err == nil {
		t.Error("Expected an error for an unknown reconciliation id")
	}
	if _, err := runCLI(t, "reconcile", "resolve", "abc"); err == nil {
		t.Error("Expected an error for a non-numeric id")
	}
}
