package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/lifecycle"
	gormModels "soultrack/followup/internal/models/gorm"
	"soultrack/followup/internal/testutil"
)

func TestReconcile_FlagsOrphansOnce(t *testing.T) {
	gdb, sdb := testutil.NewStore(t)
	repos := repositories.NewSet(gdb, sdb)
	job := NewReconciliationJob(repos, nil)

	// Jean reached membres but is still in evangelises and suivis.
	testutil.SeedContact(t, gdb, gormModels.Contact{
		ContactKey: "jean", Prenom: "Jean", Nom: "Dupont", Telephone: "+23055512345",
		Status: lifecycle.StatusSent, ChurchID: 1, BranchID: 1,
	})
	testutil.SeedFollowUp(t, gdb, gormModels.FollowUpRecord{
		ContactKey: "jean", Telephone: "+23055512345", DestinationType: "cellule", DestinationID: "7",
		StatusCode: lifecycle.CodeSent, ChurchID: 1, BranchID: 1,
	})
	if err := gdb.Create(&gormModels.Member{ContactKey: "jean", Prenom: "Jean", Nom: "Dupont", Telephone: "+23055512345", ChurchID: 1, BranchID: 1}).Error; err != nil {
		t.Fatalf("Failed to seed member: %v", err)
	}
	// Awa is a plain contact.
	testutil.SeedContact(t, gdb, gormModels.Contact{
		ContactKey: "awa", Prenom: "Awa", Nom: "Diallo", Telephone: "+23055599999",
		Status: lifecycle.StatusNew, ChurchID: 1, BranchID: 1,
	})

	result, err := job.Reconcile(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Orphans) != 2 || result.Recorded != 2 {
		t.Fatalf("Expected 2 orphans recorded, got %+v", result)
	}
	for _, o := range result.Orphans {
		if o.ContactKey != "jean" {
			t.Errorf("Unexpected orphan %+v", o)
		}
	}

	again, err := job.Reconcile(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Expected no error on global pass, got %v", err)
	}
	if len(again.Orphans) != 2 || again.Recorded != 0 {
		t.Errorf("Expected orphans to be found but not recorded twice, got %+v", again)
	}

	pending, _ := repos.Reconciliations.ListUnresolved(context.Background(), 1, 1)
	if len(pending) != 2 {
		t.Fatalf("Expected 2 unresolved rows, got %d", len(pending))
	}
	resolved, err := job.Resolve(context.Background(), pending[0].ID, 1, 1, pending[0].CreatedAt)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	if !resolved.Resolved || resolved.ResolvedAt == nil {
		t.Errorf("Expected row to be marked resolved, got %+v", resolved)
	}
	third, _ := job.Reconcile(context.Background(), 1, 1)
	if third.Recorded != 1 {
		t.Errorf("Expected a resolved row that is still orphaned to be flagged again, got %d", third.Recorded)
	}
}

func TestResolve_ScopedToChurchAndIdempotent(t *testing.T) {
	gdb, sdb := testutil.NewStore(t)
	repos := repositories.NewSet(gdb, sdb)
	job := NewReconciliationJob(repos, nil)
	ctx := context.Background()

	rec := &gormModels.TransferReconciliation{
		ContactKey: "jean", Operation: "integrate", SourceTable: "suivis", TargetTable: "membres",
		ChurchID: 1, BranchID: 1,
	}
	if _, err := repos.Reconciliations.Record(ctx, rec); err != nil {
		t.Fatalf("Failed to seed reconciliation: %v", err)
	}

	_, err := job.Resolve(ctx, rec.ID, 2, 1, time.Now())
	var le *lifecycle.Error
	if !errors.As(err, &le) || le.Kind != lifecycle.KindNotFound {
		t.Fatalf("Expected NotFound for another church, got %v", err)
	}
	if _, err := job.Resolve(ctx, 9999, 0, 0, time.Now()); !errors.As(err, &le) || le.Kind != lifecycle.KindNotFound {
		t.Fatalf("Expected NotFound for unknown id, got %v", err)
	}

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := job.Resolve(ctx, rec.ID, 0, 0, first); err != nil {
		t.Fatalf("Expected global resolve to succeed, got %v", err)
	}
	again, err := job.Resolve(ctx, rec.ID, 1, 1, first.Add(time.Hour))
	if err != nil {
		t.Fatalf("Expected second resolve to be a no-op, got %v", err)
	}
	if again.ResolvedAt == nil || !again.ResolvedAt.Equal(first) {
		t.Errorf("Expected resolved_at to stay %v, got %v", first, again.ResolvedAt)
	}

	pending, _ := repos.Reconciliations.ListUnresolved(ctx, 1, 1)
	if len(pending) != 0 {
		t.Errorf("Expected no unresolved rows, got %d", len(pending))
	}
}
