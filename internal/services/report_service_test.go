package services

import (
	"context"
	"testing"

	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/lifecycle"
	gormModels "soultrack/followup/internal/models/gorm"
	"soultrack/followup/internal/testutil"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReportSummary_AdminSeesBranch(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	awa := f.seedContact(t, "Awa", "Diallo", "+23055599999")
	f.seedContact(t, "Marc", "Petit", "+23055500011")
	f.dispatch(t, jean.ID, constants.DestinationCellule, "7")
	f.dispatch(t, awa.ID, constants.DestinationCellule, "8")
	testutil.SeedContact(t, f.db, gormModels.Contact{
		ContactKey: "other-church", Prenom: "X", Nom: "Y", Telephone: "+23050000000",
		Status: lifecycle.StatusNew, ChurchID: 2, BranchID: 1,
	})

	summary, err := f.reports.Summary(context.Background(), f.session(t, "admin-1"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(summary.FollowUpsByStatus) != 1 || summary.FollowUpsByStatus[0].StatusCode != int(lifecycle.CodeSent) || summary.FollowUpsByStatus[0].Total != 2 {
		t.Errorf("Expected 2 sent follow-ups, got %+v", summary.FollowUpsByStatus)
	}
	if len(summary.FollowUpsByCell) != 2 {
		t.Errorf("Expected two cellules, got %+v", summary.FollowUpsByCell)
	}

	byStatus := map[string]int64{}
	for _, row := range summary.ContactsByStatus {
		byStatus[row.Status] = row.Total
	}
	if byStatus["envoye"] != 2 || byStatus["nouveau"] != 1 {
		t.Errorf("Expected 2 envoye and 1 nouveau in church 1, got %v", byStatus)
	}
}

func TestReportSummary_ScopedAndCached(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	awa := f.seedContact(t, "Awa", "Diallo", "+23055599999")
	f.dispatch(t, jean.ID, constants.DestinationCellule, "7")
	f.dispatch(t, awa.ID, constants.DestinationCellule, "8")
	marie := f.session(t, "marie")
	ctx := context.Background()

	first, err := f.reports.Summary(ctx, marie)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(first.FollowUpsByCell) != 1 || first.FollowUpsByCell[0].DestinationName != "Cellule Nord" {
		t.Errorf("Expected only Cellule Nord, got %+v", first.FollowUpsByCell)
	}
	if len(first.ContactsByStatus) != 0 {
		t.Errorf("Expected no contact aggregate for a cellule scope, got %+v", first.ContactsByStatus)
	}

	second, err := f.reports.Summary(ctx, marie)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Error("Expected second call to be served from cache")
	}

	pattern := string(constants.CachePrefixReportSummary)
	if hits := promtestutil.ToFloat64(f.metrics.CacheHitsTotal.WithLabelValues(pattern)); hits != 1 {
		t.Errorf("Expected 1 cache hit, got %v", hits)
	}
	if misses := promtestutil.ToFloat64(f.metrics.CacheMissesTotal.WithLabelValues(pattern)); misses != 1 {
		t.Errorf("Expected 1 cache miss, got %v", misses)
	}
}

func TestReportSummary_EmptyScope(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	testutil.SeedProfile(t, f.db, gormModels.Profile{ID: "visitor", ChurchID: testChurch, BranchID: testBranch})

	summary, err := f.reports.Summary(context.Background(), f.session(t, "visitor"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.Members != 0 || len(summary.FollowUpsByStatus) != 0 {
		t.Errorf("Expected empty summary, got %+v", summary)
	}
	if f.cache.ItemCount() != 0 {
		t.Error("Expected empty scope not to be cached")
	}
}
