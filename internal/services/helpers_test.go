package services

import (
	"context"
	"sync"
	"testing"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/common"
	"soultrack/followup/internal/config"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/events"
	"soultrack/followup/internal/lifecycle"
	"soultrack/followup/internal/metrics"
	"soultrack/followup/internal/models/dtos"
	gormModels "soultrack/followup/internal/models/gorm"
	"soultrack/followup/internal/notify"
	"soultrack/followup/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	testChurch = int64(1)
	testBranch = int64(1)
)

// Mock Notifier
type mockNotifier struct {
	notifyFunc func(ctx context.Context, dest notify.Destination, subject string, msg dtos.Message) error
}

func (m *mockNotifier) Notify(ctx context.Context, dest notify.Destination, subject string, msg dtos.Message) error {
	if m.notifyFunc == nil {
		return nil
	}
	return m.notifyFunc(ctx, dest, subject, msg)
}

// recordingPublisher keeps every event it receives.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.LifecycleEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.LifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Name
	}
	return out
}

type fixture struct {
	db         *gorm.DB
	repos      *repositories.Set
	metrics    *metrics.MetricsRegistry
	publisher  *recordingPublisher
	notifier   *mockNotifier
	visibility *VisibilityService
	transfer   *TransferService
	lifecycle  *LifecycleService
	reports    *ReportService
	sessions   *SessionService
	cache      *common.CacheService
}

func newFixture(t *testing.T, handoffMode string) *fixture {
	t.Helper()
	gdb, sdb := testutil.NewStore(t)

	f := &fixture{
		db:        gdb,
		repos:     repositories.NewSet(gdb, sdb),
		metrics:   metrics.NewMetricsRegistry(prometheus.NewRegistry()),
		publisher: &recordingPublisher{},
		notifier:  &mockNotifier{},
		cache:     common.NewCacheService(0, 0),
	}
	f.visibility = NewVisibilityService(f.repos.Contacts, f.repos.FollowUps)
	f.transfer = NewTransferService(gdb, f.repos, f.visibility, f.notifier, f.publisher, f.metrics, handoffMode)
	f.lifecycle = NewLifecycleService(gdb, f.repos, f.visibility, f.transfer, f.publisher, f.metrics)
	f.reports = NewReportService(f.repos.Reports, f.visibility, f.cache, f.metrics)
	f.sessions = NewSessionService(f.repos.Profiles, f.repos.CellGroups)
	return f
}

func newTransactionFixture(t *testing.T) *fixture {
	return newFixture(t, config.HandoffModeTransaction)
}

// seedDefaults creates cellule 7 "Cellule Nord" led by Marie, a second
// cellule 8, and the profiles that own them.
func (f *fixture) seedDefaults(t *testing.T) {
	t.Helper()
	testutil.SeedProfile(t, f.db, gormModels.Profile{
		ID: "admin-1", Prenom: "Paul", Nom: "Admin", Email: "paul@church.test",
		Roles: string(constants.RoleAdmin), ChurchID: testChurch, BranchID: testBranch,
	})
	testutil.SeedProfile(t, f.db, gormModels.Profile{
		ID: "marie", Prenom: "Marie", Nom: "Leroy", Email: "marie@church.test", Telephone: "+2305778899",
		Roles: string(constants.RoleResponsableCellule), ChurchID: testChurch, BranchID: testBranch,
	})
	testutil.SeedProfile(t, f.db, gormModels.Profile{
		ID: "luc", Prenom: "Luc", Nom: "Bernard", Telephone: "+2305112233",
		Roles: string(constants.RoleResponsableCellule), ChurchID: testChurch, BranchID: testBranch,
	})
	testutil.SeedProfile(t, f.db, gormModels.Profile{
		ID: "anne", Prenom: "Anne", Nom: "Morel", Email: "anne@church.test", Telephone: "+2305998877",
		Roles: string(constants.RoleConseiller), ChurchID: testChurch, BranchID: testBranch,
	})
	testutil.SeedCell(t, f.db, gormModels.CellGroup{
		ID: 7, Cellule: "Cellule Nord", Responsable: "Marie", ResponsableID: "marie",
		Telephone: "+2305778899", Ville: "Port Louis", ChurchID: testChurch, BranchID: testBranch,
	})
	testutil.SeedCell(t, f.db, gormModels.CellGroup{
		ID: 8, Cellule: "Cellule Sud", Responsable: "Luc", ResponsableID: "luc",
		Telephone: "+2305112233", Ville: "Curepipe", ChurchID: testChurch, BranchID: testBranch,
	})
}

func (f *fixture) session(t *testing.T, userID string) *auth.Session {
	t.Helper()
	session, err := f.sessions.LoadSession(context.Background(), &auth.Identity{UserID: userID})
	if err != nil {
		t.Fatalf("Failed to load session for %s: %v", userID, err)
	}
	if session == nil {
		t.Fatalf("No profile for %s", userID)
	}
	return session
}

func (f *fixture) seedContact(t *testing.T, prenom, nom, phone string) *gormModels.Contact {
	t.Helper()
	return testutil.SeedContact(t, f.db, gormModels.Contact{
		ContactKey: prenom + "-" + nom,
		Prenom:     prenom,
		Nom:        nom,
		Telephone:  phone,
		IsWhatsapp: true,
		Ville:      "Port Louis",
		Besoin:     []string{"Prière"},
		Status:     lifecycle.StatusNew,
		ChurchID:   testChurch,
		BranchID:   testBranch,
	})
}

// dispatch sends contactID to destination as the admin and fails the test on
// anything but a sent outcome.
func (f *fixture) dispatch(t *testing.T, contactID int64, destType, destID string) int64 {
	t.Helper()
	result, err := f.transfer.Dispatch(context.Background(), f.session(t, "admin-1"), dtos.DispatchRequest{
		ContactIDs:      []int64{contactID},
		DestinationType: destType,
		DestinationID:   destID,
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("Expected contact %d to be sent, got %+v", contactID, result.Items)
	}
	return result.Items[0].FollowUpID
}
