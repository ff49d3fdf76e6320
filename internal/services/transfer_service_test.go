package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"soultrack/followup/internal/config"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/lifecycle"
	"soultrack/followup/internal/models/dtos"
	gormModels "soultrack/followup/internal/models/gorm"
	"soultrack/followup/internal/notify"
	"soultrack/followup/internal/testutil"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

// failDeletes makes every DELETE on the given tables fail with a connection
// error. With no tables, every DELETE fails.
func failDeletes(t *testing.T, db *gorm.DB, tables ...string) {
	t.Helper()
	err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_delete", func(tx *gorm.DB) {
		if len(tables) == 0 {
			tx.AddError(errors.New("connection reset by peer"))
			return
		}
		for _, table := range tables {
			if tx.Statement.Table == table {
				tx.AddError(errors.New("connection reset by peer"))
				return
			}
		}
	})
	if err != nil {
		t.Fatalf("Failed to register delete callback: %v", err)
	}
}

func TestDispatch_SendsContactToCellule(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")

	var notified []notify.Destination
	f.notifier.notifyFunc = func(_ context.Context, dest notify.Destination, subject string, _ dtos.Message) error {
		notified = append(notified, dest)
		if !strings.Contains(subject, "Jean Dupont") {
			t.Errorf("Unexpected subject %q", subject)
		}
		return nil
	}

	result, err := f.transfer.Dispatch(context.Background(), f.session(t, "admin-1"), dtos.DispatchRequest{
		ContactIDs:      []int64{jean.ID},
		DestinationType: constants.DestinationCellule,
		DestinationID:   "7",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Sent != 1 || result.Duplicates != 0 || result.Failed != 0 {
		t.Fatalf("Unexpected counts: %+v", result)
	}
	if result.DestinationName != "Cellule Nord" {
		t.Errorf("Expected destination name Cellule Nord, got %s", result.DestinationName)
	}

	item := result.Items[0]
	if item.Message == nil || !strings.Contains(item.Message.Text, "Bonjour Marie") {
		t.Fatalf("Expected composed message for Marie, got %+v", item.Message)
	}
	if !strings.HasPrefix(item.Message.WhatsAppURI, "https://wa.me/2305778899?text=") {
		t.Errorf("Unexpected WhatsApp URI %s", item.Message.WhatsAppURI)
	}
	if !strings.HasPrefix(item.Message.MailtoURI, "mailto:marie@church.test") {
		t.Errorf("Expected mailto to fall back to the responsable's email, got %s", item.Message.MailtoURI)
	}

	record, err := f.repos.FollowUps.GetByID(context.Background(), item.FollowUpID)
	if err != nil || record == nil {
		t.Fatalf("Expected follow-up record, got %v (err %v)", record, err)
	}
	if record.StatusCode != lifecycle.CodeSent {
		t.Errorf("Expected status code 1, got %d", record.StatusCode)
	}
	if record.CelluleID == nil || *record.CelluleID != 7 {
		t.Errorf("Expected cellule_id 7, got %v", record.CelluleID)
	}
	if record.DestinationName != "Cellule Nord" || record.ContactKey != jean.ContactKey {
		t.Errorf("Unexpected record %+v", record)
	}

	contact, _ := f.repos.Contacts.GetByID(context.Background(), jean.ID)
	if contact.Status != lifecycle.StatusSent {
		t.Errorf("Expected contact status envoye, got %s", contact.Status)
	}

	if err := f.transfer.WaitNotifications(context.Background()); err != nil {
		t.Fatalf("Failed waiting for notifications: %v", err)
	}
	if len(notified) != 1 || notified[0].Name != "Cellule Nord" {
		t.Errorf("Expected one notification to Cellule Nord, got %+v", notified)
	}
	if got := promtestutil.ToFloat64(f.metrics.DispatchOutcomesTotal.WithLabelValues(string(dtos.DispatchSent))); got != 1 {
		t.Errorf("Expected 1 sent dispatch metric, got %v", got)
	}
	if names := f.publisher.names(); len(names) != 1 || names[0] != constants.EventContactDispatched {
		t.Errorf("Expected one dispatched event, got %v", names)
	}
}

func TestDispatch_SecondDispatchIsDuplicate(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	f.dispatch(t, jean.ID, constants.DestinationCellule, "7")

	result, err := f.transfer.Dispatch(context.Background(), f.session(t, "admin-1"), dtos.DispatchRequest{
		ContactIDs:      []int64{jean.ID},
		DestinationType: constants.DestinationCellule,
		DestinationID:   "7",
	})
	if err != nil {
		t.Fatalf("Expected duplicate to be reported per item, got %v", err)
	}
	if result.Sent != 0 || result.Duplicates != 1 {
		t.Fatalf("Expected 0 sent and 1 duplicate, got %+v", result)
	}
	if result.Items[0].Outcome != dtos.DispatchDuplicate || result.Items[0].Warning != constants.MsgAlreadySent {
		t.Errorf("Unexpected item %+v", result.Items[0])
	}
	if n := testutil.Count(t, f.db, &gormModels.FollowUpRecord{}, "contact_key = ?", jean.ContactKey); n != 1 {
		t.Errorf("Expected exactly one follow-up record, got %d", n)
	}
}

func TestDispatch_SamePersonToTwoDestinations(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")

	f.dispatch(t, jean.ID, constants.DestinationCellule, "7")
	f.dispatch(t, jean.ID, constants.DestinationConseiller, "anne")

	records, err := f.repos.FollowUps.ListByContactKey(context.Background(), jean.ContactKey)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected two follow-up records, got %d", len(records))
	}
	for _, r := range records {
		if r.StatusCode != lifecycle.CodeSent {
			t.Errorf("Expected every record to be Sent, got %d on %s", r.StatusCode, r.DestinationType)
		}
	}
}

func TestDispatch_DestinationErrors(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	testutil.SeedCell(t, f.db, gormModels.CellGroup{ID: 9, Cellule: "Cellule Est", ChurchID: testChurch, BranchID: testBranch})
	testutil.SeedCell(t, f.db, gormModels.CellGroup{ID: 10, Cellule: "Autre église", Telephone: "+2305000000", ChurchID: 2, BranchID: 1})
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	admin := f.session(t, "admin-1")

	tests := []struct {
		name     string
		req      dtos.DispatchRequest
		wantKind lifecycle.Kind
	}{
		{"no contacts", dtos.DispatchRequest{DestinationType: "cellule", DestinationID: "7"}, lifecycle.KindValidation},
		{"unknown cellule", dtos.DispatchRequest{ContactIDs: []int64{jean.ID}, DestinationType: "cellule", DestinationID: "99"}, lifecycle.KindNotFound},
		{"other church cellule", dtos.DispatchRequest{ContactIDs: []int64{jean.ID}, DestinationType: "cellule", DestinationID: "10"}, lifecycle.KindNotFound},
		{"cellule without phone", dtos.DispatchRequest{ContactIDs: []int64{jean.ID}, DestinationType: "cellule", DestinationID: "9"}, lifecycle.KindValidation},
		{"profile is not a conseiller", dtos.DispatchRequest{ContactIDs: []int64{jean.ID}, DestinationType: "conseiller", DestinationID: "marie"}, lifecycle.KindNotFound},
		{"unknown destination type", dtos.DispatchRequest{ContactIDs: []int64{jean.ID}, DestinationType: "ministere", DestinationID: "1"}, lifecycle.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.transfer.Dispatch(context.Background(), admin, tt.req)
			if !lifecycle.IsKind(err, tt.wantKind) {
				t.Errorf("Expected %s error, got %v", tt.wantKind, err)
			}
		})
	}

	if n := testutil.Count(t, f.db, &gormModels.FollowUpRecord{}, ""); n != 0 {
		t.Errorf("Expected no follow-up records, got %d", n)
	}
}

func TestDispatch_BatchReportsPerContact(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	refused := f.seedContact(t, "Marc", "Petit", "+23055500011")
	if err := f.db.Model(refused).Update("status", lifecycle.StatusRefused).Error; err != nil {
		t.Fatalf("Failed to refuse contact: %v", err)
	}

	result, err := f.transfer.Dispatch(context.Background(), f.session(t, "admin-1"), dtos.DispatchRequest{
		ContactIDs:      []int64{jean.ID, 999, refused.ID},
		DestinationType: constants.DestinationCellule,
		DestinationID:   "7",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Sent != 1 || result.Failed != 2 {
		t.Fatalf("Expected 1 sent and 2 failed, got %+v", result)
	}
	if result.Items[1].Error != constants.MsgContactNotFound {
		t.Errorf("Expected not-found message for missing contact, got %q", result.Items[1].Error)
	}
	if result.Items[2].Outcome != dtos.DispatchFailed || result.Items[2].Error == "" {
		t.Errorf("Expected refused contact to fail, got %+v", result.Items[2])
	}
}

func TestDispatch_NotifierFailureDoesNotFailDispatch(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	f.notifier.notifyFunc = func(context.Context, notify.Destination, string, dtos.Message) error {
		return errors.New("smtp: 421 service not available")
	}

	id := f.dispatch(t, jean.ID, constants.DestinationCellule, "7")
	if id == 0 {
		t.Error("Expected follow-up id on sent item")
	}
}

func TestDispatch_StalledNotifierDoesNotHoldResponse(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	awa := f.seedContact(t, "Awa", "Diallo", "+23055599999")
	f.transfer.notifyTimeout = 500 * time.Millisecond

	var mu sync.Mutex
	var expired int
	f.notifier.notifyFunc = func(ctx context.Context, _ notify.Destination, _ string, _ dtos.Message) error {
		<-ctx.Done()
		mu.Lock()
		expired++
		mu.Unlock()
		return ctx.Err()
	}

	reqCtx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	result, err := f.transfer.Dispatch(reqCtx, f.session(t, "admin-1"), dtos.DispatchRequest{
		ContactIDs:      []int64{jean.ID, awa.ID},
		DestinationType: constants.DestinationCellule,
		DestinationID:   "7",
	})
	// The request finishing must not cut the notifications short.
	cancel()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed >= f.transfer.notifyTimeout {
		t.Errorf("Expected dispatch to return before notifications time out, took %v", elapsed)
	}
	if result.Sent != 2 {
		t.Fatalf("Expected both contacts sent, got %+v", result)
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := f.transfer.WaitNotifications(waitCtx); err != nil {
		t.Fatalf("Expected notifications to finish at their own deadline, got %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if expired != 2 {
		t.Errorf("Expected both notifications to hit their timeout, got %d", expired)
	}
}

func TestIntegrate_TransactionMode(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	followUpID := f.dispatch(t, jean.ID, constants.DestinationCellule, "7")

	member, err := f.transfer.Integrate(context.Background(), f.session(t, "marie"), followUpID, dtos.MemberDetails{
		BaptemeEau: true,
		Ministere:  []string{"Louange"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if member.ID == 0 || member.ContactKey != jean.ContactKey {
		t.Fatalf("Unexpected member %+v", member)
	}
	if member.CelluleID == nil || *member.CelluleID != 7 {
		t.Errorf("Expected member to keep cellule 7, got %v", member.CelluleID)
	}
	if !member.BaptemeEau || member.StatutIntegration != string(lifecycle.StatusIntegrated) {
		t.Errorf("Expected membership details to be applied, got %+v", member)
	}

	if n := testutil.Count(t, f.db, &gormModels.Member{}, "contact_key = ?", jean.ContactKey); n != 1 {
		t.Errorf("Expected one member, got %d", n)
	}
	if n := testutil.Count(t, f.db, &gormModels.FollowUpRecord{}, "contact_key = ?", jean.ContactKey); n != 0 {
		t.Errorf("Expected follow-ups to be removed, got %d", n)
	}
	if n := testutil.Count(t, f.db, &gormModels.Contact{}, "contact_key = ?", jean.ContactKey); n != 0 {
		t.Errorf("Expected contact to be removed, got %d", n)
	}
	if got := promtestutil.ToFloat64(f.metrics.IntegrationsTotal); got != 1 {
		t.Errorf("Expected 1 integration metric, got %v", got)
	}
}

func TestIntegrate_TransactionRollsBackOnDeleteFailure(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	followUpID := f.dispatch(t, jean.ID, constants.DestinationCellule, "7")
	failDeletes(t, f.db, "evangelises")

	_, err := f.transfer.Integrate(context.Background(), f.session(t, "admin-1"), followUpID, dtos.MemberDetails{})
	if !lifecycle.IsKind(err, lifecycle.KindTransientStore) {
		t.Fatalf("Expected transient store error, got %v", err)
	}

	if n := testutil.Count(t, f.db, &gormModels.Member{}, ""); n != 0 {
		t.Errorf("Expected member insert to be rolled back, got %d", n)
	}
	if n := testutil.Count(t, f.db, &gormModels.FollowUpRecord{}, ""); n != 1 {
		t.Errorf("Expected follow-up to survive, got %d", n)
	}
}

func TestIntegrate_CompensatingMode(t *testing.T) {
	f := newFixture(t, config.HandoffModeCompensating)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	followUpID := f.dispatch(t, jean.ID, constants.DestinationCellule, "7")

	if _, err := f.transfer.Integrate(context.Background(), f.session(t, "admin-1"), followUpID, dtos.MemberDetails{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n := testutil.Count(t, f.db, &gormModels.Member{}, ""); n != 1 {
		t.Errorf("Expected one member, got %d", n)
	}
	if n := testutil.Count(t, f.db, &gormModels.Contact{}, ""); n != 0 {
		t.Errorf("Expected contact to be removed, got %d", n)
	}
}

func TestIntegrate_CompensatingUndoesFailedHandOff(t *testing.T) {
	f := newFixture(t, config.HandoffModeCompensating)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	followUpID := f.dispatch(t, jean.ID, constants.DestinationCellule, "7")
	failDeletes(t, f.db, "evangelises")

	_, err := f.transfer.Integrate(context.Background(), f.session(t, "admin-1"), followUpID, dtos.MemberDetails{})
	if err == nil || lifecycle.IsKind(err, lifecycle.KindPartialFailure) {
		t.Fatalf("Expected a plain store error after compensation, got %v", err)
	}

	if n := testutil.Count(t, f.db, &gormModels.Member{}, ""); n != 0 {
		t.Errorf("Expected member to be removed by compensation, got %d", n)
	}
	if n := testutil.Count(t, f.db, &gormModels.FollowUpRecord{}, "contact_key = ?", jean.ContactKey); n != 1 {
		t.Errorf("Expected follow-up to be restored, got %d", n)
	}
	if n := testutil.Count(t, f.db, &gormModels.TransferReconciliation{}, ""); n != 0 {
		t.Errorf("Expected no reconciliation rows, got %d", n)
	}
}

func TestIntegrate_PartialFailureIsReported(t *testing.T) {
	f := newFixture(t, config.HandoffModeCompensating)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	followUpID := f.dispatch(t, jean.ID, constants.DestinationCellule, "7")
	failDeletes(t, f.db)

	_, err := f.transfer.Integrate(context.Background(), f.session(t, "admin-1"), followUpID, dtos.MemberDetails{})
	if !lifecycle.IsKind(err, lifecycle.KindPartialFailure) {
		t.Fatalf("Expected partial failure, got %v", err)
	}
	var le *lifecycle.Error
	if !errors.As(err, &le) || le.Code != "reconciliation_required" {
		t.Errorf("Expected reconciliation_required code, got %v", err)
	}

	pending, err := f.repos.Reconciliations.ListUnresolved(context.Background(), testChurch, testBranch)
	if err != nil {
		t.Fatalf("Expected no error listing reconciliations, got %v", err)
	}
	if len(pending) != 1 || pending[0].ContactKey != jean.ContactKey || pending[0].SourceTable != "suivis" {
		t.Errorf("Expected one reconciliation row for suivis, got %+v", pending)
	}
	if got := promtestutil.ToFloat64(f.metrics.PartialFailuresTotal); got != 1 {
		t.Errorf("Expected 1 partial failure metric, got %v", got)
	}
}

func TestIntegrate_RejectsRefusedAndHiddenRecords(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	followUpID := f.dispatch(t, jean.ID, constants.DestinationCellule, "7")

	_, err := f.transfer.Integrate(context.Background(), f.session(t, "luc"), followUpID, dtos.MemberDetails{})
	if !lifecycle.IsKind(err, lifecycle.KindForbidden) {
		t.Errorf("Expected forbidden for another cellule's responsable, got %v", err)
	}

	_, err = f.transfer.Integrate(context.Background(), f.session(t, "admin-1"), 999, dtos.MemberDetails{})
	if !lifecycle.IsKind(err, lifecycle.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}

	if err := f.db.Model(&gormModels.FollowUpRecord{}).Where("id = ?", followUpID).Update("status_code", lifecycle.CodeRefused).Error; err != nil {
		t.Fatalf("Failed to refuse record: %v", err)
	}
	_, err = f.transfer.Integrate(context.Background(), f.session(t, "admin-1"), followUpID, dtos.MemberDetails{})
	if !lifecycle.IsKind(err, lifecycle.KindValidation) {
		t.Errorf("Expected validation error integrating a refused record, got %v", err)
	}
}

func TestIntegrateContact_TakesDestinationFromFollowUp(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedDefaults(t)
	jean := f.seedContact(t, "Jean", "Dupont", "+23055512345")
	f.dispatch(t, jean.ID, constants.DestinationConseiller, "anne")

	member, err := f.transfer.IntegrateContact(context.Background(), f.session(t, "admin-1"), jean.ID, dtos.MemberDetails{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if member.ConseillerID == nil || *member.ConseillerID != "anne" {
		t.Errorf("Expected conseiller anne on member, got %v", member.ConseillerID)
	}
	if n := testutil.Count(t, f.db, &gormModels.FollowUpRecord{}, ""); n != 0 {
		t.Errorf("Expected follow-ups to be removed, got %d", n)
	}
}
