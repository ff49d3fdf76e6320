package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/config"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/events"
	"soultrack/followup/internal/lifecycle"
	"soultrack/followup/internal/logging"
	"soultrack/followup/internal/metrics"
	"soultrack/followup/internal/models/dtos"
	gormModels "soultrack/followup/internal/models/gorm"
	"soultrack/followup/internal/notify"

	"gorm.io/gorm"
)

// TransferService moves people between collections: evangelises to suivis
// on dispatch, suivis/evangelises to membres on integration.
type TransferService struct {
	db         *gorm.DB
	repos      *repositories.Set
	visibility *VisibilityService
	resolver   destinationResolver
	notifier   notify.Notifier
	publisher  events.Publisher
	metrics    *metrics.MetricsRegistry
	mode       string
	now        func() time.Time

	notifyTimeout time.Duration
	notifications sync.WaitGroup
}

// Upper bound for one destination notification; the dispatch response never
// waits on it.
const defaultNotifyTimeout = 30 * time.Second

func NewTransferService(
	db *gorm.DB,
	repos *repositories.Set,
	visibility *VisibilityService,
	notifier notify.Notifier,
	publisher events.Publisher,
	metricsReg *metrics.MetricsRegistry,
	handoffMode string,
) *TransferService {
	if handoffMode == "" {
		handoffMode = config.HandoffModeTransaction
	}
	return &TransferService{
		db:         db,
		repos:      repos,
		visibility: visibility,
		resolver:   destinationResolver{cells: repos.CellGroups, profiles: repos.Profiles},
		notifier:   notifier,
		publisher:  publisher,
		metrics:    metricsReg,
		mode:       handoffMode,
		now:        time.Now,

		notifyTimeout: defaultNotifyTimeout,
	}
}

// Dispatch sends each contact to the destination. The destination is
// resolved once; each contact then runs in its own transaction, so one bad
// contact does not block the batch.
func (s *TransferService) Dispatch(ctx context.Context, session *auth.Session, req dtos.DispatchRequest) (*dtos.DispatchResult, error) {
	if len(req.ContactIDs) == 0 {
		return nil, lifecycle.NewValidationError("contacts_required", "At least one contact must be selected")
	}
	dest, err := s.resolver.resolve(ctx, session, req.DestinationType, req.DestinationID)
	if err != nil {
		return nil, err
	}

	result := &dtos.DispatchResult{
		DestinationType: dest.Type,
		DestinationID:   dest.ID,
		DestinationName: dest.Name,
		Items:           make([]dtos.DispatchItem, 0, len(req.ContactIDs)),
	}

	for _, contactID := range req.ContactIDs {
		item := s.dispatchOne(ctx, session, contactID, dest)
		switch item.Outcome {
		case dtos.DispatchSent:
			result.Sent++
		case dtos.DispatchDuplicate:
			result.Duplicates++
		default:
			result.Failed++
		}
		s.metrics.RecordDispatch(string(item.Outcome))
		result.Items = append(result.Items, item)
	}

	logging.Info("Dispatch completed",
		"user_id", session.UserID,
		"destination_type", dest.Type,
		"destination_id", dest.ID,
		"sent", result.Sent,
		"duplicates", result.Duplicates,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *TransferService) dispatchOne(ctx context.Context, session *auth.Session, contactID int64, dest *resolvedDestination) dtos.DispatchItem {
	item := dtos.DispatchItem{ContactID: contactID}
	now := s.now()

	var contact *gormModels.Contact
	var record *gormModels.FollowUpRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contacts := s.repos.Contacts.WithTx(tx)
		followUps := s.repos.FollowUps.WithTx(tx)

		c, err := contacts.GetByID(ctx, contactID)
		if err != nil {
			return err
		}
		if c == nil || c.ChurchID != session.ChurchID || c.BranchID != session.BranchID {
			return lifecycle.NewNotFoundError("contact_not_found", constants.MsgContactNotFound)
		}
		if _, err := lifecycle.Transition(c.Status, lifecycle.StatusSent); err != nil {
			return err
		}

		exists, err := followUps.ExistsForDestination(ctx, c.Telephone, dest.Type, dest.ID)
		if err != nil {
			return err
		}
		if exists {
			return lifecycle.NewConflictError("already_sent", constants.MsgAlreadySent)
		}

		rec := &gormModels.FollowUpRecord{
			ContactKey:           c.ContactKey,
			Prenom:               c.Prenom,
			Nom:                  c.Nom,
			Telephone:            c.Telephone,
			IsWhatsapp:           c.IsWhatsapp,
			Ville:                c.Ville,
			Besoin:               c.Besoin,
			InfosSupplementaires: c.InfosSupplementaires,
			DestinationType:      dest.Type,
			DestinationID:        dest.ID,
			DestinationName:      dest.Name,
			CelluleID:            dest.CelluleID,
			ConseillerID:         dest.ConseillerID,
			StatusCode:           lifecycle.CodeSent,
			ChurchID:             c.ChurchID,
			BranchID:             c.BranchID,
		}
		if err := followUps.Create(ctx, rec); err != nil {
			if repositories.IsDuplicate(err) {
				return lifecycle.NewConflictError("already_sent", constants.MsgAlreadySent)
			}
			return err
		}

		// Every follow-up of the person carries the contact's status.
		if err := followUps.UpdateStatusByContactKey(ctx, c.ContactKey, lifecycle.CodeSent, now); err != nil {
			return err
		}
		if err := contacts.UpdateStatus(ctx, c.ContactKey, lifecycle.StatusSent, now); err != nil {
			return err
		}

		contact, record = c, rec
		return nil
	})

	if err != nil {
		var le *lifecycle.Error
		switch {
		case lifecycle.IsKind(err, lifecycle.KindConflict):
			logging.Info("Contact already sent to destination, skipping",
				"contact_id", contactID,
				"destination_type", dest.Type,
				"destination_id", dest.ID,
			)
			item.Outcome = dtos.DispatchDuplicate
			item.Warning = constants.MsgAlreadySent
		case errors.As(err, &le):
			item.Outcome = dtos.DispatchFailed
			item.Error = le.Message
		default:
			logging.Error("Dispatch failed", "contact_id", contactID, "error", err)
			item.Outcome = dtos.DispatchFailed
			item.Error = constants.MsgStoreUnavailable
		}
		return item
	}

	item.Outcome = dtos.DispatchSent
	item.FollowUpID = record.ID

	card := notify.CardFromContact(contact)
	msg := notify.Compose(card, dest.Destination)
	item.Message = &msg
	s.notifyAsync(ctx, dest.Destination, notify.Subject(card), msg, record.ID)

	s.metrics.RecordTransition(string(lifecycle.StatusSent))
	events.Emit(ctx, s.publisher, events.LifecycleEvent{
		Name:       constants.EventContactDispatched,
		ContactKey: contact.ContactKey,
		ChurchID:   contact.ChurchID,
		BranchID:   contact.BranchID,
		ActorID:    session.UserID,
		Attributes: map[string]string{
			"destination_type": dest.Type,
			"destination_id":   dest.ID,
			"follow_up_id":     fmt.Sprint(record.ID),
		},
	})
	return item
}

// notifyAsync sends the destination notification in the background, detached
// from the request and bounded by notifyTimeout.
func (s *TransferService) notifyAsync(ctx context.Context, dest notify.Destination, subject string, msg dtos.Message, followUpID int64) {
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(nctx, dest, subject, msg); err != nil {
			logging.Warn("Failed to notify destination", "follow_up_id", followUpID, "error", err)
		}
	}()
}

// WaitNotifications blocks until in-flight notifications are done or ctx
// ends. Used on shutdown.
func (s *TransferService) WaitNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.notifications.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Integrate hands a follow-up over to the member registry.
func (s *TransferService) Integrate(ctx context.Context, session *auth.Session, followUpID int64, details dtos.MemberDetails) (*gormModels.Member, error) {
	record, err := s.visibility.VisibleFollowUp(ctx, session, followUpID)
	if err != nil {
		return nil, err
	}

	current, err := record.StatusCode.Status()
	if err != nil {
		return nil, lifecycle.NewValidationError("invalid_status", constants.MsgInvalidStatus)
	}
	if _, err := lifecycle.Transition(current, lifecycle.StatusIntegrated); err != nil {
		return nil, err
	}

	contact, err := s.repos.Contacts.GetByContactKey(ctx, record.ContactKey)
	if err != nil {
		return nil, storeError("failed to load contact", err)
	}

	member := s.memberFromFollowUp(record, contact, details)
	return s.handOff(ctx, session, member)
}

// IntegrateContact integrates a contact directly from evangelises, taking
// its destination from the first follow-up when there is one.
func (s *TransferService) IntegrateContact(ctx context.Context, session *auth.Session, contactID int64, details dtos.MemberDetails) (*gormModels.Member, error) {
	contact, err := s.visibility.VisibleContact(ctx, session, contactID)
	if err != nil {
		return nil, err
	}
	if _, err := lifecycle.Transition(contact.Status, lifecycle.StatusIntegrated); err != nil {
		return nil, err
	}

	member := s.memberFromContact(contact, details)
	records, err := s.repos.FollowUps.ListByContactKey(ctx, contact.ContactKey)
	if err != nil {
		return nil, storeError("failed to load follow-ups", err)
	}
	if len(records) > 0 {
		member.CelluleID = records[0].CelluleID
		member.ConseillerID = records[0].ConseillerID
	}
	return s.handOff(ctx, session, member)
}

func (s *TransferService) handOff(ctx context.Context, session *auth.Session, member *gormModels.Member) (*gormModels.Member, error) {
	var err error
	if s.mode == config.HandoffModeCompensating {
		err = s.handOffCompensating(ctx, session, member)
	} else {
		err = s.handOffTx(ctx, member)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.RecordIntegration()
	s.metrics.RecordTransition(string(lifecycle.StatusIntegrated))
	logging.Info("Contact integrated", "contact_key", member.ContactKey, "member_id", member.ID, "user_id", session.UserID)
	events.Emit(ctx, s.publisher, events.LifecycleEvent{
		Name:       constants.EventContactIntegrated,
		ContactKey: member.ContactKey,
		ChurchID:   member.ChurchID,
		BranchID:   member.BranchID,
		ActorID:    session.UserID,
		Attributes: map[string]string{"member_id": fmt.Sprint(member.ID)},
	})
	return member, nil
}

// handOffTx inserts the member and removes the source rows in one
// transaction.
func (s *TransferService) handOffTx(ctx context.Context, member *gormModels.Member) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Members.WithTx(tx).Create(ctx, member); err != nil {
			if repositories.IsDuplicate(err) {
				return lifecycle.NewConflictError("already_integrated", "Contact is already a member")
			}
			return err
		}
		if _, err := s.repos.FollowUps.WithTx(tx).DeleteByContactKey(ctx, member.ContactKey); err != nil {
			return err
		}
		if _, err := s.repos.Contacts.WithTx(tx).DeleteByContactKey(ctx, member.ContactKey); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		member.ID = 0
		return storeError("failed to integrate contact", err)
	}
	return nil
}

// handOffCompensating runs the steps one by one for stores where the three
// writes cannot share a transaction. A failed delete is undone by re-inserting
// what was removed and deleting the member; if that fails too the hand-off is
// reported as partial and a reconciliation row is written.
func (s *TransferService) handOffCompensating(ctx context.Context, session *auth.Session, member *gormModels.Member) error {
	snapshot, err := s.repos.FollowUps.ListByContactKey(ctx, member.ContactKey)
	if err != nil {
		return storeError("failed to load follow-ups", err)
	}

	if err := s.repos.Members.Create(ctx, member); err != nil {
		if repositories.IsDuplicate(err) {
			return lifecycle.NewConflictError("already_integrated", "Contact is already a member")
		}
		return storeError("failed to integrate contact", err)
	}

	if _, err := s.repos.FollowUps.DeleteByContactKey(ctx, member.ContactKey); err != nil {
		return s.compensate(ctx, session, member, nil, "suivis", err)
	}
	if _, err := s.repos.Contacts.DeleteByContactKey(ctx, member.ContactKey); err != nil {
		return s.compensate(ctx, session, member, snapshot, "evangelises", err)
	}
	return nil
}

func (s *TransferService) compensate(ctx context.Context, session *auth.Session, member *gormModels.Member, removed []gormModels.FollowUpRecord, failedTable string, cause error) error {
	var compErr error
	for i := range removed {
		if err := s.repos.FollowUps.Create(ctx, &removed[i]); err != nil {
			compErr = err
			break
		}
	}
	if compErr == nil {
		compErr = s.repos.Members.Delete(ctx, member.ID)
	}

	if compErr == nil {
		logging.Warn("Hand-off rolled back", "contact_key", member.ContactKey, "failed_table", failedTable, "error", cause)
		return storeError("failed to integrate contact", cause)
	}

	s.metrics.RecordPartialFailure()
	logging.Error("Hand-off partially applied, reconciliation required",
		"contact_key", member.ContactKey,
		"member_id", member.ID,
		"failed_table", failedTable,
		"error", cause,
		"compensation_error", compErr,
	)

	rec := &gormModels.TransferReconciliation{
		ContactKey:  member.ContactKey,
		Telephone:   member.Telephone,
		Operation:   "integrate",
		SourceTable: failedTable,
		TargetTable: "membres",
		Reason:      fmt.Sprintf("delete from %s failed: %v; compensation failed: %v", failedTable, cause, compErr),
		ChurchID:    member.ChurchID,
		BranchID:    member.BranchID,
	}
	if _, err := s.repos.Reconciliations.Record(ctx, rec); err != nil {
		logging.Error("Failed to record reconciliation", "contact_key", member.ContactKey, "user_id", session.UserID, "error", err)
	}

	return lifecycle.NewPartialFailureError(constants.MsgReconciliationNeeded, errors.Join(cause, compErr))
}

func (s *TransferService) memberFromFollowUp(record *gormModels.FollowUpRecord, contact *gormModels.Contact, details dtos.MemberDetails) *gormModels.Member {
	member := &gormModels.Member{
		ContactKey:           record.ContactKey,
		Prenom:               record.Prenom,
		Nom:                  record.Nom,
		Telephone:            record.Telephone,
		IsWhatsapp:           record.IsWhatsapp,
		Ville:                record.Ville,
		Besoin:               record.Besoin,
		InfosSupplementaires: record.InfosSupplementaires,
		CelluleID:            record.CelluleID,
		ConseillerID:         record.ConseillerID,
		ChurchID:             record.ChurchID,
		BranchID:             record.BranchID,
	}
	if contact != nil && member.InfosSupplementaires == "" {
		member.InfosSupplementaires = contact.InfosSupplementaires
	}
	s.applyDetails(member, details)
	return member
}

func (s *TransferService) memberFromContact(contact *gormModels.Contact, details dtos.MemberDetails) *gormModels.Member {
	member := &gormModels.Member{
		ContactKey:           contact.ContactKey,
		Prenom:               contact.Prenom,
		Nom:                  contact.Nom,
		Telephone:            contact.Telephone,
		IsWhatsapp:           contact.IsWhatsapp,
		Ville:                contact.Ville,
		Besoin:               contact.Besoin,
		InfosSupplementaires: contact.InfosSupplementaires,
		ChurchID:             contact.ChurchID,
		BranchID:             contact.BranchID,
	}
	s.applyDetails(member, details)
	return member
}

func (s *TransferService) applyDetails(member *gormModels.Member, details dtos.MemberDetails) {
	member.StatutIntegration = string(lifecycle.StatusIntegrated)
	member.BaptemeEau = details.BaptemeEau
	member.BaptemeEsprit = details.BaptemeEsprit
	member.Ministere = details.Ministere
	member.Formation = details.Formation
	member.IntegratedAt = s.now()
}
