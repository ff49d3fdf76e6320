package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/common"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/events"
	"soultrack/followup/internal/lifecycle"
	"soultrack/followup/internal/logging"
	"soultrack/followup/internal/metrics"
	"soultrack/followup/internal/models/dtos"
	gormModels "soultrack/followup/internal/models/gorm"
	"soultrack/followup/internal/notify"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LifecycleService owns intake and status mutation. Hand-offs are delegated
// to TransferService.
type LifecycleService struct {
	db         *gorm.DB
	repos      *repositories.Set
	visibility *VisibilityService
	transfer   *TransferService
	resolver   destinationResolver
	publisher  events.Publisher
	metrics    *metrics.MetricsRegistry
	now        func() time.Time
}

func NewLifecycleService(
	db *gorm.DB,
	repos *repositories.Set,
	visibility *VisibilityService,
	transfer *TransferService,
	publisher events.Publisher,
	metricsReg *metrics.MetricsRegistry,
) *LifecycleService {
	return &LifecycleService{
		db:         db,
		repos:      repos,
		visibility: visibility,
		transfer:   transfer,
		resolver:   destinationResolver{cells: repos.CellGroups, profiles: repos.Profiles},
		publisher:  publisher,
		metrics:    metricsReg,
		now:        time.Now,
	}
}

// CreateContact records an intake by an authenticated user.
func (s *LifecycleService) CreateContact(ctx context.Context, session *auth.Session, input dtos.ContactInput) (*gormModels.Contact, error) {
	return s.createContact(ctx, session.ChurchID, session.BranchID, session.UserID, constants.ContactSourceIntakeForm, input)
}

// CreateContactFromLink records a submission made through a public link.
func (s *LifecycleService) CreateContactFromLink(ctx context.Context, link *common.IntakeLink, input dtos.ContactInput) (*gormModels.Contact, error) {
	return s.createContact(ctx, link.ChurchID, link.BranchID, "", constants.ContactSourcePublicLink, input)
}

func (s *LifecycleService) createContact(ctx context.Context, churchID, branchID int64, actorID string, source constants.ContactSource, input dtos.ContactInput) (*gormModels.Contact, error) {
	phone := common.NormalizePhone(input.Telephone)
	if strings.TrimSpace(input.Prenom) == "" || strings.TrimSpace(input.Nom) == "" {
		return nil, lifecycle.NewValidationError("name_required", "First and last name are required")
	}
	if len(strings.TrimPrefix(phone, "+")) < 6 {
		return nil, lifecycle.NewValidationError("invalid_phone", "A valid phone number is required")
	}

	contact := &gormModels.Contact{
		ContactKey:           uuid.New().String(),
		Prenom:               strings.TrimSpace(input.Prenom),
		Nom:                  strings.TrimSpace(input.Nom),
		Telephone:            phone,
		IsWhatsapp:           input.IsWhatsapp,
		Ville:                strings.TrimSpace(input.Ville),
		Besoin:               cleanTags(input.Besoin),
		InfosSupplementaires: input.InfosSupplementaires,
		PriereSalut:          input.PriereSalut,
		TypeConversion:       input.TypeConversion,
		Status:               lifecycle.StatusNew,
		EvangelismStatus:     lifecycle.EvangelismInProgress,
		Source:               string(source),
		ChurchID:             churchID,
		BranchID:             branchID,
	}

	if err := s.repos.Contacts.Create(ctx, contact); err != nil {
		return nil, storeError("failed to create contact", err)
	}

	logging.Info("Contact created", "contact_key", contact.ContactKey, "source", source, "church_id", churchID)
	events.Emit(ctx, s.publisher, events.LifecycleEvent{
		Name:       constants.EventContactCreated,
		ContactKey: contact.ContactKey,
		ChurchID:   churchID,
		BranchID:   branchID,
		ActorID:    actorID,
		Attributes: map[string]string{"source": string(source)},
	})
	return contact, nil
}

// UpdateEvangelismStatus moves a contact within the outreach vocabulary.
// Every move is allowed.
func (s *LifecycleService) UpdateEvangelismStatus(ctx context.Context, session *auth.Session, contactID int64, raw string) (*gormModels.Contact, error) {
	status, err := lifecycle.ParseEvangelismStatus(raw)
	if err != nil {
		return nil, lifecycle.NewValidationError("invalid_evangelism_status", constants.MsgInvalidStatus)
	}

	contact, err := s.visibility.VisibleContact(ctx, session, contactID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repos.Contacts.UpdateEvangelismStatus(ctx, contact.ID, status, now); err != nil {
		return nil, storeError("failed to update evangelism status", err)
	}
	contact.EvangelismStatus = status
	contact.UpdatedAt = now
	return contact, nil
}

// UpdateContactStatus applies a lifecycle transition to a contact and to all
// of its follow-ups. Entering Integrated hands the contact off.
func (s *LifecycleService) UpdateContactStatus(ctx context.Context, session *auth.Session, contactID int64, raw string) (*dtos.StatusUpdateResult, error) {
	requested, err := lifecycle.ParseStatus(raw)
	if err != nil {
		return nil, lifecycle.NewValidationError("invalid_status", constants.MsgInvalidStatus)
	}

	contact, err := s.visibility.VisibleContact(ctx, session, contactID)
	if err != nil {
		return nil, err
	}

	effect, err := lifecycle.Transition(contact.Status, requested)
	if err != nil {
		return nil, err
	}
	if effect == lifecycle.EffectTransfer {
		member, err := s.transfer.IntegrateContact(ctx, session, contactID, dtos.MemberDetails{})
		if err != nil {
			return nil, err
		}
		return &dtos.StatusUpdateResult{Member: member}, nil
	}

	if _, ok := requested.Code(); !ok {
		records, err := s.repos.FollowUps.ListByContactKey(ctx, contact.ContactKey)
		if err != nil {
			return nil, storeError("failed to load follow-ups", err)
		}
		if len(records) > 0 {
			return nil, lifecycle.NewValidationError("no_follow_up_code", constants.MsgNoFollowUpCode)
		}
	}

	if err := s.applyStatus(ctx, contact.ContactKey, contact.Status, requested, false, nil, nil); err != nil {
		return nil, err
	}
	s.recordTransition(ctx, session, contact.ContactKey, contact.ChurchID, contact.BranchID, contact.Status, requested, effect)

	updated, err := s.repos.Contacts.GetByID(ctx, contactID)
	if err != nil {
		return nil, storeError("failed to reload contact", err)
	}
	return &dtos.StatusUpdateResult{Contact: updated}, nil
}

// UpdateFollowUp is the destination owner's edit: comment and/or status.
// The record's code and the contact status change in one transaction.
func (s *LifecycleService) UpdateFollowUp(ctx context.Context, session *auth.Session, followUpID int64, patch dtos.FollowUpPatch) (*dtos.StatusUpdateResult, error) {
	requested, hasStatus, err := requestedStatus(patch)
	if err != nil {
		return nil, err
	}
	if !hasStatus && patch.Commentaire == nil {
		return nil, lifecycle.NewValidationError("empty_patch", "Nothing to update")
	}

	record, err := s.visibility.VisibleFollowUp(ctx, session, followUpID)
	if err != nil {
		return nil, err
	}
	current, err := record.StatusCode.Status()
	if err != nil {
		return nil, lifecycle.NewValidationError("invalid_status", constants.MsgInvalidStatus)
	}

	effect := lifecycle.EffectNone
	if hasStatus {
		if requested == lifecycle.StatusNew {
			return nil, lifecycle.NewValidationError("no_follow_up_code", constants.MsgNoFollowUpCode)
		}
		if effect, err = lifecycle.Transition(current, requested); err != nil {
			return nil, err
		}
	} else {
		requested = current
		if current == lifecycle.StatusIntegrated {
			return nil, lifecycle.NewValidationError("transition_not_allowed", constants.MsgTransitionNotAllowed)
		}
	}

	if effect == lifecycle.EffectTransfer {
		if patch.Commentaire != nil {
			if err := s.repos.FollowUps.UpdateComment(ctx, record.ID, *patch.Commentaire, s.now()); err != nil {
				return nil, storeError("failed to update comment", err)
			}
		}
		member, err := s.transfer.Integrate(ctx, session, followUpID, dtos.MemberDetails{})
		if err != nil {
			return nil, err
		}
		return &dtos.StatusUpdateResult{Member: member}, nil
	}

	var recordID *int64
	if patch.Commentaire != nil {
		recordID = &record.ID
	}
	if err := s.applyStatus(ctx, record.ContactKey, current, requested, true, recordID, patch.Commentaire); err != nil {
		return nil, err
	}
	if hasStatus {
		s.recordTransition(ctx, session, record.ContactKey, record.ChurchID, record.BranchID, current, requested, effect)
	}

	updated, err := s.repos.FollowUps.GetByID(ctx, followUpID)
	if err != nil {
		return nil, storeError("failed to reload follow-up", err)
	}
	return &dtos.StatusUpdateResult{FollowUp: updated}, nil
}

// applyStatus writes the status to the contact row and every follow-up of
// the person, plus an optional comment, in one transaction. updated_at is
// bumped on every write, which restarts the retention clock.
//
// The write is conditional on current still being stored: on the follow-up
// codes when fromFollowUp is set, on the contact row otherwise. A concurrent
// change makes it fail with a Conflict and write nothing.
func (s *LifecycleService) applyStatus(ctx context.Context, contactKey string, current, requested lifecycle.Status, fromFollowUp bool, commentRecordID *int64, comment *string) error {
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		followUps := s.repos.FollowUps.WithTx(tx)
		contacts := s.repos.Contacts.WithTx(tx)

		if code, ok := requested.Code(); ok {
			if fromFollowUp {
				from, _ := current.Code()
				n, err := followUps.UpdateStatusFrom(ctx, contactKey, from, code, now)
				if err != nil {
					return err
				}
				if n == 0 {
					return errStatusChanged()
				}
			} else if err := followUps.UpdateStatusByContactKey(ctx, contactKey, code, now); err != nil {
				return err
			}
		}

		if fromFollowUp {
			if err := contacts.UpdateStatus(ctx, contactKey, requested, now); err != nil {
				return err
			}
		} else {
			n, err := contacts.UpdateStatusFrom(ctx, contactKey, current, requested, now)
			if err != nil {
				return err
			}
			if n == 0 {
				return errStatusChanged()
			}
		}

		if commentRecordID != nil {
			if err := followUps.UpdateComment(ctx, *commentRecordID, *comment, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeError(fmt.Sprintf("failed to move %s to %s", current, requested), err)
	}
	return nil
}

func errStatusChanged() error {
	return lifecycle.NewConflictError("status_changed", constants.MsgStatusChanged)
}

func (s *LifecycleService) recordTransition(ctx context.Context, session *auth.Session, contactKey string, churchID, branchID int64, from, to lifecycle.Status, effect lifecycle.Effect) {
	if from == to {
		return
	}
	s.metrics.RecordTransition(string(to))
	logging.Info("Status changed", "contact_key", contactKey, "from", from, "to", to, "effect", effect.String(), "user_id", session.UserID)
	events.Emit(ctx, s.publisher, events.LifecycleEvent{
		Name:       constants.EventStatusChanged,
		ContactKey: contactKey,
		ChurchID:   churchID,
		BranchID:   branchID,
		ActorID:    session.UserID,
		Attributes: map[string]string{
			"from":   string(from),
			"to":     string(to),
			"effect": effect.String(),
		},
	})
}

// ComposeMessage rebuilds the hand-off message for a visible follow-up.
func (s *LifecycleService) ComposeMessage(ctx context.Context, session *auth.Session, followUpID int64) (*dtos.Message, error) {
	record, err := s.visibility.VisibleFollowUp(ctx, session, followUpID)
	if err != nil {
		return nil, err
	}

	dest, err := s.resolver.resolve(ctx, session, record.DestinationType, record.DestinationID)
	if err != nil {
		return nil, err
	}

	msg := notify.Compose(notify.CardFromFollowUp(record), dest.Destination)
	return &msg, nil
}

// requestedStatus reads the target status from either the label or the code.
func requestedStatus(patch dtos.FollowUpPatch) (lifecycle.Status, bool, error) {
	switch {
	case patch.Status != nil && *patch.Status != "":
		status, err := lifecycle.ParseStatus(*patch.Status)
		if err != nil {
			return "", false, lifecycle.NewValidationError("invalid_status", constants.MsgInvalidStatus)
		}
		return status, true, nil
	case patch.StatusCode != nil:
		status, err := lifecycle.StatusCode(*patch.StatusCode).Status()
		if err != nil {
			return "", false, lifecycle.NewValidationError("invalid_status", constants.MsgInvalidStatus)
		}
		return status, true, nil
	}
	return "", false, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
