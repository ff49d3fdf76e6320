package services

import (
	"context"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/lifecycle"
	"soultrack/followup/internal/models/dtos"
	"soultrack/followup/internal/models/entities"
	gormModels "soultrack/followup/internal/models/gorm"
)

// VisibilityService decides which rows a session may read. The decision is
// expressed as a VisibilityScope the repositories turn into SQL.
type VisibilityService struct {
	contacts  *repositories.ContactRepository
	followUps *repositories.FollowUpRepository
}

func NewVisibilityService(contacts *repositories.ContactRepository, followUps *repositories.FollowUpRepository) *VisibilityService {
	return &VisibilityService{contacts: contacts, followUps: followUps}
}

// ScopeFor fails closed: a session without a recognised role gets an empty
// scope.
func (s *VisibilityService) ScopeFor(session *auth.Session) entities.VisibilityScope {
	if session == nil {
		return entities.VisibilityScope{}
	}

	scope := entities.VisibilityScope{ChurchID: session.ChurchID, BranchID: session.BranchID}
	if session.IsAdmin() {
		scope.AllInBranch = true
		return scope
	}
	if session.HasRole(constants.RoleResponsableCellule) {
		scope.CellGroupIDs = session.CellGroupIDs
	}
	if session.HasRole(constants.RoleConseiller) {
		scope.CounselorID = session.CounselorID
	}
	return scope
}

func (s *VisibilityService) ScopedFollowUps(ctx context.Context, session *auth.Session, filter dtos.ListFilter) ([]gormModels.FollowUpRecord, error) {
	var code *lifecycle.StatusCode
	if filter.Status != "" {
		status, err := lifecycle.ParseStatus(filter.Status)
		if err != nil {
			return nil, lifecycle.NewValidationError("invalid_status", constants.MsgInvalidStatus)
		}
		c, ok := status.Code()
		if !ok {
			return []gormModels.FollowUpRecord{}, nil
		}
		code = &c
	}

	records, err := s.followUps.ListScoped(ctx, s.ScopeFor(session), code, filter.Limit, filter.Offset)
	if err != nil {
		return nil, storeError("failed to list follow-ups", err)
	}
	return records, nil
}

func (s *VisibilityService) ScopedContacts(ctx context.Context, session *auth.Session, filter dtos.ListFilter) ([]gormModels.Contact, error) {
	var status *lifecycle.Status
	if filter.Status != "" {
		parsed, err := lifecycle.ParseStatus(filter.Status)
		if err != nil {
			return nil, lifecycle.NewValidationError("invalid_status", constants.MsgInvalidStatus)
		}
		status = &parsed
	}

	contacts, err := s.contacts.ListScoped(ctx, s.ScopeFor(session), status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, storeError("failed to list contacts", err)
	}
	return contacts, nil
}

// VisibleFollowUp returns the record when session may see it. A record that
// exists outside the scope yields a Forbidden error, a missing one NotFound.
func (s *VisibilityService) VisibleFollowUp(ctx context.Context, session *auth.Session, id int64) (*gormModels.FollowUpRecord, error) {
	record, err := s.followUps.GetScoped(ctx, id, s.ScopeFor(session))
	if err != nil {
		return nil, storeError("failed to load follow-up", err)
	}
	if record != nil {
		return record, nil
	}

	exists, err := s.followUps.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("failed to load follow-up", err)
	}
	if exists == nil || session == nil || exists.ChurchID != session.ChurchID || exists.BranchID != session.BranchID {
		return nil, lifecycle.NewNotFoundError("follow_up_not_found", constants.MsgFollowUpNotFound)
	}
	return nil, lifecycle.NewForbiddenError(constants.MsgForbidden)
}

// VisibleContact is VisibleFollowUp for evangelises rows.
func (s *VisibilityService) VisibleContact(ctx context.Context, session *auth.Session, id int64) (*gormModels.Contact, error) {
	contact, err := s.contacts.GetScoped(ctx, id, s.ScopeFor(session))
	if err != nil {
		return nil, storeError("failed to load contact", err)
	}
	if contact != nil {
		return contact, nil
	}

	exists, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("failed to load contact", err)
	}
	if exists == nil || session == nil || exists.ChurchID != session.ChurchID || exists.BranchID != session.BranchID {
		return nil, lifecycle.NewNotFoundError("contact_not_found", constants.MsgContactNotFound)
	}
	return nil, lifecycle.NewForbiddenError(constants.MsgForbidden)
}
