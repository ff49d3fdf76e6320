package services

import (
	"context"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/logging"
)

// SessionService turns a verified identity into the request Session.
type SessionService struct {
	profiles *repositories.ProfileRepository
	cells    *repositories.CellGroupRepository
}

func NewSessionService(profiles *repositories.ProfileRepository, cells *repositories.CellGroupRepository) *SessionService {
	return &SessionService{profiles: profiles, cells: cells}
}

// LoadSession returns (nil, nil) when the identity has no profile row.
func (s *SessionService) LoadSession(ctx context.Context, identity *auth.Identity) (*auth.Session, error) {
	profile, err := s.profiles.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, storeError("failed to load profile", err)
	}
	if profile == nil {
		return nil, nil
	}

	session := &auth.Session{
		UserID:      profile.ID,
		Email:       identity.Email,
		DisplayName: profile.DisplayName(),
		ChurchID:    profile.ChurchID,
		BranchID:    profile.BranchID,
	}
	if session.Email == "" {
		session.Email = profile.Email
	}

	for _, role := range profile.RoleList() {
		if !role.IsKnown() {
			logging.Warn("Ignoring unknown role on profile", "user_id", profile.ID, "role", role)
			continue
		}
		session.Roles = append(session.Roles, role)
	}

	if session.HasRole(constants.RoleResponsableCellule) {
		ids, err := s.cells.IDsByResponsable(ctx, profile.ID)
		if err != nil {
			return nil, storeError("failed to load owned cellules", err)
		}
		session.CellGroupIDs = ids
	}
	if session.HasRole(constants.RoleConseiller) {
		session.CounselorID = profile.ID
	}

	return session, nil
}
