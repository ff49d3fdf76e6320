package auth

import (
	"soultrack/followup/internal/constants"
)

// Session is the identity of one request, built once from the verified token
// and the caller's profile row. Services receive it explicitly.
type Session struct {
	UserID       string
	Email        string
	DisplayName  string
	Roles        []constants.Role
	ChurchID     int64
	BranchID     int64
	CellGroupIDs []int64
	// CounselorID is set when the profile carries the Conseiller role.
	CounselorID string
}

func (s *Session) HasRole(role constants.Role) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the session carries at least one of roles.
func (s *Session) HasAnyRole(roles ...constants.Role) bool {
	for _, role := range roles {
		if s.HasRole(role) {
			return true
		}
	}
	return false
}

func (s *Session) IsAdmin() bool {
	return s.HasRole(constants.RoleAdmin)
}
