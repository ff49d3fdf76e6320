package gorm

import (
	"time"

	"soultrack/followup/internal/constants"
)

// Profile is an authenticated user. Profiles carrying the Conseiller role own
// follow-up records directly.
type Profile struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	Prenom    string    `gorm:"column:prenom" json:"prenom"`
	Nom       string    `gorm:"column:nom" json:"nom"`
	Email     string    `gorm:"column:email;index" json:"email"`
	Telephone string    `gorm:"column:telephone" json:"telephone"`
	Roles     string    `gorm:"column:roles" json:"roles"`
	ChurchID  int64     `gorm:"column:church_id;index" json:"church_id"`
	BranchID  int64     `gorm:"column:branch_id;index" json:"branch_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// RoleList parses the roles column.
func (p Profile) RoleList() []constants.Role {
	return constants.ParseRoles(p.Roles)
}

// HasRole reports whether the profile carries role.
func (p Profile) HasRole(role constants.Role) bool {
	for _, r := range p.RoleList() {
		if r == role {
			return true
		}
	}
	return false
}

// DisplayName is "Prenom Nom".
func (p Profile) DisplayName() string {
	if p.Nom == "" {
		return p.Prenom
	}
	return p.Prenom + " " + p.Nom
}
