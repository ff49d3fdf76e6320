package constants

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role mirrors the values stored in profiles.roles
type Role string

const (
	RoleAdmin                  Role = "Administrateur"
	RoleResponsableCellule     Role = "ResponsableCellule"
	RoleConseiller             Role = "Conseiller"
	RoleResponsableIntegration Role = "ResponsableIntegration"
)

// Stringer ­– convenient for fmt / logs
func (r Role) String() string { return string(r) }

// IsKnown reports whether r is one of the roles the service grants access to.
func (r Role) IsKnown() bool {
	switch r {
	case RoleAdmin, RoleResponsableCellule, RoleConseiller, RoleResponsableIntegration:
		return true
	}
	return false
}

// ParseRoles splits the comma separated roles column. Unknown entries are kept
// so they can be logged; access checks ignore them.
func ParseRoles(raw string) []Role {
	var roles []Role
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		roles = append(roles, Role(part))
	}
	return roles
}

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *Role) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = Role(v)
	case []byte:
		*r = Role(v)
	default:
		return fmt.Errorf("Role: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r Role) Value() (driver.Value, error) { return string(r), nil }
