package repositories

import (
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Set groups the repositories built over one GORM handle and one sqlx pool.
type Set struct {
	Contacts        *ContactRepository
	FollowUps       *FollowUpRepository
	Members         *MemberRepository
	Reconciliations *ReconciliationRepository
	CellGroups      *CellGroupRepository
	Profiles        *ProfileRepository
	Reports         *ReportRepository
}

func NewSet(gdb *gorm.DB, sdb *sqlx.DB) *Set {
	return &Set{
		Contacts:        NewContactRepository(gdb),
		FollowUps:       NewFollowUpRepository(gdb),
		Members:         NewMemberRepository(gdb),
		Reconciliations: NewReconciliationRepository(gdb),
		CellGroups:      NewCellGroupRepository(gdb),
		Profiles:        NewProfileRepository(gdb),
		Reports:         NewReportRepository(sdb),
	}
}
