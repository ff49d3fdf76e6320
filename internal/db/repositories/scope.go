package repositories

import (
	"soultrack/followup/internal/models/entities"

	"gorm.io/gorm"
)

// applyFollowUpScope restricts a suivis query to the rows the scope grants.
// Callers must check scope.Empty() first.
func applyFollowUpScope(q *gorm.DB, scope entities.VisibilityScope) *gorm.DB {
	q = q.Where("church_id = ? AND branch_id = ?", scope.ChurchID, scope.BranchID)
	if scope.AllInBranch {
		return q
	}

	switch {
	case len(scope.CellGroupIDs) > 0 && scope.CounselorID != "":
		return q.Where("(cellule_id IN ? OR conseiller_id = ?)", scope.CellGroupIDs, scope.CounselorID)
	case len(scope.CellGroupIDs) > 0:
		return q.Where("cellule_id IN ?", scope.CellGroupIDs)
	default:
		return q.Where("conseiller_id = ?", scope.CounselorID)
	}
}

// applyContactScope restricts an evangelises query. Non-administrators only
// see contacts that were dispatched to one of their destinations.
func applyContactScope(q *gorm.DB, scope entities.VisibilityScope) *gorm.DB {
	q = q.Where("church_id = ? AND branch_id = ?", scope.ChurchID, scope.BranchID)
	if scope.AllInBranch {
		return q
	}

	sub := applyFollowUpScope(q.Session(&gorm.Session{NewDB: true}).Table("suivis").Select("contact_key"), scope)
	return q.Where("contact_key IN (?)", sub)
}
