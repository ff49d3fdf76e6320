package repositories

import (
	"context"
	"fmt"
	"strings"

	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// ReportRepository runs the read-only aggregates over sqlx.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// scopePredicate renders scope as a WHERE fragment with ? placeholders.
// IN lists are expanded by sqlx.In and the result rebound for the driver.
func scopePredicate(scope entities.VisibilityScope, prefix string) (string, []interface{}) {
	parts := []string{prefix + "church_id = ?", prefix + "branch_id = ?"}
	args := []interface{}{scope.ChurchID, scope.BranchID}
	if scope.AllInBranch {
		return strings.Join(parts, " AND "), args
	}

	var or []string
	if len(scope.CellGroupIDs) > 0 {
		or = append(or, prefix+"cellule_id IN (?)")
		args = append(args, scope.CellGroupIDs)
	}
	if scope.CounselorID != "" {
		or = append(or, prefix+"conseiller_id = ?")
		args = append(args, scope.CounselorID)
	}
	parts = append(parts, "("+strings.Join(or, " OR ")+")")
	return strings.Join(parts, " AND "), args
}

func (r *ReportRepository) bind(template string, scope entities.VisibilityScope, prefix string) (string, []interface{}, error) {
	pred, args := scopePredicate(scope, prefix)
	query, args, err := sqlx.In(fmt.Sprintf(template, pred), args...)
	if err != nil {
		return "", nil, err
	}
	return r.db.Rebind(query), args, nil
}

func (r *ReportRepository) FollowUpsByStatus(ctx context.Context, scope entities.VisibilityScope) ([]entities.StatusCodeCount, error) {
	rows := []entities.StatusCodeCount{}
	if scope.Empty() {
		return rows, nil
	}
	query, args, err := r.bind(constants.CountFollowUpsByStatus, scope, "")
	if err != nil {
		return nil, err
	}
	err = withReadRetry(ctx, func() error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count follow-ups by status: %w", err)
	}
	return rows, nil
}

func (r *ReportRepository) FollowUpsByCellule(ctx context.Context, scope entities.VisibilityScope) ([]entities.CelluleCount, error) {
	rows := []entities.CelluleCount{}
	if scope.Empty() {
		return rows, nil
	}
	query, args, err := r.bind(constants.CountFollowUpsByCellule, scope, "")
	if err != nil {
		return nil, err
	}
	err = withReadRetry(ctx, func() error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count follow-ups by cellule: %w", err)
	}
	return rows, nil
}

// ContactsByStatus only reports for branch-wide scopes; contacts carry no
// destination before dispatch.
func (r *ReportRepository) ContactsByStatus(ctx context.Context, scope entities.VisibilityScope) ([]entities.StatusCount, error) {
	rows := []entities.StatusCount{}
	if !scope.AllInBranch {
		return rows, nil
	}
	query, args, err := r.bind(constants.CountContactsByStatus, scope, "")
	if err != nil {
		return nil, err
	}
	err = withReadRetry(ctx, func() error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts by status: %w", err)
	}
	return rows, nil
}

func (r *ReportRepository) Members(ctx context.Context, scope entities.VisibilityScope) (int64, error) {
	var total int64
	if scope.Empty() {
		return 0, nil
	}
	query, args, err := r.bind(constants.CountMembers, scope, "")
	if err != nil {
		return 0, err
	}
	err = withReadRetry(ctx, func() error {
		return r.db.GetContext(ctx, &total, query, args...)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return total, nil
}

// Orphans lists people that reached membres but still have a source row.
// A zero churchID scans every church.
func (r *ReportRepository) Orphans(ctx context.Context, churchID, branchID int64) ([]entities.Orphan, error) {
	orphans := []entities.Orphan{}
	for _, q := range []struct{ template, alias string }{
		{constants.FindOrphanContacts, "e."},
		{constants.FindOrphanFollowUps, "s."},
	} {
		pred, args := "1=1", []interface{}{}
		if churchID != 0 {
			pred = q.alias + "church_id = ? AND " + q.alias + "branch_id = ?"
			args = append(args, churchID, branchID)
		}
		query := r.db.Rebind(fmt.Sprintf(q.template, pred))

		var batch []entities.Orphan
		err := withReadRetry(ctx, func() error {
			batch = batch[:0]
			return r.db.SelectContext(ctx, &batch, query, args...)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find orphans: %w", err)
		}
		orphans = append(orphans, batch...)
	}
	return orphans, nil
}
