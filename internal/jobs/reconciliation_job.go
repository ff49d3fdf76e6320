package jobs

import (
	"context"
	"fmt"
	"time"

	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/lifecycle"
	"soultrack/followup/internal/logging"
	"soultrack/followup/internal/metrics"
	"soultrack/followup/internal/models/entities"
	gormModels "soultrack/followup/internal/models/gorm"
)

// ReconcileResult lists what one pass found.
type ReconcileResult struct {
	Orphans  []entities.Orphan
	Recorded int
}

// ReconciliationJob finds people who reached membres but still have a row in
// evangelises or suivis, and flags each for an operator.
type ReconciliationJob struct {
	repos   *repositories.Set
	metrics *metrics.MetricsRegistry
}

func NewReconciliationJob(repos *repositories.Set, metricsReg *metrics.MetricsRegistry) *ReconciliationJob {
	return &ReconciliationJob{repos: repos, metrics: metricsReg}
}

// Reconcile scans one church/branch, or every church when churchID is 0.
// Orphans that already have an unresolved row are not recorded twice.
func (j *ReconciliationJob) Reconcile(ctx context.Context, churchID, branchID int64) (*ReconcileResult, error) {
	start := time.Now()
	defer func() { j.metrics.ObserveJob("reconciliation", time.Since(start).Seconds()) }()

	orphans, err := j.repos.Reports.Orphans(ctx, churchID, branchID)
	if err != nil {
		return nil, fmt.Errorf("reconciliation scan failed: %w", err)
	}

	result := &ReconcileResult{Orphans: orphans}
	for _, o := range orphans {
		inserted, err := j.repos.Reconciliations.Record(ctx, &gormModels.TransferReconciliation{
			ContactKey:  o.ContactKey,
			Telephone:   o.Telephone,
			Operation:   "integrate",
			SourceTable: o.SourceTable,
			TargetTable: "membres",
			Reason:      fmt.Sprintf("%s row %d still present after integration", o.SourceTable, o.SourceID),
			ChurchID:    o.ChurchID,
			BranchID:    o.BranchID,
		})
		if err != nil {
			return result, err
		}
		if inserted {
			result.Recorded++
		}
	}

	if len(orphans) > 0 {
		logging.Warn("Reconciliation found orphaned rows", "orphans", len(orphans), "recorded", result.Recorded, "church_id", churchID)
	} else {
		logging.Info("Reconciliation found no orphaned rows", "church_id", churchID)
	}
	return result, nil
}

// Resolve closes reconciliation row id once an operator has cleaned up the
// leftover rows. A churchID of 0 skips the church/branch check. Resolving an
// already resolved row is a no-op.
func (j *ReconciliationJob) Resolve(ctx context.Context, id, churchID, branchID int64, now time.Time) (*gormModels.TransferReconciliation, error) {
	rec, err := j.repos.Reconciliations.GetByID(ctx, id)
	if err != nil {
		return nil, lifecycle.NewTransientStoreError("failed to load reconciliation", err)
	}
	if rec == nil || (churchID != 0 && (rec.ChurchID != churchID || rec.BranchID != branchID)) {
		return nil, lifecycle.NewNotFoundError("reconciliation_not_found", constants.MsgReconciliationGone)
	}
	if rec.Resolved {
		return rec, nil
	}

	if err := j.repos.Reconciliations.Resolve(ctx, id, now); err != nil {
		return nil, lifecycle.NewTransientStoreError("failed to resolve reconciliation", err)
	}
	resolvedAt := now
	rec.Resolved = true
	rec.ResolvedAt = &resolvedAt
	logging.Info("Reconciliation resolved", "id", id, "contact_key", rec.ContactKey, "source_table", rec.SourceTable)
	return rec, nil
}
