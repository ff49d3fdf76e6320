package jobs

import (
	"context"
	"time"

	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/events"
	"soultrack/followup/internal/metrics"

	"gorm.io/gorm"
)

// Jobs holds the background jobs so handlers and the CLI can run them on
// demand.
type Jobs struct {
	Sweep     *RetentionSweepJob
	Reconcile *ReconciliationJob
}

func NewJobs(db *gorm.DB, repos *repositories.Set, retentionMonths int, metricsReg *metrics.MetricsRegistry, publisher events.Publisher) *Jobs {
	return &Jobs{
		Sweep:     NewRetentionSweepJob(db, repos, retentionMonths, metricsReg, publisher),
		Reconcile: NewReconciliationJob(repos, metricsReg),
	}
}

// InitializeJobs builds the jobs and starts the scheduled sweep. A
// non-positive interval leaves scheduling to an external cron calling the
// internal endpoint.
func InitializeJobs(ctx context.Context, db *gorm.DB, repos *repositories.Set, retentionMonths int, sweepInterval time.Duration, metricsReg *metrics.MetricsRegistry, publisher events.Publisher) *Jobs {
	j := NewJobs(db, repos, retentionMonths, metricsReg, publisher)
	if sweepInterval > 0 {
		go j.Sweep.RunScheduled(ctx, sweepInterval)
	}
	return j
}
