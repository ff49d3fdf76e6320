package jobs

import (
	"context"
	"fmt"
	"time"

	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/events"
	"soultrack/followup/internal/logging"
	"soultrack/followup/internal/metrics"

	"gorm.io/gorm"
)

// SweepResult describes one retention sweep run.
type SweepResult struct {
	FollowUps int64
	Contacts  int64
	Cutoff    time.Time
}

func (r SweepResult) Deleted() int64 {
	return r.FollowUps + r.Contacts
}

// RetentionSweepJob purges refused follow-ups and contacts whose last update
// is older than the retention window.
type RetentionSweepJob struct {
	db        *gorm.DB
	repos     *repositories.Set
	months    int
	metrics   *metrics.MetricsRegistry
	publisher events.Publisher
}

func NewRetentionSweepJob(db *gorm.DB, repos *repositories.Set, retentionMonths int, metricsReg *metrics.MetricsRegistry, publisher events.Publisher) *RetentionSweepJob {
	return &RetentionSweepJob{
		db:        db,
		repos:     repos,
		months:    retentionMonths,
		metrics:   metricsReg,
		publisher: publisher,
	}
}

// Cutoff is the oldest updated_at a refused row may have and survive.
func (j *RetentionSweepJob) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, -j.months, 0)
}

// Sweep deletes in one transaction, so a store error deletes nothing. Running
// it twice in the same window deletes nothing the second time.
func (j *RetentionSweepJob) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	start := time.Now()
	result := SweepResult{Cutoff: j.Cutoff(now)}

	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := j.repos.FollowUps.WithTx(tx).DeleteRefusedBefore(ctx, result.Cutoff)
		if err != nil {
			return err
		}
		result.FollowUps = n

		n, err = j.repos.Contacts.WithTx(tx).DeleteRefusedBefore(ctx, result.Cutoff)
		if err != nil {
			return err
		}
		result.Contacts = n
		return nil
	})
	j.metrics.ObserveJob("retention_sweep", time.Since(start).Seconds())
	if err != nil {
		logging.Error("Retention sweep failed", "cutoff", result.Cutoff, "error", err)
		return SweepResult{Cutoff: result.Cutoff}, fmt.Errorf("retention sweep failed: %w", err)
	}

	j.metrics.RecordSwept("suivis", result.FollowUps)
	j.metrics.RecordSwept("evangelises", result.Contacts)
	logging.Info("Retention sweep completed",
		"cutoff", result.Cutoff,
		"follow_ups_deleted", result.FollowUps,
		"contacts_deleted", result.Contacts,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if result.Deleted() > 0 {
		events.Emit(ctx, j.publisher, events.LifecycleEvent{
			Name: constants.EventRetentionSwept,
			Attributes: map[string]string{
				"follow_ups": fmt.Sprint(result.FollowUps),
				"contacts":   fmt.Sprint(result.Contacts),
				"cutoff":     result.Cutoff.UTC().Format(time.RFC3339),
			},
		})
	}
	return result, nil
}

// RunScheduled sweeps once at start and then every interval until ctx is
// cancelled.
func (j *RetentionSweepJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := j.Sweep(ctx, time.Now()); err != nil {
		logging.Error("Error in initial retention sweep", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if _, err := j.Sweep(ctx, time.Now()); err != nil {
				logging.Error("Error in scheduled retention sweep", "error", err)
			}
		case <-ctx.Done():
			logging.Info("Shutting down scheduled retention sweep")
			return
		}
	}
}
