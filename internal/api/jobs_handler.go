package api

import (
	"net/http"
	"time"

	"soultrack/followup/internal/jobs"
	"soultrack/followup/internal/logging"
	"soultrack/followup/internal/models/dtos"
	gormModels "soultrack/followup/internal/models/gorm"
)

// JobsHandler handles manual job triggering endpoints
type JobsHandler struct {
	jobs *jobs.Jobs
	deps *Dependencies
}

func NewJobsHandler(deps *Dependencies) *JobsHandler {
	return &JobsHandler{jobs: deps.Jobs, deps: deps}
}

// TriggerRetentionSweep handles POST /internal/jobs/retention-sweep
//
// Called by the external scheduler with the cron secret header.
func (h *JobsHandler) TriggerRetentionSweep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		result, err := h.jobs.Sweep.Sweep(r.Context(), start)
		if err != nil {
			logging.Error("Manual retention sweep failed", "error", err)
			respondWithError(w, http.StatusServiceUnavailable, "Retention sweep failed")
			return
		}

		respondWithSuccess(w, http.StatusOK, &dtos.SweepResponse{
			Deleted:  result.Deleted(),
			RanAt:    start.UTC(),
			Cutoff:   result.Cutoff.UTC(),
			Duration: time.Since(start).Round(time.Millisecond).String(),
		})
	}
}

// TriggerReconciliation handles POST /api/v1/admin/reconcile
func (h *JobsHandler) TriggerReconciliation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}

		result, err := h.jobs.Reconcile.Reconcile(r.Context(), session.ChurchID, session.BranchID)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		pending, err := h.deps.Repo.Reconciliations.ListUnresolved(r.Context(), session.ChurchID, session.BranchID)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		if pending == nil {
			pending = []gormModels.TransferReconciliation{}
		}

		logging.Info("Reconciliation triggered", "user_id", session.UserID, "orphans", len(result.Orphans), "recorded", result.Recorded)
		respondWithSuccess(w, http.StatusOK, &dtos.ReconcileResponse{
			Orphans:  result.Orphans,
			Recorded: result.Recorded,
			Pending:  pending,
		})
	}
}

// ResolveReconciliation handles POST /api/v1/admin/reconciliations/{id}/resolve
func (h *JobsHandler) ResolveReconciliation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		rec, err := h.jobs.Reconcile.Resolve(r.Context(), id, session.ChurchID, session.BranchID, time.Now())
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		logging.Info("Reconciliation resolved via API", "user_id", session.UserID, "id", id)
		respondWithSuccess(w, http.StatusOK, rec)
	}
}
