package api

import "net/http"

// ReportSummary handles GET /api/v1/reports/summary
func (h *Handlers) ReportSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}

		summary, err := h.deps.Services.Reports.Summary(r.Context(), session)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, summary)
	}
}
