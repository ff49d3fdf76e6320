package api

import (
	"net/http"

	"soultrack/followup/internal/models/dtos"
)

// Dispatch handles POST /api/v1/dispatch
//
// Per-contact outcomes are in the body; a batch where some contacts were
// already sent still answers 200.
func (h *Handlers) Dispatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}
		var req dtos.DispatchRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		result, err := h.deps.Services.Transfer.Dispatch(r.Context(), session, req)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, result)
	}
}
