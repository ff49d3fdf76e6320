package api

import (
	"net/http"

	"soultrack/followup/internal/models/dtos"
)

// ListFollowUps handles GET /api/v1/follow-ups
func (h *Handlers) ListFollowUps() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}

		records, err := h.deps.Services.Visibility.ScopedFollowUps(r.Context(), session, listFilter(r))
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &records)
	}
}

// UpdateFollowUp handles PATCH /api/v1/follow-ups/{id}
func (h *Handlers) UpdateFollowUp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req dtos.FollowUpPatch
		if !decodeAndValidate(w, r, &req) {
			return
		}

		result, err := h.deps.Services.Lifecycle.UpdateFollowUp(r.Context(), session, id, req)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, result)
	}
}

// IntegrateFollowUp handles POST /api/v1/follow-ups/{id}/integrate
func (h *Handlers) IntegrateFollowUp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		// The membership details are optional.
		var req dtos.MemberDetails
		if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
			return
		}

		member, err := h.deps.Services.Transfer.Integrate(r.Context(), session, id, req)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusCreated, member)
	}
}

// GetFollowUpMessage handles GET /api/v1/follow-ups/{id}/message
func (h *Handlers) GetFollowUpMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		msg, err := h.deps.Services.Lifecycle.ComposeMessage(r.Context(), session, id)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, msg)
	}
}
