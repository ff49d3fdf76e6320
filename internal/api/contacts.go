package api

import (
	"net/http"

	"soultrack/followup/internal/models/dtos"
)

// CreateContact handles POST /api/v1/contacts
func (h *Handlers) CreateContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}
		var req dtos.ContactInput
		if !decodeAndValidate(w, r, &req) {
			return
		}

		contact, err := h.deps.Services.Lifecycle.CreateContact(r.Context(), session, req)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusCreated, contact)
	}
}

// ListContacts handles GET /api/v1/contacts
func (h *Handlers) ListContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}

		contacts, err := h.deps.Services.Visibility.ScopedContacts(r.Context(), session, listFilter(r))
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &contacts)
	}
}

// UpdateEvangelismStatus handles PATCH /api/v1/contacts/{id}/evangelism-status
func (h *Handlers) UpdateEvangelismStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req dtos.EvangelismStatusPatch
		if !decodeAndValidate(w, r, &req) {
			return
		}

		contact, err := h.deps.Services.Lifecycle.UpdateEvangelismStatus(r.Context(), session, id, req.EvangelismStatus)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, contact)
	}
}

// UpdateContactStatus handles PATCH /api/v1/contacts/{id}/status
func (h *Handlers) UpdateContactStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req dtos.ContactStatusPatch
		if !decodeAndValidate(w, r, &req) {
			return
		}

		result, err := h.deps.Services.Lifecycle.UpdateContactStatus(r.Context(), session, id, req.Status)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, result)
	}
}
