package api

import (
	"errors"
	"net/http"
	"time"

	"soultrack/followup/internal/common"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/logging"
	"soultrack/followup/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

const defaultIntakeLinkTTL = 30 * 24 * time.Hour

// CreateIntakeLink handles POST /api/v1/admin/intake-links
func (h *Handlers) CreateIntakeLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}
		var req dtos.IntakeLinkRequest
		if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
			return
		}

		ttl := defaultIntakeLinkTTL
		if req.TTLHours > 0 {
			ttl = time.Duration(req.TTLHours) * time.Hour
		}

		token, link, err := h.deps.Signer.Generate(session.ChurchID, session.BranchID, ttl)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		logging.Info("Intake link issued", "user_id", session.UserID, "token_id", link.TokenID, "expires_at", link.ExpiresAt)
		respondWithSuccess(w, http.StatusCreated, &dtos.IntakeLinkResponse{
			Token:     token,
			URL:       h.deps.Config.PublicBaseURL + "/public/intake/" + token,
			ExpiresAt: link.ExpiresAt,
		})
	}
}

// RevokeIntakeLink handles POST /api/v1/admin/intake-links/revoke
func (h *Handlers) RevokeIntakeLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}
		var req dtos.RevokeIntakeLinkRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		link, err := h.deps.Signer.Validate(req.Token)
		switch {
		case errors.Is(err, common.ErrIntakeLinkRevoked), errors.Is(err, common.ErrIntakeLinkExpired):
			// Already unusable.
			respondWithSuccess(w, http.StatusOK, &map[string]bool{"revoked": true})
			return
		case errors.Is(err, common.ErrRevocationUnavailable):
			requestLogger(r).Warnw("Revocation list unavailable", "error", err)
			respondWithError(w, http.StatusServiceUnavailable, constants.MsgIntakeCheckFailed)
			return
		case err != nil:
			respondWithError(w, http.StatusBadRequest, constants.MsgIntakeLinkInvalid)
			return
		}
		if link.ChurchID != session.ChurchID || link.BranchID != session.BranchID {
			respondWithError(w, http.StatusForbidden, constants.MsgForbidden)
			return
		}

		h.deps.Signer.Revoke(link.TokenID, link.ExpiresAt)
		logging.Info("Intake link revoked", "user_id", session.UserID, "token_id", link.TokenID)
		respondWithSuccess(w, http.StatusOK, &map[string]bool{"revoked": true})
	}
}

// SubmitPublicIntake handles POST /public/intake/{token}
func (h *Handlers) SubmitPublicIntake() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := h.deps.Signer.Validate(chi.URLParam(r, "token"))
		if errors.Is(err, common.ErrRevocationUnavailable) {
			requestLogger(r).Warnw("Revocation list unavailable", "error", err)
			respondWithError(w, http.StatusServiceUnavailable, constants.MsgIntakeCheckFailed)
			return
		}
		if err != nil {
			logging.Debug("Rejected intake link", "error", err)
			respondWithError(w, http.StatusUnauthorized, constants.MsgIntakeLinkInvalid)
			return
		}

		var req dtos.ContactInput
		if !decodeAndValidate(w, r, &req) {
			return
		}

		contact, err := h.deps.Services.Lifecycle.CreateContactFromLink(r.Context(), link, req)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		// The public form only needs to know it worked.
		respondWithSuccess(w, http.StatusCreated, &map[string]string{"contact_key": contact.ContactKey})
	}
}
