package api

import (
	"net/http"

	"soultrack/followup/internal/models/dtos"
)

// GetMe handles GET /api/v1/me
func (h *Handlers) GetMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(w, r)
		if !ok {
			return
		}

		roles := make([]string, len(session.Roles))
		for i, role := range session.Roles {
			roles[i] = role.String()
		}
		cells := session.CellGroupIDs
		if cells == nil {
			cells = []int64{}
		}

		respondWithSuccess(w, http.StatusOK, &dtos.SessionResponse{
			UserID:       session.UserID,
			Email:        session.Email,
			Roles:        roles,
			ChurchID:     session.ChurchID,
			BranchID:     session.BranchID,
			CellGroupIDs: cells,
			CounselorID:  session.CounselorID,
		})
	}
}
