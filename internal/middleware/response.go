package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/models/dtos/responses"
)

func writeError(w http.ResponseWriter, statusCode int, message string) {
	resp := responses.APIResponse[any]{
		Status:    string(constants.APIStatusError),
		Timestamp: time.Now().UTC(),
		Error:     message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
