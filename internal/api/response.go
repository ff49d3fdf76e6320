package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/lifecycle"
	"soultrack/followup/internal/logging"
	"soultrack/followup/internal/models/dtos/responses"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Status:    string(constants.APIStatusOk),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	writeErrorEnvelope(w, statusCode, responses.APIResponse[any]{Error: message})
}

func writeErrorEnvelope(w http.ResponseWriter, statusCode int, resp responses.APIResponse[any]) {
	resp.Status = string(constants.APIStatusError)
	resp.Timestamp = time.Now().UTC()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// statusForKind maps a lifecycle error kind to its HTTP status.
func statusForKind(kind lifecycle.Kind) int {
	switch kind {
	case lifecycle.KindValidation:
		return http.StatusBadRequest
	case lifecycle.KindNotFound:
		return http.StatusNotFound
	case lifecycle.KindConflict:
		return http.StatusConflict
	case lifecycle.KindForbidden:
		return http.StatusForbidden
	case lifecycle.KindTransientStore:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondWithServiceError renders err. Lifecycle errors keep their message and
// code; anything else is logged and hidden behind a generic 500.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var le *lifecycle.Error
	if !errors.As(err, &le) {
		requestLogger(r).Errorw("Unhandled service error", "error", err)
		respondWithError(w, http.StatusInternalServerError, constants.MsgInternal)
		return
	}

	status := statusForKind(le.Kind)
	if status >= http.StatusInternalServerError {
		requestLogger(r).Errorw("Service error", "kind", le.Kind, "error", err)
	}
	writeErrorEnvelope(w, status, responses.APIResponse[any]{
		Error:                  le.Message,
		Code:                   le.Code,
		ReconciliationRequired: le.ReconciliationRequired(),
	})
}

func requestLogger(r *http.Request) *zap.SugaredLogger {
	var userID string
	var churchID int64
	if session := auth.GetSession(r.Context()); session != nil {
		userID, churchID = session.UserID, session.ChurchID
	}
	return logging.WithRequest(auth.GetRequestID(r.Context()), userID, churchID, r.URL.Path)
}

// decodeAndValidate reads a JSON body into dst and runs the validate tags.
// It writes the 400 itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, constants.MsgInvalidBody)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, constants.MsgInvalidID)
		return 0, false
	}
	return id, true
}

// requireSession returns the session set by the auth middleware.
func requireSession(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	session := auth.GetSession(r.Context())
	if session == nil {
		respondWithError(w, http.StatusUnauthorized, constants.MsgUnauthorized)
		return nil, false
	}
	return session, true
}
