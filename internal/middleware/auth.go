package middleware

import (
	"context"
	"net/http"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/logging"
)

// SessionLoader builds the request session for a verified identity. It
// returns (nil, nil) when the identity has no profile.
type SessionLoader interface {
	LoadSession(ctx context.Context, identity *auth.Identity) (*auth.Session, error)
}

// Authenticate verifies the bearer token and stores the session in the
// request context.
func Authenticate(verifier *auth.TokenVerifier, loader SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, http.StatusUnauthorized, constants.MsgUnauthorized)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				logging.Debug("Rejected bearer token", "error", err, "request_id", auth.GetRequestID(r.Context()))
				writeError(w, http.StatusUnauthorized, constants.MsgUnauthorized)
				return
			}

			session, err := loader.LoadSession(r.Context(), identity)
			if err != nil {
				logging.Error("Failed to load session", "user_id", identity.UserID, "error", err)
				writeError(w, http.StatusServiceUnavailable, constants.MsgStoreUnavailable)
				return
			}
			if session == nil {
				writeError(w, http.StatusForbidden, constants.MsgNoProfile)
				return
			}

			ctx := auth.SetSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles lets the request through when the session carries at least
// one of roles.
func RequireRoles(roles ...constants.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := auth.GetSession(r.Context())
			if session == nil {
				writeError(w, http.StatusUnauthorized, constants.MsgUnauthorized)
				return
			}
			if !session.HasAnyRole(roles...) {
				writeError(w, http.StatusForbidden, constants.MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCronSecret guards internal job triggers with the shared secret sent
// in X-Cron-Secret. An empty configured secret disables the route.
func RequireCronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || r.Header.Get("X-Cron-Secret") != secret {
				writeError(w, http.StatusUnauthorized, constants.MsgUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
