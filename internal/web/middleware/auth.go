package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const sessionContextKey contextKey = "staff-session"

// RequireStaff rejects requests without a valid staff session. When enabled is
// false (no staff password configured) the booth runs open and every request
// passes. Sessions past half their lifetime are renewed on use.
func RequireStaff(sm *SessionManager, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sm.GetSessionFromRequest(r)
			if session == nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="marathon-booth"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"staff login required"}`))
				return
			}

			if renewed := sm.Renew(session); renewed != nil {
				sm.SetSessionCookie(w, r, renewed)
				session = renewed
			}

			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
		})
	}
}

// GetSessionFromContext returns the staff session RequireStaff stored, or nil
// when the route is open.
func GetSessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionContextKey).(*Session)
	return session
}

// SetSessionInContext stores a staff session in ctx.
func SetSessionInContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
