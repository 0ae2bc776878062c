package middleware

import (
	"net/http"
)

// Authenticator decides whether a request may proceed.
type Authenticator interface {
	Authenticate(r *http.Request) bool
}

// RequireAuth rejects requests the authenticator does not accept.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.Authenticate(r) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="rentalsync"`)
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Missing or invalid sync secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
