// Package auth guards the MCP endpoint with a static bearer token.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const bearerPrefix = "Bearer "

// NewAuthMiddleware returns middleware that admits only requests carrying
// "Authorization: Bearer <token>". The scheme is case-sensitive and is
// followed by exactly one space. An empty token disables the check.
//
// Rejected requests get 401 and are logged at warn level without the
// presented credential.
func NewAuthMiddleware(token string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte(token)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			got, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				log.Warn().
					Str("remote", r.RemoteAddr).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bool("header_present", header != "").
					Msg("unauthorized MCP request")
				w.Header().Set("WWW-Authenticate", `Bearer realm="odb-loader"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
