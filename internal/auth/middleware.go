package auth

import (
	"context"
	"net/http"
)

type contextKey string

const loginContextKey = contextKey("login")

// Require returns a middleware that authenticates the request with HTTP
// Basic credentials and checks the required role. Missing or bad
// credentials yield 401; an authenticated account without the role yields
// 403. The authenticated login is added to the request context.
func (r *Registry) Require(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			login, password, ok := req.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="stockroom"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			acc := r.authenticate(login, password)
			if acc == nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="stockroom"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !acc.hasRole(role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(req.Context(), loginContextKey, acc.login)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// ContextLogin retrieves the authenticated login from the context.
func ContextLogin(ctx context.Context) string {
	if value, ok := ctx.Value(loginContextKey).(string); ok {
		return value
	}
	return ""
}
