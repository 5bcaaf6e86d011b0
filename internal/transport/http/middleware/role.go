package middleware

import (
	"fmt"
	"net/http"
)

// RequireRole admits requests whose token role is one of roles. It runs after
// Auth; a request without claims is treated as unauthenticated.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims == nil {
				reject(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				reject(w, http.StatusForbidden, fmt.Sprintf("role %q may not use this endpoint", claims.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
