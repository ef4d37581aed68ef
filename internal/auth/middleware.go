package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"chat-relay/pkg/logger"
)

type contextKey string

const identityContextKey contextKey = "identity"

// RequireAuth admits requests carrying "Authorization: <scheme> <token>" and
// stores the verified identity on the request context.
func RequireAuth(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				logger.Warn("No token provided in request headers")
				writeMessage(w, http.StatusForbidden, "No token provided")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[1] == "" {
				writeMessage(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			identity, err := tokens.Verify(parts[1])
			if err != nil {
				logger.Warn("Token verification failed: %v", err)
				writeMessage(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the identity stored by RequireAuth.
func IdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityContextKey).(string)
	return identity, ok && identity != ""
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
