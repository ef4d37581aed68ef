package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	tokens := NewTokenManager([]byte("test-secret"))
	valid, err := tokens.Issue("alice", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedMsg    string
	}{
		{name: "missing authorization header", authHeader: "", expectedStatus: http.StatusForbidden, expectedMsg: "No token provided"},
		{name: "single part header", authHeader: valid, expectedStatus: http.StatusUnauthorized, expectedMsg: "Invalid token"},
		{name: "scheme without token", authHeader: "Bearer ", expectedStatus: http.StatusUnauthorized, expectedMsg: "Invalid token"},
		{name: "invalid token", authHeader: "Bearer invalid-token", expectedStatus: http.StatusUnauthorized, expectedMsg: "Invalid token"},
		{name: "valid token", authHeader: "Bearer " + valid, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/messages/bob", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedMsg != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedMsg, body["message"])
				assert.Empty(t, seen)
				return
			}
			assert.Equal(t, "alice", seen)
		})
	}
}
