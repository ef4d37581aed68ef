package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	manager := NewTokenManager([]byte("test-secret"))

	token, err := manager.Issue("alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Verification is deterministic until expiry.
	for i := 0; i < 3; i++ {
		identity, err := manager.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", identity)
	}
}

func TestTokenManager_Verify(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := NewTokenManager([]byte("test-secret"))
	issuer.now = func() time.Time { return issuedAt }

	valid, err := issuer.Issue("alice", time.Hour)
	require.NoError(t, err)

	otherSecret := NewTokenManager([]byte("other-secret"))
	otherSecret.now = issuer.now
	forged, err := otherSecret.Issue("alice", time.Hour)
	require.NoError(t, err)

	noSubject, err := issuer.Issue("", time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "alice"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:           "alice",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		at      time.Time
		want    string
		wantErr error
	}{
		{name: "valid", token: valid, at: issuedAt.Add(time.Minute), want: "alice"},
		{name: "missing", token: "", at: issuedAt, wantErr: ErrMissingToken},
		{name: "expired", token: valid, at: issuedAt.Add(2 * time.Hour), wantErr: ErrInvalidToken},
		{name: "tampered", token: valid + "x", at: issuedAt, wantErr: ErrInvalidToken},
		{name: "garbage", token: "not-a-jwt", at: issuedAt, wantErr: ErrInvalidToken},
		{name: "wrong secret", token: forged, at: issuedAt, wantErr: ErrInvalidToken},
		{name: "no subject", token: noSubject, at: issuedAt, wantErr: ErrInvalidToken},
		{name: "no expiry", token: noExpiry, at: issuedAt, wantErr: ErrInvalidToken},
		{name: "unexpected algorithm", token: wrongAlg, at: issuedAt, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := NewTokenManager([]byte("test-secret"))
			verifier.now = func() time.Time { return tt.at }

			identity, err := verifier.Verify(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, identity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, identity)
		})
	}
}
