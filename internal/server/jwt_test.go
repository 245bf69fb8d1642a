package server

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/content-agent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(&config.JWTConfig{Secret: "secret-one", ExpirationHours: 1})
	id := uuid.New()

	token, err := svc.GenerateToken(id)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)

	getter, err := svc.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, getter.GetUserID())
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(&config.JWTConfig{Secret: "secret-one", ExpirationHours: 1})
	token, err := svc.GenerateToken(uuid.New())
	require.NoError(t, err)

	expired := NewJWTService(&config.JWTConfig{Secret: "secret-one", ExpirationHours: 1})
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken(uuid.New())
	require.NoError(t, err)

	nilUser, err := svc.GenerateToken(uuid.Nil)
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "secret-two", ExpirationHours: 1})

	tests := []struct {
		name    string
		svc     *JWTService
		token   string
		wantErr string
	}{
		{"empty", svc, "", "token string is empty"},
		{"malformed", svc, "not.a.token", "malformed token"},
		{"wrong secret", other, token, "invalid token signature"},
		{"expired", svc, old, "token expired"},
		{"no user", svc, nilUser, "token has no user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
