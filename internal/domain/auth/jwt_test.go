package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "restoledger/internal/core/context"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, expires, err := svc.GenerateAccessToken(appctx.UserContext{
		UserID: "emp-1",
		Name:   "Ann",
		Roles:  []string{"manager"},
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), expires, time.Minute)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", user.UserID)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, []string{"manager"}, user.Roles)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	token, _, err := svc.GenerateAccessToken(appctx.UserContext{UserID: "emp-1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		svc  *JWTService
		tok  string
	}{
		{"wrong secret", NewJWTService(DefaultJWTConfig("other")), token},
		{"wrong issuer", NewJWTService(JWTConfig{Secret: "secret", Issuer: "someone-else", AccessTokenTTL: time.Hour}), token},
		{"garbage", svc, "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateToken(tt.tok)
			assert.Error(t, err)
		})
	}

	expired := NewJWTService(JWTConfig{Secret: "secret", Issuer: "restoledger", AccessTokenTTL: -time.Minute})
	old, _, err := expired.GenerateAccessToken(appctx.UserContext{UserID: "emp-1"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(old)
	assert.Error(t, err)
}
