package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository/memory"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	repos := newTestRepos(t)
	return NewAuthService(repos.Users, repos.Sessions, AuthConfig{
		JWTSecret:  "test-secret",
		SessionTTL: 24 * time.Hour,
	}, testLogger())
}

func TestAuthService_Login(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	user, token, err := auth.Login(ctx, "priya@community.local", memory.DemoPassword)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user-1", user.ID)
	assert.NotEmpty(t, token)
	require.NotNil(t, user.LastLogin)

	resolved, err := auth.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "priya@community.local", "wrong"},
		{"unknown email", "nobody@example.com", memory.DemoPassword},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, token, err := auth.Login(ctx, tc.email, tc.password)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
			assert.Nil(t, user)
			assert.Empty(t, token)
		})
	}
}

func TestAuthService_Logout_RevokesSession(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	_, token, err := auth.Login(ctx, "raj@ngo.local", memory.DemoPassword)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, token))

	_, err = auth.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	// Logging out an already-revoked or garbage token is a no-op.
	assert.NoError(t, auth.Logout(ctx, token))
	assert.NoError(t, auth.Logout(ctx, "not-a-jwt"))
}

func TestAuthService_CurrentUser_BadTokens(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.CurrentUser(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	// A token signed with a different secret must be rejected.
	other := newTestAuthService(t)
	other.config.JWTSecret = "other-secret"
	_, foreign, err := other.Login(ctx, "priya@community.local", memory.DemoPassword)
	require.NoError(t, err)
	_, err = auth.CurrentUser(ctx, foreign)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestAuthService_CurrentUser_ExpiredSession(t *testing.T) {
	repos := newTestRepos(t)
	// A negative TTL makes the session born expired; both the token claim
	// and the stored session are past their expiry at lookup time.
	auth := NewAuthService(repos.Users, repos.Sessions, AuthConfig{
		JWTSecret:  "test-secret",
		SessionTTL: -time.Minute,
	}, testLogger())

	ctx := context.Background()
	_, token, err := auth.Login(ctx, "priya@community.local", memory.DemoPassword)
	require.NoError(t, err)

	_, err = auth.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}
