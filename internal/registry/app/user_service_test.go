package app

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

func newTestUserService(t *testing.T) (*UserService, repository.Set) {
	t.Helper()
	repos := newTestRepos(t)
	return NewUserService(repos.Users, validator.New(), testLogger()), repos
}

func TestUserService_Create(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, UserCreateInput{
		Role:  domain.RoleResearch,
		Name:  "Dr. Meera Nair",
		Email: "meera@research.local",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Len(t, user.Wallet, 42)
	assert.Equal(t, []string{PermViewAll}, user.Permissions)
	assert.Empty(t, user.PasswordHash)
}

func TestUserService_Create_ExplicitPermissionsWin(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.Create(context.Background(), UserCreateInput{
		Role:        domain.RoleCommunity,
		Name:        "Custom Perms",
		Email:       "custom@community.local",
		Permissions: []string{PermViewAll},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{PermViewAll}, user.Permissions)
}

func TestUserService_Create_Failures(t *testing.T) {
	svc, repos := newTestUserService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   UserCreateInput
	}{
		{"duplicate email", UserCreateInput{Role: domain.RoleCommunity, Name: "Dup", Email: "priya@community.local"}},
		{"bad email", UserCreateInput{Role: domain.RoleCommunity, Name: "Bad", Email: "not-an-email"}},
		{"unknown role", UserCreateInput{Role: "admin", Name: "Bad", Email: "admin@example.com"}},
		{"missing name", UserCreateInput{Role: domain.RoleCommunity, Email: "noname@example.com"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	users, err := repos.Users.List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestUserService_Create_HashesPassword(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.Create(context.Background(), UserCreateInput{
		Role:     domain.RoleNGO,
		Name:     "With Password",
		Email:    "pw@ngo.local",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.True(t, CheckPasswordHash("s3cret", user.PasswordHash))
}

func TestUserService_Update(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	name := "Priya S."
	user, err := svc.Update(ctx, "user-1", UserUpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Priya S.", user.Name)
	// Untouched fields survive.
	assert.Equal(t, "priya@community.local", user.Email)

	_, err = svc.Update(ctx, "user-404", UserUpdateInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
