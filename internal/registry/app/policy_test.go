package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
)

func TestDefaultPermissions(t *testing.T) {
	tests := []struct {
		role domain.Role
		want []string
	}{
		{domain.RoleCommunity, []string{PermCreateActivity, PermViewProjects}},
		{domain.RoleNGO, []string{PermCreateProject, PermVerifyActivity, PermViewAll}},
		{domain.RoleGovernment, []string{PermViewAll, PermVerifyProject, PermGenerateReports}},
		{domain.RoleResearch, []string{PermViewAll}},
	}
	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			assert.Equal(t, tc.want, DefaultPermissions(tc.role))
		})
	}

	assert.Empty(t, DefaultPermissions(domain.Role("unknown")))
}

func TestDefaultPermissions_ReturnsCopy(t *testing.T) {
	perms := DefaultPermissions(domain.RoleCommunity)
	perms[0] = "tampered"
	assert.Equal(t, PermCreateActivity, DefaultPermissions(domain.RoleCommunity)[0])
}

func TestActor_Authenticated(t *testing.T) {
	assert.False(t, Actor{}.Authenticated())
	assert.True(t, Actor{ID: "user-1"}.Authenticated())
}

func TestActor_Can(t *testing.T) {
	actor := governmentActor()
	assert.True(t, actor.Can(PermVerifyProject))
	assert.True(t, actor.Can(PermGenerateReports))
	assert.False(t, actor.Can(PermVerifyActivity))
	assert.False(t, Actor{}.Can(PermViewAll))
}
