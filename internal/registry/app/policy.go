package app

import "github.com/bluecarbonmrv/registry/internal/registry/domain"

// Permission strings checked by the registry operations.
const (
	PermCreateProject   = "create_project"
	PermCreateActivity  = "create_activity"
	PermVerifyProject   = "verify_project"
	PermVerifyActivity  = "verify_activity"
	PermGenerateReports = "generate_reports"
	PermViewProjects    = "view_projects"
	PermViewAll         = "view_all"
)

// rolePermissions is the capability table: the default grants a user of a
// given role receives at creation. The per-user permission list on the
// record remains authoritative so seeded overrides are honored.
var rolePermissions = map[domain.Role][]string{
	domain.RoleCommunity:  {PermCreateActivity, PermViewProjects},
	domain.RoleNGO:        {PermCreateProject, PermVerifyActivity, PermViewAll},
	domain.RoleGovernment: {PermViewAll, PermVerifyProject, PermGenerateReports},
	domain.RoleResearch:   {PermViewAll},
}

// DefaultPermissions returns the capability grants for a role.
func DefaultPermissions(role domain.Role) []string {
	return append([]string(nil), rolePermissions[role]...)
}

// Actor is the authenticated caller threaded through service operations.
// A zero Actor means the call is unauthenticated.
type Actor struct {
	ID          string
	Role        domain.Role
	Wallet      string
	Permissions []string
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return a.ID != ""
}

// Can reports whether the actor holds the given permission.
func (a Actor) Can(permission string) bool {
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
