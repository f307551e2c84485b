package domain

import "time"

// Role classifies registry participants.
type Role string

const (
	RoleCommunity  Role = "community"
	RoleNGO        Role = "ngo"
	RoleGovernment Role = "government"
	RoleResearch   Role = "research"
)

// ValidRole reports whether r is one of the closed set of roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleCommunity, RoleNGO, RoleGovernment, RoleResearch:
		return true
	}
	return false
}

// User represents a registry participant.
type User struct {
	ID           string     `json:"id"`
	Role         Role       `json:"role"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose
	Wallet       string     `json:"wallet"`
	Permissions  []string   `json:"permissions"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// HasPermission reports whether the user's permission list contains perm.
func (u *User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
