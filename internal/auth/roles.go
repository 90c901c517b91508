package auth

// Role is the closed set of account roles. Comparisons are case-sensitive;
// role strings are stored and transported exactly as declared here.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
	RoleGuest   Role = "GUEST"
)

// IsValid reports whether the role is one of the predefined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser, RoleGuest:
		return true
	default:
		return false
	}
}

// In reports whether the role is a member of the allowed set.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// AllRoles returns the predefined roles in privilege order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleUser, RoleGuest}
}

// ParseRole converts a string into a Role, reporting whether it is valid.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	return role, role.IsValid()
}
