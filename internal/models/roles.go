package models

// Role is the closed set of actor roles known to the platform.
type Role string

const (
	RoleReader Role = "READER"
	RoleAuthor Role = "AUTHOR"
	RoleAdmin  Role = "ADMIN"
)

// AllRoles returns the full list of defined roles.
func AllRoles() []Role {
	return []Role{RoleReader, RoleAuthor, RoleAdmin}
}

// HasRole reports whether the given role list contains the target role.
func HasRole(userRoles []string, target Role) bool {
	for _, role := range userRoles {
		if role == string(target) {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the given role list contains at least one of
// the required roles. An empty required set means any authenticated actor.
func HasAnyRole(userRoles []string, required ...Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if HasRole(userRoles, r) {
			return true
		}
	}
	return false
}
