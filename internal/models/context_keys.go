package models

type contextKey string

// Context keys under which the auth middleware stores the verified identity.
const (
	UserContextKey  contextKey = "userID"
	RolesContextKey contextKey = "userRoles"
)
