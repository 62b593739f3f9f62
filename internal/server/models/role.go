package models

import "strings"

// Role discriminates what an account may do. It is fixed at registration.
type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

// NormalizeRole trims and lower-cases a stored role value so historical
// records such as " Owner " still match.
func NormalizeRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleOwner
}

func (r Role) String() string { return string(r) }
