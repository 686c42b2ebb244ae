// Package domain contains the core concepts of the content platform:
// posts, comments, actors and the access policy tying them together.
// No storage, network, or transport logic should be added here.
package domain

import "fmt"

// Role is a closed set. Adding a role must be a compile-time-visible
// change: every capability decision switches exhaustively over it.
type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleApprover Role = "approver"
)

// ParseRole converts a stored role string back into the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin, RoleApprover:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Actor is the authenticated principal an operation runs as.
// Ownership and role are looked up per operation, never cached here.
type Actor struct {
	ID       int64
	Username string
	Role     Role
}
