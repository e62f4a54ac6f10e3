// internal/model/actor.go
package model

import "github.com/google/uuid"

// Role is the access level of a user.
type Role string

const (
	RoleStudent   Role = "student"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
	RoleExternal  Role = "external"
)

// StaffRoles are the roles allowed to process requests on behalf of the library.
var StaffRoles = []Role{RoleLibrarian, RoleAdmin}

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLibrarian, RoleAdmin, RoleExternal:
		return true
	}
	return false
}

// IsStaff reports whether the role is librarian or admin.
func (r Role) IsStaff() bool {
	return r == RoleLibrarian || r == RoleAdmin
}

// Actor is the already authenticated caller of a workflow operation.
type Actor struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// Owns reports whether the actor is the given user.
func (a Actor) Owns(userID uuid.UUID) bool {
	return a.UserID == userID
}
