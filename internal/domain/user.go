package domain

import (
	"fmt"
	"time"
)

// Role determines which actions a user may perform.
type Role string

const (
	RoleRequester     Role = "Requester"
	RoleSupport       Role = "Support"
	RoleAdministrator Role = "Administrator"
)

// Roles lists every assignable role.
var Roles = []Role{RoleRequester, RoleSupport, RoleAdministrator}

func (r Role) IsValid() bool {
	switch r {
	case RoleRequester, RoleSupport, RoleAdministrator:
		return true
	}
	return false
}

// IsStaff reports whether the role works tickets rather than filing them.
func (r Role) IsStaff() bool {
	return r == RoleSupport || r == RoleAdministrator
}

func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return role, nil
}

// User is an account that can log in.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Actor returns the identity this user acts as.
func (u *User) Actor() Actor {
	return Actor{Username: u.Username, Role: u.Role}
}
