package domain

import "time"

// Actor is the authenticated identity performing an action.
type Actor struct {
	Username string
	Role     Role
}

func (a Actor) IsZero() bool {
	return a.Username == "" || !a.Role.IsValid()
}

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	Username  string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
