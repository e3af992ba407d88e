package domain

import (
	"errors"
	"strings"
	"time"
)

// Registration minimums, in characters. Names are measured after trimming.
const (
	MinNameLength     = 2
	MinPasswordLength = 6
)

// Role is the coarse permission class of a user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// User is a registered account. RefreshTokenHash holds the fingerprint of the
// single live refresh token; empty means no active session.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	RefreshTokenHash string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the user for persistence and fills the default role.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("name is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	if !u.Role.Valid() {
		return errors.New("unknown role")
	}
	return nil
}

// HasSession reports whether a refresh token is currently stored.
func (u *User) HasSession() bool { return u.RefreshTokenHash != "" }

// Summary is the public view of a user returned to clients.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary returns the public view of u.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}
