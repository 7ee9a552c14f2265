package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleUser grants standard access: publish recipes, favorite, subscribe.
	RoleUser Role = "user"
	// RoleAdmin grants administrative access over catalogs and every recipe.
	RoleAdmin Role = "admin"
)

// ReservedUsername cannot be registered because it collides with the /users/me route.
const ReservedUsername = "me"

// User represents an account that can author recipes and interact with others' recipes.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin returns true if the user has administrative privileges.
// Superusers are admins regardless of their role field.
func (u *User) IsAdmin() bool {
	return u.IsSuperuser || u.Role == RoleAdmin
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Author is a user as seen by another user: profile fields plus whether the
// viewer follows them.
type Author struct {
	User
	IsSubscribed bool `json:"is_subscribed"`
}
