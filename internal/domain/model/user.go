package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the two known roles. Roles are
// exact-match, with no hierarchy between them.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
