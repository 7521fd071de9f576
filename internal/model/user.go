package model

import (
	"strconv"
	"time"
)

// Role binds an identity to a set of permitted operations.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleAgent Role = "Agent"
)

// User is an identity record. PasswordHash never leaves the identity service.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role returns the role a token issued for u carries.
func (u *User) Role() Role {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleAgent
}

// Identity is the who-am-I view of a bearer token. ID is the user id as a
// decimal string.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
}

// UserID parses the identity's id.
func (i *Identity) UserID() (int64, error) {
	return strconv.ParseInt(i.ID, 10, 64)
}
