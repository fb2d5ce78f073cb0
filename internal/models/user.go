package models

import "time"

// User represents an account. Accounts are created implicitly on first
// login; the password is optional (empty hash means any password is
// accepted) except for admin accounts.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// HasPassword reports whether the account requires a password to log in.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
