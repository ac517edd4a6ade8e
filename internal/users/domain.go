package users

import "time"

// User is a registered customer or administrator.
type User struct {
	ID           int64
	Name         string
	Email        string
	CPF          string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
