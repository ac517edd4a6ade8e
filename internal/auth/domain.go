package auth

import (
	"github.com/meridianbank/meridian/internal/accounts"
	"github.com/meridianbank/meridian/internal/users"
)

// RegisterInput carries the fields needed to open a user and their first
// account in one atomic unit.
type RegisterInput struct {
	Name        string
	Email       string
	CPF         string
	Password    string
	AccountType accounts.AccountType
}

// Registration is the result of a successful sign-up.
type Registration struct {
	User    users.User
	Account accounts.Account
	Token   string
}

// Session is the result of a successful login.
type Session struct {
	User  users.User
	Token string
}
