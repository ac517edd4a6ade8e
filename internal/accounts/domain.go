package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates supported account kinds.
type AccountType string

const (
	TypeChecking AccountType = "CHECKING"
	TypeSavings  AccountType = "SAVINGS"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == TypeChecking || t == TypeSavings
}

// Account is a customer bank account. Balance is mutated exclusively by the
// ledger engine under a row lock; nothing else writes it.
type Account struct {
	ID        int64
	Number    string
	Agency    string
	Type      AccountType
	Balance   decimal.Decimal
	Active    bool
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
