package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType enumerates monetary movement kinds.
type TransactionType string

const (
	TypeDeposit     TransactionType = "DEPOSIT"
	TypeWithdrawal  TransactionType = "WITHDRAWAL"
	TypeTransferOut TransactionType = "TRANSFER_OUT"
	TypeTransferIn  TransactionType = "TRANSFER_IN"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeTransferOut, TypeTransferIn:
		return true
	}
	return false
}

// Transaction is one immutable ledger row. A transfer produces two linked
// rows, one per leg, each referencing the counterparty account. Rows are
// never updated or deleted; Reversed is reserved for a future compensating
// operation and is not mutated here.
type Transaction struct {
	ID              int64
	Type            TransactionType
	Amount          decimal.Decimal
	Description     string
	AccountID       int64
	AccountNumber   string
	TargetAccountID *int64
	TargetNumber    *string
	Reversed        bool
	TransactionDate time.Time
	CreatedAt       time.Time
}
