package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementInput groups fields shared by deposit and withdraw requests.
type MovementInput struct {
	AccountID   int64
	Amount      decimal.Decimal
	Description string
}

// TransferInput carries a transfer request. The target is addressed by its
// external account number, never by surrogate id.
type TransferInput struct {
	SourceAccountID int64
	TargetNumber    string
	Amount          decimal.Decimal
	Description     string
}

// ExtractFilter narrows statement listings. Type and the date bounds are
// optional; the date range is inclusive on both ends.
type ExtractFilter struct {
	Type *TransactionType
	From *time.Time
	To   *time.Time
}

// insertTransaction is the row the engine hands to the repository.
type insertTransaction struct {
	Type            TransactionType
	Amount          decimal.Decimal
	Description     string
	AccountID       int64
	TargetAccountID *int64
	TransactionDate time.Time
}
