package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridianbank/meridian/internal/shared"
)

func seedStatement(t *testing.T, repo *memoryLedgerRepo, engine *Engine) {
	t.Helper()
	day := func(d int) time.Time { return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC) }

	engine.WithNow(func() time.Time { return day(1) })
	_, err := engine.Deposit(context.Background(), alice, MovementInput{AccountID: 1, Amount: money("100.00")})
	require.NoError(t, err)

	engine.WithNow(func() time.Time { return day(2) })
	_, err = engine.Deposit(context.Background(), alice, MovementInput{AccountID: 1, Amount: money("200.00")})
	require.NoError(t, err)

	engine.WithNow(func() time.Time { return day(3) })
	_, err = engine.Withdraw(context.Background(), alice, MovementInput{AccountID: 1, Amount: money("50.00")})
	require.NoError(t, err)

	engine.WithNow(func() time.Time { return day(4) })
	_, err = engine.Transfer(context.Background(), alice, TransferInput{SourceAccountID: 1, TargetNumber: "20000002-8", Amount: money("75.00")})
	require.NoError(t, err)
}

func statementFixture(t *testing.T) (*memoryLedgerRepo, *Query) {
	t.Helper()
	repo := newMemoryLedgerRepo()
	repo.addAccount(testAccount(1, alice.UserID, "10000001-9", "0.00"))
	repo.addAccount(testAccount(2, bob.UserID, "20000002-8", "0.00"))
	seedStatement(t, repo, newTestEngine(repo, nil))
	return repo, NewQuery(repo)
}

func TestExtractReturnsNewestFirst(t *testing.T) {
	_, query := statementFixture(t)

	txns, pagination, err := query.Extract(context.Background(), alice, 1, ExtractFilter{}, shared.PageRequest{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Equal(t, 4, pagination.Total)
	require.Len(t, txns, 4)
	require.Equal(t, TypeTransferOut, txns[0].Type)
	require.Equal(t, TypeDeposit, txns[3].Type)
	for i := 1; i < len(txns); i++ {
		require.False(t, txns[i].TransactionDate.After(txns[i-1].TransactionDate))
	}
}

func TestExtractPaginates(t *testing.T) {
	_, query := statementFixture(t)

	txns, pagination, err := query.Extract(context.Background(), alice, 1, ExtractFilter{}, shared.PageRequest{Page: 2, PerPage: 3})
	require.NoError(t, err)
	require.Equal(t, 4, pagination.Total)
	require.Equal(t, 2, pagination.TotalPages)
	require.Len(t, txns, 1)
}

func TestExtractFiltersByType(t *testing.T) {
	_, query := statementFixture(t)

	deposit := TypeDeposit
	txns, pagination, err := query.Extract(context.Background(), alice, 1, ExtractFilter{Type: &deposit}, shared.PageRequest{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Equal(t, 2, pagination.Total)
	for _, txn := range txns {
		require.Equal(t, TypeDeposit, txn.Type)
	}
}

func TestExtractDateRangeInclusive(t *testing.T) {
	_, query := statementFixture(t)

	from := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	txns, _, err := query.Extract(context.Background(), alice, 1, ExtractFilter{From: &from, To: &to}, shared.PageRequest{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	require.Equal(t, TypeWithdrawal, txns[0].Type)
	require.Equal(t, TypeDeposit, txns[1].Type)
}

func TestExtractRejectsInvertedDateRange(t *testing.T) {
	_, query := statementFixture(t)

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := query.Extract(context.Background(), alice, 1, ExtractFilter{From: &from, To: &to}, shared.PageRequest{Page: 1, PerPage: 20})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestExtractForeignAccountReportsNotFound(t *testing.T) {
	_, query := statementFixture(t)

	_, _, err := query.Extract(context.Background(), bob, 1, ExtractFilter{}, shared.PageRequest{Page: 1, PerPage: 20})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestExtractUnknownAccount(t *testing.T) {
	_, query := statementFixture(t)

	_, _, err := query.Extract(context.Background(), alice, 99, ExtractFilter{}, shared.PageRequest{Page: 1, PerPage: 20})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReceiptReturnsOwnTransaction(t *testing.T) {
	repo, query := statementFixture(t)

	txn, err := query.Receipt(context.Background(), alice, repo.txns[0].ID)
	require.NoError(t, err)
	require.Equal(t, TypeDeposit, txn.Type)
	require.True(t, txn.Amount.Equal(money("100.00")))
}

func TestReceiptForeignTransactionReportsNotFound(t *testing.T) {
	repo, query := statementFixture(t)

	_, err := query.Receipt(context.Background(), bob, repo.txns[0].ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReceiptIncomingLegBelongsToTarget(t *testing.T) {
	repo, query := statementFixture(t)

	var inLegID int64
	for _, txn := range repo.txns {
		if txn.Type == TypeTransferIn {
			inLegID = txn.ID
		}
	}
	require.NotZero(t, inLegID)

	txn, err := query.Receipt(context.Background(), bob, inLegID)
	require.NoError(t, err)
	require.Equal(t, int64(2), txn.AccountID)

	_, err = query.Receipt(context.Background(), alice, inLegID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListAllSpansAccounts(t *testing.T) {
	_, query := statementFixture(t)

	txns, pagination, err := query.ListAll(context.Background(), shared.PageRequest{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Equal(t, 5, pagination.Total)
	require.Len(t, txns, 5)
}
