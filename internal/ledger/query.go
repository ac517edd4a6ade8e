package ledger

import (
	"context"
	"fmt"

	"github.com/meridianbank/meridian/internal/shared"
)

// Query serves the read side: statements, filtered extracts and receipts.
// Ownership is checked before any data query, so a caller who does not own
// the account gets not-found rather than an empty page.
type Query struct {
	repo RepositoryPort
}

// NewQuery builds a Query instance.
func NewQuery(repo RepositoryPort) *Query {
	return &Query{repo: repo}
}

// Extract returns one page of an account statement, newest first. The
// filter may narrow by transaction type and by an inclusive date range.
func (q *Query) Extract(ctx context.Context, actor shared.Identity, accountID int64, filter ExtractFilter, page shared.PageRequest) ([]Transaction, shared.Pagination, error) {
	if err := q.checkOwnership(ctx, actor, accountID); err != nil {
		return nil, shared.Pagination{}, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, shared.Pagination{}, fmt.Errorf("%w: end date before start date", shared.ErrValidation)
	}
	total, err := q.repo.CountByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	pagination := shared.NewPagination(page.Page, page.PerPage, total)
	txns, err := q.repo.ListByAccount(ctx, accountID, filter, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return txns, pagination, nil
}

// Receipt returns one transaction, ownership-checked through its account.
func (q *Query) Receipt(ctx context.Context, actor shared.Identity, transactionID int64) (*Transaction, error) {
	txn, err := q.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := q.checkOwnership(ctx, actor, txn.AccountID); err != nil {
		return nil, fmt.Errorf("transaction %d: %w", transactionID, shared.ErrNotFound)
	}
	return txn, nil
}

// ListAll returns transactions across every account, used by the admin
// surface. Role enforcement happens in the middleware layer.
func (q *Query) ListAll(ctx context.Context, page shared.PageRequest) ([]Transaction, shared.Pagination, error) {
	total, err := q.repo.CountAll(ctx)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	pagination := shared.NewPagination(page.Page, page.PerPage, total)
	txns, err := q.repo.ListAll(ctx, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return txns, pagination, nil
}

func (q *Query) checkOwnership(ctx context.Context, actor shared.Identity, accountID int64) error {
	account, err := q.repo.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.UserID != actor.UserID {
		return fmt.Errorf("account %d: %w", accountID, shared.ErrNotFound)
	}
	return nil
}
