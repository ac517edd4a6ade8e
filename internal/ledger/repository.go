package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/meridian/internal/accounts"
	"github.com/meridianbank/meridian/internal/shared"
)

// RepositoryPort defines data access for the ledger. Balance mutations are
// only reachable through WithTx, so every read-modify-write happens inside
// one transaction boundary.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepositoryPort) error) error

	GetAccount(ctx context.Context, id int64) (*accounts.Account, error)
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)
	ListByAccount(ctx context.Context, accountID int64, filter ExtractFilter, limit, offset int) ([]Transaction, error)
	CountByAccount(ctx context.Context, accountID int64, filter ExtractFilter) (int, error)
	ListAll(ctx context.Context, limit, offset int) ([]Transaction, error)
	CountAll(ctx context.Context) (int, error)
}

// TxRepositoryPort exposes the operations available inside one atomic unit.
type TxRepositoryPort interface {
	GetAccount(ctx context.Context, id int64) (*accounts.Account, error)
	// GetAccountForUpdate acquires a row lock for the duration of the
	// transaction. Transfers lock both rows through this, ordered by id.
	GetAccountForUpdate(ctx context.Context, id int64) (*accounts.Account, error)
	FindAccountIDByNumber(ctx context.Context, number string) (int64, error)
	ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) (*accounts.Account, error)
	InsertTransaction(ctx context.Context, in insertTransaction) (*Transaction, error)
}

// Repository provides PostgreSQL backed persistence for the ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const txnColumns = `t.id, t.type, t.amount, t.description, t.account_id, a.number, t.target_account_id, ta.number, t.reversed, t.transaction_date, t.created_at`

const txnFrom = ` FROM transactions t
JOIN accounts a ON a.id = t.account_id
LEFT JOIN accounts ta ON ta.id = t.target_account_id`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Type, &t.Amount, &t.Description, &t.AccountID, &t.AccountNumber,
		&t.TargetAccountID, &t.TargetNumber, &t.Reversed, &t.TransactionDate, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// WithTx runs fn inside a RepeatableRead transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepositoryPort) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("ledger: begin tx: %w", err)
	}
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// GetAccount fetches an account outside a transaction (query side).
func (r *Repository) GetAccount(ctx context.Context, id int64) (*accounts.Account, error) {
	return scanAccountRow(r.pool.QueryRow(ctx, accountSelect+` WHERE id=$1`, id))
}

// GetTransaction fetches one transaction with both account numbers.
func (r *Repository) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx, `SELECT `+txnColumns+txnFrom+` WHERE t.id=$1`, id))
}

// ListByAccount returns transactions for one account, newest first,
// narrowed by the optional type and inclusive date range filters.
func (r *Repository) ListByAccount(ctx context.Context, accountID int64, filter ExtractFilter, limit, offset int) ([]Transaction, error) {
	query, args := filteredQuery(`SELECT `+txnColumns+txnFrom, accountID, filter)
	query += fmt.Sprintf(` ORDER BY t.transaction_date DESC, t.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// CountByAccount returns the number of transactions matching the filter.
func (r *Repository) CountByAccount(ctx context.Context, accountID int64, filter ExtractFilter) (int, error) {
	query, args := filteredQuery(`SELECT COUNT(*)`+txnFrom, accountID, filter)
	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ListAll returns transactions across all accounts, newest first.
func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+txnColumns+txnFrom+` ORDER BY t.transaction_date DESC, t.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// CountAll returns the total number of transactions.
func (r *Repository) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func filteredQuery(head string, accountID int64, filter ExtractFilter) (string, []any) {
	query := head + ` WHERE t.account_id=$1`
	args := []any{accountID}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += fmt.Sprintf(` AND t.type=$%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(` AND t.transaction_date >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(` AND t.transaction_date <= $%d`, len(args))
	}
	return query, args
}

func collectTransactions(rows pgx.Rows) ([]Transaction, error) {
	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Description, &t.AccountID, &t.AccountNumber,
			&t.TargetAccountID, &t.TargetNumber, &t.Reversed, &t.TransactionDate, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const accountSelect = `SELECT id, number, agency, account_type, balance, active, user_id, created_at, updated_at FROM accounts`

func scanAccountRow(row pgx.Row) (*accounts.Account, error) {
	var a accounts.Account
	err := row.Scan(&a.ID, &a.Number, &a.Agency, &a.Type, &a.Balance, &a.Active, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetAccount(ctx context.Context, id int64) (*accounts.Account, error) {
	return scanAccountRow(r.tx.QueryRow(ctx, accountSelect+` WHERE id=$1`, id))
}

func (r *txRepository) GetAccountForUpdate(ctx context.Context, id int64) (*accounts.Account, error) {
	return scanAccountRow(r.tx.QueryRow(ctx, accountSelect+` WHERE id=$1 FOR UPDATE`, id))
}

func (r *txRepository) FindAccountIDByNumber(ctx context.Context, number string) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM accounts WHERE number=$1`, number).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// ApplyBalanceDelta adjusts the balance in place. The caller holds the row
// lock; the balance >= 0 table constraint is the last line of defense.
func (r *txRepository) ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) (*accounts.Account, error) {
	return scanAccountRow(r.tx.QueryRow(ctx,
		`UPDATE accounts SET balance = balance + $2, updated_at = NOW() WHERE id=$1
RETURNING id, number, agency, account_type, balance, active, user_id, created_at, updated_at`,
		accountID, delta))
}

func (r *txRepository) InsertTransaction(ctx context.Context, in insertTransaction) (*Transaction, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO transactions (type, amount, description, account_id, target_account_id, reversed, transaction_date)
VALUES ($1,$2,$3,$4,$5,false,$6) RETURNING id, created_at`,
		in.Type, in.Amount, in.Description, in.AccountID, in.TargetAccountID, in.TransactionDate)
	t := Transaction{
		Type:            in.Type,
		Amount:          in.Amount,
		Description:     in.Description,
		AccountID:       in.AccountID,
		TargetAccountID: in.TargetAccountID,
		TransactionDate: in.TransactionDate,
	}
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
