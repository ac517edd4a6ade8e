package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianbank/meridian/internal/shared"
)

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByNumber(ctx context.Context, number string) (*Account, error)
	ListByUser(ctx context.Context, userID int64) ([]Account, error)
	SetActive(ctx context.Context, id int64, active bool) (*Account, error)
}

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, number, agency, account_type, balance, active, user_id, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Number, &a.Agency, &a.Type, &a.Balance, &a.Active, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByID fetches an account by surrogate id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
}

// GetByNumber fetches an account by its external account number.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE number=$1`, number))
}

// ListByUser returns all accounts owned by a user.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id=$1 ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Number, &a.Agency, &a.Type, &a.Balance, &a.Active, &a.UserID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetActive flips the active flag and returns the updated account.
// Accounts are never deleted; deactivation is the terminal state.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) (*Account, error) {
	return scanAccount(r.pool.QueryRow(ctx,
		`UPDATE accounts SET active=$2, updated_at=NOW() WHERE id=$1 RETURNING `+accountColumns, id, active))
}
