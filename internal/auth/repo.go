package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/meridian/internal/accounts"
	"github.com/meridianbank/meridian/internal/platform/db"
	"github.com/meridianbank/meridian/internal/shared"
	"github.com/meridianbank/meridian/internal/users"
)

// RepositoryPort defines the persistence the auth service needs.
type RepositoryPort interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CPFExists(ctx context.Context, cpf string) (bool, error)
	CreateUserWithAccount(ctx context.Context, user users.User, account accounts.Account) (*users.User, *accounts.Account, error)
}

// Repository provides PostgreSQL backed persistence for registration.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EmailExists reports whether a user with this email already exists.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

// CPFExists reports whether a user with this CPF already exists.
func (r *Repository) CPFExists(ctx context.Context, cpf string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE cpf=$1)`, cpf).Scan(&exists)
	return exists, err
}

// CreateUserWithAccount inserts the user and their first account in one
// transaction; either both rows exist afterwards or neither does. A number
// collision surfaces as shared.ErrDuplicate so the caller can regenerate
// and retry.
func (r *Repository) CreateUserWithAccount(ctx context.Context, user users.User, account accounts.Account) (*users.User, *accounts.Account, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO users (name, email, cpf, password_hash, role, active)
VALUES ($1,$2,$3,$4,$5,true) RETURNING id, created_at, updated_at`,
			user.Name, user.Email, user.CPF, user.PasswordHash, user.Role).
			Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return err
		}
		account.UserID = user.ID
		return tx.QueryRow(ctx, `INSERT INTO accounts (number, agency, account_type, balance, active, user_id)
VALUES ($1,$2,$3,$4,true,$5) RETURNING id, created_at, updated_at`,
			account.Number, account.Agency, account.Type, decimal.Zero, account.UserID).
			Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	})
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, "accounts_number_key"):
			return nil, nil, fmt.Errorf("account number %s: %w", account.Number, shared.ErrDuplicate)
		case db.IsUniqueViolation(err, ""):
			return nil, nil, fmt.Errorf("%w: email or cpf already registered", shared.ErrDuplicate)
		}
		return nil, nil, err
	}
	user.Active = true
	account.Active = true
	account.Balance = decimal.Zero
	return &user, &account, nil
}
