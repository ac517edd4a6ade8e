package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridianbank/meridian/internal/accounts"
	"github.com/meridianbank/meridian/internal/audit"
	"github.com/meridianbank/meridian/internal/shared"
	"github.com/meridianbank/meridian/internal/users"
)

// numberRetries bounds regeneration attempts on account number collision.
const numberRetries = 3

// UserSource resolves users at login time.
type UserSource interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

// Service wraps registration and login.
type Service struct {
	repo   RepositoryPort
	users  UserSource
	tokens *TokenIssuer
	sink   audit.Sink
	logger *slog.Logger
}

// NewService constructs a new Service. sink may be nil.
func NewService(repo RepositoryPort, userSource UserSource, tokens *TokenIssuer, sink audit.Sink, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: userSource, tokens: tokens, sink: sink, logger: logger}
}

// Register creates a user and their first account atomically and returns a
// signed token, logging the new user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Registration, error) {
	if !shared.ValidCPF(in.CPF) {
		return nil, fmt.Errorf("%w: invalid cpf", shared.ErrBusinessRule)
	}
	if in.AccountType == "" {
		in.AccountType = accounts.TypeChecking
	}
	if !in.AccountType.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %q", shared.ErrValidation, string(in.AccountType))
	}
	if exists, err := s.repo.EmailExists(ctx, in.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: email already registered", shared.ErrBusinessRule)
	}
	if exists, err := s.repo.CPFExists(ctx, in.CPF); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: cpf already registered", shared.ErrBusinessRule)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user := users.User{
		Name:         in.Name,
		Email:        in.Email,
		CPF:          in.CPF,
		PasswordHash: string(hash),
		Role:         shared.RoleCustomer,
	}

	// The generator does not guarantee uniqueness; the unique constraint
	// does. Regenerate and retry on collision.
	var (
		created *users.User
		account *accounts.Account
	)
	for attempt := 0; attempt < numberRetries; attempt++ {
		number, err := accounts.GenerateNumber()
		if err != nil {
			return nil, err
		}
		created, account, err = s.repo.CreateUserWithAccount(ctx, user, accounts.Account{
			Number: number,
			Agency: accounts.DefaultAgency,
			Type:   in.AccountType,
		})
		if err == nil {
			break
		}
		if errors.Is(err, shared.ErrDuplicate) && attempt < numberRetries-1 {
			s.logger.Warn("account number collision, regenerating", slog.String("number", number))
			continue
		}
		return nil, err
	}

	if s.sink != nil {
		s.sink.Record(ctx, audit.Event{
			Entity:     "User",
			EntityID:   created.ID,
			Action:     "CREATE",
			ActorID:    created.ID,
			ActorEmail: created.Email,
			Snapshot: map[string]any{
				"name":           created.Name,
				"email":          created.Email,
				"account_number": account.Number,
			},
			Description: "new user registered",
		})
	}

	token, err := s.tokens.Issue(shared.Identity{UserID: created.ID, Email: created.Email, Role: created.Role})
	if err != nil {
		return nil, err
	}
	return &Registration{User: *created, Account: *account, Token: token}, nil
}

// Login validates credentials and issues a token. Unknown email, wrong
// password and deactivated user all answer the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(shared.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &Session{User: *user, Token: token}, nil
}
