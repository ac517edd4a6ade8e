package accounts

import (
	"context"
	"fmt"

	"github.com/meridianbank/meridian/internal/audit"
	"github.com/meridianbank/meridian/internal/shared"
)

// Service handles account read paths and lifecycle changes.
type Service struct {
	repo RepositoryPort
	sink audit.Sink
}

// NewService builds Service instance. sink may be nil.
func NewService(repo RepositoryPort, sink audit.Sink) *Service {
	return &Service{repo: repo, sink: sink}
}

// ListMine returns all accounts owned by the acting user.
func (s *Service) ListMine(ctx context.Context, actor shared.Identity) ([]Account, error) {
	return s.repo.ListByUser(ctx, actor.UserID)
}

// Get returns one account. A foreign account answers not-found, never
// forbidden, so callers cannot probe for existence.
func (s *Service) Get(ctx context.Context, actor shared.Identity, accountID int64) (*Account, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != actor.UserID {
		return nil, fmt.Errorf("account %d: %w", accountID, shared.ErrNotFound)
	}
	return account, nil
}

// SetActive flips the account's active flag. Deactivation is the only
// terminal state; accounts are never deleted. Admin-only, enforced by the
// routing layer.
func (s *Service) SetActive(ctx context.Context, actor shared.Identity, accountID int64, active bool) (*Account, error) {
	account, err := s.repo.SetActive(ctx, accountID, active)
	if err != nil {
		return nil, err
	}
	if s.sink != nil {
		action := "DEACTIVATE"
		if active {
			action = "ACTIVATE"
		}
		s.sink.Record(ctx, audit.Event{
			Entity:     "Account",
			EntityID:   account.ID,
			Action:     action,
			ActorID:    actor.UserID,
			ActorEmail: actor.Email,
			Snapshot: map[string]any{
				"number":  account.Number,
				"active":  account.Active,
				"balance": account.Balance.StringFixed(2),
			},
			Description: fmt.Sprintf("account %s set active=%t", account.Number, account.Active),
		})
	}
	return account, nil
}
