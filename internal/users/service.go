package users

import (
	"context"

	"github.com/meridianbank/meridian/internal/shared"
)

// Service exposes the admin read side over users.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, page shared.PageRequest) ([]User, shared.Pagination, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	pagination := shared.NewPagination(page.Page, page.PerPage, total)
	list, err := s.repo.List(ctx, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, pagination, nil
}
