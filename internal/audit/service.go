package audit

import (
	"context"

	"github.com/meridianbank/meridian/internal/shared"
)

// Service exposes the admin read side over audit logs.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of audit logs, optionally scoped to one entity.
func (s *Service) List(ctx context.Context, filter Filter, page shared.PageRequest) ([]Log, shared.Pagination, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	pagination := shared.NewPagination(page.Page, page.PerPage, total)
	logs, err := s.repo.List(ctx, filter, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return logs, pagination, nil
}
