package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines persistence for audit logs.
type RepositoryPort interface {
	Insert(ctx context.Context, ev Event) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]Log, error)
	Count(ctx context.Context, filter Filter) (int, error)
}

// Repository stores audit logs in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert persists one audit event as a log row.
func (r *Repository) Insert(ctx context.Context, ev Event) error {
	snapshot, err := json.Marshal(ev.Snapshot)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO audit_logs (entity, entity_id, action, actor_id, actor_email, snapshot, description, occurred_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,COALESCE($8, NOW()))`,
		ev.Entity, ev.EntityID, ev.Action, ev.ActorID, ev.ActorEmail, snapshot, ev.Description, ev.OccurredAt)
	return err
}

// List returns audit logs newest-first, optionally filtered by entity.
func (r *Repository) List(ctx context.Context, filter Filter, limit, offset int) ([]Log, error) {
	query := `SELECT id, entity, entity_id, action, actor_id, actor_email, snapshot, description, occurred_at
FROM audit_logs`
	args := []any{}
	if filter.Entity != "" {
		query += ` WHERE entity=$1`
		args = append(args, filter.Entity)
		if filter.EntityID != 0 {
			query += ` AND entity_id=$2`
			args = append(args, filter.EntityID)
		}
	}
	query += fmt.Sprintf(` ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []Log
	for rows.Next() {
		var l Log
		var snapshot []byte
		if err := rows.Scan(&l.ID, &l.Entity, &l.EntityID, &l.Action, &l.ActorID, &l.ActorEmail, &snapshot, &l.Description, &l.OccurredAt); err != nil {
			return nil, err
		}
		if len(snapshot) > 0 {
			_ = json.Unmarshal(snapshot, &l.Snapshot)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Count returns the number of audit logs matching the filter.
func (r *Repository) Count(ctx context.Context, filter Filter) (int, error) {
	query := `SELECT COUNT(*) FROM audit_logs`
	args := []any{}
	if filter.Entity != "" {
		query += ` WHERE entity=$1`
		args = append(args, filter.Entity)
		if filter.EntityID != 0 {
			query += ` AND entity_id=$2`
			args = append(args, filter.EntityID)
		}
	}
	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
