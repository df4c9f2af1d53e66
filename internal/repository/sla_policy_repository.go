package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nebuladesk/helpdesk/internal/domain"
)

// SLAPolicyRepository provides read access to the seeded policy table.
type SLAPolicyRepository interface {
	FindByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error)
	ListAll(ctx context.Context) ([]domain.SLAPolicy, error)
}

type slaPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewSLAPolicyRepository returns a Postgres-backed implementation.
func NewSLAPolicyRepository(pool *pgxpool.Pool) SLAPolicyRepository {
	return &slaPolicyRepository{pool: pool}
}

// FindByPriority returns nil without error when no policy row exists; a
// priority without a policy simply carries no SLA.
func (r *slaPolicyRepository) FindByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	const query = `
        SELECT id, priority, response_time_hours, resolution_time_hours, created_at, updated_at
        FROM sla_policies WHERE priority=$1`

	var policy domain.SLAPolicy
	err := r.pool.QueryRow(ctx, query, priority).Scan(
		&policy.ID,
		&policy.Priority,
		&policy.ResponseTimeHours,
		&policy.ResolutionTimeHours,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *slaPolicyRepository) ListAll(ctx context.Context) ([]domain.SLAPolicy, error) {
	const query = `
        SELECT id, priority, response_time_hours, resolution_time_hours, created_at, updated_at
        FROM sla_policies ORDER BY resolution_time_hours`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAPolicy
	for rows.Next() {
		var policy domain.SLAPolicy
		if err := rows.Scan(
			&policy.ID,
			&policy.Priority,
			&policy.ResponseTimeHours,
			&policy.ResolutionTimeHours,
			&policy.CreatedAt,
			&policy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}
