package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing provider memberships.
type Repository interface {
	// GetActive returns the active membership of userID in providerID, or ErrNotMember.
	GetActive(ctx context.Context, providerID, userID string) (*Membership, error)
	// GetActiveByID returns an active membership by its own id, or ErrNotMember.
	GetActiveByID(ctx context.Context, id string) (*Membership, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new membership repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*Membership, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"pu.id", "pu.provider_id", "pu.user_id", "pu.is_owner", "pu.can_manage_bookings",
		"pu.can_manage_services", "pu.can_manage_locations", "pu.can_view_analytics",
		"pu.is_active", "pu.created_at",
	).
		From("public.provider_users pu").
		Join("public.providers p ON pu.provider_id = p.id").
		Where(where).
		Where(squirrel.Eq{"pu.is_active": true}).
		Where(squirrel.Eq{"p.is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get membership query failed: %w", err)
	}

	var m Membership
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&m.ID, &m.ProviderID, &m.UserID, &m.IsOwner, &m.CanManageBookings,
		&m.CanManageServices, &m.CanManageLocations, &m.CanViewAnalytics,
		&m.IsActive, &m.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("get membership failed: %w", err)
	}
	return &m, nil
}

func (r *pgxRepository) GetActive(ctx context.Context, providerID, userID string) (*Membership, error) {
	return r.getOne(ctx, squirrel.Eq{"pu.provider_id": providerID, "pu.user_id": userID})
}

func (r *pgxRepository) GetActiveByID(ctx context.Context, id string) (*Membership, error) {
	return r.getOne(ctx, squirrel.Eq{"pu.id": id})
}
