package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Reader is the read-only view of provider locations and services
// that booking validation depends on.
type Reader interface {
	// GetActiveProviderLocation returns ErrInvalidLocation unless the link and its provider are active.
	GetActiveProviderLocation(ctx context.Context, providerID, locationID string) (*ProviderLocation, error)
	// ListActiveServices returns the active services of providerID whose id is in ids,
	// in no particular order. Unknown, foreign or inactive ids are simply absent.
	ListActiveServices(ctx context.Context, providerID string, ids []string) ([]Service, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new catalog Reader.
func NewPgxRepository(pool *pgxpool.Pool) Reader {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetActiveProviderLocation(ctx context.Context, providerID, locationID string) (*ProviderLocation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("pl.provider_id", "p.name", "pl.location_id", "l.name", "pl.is_primary", "pl.is_active").
		From("public.provider_locations pl").
		Join("public.providers p ON pl.provider_id = p.id").
		Join("public.locations l ON pl.location_id = l.id").
		Where(squirrel.Eq{"pl.provider_id": providerID}).
		Where(squirrel.Eq{"pl.location_id": locationID}).
		Where(squirrel.Eq{"pl.is_active": true}).
		Where(squirrel.Eq{"p.is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get provider location query failed: %w", err)
	}

	var pl ProviderLocation
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&pl.ProviderID, &pl.ProviderName, &pl.LocationID, &pl.LocationName, &pl.IsPrimary, &pl.IsActive,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidLocation
		}
		return nil, fmt.Errorf("get provider location failed: %w", err)
	}
	return &pl, nil
}

func (r *pgxRepository) ListActiveServices(ctx context.Context, providerID string, ids []string) ([]Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "provider_id", "name", "base_price::text", "duration_minutes", "is_active").
		From("public.services").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list services query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services failed: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var (
			s       Service
			price   string
			minutes int
		)
		if err := rows.Scan(&s.ID, &s.ProviderID, &s.Name, &price, &minutes, &s.IsActive); err != nil {
			return nil, fmt.Errorf("scan service failed: %w", err)
		}
		if s.BasePrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price of service %s: %w", s.ID, err)
		}
		s.Duration = time.Duration(minutes) * time.Minute
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services failed: %w", err)
	}

	return services, nil
}
