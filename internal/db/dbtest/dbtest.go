// Package dbtest connects tests to a real Postgres named by TEST_DB_DSN.
// Tests calling Pool are skipped when the variable is unset.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/service-booking-backend/internal/db"
)

// schemaLockID serializes schema setup across test packages running in parallel.
const schemaLockID = 7_413_001

// Pool returns a pool with the schema applied. It is closed when the test ends.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(pool.Close)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	_, err = conn.Exec(ctx, "SELECT pg_advisory_lock($1)", schemaLockID)
	require.NoError(t, err)
	_, schemaErr := conn.Exec(ctx, db.Schema)
	_, err = conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", schemaLockID)
	require.NoError(t, schemaErr, "failed to apply schema")
	require.NoError(t, err)

	return pool
}

// Fixture is one freshly seeded provider with its team, location and services.
// Every call creates new rows, so tests never need to clear tables.
type Fixture struct {
	ProviderID   string
	ProviderName string
	LocationID   string
	LocationName string

	OwnerID    string
	StaffID    string
	CustomerID string

	OwnerMembershipID  string
	StaffMembershipID  string
	FormerMembershipID string

	CutID     string // 1500.00, 45 minutes
	ColorID   string // 800.00, 30 minutes
	RetiredID string // inactive

	OtherProviderID string
	OtherServiceID  string
	ClosedLocation  string // linked to the provider but inactive
}

func Seed(t *testing.T, pool *pgxpool.Pool) Fixture {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	var f Fixture
	f.ProviderName = "Salon " + suffix
	f.LocationName = "Shibuya " + suffix

	one := func(dst *string, sql string, args ...any) {
		t.Helper()
		require.NoError(t, pool.QueryRow(ctx, sql, args...).Scan(dst), sql)
	}
	exec := func(sql string, args ...any) {
		t.Helper()
		_, err := pool.Exec(ctx, sql, args...)
		require.NoError(t, err, sql)
	}

	const insertUser = `INSERT INTO public.users (email, password_hash) VALUES ($1, 'x') RETURNING id`
	one(&f.OwnerID, insertUser, "owner-"+suffix+"@example.com")
	one(&f.StaffID, insertUser, "staff-"+suffix+"@example.com")
	one(&f.CustomerID, insertUser, "customer-"+suffix+"@example.com")
	var formerID string
	one(&formerID, insertUser, "former-"+suffix+"@example.com")

	one(&f.ProviderID, `INSERT INTO public.providers (name) VALUES ($1) RETURNING id`, f.ProviderName)
	one(&f.OtherProviderID, `INSERT INTO public.providers (name) VALUES ($1) RETURNING id`, "Other "+suffix)

	one(&f.LocationID, `INSERT INTO public.locations (name) VALUES ($1) RETURNING id`, f.LocationName)
	one(&f.ClosedLocation, `INSERT INTO public.locations (name) VALUES ($1) RETURNING id`, "Closed "+suffix)
	exec(`INSERT INTO public.provider_locations (provider_id, location_id, is_primary) VALUES ($1, $2, TRUE)`, f.ProviderID, f.LocationID)
	exec(`INSERT INTO public.provider_locations (provider_id, location_id, is_active) VALUES ($1, $2, FALSE)`, f.ProviderID, f.ClosedLocation)

	const insertMember = `INSERT INTO public.provider_users (provider_id, user_id, is_owner, can_manage_bookings, is_active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	one(&f.OwnerMembershipID, insertMember, f.ProviderID, f.OwnerID, true, false, true)
	one(&f.StaffMembershipID, insertMember, f.ProviderID, f.StaffID, false, false, true)
	one(&f.FormerMembershipID, insertMember, f.ProviderID, formerID, false, true, false)

	const insertService = `INSERT INTO public.services (provider_id, name, base_price, duration_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	one(&f.CutID, insertService, f.ProviderID, "Cut", "1500.00", 45, true)
	one(&f.ColorID, insertService, f.ProviderID, "Color", "800.00", 30, true)
	one(&f.RetiredID, insertService, f.ProviderID, "Retired", "100.00", 15, false)
	one(&f.OtherServiceID, insertService, f.OtherProviderID, "Massage", "1000.00", 60, true)

	return f
}
