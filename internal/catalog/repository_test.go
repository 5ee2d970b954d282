package catalog

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/service-booking-backend/internal/db/dbtest"
)

func TestPgxRepository_GetActiveProviderLocation(t *testing.T) {
	pool := dbtest.Pool(t)
	f := dbtest.Seed(t, pool)
	repo := NewPgxRepository(pool)
	ctx := context.Background()

	t.Run("active link", func(t *testing.T) {
		pl, err := repo.GetActiveProviderLocation(ctx, f.ProviderID, f.LocationID)
		require.NoError(t, err)
		assert.Equal(t, f.ProviderName, pl.ProviderName)
		assert.Equal(t, f.LocationName, pl.LocationName)
		assert.True(t, pl.IsPrimary)
		assert.True(t, pl.IsActive)
	})

	t.Run("inactive link", func(t *testing.T) {
		_, err := repo.GetActiveProviderLocation(ctx, f.ProviderID, f.ClosedLocation)
		assert.ErrorIs(t, err, ErrInvalidLocation)
	})

	t.Run("location of another provider", func(t *testing.T) {
		_, err := repo.GetActiveProviderLocation(ctx, f.OtherProviderID, f.LocationID)
		assert.ErrorIs(t, err, ErrInvalidLocation)
	})

	t.Run("inactive provider", func(t *testing.T) {
		_, err := pool.Exec(ctx, `UPDATE public.providers SET is_active = FALSE WHERE id = $1`, f.ProviderID)
		require.NoError(t, err)

		_, err = repo.GetActiveProviderLocation(ctx, f.ProviderID, f.LocationID)
		assert.ErrorIs(t, err, ErrInvalidLocation)
	})
}

func TestPgxRepository_ListActiveServices(t *testing.T) {
	pool := dbtest.Pool(t)
	f := dbtest.Seed(t, pool)
	repo := NewPgxRepository(pool)
	ctx := context.Background()

	got, err := repo.ListActiveServices(ctx, f.ProviderID,
		[]string{f.CutID, f.ColorID, f.RetiredID, f.OtherServiceID, uuid.NewString()})
	require.NoError(t, err)
	require.Len(t, got, 2)

	sort.Slice(got, func(i, j int) bool { return got[i].Name < got[j].Name })
	assert.Equal(t, f.ColorID, got[0].ID)
	assert.Equal(t, "800.00", got[0].BasePrice.StringFixed(2))
	assert.Equal(t, 30*time.Minute, got[0].Duration)
	assert.Equal(t, f.CutID, got[1].ID)
	assert.Equal(t, 45*time.Minute, got[1].Duration)

	none, err := repo.ListActiveServices(ctx, f.ProviderID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
