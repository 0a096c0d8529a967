package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/lucsky/cuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/bagsim/internal/factories"
	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/repositories"
)

// These tests need a PostGIS database; set BAGSIM_TEST_DATABASE_URL to run them.
func testDB(t *testing.T) DB {
	t.Helper()
	url := os.Getenv("BAGSIM_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BAGSIM_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestRestaurantRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewRestaurantRepository(db)
	require.NoError(t, repo.DeleteAll(ctx))

	stores := factories.DefaultRestaurants()
	require.NoError(t, repo.BulkCreate(ctx, stores))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(stores), count)

	got, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(stores))
	for i, r := range got {
		assert.Equal(t, stores[i].ID, r.ID)
		assert.Equal(t, stores[i].Name, r.Name)
		assert.Equal(t, stores[i].BusinessType, r.BusinessType)
		assert.InDelta(t, stores[i].Location.Lon, r.Location.Lon, 1e-9)
		assert.InDelta(t, stores[i].Location.Lat, r.Location.Lat, 1e-9)
	}
	require.NoError(t, repo.DeleteAll(ctx))
}

func TestReservationRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewReservationRepository(db)

	runID := cuid.New()
	t.Cleanup(func() { _ = repo.DeleteRun(ctx, runID) })

	confirmed := models.NewReservation(1, 10, 3, models.NewTimestamp(9, 5))
	confirmed.Confirm(2)
	cancelled := models.NewReservation(2, 11, 3, models.NewTimestamp(14, 30))
	cancelled.Cancel()

	run := repositories.RunRecord{RunID: runID, Strategy: "baseline", Seed: 42, Day: 1}
	require.NoError(t, repo.BulkCreate(ctx, run, []*models.Reservation{confirmed, cancelled}))
	require.NoError(t, repo.BulkCreate(ctx, run, nil))

	count, err := repo.CountByRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := repo.GetByRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, []*models.Reservation{confirmed, cancelled}, got)
}
