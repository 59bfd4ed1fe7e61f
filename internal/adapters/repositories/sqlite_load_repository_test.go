package repositories

import (
	"context"
	"database/sql"
	"driver-route-planner/internal/domain"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitSchema(db))
	return db
}

func TestSqliteLoadRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	loads := []domain.Load{
		{ID: 2, Pickup: domain.Point{X: -24.5, Y: -19.2}, Dropoff: domain.Point{X: 98.5, Y: 1.8}},
		{ID: 1, Pickup: domain.Point{X: -50.1, Y: 80}, Dropoff: domain.Point{X: 90.1, Y: 12.2}},
	}
	require.NoError(t, SeedLoads(ctx, db, loads))

	got, err := NewSqliteLoadRepository(db).ListLoads(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Load{loads[1], loads[0]}, got)
}

func TestSeedLoadsReplacesExistingRows(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, SeedLoads(ctx, db, []domain.Load{{ID: 1, Dropoff: domain.Point{X: 1}}}))
	require.NoError(t, SeedLoads(ctx, db, []domain.Load{{ID: 1, Dropoff: domain.Point{X: 5}}}))

	got, err := NewSqliteLoadRepository(db).ListLoads(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0].Dropoff.X)
}

func TestSeedLoadsRejectsDuplicates(t *testing.T) {
	db := openTestDB(t)

	err := SeedLoads(context.Background(), db, []domain.Load{{ID: 3}, {ID: 3}})
	assert.ErrorIs(t, err, domain.ErrDuplicateLoad)
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, InitSchema(db))
}

func TestNilDB(t *testing.T) {
	_, err := NewSqliteLoadRepository(nil).ListLoads(context.Background())
	assert.Error(t, err)
	_, err = NewSQLLoadRepository(nil).ListLoads(context.Background())
	assert.Error(t, err)
	assert.Error(t, InitSchema(nil))
}

func TestReadSeedJSON(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "loads.json")
	require.NoError(t, os.WriteFile(good, []byte(`[
		{"load_id": 1, "pickup": "(0,0)", "dropoff": "(0,10)"},
		{"load_id": 2, "pickup": "(3,4)", "dropoff": "(-1.5,2)"}
	]`), 0o600))

	loads, err := ReadSeedJSON(good)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, domain.LoadIDs(loads))
	assert.Equal(t, domain.Point{X: -1.5, Y: 2}, loads[1].Dropoff)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"load_id": 1, "pickup": "(0,x)", "dropoff": "(0,10)"}]`), 0o600))
	_, err = ReadSeedJSON(bad)
	assert.ErrorIs(t, err, domain.ErrMalformedPoint)

	zero := filepath.Join(dir, "zero.json")
	require.NoError(t, os.WriteFile(zero, []byte(`[{"load_id": 0, "pickup": "(0,0)", "dropoff": "(0,10)"}]`), 0o600))
	_, err = ReadSeedJSON(zero)
	assert.Error(t, err)
}
