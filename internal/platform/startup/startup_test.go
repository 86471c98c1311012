package startup

import (
	"context"
	"testing"

	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/metadata"
	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestInitializeEmptyDatabase(t *testing.T) {
	rt, err := InitializeApplication(context.Background(), openTestDB(t))
	require.NoError(t, err)

	fast, charged := rt.Catalog().Size()
	assert.Zero(t, fast)
	assert.Zero(t, charged)
	assert.Zero(t, rt.Current().Store.Size())
	assert.Empty(t, metadata.ServedVersion())
}

func TestRebuildPicksUpNewData(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	rt, err := InitializeApplication(ctx, db)
	require.NoError(t, err)
	before := rt.Current()

	counter := move.FastMove{Move: move.Move{MoveID: "COUNTER", Name: "Counter", Type: "fighting", Power: 8, Cooldown: 1000}, EnergyGain: 7}
	require.NoError(t, db.Create(&counter).Error)
	require.NoError(t, db.Create(&pokemon.Pokemon{Dex: 308, SpeciesID: "medicham", SpeciesName: "Medicham", Type1: "fighting", Released: true,
		FastMoves: []move.FastMove{counter}}).Error)
	version, err := metadata.BumpDatasetVersion(db)
	require.NoError(t, err)

	require.NoError(t, rt.Rebuild(ctx))
	assert.Equal(t, version, metadata.ServedVersion())
	ds := rt.Current()
	assert.NotSame(t, before, ds)
	assert.Same(t, ds.Catalog, rt.Catalog())
	_, err = ds.Catalog.Fast("COUNTER")
	assert.NoError(t, err)
	prof, err := ds.Store.Get("medicham")
	require.NoError(t, err)
	assert.Equal(t, []string{"COUNTER"}, prof.FastMoves)

	// a request still holding the old generation sees neither half of the reload
	fast, charged := before.Catalog.Size()
	assert.Zero(t, fast+charged)
	assert.Zero(t, before.Store.Size())
}

func TestRebuildFailureKeepsPublishedDataset(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	rt, err := InitializeApplication(ctx, db)
	require.NoError(t, err)
	before := rt.Current()

	require.NoError(t, db.Migrator().DropTable(&pokemon.Pokemon{}))
	assert.Error(t, rt.Rebuild(ctx))
	assert.Same(t, before, rt.Current())
}
