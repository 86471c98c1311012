package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/metadata"
	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
	"github.com/SlpAus/pvp-rankings-backend/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const movesJSON = `[
  {"moveId": "COUNTER", "name": "Counter", "type": "fighting", "power": 8, "energy": 0, "energyGain": 7, "cooldown": 1000},
  {"moveId": "SPLASH", "name": "Splash", "energy": 0, "energyGain": 3},
  {"moveId": "ICE_PUNCH", "name": "Ice Punch", "type": "ice", "power": 55, "energy": 40, "energyGain": 0, "cooldown": 500},
  {"moveId": "POWER_UP_PUNCH", "name": "Power-Up Punch", "type": "fighting", "power": 20, "energy": 35, "cooldown": 500,
   "buffs": [1, 0], "buffTarget": "self", "buffApplyChance": "1"},
  {"moveId": "ICY_WIND", "name": "Icy Wind", "type": "ice", "power": 60, "energy": 45, "cooldown": 500,
   "buffs": [0, -1], "buffTarget": "opponent", "buffApplyChance": ".5"}
]`

const pokemonJSON = `[
  {"dex": 308, "speciesName": "Medicham", "speciesId": "medicham", "baseStats": {"atk": 121, "def": 152, "hp": 155},
   "types": ["fighting", "psychic"], "fastMoves": ["COUNTER"], "chargedMoves": ["ICE_PUNCH", "POWER_UP_PUNCH"],
   "eliteMoves": ["POWER_UP_PUNCH"], "tags": ["shadoweligible"], "level25CP": 1143, "defaultIVs": {"cp1500": [49, 7, 15, 14]},
   "buddyDistance": 3, "thirdMoveCost": 10000, "released": true, "family": {"id": "FAMILY_MEDITITE", "parent": "meditite"}},
  {"dex": 308, "speciesName": "Medicham (Shadow)", "speciesId": "medicham_shadow", "baseStats": {"atk": 121, "def": 152, "hp": 155},
   "types": ["fighting", "psychic"], "fastMoves": ["COUNTER"], "chargedMoves": ["ICE_PUNCH", "ICY_WIND"],
   "tags": ["shadow", "shadoweligible"], "thirdMoveCost": false, "released": true},
  {"dex": 129, "speciesName": "Magikarp", "speciesId": "magikarp", "baseStats": {"atk": 29, "def": 85, "hp": 85},
   "types": ["water", "none"], "fastMoves": ["SPLASH"], "chargedMoves": ["NOT_IN_THE_GAME"], "released": false}
]`

const formatsJSON = `[
  {"title": "Great League", "cup": "all", "cp": 1500, "meta": "great", "showFormat": true},
  {"title": "Kanto Cup", "cup": "kanto", "cp": 1500, "meta": "kanto", "showFormat": true},
  {"title": "Retro Cup", "cup": "retro", "cp": 1500, "meta": "retro", "showFormat": false}
]`

const rankingsJSON = `[
  {"speciesId": "medicham", "speciesName": "Medicham", "rating": 640, "score": 95.1,
   "moveset": ["COUNTER", "ICE_PUNCH", "POWER_UP_PUNCH"], "scores": [94.2, 90.1],
   "moves": {"fastMoves": [{"moveId": "COUNTER", "uses": 100}], "chargedMoves": [{"moveId": "ICE_PUNCH", "uses": 60}]},
   "stats": {"product": 2204, "atk": 104.4, "def": 131.5, "hp": 141},
   "matchups": [{"opponent": "medicham_shadow", "rating": 612, "opRating": 388}],
   "counters": [{"opponent": "medicham_shadow", "rating": 410}]},
  {"speciesId": "medicham_shadow", "speciesName": "Medicham (Shadow)", "score": 90.4,
   "moveset": ["COUNTER", "ICE_PUNCH"], "scores": [88.0], "matchups": [], "counters": []}
]`

func setupLoaderTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, metadata.Migrate(db))
	require.NoError(t, move.Migrate(db))
	require.NoError(t, pokemon.Migrate(db))
	require.NoError(t, ranking.Migrate(db))
	return db
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeDataFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, MovesFile, movesJSON)
	writeFixture(t, dir, PokemonFile, pokemonJSON)
	writeFixture(t, dir, FormatsFile, formatsJSON)
	return dir
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestLoadData(t *testing.T) {
	db := setupLoaderTestDB(t)
	ctx := context.Background()

	stats, err := New(db, writeDataFixtures(t), true).LoadData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Formats)
	assert.Equal(t, 2, stats.FastMoves)
	assert.Equal(t, 3, stats.ChargedMoves)
	assert.Equal(t, 3, stats.Pokemon)
	assert.Equal(t, 2, stats.Tags)
	assert.NotEmpty(t, stats.Version)

	stored, err := metadata.GetDatasetVersion(db)
	require.NoError(t, err)
	assert.Equal(t, stats.Version, stored)

	catalog := move.NewCatalog()
	require.NoError(t, catalog.Load(ctx, db))
	splash, err := catalog.Fast("SPLASH")
	require.NoError(t, err)
	assert.Equal(t, pokemon.NoType, splash.Type)
	assert.Equal(t, move.TurnDuration, splash.Cooldown)
	icyWind, err := catalog.Charged("ICY_WIND")
	require.NoError(t, err)
	assert.Equal(t, 0.5, icyWind.BuffApplyChance)
	assert.Equal(t, move.BuffTargetOpponent, icyWind.BuffTarget)
	label, err := catalog.ChargedArchetype("POWER_UP_PUNCH")
	require.NoError(t, err)
	assert.Equal(t, move.Boost, label)

	store := pokemon.NewStore()
	require.NoError(t, store.Load(ctx, db))
	medicham, err := store.Get("medicham")
	require.NoError(t, err)
	assert.Equal(t, []string{"ICE_PUNCH", "POWER_UP_PUNCH"}, medicham.ChargedMoves)
	assert.True(t, medicham.IsElite("POWER_UP_PUNCH"))
	shadow, err := store.Get("medicham_shadow")
	require.NoError(t, err)
	assert.True(t, shadow.IsShadow())
	magikarp, err := store.Get("magikarp")
	require.NoError(t, err)
	assert.Empty(t, magikarp.FastMoves)
	assert.Equal(t, [2]string{"water", "none"}, magikarp.Types)

	var retro ranking.Format
	require.NoError(t, db.Where("cup = ?", "retro").First(&retro).Error)
	assert.False(t, retro.Show)
	var great ranking.Format
	require.NoError(t, db.Where("cup = ? AND cp = ?", "all", 1500).First(&great).Error)
	assert.True(t, great.Show)
}

func TestLoadDataTwiceReplaces(t *testing.T) {
	db := setupLoaderTestDB(t)
	dir := writeDataFixtures(t)
	ctx := context.Background()

	first, err := New(db, dir, true).LoadData(ctx)
	require.NoError(t, err)
	second, err := New(db, dir, true).LoadData(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.Version, second.Version)
	assert.EqualValues(t, 3, count(t, db, &pokemon.Pokemon{}))
	assert.EqualValues(t, 2, count(t, db, &pokemon.Tag{}))
	assert.EqualValues(t, 5, count(t, db, &ranking.Format{}))
}

func TestLoadDataIsAllOrNothing(t *testing.T) {
	db := setupLoaderTestDB(t)
	dir := writeDataFixtures(t)
	ctx := context.Background()

	good, err := New(db, dir, true).LoadData(ctx)
	require.NoError(t, err)

	writeFixture(t, dir, PokemonFile, `[{"dex": 1, "speciesName": "Bulbasaur", "speciesId": "bulbasaur",
	  "types": ["grass", "poison"], "fastMoves": ["VINE_WHIP"], "chargedMoves": [], "released": true}]`)
	_, err = New(db, dir, true).LoadData(ctx)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.EqualValues(t, 3, count(t, db, &pokemon.Pokemon{}))
	assert.EqualValues(t, 2, count(t, db, &move.FastMove{}))
	version, err := metadata.GetDatasetVersion(db)
	require.NoError(t, err)
	assert.Equal(t, good.Version, version)
}

func TestLoadDataRejectsBadMoves(t *testing.T) {
	db := setupLoaderTestDB(t)
	dir := writeDataFixtures(t)
	ctx := context.Background()

	writeFixture(t, dir, MovesFile, `[{"moveId": "STRUGGLE", "name": "Struggle", "energy": 0, "energyGain": 0}]`)
	_, err := New(db, dir, true).LoadData(ctx)
	assert.ErrorIs(t, err, apperr.ErrDomain)

	writeFixture(t, dir, MovesFile, `[{"moveId": "A", "energy": 0, "energyGain": 3}, {"moveId": "A", "energy": 0, "energyGain": 4}]`)
	_, err = New(db, dir, true).LoadData(ctx)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.EqualValues(t, 0, count(t, db, &move.FastMove{}))
}

func TestLoadDataWithoutFormatsFile(t *testing.T) {
	db := setupLoaderTestDB(t)
	dir := t.TempDir()
	writeFixture(t, dir, MovesFile, movesJSON)
	writeFixture(t, dir, PokemonFile, pokemonJSON)

	stats, err := New(db, dir, true).LoadData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(DefaultFormats), stats.Formats)
}

func TestLoadDataFoldsTagCase(t *testing.T) {
	db := setupLoaderTestDB(t)
	dir := writeDataFixtures(t)
	writeFixture(t, dir, PokemonFile, `[
  {"dex": 308, "speciesName": "Medicham (Shadow)", "speciesId": "medicham_shadow", "types": ["fighting", "psychic"],
   "fastMoves": ["COUNTER"], "chargedMoves": ["ICE_PUNCH"], "tags": ["Shadow"], "released": true},
  {"dex": 68, "speciesName": "Machamp (Shadow)", "speciesId": "machamp_shadow", "types": ["fighting", "none"],
   "fastMoves": ["COUNTER"], "chargedMoves": ["ICE_PUNCH"], "tags": ["shadow", "SHADOW"], "released": true}
]`)

	stats, err := New(db, dir, true).LoadData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Tags)
	assert.EqualValues(t, 1, count(t, db, &pokemon.Tag{}))

	rows, err := pokemon.LoadAll(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for i := range rows {
		require.Len(t, rows[i].Tags, 1, rows[i].SpeciesID)
		assert.Equal(t, "Shadow", rows[i].Tags[0].Tag)
		assert.True(t, pokemon.NewProfile(&rows[i]).IsShadow(), rows[i].SpeciesID)
	}
}

func writeRankingFixtures(t *testing.T, dir string) {
	t.Helper()
	writeFixture(t, dir, "rankings/all/overall/rankings-1500.json", rankingsJSON)
	writeFixture(t, dir, "rankings/all/leads/rankings-1500.json", rankingsJSON)
	writeFixture(t, dir, "rankings/all/overall/rankings-2500.json", rankingsJSON)
	writeFixture(t, dir, "rankings/kanto/overall/rankings-1500.json", rankingsJSON)
	writeFixture(t, dir, "rankings/retro/overall/rankings-1500.json", rankingsJSON)
}

func TestLoadRankings(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		scenarios int
	}{
		{"debug loads cup all only", true, 3},
		{"release loads visible formats", false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupLoaderTestDB(t)
			dir := writeDataFixtures(t)
			writeRankingFixtures(t, dir)
			ctx := context.Background()
			l := New(db, dir, tt.debug)

			_, err := l.LoadData(ctx)
			require.NoError(t, err)
			stats, err := l.LoadRankings(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.scenarios, stats.Scenarios)
			assert.Equal(t, 2*tt.scenarios, stats.Rankings)

			repo := ranking.NewRepository(db)
			s, err := repo.ResolveScenario(ctx, "all", 1500, "leads")
			require.NoError(t, err)
			row, err := repo.GetRanking(ctx, s.ID, 1)
			require.NoError(t, err)
			assert.Equal(t, "medicham", row.Pokemon.SpeciesID)
			require.Len(t, row.Matchups, 1)
			assert.Equal(t, 612, row.Matchups[0].Rating)
			assert.Equal(t, 2204.0, row.Stats["product"])

			// a second run replaces in place
			_, err = l.LoadRankings(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 2*tt.scenarios, count(t, db, &ranking.Ranking{}))
			assert.EqualValues(t, tt.scenarios, count(t, db, &ranking.Matchup{}))
			assert.EqualValues(t, tt.scenarios, count(t, db, &ranking.Scenario{}))
		})
	}
}

func TestLoadRankingsUnknownSpecies(t *testing.T) {
	db := setupLoaderTestDB(t)
	dir := writeDataFixtures(t)
	writeFixture(t, dir, "rankings/all/overall/rankings-1500.json", rankingsJSON)
	writeFixture(t, dir, "rankings/all/leads/rankings-1500.json",
		`[{"speciesId": "mewtwo", "score": 99, "moveset": ["PSYCHO_CUT", "PSYSTRIKE"]}]`)
	ctx := context.Background()
	l := New(db, dir, true)

	_, err := l.LoadData(ctx)
	require.NoError(t, err)
	_, err = l.LoadRankings(ctx)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.EqualValues(t, 0, count(t, db, &ranking.Ranking{}))
}

func TestClearData(t *testing.T) {
	db := setupLoaderTestDB(t)
	dir := writeDataFixtures(t)
	writeRankingFixtures(t, dir)
	ctx := context.Background()
	l := New(db, dir, true)

	_, err := l.LoadData(ctx)
	require.NoError(t, err)
	_, err = l.LoadRankings(ctx)
	require.NoError(t, err)

	_, err = l.ClearData(ctx)
	require.NoError(t, err)
	for _, model := range []any{&ranking.Format{}, &ranking.Scenario{}, &ranking.Ranking{}, &ranking.Matchup{}, &ranking.Counter{}, &pokemon.Pokemon{}, &pokemon.Tag{}, &move.FastMove{}, &move.ChargedMove{}} {
		assert.EqualValues(t, 0, count(t, db, model), "%T", model)
	}
	var joins int64
	require.NoError(t, db.Table("pokemon_fast_moves").Count(&joins).Error)
	assert.Zero(t, joins)
}

func TestLooseNumbers(t *testing.T) {
	var f looseFloat
	require.NoError(t, f.UnmarshalJSON([]byte(`".25"`)))
	assert.Equal(t, looseFloat(0.25), f)
	require.NoError(t, f.UnmarshalJSON([]byte(`1`)))
	assert.Equal(t, looseFloat(1), f)
	assert.Error(t, f.UnmarshalJSON([]byte(`"often"`)))

	var i looseInt
	require.NoError(t, i.UnmarshalJSON([]byte(`false`)))
	assert.Zero(t, i)
	require.NoError(t, i.UnmarshalJSON([]byte(`50000`)))
	assert.Equal(t, looseInt(50000), i)
}
