package ranking

import (
	"context"
	"fmt"
	"testing"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func setupRankingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, move.Migrate(db))
	require.NoError(t, pokemon.Migrate(db))
	require.NoError(t, Migrate(db))
	return db
}

func speciesID(i int) string {
	return fmt.Sprintf("mon%02d", i)
}

// seedSpecies creates n species mon01..monNN and returns an index over them.
func seedSpecies(t *testing.T, db *gorm.DB, n int) pokemon.Index {
	t.Helper()
	for i := 1; i <= n; i++ {
		p := pokemon.Pokemon{Dex: i, SpeciesID: speciesID(i), SpeciesName: fmt.Sprintf("Mon %d", i), Type1: "water", Released: true}
		require.NoError(t, db.Create(&p).Error)
	}
	idx, err := pokemon.NewIndex(context.Background(), db)
	require.NoError(t, err)
	return idx
}

func seedScenario(t *testing.T, db *gorm.DB, category string) *Scenario {
	t.Helper()
	f := Format{Title: "Great League", Cup: "all", CP: 1500, Meta: "great", Show: true}
	require.NoError(t, db.FirstOrCreate(&f, Format{Cup: "all", CP: 1500}).Error)
	s, err := NewRepository(db).GetScenario(context.Background(), &f, category)
	require.NoError(t, err)
	return s
}

func testEntry(i int, matchups, counters []Edge) Entry {
	return Entry{
		SpeciesID: speciesID(i),
		Score:     float64(100 - i),
		Moveset:   []string{"COUNTER", "ICE_PUNCH"},
		Scores:    []float64{90, 80},
		Stats:     map[string]float64{"atk": 110.5},
		Moves:     &MoveBreakdown{FastMoves: []MoveUsage{{MoveID: "COUNTER", Uses: 100}}},
		Matchups:  matchups,
		Counters:  counters,
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func TestGetScenarioIdempotent(t *testing.T) {
	db := setupRankingTestDB(t)
	first := seedScenario(t, db, "leads")
	second := seedScenario(t, db, "leads")

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "all", second.Format.Cup)
	assert.EqualValues(t, 1, countRows(t, db, &Scenario{}, "category = ?", "leads"))

	_, err := NewRepository(db).GetScenario(context.Background(), &first.Format, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResolveScenario(t *testing.T) {
	db := setupRankingTestDB(t)
	s := seedScenario(t, db, "overall")
	repo := NewRepository(db)
	ctx := context.Background()

	got, err := repo.ResolveScenario(ctx, "all", 1500, "overall")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = repo.ResolveScenario(ctx, "all", 1500, "closers")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = repo.ResolveScenario(ctx, "kanto", 1500, "overall")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.EqualValues(t, 0, countRows(t, db, &Scenario{}, "category = ?", "closers"))
}

func TestListRankingsPagination(t *testing.T) {
	db := setupRankingTestDB(t)
	idx := seedSpecies(t, db, 30)
	s := seedScenario(t, db, "overall")
	repo := NewRepository(db)
	ctx := context.Background()

	entries := make([]Entry, 30)
	for i := range entries {
		entries[i] = testEntry(i+1, nil, nil)
	}
	require.NoError(t, repo.ReplaceScenario(ctx, s.ID, entries, idx))

	page, err := repo.ListRankings(ctx, s.ID, 2, 24)
	require.NoError(t, err)
	require.Len(t, page.Rows, 6)
	for i, row := range page.Rows {
		assert.Equal(t, 25+i, row.Position)
		assert.Equal(t, speciesID(25+i), row.Pokemon.SpeciesID)
	}
	assert.EqualValues(t, 30, page.Total)
	assert.Equal(t, 2, page.NumPages)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)

	clamped, err := repo.ListRankings(ctx, s.ID, 9, 24)
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Number)
	assert.Len(t, clamped.Rows, 6)

	first, err := repo.ListRankings(ctx, s.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, first.Size)
	assert.Len(t, first.Rows, 24)
	assert.Equal(t, 1, first.Rows[0].Position)

	_, err = repo.ListRankings(ctx, s.ID, 0, 24)
	assert.ErrorIs(t, err, apperr.ErrDomain)
}

func TestListRankingsEmptyScenario(t *testing.T) {
	db := setupRankingTestDB(t)
	s := seedScenario(t, db, "closers")

	page, err := NewRepository(db).ListRankings(context.Background(), s.ID, 3, 24)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Empty(t, page.Rows)
}

func TestReplaceRankingIdempotent(t *testing.T) {
	db := setupRankingTestDB(t)
	idx := seedSpecies(t, db, 3)
	s := seedScenario(t, db, "overall")
	repo := NewRepository(db)
	ctx := context.Background()

	entry := testEntry(1, []Edge{{Opponent: "mon02", Rating: 620}, {Opponent: "mon03", Rating: 540}}, []Edge{{Opponent: "mon03", Rating: 310}})
	first, err := repo.ReplaceRanking(ctx, s.ID, 1, entry, idx)
	require.NoError(t, err)
	second, err := repo.ReplaceRanking(ctx, s.ID, 1, entry, idx)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, countRows(t, db, &Ranking{}, "scenario_id = ?", s.ID))
	assert.EqualValues(t, 2, countRows(t, db, &Matchup{}, "ranking_id = ?", second.ID))
	assert.EqualValues(t, 1, countRows(t, db, &Counter{}, "ranking_id = ?", second.ID))

	row, err := repo.GetRanking(ctx, s.ID, 1)
	require.NoError(t, err)
	require.Len(t, row.Matchups, 2)
	assert.Equal(t, "mon02", row.Matchups[0].Opponent.SpeciesID)
	assert.Equal(t, 620, row.Matchups[0].Rating)
	assert.Equal(t, []string{"COUNTER", "ICE_PUNCH"}, row.Moveset)
	assert.Equal(t, 110.5, row.Stats["atk"])
	require.NotNil(t, row.Moves)
	assert.Equal(t, 100, row.Moves.FastMoves[0].Uses)
}

func TestReplaceRankingReplacesEdges(t *testing.T) {
	db := setupRankingTestDB(t)
	idx := seedSpecies(t, db, 3)
	s := seedScenario(t, db, "leads")
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.ReplaceRanking(ctx, s.ID, 1, testEntry(1, []Edge{{Opponent: "mon02", Rating: 700}}, nil), idx)
	require.NoError(t, err)

	updated := testEntry(3, []Edge{{Opponent: "mon01", Rating: 510}}, []Edge{{Opponent: "mon02", Rating: 200}})
	_, err = repo.ReplaceRanking(ctx, s.ID, 1, updated, idx)
	require.NoError(t, err)

	row, err := repo.GetRanking(ctx, s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "mon03", row.Pokemon.SpeciesID)
	require.Len(t, row.Matchups, 1)
	assert.Equal(t, "mon01", row.Matchups[0].Opponent.SpeciesID)
	require.Len(t, row.Counters, 1)
	assert.Equal(t, 200, row.Counters[0].Rating)
}

func TestReplaceRankingUnknownOpponent(t *testing.T) {
	db := setupRankingTestDB(t)
	idx := seedSpecies(t, db, 2)
	s := seedScenario(t, db, "overall")

	_, err := NewRepository(db).ReplaceRanking(context.Background(), s.ID, 1, testEntry(1, []Edge{{Opponent: "missingno", Rating: 600}}, nil), idx)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.EqualValues(t, 0, countRows(t, db, &Ranking{}, "scenario_id = ?", s.ID))
}

func TestReplaceRankingValidation(t *testing.T) {
	db := setupRankingTestDB(t)
	idx := seedSpecies(t, db, 2)
	s := seedScenario(t, db, "overall")
	repo := NewRepository(db)
	ctx := context.Background()

	highScore := testEntry(1, nil, nil)
	highScore.Score = 100.5
	_, err := repo.ReplaceRanking(ctx, s.ID, 1, highScore, idx)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	badRating := testEntry(1, []Edge{{Opponent: "mon02", Rating: 1001}}, nil)
	_, err = repo.ReplaceRanking(ctx, s.ID, 1, badRating, idx)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = repo.ReplaceRanking(ctx, s.ID, 0, testEntry(1, nil, nil), idx)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	shortMoveset := testEntry(1, nil, nil)
	shortMoveset.Moveset = []string{"COUNTER"}
	_, err = repo.ReplaceRanking(ctx, s.ID, 1, shortMoveset, idx)
	assert.ErrorIs(t, err, apperr.ErrDomain)

	_, err = repo.ReplaceRanking(ctx, s.ID, 1, testEntry(9, nil, nil), idx)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReplaceScenarioShrinks(t *testing.T) {
	db := setupRankingTestDB(t)
	idx := seedSpecies(t, db, 3)
	s := seedScenario(t, db, "switches")
	repo := NewRepository(db)
	ctx := context.Background()

	edges := []Edge{{Opponent: "mon01", Rating: 600}}
	require.NoError(t, repo.ReplaceScenario(ctx, s.ID, []Entry{testEntry(1, nil, nil), testEntry(2, nil, nil), testEntry(3, edges, edges)}, idx))
	assert.EqualValues(t, 3, countRows(t, db, &Ranking{}, "scenario_id = ?", s.ID))

	require.NoError(t, repo.ReplaceScenario(ctx, s.ID, []Entry{testEntry(3, nil, nil), testEntry(1, nil, nil)}, idx))
	assert.EqualValues(t, 2, countRows(t, db, &Ranking{}, "scenario_id = ?", s.ID))
	assert.EqualValues(t, 0, countRows(t, db, &Matchup{}, "1 = 1"))
	assert.EqualValues(t, 0, countRows(t, db, &Counter{}, "1 = 1"))

	row, err := repo.GetRanking(ctx, s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "mon03", row.Pokemon.SpeciesID)
}

func TestReplaceScenarioPositions(t *testing.T) {
	db := setupRankingTestDB(t)
	idx := seedSpecies(t, db, 2)
	s := seedScenario(t, db, "overall")
	repo := NewRepository(db)
	ctx := context.Background()

	dup := []Entry{testEntry(1, nil, nil), testEntry(2, nil, nil)}
	dup[0].Position, dup[1].Position = 1, 1
	assert.ErrorIs(t, repo.ReplaceScenario(ctx, s.ID, dup, idx), apperr.ErrValidation)

	gap := []Entry{testEntry(1, nil, nil), testEntry(2, nil, nil)}
	gap[1].Position = 3
	assert.ErrorIs(t, repo.ReplaceScenario(ctx, s.ID, gap, idx), apperr.ErrValidation)

	swapped := []Entry{testEntry(1, nil, nil), testEntry(2, nil, nil)}
	swapped[0].Position, swapped[1].Position = 2, 1
	require.NoError(t, repo.ReplaceScenario(ctx, s.ID, swapped, idx))
	row, err := repo.GetRanking(ctx, s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "mon02", row.Pokemon.SpeciesID)

	count := countRows(t, db, &Ranking{}, "scenario_id = ?", s.ID)
	assert.EqualValues(t, 2, count)
}

func TestReplaceScenarioRejectsRepeatedSpecies(t *testing.T) {
	db := setupRankingTestDB(t)
	idx := seedSpecies(t, db, 2)
	s := seedScenario(t, db, "leads")
	repo := NewRepository(db)
	ctx := context.Background()

	twice := []Entry{testEntry(1, nil, nil), testEntry(1, nil, nil)}
	err := repo.ReplaceScenario(ctx, s.ID, twice, idx)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "duplicate species mon01")
	assert.EqualValues(t, 0, countRows(t, db, &Ranking{}, "scenario_id = ?", s.ID))

	// a reorder moves species between positions without tripping the index
	require.NoError(t, repo.ReplaceScenario(ctx, s.ID, []Entry{testEntry(1, nil, nil), testEntry(2, nil, nil)}, idx))
	require.NoError(t, repo.ReplaceScenario(ctx, s.ID, []Entry{testEntry(2, nil, nil), testEntry(1, nil, nil)}, idx))
	row, err := repo.GetRanking(ctx, s.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "mon01", row.Pokemon.SpeciesID)
}

func TestReplaceRankingRejectsSpeciesAtAnotherPosition(t *testing.T) {
	db := setupRankingTestDB(t)
	idx := seedSpecies(t, db, 2)
	s := seedScenario(t, db, "closers")
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceScenario(ctx, s.ID, []Entry{testEntry(1, nil, nil), testEntry(2, nil, nil)}, idx))

	_, err := repo.ReplaceRanking(ctx, s.ID, 2, testEntry(1, nil, nil), idx)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.EqualValues(t, 1, countRows(t, db, &Ranking{}, "scenario_id = ? AND pokemon_id = ?", s.ID, idx["mon01"]))

	// the unique index backs the check at the storage level
	dup := Ranking{ScenarioID: s.ID, Position: 3, PokemonID: idx["mon01"], Moveset: []string{"A", "B"}}
	assert.Error(t, db.Omit(clause.Associations).Create(&dup).Error)
}
