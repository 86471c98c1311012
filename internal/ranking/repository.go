package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the relational side of the aggregator. Bind it to a
// transaction with NewRepository(tx) to take part in a bulk reload.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- Formats & Scenarios ---

// VisibleFormats lists the formats flagged for display, lowest cp first.
func (r *Repository) VisibleFormats(ctx context.Context) ([]Format, error) {
	var formats []Format
	if err := r.db.WithContext(ctx).Where("show = ?", true).Order("cp asc, cup asc").Find(&formats).Error; err != nil {
		return nil, fmt.Errorf("list formats: %w", err)
	}
	return formats, nil
}

// FindFormat looks a format up by its (cup, cp) key.
func (r *Repository) FindFormat(ctx context.Context, cup string, cp int) (*Format, error) {
	var f Format
	err := r.db.WithContext(ctx).Where("cup = ? AND cp = ?", cup, cp).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("format", fmt.Sprintf("%s/%d", cup, cp))
	}
	if err != nil {
		return nil, fmt.Errorf("find format %s/%d: %w", cup, cp, err)
	}
	return &f, nil
}

// GetScenario returns the scenario for (format, category), creating it on
// first use. Concurrent callers converge on the same row.
func (r *Repository) GetScenario(ctx context.Context, format *Format, category string) (*Scenario, error) {
	if category == "" {
		return nil, apperr.Validation("scenario category is empty")
	}
	db := r.db.WithContext(ctx)

	// 1. insert and let the unique index absorb a duplicate
	candidate := Scenario{FormatID: format.ID, Category: category}
	if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("create scenario %s: %w", category, err)
	}

	// 2. read back whichever row won
	var s Scenario
	if err := db.Preload("Format").Where("format_id = ? AND category = ?", format.ID, category).First(&s).Error; err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", category, err)
	}
	return &s, nil
}

// FindScenario returns an existing scenario without creating one.
func (r *Repository) FindScenario(ctx context.Context, formatID uint, category string) (*Scenario, error) {
	var s Scenario
	err := r.db.WithContext(ctx).Preload("Format").Where("format_id = ? AND category = ?", formatID, category).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("scenario", category)
	}
	if err != nil {
		return nil, fmt.Errorf("find scenario %s: %w", category, err)
	}
	return &s, nil
}

// ResolveScenario maps a (cup, cp, category) selector to its scenario.
func (r *Repository) ResolveScenario(ctx context.Context, cup string, cp int, category string) (*Scenario, error) {
	f, err := r.FindFormat(ctx, cup, cp)
	if err != nil {
		return nil, err
	}
	return r.FindScenario(ctx, f.ID, category)
}

// --- Listing ---

// Page is one page of a scenario's rankings, ordered by position.
type Page struct {
	Number   int       `json:"number"`
	Size     int       `json:"size"`
	Total    int64     `json:"total"`
	NumPages int       `json:"numPages"`
	HasNext  bool      `json:"hasNext"`
	HasPrev  bool      `json:"hasPrev"`
	Rows     []Ranking `json:"-"`
}

// ListRankings returns page number page (1-based). Pages past the end are
// clamped to the last page; an empty scenario has one empty page.
func (r *Repository) ListRankings(ctx context.Context, scenarioID uint, page, size int) (*Page, error) {
	if page <= 0 {
		return nil, apperr.Domain("page %d, want >= 1", page)
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&Ranking{}).Where("scenario_id = ?", scenarioID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count rankings: %w", err)
	}
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages == 0 {
		numPages = 1
	}
	if page > numPages {
		page = numPages
	}

	var rows []Ranking
	err := db.Preload("Pokemon").
		Where("scenario_id = ?", scenarioID).
		Order("position asc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}

	return &Page{
		Number:   page,
		Size:     size,
		Total:    total,
		NumPages: numPages,
		HasNext:  page < numPages,
		HasPrev:  page > 1,
		Rows:     rows,
	}, nil
}

// GetRanking loads one row with its pokemon and both edge lists.
func (r *Repository) GetRanking(ctx context.Context, scenarioID uint, position int) (*Ranking, error) {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }

	var row Ranking
	err := r.db.WithContext(ctx).
		Preload("Pokemon").
		Preload("Matchups", byID).
		Preload("Matchups.Opponent").
		Preload("Counters", byID).
		Preload("Counters.Opponent").
		Where("scenario_id = ? AND position = ?", scenarioID, position).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ranking", fmt.Sprintf("%d", position))
	}
	if err != nil {
		return nil, fmt.Errorf("get ranking %d: %w", position, err)
	}
	return &row, nil
}

// --- Replace ---

func validateEntry(position int, e *Entry) error {
	if position < 1 {
		return apperr.Validation("position %d, want >= 1", position)
	}
	if e.SpeciesID == "" {
		return apperr.Validation("position %d has no species id", position)
	}
	if e.Score < 0 || e.Score > MaxScore {
		return apperr.Validation("%s score %g outside [0, %d]", e.SpeciesID, e.Score, MaxScore)
	}
	if err := move.CheckMoveset(e.Moveset); err != nil {
		return fmt.Errorf("%s: %w", e.SpeciesID, err)
	}
	for _, edges := range [][]Edge{e.Matchups, e.Counters} {
		for _, edge := range edges {
			if edge.Rating < 0 || edge.Rating > MaxRating {
				return apperr.Validation("%s rating %d against %s outside [0, %d]", e.SpeciesID, edge.Rating, edge.Opponent, MaxRating)
			}
		}
	}
	return nil
}

func resolveEdges(edges []Edge, resolver pokemon.SpeciesResolver) ([]uint, error) {
	ids := make([]uint, len(edges))
	for i, edge := range edges {
		id, err := resolver.ResolveSpecies(edge.Opponent)
		if err != nil {
			return nil, fmt.Errorf("opponent: %w", err)
		}
		ids[i] = id
	}
	return ids, nil
}

// ReplaceRanking upserts the row at (scenario, position) and replaces its
// matchup and counter edges with those of entry.
func (r *Repository) ReplaceRanking(ctx context.Context, scenarioID uint, position int, entry Entry, resolver pokemon.SpeciesResolver) (*Ranking, error) {
	var row *Ranking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = replaceRankingTx(tx, scenarioID, position, &entry, resolver)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// replaceRankingTx must run inside a transaction.
func replaceRankingTx(tx *gorm.DB, scenarioID uint, position int, e *Entry, resolver pokemon.SpeciesResolver) (*Ranking, error) {
	// 1. validate and resolve every reference before writing anything
	if err := validateEntry(position, e); err != nil {
		return nil, err
	}
	pokemonID, err := resolver.ResolveSpecies(e.SpeciesID)
	if err != nil {
		return nil, err
	}
	matchupIDs, err := resolveEdges(e.Matchups, resolver)
	if err != nil {
		return nil, fmt.Errorf("%s matchups: %w", e.SpeciesID, err)
	}
	counterIDs, err := resolveEdges(e.Counters, resolver)
	if err != nil {
		return nil, fmt.Errorf("%s counters: %w", e.SpeciesID, err)
	}
	var other struct{ Position int }
	err = tx.Model(&Ranking{}).Select("position").
		Where("scenario_id = ? AND pokemon_id = ? AND position <> ?", scenarioID, pokemonID, position).
		Limit(1).Find(&other).Error
	if err != nil {
		return nil, fmt.Errorf("check species %s: %w", e.SpeciesID, err)
	}
	if other.Position != 0 {
		return nil, apperr.Validation("species %s already ranked at position %d", e.SpeciesID, other.Position)
	}

	// 2. upsert the row by (scenario, position)
	row := Ranking{
		ScenarioID: scenarioID,
		Position:   position,
		PokemonID:  pokemonID,
		Score:      e.Score,
		Moves:      e.Moves,
		Moveset:    e.Moveset,
		Scores:     e.Scores,
		Stats:      e.Stats,
	}
	err = tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scenario_id"}, {Name: "position"}},
		DoUpdates: clause.AssignmentColumns([]string{"pokemon_id", "score", "moves", "moveset", "scores", "stats"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert ranking %d: %w", position, err)
	}
	var stored struct{ ID uint }
	if err := tx.Model(&Ranking{}).Select("id").Where("scenario_id = ? AND position = ?", scenarioID, position).Take(&stored).Error; err != nil {
		return nil, fmt.Errorf("read ranking %d: %w", position, err)
	}
	row.ID = stored.ID

	// 3. drop prior edges, then insert the new ones
	if err := deleteEdges(tx, []uint{row.ID}); err != nil {
		return nil, err
	}
	if len(matchupIDs) > 0 {
		row.Matchups = make([]Matchup, len(matchupIDs))
		for i, id := range matchupIDs {
			row.Matchups[i] = Matchup{RankingID: row.ID, OpponentID: id, Rating: e.Matchups[i].Rating}
		}
		if err := tx.Omit(clause.Associations).Create(&row.Matchups).Error; err != nil {
			return nil, fmt.Errorf("insert matchups: %w", err)
		}
	}
	if len(counterIDs) > 0 {
		row.Counters = make([]Counter, len(counterIDs))
		for i, id := range counterIDs {
			row.Counters[i] = Counter{RankingID: row.ID, OpponentID: id, Rating: e.Counters[i].Rating}
		}
		if err := tx.Omit(clause.Associations).Create(&row.Counters).Error; err != nil {
			return nil, fmt.Errorf("insert counters: %w", err)
		}
	}
	return &row, nil
}

func deleteEdges(tx *gorm.DB, rankingIDs []uint) error {
	if len(rankingIDs) == 0 {
		return nil
	}
	if err := tx.Where("ranking_id IN ?", rankingIDs).Delete(&Matchup{}).Error; err != nil {
		return fmt.Errorf("delete matchups: %w", err)
	}
	if err := tx.Where("ranking_id IN ?", rankingIDs).Delete(&Counter{}).Error; err != nil {
		return fmt.Errorf("delete counters: %w", err)
	}
	return nil
}

// entryPositions assigns positions to entries and checks that they form
// 1..len(entries) exactly once each, with no species listed twice.
func entryPositions(entries []Entry) ([]int, error) {
	positions := make([]int, len(entries))
	seen := make(map[int]bool, len(entries))
	species := make(map[string]bool, len(entries))
	for i := range entries {
		if species[entries[i].SpeciesID] {
			return nil, apperr.Validation("duplicate species %s", entries[i].SpeciesID)
		}
		species[entries[i].SpeciesID] = true
		p := entries[i].Position
		if p == 0 {
			p = i + 1
		}
		if seen[p] {
			return nil, apperr.Validation("duplicate position %d", p)
		}
		if p < 1 || p > len(entries) {
			return nil, apperr.Validation("position %d breaks the 1..%d sequence", p, len(entries))
		}
		seen[p] = true
		positions[i] = p
	}
	return positions, nil
}

// ReplaceScenario replaces every ranking of a scenario with entries.
// Rows past the new length, or whose position now holds another species,
// are removed along with their edges.
func (r *Repository) ReplaceScenario(ctx context.Context, scenarioID uint, entries []Entry, resolver pokemon.SpeciesResolver) error {
	positions, err := entryPositions(entries)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. remove rows past the new end and rows whose species moves, so
		// the upserts below never collide on (scenario, pokemon)
		want := make(map[int]uint, len(entries))
		for i := range entries {
			id, err := resolver.ResolveSpecies(entries[i].SpeciesID)
			if err != nil {
				return err
			}
			want[positions[i]] = id
		}
		var existing []struct {
			ID        uint
			Position  int
			PokemonID uint
		}
		if err := tx.Model(&Ranking{}).Select("id", "position", "pokemon_id").Where("scenario_id = ?", scenarioID).Find(&existing).Error; err != nil {
			return fmt.Errorf("find stale rankings: %w", err)
		}
		var staleIDs []uint
		for _, row := range existing {
			if id, ok := want[row.Position]; !ok || id != row.PokemonID {
				staleIDs = append(staleIDs, row.ID)
			}
		}
		if err := deleteEdges(tx, staleIDs); err != nil {
			return err
		}
		if len(staleIDs) > 0 {
			if err := tx.Where("id IN ?", staleIDs).Delete(&Ranking{}).Error; err != nil {
				return fmt.Errorf("delete stale rankings: %w", err)
			}
		}

		// 2. upsert each entry at its position
		for i := range entries {
			if _, err := replaceRankingTx(tx, scenarioID, positions[i], &entries[i], resolver); err != nil {
				return err
			}
		}
		return nil
	})
}
