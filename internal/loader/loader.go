package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/metadata"
	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
	"github.com/SlpAus/pvp-rankings-backend/internal/ranking"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fixture file names under the fixtures directory.
const (
	FormatsFile  = "formats.json"
	MovesFile    = "moves.json"
	PokemonFile  = "pokemon.json"
	RankingsDir  = "rankings"
	insertBatch  = 200
	parseWorkers = 4
)

// DefaultFormats exist in every dataset, ahead of formats.json.
var DefaultFormats = []ranking.Format{
	{Title: "Great League", Cup: "all", CP: 1500, Meta: "great", Show: true},
	{Title: "Ultra League", Cup: "all", CP: 2500, Meta: "ultra", Show: true},
	{Title: "Master League", Cup: "all", CP: 10000, Meta: "master", Show: true},
}

// Loader ingests the JSON fixtures. Each load is one transaction: it either
// commits whole with a new dataset version or leaves the store untouched.
type Loader struct {
	db            *gorm.DB
	dir           string
	rankingsDebug bool
}

// New returns a loader reading fixtures under dir. With rankingsDebug only
// cup "all" rankings are loaded, otherwise every visible format's.
func New(db *gorm.DB, dir string, rankingsDebug bool) *Loader {
	return &Loader{db: db, dir: dir, rankingsDebug: rankingsDebug}
}

// DataStats counts what LoadData committed.
type DataStats struct {
	Formats      int
	FastMoves    int
	ChargedMoves int
	Pokemon      int
	Tags         int
	Version      string
}

// RankingStats counts what LoadRankings committed.
type RankingStats struct {
	Scenarios int
	Rankings  int
	Version   string
}

func readJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// --- Clear ---

// clearTx empties every data table, children first. Metadata is kept.
func clearTx(tx *gorm.DB) error {
	for _, model := range []any{&ranking.Counter{}, &ranking.Matchup{}, &ranking.Ranking{}, &ranking.Scenario{}, &ranking.Format{}} {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	for _, table := range pokemon.JoinTables {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for _, model := range []any{&pokemon.Pokemon{}, &pokemon.Tag{}, &move.ChargedMove{}, &move.FastMove{}} {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// ClearData deletes all game data and rankings.
func (l *Loader) ClearData(ctx context.Context) (string, error) {
	var version string
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearTx(tx); err != nil {
			return err
		}
		var err error
		version, err = metadata.BumpDatasetVersion(tx)
		return err
	})
	if err != nil {
		return "", err
	}
	log.Info().Str("version", version).Msg("all data cleared")
	return version, nil
}

// --- Moves, Pokemon & Formats ---

type dataFixtures struct {
	formats []formatRecord
	moves   []moveRecord
	pokemon []pokemonRecord
}

// parseData reads the three fixture files concurrently. formats.json is optional.
func (l *Loader) parseData() (*dataFixtures, error) {
	var fx dataFixtures
	var g errgroup.Group

	g.Go(func() error {
		var err error
		fx.formats, err = readJSON[formatRecord](filepath.Join(l.dir, FormatsFile))
		if errors.Is(err, fs.ErrNotExist) {
			fx.formats = nil
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		fx.moves, err = readJSON[moveRecord](filepath.Join(l.dir, MovesFile))
		return err
	})
	g.Go(func() error {
		var err error
		fx.pokemon, err = readJSON[pokemonRecord](filepath.Join(l.dir, PokemonFile))
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// splitMoves turns move records into validated fast and charged moves.
func splitMoves(records []moveRecord) ([]move.FastMove, []move.ChargedMove, error) {
	var fast []move.FastMove
	var charged []move.ChargedMove
	seenFast := make(map[string]bool)
	seenCharged := make(map[string]bool)

	for i := range records {
		r := &records[i]
		if r.isFast() {
			m := r.fastMove()
			if err := m.Validate(); err != nil {
				return nil, nil, err
			}
			if seenFast[m.MoveID] {
				return nil, nil, apperr.Validation("duplicate fast move %s", m.MoveID)
			}
			seenFast[m.MoveID] = true
			fast = append(fast, m)
			continue
		}
		m := r.chargedMove()
		if err := m.Validate(); err != nil {
			return nil, nil, err
		}
		if seenCharged[m.MoveID] {
			return nil, nil, apperr.Validation("duplicate charged move %s", m.MoveID)
		}
		seenCharged[m.MoveID] = true
		charged = append(charged, m)
	}
	return fast, charged, nil
}

// mergeFormats puts the defaults first and drops any later (cup, cp) repeat.
func mergeFormats(records []formatRecord) []ranking.Format {
	formats := make([]ranking.Format, 0, len(DefaultFormats)+len(records))
	seen := make(map[string]bool)
	add := func(f ranking.Format) {
		key := f.Cup + "/" + strconv.Itoa(f.CP)
		if seen[key] {
			log.Debug().Str("format", key).Msg("skipping duplicate format")
			return
		}
		seen[key] = true
		formats = append(formats, f)
	}

	for _, f := range DefaultFormats {
		add(f)
	}
	for _, r := range records {
		add(ranking.Format{Title: r.Title, Cup: r.Cup, CP: r.CP, Meta: r.Meta, Show: r.ShowFormat})
	}
	return formats
}

// buildPokemon resolves each record's move and tag references. Moves are
// attached only to released species.
func buildPokemon(records []pokemonRecord, fast map[string]move.FastMove, charged map[string]move.ChargedMove, tags map[string]pokemon.Tag) ([]pokemon.Pokemon, error) {
	rows := make([]pokemon.Pokemon, 0, len(records))
	seen := make(map[string]bool, len(records))

	for i := range records {
		r := &records[i]
		if r.SpeciesID == "" {
			return nil, apperr.Validation("pokemon record %d has no speciesId", i)
		}
		if seen[r.SpeciesID] {
			return nil, apperr.Validation("duplicate pokemon %s", r.SpeciesID)
		}
		seen[r.SpeciesID] = true

		p := r.row()
		if r.Released {
			for _, id := range r.FastMoves {
				m, ok := fast[id]
				if !ok {
					return nil, fmt.Errorf("pokemon %s: %w", r.SpeciesID, apperr.NotFound("fast move", id))
				}
				p.FastMoves = append(p.FastMoves, m)
			}
			for _, id := range r.ChargedMoves {
				m, ok := charged[id]
				if !ok {
					return nil, fmt.Errorf("pokemon %s: %w", r.SpeciesID, apperr.NotFound("charged move", id))
				}
				p.ChargedMoves = append(p.ChargedMoves, m)
			}
		}
		attached := make(map[string]bool, len(r.Tags))
		for _, label := range r.Tags {
			key := tagKey(label)
			if attached[key] {
				continue
			}
			attached[key] = true
			p.Tags = append(p.Tags, tags[key])
		}
		rows = append(rows, p)
	}
	return rows, nil
}

// LoadData replaces all formats, moves and pokemon from the fixtures.
// Rankings reference pokemon, so they are cleared as well.
func (l *Loader) LoadData(ctx context.Context) (*DataStats, error) {
	start := time.Now()

	// 1. parse and validate outside the transaction
	fx, err := l.parseData()
	if err != nil {
		return nil, err
	}
	fast, charged, err := splitMoves(fx.moves)
	if err != nil {
		return nil, err
	}
	formats := mergeFormats(fx.formats)

	stats := &DataStats{Formats: len(formats), FastMoves: len(fast), ChargedMoves: len(charged), Pokemon: len(fx.pokemon)}

	// 2. clear and insert in one transaction
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearTx(tx); err != nil {
			return err
		}
		if err := tx.CreateInBatches(formats, insertBatch).Error; err != nil {
			return fmt.Errorf("insert formats: %w", err)
		}
		if len(fast) > 0 {
			if err := tx.CreateInBatches(fast, insertBatch).Error; err != nil {
				return fmt.Errorf("insert fast moves: %w", err)
			}
		}
		if len(charged) > 0 {
			if err := tx.CreateInBatches(charged, insertBatch).Error; err != nil {
				return fmt.Errorf("insert charged moves: %w", err)
			}
		}

		tags, err := createTags(tx, fx.pokemon)
		if err != nil {
			return err
		}
		stats.Tags = len(tags)

		fastByID := make(map[string]move.FastMove, len(fast))
		for _, m := range fast {
			fastByID[m.MoveID] = m
		}
		chargedByID := make(map[string]move.ChargedMove, len(charged))
		for _, m := range charged {
			chargedByID[m.MoveID] = m
		}
		rows, err := buildPokemon(fx.pokemon, fastByID, chargedByID, tags)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			// associations already exist, only join rows are written for them
			if err := tx.Omit("FastMoves.*", "ChargedMoves.*", "Tags.*").CreateInBatches(rows, insertBatch).Error; err != nil {
				return fmt.Errorf("insert pokemon: %w", err)
			}
		}

		// 3. stamp the new dataset
		if stats.Version, err = metadata.BumpDatasetVersion(tx); err != nil {
			return err
		}
		return metadata.SetLoadTime(tx, metadata.LastDataLoadKey, time.Now())
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("formats", stats.Formats).
		Int("fast_moves", stats.FastMoves).
		Int("charged_moves", stats.ChargedMoves).
		Int("pokemon", stats.Pokemon).
		Int("tags", stats.Tags).
		Str("version", stats.Version).
		Dur("took", time.Since(start)).
		Msg("game data loaded")
	return stats, nil
}

// tagKey folds case; tag labels compare case-insensitively.
func tagKey(label string) string {
	return strings.ToLower(label)
}

// createTags inserts one row per distinct label and returns them by tagKey.
// The first spelling seen is the one stored.
func createTags(tx *gorm.DB, records []pokemonRecord) (map[string]pokemon.Tag, error) {
	var labels []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, label := range r.Tags {
			if key := tagKey(label); !seen[key] {
				seen[key] = true
				labels = append(labels, label)
			}
		}
	}
	sort.Strings(labels)

	tags := make(map[string]pokemon.Tag, len(labels))
	if len(labels) == 0 {
		return tags, nil
	}
	rows := make([]pokemon.Tag, len(labels))
	for i, label := range labels {
		rows[i] = pokemon.Tag{Tag: label}
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, insertBatch).Error; err != nil {
		return nil, fmt.Errorf("insert tags: %w", err)
	}
	var stored []pokemon.Tag
	if err := tx.Where("tag IN ?", labels).Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	for _, t := range stored {
		tags[tagKey(t.Tag)] = t
	}
	return tags, nil
}

// --- Rankings ---

type rankingFile struct {
	format   ranking.Format
	category string
	path     string
	entries  []ranking.Entry
}

// discover lists rankings/<cup>/<category>/rankings-<cp>.json for a format.
func (l *Loader) discover(f ranking.Format) ([]rankingFile, error) {
	pattern := filepath.Join(l.dir, RankingsDir, f.Cup, "*", fmt.Sprintf("rankings-%d.json", f.CP))
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	files := make([]rankingFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, rankingFile{format: f, category: filepath.Base(filepath.Dir(p)), path: p})
	}
	return files, nil
}

func (l *Loader) rankingFormats(ctx context.Context) ([]ranking.Format, error) {
	q := l.db.WithContext(ctx).Order("cup asc, cp asc")
	if l.rankingsDebug {
		q = q.Where("cup = ?", "all")
	} else {
		q = q.Where("show = ?", true)
	}
	var formats []ranking.Format
	if err := q.Find(&formats).Error; err != nil {
		return nil, fmt.Errorf("list formats: %w", err)
	}
	return formats, nil
}

// LoadRankings replaces the rankings of every scenario that has a fixture
// file. Pokemon must already be loaded.
func (l *Loader) LoadRankings(ctx context.Context) (*RankingStats, error) {
	start := time.Now()

	// 1. find the files of every selected format
	formats, err := l.rankingFormats(ctx)
	if err != nil {
		return nil, err
	}
	var files []rankingFile
	for _, f := range formats {
		found, err := l.discover(f)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	// 2. parse them concurrently
	var g errgroup.Group
	g.SetLimit(parseWorkers)
	for i := range files {
		file := &files[i]
		g.Go(func() error {
			entries, err := readJSON[ranking.Entry](file.path)
			if err != nil {
				return err
			}
			file.entries = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 3. write every scenario in one transaction
	stats := &RankingStats{}
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		idx, err := pokemon.NewIndex(ctx, tx)
		if err != nil {
			return err
		}
		repo := ranking.NewRepository(tx)
		for i := range files {
			file := &files[i]
			scenario, err := repo.GetScenario(ctx, &file.format, file.category)
			if err != nil {
				return err
			}
			if err := repo.ReplaceScenario(ctx, scenario.ID, file.entries, idx); err != nil {
				return fmt.Errorf("%s/%d/%s: %w", file.format.Cup, file.format.CP, file.category, err)
			}
			log.Debug().Str("cup", file.format.Cup).Int("cp", file.format.CP).Str("category", file.category).Int("rankings", len(file.entries)).Msg("scenario loaded")
			stats.Scenarios++
			stats.Rankings += len(file.entries)
		}

		if stats.Version, err = metadata.BumpDatasetVersion(tx); err != nil {
			return err
		}
		return metadata.SetLoadTime(tx, metadata.LastRankingsLoadKey, time.Now())
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("scenarios", stats.Scenarios).
		Int("rankings", stats.Rankings).
		Str("version", stats.Version).
		Dur("took", time.Since(start)).
		Msg("rankings loaded")
	return stats, nil
}
