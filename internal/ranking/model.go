package ranking

import (
	"time"

	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
)

// Categories are the scenario slices the site navigates between.
var Categories = []string{"overall", "leads", "closers", "switches", "chargers", "attackers", "consistency"}

// DefaultPageSize is the listing page size when none is configured.
const DefaultPageSize = 24

// Score and rating bounds of the simulation output.
const (
	MaxScore  = 100
	MaxRating = 1000
)

// Format is a competitive ruleset, unique per (cup, cp).
type Format struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `json:"title"`
	Cup   string `gorm:"uniqueIndex:idx_format_cup_cp;not null" json:"cup"`
	CP    int    `gorm:"uniqueIndex:idx_format_cup_cp;not null" json:"cp"`
	Meta  string `json:"meta"`
	Show  bool   `gorm:"index" json:"show"`
}

// Scenario is one category slice of a format.
type Scenario struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FormatID  uint      `gorm:"uniqueIndex:idx_scenario_format_category;not null" json:"formatId"`
	Format    Format    `json:"format"`
	Category  string    `gorm:"uniqueIndex:idx_scenario_format_category;not null" json:"category"`
	CreatedAt time.Time `json:"-"`
}

// MoveUsage is one move's share in the simulated battles.
type MoveUsage struct {
	MoveID string `json:"moveId"`
	Uses   int    `json:"uses"`
}

// MoveBreakdown is the raw per-move score breakdown of a ranking row.
type MoveBreakdown struct {
	FastMoves    []MoveUsage `json:"fastMoves"`
	ChargedMoves []MoveUsage `json:"chargedMoves"`
}

// Ranking is one species' row within a scenario. A species appears at most
// once per scenario.
type Ranking struct {
	ID         uint               `gorm:"primaryKey" json:"-"`
	ScenarioID uint               `gorm:"uniqueIndex:idx_ranking_scenario_position;uniqueIndex:idx_ranking_scenario_pokemon;not null" json:"-"`
	Position   int                `gorm:"uniqueIndex:idx_ranking_scenario_position;not null" json:"position"`
	PokemonID  uint               `gorm:"uniqueIndex:idx_ranking_scenario_pokemon;not null" json:"-"`
	Pokemon    pokemon.Pokemon    `json:"-"`
	Score      float64            `json:"score"`
	Moves      *MoveBreakdown     `gorm:"serializer:json" json:"moves,omitempty"`
	Moveset    []string           `gorm:"serializer:json" json:"moveset"`
	Scores     []float64          `gorm:"serializer:json" json:"scores"`
	Stats      map[string]float64 `gorm:"serializer:json" json:"stats,omitempty"`
	Matchups   []Matchup          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Counters   []Counter          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Matchup is a favorable opponent edge of a ranking.
type Matchup struct {
	ID         uint            `gorm:"primaryKey"`
	RankingID  uint            `gorm:"index;not null"`
	OpponentID uint            `gorm:"not null"`
	Opponent   pokemon.Pokemon `gorm:"foreignKey:OpponentID"`
	Rating     int
}

// Counter is an unfavorable opponent edge of a ranking.
type Counter struct {
	ID         uint            `gorm:"primaryKey"`
	RankingID  uint            `gorm:"index;not null"`
	OpponentID uint            `gorm:"not null"`
	Opponent   pokemon.Pokemon `gorm:"foreignKey:OpponentID"`
	Rating     int
}

// --- Ingest Types ---

// Edge is an opponent reference as it appears in ranking fixtures.
type Edge struct {
	Opponent string `json:"opponent"`
	Rating   int    `json:"rating"`
}

// Entry is one ranking record of a fixture file. Position is optional;
// when zero the entry's index in the file decides it.
type Entry struct {
	SpeciesID   string             `json:"speciesId"`
	SpeciesName string             `json:"speciesName"`
	Position    int                `json:"position,omitempty"`
	Score       float64            `json:"score"`
	Moves       *MoveBreakdown     `json:"moves"`
	Moveset     []string           `json:"moveset"`
	Scores      []float64          `json:"scores"`
	Stats       map[string]float64 `json:"stats"`
	Matchups    []Edge             `json:"matchups"`
	Counters    []Edge             `json:"counters"`
}
