package loader

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
	"github.com/goccy/go-json"
)

// Defaults for move fields the game data leaves out.
const (
	defaultMoveType = pokemon.NoType
	defaultCooldown = move.TurnDuration
)

// looseFloat accepts a JSON number or a numeric string such as ".5".
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse %q as number: %w", data, err)
	}
	*f = looseFloat(v)
	return nil
}

// looseInt accepts a JSON number or a boolean, where false reads as 0.
type looseInt int

func (i *looseInt) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null", "false", "true":
		*i = 0
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = looseInt(v)
	return nil
}

// --- Fixture Records ---

type formatRecord struct {
	Title      string `json:"title"`
	Cup        string `json:"cup"`
	CP         int    `json:"cp"`
	Meta       string `json:"meta"`
	ShowFormat bool   `json:"showFormat"`
}

type moveRecord struct {
	MoveID          string     `json:"moveId"`
	Name            string     `json:"name"`
	Abbreviation    *string    `json:"abbreviation"`
	Type            *string    `json:"type"`
	Power           *int       `json:"power"`
	Energy          int        `json:"energy"`
	EnergyGain      int        `json:"energyGain"`
	Cooldown        *int       `json:"cooldown"`
	Buffs           []int      `json:"buffs"`
	BuffTarget      string     `json:"buffTarget"`
	BuffsSelf       []int      `json:"buffsSelf"`
	BuffsOpponent   []int      `json:"buffsOpponent"`
	BuffApplyChance looseFloat `json:"buffApplyChance"`
}

// isFast reports whether the record is a fast move. Fast moves cost no energy.
func (r *moveRecord) isFast() bool {
	return r.Energy == 0
}

func (r *moveRecord) base() move.Move {
	m := move.Move{
		MoveID:       r.MoveID,
		Name:         r.Name,
		Abbreviation: r.Abbreviation,
		Type:         defaultMoveType,
		Cooldown:     defaultCooldown,
	}
	if r.Type != nil {
		m.Type = *r.Type
	}
	if r.Power != nil {
		m.Power = *r.Power
	}
	if r.Cooldown != nil {
		m.Cooldown = *r.Cooldown
	}
	return m
}

func (r *moveRecord) fastMove() move.FastMove {
	return move.FastMove{Move: r.base(), EnergyGain: r.EnergyGain}
}

func (r *moveRecord) chargedMove() move.ChargedMove {
	return move.ChargedMove{
		Move:            r.base(),
		Energy:          r.Energy,
		Buffs:           r.Buffs,
		BuffTarget:      move.BuffTarget(r.BuffTarget),
		BuffsSelf:       r.BuffsSelf,
		BuffsOpponent:   r.BuffsOpponent,
		BuffApplyChance: float64(r.BuffApplyChance),
	}
}

type pokemonRecord struct {
	Dex           int                  `json:"dex"`
	SpeciesName   string               `json:"speciesName"`
	SpeciesID     string               `json:"speciesId"`
	BaseStats     pokemon.BaseStats    `json:"baseStats"`
	Types         []string             `json:"types"`
	FastMoves     []string             `json:"fastMoves"`
	ChargedMoves  []string             `json:"chargedMoves"`
	EliteMoves    []string             `json:"eliteMoves"`
	LegacyMoves   []string             `json:"legacyMoves"`
	Tags          []string             `json:"tags"`
	Level25CP     *int                 `json:"level25CP"`
	DefaultIVs    map[string][]float64 `json:"defaultIVs"`
	BuddyDistance *int                 `json:"buddyDistance"`
	ThirdMoveCost looseInt             `json:"thirdMoveCost"`
	Released      bool                 `json:"released"`
	Family        *pokemon.Family      `json:"family"`
}

func (r *pokemonRecord) row() pokemon.Pokemon {
	p := pokemon.Pokemon{
		Dex:           r.Dex,
		SpeciesName:   r.SpeciesName,
		SpeciesID:     r.SpeciesID,
		BaseStats:     r.BaseStats,
		Type2:         pokemon.NoType,
		EliteMoves:    r.EliteMoves,
		LegacyMoves:   r.LegacyMoves,
		Level25CP:     r.Level25CP,
		DefaultIVs:    r.DefaultIVs,
		BuddyDistance: r.BuddyDistance,
		ThirdMoveCost: int(r.ThirdMoveCost),
		Released:      r.Released,
		Family:        r.Family,
	}
	if len(r.Types) > 0 {
		p.Type1 = r.Types[0]
	}
	if len(r.Types) > 1 && r.Types[1] != "" {
		p.Type2 = r.Types[1]
	}
	return p
}
