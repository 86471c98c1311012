package move

import (
	"time"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
)

// TurnDuration is the length of one battle turn in milliseconds.
const TurnDuration = 500

// BuffTarget names who receives a charged move's stat-stage changes.
type BuffTarget string

const (
	BuffTargetNone     BuffTarget = ""
	BuffTargetSelf     BuffTarget = "self"
	BuffTargetOpponent BuffTarget = "opponent"
	BuffTargetBoth     BuffTarget = "both"
)

// Move holds the fields shared by fast and charged moves.
// It is embedded, so each move kind gets its own unique move_id index.
type Move struct {
	// MoveID is the stable game-data id, e.g. "COUNTER".
	MoveID       string  `gorm:"uniqueIndex;not null" json:"moveId"`
	Name         string  `json:"name"`
	Abbreviation *string `json:"abbreviation,omitempty"`
	Type         string  `gorm:"index" json:"type"`
	Power        int     `json:"power"`
	// Cooldown is in milliseconds and always a multiple of TurnDuration.
	Cooldown int `json:"cooldown"`
}

// Turns is the move's duration in battle turns.
func (m Move) Turns() int {
	return m.Cooldown / TurnDuration
}

func (m Move) validate() error {
	if m.MoveID == "" {
		return apperr.Validation("move without moveId")
	}
	if m.Power < 0 {
		return apperr.Domain("move %s has negative power %d", m.MoveID, m.Power)
	}
	if m.Cooldown <= 0 || m.Cooldown%TurnDuration != 0 {
		return apperr.Domain("move %s cooldown %d is not a positive multiple of %d", m.MoveID, m.Cooldown, TurnDuration)
	}
	return nil
}

// FastMove is a low-cooldown move that generates energy.
type FastMove struct {
	ID uint `gorm:"primaryKey" json:"-"`
	Move
	EnergyGain int       `gorm:"not null" json:"energyGain"`
	CreatedAt  time.Time `json:"-"`
}

// DPT is damage per turn before any multiplier.
func (m *FastMove) DPT() float64 {
	return float64(m.Power) / float64(m.Turns())
}

// EPT is energy per turn.
func (m *FastMove) EPT() float64 {
	return float64(m.EnergyGain) / float64(m.Turns())
}

// Validate reports whether the record can enter the catalog.
func (m *FastMove) Validate() error {
	if err := m.validate(); err != nil {
		return err
	}
	if m.EnergyGain <= 0 {
		return apperr.Domain("fast move %s has non-positive energy gain %d", m.MoveID, m.EnergyGain)
	}
	return nil
}

// ChargedMove is a high-impact move that spends accumulated energy.
type ChargedMove struct {
	ID uint `gorm:"primaryKey" json:"-"`
	Move
	Energy int `gorm:"not null" json:"energy"`
	// Buffs is the (attack, defense) stat-stage delta, empty when the move has none.
	Buffs           []int      `gorm:"serializer:json" json:"buffs,omitempty"`
	BuffTarget      BuffTarget `json:"buffTarget,omitempty"`
	BuffsSelf       []int      `gorm:"serializer:json" json:"buffsSelf,omitempty"`
	BuffsOpponent   []int      `gorm:"serializer:json" json:"buffsOpponent,omitempty"`
	BuffApplyChance float64    `json:"buffApplyChance"`
	CreatedAt       time.Time  `json:"-"`
}

// DPE is damage per energy before any multiplier.
func (m *ChargedMove) DPE() float64 {
	return float64(m.Power) / float64(m.Energy)
}

// HasBuffs reports whether the move carries stat-stage changes.
func (m *ChargedMove) HasBuffs() bool {
	return len(m.Buffs) > 0
}

// Validate reports whether the record can enter the catalog.
func (m *ChargedMove) Validate() error {
	if err := m.validate(); err != nil {
		return err
	}
	if m.Energy <= 0 {
		return apperr.Domain("charged move %s has non-positive energy %d", m.MoveID, m.Energy)
	}
	if len(m.Buffs) != 0 && len(m.Buffs) != 2 {
		return apperr.Domain("charged move %s has %d buff values, want 2", m.MoveID, len(m.Buffs))
	}
	for _, side := range [][]int{m.BuffsSelf, m.BuffsOpponent} {
		if len(side) != 0 && len(side) != 2 {
			return apperr.Domain("charged move %s has a malformed per-side buff array", m.MoveID)
		}
	}
	switch m.BuffTarget {
	case BuffTargetNone, BuffTargetSelf, BuffTargetOpponent, BuffTargetBoth:
	default:
		return apperr.Domain("charged move %s has unknown buff target %q", m.MoveID, m.BuffTarget)
	}
	if m.BuffApplyChance < 0 || m.BuffApplyChance > 1 {
		return apperr.Domain("charged move %s buff chance %v outside [0,1]", m.MoveID, m.BuffApplyChance)
	}
	return nil
}
