package pokemon

import (
	"github.com/SlpAus/pvp-rankings-backend/internal/move"
)

const (
	// STABMultiplier applies when a move shares a type with its user.
	STABMultiplier = 1.2
	// ShadowMultiplier applies to moves used by shadow forms.
	ShadowMultiplier = 1.2

	EliteMarker  = "*"
	LegacyMarker = "†"

	Coverage = "Coverage"
	Neutral  = "Neutral"
)

// STAB returns the same-type multiplier for a move type used by p.
func STAB(p *Profile, moveType string) float64 {
	if p.HasType(moveType) {
		return STABMultiplier
	}
	return 1
}

// Shadow returns the shadow multiplier for p.
func Shadow(p *Profile) float64 {
	if p.IsShadow() {
		return ShadowMultiplier
	}
	return 1
}

// DisplayName appends the elite marker and then the legacy marker.
func DisplayName(p *Profile, moveID, name string) string {
	if p.IsElite(moveID) {
		name += EliteMarker
	}
	if p.IsLegacy(moveID) {
		name += LegacyMarker
	}
	return name
}

// CoverageLabel composes a charged move's base archetype with the
// Coverage/Neutral descriptor used when the move gets no STAB.
func CoverageLabel(base, moveType string) string {
	descriptor := Coverage
	if moveType == "normal" {
		descriptor = Neutral
	}

	switch base {
	case move.HighEnergy:
		if descriptor == Coverage {
			return move.HighEnergy + " " + Coverage
		}
		return base
	case move.General:
		return descriptor
	default:
		return descriptor + " " + base
	}
}

// --- Display Bundles ---

type FastMoveInfo struct {
	MoveID     string  `json:"moveId"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Damage     float64 `json:"damage"`
	DPT        float64 `json:"dpt"`
	EPT        float64 `json:"ept"`
	Turns      int     `json:"turns"`
	Archetype  string  `json:"archetype"`
	StyleClass string  `json:"styleClass"`
}

type ChargedMoveInfo struct {
	MoveID     string  `json:"moveId"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Damage     float64 `json:"damage"`
	Cost       int     `json:"cost"`
	DPE        float64 `json:"dpe"`
	Archetype  string  `json:"archetype"`
	StyleClass string  `json:"styleClass"`
}

// Archetypes supplies base move archetypes by id. *move.Catalog memoizes
// them until the next reload.
type Archetypes interface {
	FastArchetype(id string) (string, error)
	ChargedArchetype(id string) (string, error)
}

func fastDamage(p *Profile, m *move.FastMove) float64 {
	return STAB(p, m.Type) * Shadow(p) * float64(m.Power)
}

func chargedDamage(p *Profile, m *move.ChargedMove) float64 {
	return STAB(p, m.Type) * Shadow(p) * float64(m.Power)
}

// FastInfo renders a fast move as used by p. Energy is never multiplied.
func FastInfo(a Archetypes, p *Profile, m *move.FastMove) (FastMoveInfo, error) {
	archetype, err := a.FastArchetype(m.MoveID)
	if err != nil {
		return FastMoveInfo{}, err
	}
	mul := STAB(p, m.Type) * Shadow(p)
	return FastMoveInfo{
		MoveID:     m.MoveID,
		Name:       DisplayName(p, m.MoveID, m.Name),
		Type:       m.Type,
		Damage:     fastDamage(p, m),
		DPT:        mul * m.DPT(),
		EPT:        m.EPT(),
		Turns:      m.Turns(),
		Archetype:  archetype,
		StyleClass: move.FastStyleClass(archetype),
	}, nil
}

// ChargedInfo renders a charged move as used by p.
func ChargedInfo(a Archetypes, p *Profile, m *move.ChargedMove) (ChargedMoveInfo, error) {
	archetype, err := a.ChargedArchetype(m.MoveID)
	if err != nil {
		return ChargedMoveInfo{}, err
	}
	if STAB(p, m.Type) == 1 {
		archetype = CoverageLabel(archetype, m.Type)
	}

	damage := chargedDamage(p, m)
	return ChargedMoveInfo{
		MoveID:     m.MoveID,
		Name:       DisplayName(p, m.MoveID, m.Name),
		Type:       m.Type,
		Damage:     damage,
		Cost:       m.Energy,
		DPE:        damage / float64(m.Energy),
		Archetype:  archetype,
		StyleClass: move.ChargedStyleClass(archetype),
	}, nil
}

// CycleInfo computes the cycle statistics of a move pair as used by p.
func CycleInfo(p *Profile, fast *move.FastMove, charged *move.ChargedMove) (move.Cycle, error) {
	return move.NewCycle(fast, charged, fastDamage(p, fast), chargedDamage(p, charged))
}

// MovesetBreakdown is every display bundle for one moveset of one species.
type MovesetBreakdown struct {
	Fast    FastMoveInfo      `json:"fast"`
	Charged []ChargedMoveInfo `json:"charged"`
	Cycles  []move.Cycle      `json:"cycles"`
}

// Breakdown resolves a moveset against the catalog and renders it for p.
func Breakdown(catalog *move.Catalog, p *Profile, moveset []string) (MovesetBreakdown, error) {
	if err := move.CheckMoveset(moveset); err != nil {
		return MovesetBreakdown{}, err
	}
	fast, err := catalog.Fast(moveset[0])
	if err != nil {
		return MovesetBreakdown{}, err
	}

	fastInfo, err := FastInfo(catalog, p, fast)
	if err != nil {
		return MovesetBreakdown{}, err
	}

	out := MovesetBreakdown{
		Fast:    fastInfo,
		Charged: make([]ChargedMoveInfo, 0, len(moveset)-1),
		Cycles:  make([]move.Cycle, 0, len(moveset)-1),
	}
	for _, id := range moveset[1:] {
		charged, err := catalog.Charged(id)
		if err != nil {
			return MovesetBreakdown{}, err
		}
		cycle, err := CycleInfo(p, fast, charged)
		if err != nil {
			return MovesetBreakdown{}, err
		}
		info, err := ChargedInfo(catalog, p, charged)
		if err != nil {
			return MovesetBreakdown{}, err
		}
		out.Charged = append(out.Charged, info)
		out.Cycles = append(out.Cycles, cycle)
	}
	return out, nil
}
