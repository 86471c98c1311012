package pokemon

import (
	"sort"
	"strings"
)

// idSet is a membership set of move ids or lower-cased tag labels.
type idSet map[string]struct{}

func newIDSet(ids []string) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// Profile is the read-only view of one species used at display time.
// Tag, elite and legacy membership are explicit set lookups.
type Profile struct {
	ID           uint      `json:"-"`
	Dex          int       `json:"dex"`
	SpeciesID    string    `json:"speciesId"`
	SpeciesName  string    `json:"speciesName"`
	Types        [2]string `json:"types"`
	BaseStats    BaseStats `json:"baseStats"`
	FastMoves    []string  `json:"fastMoves"`
	ChargedMoves []string  `json:"chargedMoves"`
	Released     bool      `json:"released"`
	TagLabels    []string  `json:"tags"`

	tags   idSet
	elite  idSet
	legacy idSet
}

// NewProfile builds a profile from a row with its moves and tags preloaded.
func NewProfile(p *Pokemon) *Profile {
	prof := &Profile{
		ID:           p.ID,
		Dex:          p.Dex,
		SpeciesID:    p.SpeciesID,
		SpeciesName:  p.SpeciesName,
		Types:        p.Types(),
		BaseStats:    p.BaseStats,
		FastMoves:    make([]string, 0, len(p.FastMoves)),
		ChargedMoves: make([]string, 0, len(p.ChargedMoves)),
		Released:     p.Released,
		TagLabels:    make([]string, 0, len(p.Tags)),
		elite:        newIDSet(p.EliteMoves),
		legacy:       newIDSet(p.LegacyMoves),
	}
	for _, m := range p.FastMoves {
		prof.FastMoves = append(prof.FastMoves, m.MoveID)
	}
	for _, m := range p.ChargedMoves {
		prof.ChargedMoves = append(prof.ChargedMoves, m.MoveID)
	}
	sort.Strings(prof.FastMoves)
	sort.Strings(prof.ChargedMoves)

	lowered := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		prof.TagLabels = append(prof.TagLabels, t.Tag)
		lowered = append(lowered, strings.ToLower(t.Tag))
	}
	sort.Strings(prof.TagLabels)
	prof.tags = newIDSet(lowered)
	return prof
}

// HasTag reports whether the species carries a label, ignoring case.
func (p *Profile) HasTag(label string) bool {
	return p.tags.has(strings.ToLower(label))
}

func (p *Profile) IsShadow() bool {
	return p.HasTag(ShadowTag)
}

// IsElite reports whether moveID is an elite move for this species.
func (p *Profile) IsElite(moveID string) bool {
	return p.elite.has(moveID)
}

// IsLegacy reports whether moveID is a legacy move for this species.
func (p *Profile) IsLegacy(moveID string) bool {
	return p.legacy.has(moveID)
}

// HasType reports whether either type slot matches. The empty second slot
// never matches.
func (p *Profile) HasType(t string) bool {
	if t == "" || t == NoType {
		return false
	}
	return p.Types[0] == t || p.Types[1] == t
}
