package pokemon

import (
	"strings"
	"time"

	"github.com/SlpAus/pvp-rankings-backend/internal/move"
)

// NoType fills the second type slot of single-typed species.
const NoType = "none"

// ShadowTag marks shadow forms, which deal and take extra damage.
const ShadowTag = "shadow"

// Tag is a label shared by any number of species.
type Tag struct {
	ID  uint   `gorm:"primaryKey" json:"-"`
	Tag string `gorm:"uniqueIndex;not null" json:"tag"`
}

// Is compares the label case-insensitively.
func (t Tag) Is(label string) bool {
	return strings.EqualFold(t.Tag, label)
}

type BaseStats struct {
	Atk int `json:"atk"`
	Def int `json:"def"`
	HP  int `json:"hp"`
}

type Family struct {
	ID         string   `json:"id"`
	Parent     string   `json:"parent,omitempty"`
	Evolutions []string `json:"evolutions,omitempty"`
}

// Pokemon is one species entry of the game data. Rows are only ever
// replaced by a full reload.
type Pokemon struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Dex         int       `gorm:"index" json:"dex"`
	SpeciesName string    `json:"speciesName"`
	SpeciesID   string    `gorm:"uniqueIndex;not null" json:"speciesId"`
	BaseStats   BaseStats `gorm:"serializer:json" json:"baseStats"`
	Type1       string    `json:"type1"`
	Type2       string    `json:"type2"`

	FastMoves    []move.FastMove    `gorm:"many2many:pokemon_fast_moves" json:"-"`
	ChargedMoves []move.ChargedMove `gorm:"many2many:pokemon_charged_moves" json:"-"`
	// EliteMoves and LegacyMoves are move ids used only to annotate names.
	EliteMoves  []string `gorm:"serializer:json" json:"eliteMoves,omitempty"`
	LegacyMoves []string `gorm:"serializer:json" json:"legacyMoves,omitempty"`
	Tags        []Tag    `gorm:"many2many:pokemon_tags" json:"-"`

	Level25CP     *int                 `json:"level25CP,omitempty"`
	DefaultIVs    map[string][]float64 `gorm:"serializer:json" json:"defaultIVs,omitempty"`
	BuddyDistance *int                 `json:"buddyDistance,omitempty"`
	ThirdMoveCost int                  `json:"thirdMoveCost"`
	Released      bool                 `json:"released"`
	Family        *Family              `gorm:"serializer:json" json:"family,omitempty"`
	CreatedAt     time.Time            `json:"-"`
}

// Types returns the ordered type pair.
func (p *Pokemon) Types() [2]string {
	second := p.Type2
	if second == "" {
		second = NoType
	}
	return [2]string{p.Type1, second}
}
