package pokemon

import (
	"context"
	"fmt"
	"sync"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"gorm.io/gorm"
)

// SpeciesResolver maps a species id to its stored row id.
type SpeciesResolver interface {
	ResolveSpecies(speciesID string) (uint, error)
}

// --- Published Dataset ---

// Dataset is one generation of the in-memory stores. A reload builds a new
// Dataset and publishes it whole, so a request that holds one never sees
// moves and profiles from different loads.
type Dataset struct {
	Catalog *move.Catalog
	Store   *Store
}

// Source returns the dataset a request should read. Call it once per request.
type Source func() *Dataset

// Fixed serves the same catalog and store on every call.
func Fixed(catalog *move.Catalog, store *Store) Source {
	ds := &Dataset{Catalog: catalog, Store: store}
	return func() *Dataset { return ds }
}

// --- In-memory Store ---

// Store holds the profiles of one dataset, swapped wholesale on reload.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

func NewStore() *Store {
	return &Store{profiles: make(map[string]*Profile)}
}

// Replace swaps in profiles built from fully preloaded rows.
func (s *Store) Replace(rows []Pokemon) {
	profiles := make(map[string]*Profile, len(rows))
	for i := range rows {
		profiles[rows[i].SpeciesID] = NewProfile(&rows[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = profiles
}

// Load reads every species with its moves and tags and replaces the store.
func (s *Store) Load(ctx context.Context, db *gorm.DB) error {
	rows, err := LoadAll(ctx, db)
	if err != nil {
		return err
	}
	s.Replace(rows)
	return nil
}

func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Get returns the profile for a species id.
func (s *Store) Get(speciesID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[speciesID]
	if !ok {
		return nil, apperr.NotFound("pokemon", speciesID)
	}
	return p, nil
}

func (s *Store) ResolveSpecies(speciesID string) (uint, error) {
	p, err := s.Get(speciesID)
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

// --- Database Access ---

// LoadAll reads every species ordered by dex with its associations.
func LoadAll(ctx context.Context, db *gorm.DB) ([]Pokemon, error) {
	var rows []Pokemon
	err := db.WithContext(ctx).
		Preload("FastMoves").
		Preload("ChargedMoves").
		Preload("Tags").
		Order("dex asc, species_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load pokemon: %w", err)
	}
	return rows, nil
}

// Index resolves species ids against one database handle. Loaders build it
// inside their transaction, before the in-memory store has been swapped.
type Index map[string]uint

// NewIndex reads the species id to row id mapping.
func NewIndex(ctx context.Context, db *gorm.DB) (Index, error) {
	var rows []struct {
		ID        uint
		SpeciesID string
	}
	if err := db.WithContext(ctx).Model(&Pokemon{}).Select("id", "species_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("index pokemon: %w", err)
	}
	idx := make(Index, len(rows))
	for _, r := range rows {
		idx[r.SpeciesID] = r.ID
	}
	return idx, nil
}

func (idx Index) ResolveSpecies(speciesID string) (uint, error) {
	id, ok := idx[speciesID]
	if !ok {
		return 0, apperr.NotFound("pokemon", speciesID)
	}
	return id, nil
}
