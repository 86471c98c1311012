package startup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/metadata"
	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
	"github.com/SlpAus/pvp-rankings-backend/internal/ranking"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Migrate creates every table, referenced tables first.
func Migrate(db *gorm.DB) error {
	steps := []func(*gorm.DB) error{metadata.Migrate, move.Migrate, pokemon.Migrate, ranking.Migrate}
	for _, step := range steps {
		if err := step(db); err != nil {
			return err
		}
	}
	return nil
}

// Runtime publishes the in-memory dataset the server answers from.
type Runtime struct {
	DB *gorm.DB

	current   atomic.Pointer[pokemon.Dataset]
	rebuildMu sync.Mutex
}

func NewRuntime(db *gorm.DB) *Runtime {
	rt := &Runtime{DB: db}
	rt.current.Store(&pokemon.Dataset{Catalog: move.NewCatalog(), Store: pokemon.NewStore()})
	return rt
}

// Current returns the published dataset. It satisfies pokemon.Source.
func (r *Runtime) Current() *pokemon.Dataset {
	return r.current.Load()
}

// Catalog returns the published move catalog. It satisfies move.CatalogSource.
func (r *Runtime) Catalog() *move.Catalog {
	return r.Current().Catalog
}

// Rebuild loads a fresh catalog and species store from one read transaction
// and publishes both in a single swap. The live dataset is never mutated.
func (r *Runtime) Rebuild(ctx context.Context) error {
	r.rebuildMu.Lock()
	defer r.rebuildMu.Unlock()

	next := &pokemon.Dataset{Catalog: move.NewCatalog(), Store: pokemon.NewStore()}
	var version string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if version, err = metadata.GetDatasetVersion(tx); err != nil {
			return fmt.Errorf("read dataset version: %w", err)
		}
		if err := next.Catalog.Load(ctx, tx); err != nil {
			return err
		}
		return next.Store.Load(ctx, tx)
	})
	if err != nil {
		return err
	}
	r.current.Store(next)
	metadata.SetServedVersion(version)

	fast, charged := next.Catalog.Size()
	log.Info().
		Int("fast_moves", fast).
		Int("charged_moves", charged).
		Int("pokemon", next.Store.Size()).
		Str("version", version).
		Msg("in-memory stores rebuilt")
	return nil
}

// InitializeApplication migrates the schema and primes the stores.
func InitializeApplication(ctx context.Context, db *gorm.DB) (*Runtime, error) {
	log.Info().Msg("initializing application")
	if err := Migrate(db); err != nil {
		return nil, err
	}
	rt := NewRuntime(db)
	if err := rt.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("prime stores: %w", err)
	}
	return rt, nil
}
