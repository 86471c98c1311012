package move

import (
	"context"
	"fmt"
	"sync"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// --- In-memory Catalog ---

// Catalog is the read-mostly view of all moves of one dataset.
// It is replaced wholesale on reload and never mutated in between.
type Catalog struct {
	mu      sync.RWMutex
	fast    map[string]*FastMove
	charged map[string]*ChargedMove

	// memo holds derived values (sequences, labels) for the current dataset
	memo *cache.Cache
}

// CatalogSource returns the catalog a request should read. Call it once per
// request.
type CatalogSource func() *Catalog

// Fixed serves c on every call.
func Fixed(c *Catalog) CatalogSource {
	return func() *Catalog { return c }
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		fast:    make(map[string]*FastMove),
		charged: make(map[string]*ChargedMove),
		memo:    cache.New(cache.NoExpiration, 0),
	}
}

// Replace swaps in a new set of moves and drops every memoized value.
func (c *Catalog) Replace(fast []FastMove, charged []ChargedMove) {
	fastByID := make(map[string]*FastMove, len(fast))
	for i := range fast {
		fastByID[fast[i].MoveID] = &fast[i]
	}
	chargedByID := make(map[string]*ChargedMove, len(charged))
	for i := range charged {
		chargedByID[charged[i].MoveID] = &charged[i]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fast = fastByID
	c.charged = chargedByID
	c.memo.Flush()
}

// Load reads both move tables and replaces the catalog contents.
func (c *Catalog) Load(ctx context.Context, db *gorm.DB) error {
	var fast []FastMove
	if err := db.WithContext(ctx).Order("move_id asc").Find(&fast).Error; err != nil {
		return fmt.Errorf("load fast moves: %w", err)
	}
	var charged []ChargedMove
	if err := db.WithContext(ctx).Order("move_id asc").Find(&charged).Error; err != nil {
		return fmt.Errorf("load charged moves: %w", err)
	}
	c.Replace(fast, charged)
	return nil
}

// Size returns the number of fast and charged moves.
func (c *Catalog) Size() (fast, charged int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fast), len(c.charged)
}

// Fast looks up a fast move by id.
func (c *Catalog) Fast(id string) (*FastMove, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fastUnsafe(id)
}

// Charged looks up a charged move by id.
func (c *Catalog) Charged(id string) (*ChargedMove, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chargedUnsafe(id)
}

// The unsafe lookups must be called with mu held.

func (c *Catalog) fastUnsafe(id string) (*FastMove, error) {
	m, ok := c.fast[id]
	if !ok {
		return nil, apperr.NotFound("fast move", id)
	}
	return m, nil
}

func (c *Catalog) chargedUnsafe(id string) (*ChargedMove, error) {
	m, ok := c.charged[id]
	if !ok {
		return nil, apperr.NotFound("charged move", id)
	}
	return m, nil
}

// --- Memoized Derived Values ---

// Memo reads and writes happen under the read lock so that Replace cannot
// flush between computing a value and storing it.

// Sequence returns the move-count sequence for a move pair by id.
func (c *Catalog) Sequence(fastID, chargedID string) (Sequence, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := "seq:" + fastID + ":" + chargedID
	if v, ok := c.memo.Get(key); ok {
		return v.(Sequence), nil
	}

	fast, err := c.fastUnsafe(fastID)
	if err != nil {
		return Sequence{}, err
	}
	charged, err := c.chargedUnsafe(chargedID)
	if err != nil {
		return Sequence{}, err
	}
	seq, err := MoveCountSequence(fast, charged)
	if err != nil {
		return Sequence{}, err
	}
	c.memo.SetDefault(key, seq)
	return seq, nil
}

// CountLabel returns the display count for a move pair by id.
func (c *Catalog) CountLabel(fastID, chargedID string) (string, error) {
	seq, err := c.Sequence(fastID, chargedID)
	if err != nil {
		return "", err
	}
	return seq.Label(), nil
}

// FastArchetype returns the archetype of a fast move by id.
func (c *Catalog) FastArchetype(id string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := "fast:" + id
	if v, ok := c.memo.Get(key); ok {
		return v.(string), nil
	}
	m, err := c.fastUnsafe(id)
	if err != nil {
		return "", err
	}
	label := FastArchetype(m)
	c.memo.SetDefault(key, label)
	return label, nil
}

// ChargedArchetype returns the base archetype of a charged move by id.
func (c *Catalog) ChargedArchetype(id string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := "charged:" + id
	if v, ok := c.memo.Get(key); ok {
		return v.(string), nil
	}
	m, err := c.chargedUnsafe(id)
	if err != nil {
		return "", err
	}
	label := ChargedArchetype(m)
	c.memo.SetDefault(key, label)
	return label, nil
}
