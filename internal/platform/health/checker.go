package health

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/SlpAus/pvp-rankings-backend/internal/platform/metadata"
	"github.com/SlpAus/pvp-rankings-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	DefaultInterval = 5 * time.Second
	pingTimeout     = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// RedisRunID extracts run_id from INFO server.
func RedisRunID(ctx context.Context, rdb *redis.Client) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	info, err := rdb.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	matches := runIDPattern.FindStringSubmatch(info)
	if len(matches) < 2 {
		return "", fmt.Errorf("run_id not found in redis INFO")
	}
	return matches[1], nil
}

// Checker probes Redis and watches the stored dataset version. When another
// process commits a reload, the version moves and rebuild is called.
type Checker struct {
	db       *gorm.DB
	rdb      *redis.Client
	rebuild  func(ctx context.Context) error
	interval time.Duration
	status   *statusManager
}

// NewChecker builds a checker. rdb may be nil when the cache is disabled.
func NewChecker(db *gorm.DB, rdb *redis.Client, rebuild func(ctx context.Context) error, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Checker{db: db, rdb: rdb, rebuild: rebuild, interval: interval, status: globalStatus}
}

// PerformCheck runs one round of both probes.
func (c *Checker) PerformCheck(ctx context.Context) {
	if c.rdb != nil {
		runID, err := RedisRunID(ctx, c.rdb)
		c.status.Assess(err == nil, runID)
	}

	stored, err := metadata.GetDatasetVersion(c.db.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Msg("health: cannot read dataset version")
		return
	}
	if stored == metadata.ServedVersion() {
		return
	}

	log.Info().Str("served", metadata.ServedVersion()).Str("stored", stored).Msg("health: dataset changed, rebuilding in-memory stores")
	if err := c.rebuild(ctx); err != nil {
		log.Error().Err(err).Msg("health: rebuild failed, will retry")
	}
}

// Run loops until the handle is cancelled.
func (c *Checker) Run(h *lifecycle.Handle) {
	defer h.Close()
	log.Info().Dur("interval", c.interval).Msg("health checker started")

	for {
		if err := h.Sleep(c.interval); err != nil {
			log.Info().Msg("health checker stopped")
			return
		}
		c.PerformCheck(h.Ctx())
	}
}
