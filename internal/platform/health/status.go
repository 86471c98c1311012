package health

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// State is the health of the Redis response cache.
type State int

const (
	StateHealthy State = iota
	StateDegraded
)

func (s State) String() string {
	if s == StateHealthy {
		return "healthy"
	}
	return "degraded"
}

// statusManager tracks Redis reachability and restarts.
type statusManager struct {
	mu             sync.RWMutex
	currentState   State
	lastKnownRunID string
}

var globalStatus = &statusManager{
	currentState: StateHealthy,
}

// GetState returns the current cache health.
func GetState() State {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.currentState
}

// IsRedisHealthy reports whether the response cache may be used.
func IsRedisHealthy() bool {
	return GetState() == StateHealthy
}

// SetInitialRunID records the run_id seen at startup.
func SetInitialRunID(runID string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.lastKnownRunID = runID
}

// Assess folds one probe result into the state. restarted is true when Redis
// answered with a different run_id than last time, meaning the cache is cold.
func (sm *statusManager) Assess(connected bool, runID string) (restarted bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	switch sm.currentState {
	case StateHealthy:
		if !connected {
			sm.currentState = StateDegraded
			log.Warn().Msg("health: redis unreachable, state -> degraded")
		}
	case StateDegraded:
		if connected {
			sm.currentState = StateHealthy
			log.Info().Msg("health: redis reachable again, state -> healthy")
		}
	}

	if connected {
		if sm.lastKnownRunID != "" && sm.lastKnownRunID != runID {
			restarted = true
			log.Info().Str("from", sm.lastKnownRunID).Str("to", runID).Msg("health: redis restarted, response cache is cold")
		}
		sm.lastKnownRunID = runID
	}
	return restarted
}
