package health

import (
	"context"
	"errors"
	"testing"

	"github.com/SlpAus/pvp-rankings-backend/internal/platform/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAssessTransitions(t *testing.T) {
	sm := &statusManager{currentState: StateHealthy}

	assert.False(t, sm.Assess(true, "aaa"))
	assert.Equal(t, StateHealthy, sm.currentState)

	assert.False(t, sm.Assess(false, ""))
	assert.Equal(t, StateDegraded, sm.currentState)
	assert.Equal(t, "aaa", sm.lastKnownRunID)

	assert.True(t, sm.Assess(true, "bbb"))
	assert.Equal(t, StateHealthy, sm.currentState)
	assert.False(t, sm.Assess(true, "bbb"))
}

func TestCheckerRebuildsOnVersionChange(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, metadata.Migrate(db))

	version, err := metadata.BumpDatasetVersion(db)
	require.NoError(t, err)
	metadata.SetServedVersion("")

	calls := 0
	fail := true
	c := NewChecker(db, nil, func(ctx context.Context) error {
		calls++
		if fail {
			return errors.New("boom")
		}
		metadata.SetServedVersion(version)
		return nil
	}, 0)

	c.PerformCheck(context.Background())
	assert.Equal(t, 1, calls)

	// a failed rebuild leaves the served version behind, so it is retried
	fail = false
	c.PerformCheck(context.Background())
	assert.Equal(t, 2, calls)

	c.PerformCheck(context.Background())
	assert.Equal(t, 2, calls)
}
