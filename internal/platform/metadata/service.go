package metadata

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// a missing key reads as empty
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key.
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error
}

// --- Dataset Version ---

// GetDatasetVersion returns the stored dataset version, or "" before the first load.
func GetDatasetVersion(db *gorm.DB) (string, error) {
	return GetValue(db, DatasetVersionKey)
}

// BumpDatasetVersion stamps a fresh version. Call it inside the reload
// transaction so the stamp commits together with the data.
func BumpDatasetVersion(db *gorm.DB) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate dataset version: %w", err)
	}
	version := id.String()
	if err := SetValue(db, DatasetVersionKey, version); err != nil {
		return "", fmt.Errorf("store dataset version: %w", err)
	}
	return version, nil
}

// SetLoadTime records t under one of the load-time keys.
func SetLoadTime(db *gorm.DB, key string, t time.Time) error {
	return SetValue(db, key, t.UTC().Format(time.RFC3339))
}

// GetLoadTime parses a load-time key. The zero time means never loaded.
func GetLoadTime(db *gorm.DB, key string) (time.Time, error) {
	value, err := GetValue(db, key)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse metadata '%s': %w", key, err)
	}
	return t, nil
}

// --- Served Version ---

// served is the dataset version the in-memory stores were last built from.
var served atomic.Value

// ServedVersion returns the version currently held in memory.
func ServedVersion() string {
	v, _ := served.Load().(string)
	return v
}

// SetServedVersion is called after the in-memory stores are rebuilt.
func SetServedVersion(version string) {
	served.Store(version)
}
