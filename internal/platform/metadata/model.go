package metadata

import "gorm.io/gorm"

// Metadata is a key/value row of system state.
type Metadata struct {
	gorm.Model

	// Key is unique, e.g. "dataset_version"
	Key string `gorm:"uniqueIndex;not null;type:varchar(255)"`

	Value string `gorm:"type:varchar(255)"`
}
