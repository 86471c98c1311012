package pokemon

import (
	"fmt"

	"gorm.io/gorm"
)

// JoinTables are the many-to-many tables gorm creates for Pokemon.
var JoinTables = []string{"pokemon_fast_moves", "pokemon_charged_moves", "pokemon_tags"}

// Models lists the tables owned by the pokemon module.
func Models() []any {
	return []any{&Tag{}, &Pokemon{}}
}

// Migrate creates or updates the pokemon tables. The move tables must exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate pokemon tables: %w", err)
	}
	return nil
}
