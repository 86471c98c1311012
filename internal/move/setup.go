package move

import (
	"fmt"

	"gorm.io/gorm"
)

// Models lists the tables owned by the move module, in creation order.
func Models() []any {
	return []any{&FastMove{}, &ChargedMove{}}
}

// Migrate creates or updates the move tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate move tables: %w", err)
	}
	return nil
}
