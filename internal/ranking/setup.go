package ranking

import (
	"fmt"

	"gorm.io/gorm"
)

// Models lists the tables owned by this module, parents first.
func Models() []any {
	return []any{&Format{}, &Scenario{}, &Ranking{}, &Matchup{}, &Counter{}}
}

// Migrate creates the format, scenario, ranking and edge tables. The
// pokemon tables must exist first.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate ranking tables: %w", err)
	}
	return nil
}
