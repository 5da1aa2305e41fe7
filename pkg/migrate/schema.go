package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/stashkeeper-backend/pkg/db/models"
)

// openPeriodIndex mirrors usage_periods_one_open_idx from the SQL migrations.
const openPeriodIndex = `CREATE UNIQUE INDEX IF NOT EXISTS usage_periods_one_open_idx
	ON usage_periods (item_id) WHERE end_date IS NULL`

// AutoMigrate creates the schema from the GORM models. Used for SQLite dev
// databases and tests, where the Postgres SQL migrations do not apply.
func AutoMigrate(ctx context.Context, conn *gorm.DB) error {
	tx := conn.WithContext(ctx)
	if err := tx.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := tx.Exec(openPeriodIndex).Error; err != nil {
		return fmt.Errorf("create open period index: %w", err)
	}
	return nil
}
