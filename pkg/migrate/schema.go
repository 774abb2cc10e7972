package migrate

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
)

// Schema builds the tables straight from the models. The goose files are
// Postgres-only, so sqlite runs (local dev, tests) use this instead.
func Schema(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if err := conn.AutoMigrate(
		&models.Employee{},
		&models.Asset{},
		&models.Assignment{},
		&models.AdminUser{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := conn.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_one_active_per_asset ON assignments (asset_id) WHERE status = 'Active'",
	).Error; err != nil {
		return fmt.Errorf("create active assignment index: %w", err)
	}
	return nil
}
