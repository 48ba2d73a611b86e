package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantryml/recipegen/internal/model"
)

// Migrate enables the pgvector extension and creates the recipes table.
// SQLite (used by unit tests) has no extension support, so the vector
// column degrades to text there; the service layer compensates with an
// in-process similarity fallback.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to enable pgvector extension: %w", err)
		}
		logger.Info("pgvector extension enabled")
	}

	if err := db.AutoMigrate(&model.Recipe{}); err != nil {
		return fmt.Errorf("failed to migrate recipes table: %w", err)
	}

	logger.Info("database migration complete")
	return nil
}
