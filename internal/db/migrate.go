package db

import (
	"fmt"

	"go_ngxmgr/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate runs database migrations for all models
func Migrate(db *gorm.DB, logger *logrus.Entry) error {
	logger.Info("Starting database migration...")

	// Join tables are created through the many2many tags
	models := []interface{}{
		&model.ListeningPort{},
		&model.Domain{},
		&model.Certificate{},
		&model.Upstream{},
		&model.HttpServer{},
		&model.Location{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Infof("Database migration completed (%d tables)", len(models))
	return nil
}
