package psql

import (
	"context"
	"fmt"

	"github.com/AasheeshLikePanner/spur/spur/config"
	"github.com/AasheeshLikePanner/spur/spur/sources/psql/models"
	"github.com/AasheeshLikePanner/spur/spur/utils/logging"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(ctx context.Context, cfg config.Config) (*Database, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate models (automatic schema creation)
	err = db.WithContext(ctx).
		AutoMigrate(
			&models.Conversation{},
			&models.Message{},
			&models.Memory{},
		)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	logging.AppLogger.Info("database ready",
		zap.String("host", cfg.DBHost),
		zap.String("name", cfg.DBName),
	)

	return &Database{DB: db}, nil
}

func (db *Database) Close() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
