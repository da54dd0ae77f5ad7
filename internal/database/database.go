package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/glowline/backend/internal/config"
	"github.com/glowline/backend/internal/database/migrations"
	"github.com/glowline/backend/internal/models"
	"github.com/glowline/backend/internal/queue"
)

// InitDB initializes the database connection with configuration
func InitDB(dbConfig config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dbConfig.URL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdle)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	// uuid_generate_v4 is used by model defaults
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	if err := db.AutoMigrate(
		// Dealers and hierarchy
		&models.Dealer{},

		// Bonus tier ladder
		&models.BonusTier{},

		// Team purchases
		&models.TeamPurchase{},
		&models.TeamPurchaseMember{},

		// Bonus records
		&models.BonusPreview{},
		&models.MonthlyBonus{},

		// Balances
		&models.Balance{},
		&models.BalanceTransaction{},

		// Background jobs
		&queue.Job{},
	); err != nil {
		return err
	}

	return migrations.RunMigrations(db)
}
