package database

import (
	"fmt"

	"driver-rewards/internal/logger"
	"driver-rewards/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// activeApplicationIndex enforces at most one pending or accepted application per
// (driver, sponsor) pair. Both Postgres and SQLite accept partial indexes.
const activeApplicationIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_applications_active
	ON applications (driver_id, sponsor_id)
	WHERE status IN ('pending', 'accepted')`

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Error),
		TranslateError: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	logger.Log.Info("Database connection established")
	return nil
}

// Models lists every table the platform owns, in creation order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.DriverProfile{},
		&models.SponsorProfile{},
		&models.AdminProfile{},
		&models.Ad{},
		&models.Application{},
		&models.PointsLedgerEntry{},
		&models.CatalogItem{},
	}
}

// Migrate creates or updates all tables and indexes on db
func Migrate(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}

	if err := db.Exec(activeApplicationIndex).Error; err != nil {
		return fmt.Errorf("create active application index: %w", err)
	}

	logger.Log.Info("Database migrations completed", zap.Int("tables", len(Models())))
	return nil
}

// AutoMigrate runs migrations against the connected database
func AutoMigrate() error {
	return Migrate(DB)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
