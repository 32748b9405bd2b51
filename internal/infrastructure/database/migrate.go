package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	if err := db.AutoMigrate(
		&model.Booking{},
		&model.Payment{},
	); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// At most one non-failed payment per booking.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS unique_active_payment_per_booking ON payments (booking_id) WHERE status <> 'failed'`).Error; err != nil {
		return err
	}

	// The auto-refund sweep scans held payments by deadline.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payments_held_expiring ON payments (auto_refund_at) WHERE status = 'held'`).Error; err != nil {
		return err
	}

	return nil
}
