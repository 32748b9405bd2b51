package database

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/TechBursterOrg/homehero-sub003/internal/adapter/repository"
	domainRepo "github.com/TechBursterOrg/homehero-sub003/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Booking        domainRepo.BookingRepository
	Payment        domainRepo.PaymentRepository
	DuplicateGuard domainRepo.DuplicateGuard
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *Repositories {
	return &Repositories{
		Booking:        repository.NewBookingRepository(db, logger),
		Payment:        repository.NewPaymentRepository(db, logger),
		DuplicateGuard: repository.NewRedisDuplicateGuard(redisClient, logger),
	}
}
