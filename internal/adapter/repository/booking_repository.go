package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/entity"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/model"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/repository"
)

type bookingRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB, logger *zap.Logger) repository.BookingRepository {
	return &bookingRepository{
		db:     db,
		logger: logger,
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	m, err := r.entityToModel(booking)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		r.logger.Error("Failed to create booking",
			zap.String("customer_id", booking.CustomerID),
			zap.String("provider_id", booking.ProviderID),
			zap.Error(err))
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	var m model.Booking
	err = r.db.WithContext(ctx).
		Where("id = ?", bookingID).
		First(&m).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get booking by ID",
			zap.String("booking_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return r.modelToEntity(&m), nil
}

func (r *bookingRepository) UpdateStatusFrom(ctx context.Context, id string, fromStatus, toStatus entity.BookingStatus, fields repository.BookingStatusFields) (bool, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return false, fmt.Errorf("invalid booking id: %w", err)
	}

	updates := map[string]interface{}{
		"status":     string(toStatus),
		"updated_at": fields.UpdatedAt,
	}
	if fields.AcceptedAt != nil {
		updates["accepted_at"] = fields.AcceptedAt
	}
	if fields.CompletedAt != nil {
		updates["completed_at"] = fields.CompletedAt
	}

	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND status = ?", bookingID, string(fromStatus)).
		Updates(updates)

	if res.Error != nil {
		r.logger.Error("Failed to update booking status",
			zap.String("booking_id", id),
			zap.String("from", string(fromStatus)),
			zap.String("to", string(toStatus)),
			zap.Error(res.Error))
		return false, fmt.Errorf("failed to update booking status: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (r *bookingRepository) FindRecentDuplicate(ctx context.Context, customerID, providerID, serviceType string, cutoff time.Time) (*entity.Booking, error) {
	var m model.Booking
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND provider_id = ? AND service_type = ? AND status = ? AND requested_at >= ?",
			customerID, providerID, serviceType, string(entity.BookingStatusAwaitingPayment), cutoff).
		Order("requested_at DESC").
		First(&m).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up duplicate booking: %w", err)
	}

	return r.modelToEntity(&m), nil
}

func (r *bookingRepository) entityToModel(b *entity.Booking) (*model.Booking, error) {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id: %w", err)
	}

	return &model.Booking{
		ID:              id,
		CustomerID:      b.CustomerID,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		ProviderID:      b.ProviderID,
		ProviderName:    b.ProviderName,
		ProviderEmail:   b.ProviderEmail,
		ServiceType:     b.ServiceType,
		Description:     b.Description,
		ServiceLocation: b.ServiceLocation,
		Timeframe:       b.Timeframe,
		SpecialRequests: b.SpecialRequests,
		Budget:          b.Budget,
		Amount:          b.Amount,
		Status:          string(b.Status),
		RequestedAt:     b.RequestedAt,
		AcceptedAt:      b.AcceptedAt,
		CompletedAt:     b.CompletedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}, nil
}

func (r *bookingRepository) modelToEntity(m *model.Booking) *entity.Booking {
	return &entity.Booking{
		ID:              m.ID.String(),
		CustomerID:      m.CustomerID,
		CustomerName:    m.CustomerName,
		CustomerEmail:   m.CustomerEmail,
		CustomerPhone:   m.CustomerPhone,
		ProviderID:      m.ProviderID,
		ProviderName:    m.ProviderName,
		ProviderEmail:   m.ProviderEmail,
		ServiceType:     m.ServiceType,
		Description:     m.Description,
		ServiceLocation: m.ServiceLocation,
		Timeframe:       m.Timeframe,
		SpecialRequests: m.SpecialRequests,
		Budget:          m.Budget,
		Amount:          m.Amount,
		Status:          entity.BookingStatus(m.Status),
		RequestedAt:     m.RequestedAt,
		AcceptedAt:      m.AcceptedAt,
		CompletedAt:     m.CompletedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
