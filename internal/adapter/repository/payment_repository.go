package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/entity"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/model"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/repository"
)

const uniqueViolationCode = "23505"

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	m, err := r.entityToModel(payment)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrDuplicateActivePayment
		}
		r.logger.Error("Failed to create payment",
			zap.String("booking_id", payment.BookingID),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	var m model.Payment
	err = r.db.WithContext(ctx).
		Where("id = ?", paymentID).
		First(&m).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment by ID",
			zap.String("payment_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return r.modelToEntity(&m), nil
}

func (r *paymentRepository) GetByGatewayReference(ctx context.Context, reference string) (*entity.Payment, error) {
	var m model.Payment
	err := r.db.WithContext(ctx).
		Where("gateway_reference = ?", reference).
		First(&m).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by reference: %w", err)
	}

	return r.modelToEntity(&m), nil
}

func (r *paymentRepository) GetActiveByBookingID(ctx context.Context, bookingID string) (*entity.Payment, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, nil
	}

	var m model.Payment
	err = r.db.WithContext(ctx).
		Where("booking_id = ? AND status <> ?", id, string(entity.PaymentStatusFailed)).
		First(&m).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get active payment for booking",
			zap.String("booking_id", bookingID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get active payment: %w", err)
	}

	return r.modelToEntity(&m), nil
}

func (r *paymentRepository) CountAttempts(ctx context.Context, bookingID string) (int, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return 0, fmt.Errorf("invalid booking id: %w", err)
	}

	var count int64
	err = r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("booking_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count payment attempts: %w", err)
	}

	return int(count), nil
}

func (r *paymentRepository) UpdateStatusFrom(ctx context.Context, id string, fromStatus, toStatus entity.PaymentStatus, fields repository.PaymentStatusFields) (bool, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return false, fmt.Errorf("invalid payment id: %w", err)
	}

	updates := map[string]interface{}{
		"status":     string(toStatus),
		"updated_at": fields.UpdatedAt,
	}
	if fields.FailureCode != "" {
		updates["failure_code"] = fields.FailureCode
	}
	if fields.FailureMessage != "" {
		updates["failure_message"] = fields.FailureMessage
	}
	if fields.RefundReason != "" {
		updates["refund_reason"] = fields.RefundReason
	}
	if fields.ConfirmedAt != nil {
		updates["confirmed_at"] = fields.ConfirmedAt
	}
	if fields.ReleasedAt != nil {
		updates["released_at"] = fields.ReleasedAt
	}
	if fields.RefundedAt != nil {
		updates["refunded_at"] = fields.RefundedAt
	}

	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, string(fromStatus)).
		Updates(updates)

	if res.Error != nil {
		r.logger.Error("Failed to update payment status",
			zap.String("payment_id", id),
			zap.String("from", string(fromStatus)),
			zap.String("to", string(toStatus)),
			zap.Error(res.Error))
		return false, fmt.Errorf("failed to update payment status: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (r *paymentRepository) ListExpiredHeld(ctx context.Context, now time.Time, limit int) ([]*entity.Payment, error) {
	var models []model.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND auto_refund_at <= ?", string(entity.PaymentStatusHeld), now).
		Order("auto_refund_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired held payments: %w", err)
	}

	payments := make([]*entity.Payment, 0, len(models))
	for i := range models {
		payments = append(payments, r.modelToEntity(&models[i]))
	}
	return payments, nil
}

func (r *paymentRepository) entityToModel(p *entity.Payment) (*model.Payment, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment id: %w", err)
	}
	bookingID, err := uuid.Parse(p.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id: %w", err)
	}

	m := &model.Payment{
		ID:                  id,
		BookingID:           bookingID,
		Attempt:             p.Attempt,
		AmountCents:         p.Amount,
		CommissionCents:     p.Commission,
		ProviderAmountCents: p.ProviderAmount,
		Currency:            p.Currency,
		Status:              string(p.Status),
		Gateway:             p.Gateway,
		GatewayReference:    p.GatewayReference,
		RedirectURL:         p.RedirectURL,
		HeldAt:              p.HeldAt,
		AutoRefundAt:        p.AutoRefundAt,
		ConfirmedAt:         p.ConfirmedAt,
		ReleasedAt:          p.ReleasedAt,
		RefundedAt:          p.RefundedAt,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
	if p.FailureCode != "" {
		m.FailureCode = &p.FailureCode
	}
	if p.FailureMessage != "" {
		m.FailureMessage = &p.FailureMessage
	}
	if p.RefundReason != "" {
		m.RefundReason = &p.RefundReason
	}
	return m, nil
}

func (r *paymentRepository) modelToEntity(m *model.Payment) *entity.Payment {
	p := &entity.Payment{
		ID:               m.ID.String(),
		BookingID:        m.BookingID.String(),
		Attempt:          m.Attempt,
		Amount:           m.AmountCents,
		Commission:       m.CommissionCents,
		ProviderAmount:   m.ProviderAmountCents,
		Currency:         m.Currency,
		Status:           entity.PaymentStatus(m.Status),
		Gateway:          m.Gateway,
		GatewayReference: m.GatewayReference,
		RedirectURL:      m.RedirectURL,
		HeldAt:           m.HeldAt,
		AutoRefundAt:     m.AutoRefundAt,
		ConfirmedAt:      m.ConfirmedAt,
		ReleasedAt:       m.ReleasedAt,
		RefundedAt:       m.RefundedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.FailureCode != nil {
		p.FailureCode = *m.FailureCode
	}
	if m.FailureMessage != nil {
		p.FailureMessage = *m.FailureMessage
	}
	if m.RefundReason != nil {
		p.RefundReason = *m.RefundReason
	}
	return p
}
