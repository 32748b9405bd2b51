package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/clock"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/entity"
	domainErrors "github.com/TechBursterOrg/homehero-sub003/internal/domain/errors"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/gateway"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/repository"
	"github.com/TechBursterOrg/homehero-sub003/internal/usecase"
)

type escrowFixture struct {
	escrow   *usecase.EscrowService
	bookings *fakeBookingRepo
	payments *fakePaymentRepo
	gateway  *fakeGateway
	now      time.Time
}

func newEscrowFixture(t *testing.T) *escrowFixture {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bookings := newFakeBookingRepo()
	payments := newFakePaymentRepo()
	gw := newFakeGateway()

	escrow := usecase.NewEscrowService(bookings, payments, gw, clock.NewFixed(now), zap.NewNop(), usecase.EscrowServiceConfig{
		CommissionRate:       0.15,
		AutoRefundWindow:     72 * time.Hour,
		AllowedRedirectHosts: []string{"paystack.com"},
		Currency:             "NGN",
		CallbackBaseURL:      "https://api.homehero.test/api/v1/payments",
	})

	return &escrowFixture{
		escrow:   escrow,
		bookings: bookings,
		payments: payments,
		gateway:  gw,
		now:      now,
	}
}

func (f *escrowFixture) seedBooking(t *testing.T, status entity.BookingStatus) *entity.Booking {
	t.Helper()
	booking := &entity.Booking{
		ID:            uuid.NewString(),
		CustomerID:    "cust-1",
		CustomerEmail: "customer@example.com",
		ProviderID:    "prov-1",
		ServiceType:   "plumbing",
		Amount:        10000,
		Status:        status,
		RequestedAt:   f.now,
		CreatedAt:     f.now,
		UpdatedAt:     f.now,
	}
	require.NoError(t, f.bookings.Create(context.Background(), booking))
	return booking
}

func TestEscrowService_InitializePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("holds payment with commission split", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)

		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)

		assert.Equal(t, entity.PaymentStatusHeld, payment.Status)
		assert.Equal(t, int64(10000), payment.Amount)
		assert.Equal(t, int64(1500), payment.Commission)
		assert.Equal(t, int64(8500), payment.ProviderAmount)
		assert.Equal(t, payment.Amount, payment.Commission+payment.ProviderAmount)
		assert.Equal(t, 1, payment.Attempt)
		require.NotNil(t, payment.AutoRefundAt)
		assert.Equal(t, f.now.Add(72*time.Hour), *payment.AutoRefundAt)
		assert.Equal(t, "https://checkout.paystack.com/abc123", payment.RedirectURL)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)

		_, err := f.escrow.InitializePayment(ctx, booking.ID, 0, booking.CustomerEmail)
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeValidation))
		assert.Equal(t, 0, f.gateway.calls)
	})

	t.Run("rejects booking not awaiting payment", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusPending)

		_, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeValidation))
	})

	t.Run("reuses existing active payment without new session", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)

		first, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)

		second, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, f.gateway.calls)
	})

	t.Run("new attempt allowed after failed payment", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)

		first, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)
		require.NoError(t, f.escrow.ConfirmCallback(ctx, first.ID, gateway.StatusFailed))

		second, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, 2, second.Attempt)
	})

	t.Run("rejects redirect outside the allow-list", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		f.gateway.redirectURL = "https://evil.example.com/pay"

		_, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeGateway))

		active, repoErr := f.payments.GetActiveByBookingID(ctx, booking.ID)
		require.NoError(t, repoErr)
		assert.Nil(t, active)
	})

	t.Run("rejects plain http redirect", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		f.gateway.redirectURL = "http://checkout.paystack.com/abc123"

		_, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeGateway))
	})

	t.Run("wraps gateway failure", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		f.gateway.createErr = &gateway.Error{Code: "HTTP_503", Message: "unavailable"}

		_, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeGateway))
	})
}

func TestEscrowService_ConfirmCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("success confirms payment and moves booking to pending", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)

		require.NoError(t, f.escrow.ConfirmCallback(ctx, payment.ID, gateway.StatusSuccess))

		updated, _ := f.payments.GetByID(ctx, payment.ID)
		assert.Equal(t, entity.PaymentStatusConfirmed, updated.Status)
		assert.NotNil(t, updated.ConfirmedAt)

		b, _ := f.bookings.GetByID(ctx, booking.ID)
		assert.Equal(t, entity.BookingStatusPending, b.Status)
	})

	t.Run("duplicate success callback is a no-op", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)

		require.NoError(t, f.escrow.ConfirmCallback(ctx, payment.ID, gateway.StatusSuccess))
		require.NoError(t, f.escrow.ConfirmCallback(ctx, payment.ID, gateway.StatusSuccess))

		updated, _ := f.payments.GetByID(ctx, payment.ID)
		assert.Equal(t, entity.PaymentStatusConfirmed, updated.Status)
	})

	t.Run("failed marks payment failed", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)

		require.NoError(t, f.escrow.ConfirmCallback(ctx, payment.ID, gateway.StatusFailed))

		updated, _ := f.payments.GetByID(ctx, payment.ID)
		assert.Equal(t, entity.PaymentStatusFailed, updated.Status)
		assert.NotEmpty(t, updated.FailureCode)

		// The booking keeps waiting for a successful attempt.
		b, _ := f.bookings.GetByID(ctx, booking.ID)
		assert.Equal(t, entity.BookingStatusAwaitingPayment, b.Status)
	})

	t.Run("pending status changes nothing", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)

		require.NoError(t, f.escrow.ConfirmCallback(ctx, payment.ID, gateway.StatusPending))

		updated, _ := f.payments.GetByID(ctx, payment.ID)
		assert.Equal(t, entity.PaymentStatusHeld, updated.Status)
	})

	t.Run("success after refund is refused", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)
		require.NoError(t, f.escrow.RefundPayment(ctx, booking.ID, "customer_cancelled"))

		err = f.escrow.ConfirmCallback(ctx, payment.ID, gateway.StatusSuccess)
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeInvalidState))

		updated, _ := f.payments.GetByID(ctx, payment.ID)
		assert.Equal(t, entity.PaymentStatusRefunded, updated.Status)
	})

	t.Run("unknown payment id", func(t *testing.T) {
		f := newEscrowFixture(t)
		err := f.escrow.ConfirmCallback(ctx, uuid.NewString(), gateway.StatusSuccess)
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeNotFound))
	})
}

func TestEscrowService_ReleasePayment(t *testing.T) {
	ctx := context.Background()

	confirmAndComplete := func(t *testing.T, f *escrowFixture, booking *entity.Booking, payment *entity.Payment) {
		t.Helper()
		require.NoError(t, f.escrow.ConfirmCallback(ctx, payment.ID, gateway.StatusSuccess))
		_, err := f.bookings.UpdateStatusFrom(ctx, booking.ID, entity.BookingStatusPending, entity.BookingStatusCompleted, bookingFields(f.now))
		require.NoError(t, err)
	}

	t.Run("releases when payment confirmed and booking completed", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)
		confirmAndComplete(t, f, booking, payment)

		require.NoError(t, f.escrow.ReleasePayment(ctx, booking.ID))

		updated, _ := f.payments.GetByID(ctx, payment.ID)
		assert.Equal(t, entity.PaymentStatusReleased, updated.Status)
		assert.NotNil(t, updated.ReleasedAt)
	})

	t.Run("refused while payment only held", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		_, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)

		err = f.escrow.ReleasePayment(ctx, booking.ID)
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeInvalidState))
	})

	t.Run("refused while booking not completed", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)
		require.NoError(t, f.escrow.ConfirmCallback(ctx, payment.ID, gateway.StatusSuccess))

		err = f.escrow.ReleasePayment(ctx, booking.ID)
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeInvalidState))
	})

	t.Run("double release is refused", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)
		confirmAndComplete(t, f, booking, payment)
		require.NoError(t, f.escrow.ReleasePayment(ctx, booking.ID))

		err = f.escrow.ReleasePayment(ctx, booking.ID)
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeInvalidState))
	})
}

func TestEscrowService_RefundPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("refunds held payment", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)

		require.NoError(t, f.escrow.RefundPayment(ctx, booking.ID, "provider_unavailable"))

		updated, _ := f.payments.GetByID(ctx, payment.ID)
		assert.Equal(t, entity.PaymentStatusRefunded, updated.Status)
		assert.Equal(t, "provider_unavailable", updated.RefundReason)
		assert.NotNil(t, updated.RefundedAt)
	})

	t.Run("refunds confirmed payment", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)
		require.NoError(t, f.escrow.ConfirmCallback(ctx, payment.ID, gateway.StatusSuccess))

		require.NoError(t, f.escrow.RefundPayment(ctx, booking.ID, "dispute"))

		updated, _ := f.payments.GetByID(ctx, payment.ID)
		assert.Equal(t, entity.PaymentStatusRefunded, updated.Status)
	})

	t.Run("refused after release", func(t *testing.T) {
		f := newEscrowFixture(t)
		booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
		require.NoError(t, err)
		require.NoError(t, f.escrow.ConfirmCallback(ctx, payment.ID, gateway.StatusSuccess))
		_, err = f.bookings.UpdateStatusFrom(ctx, booking.ID, entity.BookingStatusPending, entity.BookingStatusCompleted, bookingFields(f.now))
		require.NoError(t, err)
		require.NoError(t, f.escrow.ReleasePayment(ctx, booking.ID))

		err = f.escrow.RefundPayment(ctx, booking.ID, "too_late")
		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeInvalidState))
	})
}

func TestEscrowService_RefundExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("refunds only payments past the window", func(t *testing.T) {
		f := newEscrowFixture(t)

		fresh := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		freshPayment, err := f.escrow.InitializePayment(ctx, fresh.ID, 10000, fresh.CustomerEmail)
		require.NoError(t, err)

		expired := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
		expiredPayment, err := f.escrow.InitializePayment(ctx, expired.ID, 5000, expired.CustomerEmail)
		require.NoError(t, err)
		past := f.now.Add(-time.Minute)
		f.payments.payments[expiredPayment.ID].AutoRefundAt = &past

		refunded, err := f.escrow.RefundExpired(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, refunded)

		p, _ := f.payments.GetByID(ctx, expiredPayment.ID)
		assert.Equal(t, entity.PaymentStatusRefunded, p.Status)
		assert.Equal(t, usecase.AutoRefundReason, p.RefundReason)

		p, _ = f.payments.GetByID(ctx, freshPayment.ID)
		assert.Equal(t, entity.PaymentStatusHeld, p.Status)
	})

	t.Run("concurrent sweeps refund each payment once", func(t *testing.T) {
		f := newEscrowFixture(t)
		for i := 0; i < 5; i++ {
			booking := f.seedBooking(t, entity.BookingStatusAwaitingPayment)
			payment, err := f.escrow.InitializePayment(ctx, booking.ID, 10000, booking.CustomerEmail)
			require.NoError(t, err)
			past := f.now.Add(-time.Minute)
			f.payments.payments[payment.ID].AutoRefundAt = &past
		}

		var wg sync.WaitGroup
		totals := make([]int, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				n, err := f.escrow.RefundExpired(ctx, 100)
				assert.NoError(t, err)
				totals[i] = n
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 5, totals[0]+totals[1])
	})
}

func bookingFields(now time.Time) repository.BookingStatusFields {
	return repository.BookingStatusFields{UpdatedAt: now}
}
