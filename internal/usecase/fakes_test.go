package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/entity"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/gateway"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/repository"
)

// fakeBookingRepo is an in-memory BookingRepository with the same
// compare-and-set semantics as the SQL implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*entity.Booking

	createErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*entity.Booking)}
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) UpdateStatusFrom(_ context.Context, id string, from, to entity.BookingStatus, fields repository.BookingStatusFields) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	if fields.AcceptedAt != nil {
		b.AcceptedAt = fields.AcceptedAt
	}
	if fields.CompletedAt != nil {
		b.CompletedAt = fields.CompletedAt
	}
	b.UpdatedAt = fields.UpdatedAt
	return true, nil
}

func (r *fakeBookingRepo) FindRecentDuplicate(_ context.Context, customerID, providerID, serviceType string, cutoff time.Time) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.CustomerID == customerID && b.ProviderID == providerID && b.ServiceType == serviceType &&
			b.Status == entity.BookingStatusAwaitingPayment && !b.RequestedAt.Before(cutoff) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

// fakePaymentRepo mirrors the partial unique index: at most one non-failed
// payment per booking.
type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*entity.Payment

	createErr error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*entity.Payment)}
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, p := range r.payments {
		if p.BookingID == payment.BookingID && p.Status != entity.PaymentStatusFailed {
			return repository.ErrDuplicateActivePayment
		}
	}
	cp := *payment
	r.payments[payment.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) GetByGatewayReference(_ context.Context, reference string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.GatewayReference == reference {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) GetActiveByBookingID(_ context.Context, bookingID string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.BookingID == bookingID && p.Status != entity.PaymentStatusFailed {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) CountAttempts(_ context.Context, bookingID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.payments {
		if p.BookingID == bookingID {
			n++
		}
	}
	return n, nil
}

func (r *fakePaymentRepo) UpdateStatusFrom(_ context.Context, id string, from, to entity.PaymentStatus, fields repository.PaymentStatusFields) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	if fields.FailureCode != "" {
		p.FailureCode = fields.FailureCode
	}
	if fields.FailureMessage != "" {
		p.FailureMessage = fields.FailureMessage
	}
	if fields.RefundReason != "" {
		p.RefundReason = fields.RefundReason
	}
	if fields.ConfirmedAt != nil {
		p.ConfirmedAt = fields.ConfirmedAt
	}
	if fields.ReleasedAt != nil {
		p.ReleasedAt = fields.ReleasedAt
	}
	if fields.RefundedAt != nil {
		p.RefundedAt = fields.RefundedAt
	}
	p.UpdatedAt = fields.UpdatedAt
	return true, nil
}

func (r *fakePaymentRepo) ListExpiredHeld(_ context.Context, now time.Time, limit int) ([]*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.payments {
		if p.Status == entity.PaymentStatusHeld && p.AutoRefundAt != nil && !p.AutoRefundAt.After(now) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AutoRefundAt.Before(*out[j].AutoRefundAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeDuplicateGuard is an in-memory DuplicateGuard.
type fakeDuplicateGuard struct {
	mu       sync.Mutex
	reserved map[string]bool

	reserveErr error
}

func newFakeDuplicateGuard() *fakeDuplicateGuard {
	return &fakeDuplicateGuard{reserved: make(map[string]bool)}
}

func (g *fakeDuplicateGuard) Reserve(_ context.Context, fingerprint string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reserveErr != nil {
		return false, g.reserveErr
	}
	if g.reserved[fingerprint] {
		return false, nil
	}
	g.reserved[fingerprint] = true
	return true, nil
}

func (g *fakeDuplicateGuard) Release(_ context.Context, fingerprint string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.reserved, fingerprint)
	return nil
}

// fakeGateway is a scripted PaymentGateway.
type fakeGateway struct {
	mu sync.Mutex

	createErr   error
	redirectURL string
	reference   string
	calls       int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{redirectURL: "https://checkout.paystack.com/abc123"}
}

func (g *fakeGateway) CreateSession(_ context.Context, req *gateway.CreateSessionRequest) (*gateway.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	ref := g.reference
	if ref == "" {
		ref = req.Reference
	}
	return &gateway.Session{
		SessionID:   "sess_" + ref,
		Reference:   ref,
		RedirectURL: g.redirectURL,
	}, nil
}

func (g *fakeGateway) VerifySession(_ context.Context, reference string) (*gateway.SessionStatus, error) {
	return &gateway.SessionStatus{Reference: reference, Status: gateway.StatusPending}, nil
}

func (g *fakeGateway) ParseWebhook(_ []byte, _ string) (*gateway.WebhookEvent, error) {
	return nil, &gateway.Error{Code: "UNSUPPORTED", Message: "not implemented in fake"}
}

func (g *fakeGateway) Name() string { return "paystack" }
