package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/usecase"
)

// RefundScheduler periodically refunds held payments whose auto-refund
// deadline elapsed without confirmation. Multiple instances may run
// concurrently; the escrow service's compare-and-set transition guarantees at
// most one refund per payment.
type RefundScheduler struct {
	escrow    *usecase.EscrowService
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
	stopChan  chan struct{}
}

// NewRefundScheduler creates the auto-refund worker.
func NewRefundScheduler(escrow *usecase.EscrowService, interval time.Duration, batchSize int, logger *zap.Logger) *RefundScheduler {
	return &RefundScheduler{
		escrow:    escrow,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the sweep loop in the background.
func (s *RefundScheduler) Start(ctx context.Context) {
	s.logger.Info("Starting auto-refund scheduler",
		zap.Duration("interval", s.interval),
		zap.Int("batch_size", s.batchSize))

	go s.run(ctx)
}

// Stop terminates the sweep loop.
func (s *RefundScheduler) Stop() {
	s.logger.Info("Stopping auto-refund scheduler")
	close(s.stopChan)
}

func (s *RefundScheduler) run(ctx context.Context) {
	// First sweep right away so a restart doesn't delay overdue refunds.
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Auto-refund scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Auto-refund scheduler cancelled")
			return
		}
	}
}

func (s *RefundScheduler) sweep(ctx context.Context) {
	refunded, err := s.escrow.RefundExpired(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("Auto-refund sweep failed", zap.Error(err))
		return
	}
	if refunded > 0 {
		s.logger.Info("Auto-refund sweep completed", zap.Int("refunded", refunded))
	}
}
