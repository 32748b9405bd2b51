package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	domainRepo "github.com/TechBursterOrg/homehero-sub003/internal/domain/repository"
)

const duplicateGuardPrefix = "homehero:booking:inflight:"

type redisDuplicateGuard struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisDuplicateGuard creates a redis-backed duplicate submission guard.
func NewRedisDuplicateGuard(client *redis.Client, logger *zap.Logger) domainRepo.DuplicateGuard {
	return &redisDuplicateGuard{
		client: client,
		logger: logger,
	}
}

func (g *redisDuplicateGuard) Reserve(ctx context.Context, fingerprint string, window time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, duplicateGuardPrefix+fingerprint, 1, window).Result()
	if err != nil {
		// The guard is best effort: a redis outage must not block bookings.
		g.logger.Warn("Duplicate guard unavailable, allowing request",
			zap.String("fingerprint", fingerprint),
			zap.Error(err))
		return true, nil
	}
	return ok, nil
}

func (g *redisDuplicateGuard) Release(ctx context.Context, fingerprint string) error {
	if err := g.client.Del(ctx, duplicateGuardPrefix+fingerprint).Err(); err != nil {
		return fmt.Errorf("failed to release duplicate guard: %w", err)
	}
	return nil
}
