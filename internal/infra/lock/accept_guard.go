// Package lock provides the short-lived distributed guard taken around collection actions.
package lock

import (
	"context"
	"log/slog"
	"time"

	"greencycle/config"
	"greencycle/internal/domain/service"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "greencycle:lock:collection:"
	retryInterval = 50 * time.Millisecond
)

// redisActionGuard queues actions on one collection ahead of the database row lock.
// Waiting is bounded by the lock TTL; the database remains authoritative.
type redisActionGuard struct {
	locker *redislock.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewActionGuard returns a redislock-backed guard, or a no-op one when client is nil.
func NewActionGuard(client *redis.Client, cfg *config.Config, logger *slog.Logger) service.ActionGuard {
	if client == nil || cfg.Redis == nil {
		return noopGuard{}
	}

	return &redisActionGuard{
		locker: redislock.New(client),
		ttl:    cfg.Redis.AcceptLock,
		logger: logger,
	}
}

// retryAttempts covers one full lock TTL, after which a stuck holder has expired.
func (g *redisActionGuard) retryAttempts() int {
	return max(int(g.ttl/retryInterval), 1)
}

func (g *redisActionGuard) Acquire(ctx context.Context, collectionID uuid.UUID) (func(), error) {
	key := keyPrefix + collectionID.String()
	l, err := g.locker.Obtain(ctx, key, g.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryInterval), g.retryAttempts()),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, errors.Wrap(service.ErrGuardBusy, key)
		}

		return nil, errors.Wrap(err, "failed to obtain collection lock")
	}

	release := func() {
		// The caller's context may already be cancelled once the action returns.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()

		if err := l.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			g.logger.Warn("Failed to release collection lock",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}

	return release, nil
}

// noopGuard always succeeds immediately.
type noopGuard struct{}

func (noopGuard) Acquire(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}
