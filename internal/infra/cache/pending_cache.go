package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"greencycle/config"
	"greencycle/internal/domain/entity"
	"greencycle/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	pendingKeyPrefix = "greencycle:pending:partner:"
	genKeyPrefix     = "greencycle:pending:gen:"
	globalGenKey     = "greencycle:pending:gen"
	scanBatchSize    = 100
)

// setIfCurrentScript writes the listing only while both generation counters
// still match the version the reader saw.
var setIfCurrentScript = redis.NewScript(`
local global = redis.call('GET', KEYS[2]) or '0'
local partner = redis.call('GET', KEYS[3]) or '0'
if global .. ':' .. partner ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// redisPendingCache stores each partner's pending listing as one JSON value.
// Every invalidation bumps a generation counter so a listing read before it
// can never be written back after it.
type redisPendingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewPendingCache returns a Redis-backed cache, or a no-op one when client is nil.
func NewPendingCache(client *redis.Client, cfg *config.Config, logger *slog.Logger) service.PendingCache {
	if client == nil || cfg.Redis == nil {
		return noopPendingCache{}
	}

	return &redisPendingCache{
		client: client,
		ttl:    cfg.Redis.PendingTTL,
		logger: logger,
	}
}

func pendingKey(partnerID uuid.UUID) string {
	return pendingKeyPrefix + partnerID.String()
}

func genKey(partnerID uuid.UUID) string {
	return genKeyPrefix + partnerID.String()
}

func (c *redisPendingCache) Get(ctx context.Context, partnerID uuid.UUID) (*service.PendingLookup, error) {
	values, err := c.client.MGet(ctx, pendingKey(partnerID), globalGenKey, genKey(partnerID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read pending cache")
	}

	lookup := &service.PendingLookup{
		Version: counterValue(values[1]) + ":" + counterValue(values[2]),
	}

	raw, ok := values[0].(string)
	if !ok {
		return lookup, nil
	}

	var items []*entity.CollectionSummary
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn("Dropping undecodable pending cache entry",
			slog.String("partner_id", partnerID.String()),
			slog.Any("error", err),
		)
		_ = c.client.Del(ctx, pendingKey(partnerID)).Err()

		return lookup, nil
	}

	lookup.Items = items
	lookup.Hit = true

	return lookup, nil
}

func counterValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return "0"
}

func (c *redisPendingCache) Set(ctx context.Context, partnerID uuid.UUID, version string, items []*entity.CollectionSummary) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.WithStack(err)
	}

	keys := []string{pendingKey(partnerID), globalGenKey, genKey(partnerID)}
	written, err := setIfCurrentScript.Run(ctx, c.client, keys, version, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return errors.Wrap(err, "failed to write pending cache")
	}
	if written == 0 {
		c.logger.Debug("Skipped stale pending cache write", slog.String("partner_id", partnerID.String()))
	}

	return nil
}

func (c *redisPendingCache) InvalidatePartners(ctx context.Context, partnerIDs ...uuid.UUID) error {
	if len(partnerIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(partnerIDs))
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range partnerIDs {
			pipe.Incr(ctx, genKey(id))
			keys = append(keys, pendingKey(id))
		}
		pipe.Del(ctx, keys...)

		return nil
	})

	return errors.Wrap(err, "failed to invalidate pending cache")
}

func (c *redisPendingCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Incr(ctx, globalGenKey).Err(); err != nil {
		return errors.Wrap(err, "failed to invalidate pending cache")
	}

	iter := c.client.Scan(ctx, 0, pendingKeyPrefix+"*", scanBatchSize).Iterator()

	keys := make([]string, 0, scanBatchSize)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatchSize {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrap(err, "failed to invalidate pending cache")
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "failed to scan pending cache")
	}
	if len(keys) > 0 {
		return errors.Wrap(c.client.Del(ctx, keys...).Err(), "failed to invalidate pending cache")
	}

	return nil
}

// noopPendingCache always misses.
type noopPendingCache struct{}

func (noopPendingCache) Get(context.Context, uuid.UUID) (*service.PendingLookup, error) {
	return &service.PendingLookup{}, nil
}

func (noopPendingCache) Set(context.Context, uuid.UUID, string, []*entity.CollectionSummary) error {
	return nil
}

func (noopPendingCache) InvalidatePartners(context.Context, ...uuid.UUID) error {
	return nil
}

func (noopPendingCache) InvalidateAll(context.Context) error {
	return nil
}
