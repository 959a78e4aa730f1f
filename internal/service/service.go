package service

import (
	"context"
	"errors"
	"time"

	"github.com/fortuna/faceoff/internal/cache"
	"github.com/fortuna/faceoff/internal/publisher"
	"github.com/rs/zerolog/log"
)

// ErrInvalidEntry is returned when a scoring entry or query parameter is malformed
var ErrInvalidEntry = errors.New("invalid entry")

// Cache stores derived views. *cache.RedisCache satisfies it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Publisher announces committed changes. *publisher.RedisPublisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, n publisher.Notice) error
}

// readThrough serves key from c when present, otherwise loads and stores it.
// Cache errors are logged and never fail the read.
func readThrough[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	logger := log.Ctx(ctx)

	if c != nil {
		var cached T
		err := c.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if c != nil {
		if err := c.SetJSON(ctx, key, v, ttl); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return v, nil
}

// invalidate drops keys, logging failures
func invalidate(ctx context.Context, c Cache, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

// seasonKeys lists every cached view derived from a season's events
func seasonKeys(season string) []string {
	return []string{
		cache.LeadersKey(season),
		cache.StandingsKey(season, StandingsFromView),
		cache.StandingsKey(season, StandingsComputed),
	}
}
