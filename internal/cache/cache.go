package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agri-mandi/internal/config"
	"agri-mandi/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// statusTTL bounds staleness of cached order statuses.
const statusTTL = 5 * time.Minute

// StatusCache stores the latest known status of an order for cheap polling.
// Implementations are best-effort: a cache outage never fails the request.
type StatusCache interface {
	// GetStatus returns the cached status for an order, or ok=false on a
	// miss or cache error.
	GetStatus(ctx context.Context, orderID uuid.UUID) (model.OrderStatus, bool)

	// SetStatus records the latest status for an order.
	SetStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus)

	// Invalidate removes a cached status.
	Invalidate(ctx context.Context, orderID uuid.UUID)

	// Close releases the underlying connection.
	Close() error
}

// redisCache implements StatusCache on Redis.
type redisCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (StatusCache, error) {
	logger = logger.With().Str("component", "status-cache").Logger()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("redis status cache initialised")

	return &redisCache{
		client: client,
		logger: logger,
	}, nil
}

func statusKey(orderID uuid.UUID) string {
	return "order:status:" + orderID.String()
}

func (c *redisCache) GetStatus(ctx context.Context, orderID uuid.UUID) (model.OrderStatus, bool) {
	value, err := c.client.Get(ctx, statusKey(orderID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().
				Err(err).
				Str("order_id", orderID.String()).
				Msg("failed to read order status from cache")
		}
		return "", false
	}

	status := model.OrderStatus(value)
	if !model.ValidOrderStatus(status) {
		c.logger.Warn().
			Str("order_id", orderID.String()).
			Str("value", value).
			Msg("discarding unrecognised cached status")
		return "", false
	}

	return status, true
}

func (c *redisCache) SetStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) {
	if err := c.client.Set(ctx, statusKey(orderID), string(status), statusTTL).Err(); err != nil {
		c.logger.Warn().
			Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(status)).
			Msg("failed to cache order status")
	}
}

func (c *redisCache) Invalidate(ctx context.Context, orderID uuid.UUID) {
	if err := c.client.Del(ctx, statusKey(orderID)).Err(); err != nil {
		c.logger.Warn().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to invalidate cached order status")
	}
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

// nopCache satisfies StatusCache when caching is disabled.
type nopCache struct{}

// NewNopCache creates a cache that never hits.
func NewNopCache() StatusCache {
	return nopCache{}
}

func (nopCache) GetStatus(ctx context.Context, orderID uuid.UUID) (model.OrderStatus, bool) {
	return "", false
}

func (nopCache) SetStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) {}

func (nopCache) Invalidate(ctx context.Context, orderID uuid.UUID) {}

func (nopCache) Close() error { return nil }
