package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fightiq/ratings/internal/metrics"
	"fightiq/ratings/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCache publishes the latest ratings so feature-builders can read
// them without touching the engine. It is an optional accelerator: the
// engine is the source of truth and the host degrades gracefully when
// Redis is unavailable.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Config holds Redis connection configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().
		Str("addr", fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)).
		Msg("Redis cache connected")

	return &RedisCache{
		client: client,
		ttl:    24 * time.Hour,
	}, nil
}

func ratingKey(entityType models.EntityType, entityID string) string {
	return fmt.Sprintf("rating:%s:%s", entityType, entityID)
}

// SetRating stores the latest rating for an entity
func (c *RedisCache) SetRating(ctx context.Context, entityType models.EntityType, entityID string, rating float64) error {
	key := ratingKey(entityType, entityID)
	value := strconv.FormatFloat(rating, 'g', -1, 64)

	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set rating %s: %w", key, err)
	}
	return nil
}

// GetRating retrieves a cached rating. The boolean reports a cache hit.
func (c *RedisCache) GetRating(ctx context.Context, entityType models.EntityType, entityID string) (float64, bool, error) {
	key := ratingKey(entityType, entityID)

	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		metrics.RecordCacheMiss()
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get rating %s: %w", key, err)
	}
	metrics.RecordCacheHit()

	rating, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cached rating %s=%q: %w", key, value, err)
	}
	return rating, true, nil
}

// PublishBatch writes a set of ledger records as latest-rating keys in
// one pipeline round trip
func (c *RedisCache) PublishBatch(ctx context.Context, records []models.RatingRecord) error {
	if len(records) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, rec := range records {
		key := ratingKey(rec.EntityType, rec.EntityID)
		value := strconv.FormatFloat(rec.Rating, 'g', -1, 64)
		pipe.Set(ctx, key, value, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish rating batch: %w", err)
	}

	log.Debug().
		Int("count", len(records)).
		Msg("Ratings published to cache")

	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
