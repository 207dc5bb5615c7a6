package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/models"
)

const redisKeyPrefix = "storefront:products:"

// Redis is a ProductCache backed by a shared Redis instance. Any Redis or
// codec error degrades to a cache miss so catalog reads stay fail-soft.
type Redis struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedis creates a Redis-backed product cache.
func NewRedis(client *redis.Client, logger *logrus.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

// Get returns the cached list for key, treating errors as a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]models.Product, bool) {
	val, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.WithError(err).Debug("product cache read failed")
		}
		return nil, false
	}

	var items []models.Product
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		r.logger.WithError(err).Debug("product cache entry is malformed")
		return nil, false
	}
	return items, true
}

// Set stores a list under key for the given TTL. Write failures are logged
// and otherwise ignored.
func (r *Redis) Set(ctx context.Context, key string, items []models.Product, ttl time.Duration) {
	data, err := json.Marshal(items)
	if err != nil {
		r.logger.WithError(err).Debug(fmt.Sprintf("product cache marshal failed for %s", key))
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		r.logger.WithError(err).Debug("product cache write failed")
	}
}
