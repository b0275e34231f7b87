package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gdsingh/skybook/config"
	"github.com/gdsingh/skybook/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Redis is the production SearchCache. A redis failure never fails the
// search: the result is computed and returned, only the memoization is
// lost.
type Redis struct {
	client *redis.Client
}

func NewRedis(cfg config.RedisConfig) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

// Client exposes the underlying connection for other redis-backed
// stores (sessions).
func (c *Redis) Client() *redis.Client {
	return c.client
}

func (c *Redis) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]domain.FlightSummary, error)) ([]domain.FlightSummary, error) {
	redisKey := "cache:search:" + key

	data, err := c.client.Get(ctx, redisKey).Bytes()
	if err == nil {
		var flights []domain.FlightSummary
		if err := json.Unmarshal(data, &flights); err == nil {
			return flights, nil
		}
		log.Printf("cache: undecodable entry for %s, recomputing", key)
	} else if err != redis.Nil {
		log.Printf("cache: get %s: %v", key, err)
	}

	results, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(results)
	if err == nil {
		if err := c.client.Set(ctx, redisKey, payload, ttl).Err(); err != nil {
			log.Printf("cache: set %s: %v", key, err)
		}
	}
	return results, nil
}

var _ SearchCache = (*Redis)(nil)
