// internal/trends/cache.go
package trends

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"saas-validator/internal/common/config"
	"saas-validator/internal/common/logger"
)

const cacheKeyPrefix = "trends:"

// Cache is a TTL-bounded redis cache in front of provider requests.
// Cache failures fall through to HTTP; they are never surfaced.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewCache builds the optional trends response cache. Returns nil when
// caching is disabled so the gateway can skip it entirely.
func NewCache(cfg config.TrendsConfig, redisCfg config.RedisConfig, log logger.Logger) *Cache {
	if !cfg.CacheEnabled || redisCfg.Address == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         redisCfg.Address,
		Password:     redisCfg.Password,
		DB:           redisCfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &Cache{
		client: rdb,
		ttl:    time.Duration(cfg.CacheTTL) * time.Second,
		logger: log.With(map[string]interface{}{"component": "trends-cache"}),
	}
}

func (rc *Cache) Get(ctx context.Context, key string) (Data, bool) {
	raw, err := rc.client.Get(ctx, cacheKeyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			rc.logger.Warn("cache get failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		rc.logger.Warn("cache entry corrupt, ignoring", map[string]interface{}{"key": key})
		return nil, false
	}
	return data, true
}

func (rc *Cache) Set(ctx context.Context, key string, data Data) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := rc.client.Set(ctx, cacheKeyPrefix+key, raw, rc.ttl).Err(); err != nil {
		rc.logger.Warn("cache set failed", map[string]interface{}{"error": err.Error()})
	}
}

func (rc *Cache) Close() {
	if rc.client != nil {
		_ = rc.client.Close()
	}
}
