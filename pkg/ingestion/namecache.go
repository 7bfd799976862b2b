package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NameCache remembers the last station name the feed reported so an empty or
// failed refresh can still show a proper name.
type NameCache interface {
	Get(ctx context.Context, stationID string) (string, bool)
	Set(ctx context.Context, stationID string, name string)
}

type RedisNameCache struct {
	Cache *cache.Cache[string]
}

func NewRedisNameCache(client *redis.Client) *RedisNameCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(90*time.Minute))

	return &RedisNameCache{
		Cache: cache.New[string](redisStore),
	}
}

func (n *RedisNameCache) Get(ctx context.Context, stationID string) (string, bool) {
	name, err := n.Cache.Get(ctx, nameCacheKey(stationID))
	if err != nil || name == "" {
		return "", false
	}

	return name, true
}

func (n *RedisNameCache) Set(ctx context.Context, stationID string, name string) {
	if err := n.Cache.Set(ctx, nameCacheKey(stationID), name); err != nil {
		log.Debug().Err(err).Str("station", stationID).Msg("Failed to cache station name")
	}
}

func nameCacheKey(stationID string) string {
	return fmt.Sprintf("tayobell:stationname:%s", stationID)
}
