package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/zeebo/xxh3"
)

type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

// RankingCache keeps ranking query results in memcached for ttl.
type RankingCache struct {
	mc  memcacheClient
	ttl time.Duration
}

func NewRankingCache(mc *memcache.Client, ttl time.Duration) *RankingCache {
	return &RankingCache{mc: mc, ttl: ttl}
}

func cacheKey(key string) string {
	return "misblock:" + strconv.FormatUint(xxh3.HashString(key), 16)
}

func (c *RankingCache) Load(ctx context.Context, key string, dst any) bool {
	item, err := c.mc.Get(cacheKey(key))
	if err != nil {
		if err != memcache.ErrCacheMiss {
			slog.WarnContext(ctx, "ranking cache read failed", slog.String("error", err.Error()), slog.String("module", "cache"))
		}
		return false
	}
	if err := json.Unmarshal(item.Value, dst); err != nil {
		return false
	}
	return true
}

func (c *RankingCache) Store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	err = c.mc.Set(&memcache.Item{
		Key:        cacheKey(key),
		Value:      data,
		Expiration: int32(c.ttl.Seconds()),
	})
	if err != nil {
		slog.WarnContext(ctx, "ranking cache write failed", slog.String("error", err.Error()), slog.String("module", "cache"))
	}
}
