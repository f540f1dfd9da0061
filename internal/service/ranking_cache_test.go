package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/misblock/internal/domain"
)

type fakeMemcache struct {
	items map[string]*memcache.Item
	err   error
}

func (f *fakeMemcache) Get(key string) (*memcache.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return item, nil
}

func (f *fakeMemcache) Set(item *memcache.Item) error {
	if f.err != nil {
		return f.err
	}
	f.items[item.Key] = item
	return nil
}

func TestRankingCache(t *testing.T) {
	mc := &fakeMemcache{items: map[string]*memcache.Item{}}
	c := &RankingCache{mc: mc, ttl: 30 * time.Second}
	ctx := context.Background()

	var got []domain.Hospital
	assert.False(t, c.Load(ctx, "ranking:hospitals:16", &got))

	c.Store(ctx, "ranking:hospitals:16", []domain.Hospital{{Owner: "hospitala", ServiceWeight: 50}})
	require.Len(t, mc.items, 1)
	for key, item := range mc.items {
		assert.Equal(t, cacheKey("ranking:hospitals:16"), key)
		assert.Equal(t, int32(30), item.Expiration)
	}

	require.True(t, c.Load(ctx, "ranking:hospitals:16", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "hospitala", got[0].Owner)

	assert.NotEqual(t, cacheKey("ranking:hospitals:16"), cacheKey("ranking:hospitals:8"))

	mc.err = errors.New("connection refused")
	assert.False(t, c.Load(ctx, "ranking:hospitals:16", &got))
	c.Store(ctx, "ranking:hospitals:16", got)
}
