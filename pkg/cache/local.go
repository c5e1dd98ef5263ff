package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type localItem struct {
	value      interface{}
	expiration time.Time
}

// localCache is an LRU-bounded in-process cache with per-key expiry.
type localCache struct {
	lru *lru.Cache[string, localItem]
}

func NewLocalCache(config LocalConfig) Cache {
	size := config.MaxSize
	if size <= 0 {
		size = 1000
	}
	c, _ := lru.New[string, localItem](size)
	return &localCache{lru: c}
}

func (lc *localCache) Get(ctx context.Context, key string) (interface{}, bool) {
	item, ok := lc.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !item.expiration.IsZero() && time.Now().After(item.expiration) {
		lc.lru.Remove(key)
		return nil, false
	}
	return item.value, true
}

// Set stores a value with a TTL. A zero expiration never expires; a negative
// one is already expired.
func (lc *localCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	item := localItem{value: value}
	if expiration != 0 {
		item.expiration = time.Now().Add(expiration)
	}
	lc.lru.Add(key, item)
	return nil
}

func (lc *localCache) Delete(ctx context.Context, key string) error {
	lc.lru.Remove(key)
	return nil
}

func (lc *localCache) Exists(ctx context.Context, key string) bool {
	_, ok := lc.Get(ctx, key)
	return ok
}

func (lc *localCache) Clear(ctx context.Context) error {
	lc.lru.Purge()
	return nil
}

func (lc *localCache) Close() error { return nil }
