package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// goCache wraps patrickmn/go-cache, which handles expiry sweeping itself.
type goCache struct {
	c *gocache.Cache
}

func NewGoCache(config LocalConfig) Cache {
	defaultExp := config.DefaultExpiration
	if defaultExp == 0 {
		defaultExp = 5 * time.Minute
	}
	cleanup := config.CleanupInterval
	if cleanup == 0 {
		cleanup = 10 * time.Minute
	}
	return &goCache{c: gocache.New(defaultExp, cleanup)}
}

func (g *goCache) Get(ctx context.Context, key string) (interface{}, bool) {
	return g.c.Get(key)
}

func (g *goCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	g.c.Set(key, value, expiration)
	return nil
}

func (g *goCache) Delete(ctx context.Context, key string) error {
	g.c.Delete(key)
	return nil
}

func (g *goCache) Exists(ctx context.Context, key string) bool {
	_, ok := g.c.Get(key)
	return ok
}

func (g *goCache) Clear(ctx context.Context) error {
	g.c.Flush()
	return nil
}

func (g *goCache) Close() error { return nil }
