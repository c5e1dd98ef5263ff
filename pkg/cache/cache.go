package cache

import (
	"context"
	"time"
)

// Cache is the shared cache contract. Handlers only ever need get/set with a
// TTL; the rest exists so backends stay interchangeable.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	Clear(ctx context.Context) error
	Close() error
}

// Config selects and parameterizes the backend.
type Config struct {
	// "local" (lru), "gocache" or "redis"
	Type  string      `json:"type" env:"CACHE_TYPE"`
	Redis RedisConfig `json:"redis"`
	Local LocalConfig `json:"local"`
}

type RedisConfig struct {
	Addr     string `json:"addr" env:"REDIS_ADDR"`
	Password string `json:"password" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" env:"REDIS_DB"`
}

type LocalConfig struct {
	MaxSize           int           `json:"max_size" env:"LOCAL_CACHE_MAX_SIZE"`
	DefaultExpiration time.Duration `json:"default_expiration"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}
