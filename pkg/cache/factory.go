package cache

import (
	"strings"

	"github.com/cresszm/cress/pkg/errors"
)

// NewCache builds a cache for the configured backend.
func NewCache(config Config) (Cache, error) {
	switch strings.ToLower(config.Type) {
	case "", "local":
		return NewLocalCache(config.Local), nil
	case "gocache":
		return NewGoCache(config.Local), nil
	case "redis":
		return NewRedisCache(config.Redis)
	default:
		return nil, errors.Errorf("unsupported cache type: %s", config.Type)
	}
}
