package session

import (
	"context"
	"fmt"

	"diyclient/internal/cache"
	"diyclient/internal/config"
)

// OpenStorage builds the Storage selected by cfg. The returned close function
// is never nil.
func OpenStorage(ctx context.Context, cfg *config.Config) (Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		return NewMemoryStorage(), noop, nil
	case config.SessionBackendFile:
		return NewFileStorage(cfg.SessionFile), noop, nil
	case config.SessionBackendRedis:
		c := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, RedisNamespace)
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, noop, fmt.Errorf("connect redis session store: %w", err)
		}
		return NewRedisStorage(c), c.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
