package session

import (
	"context"
	"fmt"
)

type Config struct {
	Provider              string
	RedisConnectionString string
	// MemoryLimit caps the memory provider; zero means DefaultMemoryLimit.
	MemoryLimit int
}

// NewStore returns the session store named by cfg.Provider.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Provider {
	case "", "memory":
		return NewMemoryStoreWithLimit(cfg.MemoryLimit), nil
	case "redis":
		return NewRedisStore(ctx, cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported session store provider: %s", cfg.Provider)
	}
}
