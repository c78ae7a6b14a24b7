package app

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vmunrayos/multi-workspace/internal/config"
	"github.com/vmunrayos/multi-workspace/internal/logger"
	"github.com/vmunrayos/multi-workspace/internal/session"
)

// setupStore picks the session store for this process: Redis when an
// address is configured (sessions shared across gateway instances),
// otherwise the in-memory store. The store is injected everywhere it
// is used; nothing holds it as a global.
func setupStore(ctx context.Context, cfg config.Config) (session.Store, func() error, error) {

	if cfg.RedisAddr == "" {
		store := session.NewMemoryStore()
		logger.Info("session store ready", map[string]any{"backend": "memory"})
		return store, store.Close, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, nil, err
	}

	logger.Info("session store ready", map[string]any{"backend": "redis"})
	return session.NewRedisStore(client), client.Close, nil
}
