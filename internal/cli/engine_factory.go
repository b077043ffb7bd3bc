package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/aretw0/acheron"
	"github.com/aretw0/acheron/internal/config"
	"github.com/aretw0/acheron/internal/metrics"
	"github.com/aretw0/acheron/pkg/adapters/file"
	"github.com/aretw0/acheron/pkg/adapters/memory"
	"github.com/aretw0/acheron/pkg/adapters/redis"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/aretw0/acheron/pkg/persistence/middleware"
	"github.com/aretw0/acheron/pkg/ports"
	"github.com/aretw0/acheron/pkg/session"
)

// Backend is the session storage selected by the configuration.
type Backend struct {
	Manager *session.Manager
	Kind    string
	close   func() error
}

// Close releases the underlying connection, if any.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend builds the store named by cfg.Store. Redis stores get a
// distributed lock on the record key unless cfg.RedisLock is off. Records are
// encrypted when cfg carries an encryption key.
func OpenBackend(cfg config.Config, logger *slog.Logger) (*Backend, error) {
	mopts := []session.Option{session.WithLogger(logger)}

	active, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		return nil, err
	}
	var mws []middleware.Middleware
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback}))
	}
	wrap := func(store ports.KVStore) ports.KVStore {
		return middleware.Chain(store, mws...)
	}

	switch cfg.Store {
	case config.StoreMemory:
		return &Backend{Manager: session.NewManager(wrap(memory.NewStore()), mopts...), Kind: cfg.Store}, nil
	case config.StoreFile:
		return &Backend{Manager: session.NewManager(wrap(file.New(cfg.StoreDir)), mopts...), Kind: cfg.Store}, nil
	case config.StoreRedis:
		ropts := []redis.Option{redis.WithPrefix(cfg.RedisPrefix)}
		if cfg.RedisTTL > 0 {
			ropts = append(ropts, redis.WithTTL(cfg.RedisTTL))
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, ropts...)
		if cfg.RedisLock {
			mopts = append(mopts,
				session.WithLocker(redis.NewLocker(store.Client(), cfg.RedisPrefix)),
				session.WithLockTTL(cfg.RedisLockTTL),
			)
		}
		logger.Debug("using redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB, "lock", cfg.RedisLock, "lock_ttl", cfg.RedisLockTTL)
		return &Backend{Manager: session.NewManager(wrap(store), mopts...), Kind: cfg.Store, close: store.Close}, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// EngineOptions translates cfg into engine options. Extra hooks (metrics, for
// example) are merged after the logging hooks.
func EngineOptions(cfg config.Config, logger *slog.Logger, backend *Backend, hooks ...domain.LifecycleHooks) []acheron.Option {
	all := append([]domain.LifecycleHooks{metrics.LogHooks(logger)}, hooks...)
	opts := []acheron.Option{
		acheron.WithLogger(logger),
		acheron.WithStateKey(cfg.StateKey),
		acheron.WithHints(cfg.Hints),
		acheron.WithLifecycleHooks(domain.MergeHooks(all...)),
	}
	if backend != nil {
		opts = append(opts, acheron.WithSessionManager(backend.Manager))
	}
	if cfg.Seed != 0 {
		r := rand.New(rand.NewPCG(uint64(cfg.Seed), 0))
		opts = append(opts, acheron.WithRandom(r.IntN))
	}
	return opts
}

// NewEngine opens the configured store and scenario. The caller closes the backend.
func NewEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*acheron.Engine, *Backend, error) {
	backend, err := OpenBackend(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	engine, err := acheron.Open(ctx, cfg.Scenario, EngineOptions(cfg, logger, backend, hooks...)...)
	if err != nil {
		_ = backend.Close()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, backend, nil
}
