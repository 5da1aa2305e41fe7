package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/stashkeeper-backend/pkg/config"
	"github.com/angelmondragon/stashkeeper-backend/pkg/logger"
	"github.com/angelmondragon/stashkeeper-backend/pkg/metrics"
	"github.com/angelmondragon/stashkeeper-backend/pkg/redis"
	"go.uber.org/multierr"
)

// Cache serves reads from a backend and invalidates them by tag. Backend
// failures never fail a read or a write: reads fall through to the loader and
// invalidation failures are logged.
type Cache struct {
	backend Backend
	tiers   Tiers
	logg    *logger.Logger
	metrics *metrics.CacheMetrics
	now     func() time.Time
}

// Options wires the optional collaborators of a Cache.
type Options struct {
	Tiers   Tiers
	Logger  *logger.Logger
	Metrics *metrics.CacheMetrics
	Now     func() time.Time
}

// New builds a Cache over backend. A nil backend behaves like Disabled.
func New(backend Backend, opts Options) *Cache {
	if opts.Tiers == (Tiers{}) {
		opts.Tiers = DefaultTiers()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		backend: backend,
		tiers:   opts.Tiers,
		logg:    opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
}

// Disabled returns a Cache that always calls the loader.
func Disabled() *Cache {
	return New(nil, Options{})
}

// NewFromConfig selects the backend named by cfg.Backend. redisClient may be
// nil unless the redis backend is selected.
func NewFromConfig(cfg config.CacheConfig, redisClient *redis.Client, opts Options) (*Cache, error) {
	opts.Tiers = TiersFromConfig(cfg)
	switch cfg.Backend {
	case config.CacheBackendOff:
		return New(nil, opts), nil
	case config.CacheBackendMemory, "":
		return New(NewMemoryBackend(), opts), nil
	case config.CacheBackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("cache backend %q requires a redis client", cfg.Backend)
		}
		return New(NewRedisBackend(redisClient, cfg.TagTTL), opts), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Enabled reports whether reads are cached at all.
func (c *Cache) Enabled() bool {
	return c != nil && c.backend != nil
}

// BackendName names the active backend, "off" when disabled.
func (c *Cache) BackendName() string {
	if !c.Enabled() {
		return config.CacheBackendOff
	}
	return c.backend.Name()
}

// Ping checks the backend; a disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.backend.Ping(ctx)
}

// Fetch returns the cached result for shape or calls load and stores what it
// returns. Tag versions are read before load runs, so a write that commits
// while load is in flight leaves the stored entry already stale.
func Fetch[T any](ctx context.Context, c *Cache, shape QueryShape, load func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}
	tier := shape.Tier()
	key := shape.Key()
	tags := TagsFor(shape)

	versions, err := c.backend.TagVersions(ctx, tags)
	if err != nil {
		c.degrade(ctx, tier, "cache tag read failed", err)
		return load(ctx)
	}

	entry, found, err := c.backend.Load(ctx, key)
	if err != nil {
		c.degrade(ctx, tier, "cache load failed", err)
		return load(ctx)
	}
	if found && entry.Live(c.now(), versions) {
		var cached T
		if err := json.Unmarshal(entry.Value, &cached); err == nil {
			c.metrics.ObserveRequest(string(tier), metrics.CacheHit)
			return cached, nil
		}
	}
	c.metrics.ObserveRequest(string(tier), metrics.CacheMiss)

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.warn(ctx, "cache encode failed", err)
		return value, nil
	}
	stored := Entry{
		Value:     payload,
		ExpiresAt: c.now().Add(c.tiers.TTL(tier)),
		Tags:      versions,
	}
	if err := c.backend.Store(ctx, key, stored); err != nil {
		c.warn(ctx, "cache store failed", err)
	}
	return value, nil
}

// Invalidate bumps every tag so entries recorded under an older version stop
// being served. Every tag is attempted; the combined error is logged and
// returned for callers that want to report it.
func (c *Cache) Invalidate(ctx context.Context, tags ...Tag) error {
	if !c.Enabled() || len(tags) == 0 {
		return nil
	}
	var errs error
	for _, tag := range tags {
		if err := c.backend.Bump(ctx, tag); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		c.metrics.IncInvalidation(tag.Prefix())
	}
	if errs != nil && c.logg != nil {
		c.logg.Error(c.logg.WithField(ctx, "tags", tags), "cache invalidation failed", errs)
	}
	return errs
}

func (c *Cache) degrade(ctx context.Context, tier Tier, msg string, err error) {
	c.metrics.ObserveRequest(string(tier), metrics.CacheError)
	c.warn(ctx, msg, err)
}

func (c *Cache) warn(ctx context.Context, msg string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), msg)
}
