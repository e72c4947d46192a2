package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/govform/licensekit/pkg/eligibility"
)

// CacheConfig configures the read-through registry cache.
type CacheConfig struct {
	// TTL is how long a cached check stays valid. It should be in the format "5m".
	TTL time.Duration `env:"LICENSEKIT_LOOKUP_CACHE_TTL" envDefault:"5m"`
	// KeyPrefix namespaces the cache keys in a shared Redis.
	KeyPrefix string `env:"LICENSEKIT_LOOKUP_CACHE_PREFIX" envDefault:"licensekit:lookup:"`
}

// CachedOption configures a Cached registry.
type CachedOption func(*Cached)

// WithCacheLogger sets the logger for cache degradation warnings.
func WithCacheLogger(log *slog.Logger) CachedOption {
	return func(c *Cached) {
		if log != nil {
			c.log = log
		}
	}
}

// Cached is a read-through Redis cache in front of another registry. Redis
// being down degrades to the inner registry; a cache problem alone never
// fails a check.
type Cached struct {
	inner  eligibility.Registry
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

// NewCached wraps a registry with a Redis read-through cache.
func NewCached(inner eligibility.Registry, client *redis.Client, cfg CacheConfig, opts ...CachedOption) (*Cached, error) {
	if inner == nil {
		return nil, ErrNilRegistry
	}
	if client == nil {
		return nil, ErrNilRedisClient
	}
	c := &Cached{
		inner:  inner,
		client: client,
		ttl:    cfg.TTL,
		prefix: cfg.KeyPrefix,
		log:    slog.Default(),
	}
	if c.ttl <= 0 {
		c.ttl = 5 * time.Minute
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Check implements eligibility.Registry.
func (c *Cached) Check(ctx context.Context, personID uuid.UUID) (eligibility.ExistingLicenseCheck, error) {
	key := c.prefix + personID.String()

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var check eligibility.ExistingLicenseCheck
		if err := json.Unmarshal(payload, &check); err == nil {
			return check, nil
		}
		// A corrupt entry is dropped and refetched.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("registry cache read failed, falling through",
			slog.String("person_id", personID.String()),
			slog.Any("error", err),
		)
	}

	check, err := c.inner.Check(ctx, personID)
	if err != nil {
		return eligibility.ExistingLicenseCheck{}, err
	}

	if payload, err := json.Marshal(check); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn("registry cache write failed",
				slog.String("person_id", personID.String()),
				slog.Any("error", err),
			)
		}
	}
	return check, nil
}

// Invalidate drops a person's cached check, used after their records change.
func (c *Cached) Invalidate(ctx context.Context, personID uuid.UUID) error {
	return c.client.Del(ctx, c.prefix+personID.String()).Err()
}
