// Package redis provides a Redis read-through cache in front of an
// identity lookup, so reference tokens do not hit the database on every
// request.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sazzler/api-gateway/token"
	"go.uber.org/zap"
)

// Config contains configuration options for the identity cache
type Config struct {
	// Client is the Redis client instance
	Client *redis.Client

	// Next resolves references that are not cached
	Next token.IdentityLookup

	// KeyPrefix is the prefix for all Redis keys
	// Default: "authgate:identity:"
	KeyPrefix string

	// TTL bounds how long a resolved identity is served from cache
	// Default: 5m
	TTL time.Duration
}

// IdentityCache implements token.IdentityLookup on top of another lookup
type IdentityCache struct {
	client    *redis.Client
	next      token.IdentityLookup
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// cachedIdentity is the structure stored in Redis
type cachedIdentity struct {
	SubjectID   string    `json:"subject_id"`
	Authorities []string  `json:"authorities"`
	CachedAt    time.Time `json:"cached_at"`
}

// NewIdentityCache creates a new Redis-backed identity cache
func NewIdentityCache(config Config, logger *zap.Logger) (*IdentityCache, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.Next == nil {
		return nil, fmt.Errorf("next identity lookup is required")
	}

	if config.KeyPrefix == "" {
		config.KeyPrefix = "authgate:identity:"
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}

	return &IdentityCache{
		client:    config.Client,
		next:      config.Next,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
		logger:    logger,
	}, nil
}

// LookupIdentity serves the identity from Redis or resolves and caches it.
// Redis failures degrade to the wrapped lookup. Not-found results are not cached.
func (c *IdentityCache) LookupIdentity(ctx context.Context, reference string) (*token.Identity, error) {
	key := c.buildKey(reference)

	identity, err := c.get(ctx, key)
	if err != nil {
		c.logger.Warn("identity cache read failed",
			zap.String("key", key),
			zap.Error(err))
	} else if identity != nil {
		return identity, nil
	}

	identity, err = c.next.LookupIdentity(ctx, reference)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, key, identity); err != nil {
		c.logger.Warn("identity cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}
	return identity, nil
}

// Invalidate drops the cached identity for reference
func (c *IdentityCache) Invalidate(ctx context.Context, reference string) error {
	key := c.buildKey(reference)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Ping checks that Redis is reachable
func (c *IdentityCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *IdentityCache) get(ctx context.Context, key string) (*token.Identity, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	var item cachedIdentity
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached identity: %w", err)
	}

	return &token.Identity{
		SubjectID:   item.SubjectID,
		Authorities: item.Authorities,
	}, nil
}

func (c *IdentityCache) set(ctx context.Context, key string, identity *token.Identity) error {
	if identity == nil {
		return nil
	}

	raw, err := json.Marshal(cachedIdentity{
		SubjectID:   identity.SubjectID,
		Authorities: identity.Authorities,
		CachedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (c *IdentityCache) buildKey(reference string) string {
	return c.keyPrefix + reference
}
