package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/metrics"
)

// Store is the key/value backend of the response cache.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore keeps cached replies in Redis.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// ConnectRedis opens a client and pings it.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

type validatorKey struct{}

// WithValidator attaches the caller's reply check to ctx. CachedGenerator
// only stores, and only serves, replies that pass it.
func WithValidator(ctx context.Context, check func(reply string) error) context.Context {
	return context.WithValue(ctx, validatorKey{}, check)
}

// validate runs the check attached to ctx. Without one, a reply must at
// least carry a JSON object.
func validate(ctx context.Context, reply string) error {
	if check, ok := ctx.Value(validatorKey{}).(func(string) error); ok && check != nil {
		return check(reply)
	}
	_, err := ExtractJSONObject(reply)
	return err
}

// CachedGenerator serves repeated prompts from a Store. Cache errors never
// fail a call; they only bypass the cache. Replies the caller cannot use
// are returned but never stored.
type CachedGenerator struct {
	next      Generator
	store     Store
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
}

func WithCache(next Generator, store Store, namespace string, ttl time.Duration, logger *zap.Logger) *CachedGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGenerator{
		next:      next,
		store:     store,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger.Named("llm-cache"),
	}
}

func (c *CachedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.key(prompt)

	if val, ok, err := c.store.Get(ctx, key); err != nil {
		metrics.BackendCacheTotal.WithLabelValues("error").Inc()
		c.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
	} else if ok && validate(ctx, val) == nil {
		metrics.BackendCacheTotal.WithLabelValues("hit").Inc()
		return val, nil
	} else {
		metrics.BackendCacheTotal.WithLabelValues("miss").Inc()
	}

	out, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := validate(ctx, out); err != nil {
		metrics.BackendCacheTotal.WithLabelValues("rejected").Inc()
		c.logger.Debug("reply not cached", zap.String("key", key), zap.Error(err))
		return out, nil
	}
	if err := c.store.Set(ctx, key, out, c.ttl); err != nil {
		c.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

func (c *CachedGenerator) key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("llm:cache:%s:%s", c.namespace, hex.EncodeToString(sum[:]))
}
