package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"realty-analyzer/llm"
	"realty-analyzer/metrics"
	"realty-analyzer/utils"
)

// Store is a string key/value store with expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore implements Store on top of a go-redis client.
type RedisStore struct {
	rc *redis.Client
}

// NewRedisStore returns nil when addr is empty, meaning caching is disabled.
func NewRedisStore(addr, password string, db int) *RedisStore {
	if addr == "" {
		return nil
	}
	return &RedisStore{rc: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})}
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rc.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rc.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rc.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.rc.Close()
}

// CachedGenerator serves repeated prompts from a Store and only calls the
// wrapped Generator on a miss. Store failures are logged and bypassed.
type CachedGenerator struct {
	next   llm.Generator
	store  Store
	ttl    time.Duration
	logger *utils.Logger
}

// NewCachedGenerator wraps next with store.
func NewCachedGenerator(next llm.Generator, store Store, ttl time.Duration, logger *utils.Logger) *CachedGenerator {
	return &CachedGenerator{next: next, store: store, ttl: ttl, logger: logger}
}

func (g *CachedGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	key := summaryKey(prompt)

	if v, ok, err := g.store.Get(ctx, key); err != nil {
		g.logger.Warn("[cache] summary lookup failed: %v", err)
	} else if ok {
		metrics.SummaryCacheHitsTotal.Inc()
		return v, nil
	}
	metrics.SummaryCacheMissesTotal.Inc()

	text, err := g.next.Generate(ctx, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	if err := g.store.Set(ctx, key, text, g.ttl); err != nil {
		g.logger.Warn("[cache] summary store failed: %v", err)
	}
	return text, nil
}

func summaryKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "summary:" + hex.EncodeToString(sum[:])
}
