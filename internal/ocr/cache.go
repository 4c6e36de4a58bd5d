package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"docverify/internal/ocr/metrics"
)

const (
	cacheKeyPrefix  = "ocr:"
	defaultCacheTTL = 24 * time.Hour
)

// cacheClient is the subset of go-redis used by the cache.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedEngine memoizes recognition results in Redis keyed by the SHA-256 of
// the document bytes. Blank results are never stored, and cache failures
// fall through to the wrapped engine.
type CachedEngine struct {
	next    Engine
	client  cacheClient
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type CacheOption func(*CachedEngine)

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedEngine) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedEngine) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *CachedEngine) {
		c.metrics = m
	}
}

func NewCached(next Engine, client cacheClient, opts ...CacheOption) *CachedEngine {
	c := &CachedEngine{
		next:   next,
		client: client,
		ttl:    defaultCacheTTL,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedEngine) Name() string {
	return c.next.Name()
}

func (c *CachedEngine) Recognize(ctx context.Context, data []byte) (Result, error) {
	key := CacheKey(c.next.Name(), data)

	if res, ok := c.lookup(ctx, key); ok {
		return res, nil
	}

	res, err := c.next.Recognize(ctx, data)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(res.Text) != "" {
		c.store(ctx, key, res)
	}
	return res, nil
}

func (c *CachedEngine) lookup(ctx context.Context, key string) (Result, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.IncrementCacheMiss()
		return Result{}, false
	}
	if err != nil {
		c.metrics.IncrementCacheError()
		c.logger.WarnContext(ctx, "ocr cache read failed", "error", err)
		return Result{}, false
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		c.metrics.IncrementCacheError()
		c.logger.WarnContext(ctx, "ocr cache entry corrupt", "error", err)
		return Result{}, false
	}
	c.metrics.IncrementCacheHit()
	return res, true
}

func (c *CachedEngine) store(ctx context.Context, key string, res Result) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.metrics.IncrementCacheError()
		c.logger.WarnContext(ctx, "ocr cache write failed", "error", err)
	}
}

// CacheKey derives the cache key for an engine and document.
func CacheKey(engine string, data []byte) string {
	sum := sha256.Sum256(data)
	return cacheKeyPrefix + engine + ":" + hex.EncodeToString(sum[:])
}
