package handodds

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// errCacheMiss marks an absent Redis field inside the breaker
var errCacheMiss = errors.New("coefficient not cached")

// RedisCache is a write-through two-tier CoefficientCache. Coefficients are
// served from process memory first and shared between processes through a
// single Redis hash. Redis failures never fail a calculation: they are logged,
// counted, and the caller recomputes.
type RedisCache struct {
	local       *MemoryCache
	redisClient *redis.Client
	hashKey     string
	opTimeout   time.Duration
	breaker     *redisBreaker
	logger      Logger
	metrics     *EngineMetrics
}

// NewRedisCache creates a Redis-backed cache. keyPrefix defaults to
// DefaultKeyPrefix and opTimeout to DefaultRedisOpTimeout when zero.
func NewRedisCache(
	redisClient *redis.Client, keyPrefix string, opTimeout time.Duration,
	breakerConfig *CircuitBreakerConfig, logger Logger,
) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if opTimeout <= 0 {
		opTimeout = DefaultRedisOpTimeout
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	return &RedisCache{
		local:       NewMemoryCache(),
		redisClient: redisClient,
		hashKey:     keyPrefix + CoefficientHashKey,
		opTimeout:   opTimeout,
		breaker:     newRedisBreaker(breakerConfig, logger),
		logger:      logger,
	}
}

// attachMetrics lets the owning engine count Redis failures
func (c *RedisCache) attachMetrics(m *EngineMetrics) { c.metrics = m }

// Load checks process memory, then the shared Redis hash
func (c *RedisCache) Load(key CombinationKey) (float64, bool) {
	if v, ok := c.local.Load(key); ok {
		return v, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	raw, err := c.breaker.execute(func() (any, error) {
		val, err := c.redisClient.HGet(ctx, c.hashKey, key.String()).Result()
		if errors.Is(err, redis.Nil) {
			return nil, errCacheMiss
		}
		return val, err
	})
	if errors.Is(err, errCacheMiss) {
		return 0, false
	}
	if err != nil {
		c.recordError("load", key, err)
		return 0, false
	}

	v, err := strconv.ParseFloat(raw.(string), 64)
	if err != nil {
		c.recordError("decode", key, fmt.Errorf("corrupt cached value %q: %w", raw, err))
		return 0, false
	}

	c.local.Store(key, v)
	return v, true
}

// Store writes process memory and, if absent, the shared Redis hash
func (c *RedisCache) Store(key CombinationKey, value float64) {
	c.local.Store(key, value)

	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	_, err := c.breaker.execute(func() (any, error) {
		return c.redisClient.HSetNX(ctx, c.hashKey, key.String(), formatCoefficient(value)).Result()
	})
	if err != nil {
		c.recordError("store", key, err)
	}
}

// Len returns the number of coefficients held in process memory
func (c *RedisCache) Len() int { return c.local.Len() }

// SharedLen returns the number of coefficients in the Redis hash
func (c *RedisCache) SharedLen(ctx context.Context) (int64, error) {
	return c.redisClient.HLen(ctx, c.hashKey).Result()
}

// Warm copies every shared coefficient into process memory.
func (c *RedisCache) Warm(ctx context.Context) (int, error) {
	entries, err := c.redisClient.HGetAll(ctx, c.hashKey).Result()
	if err != nil {
		return 0, fmt.Errorf("warm coefficient cache from %s: %w", c.hashKey, err)
	}

	loaded := 0
	for field, raw := range entries {
		key, err := ParseCombinationKey(field)
		if err != nil {
			c.logger.Error("Skipping malformed coefficient field %q: %v", field, err)
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.logger.Error("Skipping corrupt coefficient %s=%q: %v", field, raw, err)
			continue
		}
		c.local.Store(key, v)
		loaded++
	}

	c.logger.Debug("Warmed %d coefficients from %s", loaded, c.hashKey)
	return loaded, nil
}

// BreakerState reports the circuit breaker state for diagnostics
func (c *RedisCache) BreakerState() string { return c.breaker.state() }

func (c *RedisCache) recordError(op string, key CombinationKey, err error) {
	if c.metrics != nil {
		c.metrics.recordCacheError()
	}
	c.logger.Error("Redis coefficient cache %s failed for C(%s): %v", op, key, err)
}

func formatCoefficient(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
