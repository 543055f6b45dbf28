package handodds

import (
	"math"
	"sync"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/singleflight"
)

// Engine computes binomial coefficients over a shared memo cache. It is safe
// for concurrent use; concurrent callers asking for the same (n, k) share a
// single check-compute-store sequence.
type Engine struct {
	cache   CoefficientCache
	group   singleflight.Group
	logger  Logger
	metrics *EngineMetrics

	mu            sync.RWMutex // 保护 tolerance 与 precisionHook 的热更新
	tolerance     float64
	precisionHook PrecisionHook
}

// Option configures an Engine
type Option func(*Engine)

// WithCache replaces the default in-process cache
func WithCache(cache CoefficientCache) Option {
	return func(e *Engine) {
		if cache != nil {
			e.cache = cache
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPrecisionTolerance overrides DefaultPrecisionTolerance
func WithPrecisionTolerance(tolerance float64) Option {
	return func(e *Engine) { e.tolerance = tolerance }
}

// WithPrecisionHook registers a callback for coefficients that drifted
// beyond the tolerance before rounding
func WithPrecisionHook(hook PrecisionHook) Option {
	return func(e *Engine) { e.precisionHook = hook }
}

// NewEngine creates an engine with its own MemoryCache unless WithCache is given
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cache:     NewMemoryCache(),
		logger:    &DefaultLogger{},
		metrics:   newEngineMetrics(),
		tolerance: DefaultPrecisionTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	if rc, ok := e.cache.(*RedisCache); ok {
		rc.attachMetrics(e.metrics)
	}
	return e
}

// NewEngineFromConfig builds an engine for cfg. When the redis backend is
// selected and redisClient is nil, a client is created from cfg.Redis.
func NewEngineFromConfig(cfg *Config, redisClient *redis.Client, logger Logger) (*Engine, error) {
	if cfg == nil || cfg.Engine == nil {
		return nil, ErrInvalidParameters
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = &DefaultLogger{}
	}

	opts := []Option{
		WithLogger(logger),
		WithPrecisionTolerance(cfg.Engine.PrecisionTolerance),
	}

	if cfg.Engine.CacheBackend == CacheBackendRedis {
		if redisClient == nil {
			redisClient = NewRedisClientFromConfig(cfg.Redis)
		}
		opts = append(opts, WithCache(NewRedisCache(
			redisClient, cfg.Redis.KeyPrefix, cfg.Redis.OpTimeout, cfg.CircuitBreaker, logger,
		)))
	}

	e := NewEngine(opts...)
	logger.Info("Engine created: backend=%s, tolerance=%g", cfg.Engine.CacheBackend, cfg.Engine.PrecisionTolerance)
	return e, nil
}

// ApplyConfig updates the runtime-tunable engine settings. The cache backend
// is fixed for the lifetime of the engine.
func (e *Engine) ApplyConfig(cfg *EngineConfig) error {
	if cfg == nil {
		return ErrInvalidParameters
	}
	if err := cfg.Validate(); err != nil {
		e.logger.Error("ApplyConfig validation failed: %v", err)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.tolerance = cfg.PrecisionTolerance
	e.logger.Info("Engine configuration updated: tolerance=%g", cfg.PrecisionTolerance)
	return nil
}

// Tolerance returns the current precision tolerance
func (e *Engine) Tolerance() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.tolerance
}

type lookup struct {
	value float64
	hit   bool
}

// Combination returns C(n, k). It fails with InvalidInput when n or k is
// negative and returns 0 for k > n. Results, base cases included, are cached
// under the (n, k) pair as given.
//
// Coefficients beyond math.MaxFloat64 (from about n=1030 at k=n/2) come
// back as +Inf and are reported through the precision diagnostic.
func (e *Engine) Combination(n, k int) (float64, error) {
	if _, err := ValidateCombinationParams(CombinationParams{N: n, K: k}); err != nil {
		return 0, err
	}

	key := CombinationKey{N: n, K: k}
	v, _, shared := e.group.Do(key.String(), func() (any, error) {
		if cached, ok := e.cache.Load(key); ok {
			return lookup{value: cached, hit: true}, nil
		}
		value := e.compute(n, k)
		e.cache.Store(key, value)
		return lookup{value: value}, nil
	})

	res := v.(lookup)
	e.metrics.recordLookup(res.hit || shared)
	return res.value, nil
}

// compute evaluates C(n, k) by incremental multiply-divide over the smaller
// of k and n-k, rounding away floating-point drift at the end.
func (e *Engine) compute(n, k int) float64 {
	e.metrics.recordComputation()

	if k == 0 || k == n {
		return 1
	}
	if k < 0 || k > n {
		return 0
	}

	reduced := min(k, n-k)
	result := 1.0
	for i := range reduced {
		result = result * float64(n-i) / float64(i+1)
	}

	rounded := math.Round(result)
	e.checkPrecision(n, k, result, rounded)
	return rounded
}

// checkPrecision is a diagnostic only; the rounded value is always returned.
func (e *Engine) checkPrecision(n, k int, raw, rounded float64) bool {
	e.mu.RLock()
	tolerance, hook := e.tolerance, e.precisionHook
	e.mu.RUnlock()

	finite := !math.IsInf(raw, 0) && !math.IsNaN(raw)
	if finite && math.Abs(raw-rounded) <= tolerance {
		return false
	}

	e.metrics.recordPrecisionWarning()
	if finite {
		e.logger.Info("Non-integral intermediate for C(%d,%d): raw=%v rounded=%v", n, k, raw, rounded)
	} else {
		e.logger.Error("C(%d,%d) exceeds the float64 range, returning %v", n, k, rounded)
	}
	if hook != nil {
		hook(n, k, raw, rounded)
	}
	return true
}

// Metrics returns a snapshot of the engine counters
func (e *Engine) Metrics() EngineMetrics { return e.metrics.snapshot() }

// ResetMetrics zeroes the engine counters; cached coefficients are kept
func (e *Engine) ResetMetrics() { e.metrics.Reset() }

// CacheLen returns the number of coefficients cached for this process
func (e *Engine) CacheLen() int { return e.cache.Len() }
