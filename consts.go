package handodds

import "time"

const (
	// DefaultPrecisionTolerance is the maximum drift between the incremental
	// floating-point coefficient and its rounded value before it is flagged
	DefaultPrecisionTolerance = 1e-10

	// MaxPrecisionTolerance bounds the configurable tolerance
	MaxPrecisionTolerance = 0.5

	// CacheBackendMemory keeps coefficients in process memory only
	CacheBackendMemory = "memory"

	// CacheBackendRedis shares coefficients through a Redis hash
	CacheBackendRedis = "redis"

	// DefaultKeyPrefix is the prefix for every Redis key the library writes
	DefaultKeyPrefix = "handodds:"

	// CoefficientHashKey is the Redis hash holding cached coefficients
	CoefficientHashKey = "coefficients"

	// SessionKeyPrefix is the key segment for persisted session inputs
	SessionKeyPrefix = "session:"

	// DefaultRedisOpTimeout bounds a single Redis call made on behalf of a
	// synchronous calculation
	DefaultRedisOpTimeout = 50 * time.Millisecond

	// DefaultSessionStateTTL is the TTL for persisted session inputs
	DefaultSessionStateTTL = 30 * 24 * time.Hour

	// DefaultRetryAttempts is the default number of retry attempts
	DefaultRetryAttempts = 3

	// DefaultRetryInterval is the default interval between retry attempts
	DefaultRetryInterval = 100 * time.Millisecond

	// MaxRetryAttempts is the maximum number of retry attempts allowed
	MaxRetryAttempts = 10

	// MaxSerializationSize is the maximum allowed size for persisted session data
	MaxSerializationSize = 64 * 1024
)

const (
	// DefaultCircuitBreakerName is the default name for Circuit Breaker
	DefaultCircuitBreakerName = "handodds-redis"

	// DefaultCircuitBreakerMaxRequests is the default max requests
	DefaultCircuitBreakerMaxRequests = 3

	// DefaultCircuitBreakerInterval is the default interval
	DefaultCircuitBreakerInterval = 60 * time.Second

	// DefaultCircuitBreakerTimeout is the default timeout
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// DefaultCircuitBreakerFailureRatio is the default failure ratio
	DefaultCircuitBreakerFailureRatio = 0.6

	// DefaultCircuitBreakerMinRequests is the default min requests
	DefaultCircuitBreakerMinRequests = 3

	// DefaultCircuitBreakerOnStateChange is the default on state change
	DefaultCircuitBreakerOnStateChange = true
)

const (
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 20
	DefaultRedisMinIdleConns = 2
	DefaultRedisMaxRetries   = 1
	DefaultRedisDialTimeout  = 2 * time.Second
	DefaultRedisReadTimeout  = 500 * time.Millisecond
	DefaultRedisWriteTimeout = 500 * time.Millisecond
	DefaultRedisPoolTimeout  = 1 * time.Second
)

// Default calculator inputs, matching a 60-card deck with a 7-card opening hand.
const (
	DefaultDeckSize    = 60
	DefaultHandSize    = 7
	DefaultGoodCount   = 4
	DefaultBadCount    = 1
	DefaultMarkedCount = 4
)
