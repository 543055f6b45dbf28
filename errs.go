package handodds

import "errors"

// Configuration and wiring errors
var (
	// ErrInvalidParameters indicates a nil or malformed argument to a constructor
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInvalidTolerance indicates an out-of-range precision tolerance
	ErrInvalidTolerance = errors.New("invalid precision tolerance: must be greater than 0 and at most 0.5")

	// ErrUnknownCacheBackend indicates an unsupported engine.cache_backend value
	ErrUnknownCacheBackend = errors.New("unknown cache backend: must be memory or redis")

	// ErrInvalidRetryAttempts indicates invalid retry attempts configuration
	ErrInvalidRetryAttempts = errors.New("invalid retry attempts: must be between 0 and 10")

	// ErrInvalidRetryInterval indicates invalid retry interval configuration
	ErrInvalidRetryInterval = errors.New("invalid retry interval: cannot be negative")

	// ErrInvalidTrials indicates a non-positive simulation trial count
	ErrInvalidTrials = errors.New("invalid trials: must be greater than 0")

	// ErrUnknownTab indicates a calculator tab that does not exist
	ErrUnknownTab = errors.New("unknown calculator tab")
)
