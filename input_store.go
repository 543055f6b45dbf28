package handodds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// PersistedInputs are the Session fields that survive a restart
type PersistedInputs struct {
	ActiveTab Tab            `json:"active_tab"`
	BadHand   BadHandParams  `json:"bad_hand"`
	Mulligan  MulliganParams `json:"mulligan"`
	UpdatedAt int64          `json:"updated_at"`
}

// Validate rejects inputs that no Session could have produced
func (p *PersistedInputs) Validate() error {
	if p == nil {
		return ErrInvalidParameters
	}
	if !p.ActiveTab.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTab, p.ActiveTab)
	}
	return nil
}

// serializeInputs serializes PersistedInputs to JSON bytes
func serializeInputs(inputs *PersistedInputs) ([]byte, error) {
	if err := inputs.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(inputs)
	if err != nil {
		return nil, ErrSerializationFailed.WithCause(err)
	}
	if len(data) > MaxSerializationSize {
		return nil, ErrSerializationFailed.WithDetails(
			fmt.Sprintf("size %d bytes exceeds maximum %d bytes", len(data), MaxSerializationSize))
	}
	return data, nil
}

// deserializeInputs deserializes JSON bytes back to PersistedInputs
func deserializeInputs(data []byte) (*PersistedInputs, error) {
	if len(data) == 0 {
		return nil, ErrDeserializationFailed.WithDetails("empty payload")
	}

	var inputs PersistedInputs
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, ErrDeserializationFailed.WithCause(err)
	}
	if err := inputs.Validate(); err != nil {
		return nil, ErrDeserializationFailed.WithCause(err)
	}
	return &inputs, nil
}

// MemoryInputStore keeps persisted inputs in process memory
type MemoryInputStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryInputStore creates an empty in-memory store
func NewMemoryInputStore() *MemoryInputStore {
	return &MemoryInputStore{items: make(map[string][]byte)}
}

// Load returns the inputs saved for sessionID
func (s *MemoryInputStore) Load(_ context.Context, sessionID string) (*PersistedInputs, error) {
	s.mu.RLock()
	data, ok := s.items[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrStateNotFound
	}
	return deserializeInputs(data)
}

// Save stores a serialized copy of inputs
func (s *MemoryInputStore) Save(_ context.Context, sessionID string, inputs *PersistedInputs) error {
	if sessionID == "" {
		return ErrInvalidParameters
	}
	data, err := serializeInputs(inputs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[sessionID] = data
	return nil
}

// Delete removes the inputs saved for sessionID
func (s *MemoryInputStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, sessionID)
	return nil
}

// RedisInputStore persists session inputs as JSON strings with a TTL
type RedisInputStore struct {
	redisClient    *redis.Client
	keyPrefix      string
	ttl            time.Duration
	retryAttempts  int
	retryBaseDelay time.Duration
	breaker        *redisBreaker
	logger         Logger
}

// NewRedisInputStore creates a Redis-backed InputStore
func NewRedisInputStore(
	redisClient *redis.Client, keyPrefix string, config *SessionConfig,
	breakerConfig *CircuitBreakerConfig, logger Logger,
) *RedisInputStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if config == nil {
		config = DefaultSessionConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	return &RedisInputStore{
		redisClient:    redisClient,
		keyPrefix:      keyPrefix,
		ttl:            config.StateTTL,
		retryAttempts:  config.RetryAttempts,
		retryBaseDelay: config.RetryInterval,
		breaker:        newRedisBreaker(breakerConfig, logger),
		logger:         logger,
	}
}

// sessionKey generates the Redis key for a session
func (s *RedisInputStore) sessionKey(sessionID string) string {
	return s.keyPrefix + SessionKeyPrefix + sessionID
}

// Load reads the inputs saved for sessionID
func (s *RedisInputStore) Load(ctx context.Context, sessionID string) (*PersistedInputs, error) {
	if sessionID == "" {
		return nil, ErrInvalidParameters
	}
	key := s.sessionKey(sessionID)

	var data []byte
	err := s.executeWithRetry(ctx, "load["+key+"]", func() error {
		_, err := s.breaker.execute(func() (any, error) {
			b, err := s.redisClient.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil, errCacheMiss
			}
			data = b
			return nil, err
		})
		return err
	})
	if errors.Is(err, errCacheMiss) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		s.logger.Error("Failed to load session inputs: key=%s, error=%v", key, err)
		return nil, ErrStateLoadFailure.WithCause(err)
	}

	return deserializeInputs(data)
}

// Save writes inputs for sessionID with the configured TTL
func (s *RedisInputStore) Save(ctx context.Context, sessionID string, inputs *PersistedInputs) error {
	if sessionID == "" {
		return ErrInvalidParameters
	}
	data, err := serializeInputs(inputs)
	if err != nil {
		return err
	}
	key := s.sessionKey(sessionID)

	err = s.executeWithRetry(ctx, "save["+key+"]", func() error {
		_, err := s.breaker.execute(func() (any, error) {
			return nil, s.redisClient.Set(ctx, key, data, s.ttl).Err()
		})
		return err
	})
	if err != nil {
		s.logger.Error("Failed to save session inputs: key=%s, size=%d bytes, error=%v", key, len(data), err)
		return ErrStateSaveFailure.WithCause(err)
	}

	s.logger.Debug("Saved session inputs: key=%s, size=%d bytes, ttl=%v", key, len(data), s.ttl)
	return nil
}

// Delete removes the inputs saved for sessionID
func (s *RedisInputStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidParameters
	}
	key := s.sessionKey(sessionID)

	err := s.executeWithRetry(ctx, "delete["+key+"]", func() error {
		_, err := s.breaker.execute(func() (any, error) {
			return nil, s.redisClient.Del(ctx, key).Err()
		})
		return err
	})
	if err != nil {
		s.logger.Error("Failed to delete session inputs: key=%s, error=%v", key, err)
		return err
	}
	return nil
}

// executeWithRetry executes a Redis operation with retry logic using exponential backoff
func (s *RedisInputStore) executeWithRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	startTime := time.Now()

	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			// baseDelay * 2^(attempt-1), capped
			delay := time.Duration(1<<(attempt-1)) * s.retryBaseDelay
			if maxDelay := 5 * time.Second; delay > maxDelay {
				delay = maxDelay
			}

			s.logger.Debug("Retrying %s operation (attempt %d/%d) after %v", operation, attempt, s.retryAttempts, delay)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during retry for %s operation after %v: %w",
					operation, time.Since(startTime), ctx.Err())
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				s.logger.Info("Completed %s operation after %d retries in %v", operation, attempt, time.Since(startTime))
			}
			return nil
		}

		lastErr = err
		if errors.Is(err, errCacheMiss) || !IsRetryableError(err) {
			return err
		}
	}

	return fmt.Errorf("%s operation failed after %d attempts in %v: %w",
		operation, s.retryAttempts+1, time.Since(startTime), lastErr)
}
