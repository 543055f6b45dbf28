package handodds

import (
	"errors"

	"github.com/sony/gobreaker"
)

// redisBreaker guards Redis calls so that an unreachable server stops being
// hit on every cache lookup. A nil breaker passes calls straight through.
type redisBreaker struct {
	breaker *gobreaker.CircuitBreaker
	logger  Logger
}

// newRedisBreaker 创建熔断器; disabled configs yield a pass-through wrapper
func newRedisBreaker(config *CircuitBreakerConfig, logger Logger) *redisBreaker {
	if logger == nil {
		logger = NewSilentLogger()
	}
	if config == nil || !config.Enabled {
		return &redisBreaker{logger: logger}
	}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 当请求数达到最小要求且失败率超过阈值时触发熔断
			return counts.Requests >= config.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if config.OnStateChange {
				logger.Info("Circuit breaker '%s' state changed from %s to %s", name, from, to)
			}
		},
		// A missing key is an answer, not a failure of the server.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCacheMiss)
		},
	}

	return &redisBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// execute 使用熔断器执行操作
func (b *redisBreaker) execute(operation func() (any, error)) (any, error) {
	if b == nil || b.breaker == nil {
		return operation()
	}

	result, err := b.breaker.Execute(operation)
	if errors.Is(err, gobreaker.ErrOpenState) {
		return nil, ErrCircuitBreakerOpen.WithDetails("requests to Redis are being rejected").WithCause(err)
	}
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitBreakerOpen.WithDetails("too many requests while half-open").WithCause(err)
	}
	return result, err
}

// state reports the breaker state name, "disabled" when pass-through
func (b *redisBreaker) state() string {
	if b == nil || b.breaker == nil {
		return "disabled"
	}
	return b.breaker.State().String()
}
