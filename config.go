package handodds

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// Config 配置结构
type Config struct {
	// Engine config
	Engine *EngineConfig `mapstructure:"engine"`

	// Redis 配置
	Redis *RedisConfig `mapstructure:"redis"`

	// 熔断器配置
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Session persistence
	Session *SessionConfig `mapstructure:"session"`
}

// Validate checks every section; Redis settings only matter when some
// component talks to Redis.
func (c *Config) Validate() error {
	if c.Engine == nil || c.Redis == nil || c.Session == nil {
		return ErrInvalidParameters
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}

	// 验证 Redis 配置
	if c.Engine.CacheBackend == CacheBackendRedis {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis pool size must be positive")
		}
	}
	if c.Redis.OpTimeout < 0 {
		return fmt.Errorf("redis op timeout cannot be negative")
	}

	return nil
}

// EngineConfig holds combinatorics engine settings
type EngineConfig struct {
	PrecisionTolerance float64 `mapstructure:"precision_tolerance"`
	CacheBackend       string  `mapstructure:"cache_backend"`
}

// Validate checks tolerance range and backend name
func (c *EngineConfig) Validate() error {
	if c.PrecisionTolerance <= 0 || c.PrecisionTolerance > MaxPrecisionTolerance {
		return ErrInvalidTolerance
	}
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCacheBackend, c.CacheBackend)
	}
	return nil
}

// DefaultEngineConfig returns the in-memory engine with the default tolerance
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		PrecisionTolerance: DefaultPrecisionTolerance,
		CacheBackend:       CacheBackendMemory,
	}
}

// SessionConfig controls persistence of calculator inputs
type SessionConfig struct {
	StateTTL      time.Duration `mapstructure:"state_ttl"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// Validate checks retry settings
func (c *SessionConfig) Validate() error {
	if c.RetryAttempts < 0 || c.RetryAttempts > MaxRetryAttempts {
		return ErrInvalidRetryAttempts
	}
	if c.RetryInterval < 0 {
		return ErrInvalidRetryInterval
	}
	if c.StateTTL < 0 {
		return fmt.Errorf("session state ttl cannot be negative")
	}
	return nil
}

// DefaultSessionConfig returns the default persistence settings
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		StateTTL:      DefaultSessionStateTTL,
		RetryAttempts: DefaultRetryAttempts,
		RetryInterval: DefaultRetryInterval,
	}
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 连接配置
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// 连接池配置
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	// 超时配置
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
	OpTimeout    time.Duration `mapstructure:"op_timeout"`

	KeyPrefix string `mapstructure:"key_prefix"`
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Name          string        `mapstructure:"name"`
	MaxRequests   uint32        `mapstructure:"max_requests"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FailureRatio  float64       `mapstructure:"failure_ratio"`
	MinRequests   uint32        `mapstructure:"min_requests"`
	OnStateChange bool          `mapstructure:"on_state_change"`
}

// DefaultCircuitBreakerConfig 返回默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Enabled:       true,
		Name:          DefaultCircuitBreakerName,
		MaxRequests:   DefaultCircuitBreakerMaxRequests,
		Interval:      DefaultCircuitBreakerInterval,
		Timeout:       DefaultCircuitBreakerTimeout,
		FailureRatio:  DefaultCircuitBreakerFailureRatio,
		MinRequests:   DefaultCircuitBreakerMinRequests,
		OnStateChange: DefaultCircuitBreakerOnStateChange,
	}
}

// DefaultRedisConfig 返回默认的Redis配置
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:         DefaultRedisAddr,
		Password:     DefaultRedisPassword,
		DB:           DefaultRedisDB,
		PoolSize:     DefaultRedisPoolSize,
		MinIdleConns: DefaultRedisMinIdleConns,
		MaxRetries:   DefaultRedisMaxRetries,
		DialTimeout:  DefaultRedisDialTimeout,
		ReadTimeout:  DefaultRedisReadTimeout,
		WriteTimeout: DefaultRedisWriteTimeout,
		PoolTimeout:  DefaultRedisPoolTimeout,
		OpTimeout:    DefaultRedisOpTimeout,
		KeyPrefix:    DefaultKeyPrefix,
	}
}

// DefaultConfig returns a complete configuration with every default applied
func DefaultConfig() *Config {
	return &Config{
		Engine:         DefaultEngineConfig(),
		Redis:          DefaultRedisConfig(),
		CircuitBreaker: DefaultCircuitBreakerConfig(),
		Session:        DefaultSessionConfig(),
	}
}

// NewRedisClientFromConfig 从配置创建Redis客户端
func NewRedisClientFromConfig(config *RedisConfig) *redis.Client {
	if config == nil {
		config = DefaultRedisConfig()
	}

	return redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	})
}

// ConfigManager 配置管理器
type ConfigManager struct {
	viper  *viper.Viper
	mu     sync.RWMutex
	config *Config
	logger Logger
}

// NewConfigManager 创建配置管理器
func NewConfigManager(logger Logger) *ConfigManager {
	if logger == nil {
		logger = NewSilentLogger()
	}
	v := viper.New()

	// 设置配置文件名和路径
	v.SetConfigName("handodds")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/handodds")
	v.AddConfigPath("$HOME/.handodds")

	// 设置环境变量前缀
	v.SetEnvPrefix("HANDODDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cm := &ConfigManager{viper: v, logger: logger}
	cm.setDefaults()
	return cm
}

// LoadConfigFile reads an explicit config file instead of searching the
// default paths
func (cm *ConfigManager) LoadConfigFile(path string) (*Config, error) {
	cm.viper.SetConfigFile(path)
	return cm.LoadConfig()
}

// LoadConfig 加载配置; a missing file falls back to defaults and environment
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	if err := cm.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		cm.logger.Debug("No config file found, using defaults")
	}

	config, err := cm.decode()
	if err != nil {
		return nil, err
	}

	cm.mu.Lock()
	cm.config = config
	cm.mu.Unlock()
	return config, nil
}

func (cm *ConfigManager) decode() (*Config, error) {
	config := &Config{}
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// setDefaults 设置默认配置值
func (cm *ConfigManager) setDefaults() {
	cm.viper.SetDefault("engine.precision_tolerance", DefaultPrecisionTolerance)
	cm.viper.SetDefault("engine.cache_backend", CacheBackendMemory)

	// Redis 默认配置
	cm.viper.SetDefault("redis.addr", DefaultRedisAddr)
	cm.viper.SetDefault("redis.password", DefaultRedisPassword)
	cm.viper.SetDefault("redis.db", DefaultRedisDB)
	cm.viper.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	cm.viper.SetDefault("redis.min_idle_conns", DefaultRedisMinIdleConns)
	cm.viper.SetDefault("redis.max_retries", DefaultRedisMaxRetries)
	cm.viper.SetDefault("redis.dial_timeout", DefaultRedisDialTimeout.String())
	cm.viper.SetDefault("redis.read_timeout", DefaultRedisReadTimeout.String())
	cm.viper.SetDefault("redis.write_timeout", DefaultRedisWriteTimeout.String())
	cm.viper.SetDefault("redis.pool_timeout", DefaultRedisPoolTimeout.String())
	cm.viper.SetDefault("redis.op_timeout", DefaultRedisOpTimeout.String())
	cm.viper.SetDefault("redis.key_prefix", DefaultKeyPrefix)

	// 熔断器默认配置
	cm.viper.SetDefault("circuit_breaker.enabled", true)
	cm.viper.SetDefault("circuit_breaker.name", DefaultCircuitBreakerName)
	cm.viper.SetDefault("circuit_breaker.max_requests", DefaultCircuitBreakerMaxRequests)
	cm.viper.SetDefault("circuit_breaker.interval", DefaultCircuitBreakerInterval.String())
	cm.viper.SetDefault("circuit_breaker.timeout", DefaultCircuitBreakerTimeout.String())
	cm.viper.SetDefault("circuit_breaker.failure_ratio", DefaultCircuitBreakerFailureRatio)
	cm.viper.SetDefault("circuit_breaker.min_requests", DefaultCircuitBreakerMinRequests)
	cm.viper.SetDefault("circuit_breaker.on_state_change", DefaultCircuitBreakerOnStateChange)

	cm.viper.SetDefault("session.state_ttl", DefaultSessionStateTTL.String())
	cm.viper.SetDefault("session.retry_attempts", DefaultRetryAttempts)
	cm.viper.SetDefault("session.retry_interval", DefaultRetryInterval.String())
}

// WatchConfig 监听配置变化; invalid edits are logged and ignored
func (cm *ConfigManager) WatchConfig(callback func(*Config)) {
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		config, err := cm.decode()
		if err != nil {
			cm.logger.Error("Ignoring config change from %s: %v", e.Name, err)
			return
		}

		cm.mu.Lock()
		cm.config = config
		cm.mu.Unlock()

		cm.logger.Info("Configuration reloaded from %s", e.Name)
		if callback != nil {
			callback(config)
		}
	})
	cm.viper.WatchConfig()
}

// GetConfig 获取当前配置
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.config
}

// ReloadConfig 重新加载配置
func (cm *ConfigManager) ReloadConfig() (*Config, error) { return cm.LoadConfig() }
