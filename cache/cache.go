package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greencampus/facility-reports/config"
)

// Provider 缓存提供者接口
type Provider interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
	Name() string
}

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// Config 缓存配置
type Config struct {
	Type        string // "memory" or "redis"
	NumCounters int64  // memory only
	MaxCost     int64  // memory only
	BufferItems int64  // memory only
	Metrics     bool   // memory only
	Address     string // redis only
	Password    string // redis only
	DB          int    // redis only
	PoolSize    int    // redis only
	KeyPrefix   string // redis only
}

// ConfigFrom maps application settings onto a cache Config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Type:      cfg.CacheType,
		Address:   cfg.CacheRedisAddr,
		Password:  cfg.CacheRedisPassword,
		DB:        cfg.CacheRedisDB,
		KeyPrefix: cfg.CacheRedisPrefix,
	}
}

// New creates the provider selected by cfg.Type
func New(cfg Config) (Provider, error) {
	switch cfg.Type {
	case "", "memory":
		memConfig := MemoryConfig{
			NumCounters: cfg.NumCounters,
			MaxCost:     cfg.MaxCost,
			BufferItems: cfg.BufferItems,
			Metrics:     cfg.Metrics,
		}
		if memConfig.NumCounters == 0 {
			memConfig.NumCounters = 100000
		}
		if memConfig.MaxCost == 0 {
			memConfig.MaxCost = 64 << 20 // 64MB
		}
		if memConfig.BufferItems == 0 {
			memConfig.BufferItems = 64
		}
		return NewMemoryCache(memConfig)
	case "redis":
		return NewRedisCache(RedisConfig{
			Address:   cfg.Address,
			Password:  cfg.Password,
			DB:        cfg.DB,
			PoolSize:  cfg.PoolSize,
			KeyPrefix: cfg.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}
