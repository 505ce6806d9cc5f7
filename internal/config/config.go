package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the client
type Config struct {
	Backend BackendConfig
	CDN     CDNConfig
	Cache   CacheConfig
	Redis   RedisConfig
	Session SessionConfig
	Logging LoggingConfig
}

// BackendConfig holds JSON API backend configuration
type BackendConfig struct {
	Root      string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables client-side limiting
	RateBurst int
}

// CDNConfig holds static media host configuration
type CDNConfig struct {
	Root      string
	WatchRoot string // public host used for share links
}

// CacheConfig holds repository cache configuration
type CacheConfig struct {
	Backend  string        // memory, redis
	Capacity int           // memory backend: max entries per cache
	TTL      time.Duration // redis backend: entry lifetime
}

// RedisConfig holds Redis configuration for the redis cache backend
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig holds session persistence configuration
type SessionConfig struct {
	File string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// Load reads configuration from an optional file plus environment
// variables prefixed with DEVID_.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("devid")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Cache.Backend != "memory" && config.Cache.Backend != "redis" {
		return nil, fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Backend defaults
	v.SetDefault("backend.root", "https://backend.devid.sandtler.club")
	v.SetDefault("backend.timeout", "30s")
	v.SetDefault("backend.rateLimit", 0)
	v.SetDefault("backend.rateBurst", 1)

	// CDN defaults
	v.SetDefault("cdn.root", "https://cdn.devid.sandtler.club")
	v.SetDefault("cdn.watchRoot", "https://devid.sandtler.club")

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.capacity", 512)
	v.SetDefault("cache.ttl", "15m")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Session defaults; empty file means the caller picks a location
	v.SetDefault("session.file", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}
