package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Optimization OptimizationConfig `mapstructure:"optimization"`
	CostRegistry CostRegistryConfig `mapstructure:"cost_registry"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Redis        RedisConfig        `mapstructure:"redis"`
}

type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	MaxRequestBodySize int           `mapstructure:"max_request_body_size"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type OptimizationConfig struct {
	MaxIterations int           `mapstructure:"max_iterations"`
	Method        string        `mapstructure:"method"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type CostRegistryConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	TTL     time.Duration `mapstructure:"ttl"`
	Preload []string      `mapstructure:"preload"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // none, memory, redis
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Load reads an optional YAML file, then IRRIGATION_* environment variables. PORT is
// honoured as well for platforms that inject it.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/irrigation-engine")
	}

	setDefaults(v)

	v.SetEnvPrefix("IRRIGATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "IRRIGATION_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_request_body_size", 4<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("optimization.max_iterations", 200)
	v.SetDefault("optimization.method", "coordinate_descent")
	v.SetDefault("optimization.timeout", "5s")

	v.SetDefault("cost_registry.url", "")
	v.SetDefault("cost_registry.timeout", "2s")
	v.SetDefault("cost_registry.ttl", "10m")
	v.SetDefault("cost_registry.preload", []string{})

	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "irrigation:")
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Optimization.MaxIterations < 0 {
		return fmt.Errorf("optimization.max_iterations must not be negative, got %d", c.Optimization.MaxIterations)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Redis.Addr == "" {
		return errors.New("redis cache backend requires redis.addr")
	}
	return nil
}
