package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

const defaultPort = "3000"

// Config holds all configuration for the storefront.
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Storage  StorageConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Delays   DelayConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port      string
	StaticDir string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string
	Format string
}

// StorageConfig selects where the snapshot lives.
type StorageConfig struct {
	Driver string
	Dir    string
	Key    string
	DSN    string
}

// RedisConfig contains Redis connection details.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RabbitMQConfig contains broker details. An empty URL disables publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// DelayConfig holds the completion delay of each form submission.
type DelayConfig struct {
	Login    time.Duration
	Signup   time.Duration
	Profile  time.Duration
	Checkout time.Duration
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("STATIC_DIR", "./public")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("STORAGE_DRIVER", DriverFile)
	v.SetDefault("STORAGE_DIR", "data")
	v.SetDefault("STORAGE_KEY", "kicksStoreData")
	v.SetDefault("DATABASE_DSN", "file:kicks.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "orders")
	v.SetDefault("LOGIN_DELAY", 800*time.Millisecond)
	v.SetDefault("SIGNUP_DELAY", 800*time.Millisecond)
	v.SetDefault("PROFILE_DELAY", 800*time.Millisecond)
	v.SetDefault("CHECKOUT_DELAY", 1200*time.Millisecond)
}

// Load reads configuration from the environment, after loading a .env file
// if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from v and validates it.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:      port(v),
			StaticDir: v.GetString("STATIC_DIR"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
			Dir:    v.GetString("STORAGE_DIR"),
			Key:    v.GetString("STORAGE_KEY"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Delays: DelayConfig{
			Login:    v.GetDuration("LOGIN_DELAY"),
			Signup:   v.GetDuration("SIGNUP_DELAY"),
			Profile:  v.GetDuration("PROFILE_DELAY"),
			Checkout: v.GetDuration("CHECKOUT_DELAY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// port reads APP_PORT, then the bare PORT variable, then 3000. Both "3000"
// and ":3000" are accepted.
func port(v *viper.Viper) string {
	p := v.GetString("APP_PORT")
	if p == "" {
		p = v.GetString("PORT")
	}
	if p == "" {
		p = defaultPort
	}
	if !strings.Contains(p, ":") {
		p = ":" + p
	}
	return p
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("STORAGE_KEY is required")
	}
	if c.Storage.Driver == DriverFile && c.Storage.Dir == "" {
		return fmt.Errorf("STORAGE_DIR is required for the file driver")
	}
	if (c.Storage.Driver == DriverSQLite || c.Storage.Driver == DriverPostgres) && c.Storage.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for the %s driver", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverRedis && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required for the redis driver")
	}
	for name, d := range map[string]time.Duration{
		"LOGIN_DELAY":    c.Delays.Login,
		"SIGNUP_DELAY":   c.Delays.Signup,
		"PROFILE_DELAY":  c.Delays.Profile,
		"CHECKOUT_DELAY": c.Delays.Checkout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
