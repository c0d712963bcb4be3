package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Channel timeouts are clamped to this range.
const (
	minChannelTimeout = 15 * time.Second
	maxChannelTimeout = 45 * time.Second
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Supabase    SupabaseConfig    `mapstructure:"supabase"`
	Postgres    PostgresConfig    `mapstructure:"postgres"`
	Queue       QueueConfig       `mapstructure:"queue"`
	Channels    ChannelsConfig    `mapstructure:"channels"`
	DeliveryLog DeliveryLogConfig `mapstructure:"delivery_log"`
	LowBalance  LowBalanceConfig  `mapstructure:"low_balance"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RedisConfig holds Redis connection settings. An empty address disables
// the queue and falls back to an in-process cooldown store.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SupabaseConfig holds Supabase project settings.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// PostgresConfig holds the DSN used by the postgres delivery log driver.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// QueueConfig holds async queue settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ChannelsConfig holds the channel API endpoints.
type ChannelsConfig struct {
	SMSBaseURL      string `mapstructure:"sms_base_url"`
	AlimtalkBaseURL string `mapstructure:"alimtalk_base_url"`
	TimeoutSec      int    `mapstructure:"timeout_sec"`
}

// Timeout returns the per-request timeout, clamped to 15–45s.
func (c ChannelsConfig) Timeout() time.Duration {
	d := time.Duration(c.TimeoutSec) * time.Second
	if d < minChannelTimeout {
		return minChannelTimeout
	}
	if d > maxChannelTimeout {
		return maxChannelTimeout
	}
	return d
}

// DeliveryLogConfig selects the delivery log backend.
type DeliveryLogConfig struct {
	Driver string `mapstructure:"driver"` // supabase | postgres
}

// LowBalanceConfig holds the low-point alert cooldown (seconds for YAML/env compat).
type LowBalanceConfig struct {
	CooldownSec int `mapstructure:"cooldown_sec"`
}

// Cooldown returns the alert cooldown window.
func (c LowBalanceConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSec) * time.Second
}

// Load reads configuration from config.yaml and environment variables.
// Environment variables use the SOCIALTALK_ prefix and underscore separators.
// Example: SOCIALTALK_SERVER_PORT overrides server.port in config.yaml.
func Load() (*Config, error) {
	v := viper.New()

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Load .env file if it exists
	_ = godotenv.Load()

	// Environment variable settings
	v.SetEnvPrefix("SOCIALTALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional, env vars can provide everything)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Handle comma-separated API keys from env var
	if apiKeysStr := v.GetString("auth.api_keys"); apiKeysStr != "" && len(cfg.Auth.APIKeys) == 0 {
		keys := strings.Split(apiKeysStr, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		cfg.Auth.APIKeys = keys
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	// Redis is opt-in: an empty address selects the in-process cooldown store
	// and disables async intake.
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	// Registered so that env-only deployments are picked up by Unmarshal.
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("channels.sms_base_url", "https://api.solapi.com")
	v.SetDefault("channels.alimtalk_base_url", "https://api.alimtalk.provider.com")
	v.SetDefault("channels.timeout_sec", 30)
	v.SetDefault("delivery_log.driver", "supabase")
	v.SetDefault("low_balance.cooldown_sec", 86400) // 24 hours
}

func (c *Config) validate() error {
	switch c.DeliveryLog.Driver {
	case "supabase":
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required when delivery_log.driver is postgres")
		}
	default:
		return fmt.Errorf("unknown delivery_log.driver %q", c.DeliveryLog.Driver)
	}
	return nil
}
