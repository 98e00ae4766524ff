package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Session       SessionConfig       `yaml:"session"`
	BookCache     BookCacheConfig     `yaml:"book_cache"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`

	// TrustedProxies is a comma-separated list of CIDRs or IPs allowed to
	// set X-Forwarded-For. Empty trusts no proxy.
	TrustedProxies string `yaml:"trusted_proxies"`
}

// TrustedProxyNets parses TrustedProxies. A bare IP is a single-host network.
func (c *ServerConfig) TrustedProxyNets() ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, entry := range strings.Split(c.TrustedProxies, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	PostgresURL         string        `yaml:"postgres_url"`
	ReplicaURLs         string        `yaml:"replica_urls"`
	MaxConns            int           `yaml:"max_conns"`
	MinConns            int           `yaml:"min_conns"`
	Timeout             time.Duration `yaml:"timeout"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
}

// RedisConfig holds the optional distributed cache settings. An empty URL
// selects the in-process cache.
type RedisConfig struct {
	URL        string `yaml:"url"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	MaxRetries int    `yaml:"max_retries"`
	PoolSize   int    `yaml:"pool_size"`
}

// SessionConfig holds token lifecycle settings
type SessionConfig struct {
	TokenTTL      time.Duration `yaml:"token_ttl"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

// BookCacheConfig holds book listing cache settings
type BookCacheConfig struct {
	TTL               time.Duration `yaml:"ttl"`
	Size              int           `yaml:"size"`
	InvalidateOnWrite bool          `yaml:"invalidate_on_write"`
}

// RateLimitConfig holds per-caller request limits
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Database: DatabaseConfig{
			MaxConns:            20,
			MinConns:            5,
			Timeout:             10 * time.Second,
			HealthCheckInterval: 30 * time.Second,
		},
		Redis: RedisConfig{
			MaxRetries: 3,
			PoolSize:   10,
		},
		Session: SessionConfig{
			TokenTTL:      8 * time.Hour,
			SweepSchedule: "@every 10m",
		},
		BookCache: BookCacheConfig{
			TTL:  24 * time.Hour,
			Size: 1024,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             50,
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}

// LoadConfig loads configuration: defaults, then the optional .env file
// (READIFY_ENV_FILE, default ".env"), then the optional YAML file
// (READIFY_CONFIG_FILE), then environment variables.
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(getEnv("READIFY_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := Default()

	if path := getEnv("READIFY_CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv exports the variables of path without overriding ones already
// set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyFile overlays the YAML file at path onto c
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides c with every READIFY_ variable that is set
func (c *Config) applyEnv() {
	c.Server.Host = getEnv("READIFY_HOST", c.Server.Host)
	c.Server.Port = getEnv("READIFY_PORT", c.Server.Port)
	c.Server.HealthPort = getEnv("READIFY_HEALTH_PORT", c.Server.HealthPort)
	c.Server.ReadTimeout = getEnvDuration("READIFY_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("READIFY_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("READIFY_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.RequestTimeout = getEnvDuration("READIFY_REQUEST_TIMEOUT", c.Server.RequestTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("READIFY_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.TrustedProxies = getEnv("READIFY_TRUSTED_PROXIES", c.Server.TrustedProxies)

	c.Database.PostgresURL = getEnv("READIFY_POSTGRES_URL", c.Database.PostgresURL)
	c.Database.ReplicaURLs = getEnv("READIFY_POSTGRES_REPLICA_URLS", c.Database.ReplicaURLs)
	c.Database.MaxConns = getEnvInt("READIFY_POSTGRES_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvInt("READIFY_POSTGRES_MIN_CONNS", c.Database.MinConns)
	c.Database.Timeout = getEnvDuration("READIFY_POSTGRES_TIMEOUT", c.Database.Timeout)
	c.Database.HealthCheckInterval = getEnvDuration("READIFY_POSTGRES_HEALTH_CHECK_INTERVAL", c.Database.HealthCheckInterval)

	c.Redis.URL = getEnv("READIFY_REDIS_URL", c.Redis.URL)
	c.Redis.Password = getEnv("READIFY_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("READIFY_REDIS_DB", c.Redis.DB)
	c.Redis.MaxRetries = getEnvInt("READIFY_REDIS_MAX_RETRIES", c.Redis.MaxRetries)
	c.Redis.PoolSize = getEnvInt("READIFY_REDIS_POOL_SIZE", c.Redis.PoolSize)

	c.Session.TokenTTL = getEnvDuration("READIFY_TOKEN_TTL", c.Session.TokenTTL)
	c.Session.SweepSchedule = getEnv("READIFY_TOKEN_SWEEP_SCHEDULE", c.Session.SweepSchedule)

	c.BookCache.TTL = getEnvDuration("READIFY_BOOK_CACHE_TTL", c.BookCache.TTL)
	c.BookCache.Size = getEnvInt("READIFY_BOOK_CACHE_SIZE", c.BookCache.Size)
	c.BookCache.InvalidateOnWrite = getEnvBool("READIFY_BOOK_CACHE_INVALIDATE_ON_WRITE", c.BookCache.InvalidateOnWrite)

	c.RateLimit.RequestsPerSecond = getEnvFloat("READIFY_RATE_LIMIT_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = getEnvInt("READIFY_RATE_LIMIT_BURST", c.RateLimit.Burst)

	c.Observability.LogLevel = getEnv("READIFY_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.MetricsEnabled = getEnvBool("READIFY_METRICS_ENABLED", c.Observability.MetricsEnabled)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if _, err := c.Server.TrustedProxyNets(); err != nil {
		return err
	}

	if c.Database.PostgresURL == "" {
		return fmt.Errorf("postgres URL is required (READIFY_POSTGRES_URL)")
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("postgres max connections must be positive")
	}

	if c.Session.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	if _, err := cron.ParseStandard(c.Session.SweepSchedule); err != nil {
		return fmt.Errorf("invalid token sweep schedule %q: %w", c.Session.SweepSchedule, err)
	}

	if c.BookCache.TTL <= 0 {
		return fmt.Errorf("book cache TTL must be positive")
	}
	if c.BookCache.Size <= 0 {
		return fmt.Errorf("book cache size must be positive")
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit requests per second and burst must be positive")
	}

	if _, err := logrus.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// LogLevel returns the parsed log level, info when unparseable
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Observability.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
