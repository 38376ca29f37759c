package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the service configuration
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	JWT        JWTConfig        `json:"jwt"`
	Cache      CacheConfig      `json:"cache"`
	RateLimits RateLimitsConfig `json:"rateLimits"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	WebDomain string `json:"webDomain"`
	Debug     bool   `json:"debug"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Type        string           `json:"type"`
	AutoMigrate bool             `json:"autoMigrate"`
	Postgres    PostgreSQLConfig `json:"postgres"`
}

// PostgreSQLConfig holds PostgreSQL-specific configuration
type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	Schema          string        `json:"schema"`
	SSLMode         string        `json:"sslMode"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
}

// JWTConfig holds the ES256 public key used to verify bearer tokens
type JWTConfig struct {
	PublicKey string `json:"publicKey"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	Backend         string        `json:"backend"`
	TTL             time.Duration `json:"ttl"`
	Prefix          string        `json:"prefix"`
	MaxMemory       int64         `json:"maxMemory"`
	CleanupInterval time.Duration `json:"cleanupInterval"`
	Redis           RedisConfig   `json:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string        `json:"address"`
	Password     string        `json:"password"`
	Database     int           `json:"database"`
	PoolSize     int           `json:"poolSize"`
	MinIdleConns int           `json:"minIdleConns"`
	MaxConnAge   time.Duration `json:"maxConnAge"`
}

// RateLimitConfig holds rate limiting configuration for a group of routes
type RateLimitConfig struct {
	Enabled  bool          `json:"enabled"`
	Max      int           `json:"max"`
	Duration time.Duration `json:"duration"`
}

// RateLimitsConfig holds rate limiting configuration for all route groups
type RateLimitsConfig struct {
	Mutations RateLimitConfig `json:"mutations"`
}

// LoadFromEnv loads configuration from the environment.
// Precedence: explicit environment variables, then values from a .env
// file, then defaults.
func LoadFromEnv() (*Config, error) {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	var loadErr error
	for _, envPath := range envPaths {
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}
	if loadErr != nil {
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	config := load(os.LookupEnv)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// LoadFromMap loads configuration from an in-memory map.
// It lets tests exercise configuration without touching the process environment.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	config := load(func(key string) (string, bool) {
		value, ok := envMap[key]
		return value, ok
	})
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

type lookupFunc func(key string) (string, bool)

func load(lookup lookupFunc) *Config {
	env := envReader{lookup: lookup}

	return &Config{
		Server: ServerConfig{
			Host:      env.String("HOST", "0.0.0.0"),
			Port:      env.Int("PORT", 3001),
			WebDomain: env.String("WEB_DOMAIN", "*"),
			Debug:     env.Bool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Type:        env.String("DB_TYPE", "postgresql"),
			AutoMigrate: env.Bool("DB_AUTO_MIGRATE", false),
			Postgres: PostgreSQLConfig{
				Host:            env.String("POSTGRES_HOST", "localhost"),
				Port:            env.Int("POSTGRES_PORT", 5432),
				Username:        env.String("POSTGRES_USERNAME", ""),
				Password:        env.String("POSTGRES_PASSWORD", ""),
				Database:        env.String("POSTGRES_DATABASE", "jobly"),
				Schema:          env.String("POSTGRES_SCHEMA", ""),
				SSLMode:         env.String("POSTGRES_SSL_MODE", "disable"),
				MaxOpenConns:    env.Int("POSTGRES_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    env.Int("POSTGRES_MAX_IDLE_CONNS", 25),
				ConnMaxLifetime: time.Duration(env.Int("POSTGRES_CONN_MAX_LIFETIME", 300)) * time.Second,
			},
		},
		JWT: JWTConfig{
			PublicKey: env.String("JWT_PUBLIC_KEY", ""),
		},
		Cache: CacheConfig{
			Enabled:         env.Bool("CACHE_ENABLED", true),
			Backend:         env.String("CACHE_BACKEND", "memory"),
			TTL:             env.Duration("CACHE_TTL", 15*time.Minute),
			Prefix:          env.String("CACHE_PREFIX", "jobly:"),
			MaxMemory:       env.Int64("CACHE_MAX_MEMORY", 64*1024*1024), // 64MB default
			CleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
			Redis: RedisConfig{
				Address:      env.String("REDIS_ADDRESS", "localhost:6379"),
				Password:     env.String("REDIS_PASSWORD", ""),
				Database:     env.Int("REDIS_DATABASE", 0),
				PoolSize:     env.Int("REDIS_POOL_SIZE", 10),
				MinIdleConns: env.Int("REDIS_MIN_IDLE_CONNS", 2),
				MaxConnAge:   time.Duration(env.Int("REDIS_MAX_CONN_AGE", 300)) * time.Second,
			},
		},
		RateLimits: RateLimitsConfig{
			Mutations: RateLimitConfig{
				Enabled:  env.Bool("RATE_LIMIT_MUTATIONS_ENABLED", true),
				Max:      env.Int("RATE_LIMIT_MUTATIONS_MAX", 60),
				Duration: env.Duration("RATE_LIMIT_MUTATIONS_DURATION", time.Minute),
			},
		},
	}
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.JWT.PublicKey) == "" {
		errors = append(errors, "JWT_PUBLIC_KEY is required")
	}

	validDbTypes := []string{"postgresql"}
	if !contains(validDbTypes, c.Database.Type) {
		errors = append(errors, fmt.Sprintf("DB_TYPE must be one of: %s", strings.Join(validDbTypes, ", ")))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	validBackends := []string{"memory", "redis"}
	if c.Cache.Enabled && !contains(validBackends, c.Cache.Backend) {
		errors = append(errors, fmt.Sprintf("CACHE_BACKEND must be one of: %s", strings.Join(validBackends, ", ")))
	}

	if c.RateLimits.Mutations.Enabled {
		if c.RateLimits.Mutations.Max <= 0 {
			errors = append(errors, "RATE_LIMIT_MUTATIONS_MAX must be positive")
		}
		if c.RateLimits.Mutations.Duration <= 0 {
			errors = append(errors, "RATE_LIMIT_MUTATIONS_DURATION must be positive")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// Address returns the host:port the server listens on
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// envReader reads typed values, falling back to defaults for unset or unparsable keys
type envReader struct {
	lookup lookupFunc
}

func (e envReader) String(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) Int(key string, defaultValue int) int {
	if value, ok := e.lookup(key); ok && value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e envReader) Int64(key string, defaultValue int64) int64 {
	if value, ok := e.lookup(key); ok && value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e envReader) Bool(key string, defaultValue bool) bool {
	if value, ok := e.lookup(key); ok && value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (e envReader) Duration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := e.lookup(key); ok && value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
