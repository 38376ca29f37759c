package testutil

import (
	"os"
	"regexp"
	"strconv"

	dbi "github.com/hollyabrams/express-jobly/internal/database/interfaces"
)

var dsnPattern = regexp.MustCompile(`postgres://([^:]+):([^@]+)@([^:/]+):(\d+)/([^?]+)`)

// PostgresConfigFromEnv builds the test database configuration.
// POSTGRES_DSN wins over the individual POSTGRES_* variables.
func PostgresConfigFromEnv() *dbi.PostgreSQLConfig {
	cfg := &dbi.PostgreSQLConfig{
		Host:               getenv("POSTGRES_HOST", "127.0.0.1"),
		Port:               getenvInt("POSTGRES_PORT", 5432),
		Username:           getenv("POSTGRES_USERNAME", "postgres"),
		Password:           getenv("POSTGRES_PASSWORD", "postgres"),
		Database:           getenv("POSTGRES_DATABASE", "jobly_test"),
		SSLMode:            getenv("POSTGRES_SSL_MODE", "disable"),
		ConnectTimeout:     5,
		MaxOpenConnections: 5,
		MaxIdleConnections: 2,
	}

	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		if m := dsnPattern.FindStringSubmatch(dsn); len(m) == 6 {
			cfg.Username = m[1]
			cfg.Password = m[2]
			cfg.Host = m[3]
			if port, err := strconv.Atoi(m[4]); err == nil {
				cfg.Port = port
			}
			cfg.Database = m[5]
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
