package app

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	IssuerURI string // Required: base URI of the authorization server
	JWKSURL   string // Optional: direct JWKS URL, skips OIDC discovery
	Audience  string // Optional: expected audience claim; empty disables the check

	MongoURI      string // MongoDB connection string (default: mongodb://localhost:27017)
	MongoDatabase string // Database name (default: urlradar)

	RedisHost string        // Optional: cache disabled when empty
	RedisPort string        // Redis port (default: 6379)
	CacheTTL  time.Duration // Cache entry lifetime (default: 10m)

	JWKSRefreshInterval time.Duration // JWKS re-fetch interval (default: 15m)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		IssuerURI: os.Getenv("OAUTH_ISSUER_URI"),
		JWKSURL:   os.Getenv("OAUTH_JWKS_URL"),
		Audience:  os.Getenv("OAUTH_AUDIENCE"),

		MongoURI:      getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "urlradar"),

		RedisHost: os.Getenv("REDIS_HOST"),
		RedisPort: getEnvOrDefault("REDIS_PORT", "6379"),
		CacheTTL:  getEnvDurationOrDefault("CACHE_TTL", 10*time.Minute),

		JWKSRefreshInterval: getEnvDurationOrDefault("JWKS_REFRESH_INTERVAL", 15*time.Minute),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if c.IssuerURI == "" && c.JWKSURL == "" {
		return fmt.Errorf("either OAUTH_ISSUER_URI or OAUTH_JWKS_URL must be set")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
