package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Rate limit store type constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Client cache type constants
const (
	ClientCacheTypeMemory     = "memory"
	ClientCacheTypeRedis      = "redis"
	ClientCacheTypeRedisAside = "redis-aside"
)

const defaultJWTSecret = "your-256-bit-secret-change-in-production"

type Config struct {
	// Server settings
	ServerAddr   string
	IsProduction bool

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)
	DBInitTimeout  time.Duration
	DBCloseTimeout time.Duration

	// Secret hashing
	BcryptCost int

	// Opaque access tokens
	AccessTokenExpiry time.Duration
	TokenEntropyBytes int // random bytes per token, 32 minimum

	// Super-admin JWT settings
	JWTSecret        string
	JWTIssuer        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Per-client hourly rate limiting
	RateLimitEnabled       bool
	RateLimitDefault       int    // ceiling for clients without an explicit limit
	RateLimitMax           int    // hard cap on any client ceiling
	RateLimitCountRejected bool   // rejected requests consume window budget
	RateLimitStore         string // "memory" or "redis"

	// Pre-auth IP rate limiting (token and login endpoints)
	IPRateLimitEnabled       bool
	TokenEndpointRateLimit   int // requests per minute per IP
	LoginRateLimit           int // requests per minute per IP
	RateLimitCleanupInterval time.Duration

	// Redis (shared by the rate-limit store and the client cache)
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisConnTimeout  time.Duration
	RedisCloseTimeout time.Duration

	// Client cache (token validation hot path)
	ClientCacheType        string
	ClientCacheTTL         time.Duration
	ClientCacheClientTTL   time.Duration // rueidis client-side TTL
	ClientCacheSizePerConn int           // rueidis client-side cache, MiB
	CacheInitTimeout       time.Duration
	CacheCloseTimeout      time.Duration

	// Usage recording
	UsageAuditEnabled  bool
	UsageBufferSize    int
	UsageRetentionDays int

	// Expired token sweep
	TokenSweepInterval time.Duration

	// Metrics
	MetricsEnabled       bool
	MetricsToken         string
	MetricsGaugeInterval time.Duration

	// Super-admin bootstrap (first run only)
	AdminBootstrapPassword string
	AdminBootstrapEmail    string

	// Shutdown timeouts
	ServerShutdownTimeout time.Duration
	UsageShutdownTimeout  time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "hirematch.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		IsProduction: getEnv("ENV", "development") == "production",

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),
		DBCloseTimeout: getEnvDuration("DB_CLOSE_TIMEOUT", 5*time.Second),

		BcryptCost: getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),

		AccessTokenExpiry: getEnvDuration("ACCESS_TOKEN_EXPIRY", time.Hour),
		TokenEntropyBytes: getEnvInt("TOKEN_ENTROPY_BYTES", 32),

		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		JWTIssuer:        getEnv("JWT_ISSUER", "hirematch"),
		JWTAccessExpiry:  getEnvDuration("JWT_ACCESS_EXPIRY", 30*time.Minute),
		JWTRefreshExpiry: getEnvDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),

		RateLimitEnabled:       getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitDefault:       getEnvInt("RATE_LIMIT_DEFAULT", 1000),
		RateLimitMax:           getEnvInt("RATE_LIMIT_MAX", 10000),
		RateLimitCountRejected: getEnvBool("RATE_LIMIT_COUNT_REJECTED", true),
		RateLimitStore:         getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),

		IPRateLimitEnabled:       getEnvBool("IP_RATE_LIMIT_ENABLED", true),
		TokenEndpointRateLimit:   getEnvInt("TOKEN_ENDPOINT_RATE_LIMIT", 60),
		LoginRateLimit:           getEnvInt("LOGIN_RATE_LIMIT", 10),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),

		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisConnTimeout:  getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),
		RedisCloseTimeout: getEnvDuration("REDIS_CLOSE_TIMEOUT", 5*time.Second),

		ClientCacheType:        getEnv("CLIENT_CACHE_TYPE", ClientCacheTypeMemory),
		ClientCacheTTL:         getEnvDuration("CLIENT_CACHE_TTL", 5*time.Minute),
		ClientCacheClientTTL:   getEnvDuration("CLIENT_CACHE_CLIENT_TTL", time.Minute),
		ClientCacheSizePerConn: getEnvInt("CLIENT_CACHE_SIZE_PER_CONN", 128),
		CacheInitTimeout:       getEnvDuration("CACHE_INIT_TIMEOUT", 5*time.Second),
		CacheCloseTimeout:      getEnvDuration("CACHE_CLOSE_TIMEOUT", 5*time.Second),

		UsageAuditEnabled:  getEnvBool("USAGE_AUDIT_ENABLED", true),
		UsageBufferSize:    getEnvInt("USAGE_BUFFER_SIZE", 1000),
		UsageRetentionDays: getEnvInt("USAGE_RETENTION_DAYS", 90),

		TokenSweepInterval: getEnvDuration("TOKEN_SWEEP_INTERVAL", time.Hour),

		MetricsEnabled:       getEnvBool("METRICS_ENABLED", true),
		MetricsToken:         getEnv("METRICS_TOKEN", ""),
		MetricsGaugeInterval: getEnvDuration("METRICS_GAUGE_INTERVAL", time.Minute),

		AdminBootstrapPassword: getEnv("ADMIN_BOOTSTRAP_PASSWORD", ""),
		AdminBootstrapEmail:    getEnv("ADMIN_BOOTSTRAP_EMAIL", "admin@hirematch.local"),

		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		UsageShutdownTimeout:  getEnvDuration("USAGE_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate checks that the configuration is internally consistent and safe
// to start with.
func (c *Config) Validate() error {
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("invalid DATABASE_DRIVER: %s (must be: sqlite, postgres)", c.DatabaseDriver)
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required when DATABASE_DRIVER=postgres")
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("invalid BCRYPT_COST: %d (must be between %d and %d)",
			c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.TokenEntropyBytes < 32 {
		return fmt.Errorf("invalid TOKEN_ENTROPY_BYTES: %d (256-bit minimum, use 32 or more)",
			c.TokenEntropyBytes)
	}
	if c.AccessTokenExpiry <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRY must be positive")
	}

	if c.IsProduction && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}

	if c.RateLimitDefault <= 0 {
		return errors.New("RATE_LIMIT_DEFAULT must be positive")
	}
	if c.RateLimitMax < c.RateLimitDefault {
		return fmt.Errorf("RATE_LIMIT_MAX (%d) must be at least RATE_LIMIT_DEFAULT (%d)",
			c.RateLimitMax, c.RateLimitDefault)
	}
	switch c.RateLimitStore {
	case RateLimitStoreMemory, RateLimitStoreRedis:
	default:
		return fmt.Errorf("invalid RATE_LIMIT_STORE: %s (must be: memory, redis)", c.RateLimitStore)
	}

	switch c.ClientCacheType {
	case ClientCacheTypeMemory, ClientCacheTypeRedis, ClientCacheTypeRedisAside:
	default:
		return fmt.Errorf("invalid CLIENT_CACHE_TYPE: %s (must be: memory, redis, redis-aside)",
			c.ClientCacheType)
	}

	if c.UsageBufferSize <= 0 {
		return errors.New("USAGE_BUFFER_SIZE must be positive")
	}

	return nil
}

// ClampCeiling caps a client rate ceiling at RateLimitMax and substitutes
// the default for non-positive values.
func (c *Config) ClampCeiling(ceiling int) int {
	if ceiling <= 0 {
		ceiling = c.RateLimitDefault
	}
	if ceiling > c.RateLimitMax {
		return c.RateLimitMax
	}
	return ceiling
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
