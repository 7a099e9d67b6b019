// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Redis    RedisConfig
	Security SecurityConfig
	External ExternalConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
}

// ExternalConfig contains external service configurations
type ExternalConfig struct {
	Gateway  GatewayConfig
	OrderAPI OrderAPIConfig
}

// GatewayConfig contains payment gateway configuration
type GatewayConfig struct {
	KeyID       string
	KeySecret   string
	CheckoutURL string
	ThemeColor  string
	Timeout     time.Duration
}

// OrderAPIConfig contains remote order service configuration
type OrderAPIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

// CartConfig contains cart persistence configuration
type CartConfig struct {
	SnapshotTTL time.Duration // 0 means snapshots never expire
}

// CheckoutConfig contains checkout behaviour configuration
type CheckoutConfig struct {
	ClearCartOnSuccess bool
	VerifyTimeout      time.Duration
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront Checkout"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:         getEnv("APP_PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}),
		},
		External: ExternalConfig{
			Gateway: GatewayConfig{
				KeyID:       getEnv("GATEWAY_KEY_ID", ""),
				KeySecret:   getEnv("GATEWAY_KEY_SECRET", ""),
				CheckoutURL: getEnv("GATEWAY_CHECKOUT_URL", "https://checkout.razorpay.com/v1/checkout.js"),
				ThemeColor:  getEnv("GATEWAY_THEME_COLOR", "#b8860b"),
				Timeout:     getEnvAsDuration("GATEWAY_TIMEOUT", 10*time.Second),
			},
			OrderAPI: OrderAPIConfig{
				BaseURL:      getEnv("ORDER_API_BASE_URL", "http://localhost:9090/api/v1"),
				Timeout:      getEnvAsDuration("ORDER_API_TIMEOUT", 15*time.Second),
				MaxAttempts:  getEnvAsInt("ORDER_API_MAX_ATTEMPTS", 3),
				RetryBackoff: getEnvAsDuration("ORDER_API_RETRY_BACKOFF", 500*time.Millisecond),
			},
		},
		Cart: CartConfig{
			SnapshotTTL: getEnvAsDuration("CART_SNAPSHOT_TTL", 0),
		},
		Checkout: CheckoutConfig{
			ClearCartOnSuccess: getEnvAsBool("CHECKOUT_CLEAR_CART_ON_SUCCESS", false),
			VerifyTimeout:      getEnvAsDuration("CHECKOUT_VERIFY_TIMEOUT", 20*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.External.OrderAPI.BaseURL == "" {
		return fmt.Errorf("ORDER_API_BASE_URL is required")
	}

	if c.External.OrderAPI.MaxAttempts < 1 {
		return fmt.Errorf("ORDER_API_MAX_ATTEMPTS must be at least 1")
	}

	if c.IsProduction() && c.External.Gateway.KeyID == "" {
		return fmt.Errorf("GATEWAY_KEY_ID is required in production")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
