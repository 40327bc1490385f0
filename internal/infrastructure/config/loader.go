package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./.env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
	"../../configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file first
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")

	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Environment variables override config file values
	v.SetEnvPrefix("QR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env

	processDurations(&config)

	// All redirect targets are built from this base; a trailing slash would
	// double up in the joined paths.
	config.Frontend.BaseURL = strings.TrimRight(config.Frontend.BaseURL, "/")
	config.Server.PublicURL = strings.TrimRight(config.Server.PublicURL, "/")

	return &config, nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}

	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.publicUrl", "http://localhost:8080")
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	// Database defaults for non-sensitive settings
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Gateway defaults. Every outbound vendor call is bounded by this
	// timeout; expiry means "unknown, retry later", not payment failure.
	v.SetDefault("gateway.baseUrl", "https://api.flutterwave.com/v3")
	v.SetDefault("gateway.currency", "NGN")
	v.SetDefault("gateway.timeout", 15) // seconds

	// Payment defaults
	v.SetDefault("payment.walletLockTimeoutMs", 5000)
	v.SetDefault("payment.methodStatusTtlSeconds", 300)
}

// getEnvironment determines the environment based on QR_ENV
func getEnvironment() string {
	env := os.Getenv("QR_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures environment variables override config values.
// Secrets in particular are expected to arrive via the environment.
func processEnvOverrides(v *viper.Viper) {
	// Database sensitive information
	if dbHost := os.Getenv("QR_DB_HOST"); dbHost != "" {
		v.Set("database.host", dbHost)
	}
	if dbPort := os.Getenv("QR_DB_PORT"); dbPort != "" {
		v.Set("database.port", dbPort)
	}
	if dbUser := os.Getenv("QR_DB_USERNAME"); dbUser != "" {
		v.Set("database.username", dbUser)
	}
	if dbPass := os.Getenv("QR_DB_PASSWORD"); dbPass != "" {
		v.Set("database.password", dbPass)
	}
	if dbName := os.Getenv("QR_DB_NAME"); dbName != "" {
		v.Set("database.database", dbName)
	}
	if sslMode := os.Getenv("QR_DB_SSL_MODE"); sslMode != "" {
		v.Set("database.sslMode", sslMode)
	}

	// Server settings
	if serverHost := os.Getenv("QR_SERVER_HOST"); serverHost != "" {
		v.Set("server.host", serverHost)
	}
	if serverPort := os.Getenv("QR_SERVER_PORT"); serverPort != "" {
		v.Set("server.port", serverPort)
	}
	if publicURL := os.Getenv("QR_SERVER_PUBLIC_URL"); publicURL != "" {
		v.Set("server.publicUrl", publicURL)
	}

	// Logger settings
	if logLevel := os.Getenv("QR_LOGGER_LEVEL"); logLevel != "" {
		v.Set("logger.level", logLevel)
	}

	// Redis settings
	if redisAddr := os.Getenv("QR_REDIS_ADDR"); redisAddr != "" {
		v.Set("redis.addr", redisAddr)
	}
	if redisPass := os.Getenv("QR_REDIS_PASSWORD"); redisPass != "" {
		v.Set("redis.password", redisPass)
	}

	// Gateway secrets and settings
	if baseURL := os.Getenv("QR_GATEWAY_BASE_URL"); baseURL != "" {
		v.Set("gateway.baseUrl", baseURL)
	}
	if secretKey := os.Getenv("QR_GATEWAY_SECRET_KEY"); secretKey != "" {
		v.Set("gateway.secretKey", secretKey)
	}
	if webhookSecret := os.Getenv("QR_GATEWAY_WEBHOOK_SECRET"); webhookSecret != "" {
		v.Set("gateway.webhookSecret", webhookSecret)
	}
	if timeout := getEnvInt("QR_GATEWAY_TIMEOUT_SECONDS", 0); timeout > 0 {
		v.Set("gateway.timeout", timeout)
	}

	// Frontend base URL for redirect targets
	if frontendURL := os.Getenv("QR_FRONTEND_BASE_URL"); frontendURL != "" {
		v.Set("frontend.baseUrl", frontendURL)
	}

	// Auth settings
	if jwtSecret := os.Getenv("QR_JWT_SECRET"); jwtSecret != "" {
		v.Set("auth.jwtSecret", jwtSecret)
	}

	// SMTP settings
	if smtpHost := os.Getenv("QR_SMTP_HOST"); smtpHost != "" {
		v.Set("smtp.host", smtpHost)
	}
	if smtpPort := getEnvInt("QR_SMTP_PORT", 0); smtpPort > 0 {
		v.Set("smtp.port", smtpPort)
	}
	if smtpUser := os.Getenv("QR_SMTP_USERNAME"); smtpUser != "" {
		v.Set("smtp.username", smtpUser)
	}
	if smtpPass := os.Getenv("QR_SMTP_PASSWORD"); smtpPass != "" {
		v.Set("smtp.password", smtpPass)
	}
	if smtpFrom := os.Getenv("QR_SMTP_FROM"); smtpFrom != "" {
		v.Set("smtp.from", smtpFrom)
	}

	// Payment settings
	if lockTimeout := getEnvInt("QR_WALLET_LOCK_TIMEOUT_MS", 0); lockTimeout > 0 {
		v.Set("payment.walletLockTimeoutMs", lockTimeout)
	}
}

// Helper function to get environment variable as int
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// processDurations converts time.Duration fields from their raw values
func processDurations(config *Config) {
	// Seconds
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	// Minutes
	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute

	// Seconds
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second
	config.Gateway.Timeout = time.Duration(config.Gateway.Timeout) * time.Second
}
