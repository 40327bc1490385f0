package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Logger      LoggerConfig   `mapstructure:"logger"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Gateway     GatewayConfig  `mapstructure:"gateway"`
	Frontend    FrontendConfig `mapstructure:"frontend"`
	Auth        AuthConfig     `mapstructure:"auth"`
	SMTP        SMTPConfig     `mapstructure:"smtp"`
	Payment     PaymentConfig  `mapstructure:"payment"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	PublicURL         string        `mapstructure:"publicUrl"` // externally reachable base, used for gateway redirect targets
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// RedisConfig contains cache connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GatewayConfig contains payment vendor settings
type GatewayConfig struct {
	BaseURL       string        `mapstructure:"baseUrl"`
	SecretKey     string        `mapstructure:"secretKey"`
	WebhookSecret string        `mapstructure:"webhookSecret"`
	Currency      string        `mapstructure:"currency"`
	Timeout       time.Duration `mapstructure:"timeout"` // seconds; bounds every outbound call
}

// FrontendConfig contains the base URL redirect targets are built from
type FrontendConfig struct {
	BaseURL string `mapstructure:"baseUrl"` // trailing slashes stripped at load
}

// AuthConfig contains bearer-token settings
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret"`
}

// SMTPConfig contains mail transport settings for payment notifications
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// PaymentConfig contains payment processing settings
type PaymentConfig struct {
	WalletLockTimeoutMs    int64 `mapstructure:"walletLockTimeoutMs"`
	MethodStatusTTLSeconds int   `mapstructure:"methodStatusTtlSeconds"`
}
