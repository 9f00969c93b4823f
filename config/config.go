package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config Application Configuration
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Sheets      SheetsConfig      `mapstructure:"sheets"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
	Dispatch    DispatchConfig    `mapstructure:"dispatch"`
}

// AppConfig Application Configuration
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`    // development, staging, production
	Locale  string `mapstructure:"locale"` // ar, en
}

// ServerConfig Server Configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig Log Configuration
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// CORSConfig CORS Configuration
type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// MetricsConfig Prometheus exposition
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// IdempotencyConfig selects and tunes the request id registry.
type IdempotencyConfig struct {
	Backend       string        `mapstructure:"backend"` // memory, redis, mysql
	Retention     time.Duration `mapstructure:"retention"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
	Redis         RedisConfig   `mapstructure:"redis"`
}

// RedisConfig Redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// DatabaseConfig Database Configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	LogLevel        string        `mapstructure:"log_level"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Retry           RetryConfig   `mapstructure:"retry"`
}

// RetryConfig Retry configuration for transient database errors
type RetryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialDelay    time.Duration `mapstructure:"initial_delay"`
	MaxDelay        time.Duration `mapstructure:"max_delay"`
	BackoffFactor   float64       `mapstructure:"backoff_factor"`
	JitterEnabled   bool          `mapstructure:"jitter_enabled"`
	RetryOnDeadlock bool          `mapstructure:"retry_on_deadlock"`
	RetryOnLockWait bool          `mapstructure:"retry_on_lock_wait"`
}

// SheetsConfig Google Sheets service account and target
type SheetsConfig struct {
	SpreadsheetID       string        `mapstructure:"spreadsheet_id"`
	SheetName           string        `mapstructure:"sheet_name"`
	ServiceAccountEmail string        `mapstructure:"service_account_email"`
	PrivateKey          string        `mapstructure:"private_key"`
	Endpoint            string        `mapstructure:"endpoint"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// SMTPConfig Notification mail settings
type SMTPConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	FromName     string        `mapstructure:"from_name"`
	Recipients   []string      `mapstructure:"recipients"`
	AssetBaseURL string        `mapstructure:"asset_base_url"`
	SendRate     float64       `mapstructure:"send_rate"` // messages per second
	SendBurst    int           `mapstructure:"send_burst"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// DispatchConfig Circuit breaker settings shared by both dispatch sinks
type DispatchConfig struct {
	BreakerEnabled   bool          `mapstructure:"breaker_enabled"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
	HalfOpenRequests uint32        `mapstructure:"half_open_requests"`
}

// IsDevelopment Whether it's development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction Whether it's production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// SheetsConfigured reports whether both the target sheet and the credentials are present.
func (c *SheetsConfig) SheetsConfigured() bool {
	return c.SpreadsheetID != "" && c.ServiceAccountEmail != "" && c.PrivateKey != ""
}

// MailConfigured reports whether SMTP credentials are present.
func (c *SMTPConfig) MailConfigured() bool {
	return c.Username != "" && c.Password != ""
}

// Load Load Configuration
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("WATCHBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindLegacyEnv(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Sheets.PrivateKey = strings.ReplaceAll(config.Sheets.PrivateKey, `\n`, "\n")
	config.SMTP.Recipients = splitRecipients(config.SMTP.Recipients)
	if len(config.SMTP.Recipients) == 0 && config.SMTP.Username != "" {
		config.SMTP.Recipients = []string{config.SMTP.Username}
	}

	return &config, nil
}

// bindLegacyEnv keeps the storefront's deployment variables working next to WATCHBOX_*.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"sheets.spreadsheet_id":        {"WATCHBOX_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEET_ID"},
		"sheets.service_account_email": {"WATCHBOX_SHEETS_SERVICE_ACCOUNT_EMAIL", "GOOGLE_SERVICE_ACCOUNT_EMAIL"},
		"sheets.private_key":           {"WATCHBOX_SHEETS_PRIVATE_KEY", "GOOGLE_PRIVATE_KEY"},
		"smtp.host":                    {"WATCHBOX_SMTP_HOST", "SMTP_HOST"},
		"smtp.port":                    {"WATCHBOX_SMTP_PORT", "SMTP_PORT"},
		"smtp.username":                {"WATCHBOX_SMTP_USERNAME", "SMTP_FROM_EMAIL"},
		"smtp.password":                {"WATCHBOX_SMTP_PASSWORD", "SMTP_PASSWORD"},
		"smtp.recipients":              {"WATCHBOX_SMTP_RECIPIENTS", "ORDER_NOTIFICATION_EMAIL"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return err
		}
	}
	return nil
}

// splitRecipients flattens comma separated entries ("a@x, b@y") and drops blanks.
func splitRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, addr := range strings.Split(entry, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				out = append(out, addr)
			}
		}
	}
	return out
}

// setDefaults Set default configuration
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "watchbox")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.locale", "ar")

	// Server
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/app.log")

	// CORS
	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 86400)

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "watchbox")

	// Idempotency
	v.SetDefault("idempotency.backend", "memory")
	v.SetDefault("idempotency.retention", "24h")
	v.SetDefault("idempotency.purge_interval", "10m")
	v.SetDefault("idempotency.redis.addr", "localhost:6379")
	v.SetDefault("idempotency.redis.db", 0)
	v.SetDefault("idempotency.redis.prefix", "watchbox")

	// Database (mysql idempotency backend)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "watchbox")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.retry.enabled", true)
	v.SetDefault("database.retry.max_attempts", 3)
	v.SetDefault("database.retry.initial_delay", "100ms")
	v.SetDefault("database.retry.max_delay", "2s")
	v.SetDefault("database.retry.backoff_factor", 2.0)
	v.SetDefault("database.retry.jitter_enabled", true)
	v.SetDefault("database.retry.retry_on_deadlock", true)
	v.SetDefault("database.retry.retry_on_lock_wait", true)

	// Sheets
	v.SetDefault("sheets.sheet_name", "Sheet1")
	v.SetDefault("sheets.timeout", "15s")

	// SMTP
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.asset_base_url", "https://your-domain.com")
	v.SetDefault("smtp.send_rate", 1.0)
	v.SetDefault("smtp.send_burst", 5)
	v.SetDefault("smtp.timeout", "20s")

	// Dispatch
	v.SetDefault("dispatch.breaker_enabled", true)
	v.SetDefault("dispatch.failure_threshold", 5)
	v.SetDefault("dispatch.open_timeout", "30s")
	v.SetDefault("dispatch.half_open_requests", 1)
}
