package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultVerificationURL is where users enter the device code.
	DefaultVerificationURL = "https://microsoft.com/devicelogin"

	// ScopeCalendarsReadWrite grants event creation on the user's calendar.
	ScopeCalendarsReadWrite = "Calendars.ReadWrite"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Microsoft MicrosoftConfig `mapstructure:"microsoft"`
	Graph     GraphConfig     `mapstructure:"graph"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"` // postgres:// URL, wins over the discrete fields
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
	LockWait time.Duration `mapstructure:"lock_wait"`
}

// MicrosoftConfig stores the identity platform application settings
type MicrosoftConfig struct {
	ClientID        string   `mapstructure:"client_id"`
	Tenant          string   `mapstructure:"tenant"`
	Scopes          []string `mapstructure:"scopes"`
	VerificationURL string   `mapstructure:"verification_url"`
	PollDeviceFlow  bool     `mapstructure:"poll_device_flow"`
}

// GraphConfig stores Microsoft Graph client settings
type GraphConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	LogCalls          bool          `mapstructure:"log_calls"`
	ExposeLogs        bool          `mapstructure:"expose_logs"` // serve GET /api/logs
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "teams-meeting-bridge")
	v.SetDefault("app.port", 3000)
	v.SetDefault("app.env", "production")

	// Every key needs a default so AutomaticEnv can override it during Unmarshal
	v.SetDefault("database.url", "")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 30*time.Second)
	v.SetDefault("redis.lock_wait", 5*time.Second)

	v.SetDefault("microsoft.client_id", "")
	v.SetDefault("microsoft.tenant", "common")
	v.SetDefault("microsoft.scopes", []string{ScopeCalendarsReadWrite})
	v.SetDefault("microsoft.verification_url", DefaultVerificationURL)
	v.SetDefault("microsoft.poll_device_flow", true)

	v.SetDefault("graph.base_url", "https://graph.microsoft.com/v1.0")
	v.SetDefault("graph.timeout", 30*time.Second)
	v.SetDefault("graph.requests_per_second", 10.0)
	v.SetDefault("graph.burst", 15)
	v.SetDefault("graph.log_calls", true)
	v.SetDefault("graph.expose_logs", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindLegacyEnv maps the environment names used by earlier deployments.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"app.port":            {"APP_PORT", "PORT"},
		"database.url":        {"DATABASE_URL"},
		"microsoft.client_id": {"MICROSOFT_CLIENT_ID", "MS_APP_ID"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return err
		}
	}
	return nil
}

func NewConfig() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	return Load(viper.New(), ".", "./config")
}

// Load reads config.yaml from the given paths (if present) and applies
// environment overrides on top.
func Load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validateDatabaseURL(cfg.Database.URL); err != nil {
		return nil, err
	}

	if len(cfg.Microsoft.Scopes) == 0 {
		cfg.Microsoft.Scopes = []string{ScopeCalendarsReadWrite}
	}

	return &cfg, nil
}

// validateDatabaseURL rejects URLs lib/pq cannot dial, such as a Supabase
// project API endpoint.
func validateDatabaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid database.url: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("invalid database.url: scheme %q is not postgres:// or postgresql://", u.Scheme)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
