// Package config loads and validates the workspace SSO service configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the WSP_ prefix (e.g., WSP_DATABASE_HOST
// overrides database.host in the YAML). This layering allows the same binary to
// run with a config.yaml in local development and with pure environment variables
// in containerized deployments — no recompilation or different binaries needed.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Auth         AuthConfig         `mapstructure:"auth"`
	MultiTenancy MultiTenancyConfig `mapstructure:"multi_tenancy"`
	Instance     InstanceConfig     `mapstructure:"instance"`
	License      LicenseConfig      `mapstructure:"license"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWT    JWTConfig    `mapstructure:"jwt"`
	Google GoogleConfig `mapstructure:"google"`
	Git    GitConfig    `mapstructure:"git"`
	OpenID OpenIDConfig `mapstructure:"openid"`
}

// JWTConfig holds session credential configuration
type JWTConfig struct {
	// ExpiresIn is the lifetime of issued session tokens
	ExpiresIn time.Duration `mapstructure:"expires_in"`
}

// GoogleConfig holds instance-level Google sign-in configuration
type GoogleConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// GitConfig holds instance-level Git (GitHub / GitHub Enterprise) sign-in configuration
type GitConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	// Host overrides the API base for GitHub Enterprise; empty means github.com
	Host string `mapstructure:"host"`
}

// OpenIDConfig holds instance-level OpenID Connect sign-in configuration
type OpenIDConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Name         string `mapstructure:"name"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	WellKnownURL string `mapstructure:"well_known_url"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// MultiTenancyConfig holds multi-tenancy configuration. When disabled the
// instance runs in single-tenant mode and instance-wide SSO resolution is off.
type MultiTenancyConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// InstanceConfig holds platform-wide sign-in policy applied to logins from the
// common login page (as opposed to a tenant's own login page).
type InstanceConfig struct {
	// SignUpEnabled allows first-time users to sign up from the common page
	SignUpEnabled bool `mapstructure:"sign_up_enabled"`
	// AcceptedDomains is a comma-separated email domain allow-list; empty = unrestricted
	AcceptedDomains string `mapstructure:"accepted_domains"`
	// AllowPersonalWorkspace permits just-in-time workspace creation for users
	// without an eligible organization. A row in instance_settings overrides it.
	AllowPersonalWorkspace bool `mapstructure:"allow_personal_workspace"`
}

// LicenseConfig holds license feature flags and seat limits
type LicenseConfig struct {
	// Features maps feature names (e.g. "oidc") to enablement
	Features map[string]bool `mapstructure:"features"`
	// MaxUsers caps the total user count; 0 = unlimited
	MaxUsers int `mapstructure:"max_users"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// bindEnvVars explicitly binds environment variables to config keys.
// This is necessary because AutomaticEnv() doesn't work well with nested structs during Unmarshal.
// viper.BindEnv only errors when called with zero keys; since every key here is a non-empty
// hardcoded string, any error indicates a programming bug and is surfaced to the caller.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Database
		"database.host",
		"database.port",
		"database.name",
		"database.user",
		"database.password",
		"database.ssl_mode",
		"database.max_connections",
		"database.min_idle_connections",

		// Server
		"server.host",
		"server.port",
		"server.base_url",
		"server.read_timeout",
		"server.write_timeout",

		// Auth
		"auth.jwt.expires_in",
		"auth.google.enabled",
		"auth.google.client_id",
		"auth.google.client_secret",
		"auth.git.enabled",
		"auth.git.client_id",
		"auth.git.client_secret",
		"auth.git.host",
		"auth.openid.enabled",
		"auth.openid.name",
		"auth.openid.client_id",
		"auth.openid.client_secret",
		"auth.openid.well_known_url",
		"auth.openid.redirect_url",

		// Multi-tenancy + instance policy
		"multi_tenancy.enabled",
		"instance.sign_up_enabled",
		"instance.accepted_domains",
		"instance.allow_personal_workspace",

		// License
		"license.max_users",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config.yaml in common locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/workspace-sso")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	v.SetEnvPrefix("WSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables for nested structures
	// This is necessary because AutomaticEnv() doesn't work well with Unmarshal()
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "workspace_sso")
	v.SetDefault("database.user", "workspace")
	v.SetDefault("database.ssl_mode", "require")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)

	// Auth defaults
	v.SetDefault("auth.jwt.expires_in", "24h")
	v.SetDefault("auth.google.enabled", false)
	v.SetDefault("auth.git.enabled", false)
	v.SetDefault("auth.openid.enabled", false)
	v.SetDefault("auth.openid.name", "OpenID Connect")

	// Multi-tenancy + instance policy defaults
	v.SetDefault("multi_tenancy.enabled", false)
	v.SetDefault("instance.sign_up_enabled", false)
	v.SetDefault("instance.accepted_domains", "")
	v.SetDefault("instance.allow_personal_workspace", false)

	// License defaults
	v.SetDefault("license.max_users", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.metrics.enabled", false)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}

	if c.Auth.Google.Enabled {
		if c.Auth.Google.ClientID == "" {
			return fmt.Errorf("auth.google.client_id is required when Google sign-in is enabled")
		}
		if c.Auth.Google.ClientSecret == "" {
			return fmt.Errorf("auth.google.client_secret is required when Google sign-in is enabled")
		}
	}

	if c.Auth.Git.Enabled {
		if c.Auth.Git.ClientID == "" {
			return fmt.Errorf("auth.git.client_id is required when Git sign-in is enabled")
		}
		if c.Auth.Git.ClientSecret == "" {
			return fmt.Errorf("auth.git.client_secret is required when Git sign-in is enabled")
		}
	}

	if c.Auth.OpenID.Enabled {
		if c.Auth.OpenID.ClientID == "" {
			return fmt.Errorf("auth.openid.client_id is required when OpenID sign-in is enabled")
		}
		if c.Auth.OpenID.ClientSecret == "" {
			return fmt.Errorf("auth.openid.client_secret is required when OpenID sign-in is enabled")
		}
		if c.Auth.OpenID.WellKnownURL == "" {
			return fmt.Errorf("auth.openid.well_known_url is required when OpenID sign-in is enabled")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetAddress returns the server address in host:port format
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
