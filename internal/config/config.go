package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Defaults for the token configuration. The refresh lifetime corresponds
// to 28 days.
const (
	DefaultIssuer          = "event-mate:auth"
	DefaultPrivateKeyPath  = "/app/credentials/jwt/private-key.pem"
	DefaultPublicKeyPath   = "/app/credentials/jwt/public-key.pem"
	DefaultAccessLifetime  = 15 * time.Minute
	DefaultRefreshLifetime = 672 * time.Hour
	DefaultMaxActiveTokens = 5
)

// Config holds the application configuration
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Services ServicesConfig `yaml:"services"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AppConfig holds app-specific configuration
type AppConfig struct {
	Name string `yaml:"name"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AuthConfig holds the token and session configuration
type AuthConfig struct {
	Issuer          string `yaml:"issuer"`
	PrivateKeyPath  string `yaml:"private_key"`
	PublicKeyPath   string `yaml:"public_key"`
	AccessLifetime  string `yaml:"access_lifetime"`
	RefreshLifetime string `yaml:"refresh_lifetime"`
	MaxActiveTokens int    `yaml:"max_active_tokens"`
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// RedisConfig holds the optional revocation cache configuration
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ServicesConfig holds the base URLs of the other microservices and the
// shared secret used for service-to-service calls
type ServicesConfig struct {
	UserURL  string `yaml:"user_url"`
	AuthURL  string `yaml:"auth_url"`
	EventURL string `yaml:"event_url"`
	Secret   string `yaml:"secret"`
}

// LoggingConfig holds logging-specific configuration
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads configuration from a YAML file, applies environment variable
// overrides and fills in defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	environment, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(environment)
	cfg.applyDefaults()

	if err := cfg.Auth.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(e *Environment) {
	if e.JWTIssuer != "" {
		c.Auth.Issuer = e.JWTIssuer
	}
	if e.JWTPrivateKey != "" {
		c.Auth.PrivateKeyPath = e.JWTPrivateKey
	}
	if e.JWTPublicKey != "" {
		c.Auth.PublicKeyPath = e.JWTPublicKey
	}
	if e.JWTAccessLifetime != "" {
		c.Auth.AccessLifetime = e.JWTAccessLifetime
	}
	if e.JWTRefreshLifetime != "" {
		c.Auth.RefreshLifetime = e.JWTRefreshLifetime
	}
	if e.JWTMaxActiveTokens > 0 {
		c.Auth.MaxActiveTokens = e.JWTMaxActiveTokens
	}
	if e.UserServiceURL != "" {
		c.Services.UserURL = e.UserServiceURL
	}
	if e.AuthServiceURL != "" {
		c.Services.AuthURL = e.AuthServiceURL
	}
	if e.EventServiceURL != "" {
		c.Services.EventURL = e.EventServiceURL
	}
	if e.MicroserviceSecret != "" {
		c.Services.Secret = e.MicroserviceSecret
	}
}

func (c *Config) applyDefaults() {
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = DefaultIssuer
	}
	if c.Auth.PrivateKeyPath == "" {
		c.Auth.PrivateKeyPath = DefaultPrivateKeyPath
	}
	if c.Auth.PublicKeyPath == "" {
		c.Auth.PublicKeyPath = DefaultPublicKeyPath
	}
	if c.Auth.MaxActiveTokens == 0 {
		c.Auth.MaxActiveTokens = DefaultMaxActiveTokens
	}
}

func (a *AuthConfig) validate() error {
	if a.AccessLifetime != "" {
		if _, err := time.ParseDuration(a.AccessLifetime); err != nil {
			return fmt.Errorf("invalid auth.access_lifetime: %w", err)
		}
	}
	if a.RefreshLifetime != "" {
		if _, err := time.ParseDuration(a.RefreshLifetime); err != nil {
			return fmt.Errorf("invalid auth.refresh_lifetime: %w", err)
		}
	}
	if a.MaxActiveTokens < 0 {
		return fmt.Errorf("auth.max_active_tokens must not be negative")
	}
	return nil
}

// AccessTTL returns the access token lifetime
func (a *AuthConfig) AccessTTL() time.Duration {
	d, err := time.ParseDuration(a.AccessLifetime)
	if err != nil || a.AccessLifetime == "" {
		return DefaultAccessLifetime
	}
	return d
}

// RefreshTTL returns the refresh token lifetime
func (a *AuthConfig) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(a.RefreshLifetime)
	if err != nil || a.RefreshLifetime == "" {
		return DefaultRefreshLifetime
	}
	return d
}

// Address returns the server address in the format "host:port"
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Address returns the redis address in the format "host:port"
func (r *RedisConfig) Address() string {
	return net.JoinHostPort(r.Host, fmt.Sprintf("%d", r.Port))
}

// quoteDSNValue quotes a DSN value if it contains spaces or special characters.
// Single quotes inside the value are escaped by doubling them.
func quoteDSNValue(value string) string {
	needsQuoting := false
	for _, r := range value {
		if r == ' ' || r == '\'' || r == '\\' || r == '=' {
			needsQuoting = true
			break
		}
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '-' || r == '_' || r == '/' || r == '@' || r == ':') {
			needsQuoting = true
			break
		}
	}

	if !needsQuoting {
		return value
	}

	escaped := ""
	for _, r := range value {
		if r == '\'' {
			escaped += "''"
		} else {
			escaped += string(r)
		}
	}

	return "'" + escaped + "'"
}

// DSN returns the database connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quoteDSNValue(d.Host),
		d.Port,
		quoteDSNValue(d.User),
		quoteDSNValue(d.Password),
		quoteDSNValue(d.DBName),
		quoteDSNValue(d.SSLMode),
	)
}
