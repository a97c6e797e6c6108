package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"net"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Session     SessionConfig     `toml:"session"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Telegram    TelegramConfig    `toml:"telegram"`
	Credentials CredentialsConfig `toml:"credentials"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	PublicURL      string   `toml:"public_url"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimit      float64  `toml:"rate_limit"`
	RateBurst      int      `toml:"rate_burst"`
	TrustedProxies []string `toml:"trusted_proxies"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains database connection settings.
//
// Driver is "pgx" for Postgres or "sqlite3" for a local file (or ":memory:").
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SessionConfig selects the chat session backend.
type SessionConfig struct {
	Backend       string `toml:"backend"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTLSeconds    int    `toml:"ttl_seconds"`
}

// TTL returns the session expiry; zero means no expiry.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

// CatalogConfig points at an optional catalog file. Empty uses the embedded catalog.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// TelegramConfig contains bot credentials. Username is used for the t.me redirect after OAuth.
type TelegramConfig struct {
	Token    string `toml:"token"`
	Username string `toml:"username"`
}

// BotURL returns the public t.me link of the bot.
func (t TelegramConfig) BotURL() string {
	return "https://t.me/" + t.Username
}

// CredentialsConfig contains OAuth provider credentials.
type CredentialsConfig struct {
	Genius  OAuthConfig `toml:"genius"`
	Spotify OAuthConfig `toml:"spotify"`
}

// OAuthConfig contains a provider's client credentials.
type OAuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// placeholderPrefix marks example values such as "your_genius_client_id".
const placeholderPrefix = "your_"

// Configured reports whether both client id and secret are set to real values.
func (o OAuthConfig) Configured() bool {
	for _, v := range []string{o.ClientID, o.ClientSecret} {
		if v == "" || strings.HasPrefix(v, placeholderPrefix) {
			return false
		}
	}
	return true
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if !slices.Contains([]string{"pgx", "sqlite3"}, c.Database.Driver) {
		return fmt.Errorf("%w: unsupported database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database dsn is empty", ErrInvalidConfig)
	}
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("%w: redis session backend requires redis_addr", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown session backend %q", ErrInvalidConfig, c.Session.Backend)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("%w: rate limit values must not be negative", ErrInvalidConfig)
	}
	for _, p := range c.Server.TrustedProxies {
		if net.ParseIP(p) == nil {
			return fmt.Errorf("%w: trusted proxy %q is not an IP address", ErrInvalidConfig, p)
		}
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path in TOML form.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
