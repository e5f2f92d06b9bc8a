package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	API         APIConfig         `toml:"api"`
	Search      SearchConfig      `toml:"search"`
	Cache       CacheConfig       `toml:"cache"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// APIConfig contains endpoint locations and outbound request policy.
type APIConfig struct {
	BaseURL            string        `toml:"base_url"`
	TokenURL           string        `toml:"token_url"`
	ProviderDomain     string        `toml:"provider_domain"`
	TitleBrand         string        `toml:"title_brand"`
	Timeout            time.Duration `toml:"timeout"`
	TitleTimeout       time.Duration `toml:"title_timeout"`
	RequestsPerSecond  float64       `toml:"requests_per_second"`
	ResolveTrackTitles bool          `toml:"resolve_track_titles"`
}

// SearchConfig holds defaults applied to every search. A zero Limit is not sent.
type SearchConfig struct {
	Types  []string `toml:"types"`
	Market string   `toml:"market"`
	Limit  int      `toml:"limit"`
}

// CacheConfig controls the optional in-memory response cache.
type CacheConfig struct {
	Enabled bool          `toml:"enabled"`
	Size    int           `toml:"size"`
	TTL     time.Duration `toml:"ttl"`
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
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

// ApplyEnv overrides credentials with SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET when they are set.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_ID")); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_SECRET")); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
}

// HasCredentials reports whether both client credentials are present and not the example placeholders.
func (c *Config) HasCredentials() bool {
	id, secret := c.Credentials.Spotify.ClientID, c.Credentials.Spotify.ClientSecret
	if id == "" || secret == "" {
		return false
	}
	return !strings.HasPrefix(id, "your_") && !strings.HasPrefix(secret, "your_")
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	switch {
	case c.API.BaseURL == "":
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	case c.API.TokenURL == "":
		return fmt.Errorf("%w: api.token_url is required", ErrInvalidConfig)
	case c.API.ProviderDomain == "":
		return fmt.Errorf("%w: api.provider_domain is required", ErrInvalidConfig)
	case c.API.Timeout < 0 || c.API.TitleTimeout < 0:
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	case c.API.RequestsPerSecond < 0:
		return fmt.Errorf("%w: api.requests_per_second must not be negative", ErrInvalidConfig)
	case c.Search.Limit < 0:
		return fmt.Errorf("%w: search.limit must not be negative", ErrInvalidConfig)
	case c.Cache.Enabled && c.Cache.Size <= 0:
		return fmt.Errorf("%w: cache.size must be positive when the cache is enabled", ErrInvalidConfig)
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
