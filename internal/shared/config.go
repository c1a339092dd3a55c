package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	TMDB      TMDBConfig      `toml:"tmdb"`
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	Favorites FavoritesConfig `toml:"favorites"`
	Broker    BrokerConfig    `toml:"broker"`
}

// TMDBConfig contains The Movie Database API settings.
//
// Either APIKey (v3) or AccessToken (v4 read access token) authenticates requests.
type TMDBConfig struct {
	APIKey            string  `toml:"api_key" env:"REEL_TMDB_API_KEY"`
	AccessToken       string  `toml:"access_token" env:"REEL_TMDB_ACCESS_TOKEN"`
	BaseURL           string  `toml:"base_url" env:"REEL_TMDB_BASE_URL"`
	ImageBaseURL      string  `toml:"image_base_url" env:"REEL_TMDB_IMAGE_BASE_URL"`
	Language          string  `toml:"language" env:"REEL_TMDB_LANGUAGE"`
	RequestsPerSecond float64 `toml:"requests_per_second" env:"REEL_TMDB_RPS"`
	CacheTTLSeconds   int     `toml:"cache_ttl_seconds" env:"REEL_TMDB_CACHE_TTL"`
}

// CacheTTL returns the response cache lifetime.
func (c TMDBConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"REEL_DATABASE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host" env:"REEL_SERVER_HOST"`
	Port           int      `toml:"port" env:"REEL_SERVER_PORT"`
	AllowedOrigins []string `toml:"allowed_origins" env:"REEL_SERVER_ALLOWED_ORIGINS" envSeparator:","`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// FavoritesConfig contains favorites store settings.
type FavoritesConfig struct {
	Key string `toml:"key" env:"REEL_FAVORITES_KEY"`
}

// BrokerConfig contains the NATS settings used to fan out favorites changes between processes.
//
// An empty NATSURL keeps change notification in-process.
type BrokerConfig struct {
	NATSURL string `toml:"nats_url" env:"REEL_NATS_URL"`
	Subject string `toml:"subject" env:"REEL_NATS_SUBJECT"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
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

// ApplyEnv loads variables from the dotenv files (when present) and overlays REEL_* environment variables onto config.
//
// Missing dotenv files are ignored. Unset variables leave the TOML value in place.
func ApplyEnv(config *Config, dotenvFiles ...string) error {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate reports configuration problems that would prevent the app from talking to TMDB.
func (c *Config) Validate() error {
	if c.TMDB.APIKey == "" && c.TMDB.AccessToken == "" {
		return fmt.Errorf("%w: set tmdb.api_key or tmdb.access_token", ErrMissingCredentials)
	}
	if c.TMDB.BaseURL == "" {
		return fmt.Errorf("%w: tmdb.base_url is empty", ErrInvalidConfig)
	}
	if c.Favorites.Key == "" {
		return fmt.Errorf("%w: favorites.key is empty", ErrInvalidConfig)
	}
	return nil
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
