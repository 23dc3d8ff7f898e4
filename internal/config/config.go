// ABOUTME: Configuration management with storage backend selection
// ABOUTME: Reads JSON settings, applies .env and PODPLAY_* overrides, and opens the configured store

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/harper/podplay/internal/notify"
	"github.com/harper/podplay/internal/search"
	"github.com/harper/podplay/internal/storage"
)

// Backend names accepted in the config file.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

// Config stores podplay configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "postgres" or "badger".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for local data.
	// SQLite puts podplay.db here, Badger uses a badger/ subdirectory.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/podplay.
	DataDir string `json:"data_dir,omitempty"`

	// PostgresDSN is the connection string used by the postgres backend.
	PostgresDSN string `json:"postgres_dsn,omitempty"`

	// Schedule is the cron spec used by serve to run updates.
	Schedule string `json:"schedule,omitempty"`

	// Concurrency bounds parallel feed fetches during an update.
	Concurrency int `json:"concurrency,omitempty"`

	// LogLevel is a logrus level name.
	LogLevel string `json:"log_level,omitempty"`

	// SearchURL is the podcast directory search endpoint.
	SearchURL string `json:"search_url,omitempty"`

	// SearchCountry limits directory search to one store country, e.g. "us".
	SearchCountry string `json:"search_country,omitempty"`

	// AMQP enables publishing change events to RabbitMQ when URL is set.
	AMQP notify.AMQPConfig `json:"amqp"`
}

// GetBackend returns the configured backend, defaulting to sqlite.
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.GetDefaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// AMQPEnabled reports whether event publishing to RabbitMQ is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQP.URL != ""
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Store implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Store, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case BackendSQLite:
		return storage.NewSQLiteStore(filepath.Join(dataDir, DefaultDBFilename))
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires postgres_dsn")
		}
		return storage.NewPostgresStore(c.PostgresDSN)
	case BackendBadger:
		return storage.NewBadgerStore(filepath.Join(dataDir, DefaultBadgerDir))
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "podplay", "config.json")
}

// Load reads config from disk, then applies environment overrides and defaults.
// A missing file is created with default settings.
func Load() (*Config, error) {
	// A .env file is optional
	_ = godotenv.Load()

	cfg, err := readFile(GetConfigPath())
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{Backend: BackendSQLite}
			if saveErr := cfg.Save(); saveErr != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save default config: %v\n", saveErr)
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyEnv overrides file values with PODPLAY_* environment variables.
func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"PODPLAY_BACKEND":        &c.Backend,
		"PODPLAY_DATA_DIR":       &c.DataDir,
		"PODPLAY_POSTGRES_DSN":   &c.PostgresDSN,
		"PODPLAY_SCHEDULE":       &c.Schedule,
		"PODPLAY_LOG_LEVEL":      &c.LogLevel,
		"PODPLAY_AMQP_URL":       &c.AMQP.URL,
		"PODPLAY_SEARCH_URL":     &c.SearchURL,
		"PODPLAY_SEARCH_COUNTRY": &c.SearchCountry,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*field = v
		}
	}

	if v, ok := os.LookupEnv("PODPLAY_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PODPLAY_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.SearchURL == "" {
		c.SearchURL = search.DefaultEndpoint
	}
	if c.AMQP.Exchange == "" {
		c.AMQP.Exchange = DefaultAMQPExchange
	}
	if c.AMQP.RoutingKey == "" {
		c.AMQP.RoutingKey = DefaultAMQPRoutingKey
	}
	if c.AMQP.QueueName == "" {
		c.AMQP.QueueName = DefaultAMQPQueue
	}
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// atomicWrite writes data to a temp file in the target directory and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirPerms); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
