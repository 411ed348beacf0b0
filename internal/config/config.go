package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/production"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Server holds all configuration for the truck simulation server.
type Server struct {
	LogLevel string `yaml:"log_level"`

	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Economy  Economy        `yaml:"economy"`
}

// StorageConfig selects where snapshots are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"` // "file" or "postgres"
	Dir     string `yaml:"dir"`     // save directory for the file backend
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// SessionConfig holds the timings of the simulation loops.
type SessionConfig struct {
	ID string `yaml:"id"` // empty: start a fresh session with a new id

	TickInterval        time.Duration `yaml:"tick_interval"`
	AutoCollectInterval time.Duration `yaml:"auto_collect_interval"` // 0 disables auto-collect
	SaveInterval        time.Duration `yaml:"save_interval"`         // 0 disables periodic saves
	SaveTimeout         time.Duration `yaml:"save_timeout"`
}

// Default returns Server config with sensible defaults.
func Default() Server {
	return Server{
		LogLevel: "info",
		Storage: StorageConfig{
			Backend: BackendFile,
			Dir:     "saves",
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "truck",
			Password: "truck",
			DBName:   "truck",
			SSLMode:  "disable",
		},
		Session: SessionConfig{
			TickInterval:        100 * time.Millisecond,
			AutoCollectInterval: 0,
			SaveInterval:        30 * time.Second,
			SaveTimeout:         5 * time.Second,
		},
		Economy: DefaultEconomy(),
	}
}

// Load loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
// The economy preset named in the file is applied before the file's own economy overrides.
func Load(path string) (Server, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	var preset struct {
		Economy struct {
			Preset string `yaml:"preset"`
		} `yaml:"economy"`
	}
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if name := preset.Economy.Preset; name != "" {
		eco, err := EconomyPreset(name)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.Economy = eco
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks settings that cannot be corrected at runtime.
// Economy numbers are validated by the production core when a session is built.
func (c Server) Validate() error {
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("%w: storage.dir is required for the file backend", production.ErrConfiguration)
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", production.ErrConfiguration, c.Storage.Backend)
	}

	if c.Session.TickInterval <= 0 {
		return fmt.Errorf("%w: session.tick_interval must be positive", production.ErrConfiguration)
	}
	if c.Session.SaveTimeout <= 0 {
		return fmt.Errorf("%w: session.save_timeout must be positive", production.ErrConfiguration)
	}
	if c.Session.SaveInterval < 0 || c.Session.AutoCollectInterval < 0 {
		return fmt.Errorf("%w: negative session interval", production.ErrConfiguration)
	}
	if c.Economy.MaxOfflineProgress < 0 {
		return fmt.Errorf("%w: economy.max_offline_progress is negative", production.ErrConfiguration)
	}
	return nil
}
