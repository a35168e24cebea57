package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/wwsheet/internal/game/dice"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WWSHEET_"

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Server holds all configuration for the sheet server.
type Server struct {
	// Network
	BindAddress string `yaml:"bind_address" env:"BIND_ADDRESS"`
	Port        int    `yaml:"port" env:"PORT"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Storage
	Backend  string         `yaml:"backend" env:"BACKEND"`
	Fixtures string         `yaml:"fixtures" env:"FIXTURES"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`

	Rules dice.Rules `yaml:"rules" envPrefix:"RULES_"`

	// Outcome feed
	SendQueueSize int           `yaml:"send_queue_size" env:"SEND_QUEUE_SIZE"`
	WriteTimeout  time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`

	// Background materializations and message posts
	DispatchTimeout time.Duration `yaml:"dispatch_timeout" env:"DISPATCH_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Addr returns the HTTP listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.Port)
}

// SlogLevel converts LogLevel to slog.Level. Defaults to Info.
func (s Server) SlogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate rejects settings the server cannot start with.
func (s Server) Validate() error {
	switch s.Backend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.Backend == BackendMemory && s.Fixtures == "" {
		return fmt.Errorf("memory backend needs a fixtures file")
	}
	return nil
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		BindAddress:     "0.0.0.0",
		Port:            8080,
		LogLevel:        "info",
		Backend:         BackendMemory,
		Fixtures:        "configs/fixtures.yaml",
		Rules:           dice.DefaultRules(),
		SendQueueSize:   64,
		WriteTimeout:    10 * time.Second,
		DispatchTimeout: 10 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "wwsheet",
			Password: "wwsheet",
			DBName:   "wwsheet",
			SSLMode:  "disable",
		},
	}
}

// LoadServer loads server config from a YAML file and applies WWSHEET_*
// environment overrides. If the file doesn't exist, defaults are used.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing env: %w", err)
	}
	return cfg, nil
}
