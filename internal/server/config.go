// Package server provides configuration helpers that define runtime defaults
// and validation for the relay service.
package server

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultPort            = "3000"
	defaultMaxMessageSize  = 4096
	defaultReapInterval    = time.Hour
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds the server configuration, read from the environment.
type Config struct {
	Port            string        `env:"PORT"             envDefault:"3000"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS"  envDefault:"*" envSeparator:","`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE" envDefault:"4096"`
	ReapInterval    time.Duration `env:"REAP_INTERVAL"    envDefault:"1h"`
	HistoryLimit    int           `env:"HISTORY_LIMIT"    envDefault:"0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"       envDefault:"json"`
}

// NewConfig creates a Config populated with default values for all settings.
func NewConfig() *Config {
	return &Config{
		Port:            defaultPort,
		AllowedOrigins:  []string{"*"},
		MaxMessageSize:  defaultMaxMessageSize,
		ReapInterval:    defaultReapInterval,
		ShutdownTimeout: defaultShutdownTimeout,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// NewConfigFromEnv parses the process environment into a sanitized Config.
func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	sanitized := sanitizeConfig(cfg)
	return &sanitized, nil
}

// sanitizeConfig replaces unusable values with defaults.
func sanitizeConfig(cfg Config) Config {
	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = defaultReapInterval
	}

	if cfg.HistoryLimit < 0 {
		cfg.HistoryLimit = 0
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cfg.AllowedOrigins = origins

	return cfg
}

// Addr returns the listen address for Port. A bare port number binds all
// interfaces.
func (c *Config) Addr() string {
	if _, _, err := net.SplitHostPort(c.Port); err == nil {
		return c.Port
	}
	return ":" + c.Port
}
