// Package config provides configuration for the chat backend.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Database
	StoreBackend string `yaml:"store_backend"`
	DatabaseURL  string `yaml:"database_url"`
	DatabaseName string `yaml:"database_name"`

	// Whether DATABASE_URL / DATABASE_NAME were present in the environment.
	DatabaseURLSet  bool `yaml:"-"`
	DatabaseNameSet bool `yaml:"-"`

	// WebSocket settings
	WSPingInterval   time.Duration `yaml:"ws_ping_interval"`
	WSWriteTimeout   time.Duration `yaml:"ws_write_timeout"`
	WSReadTimeout    time.Duration `yaml:"ws_read_timeout"`
	WSMaxMessageSize int64         `yaml:"ws_max_message_size"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:             8000,
		ShutdownTimeout:  10 * time.Second,
		StoreBackend:     "sqlite",
		DatabaseURL:      "file:chatbot.db?cache=shared&mode=rwc",
		DatabaseName:     "chatbot",
		WSPingInterval:   30 * time.Second,
		WSWriteTimeout:   10 * time.Second,
		WSReadTimeout:    60 * time.Second,
		WSMaxMessageSize: 65536,
		LogLevel:         "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory and the environment, each
// layer overriding the previous one.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnvInt("PORT", c.Port)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT_MS", c.ShutdownTimeout)
	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DatabaseName = getEnv("DATABASE_NAME", c.DatabaseName)
	c.DatabaseURLSet = os.Getenv("DATABASE_URL") != ""
	c.DatabaseNameSet = os.Getenv("DATABASE_NAME") != ""
	c.WSPingInterval = getEnvDuration("WS_PING_INTERVAL_MS", c.WSPingInterval)
	c.WSWriteTimeout = getEnvDuration("WS_WRITE_TIMEOUT_MS", c.WSWriteTimeout)
	c.WSReadTimeout = getEnvDuration("WS_READ_TIMEOUT_MS", c.WSReadTimeout)
	c.WSMaxMessageSize = int64(getEnvInt("WS_MAX_MESSAGE_SIZE", int(c.WSMaxMessageSize)))
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if ms, err := strconv.Atoi(val); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultVal
}
