// Package config loads the portal configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/clubportal/pkg/logging"
)

type Config struct {
	// Server
	Addr   string
	DBPath string

	// Documents
	Currency string

	// Outbound email function
	MailFunctionURL string
	MailFunctionKey string
	MailTimeout     time.Duration
	MailFromName    string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadDotEnv reads a .env file into the environment when one exists.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("No .env file found, using environment")
			return
		}
		slog.Warn("Failed to load .env file", "error", err)
	}
}

// Load reads and validates the configuration.
func Load() (*Config, error) {
	c := &Config{
		Addr:            getEnv("ADDR", ":8080"),
		DBPath:          getEnv("DB_PATH", "./data/clubportal.db"),
		Currency:        strings.ToUpper(getEnv("CURRENCY", "USD")),
		MailFunctionURL: getEnv("MAIL_FUNCTION_URL", ""),
		MailFunctionKey: getEnv("MAIL_FUNCTION_KEY", ""),
		MailFromName:    getEnv("MAIL_FROM_NAME", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
	}

	timeout, err := time.ParseDuration(getEnv("MAIL_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: MAIL_TIMEOUT: %w", err)
	}
	c.MailTimeout = timeout

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if len(c.Currency) != 3 || strings.IndexFunc(c.Currency, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
		return fmt.Errorf("CURRENCY must be a three-letter code, got %q", c.Currency)
	}
	if c.MailTimeout <= 0 {
		return fmt.Errorf("MAIL_TIMEOUT must be positive")
	}
	return nil
}

// MailEnabled reports whether campaigns can be sent.
func (c *Config) MailEnabled() bool {
	return c.MailFunctionURL != ""
}

// LogLevelValue returns the parsed log level.
func (c *Config) LogLevelValue() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}

// LogFormatValue returns the parsed log format.
func (c *Config) LogFormatValue() logging.Format {
	return logging.ParseFormat(c.LogFormat)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
