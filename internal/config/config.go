package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service Ports
	BindHost    string `env:"BRIDGE_HOST" default:"127.0.0.1"`
	HTTPPort    int    `env:"BRIDGE_HTTP_PORT" default:"8010"`
	IPCPort     int    `env:"HOST_IPC_PORT" default:"8011"`
	SendPort    int    `env:"TTS_SEND_PORT" default:"39999"`
	ReceivePort int    `env:"TTS_RECEIVE_PORT" default:"39998"`

	// Health check
	CheckTimeout time.Duration `env:"TTS_CHECK_TIMEOUT" default:"3s"`

	// Limits (0 disables the cap)
	MaxBodySize    int64 `env:"BRIDGE_MAX_BODY_SIZE" default:"10MB"`
	MaxMessageSize int64 `env:"TTS_MAX_MESSAGE_SIZE" default:"1MB"`

	// Inbound accept throttle
	AcceptRate  float64 `env:"TTS_ACCEPT_RATE" default:"50"`
	AcceptBurst int     `env:"TTS_ACCEPT_BURST" default:"100"`

	// Host event bus
	EventBuffer int `env:"EVENT_BUFFER" default:"64"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"json"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional, system env vars still apply without it
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("env_file_not_loaded", "error", err)
	}

	config := &Config{}

	loadEnvString(&config.GoEnv, "GO_ENV", "development")
	loadEnvString(&config.BindHost, "BRIDGE_HOST", "127.0.0.1")

	// Ports
	if err := loadEnvInt(&config.HTTPPort, "BRIDGE_HTTP_PORT", 8010); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.IPCPort, "HOST_IPC_PORT", 8011); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.SendPort, "TTS_SEND_PORT", 39999); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.ReceivePort, "TTS_RECEIVE_PORT", 39998); err != nil {
		return nil, err
	}

	if err := loadEnvDuration(&config.CheckTimeout, "TTS_CHECK_TIMEOUT", 3*time.Second); err != nil {
		return nil, err
	}

	// Limits
	if err := loadEnvSize(&config.MaxBodySize, "BRIDGE_MAX_BODY_SIZE", 10<<20); err != nil {
		return nil, err
	}
	if err := loadEnvSize(&config.MaxMessageSize, "TTS_MAX_MESSAGE_SIZE", 1<<20); err != nil {
		return nil, err
	}

	if err := loadEnvFloat(&config.AcceptRate, "TTS_ACCEPT_RATE", 50); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.AcceptBurst, "TTS_ACCEPT_BURST", 100); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.EventBuffer, "EVENT_BUFFER", 64); err != nil {
		return nil, err
	}

	loadEnvString(&config.LogLevel, "LOG_LEVEL", "info")
	loadEnvString(&config.LogFormat, "LOG_FORMAT", "json")

	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %w", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number value for %s: %w", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %w", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvSize(target *int64, key string, defaultValue int64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := ParseSize(value)
		if err != nil {
			return fmt.Errorf("invalid size value for %s: %w", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// ParseSize parses byte sizes such as "10MB", "512KB", "1GB" or a plain
// byte count. Units are binary (1KB = 1024 bytes).
func ParseSize(value string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	multiplier := int64(1)
	for _, unit := range []struct {
		suffix string
		factor int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			multiplier = unit.factor
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("size must not be negative: %q", value)
	}
	return n * multiplier, nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	// Validate ports are in valid range
	ports := []struct {
		name  string
		value int
	}{
		{"BRIDGE_HTTP_PORT", c.HTTPPort},
		{"HOST_IPC_PORT", c.IPCPort},
		{"TTS_SEND_PORT", c.SendPort},
		{"TTS_RECEIVE_PORT", c.ReceivePort},
	}
	for _, p := range ports {
		if p.value < 1 || p.value > 65535 {
			errors = append(errors, fmt.Sprintf("%s must be between 1 and 65535", p.name))
		}
	}
	if c.SendPort == c.ReceivePort {
		errors = append(errors, "TTS_SEND_PORT and TTS_RECEIVE_PORT must differ")
	}

	if c.CheckTimeout <= 0 {
		errors = append(errors, "TTS_CHECK_TIMEOUT must be positive")
	}
	if c.AcceptRate < 0 || c.AcceptBurst < 0 {
		errors = append(errors, "TTS_ACCEPT_RATE and TTS_ACCEPT_BURST must not be negative")
	}
	if c.EventBuffer < 1 {
		errors = append(errors, "EVENT_BUFFER must be at least 1")
	}

	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	// Validate log format
	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// Addr joins the bind host with a port.
func (c *Config) Addr(port int) string {
	return fmt.Sprintf("%s:%d", c.BindHost, port)
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
