package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"splitter/internal/push"
)

type Config struct {
	// HTTP Server
	Port string

	// Database. An absent path falls back to the local embedded store.
	DatabasePath string
	DataBackend  string

	// Push gateway
	PushGatewayURL string
	PushTimeout    time.Duration
	PushTitle      string

	// AMQP (optional; empty URL disables the event feed)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Export worker
	ExportBatchSize int
	ExportInterval  time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/splitter.db"),
		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),

		PushGatewayURL: getEnv("PUSH_GATEWAY_URL", push.DefaultGatewayURL),
		PushTimeout:    getEnvDuration("PUSH_TIMEOUT", push.DefaultTimeout),
		PushTitle:      getEnv("PUSH_TITLE", push.DefaultTitle),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "splitter"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_created"),

		ExportBatchSize: getEnvInt("EXPORT_BATCH_SIZE", 10),
		ExportInterval:  getEnvDuration("EXPORT_INTERVAL", 30*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.DatabasePath == "" {
			errs = append(errs, "database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.DatabasePath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	case "memory":
		// No settings to check.
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [sqlite memory]", c.DataBackend))
	}

	if c.PushGatewayURL == "" {
		errs = append(errs, "push gateway URL cannot be empty")
	} else if u, err := url.Parse(c.PushGatewayURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid push gateway URL '%s': %v", c.PushGatewayURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid push gateway URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.PushTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid push timeout %v: must be at least 1 second", c.PushTimeout))
	} else if c.PushTimeout > 30*time.Second {
		errs = append(errs, fmt.Sprintf("invalid push timeout %v: must be at most 30 seconds", c.PushTimeout))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ExportBatchSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid export batch size %d: must be at least 1", c.ExportBatchSize))
	} else if c.ExportBatchSize > 1000 {
		errs = append(errs, fmt.Sprintf("invalid export batch size %d: must be at most 1000", c.ExportBatchSize))
	}

	if c.ExportInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid export interval %v: must be at least 1 second", c.ExportInterval))
	} else if c.ExportInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid export interval %v: must be at most 24 hours", c.ExportInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
