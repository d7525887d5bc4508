// Package config loads service settings from the environment (and an
// optional config file) through viper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"finviz/internal/log"

	"github.com/spf13/viper"
)

type Config struct {
	// HTTP Server
	Port               string `mapstructure:"port"`
	MaxUploadBytes     int64  `mapstructure:"max_upload_bytes"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
	CORSOrigin         string `mapstructure:"cors_origin"`

	// Backend selection
	DataBackend  string `mapstructure:"data_backend"`
	SQLiteDBPath string `mapstructure:"sqlite_db_path"`

	// AMQP, optional
	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`
	AMQPQueue    string `mapstructure:"amqp_queue"`

	// Google Sheets import, optional
	GoogleSpreadsheetID      string `mapstructure:"google_spreadsheet_id"`
	GoogleSheetName          string `mapstructure:"google_sheet_name"`
	GoogleServiceAccountFile string `mapstructure:"google_service_account_file"`
	GoogleServiceAccountJSON string `mapstructure:"google_service_account_json"`

	// Chart cache
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

var defaults = map[string]any{
	"port":                        "8081",
	"max_upload_bytes":            int64(10 << 20),
	"rate_limit_per_minute":       60,
	"cors_origin":                 "*",
	"data_backend":                BackendMemory,
	"sqlite_db_path":              "./data/finviz.db",
	"amqp_url":                    "",
	"amqp_exchange":               "finviz",
	"amqp_queue":                  "dataset_digests",
	"google_spreadsheet_id":       "",
	"google_sheet_name":           "Transactions",
	"google_service_account_file": "",
	"google_service_account_json": "",
	"cache_size":                  256,
	"cache_ttl":                   5 * time.Minute,
	"log_level":                   "info",
	"log_format":                  "text",
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from path, when not empty, with environment
// variables taking precedence over file values.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.DataBackend = strings.ToLower(strings.TrimSpace(cfg.DataBackend))
	return &cfg, nil
}

// SheetsConfigured reports whether the Google Sheets import source is set up.
func (c *Config) SheetsConfigured() bool {
	return strings.TrimSpace(c.GoogleSpreadsheetID) != ""
}

// AMQPEnabled reports whether upload events are published.
func (c *Config) AMQPEnabled() bool {
	return strings.TrimSpace(c.AMQPURL) != ""
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendMemory, BackendSQLite}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPEnabled() {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsConfigured() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.MaxUploadBytes < 1024 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at least 1024 bytes", c.MaxUploadBytes))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
