package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultSpreadsheetID is the household spreadsheet opened when none is configured.
	DefaultSpreadsheetID = "1RwxVkaWAJfkhqiwwdRTwEXhdyj8aky-wrZOO0JQNXHQ"
	// DefaultSpreadsheetName is tried when opening by ID fails.
	DefaultSpreadsheetName = "Family_Expenses"
)

// Backends accepted by DATA_BACKEND.
var Backends = []string{"memory", "sheets", "sqlite"}

type Config struct {
	// HTTP Server
	Port           string
	RequestTimeout time.Duration

	// Backend selection
	DataBackend string

	// Google Sheets
	GoogleSpreadsheetID   string
	GoogleSpreadsheetName string
	GoogleCredentialsFile string
	SecretsFile           string
	GoogleServiceAccount  string

	// SQLite
	SQLiteDBPath string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger behaviour
	TaxonomyFile string
	RecentLimit  int
	StatsWindow  int
	StockEnabled bool

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 7*time.Second),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", DefaultSpreadsheetID),
		GoogleSpreadsheetName: getEnv("GOOGLE_SPREADSHEET_NAME", DefaultSpreadsheetName),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		SecretsFile:           getEnv("SECRETS_FILE", "secrets.yaml"),
		GoogleServiceAccount:  getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/jizhang.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "jizhang"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		TaxonomyFile: getEnv("TAXONOMY_FILE", ""),
		RecentLimit:  getEnvInt("RECENT_LIMIT", 30),
		StatsWindow:  getEnvInt("STATS_WINDOW", 200),
		StockEnabled: getEnvBool("STOCK_ENABLED", true),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(Backends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "sheets":
		if strings.TrimSpace(c.GoogleSpreadsheetID) == "" && strings.TrimSpace(c.GoogleSpreadsheetName) == "" {
			errors = append(errors, "either GOOGLE_SPREADSHEET_ID or GOOGLE_SPREADSHEET_NAME is required when using sheets backend")
		}
		if c.GoogleCredentialsFile == "" && c.SecretsFile == "" && c.GoogleServiceAccount == "" {
			errors = append(errors, "one of GOOGLE_CREDENTIALS_FILE, SECRETS_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be set for sheets backend")
		}
	}

	if c.AMQPURL != "" {
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

	if c.RecentLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid recent limit %d: must be at least 1", c.RecentLimit))
	}
	if c.StatsWindow < 1 {
		errors = append(errors, fmt.Sprintf("invalid stats window %d: must be at least 1", c.StatsWindow))
	}
	if c.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be positive", c.RequestTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// NotificationsEnabled reports whether append events are published.
func (c *Config) NotificationsEnabled() bool {
	return c.AMQPURL != ""
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
