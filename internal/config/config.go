package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend API
	BackendBaseURL      string
	BackendServiceToken string

	// Local database (sessions, legacy family repository)
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sessions and sign-in
	SessionTTL         time.Duration
	SecureCookies      bool
	OAuthRedirectBase  string
	GoogleClientID     string
	GoogleClientSecret string
	NaverClientID      string
	NaverClientSecret  string

	// Family selection cookie
	FamilyCookieTTL time.Duration

	// Report export (Google Sheets)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8082"),

		BackendBaseURL:      getEnv("BACKEND_BASE_URL", "http://localhost:8080/api/v1"),
		BackendServiceToken: getEnv("BACKEND_SERVICE_TOKEN", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/famiglia.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "famiglia"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "family_events"),

		SessionTTL:         getEnvDuration("SESSION_TTL", 24*time.Hour),
		SecureCookies:      getEnvBool("SECURE_COOKIES", false),
		OAuthRedirectBase:  getEnv("OAUTH_REDIRECT_BASE", "http://localhost:8082"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		NaverClientID:      getEnv("NAVER_CLIENT_ID", ""),
		NaverClientSecret:  getEnv("NAVER_CLIENT_SECRET", ""),

		FamilyCookieTTL: getEnvDuration("FAMILY_COOKIE_TTL", 365*24*time.Hour),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.BackendBaseURL == "" {
		errors = append(errors, "backend base URL cannot be empty")
	} else if parsed, err := url.Parse(c.BackendBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid backend base URL '%s': %v", c.BackendBaseURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid backend base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
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

	if c.GoogleClientID != "" && c.GoogleClientSecret == "" {
		errors = append(errors, "Google client secret cannot be empty when client ID is provided")
	}
	if c.NaverClientID != "" && c.NaverClientSecret == "" {
		errors = append(errors, "Naver client secret cannot be empty when client ID is provided")
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.FamilyCookieTTL < time.Hour {
		errors = append(errors, fmt.Sprintf("invalid family cookie TTL %v: must be at least 1 hour", c.FamilyCookieTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
