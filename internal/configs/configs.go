/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures the synchronizer daemon by reading operating system environment
variables: the running environment, the local API port, the platform backend
endpoints, the local user identity, and the session cache location.
*/
package configs

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// AppConfig contains all configuration parameters required for the daemon to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Settings
	Environment string
	Port        int

	// Platform Backend Endpoints
	APIBaseURL     string
	EventStreamURL string

	// Local User Identity
	UserID       string
	UserName     string
	AvatarURL    string
	SessionToken string

	// Local API Settings
	AllowedOrigins []string

	// Session Cache Settings
	CachePath string
}

// LoadConfig reads and parses the daemon configuration from environment variables.
// It provides defaults where sensible and validates the values that have none.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8090"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Platform Backend Endpoints ---
	cfg.APIBaseURL = os.Getenv("API_BASE_URL")
	if cfg.APIBaseURL == "" {
		if cfg.Environment == "development" {
			cfg.APIBaseURL = "http://localhost:8080"
		} else {
			return nil, fmt.Errorf("API_BASE_URL environment variable is required in %s environment", cfg.Environment)
		}
	}
	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid API_BASE_URL: %w", err)
	}

	cfg.EventStreamURL = os.Getenv("EVENT_STREAM_URL")
	if cfg.EventStreamURL == "" {
		if cfg.Environment == "development" {
			cfg.EventStreamURL = "ws://localhost:8080/ws/lobbies"
		} else {
			return nil, fmt.Errorf("EVENT_STREAM_URL environment variable is required in %s environment", cfg.Environment)
		}
	}
	streamURL, err := url.Parse(cfg.EventStreamURL)
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_STREAM_URL: %w", err)
	}
	if streamURL.Scheme != "ws" && streamURL.Scheme != "wss" {
		return nil, fmt.Errorf("EVENT_STREAM_URL must use the ws or wss scheme, got %q", streamURL.Scheme)
	}

	// --- Local User Identity ---
	cfg.UserID = os.Getenv("USER_ID")
	if cfg.UserID == "" {
		return nil, fmt.Errorf("USER_ID environment variable is required to identify the local user")
	}

	cfg.UserName = os.Getenv("USER_NAME")
	if cfg.UserName == "" {
		cfg.UserName = cfg.UserID
	}

	cfg.AvatarURL = os.Getenv("AVATAR_URL")

	cfg.SessionToken = os.Getenv("SESSION_TOKEN")
	if cfg.SessionToken == "" && cfg.Environment != "development" {
		return nil, fmt.Errorf("SESSION_TOKEN environment variable is required in %s environment", cfg.Environment)
	}

	// --- Local API Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// --- Session Cache Settings ---
	cfg.CachePath = os.Getenv("CACHE_PATH")
	if cfg.CachePath == "" {
		cfg.CachePath = "lobbysync.db"
	}

	return cfg, nil
}
