// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/permalinkapp/permalink-server/internal/domain"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Storage  StorageConfig
	URLs     URLSettings
	Upstream UpstreamConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8090)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// Storage drivers for the mapping store.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// StorageConfig selects and locates the mapping store backend.
type StorageConfig struct {
	// Driver is "sqlite" (relational table with unique indexes) or
	// "badger" (durable key-indexed file store).
	Driver string
	// DataPath is the directory holding the store files (default: ~/Permalink/data).
	DataPath string
	// SettingsPath optionally points at a JSON settings file that is
	// watched for live URL-settings changes. Empty disables watching.
	SettingsPath string
}

// UpstreamConfig locates the media server whose catalog we map.
type UpstreamConfig struct {
	// BaseURL is the root URL of the media server (e.g. http://localhost:8096).
	BaseURL string
	// ServerID is the host's server identifier, embedded in item-detail URLs.
	ServerID string
	// APIToken authenticates catalog requests.
	APIToken string
	// PageSize is the page size for catalog walks (default: 200).
	PageSize int
}

// URLSettings is the snapshot of friendly-URL generation settings. It mirrors
// the host's plugin configuration surface and may be swapped at runtime by
// the settings watcher, so treat values as a point-in-time snapshot.
type URLSettings struct {
	BasePath     string `json:"base_path"`
	ForceHTTPS   bool   `json:"force_https"`
	AutoGenerate bool   `json:"auto_generate"`
	Movies       bool   `json:"movies"`
	Shows        bool   `json:"shows"`
	Seasons      bool   `json:"seasons"`
	Episodes     bool   `json:"episodes"`
	People       bool   `json:"people"`
	Collections  bool   `json:"collections"`
	Genres       bool   `json:"genres"`
	Studios      bool   `json:"studios"`
}

// KindEnabled reports whether friendly URLs are enabled for the given kind.
func (s URLSettings) KindEnabled(kind domain.ItemKind) bool {
	switch kind {
	case domain.KindMovie:
		return s.Movies
	case domain.KindShow:
		return s.Shows
	case domain.KindSeason:
		return s.Seasons
	case domain.KindEpisode:
		return s.Episodes
	case domain.KindPerson:
		return s.People
	case domain.KindCollection:
		return s.Collections
	case domain.KindGenre:
		return s.Genres
	case domain.KindStudio:
		return s.Studios
	default:
		return false
	}
}

// Base returns the configured base path with any trailing slash trimmed.
func (s URLSettings) Base() string {
	return strings.TrimRight(s.BasePath, "/")
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")

	storageDriver := flag.String("storage-driver", "", "Mapping store driver (sqlite or badger)")
	dataPath := flag.String("data-path", "", "Directory for mapping store files")
	settingsPath := flag.String("settings-path", "", "JSON settings file watched for live changes")

	basePath := flag.String("base-path", "", "Base path for friendly URLs (default: /web)")
	forceHTTPS := flag.String("force-https", "", "Rewrite redirect targets to https (default: false)")
	autoGenerate := flag.String("auto-generate", "", "Generate mappings from catalog events (default: true)")

	upstreamURL := flag.String("upstream-url", "", "Base URL of the media server")
	upstreamServerID := flag.String("upstream-server-id", "", "Media server identifier")
	upstreamToken := flag.String("upstream-token", "", "API token for catalog requests")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8090)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8090"),
		},
		Storage: StorageConfig{
			Driver:       getConfigValue(*storageDriver, "STORAGE_DRIVER", DriverSQLite),
			DataPath:     getConfigValue(*dataPath, "DATA_PATH", ""),
			SettingsPath: getConfigValue(*settingsPath, "SETTINGS_PATH", ""),
		},
		URLs: URLSettings{
			BasePath:     getConfigValue(*basePath, "URL_BASE_PATH", "/web"),
			ForceHTTPS:   getBoolConfigValue(*forceHTTPS, "URL_FORCE_HTTPS", false),
			AutoGenerate: getBoolConfigValue(*autoGenerate, "URL_AUTO_GENERATE", true),
			Movies:       getBoolConfigValue("", "URL_MOVIES", true),
			Shows:        getBoolConfigValue("", "URL_SHOWS", true),
			Seasons:      getBoolConfigValue("", "URL_SEASONS", true),
			Episodes:     getBoolConfigValue("", "URL_EPISODES", true),
			People:       getBoolConfigValue("", "URL_PEOPLE", true),
			Collections:  getBoolConfigValue("", "URL_COLLECTIONS", true),
			Genres:       getBoolConfigValue("", "URL_GENRES", true),
			Studios:      getBoolConfigValue("", "URL_STUDIOS", true),
		},
		Upstream: UpstreamConfig{
			BaseURL:  getConfigValue(*upstreamURL, "UPSTREAM_URL", "http://localhost:8096"),
			ServerID: getConfigValue(*upstreamServerID, "UPSTREAM_SERVER_ID", ""),
			APIToken: getConfigValue(*upstreamToken, "UPSTREAM_TOKEN", ""),
			PageSize: getIntConfigValue("", "UPSTREAM_PAGE_SIZE", 200),
		},
	}

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	// Expand and validate the data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.Driver != DriverSQLite && c.Storage.Driver != DriverBadger {
		return fmt.Errorf("invalid storage driver: %s (must be %s or %s)", c.Storage.Driver, DriverSQLite, DriverBadger)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if !strings.HasPrefix(c.URLs.BasePath, "/") {
		return fmt.Errorf("base path must start with /: %s", c.URLs.BasePath)
	}

	if c.Upstream.BaseURL == "" {
		return errors.New("upstream URL is required")
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Permalink", "data")

	expanded, err := expandPath(c.Storage.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	switch strings.ToLower(strValue) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// getIntConfigValue returns an int from flag, env var, or default.
// Invalid values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var v int
	if _, err := fmt.Sscanf(strValue, "%d", &v); err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

// loadEnvFile reads KEY=VALUE pairs from a file into the process environment.
// Existing environment variables are not overwritten.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}
