// Package config loads service and client configuration from command-line flags,
// environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Store     StoreConfig
	Server    ServerConfig
	Upload    UploadConfig
	Inventory InventoryConfig
	Remote    RemoteConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json, pretty, or empty to follow the environment
}

// DataConfig holds the root directory for the database and stored images.
type DataConfig struct {
	BasePath string
}

// StoreConfig selects the record backend.
type StoreConfig struct {
	Driver string // sqlite or badger
	Path   string // default: {data}/wardrobe.db or {data}/badger
}

// ServerConfig holds record service configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// PublicURL prefixes object URLs handed back to clients.
	PublicURL   string
	CORSOrigins []string
	// Mutation limits are per client IP.
	MutationRate  float64
	MutationBurst int
}

// UploadConfig holds the image upload policy.
type UploadConfig struct {
	MaxBytes     int64
	AllowedTypes []string
}

// InventoryConfig holds engine policy.
type InventoryConfig struct {
	RequireImage        bool
	PlaceholderImageURL string
}

// RemoteConfig configures the client side of the record service.
type RemoteConfig struct {
	URL     string
	Rate    float64
	Burst   int
	Timeout time.Duration
}

// Load builds a Config with precedence:
// 1. Command-line flags in args (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("wardrobe", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (json, pretty)")
	dataPath := fs.String("data-path", "", "Base path for the database and images")

	storeDriver := fs.String("store", "", "Record backend (sqlite, badger)")
	storePath := fs.String("store-path", "", "Database path (default: inside data path)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	publicURL := fs.String("public-url", "", "Base URL clients use to fetch images")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")
	mutationRate := fs.String("mutation-rate", "", "Mutations per second per client (default: 20)")
	mutationBurst := fs.String("mutation-burst", "", "Mutation burst per client (default: 40)")

	uploadMax := fs.String("upload-max-bytes", "", "Largest accepted image in bytes (default: 5242880)")
	uploadTypes := fs.String("upload-types", "", "Comma-separated accepted image types")

	requireImage := fs.String("require-image", "", "Refuse items created without an image (default: false)")
	placeholder := fs.String("placeholder-image-url", "", "Image URL for items created without one")

	remoteURL := fs.String("server-url", "", "Record service URL for clients (default: http://localhost:8080)")
	remoteRate := fs.String("remote-rate", "", "Client requests per second (default: 10)")
	remoteBurst := fs.String("remote-burst", "", "Client request burst (default: 20)")
	remoteTimeout := fs.String("remote-timeout", "", "Client request timeout (default: 10s)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env files are fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "LOG_FORMAT", ""),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Store: StoreConfig{
			Driver: getConfigValue(*storeDriver, "STORE_DRIVER", DriverSQLite),
			Path:   getConfigValue(*storePath, "STORE_PATH", ""),
		},
		Server: ServerConfig{
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			PublicURL:     getConfigValue(*publicURL, "SERVER_PUBLIC_URL", ""),
			CORSOrigins:   splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
			MutationBurst: getIntConfigValue(*mutationBurst, "MUTATION_BURST", 40),
		},
		Upload: UploadConfig{
			AllowedTypes: splitList(getConfigValue(*uploadTypes, "UPLOAD_TYPES", "image/jpeg,image/png,image/gif,image/webp")),
		},
		Inventory: InventoryConfig{
			RequireImage:        getBoolConfigValue(*requireImage, "REQUIRE_IMAGE", false),
			PlaceholderImageURL: getConfigValue(*placeholder, "PLACEHOLDER_IMAGE_URL", "https://placehold.co/400x320"),
		},
		Remote: RemoteConfig{
			URL:   getConfigValue(*remoteURL, "WARDROBE_SERVER_URL", "http://localhost:8080"),
			Burst: getIntConfigValue(*remoteBurst, "REMOTE_BURST", 20),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = parseDuration("read timeout", getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDuration("write timeout", getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s")); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDuration("idle timeout", getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")); err != nil {
		return nil, err
	}
	if cfg.Remote.Timeout, err = parseDuration("remote timeout", getConfigValue(*remoteTimeout, "REMOTE_TIMEOUT", "10s")); err != nil {
		return nil, err
	}
	if cfg.Server.MutationRate, err = parseFloat("mutation rate", getConfigValue(*mutationRate, "MUTATION_RATE", "20")); err != nil {
		return nil, err
	}
	if cfg.Remote.Rate, err = parseFloat("remote rate", getConfigValue(*remoteRate, "REMOTE_RATE", "10")); err != nil {
		return nil, err
	}
	maxBytes := getConfigValue(*uploadMax, "UPLOAD_MAX_BYTES", "5242880")
	if cfg.Upload.MaxBytes, err = strconv.ParseInt(maxBytes, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid upload max bytes %q: %w", maxBytes, err)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandStorePath(); err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost:" + cfg.Server.Port
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")
	cfg.Remote.URL = strings.TrimRight(cfg.Remote.URL, "/")

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
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverBadger:
	default:
		return fmt.Errorf("invalid store driver: %s (must be sqlite or badger)", c.Store.Driver)
	}

	if c.Server.MutationRate <= 0 || c.Server.MutationBurst <= 0 {
		return errors.New("mutation rate and burst must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload max bytes must be positive")
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return errors.New("at least one upload type is required")
	}
	if c.Remote.URL == "" {
		return errors.New("server URL is required")
	}
	if c.Remote.Rate <= 0 || c.Remote.Burst <= 0 {
		return errors.New("remote rate and burst must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	expanded, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "SmartWardrobe", "data"))
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandStorePath defaults the database location to the data directory.
func (c *Config) expandStorePath() error {
	defaultPath := filepath.Join(c.Data.BasePath, "wardrobe.db")
	if c.Store.Driver == DriverBadger {
		defaultPath = filepath.Join(c.Data.BasePath, "badger")
	}
	expanded, err := expandPath(c.Store.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Store.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return n
}

func parseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return d, nil
}

func parseFloat(name, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return f, nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from a .env file. Lines starting with #
// are comments. Variables already set in the environment win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
