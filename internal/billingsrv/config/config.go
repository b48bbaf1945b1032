// Package config loads and validates the billing catalog service
// configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Version is the supported configuration file format version.
const Version = "0.1"

// ProviderConfig holds billing-provider related configuration.
type ProviderConfig struct {
	Name        string `toml:"name"`         // provider name, currently only "stripe"
	APIKey      string `toml:"api_key"`      // secret API key; prefer the env override
	CallTimeout string `toml:"call_timeout"` // per-call timeout for remote sync operations
	MaxRetries  int    `toml:"max_retries"`  // retry attempts for transient transport errors
}

// GetCallTimeout returns the per-call timeout as time.Duration.
func (p *ProviderConfig) GetCallTimeout() (time.Duration, error) {
	return ParseDuration(p.CallTimeout)
}

// GetCallTimeoutOrDefault returns the per-call timeout as time.Duration
// or panics if the value is invalid.
func (p *ProviderConfig) GetCallTimeoutOrDefault() time.Duration {
	d, err := p.GetCallTimeout()
	if err != nil {
		panic(fmt.Sprintf("invalid provider call timeout: %v", err))
	}
	return d
}

// ConfigParam holds all configuration parameters for the billing catalog service.
type ConfigParam struct {
	// Configuration version
	FormatVersion string `toml:"format_version"` // Version of this configuration file format

	// Server configuration
	ServerHostName     string `toml:"server_hostname"`       // Hostname for the server
	ServerPort         string `toml:"server_port"`           // Port for the main server
	HandleCORS         bool   `toml:"handle_cors"`           // Whether to handle CORS
	MaxRequestBodySize int64  `toml:"max_request_body_size"` // Maximum size of request body in bytes

	// Default workspace for single-workspace deployments
	DefaultWorkspaceID string `toml:"default_workspace_id"`

	// Billing provider configuration
	Provider ProviderConfig `toml:"provider"`

	// Database configuration
	DB struct {
		Host     string `toml:"host"`     // Database host
		Port     int    `toml:"port"`     // Database port
		DBName   string `toml:"dbname"`   // Database name
		User     string `toml:"user"`     // Database user
		Password string `toml:"password"` // Database password
		SSLMode  string `toml:"sslmode"`  // SSL mode for database connection
	} `toml:"db"`
}

var cfg *ConfigParam

// Config returns the current configuration
func Config() *ConfigParam {
	return cfg
}

// DSN returns the database connection string
func (c *ConfigParam) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.DBName, c.DB.SSLMode)
}

// CatalogDSN returns the DSN for the catalog database.
func CatalogDSN() string {
	return cfg.DSN()
}

// ParseDuration parses a duration string in the format "<number><unit>" where
// unit can be s (seconds), m (minutes), h (hours), or d (days).
func ParseDuration(input string) (time.Duration, error) {
	if len(input) < 2 {
		return 0, fmt.Errorf("invalid input format")
	}

	unit := input[len(input)-1:]
	valueStr := input[:len(input)-1]
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", err)
	}

	var duration time.Duration
	switch unit {
	case "s":
		duration = time.Duration(value) * time.Second
	case "m":
		duration = time.Duration(value) * time.Minute
	case "h":
		duration = time.Duration(value) * time.Hour
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown time unit: %s", unit)
	}

	return duration, nil
}

// ValidateConfig checks if all required configuration values are present and valid.
func ValidateConfig(cfg *ConfigParam) error {
	if err := validateConfigFormatVersion(cfg); err != nil {
		return err
	}
	if err := validateServerConfig(cfg); err != nil {
		return err
	}
	if err := validateProviderConfig(cfg); err != nil {
		return err
	}
	if err := validateDBConfig(cfg); err != nil {
		return err
	}
	return nil
}

func validateConfigFormatVersion(cfg *ConfigParam) error {
	if cfg.FormatVersion != Version {
		return fmt.Errorf("unsupported config file format version: %s", cfg.FormatVersion)
	}
	return nil
}

func validateServerConfig(cfg *ConfigParam) error {
	if cfg.ServerPort == "" {
		return fmt.Errorf("server_port is required")
	}
	return nil
}

func validateProviderConfig(cfg *ConfigParam) error {
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "stripe"
	}
	if cfg.Provider.Name != "stripe" {
		return fmt.Errorf("unsupported billing provider: %s", cfg.Provider.Name)
	}
	if cfg.Provider.CallTimeout == "" {
		cfg.Provider.CallTimeout = "30s"
	}
	if _, err := ParseDuration(cfg.Provider.CallTimeout); err != nil {
		return fmt.Errorf("invalid provider.call_timeout: %v", err)
	}
	if cfg.Provider.MaxRetries <= 0 {
		cfg.Provider.MaxRetries = 3
	}
	// The API key may come from the environment instead of the config file.
	if envKey := os.Getenv("OFFERD_PROVIDER_API_KEY"); envKey != "" {
		cfg.Provider.APIKey = envKey
	}
	return nil
}

func validateDBConfig(cfg *ConfigParam) error {
	if cfg.DB.Host == "" {
		return fmt.Errorf("db.host is required")
	}
	if cfg.DB.Port <= 0 {
		return fmt.Errorf("db.port must be positive")
	}
	if cfg.DB.DBName == "" {
		return fmt.Errorf("db.dbname is required")
	}
	if cfg.DB.User == "" {
		return fmt.Errorf("db.user is required")
	}
	if cfg.DB.Password == "" {
		return fmt.Errorf("db.password is required")
	}
	if cfg.DB.SSLMode == "" {
		return fmt.Errorf("db.sslmode is required")
	}
	return nil
}

// LoadConfig loads configuration from a file
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	cfg = &ConfigParam{}
	if _, err := toml.Decode(string(content), cfg); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	return nil
}

var isTest = false

func IsTest() bool {
	return isTest
}

func SetTestMode(test bool) {
	isTest = test
}

// TestInit loads the configuration for tests by walking up from the working
// directory to the project root (identified by go.mod) and reading
// offerd.conf from there.
func TestInit() {
	isTest = true
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	projectRoot := wd
	for {
		if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			panic("could not find project root (go.mod)")
		}
		projectRoot = parent
	}
	if err := LoadConfig(filepath.Join(projectRoot, "offerd.conf")); err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}
}
