package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. EVALREPORT_PORT
const EnvPrefix = "EVALREPORT"

// Config holds application configuration
type Config struct {
	Port                  string `json:"port" mapstructure:"port"`
	StoreDriver           string `json:"store_driver" mapstructure:"store_driver"`
	RecordsDir            string `json:"records_dir" mapstructure:"records_dir"`
	DatabaseDSN           string `json:"database_dsn" mapstructure:"database_dsn"`
	ReportsDir            string `json:"reports_dir" mapstructure:"reports_dir"`
	ReportKind            string `json:"report_kind" mapstructure:"report_kind"`
	Attribution           string `json:"attribution" mapstructure:"attribution"`
	LogLevel              string `json:"log_level" mapstructure:"log_level"`
	LogFormat             string `json:"log_format" mapstructure:"log_format"`
	GoogleCloudProject    string `json:"google_cloud_project" mapstructure:"google_cloud_project"`
	GoogleCloudLocation   string `json:"google_cloud_location" mapstructure:"google_cloud_location"`
	GoogleCredentialsPath string `json:"google_credentials_path" mapstructure:"google_credentials_path"`
	GeminiModel           string `json:"gemini_model" mapstructure:"gemini_model"`
	GmailCredentialsPath  string `json:"gmail_credentials_path" mapstructure:"gmail_credentials_path"`
	GmailTokenPath        string `json:"gmail_token_path" mapstructure:"gmail_token_path"`
	ImportSubject         string `json:"import_subject" mapstructure:"import_subject"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Port:                 "8080",
		StoreDriver:          "file",
		RecordsDir:           "records",
		ReportsDir:           "reports",
		ReportKind:           "Internship_Evaluation",
		LogLevel:             "info",
		LogFormat:            "console",
		GoogleCloudLocation:  "us-central1",
		GeminiModel:          "gemini-1.5-flash",
		GmailCredentialsPath: "credentials.json",
		GmailTokenPath:       "token.json",
		ImportSubject:        "Intern Evaluation",
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/InternEvaluation/config.json
// On Unix: ~/.config/InternEvaluation/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		// Windows
		configDir = filepath.Join(os.Getenv("APPDATA"), "InternEvaluation")
	} else {
		// Unix-like systems
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "InternEvaluation")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load loads configuration from the default config path
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path. A missing file yields
// the defaults. A .env file in the working directory is loaded first, and
// EVALREPORT_* environment variables override both.
func LoadFrom(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if err := setDefaults(v, DefaultConfig()); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}

// setDefaults registers every field so AutomaticEnv can override it
func setDefaults(v *viper.Viper, defaults *Config) error {
	data, err := json.Marshal(defaults)
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for key, value := range m {
		v.SetDefault(key, value)
	}
	return nil
}

// Save saves the configuration to the default config path
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535, got %q", c.Port)
	}

	switch c.StoreDriver {
	case "file":
		if c.RecordsDir == "" {
			return fmt.Errorf("records_dir is required for the file store")
		}
	case "sqlite":
	default:
		return fmt.Errorf("store_driver must be file or sqlite, got %q", c.StoreDriver)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}

	if c.GoogleCloudProject != "" && c.GoogleCloudLocation == "" {
		return fmt.Errorf("google_cloud_location is required")
	}

	if c.GoogleCredentialsPath != "" {
		if _, err := os.Stat(c.GoogleCredentialsPath); err != nil {
			return fmt.Errorf("google credentials file not found: %w", err)
		}
	}

	return nil
}

// ApplyToEnv applies configuration values to environment variables read by
// the Google client libraries
func (c *Config) ApplyToEnv() {
	if c.GoogleCloudProject != "" {
		os.Setenv("GOOGLE_CLOUD_PROJECT", c.GoogleCloudProject)
	}
	if c.GoogleCloudLocation != "" {
		os.Setenv("GOOGLE_CLOUD_LOCATION", c.GoogleCloudLocation)
	}
	if c.GoogleCredentialsPath != "" {
		os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", c.GoogleCredentialsPath)
	}
}
