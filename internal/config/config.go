package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Format FormatConfig `yaml:"format"`
}

// ServerConfig contains storefront API connection settings
type ServerConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// AuthConfig holds the persisted session. The token is opaque; the client
// never inspects it, it only replays it on authenticated calls.
type AuthConfig struct {
	Email        string `yaml:"email"`
	SessionToken string `yaml:"session_token"`
}

// FormatConfig contains output formatting settings
type FormatConfig struct {
	Default string `yaml:"default"`
	Colors  bool   `yaml:"colors"`
}

var (
	globalConfig *Config
	debug        bool
	outputFormat string
)

// Initialize loads the configuration from file
func Initialize(configFile string) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get home directory: %w", err)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sellerctl")
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createDefaultConfig(); err != nil {
				return fmt.Errorf("could not create default config: %w", err)
			}
		} else {
			return fmt.Errorf("could not read config file: %w", err)
		}
	}

	globalConfig = &Config{}
	if err := viper.Unmarshal(globalConfig); err != nil {
		return fmt.Errorf("could not unmarshal config: %w", err)
	}

	// Workaround: manually sync auth fields from viper
	globalConfig.Auth.Email = viper.GetString("auth.email")
	globalConfig.Auth.SessionToken = viper.GetString("auth.session_token")

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.url", "http://localhost:8080")
	viper.SetDefault("server.timeout", "30s")
	viper.SetDefault("auth.email", "")
	viper.SetDefault("auth.session_token", "")
	viper.SetDefault("format.default", "table")
	viper.SetDefault("format.colors", true)
}

// createDefaultConfig creates a default configuration file
func createDefaultConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".sellerctl.yaml")

	defaultConfig := Config{
		Server: ServerConfig{
			URL:     "http://localhost:8080",
			Timeout: "30s",
		},
		Auth: AuthConfig{},
		Format: FormatConfig{
			Default: "table",
			Colors:  true,
		},
	}

	data, err := yaml.Marshal(defaultConfig)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		globalConfig = &Config{}
	}
	return globalConfig
}

// Save saves the current configuration to file
func Save() error {
	if globalConfig == nil {
		return fmt.Errorf("no configuration to save")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".sellerctl.yaml")

	data, err := yaml.Marshal(globalConfig)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// SetDebug sets the debug mode
func SetDebug(enabled bool) {
	debug = enabled
}

// IsDebug returns whether debug mode is enabled
func IsDebug() bool {
	return debug
}

// SetOutputFormat sets the output format
func SetOutputFormat(format string) {
	outputFormat = format
}

// GetOutputFormat returns the current output format
func GetOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	if globalConfig != nil && globalConfig.Format.Default != "" {
		return globalConfig.Format.Default
	}
	return "table"
}

// UpdateAuth updates the persisted authentication state
func UpdateAuth(email, sessionToken string) error {
	if globalConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	viper.Set("auth.email", email)
	viper.Set("auth.session_token", sessionToken)

	globalConfig.Auth.Email = email
	globalConfig.Auth.SessionToken = sessionToken

	return viper.WriteConfig()
}

// ClearAuth clears the persisted authentication state
func ClearAuth() error {
	if globalConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	viper.Set("auth.email", "")
	viper.Set("auth.session_token", "")

	globalConfig.Auth.Email = ""
	globalConfig.Auth.SessionToken = ""

	return viper.WriteConfig()
}
