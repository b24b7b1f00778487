package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Mail        MailConfig        `toml:"mail"`
}

// CredentialsConfig contains per-platform OAuth credentials.
type CredentialsConfig struct {
	Spotify    PlatformConfig `toml:"spotify"`
	YouTube    PlatformConfig `toml:"youtube"`
	AppleMusic PlatformConfig `toml:"apple_music"`
	Audiomack  PlatformConfig `toml:"audiomack"`
	Boomplay   PlatformConfig `toml:"boomplay"`
}

// PlatformConfig contains the OAuth client credentials for one streaming platform.
type PlatformConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Map converts the platform credentials to the map shape the services layer consumes.
func (p PlatformConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     p.ClientID,
		"client_secret": p.ClientSecret,
		"redirect_uri":  p.RedirectURI,
	}
}

// Configured reports whether both client credentials are present.
func (p PlatformConfig) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// MailConfig contains settings for the transactional email provider.
type MailConfig struct {
	APIKey        string `toml:"api_key"`
	BaseURL       string `toml:"base_url"`
	From          string `toml:"from"`
	OperatorEmail string `toml:"operator_email"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port string for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateMail checks the mail section and returns each missing key by name.
//
// Missing mail configuration is a hard server error at dispatch time, never a silent no-op.
func (c *Config) ValidateMail() error {
	var missing []string
	if c.Mail.APIKey == "" {
		missing = append(missing, "mail.api_key")
	}
	if c.Mail.From == "" {
		missing = append(missing, "mail.from")
	}
	if c.Mail.OperatorEmail == "" {
		missing = append(missing, "mail.operator_email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}
