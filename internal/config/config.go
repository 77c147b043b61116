// Package config provides configuration loading and defaults for the
// odb-target-loader.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GraphQLConfig holds connection details for the remote catalog service.
type GraphQLConfig struct {
	URL string `yaml:"url"`
	// Timeout is the HTTP request timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// SelectionConfig holds target-name glob patterns restricting which catalog
// entries are submitted.
type SelectionConfig struct {
	Allowlist []string `yaml:"allowlist"`
	Denylist  []string `yaml:"denylist"`
}

// RateConfig paces submissions. A zero PerSecond disables pacing.
type RateConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// AuditConfig controls audit logging behaviour.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	LogPath string `yaml:"log_path"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig holds settings for the MCP server started by "serve".
type ServerConfig struct {
	// Host is the listen address; the default keeps the server off other
	// machines' reach.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AuthToken is the bearer token MCP clients must present. EnsureAuthToken
	// fills it in when left empty.
	AuthToken string `yaml:"auth_token"`
}

// Config is the top-level configuration structure.
type Config struct {
	GraphQL     GraphQLConfig   `yaml:"graphql"`
	ProgramID   string          `yaml:"program_id"`
	CatalogPath string          `yaml:"catalog_path"`
	Selection   SelectionConfig `yaml:"selection"`
	Rate        RateConfig      `yaml:"rate"`
	Audit       AuditConfig     `yaml:"audit"`
	Log         LogConfig       `yaml:"log"`
	Server      ServerConfig    `yaml:"server"`
}

// LoadConfig reads and parses a YAML configuration file from the given path.
// Keys missing from the file keep the values of DefaultConfig. On error, nil
// is returned for the config pointer.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a new Config populated with sensible default values.
// Each call returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		GraphQL: GraphQLConfig{
			URL:     "http://localhost:8080/odb",
			Timeout: 30,
		},
		ProgramID: "p-2",
		Rate: RateConfig{
			Burst: 1,
		},
		Audit: AuditConfig{
			Enabled: false,
			LogPath: "odb-loader-audit.log",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// LoadDotEnv loads variables from the given .env files (or ".env" when none
// are named) into the process environment. Variables already set are left
// untouched. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnvOverrides updates cfg in place with values from environment variables.
// Recognized variables:
//   - ODB_URL overrides cfg.GraphQL.URL
//   - ODB_TIMEOUT_SECONDS overrides cfg.GraphQL.Timeout
//   - ODB_PROGRAM_ID overrides cfg.ProgramID
//   - ODB_CATALOG_PATH overrides cfg.CatalogPath
//   - ODB_LOG_LEVEL and ODB_LOG_FORMAT override cfg.Log
//   - ODB_AUDIT_LOG enables auditing and sets cfg.Audit.LogPath
//   - ODB_MCP_AUTH_TOKEN overrides cfg.Server.AuthToken
//
// Malformed numeric values are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ODB_URL"); v != "" {
		cfg.GraphQL.URL = v
	}
	if v := os.Getenv("ODB_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.GraphQL.Timeout = n
		}
	}
	if v := os.Getenv("ODB_PROGRAM_ID"); v != "" {
		cfg.ProgramID = v
	}
	if v := os.Getenv("ODB_CATALOG_PATH"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("ODB_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ODB_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("ODB_AUDIT_LOG"); v != "" {
		cfg.Audit.Enabled = true
		cfg.Audit.LogPath = v
	}
	if v := os.Getenv("ODB_MCP_AUTH_TOKEN"); v != "" {
		cfg.Server.AuthToken = v
	}
}

// EnsureAuthToken sets a random cfg.Server.AuthToken when none is
// configured and returns the token in effect.
func EnsureAuthToken(cfg *Config) (string, error) {
	if cfg.Server.AuthToken != "" {
		return cfg.Server.AuthToken, nil
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("config: generate auth token: %w", err)
	}
	cfg.Server.AuthToken = hex.EncodeToString(b)
	return cfg.Server.AuthToken, nil
}

// Validate reports the first problem that would prevent a load run.
func (c *Config) Validate() error {
	if c.GraphQL.URL == "" {
		return errors.New("config: graphql url is required")
	}
	u, err := url.Parse(c.GraphQL.URL)
	if err != nil {
		return fmt.Errorf("config: parse graphql url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: graphql url must be http or https, got %q", c.GraphQL.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("config: graphql url %q has no host", c.GraphQL.URL)
	}
	if c.ProgramID == "" {
		return errors.New("config: program id is required")
	}
	if c.Rate.PerSecond < 0 {
		return fmt.Errorf("config: rate per_second must not be negative, got %v", c.Rate.PerSecond)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server port %d out of range", c.Server.Port)
	}
	if c.Audit.Enabled && c.Audit.LogPath == "" {
		return errors.New("config: audit log path is required when auditing is enabled")
	}
	return nil
}
