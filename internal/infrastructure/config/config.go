// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for lore configuration.
	DefaultConfigDir = ".lore"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultLibrariesFile is the default template library registry file name.
	DefaultLibrariesFile = "libraries.yaml"
	// DefaultLibrary is the library used when none is selected.
	DefaultLibrary = "default"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Engine   EngineConfig   `yaml:"engine,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	// BaseURL points at an OpenAI-compatible endpoint. Empty uses OpenAI.
	BaseURL string `yaml:"base_url,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite template store.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	// For per-library databases, this is computed dynamically using SQLitePathForLibrary.
	Path string `yaml:"path,omitempty"`
}

// EngineConfig tunes template resolution.
type EngineConfig struct {
	// MaxDepth bounds dependency chains and composite nesting.
	MaxDepth int `yaml:"max_depth,omitempty"`
	// StrictValidation rejects customizations with validation errors
	// before anything is built.
	StrictValidation bool `yaml:"strict_validation,omitempty"`
}

// LogConfig selects the logger mode.
type LogConfig struct {
	Mode string `yaml:"mode,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Engine: EngineConfig{
			MaxDepth: 32,
		},
		Log: LogConfig{
			Mode: "quiet",
		},
	}
}

// Load loads configuration from the .lore directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'lore init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envOverrides lists the environment variables read on load.
type envOverrides struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	QdrantAPIKey string `env:"QDRANT_API_KEY"`
	LogMode      string `env:"LORE_LOG_MODE"`
}

// applyEnvOverrides applies environment variable overrides. API keys from
// the environment only fill keys the file leaves empty; the log mode
// always wins.
func (c *Config) applyEnvOverrides() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	if c.Embedder.APIKey == "" {
		c.Embedder.APIKey = overrides.OpenAIAPIKey
	}
	if c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = overrides.QdrantAPIKey
	}
	if overrides.LogMode != "" {
		c.Log.Mode = overrides.LogMode
	}
	return nil
}

// ConfigDir returns the path to the .lore config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// LibrariesFilePath returns the path to the library registry.
func LibrariesFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultLibrariesFile)
}

// Exists checks if a lore config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

// SanitizeLibraryName converts a library name to a valid collection suffix.
func SanitizeLibraryName(name string) string {
	// Convert to lowercase
	name = strings.ToLower(name)

	// Replace spaces and hyphens with underscores
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	// Remove any characters that aren't alphanumeric or underscore
	name = reNonAlphanumeric.ReplaceAllString(name, "")

	// Remove consecutive underscores
	name = reMultipleUnderscores.ReplaceAllString(name, "_")

	// Trim leading/trailing underscores
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}

	return name
}

// GenerateCollectionName creates the search collection name for a library.
func GenerateCollectionName(libraryName string) string {
	return "lore_templates_" + SanitizeLibraryName(libraryName)
}

// SQLitePathForLibrary returns the SQLite database path for a library.
func SQLitePathForLibrary(basePath, libraryName string) string {
	return filepath.Join(LibraryDir(basePath, libraryName), "templates.db")
}

// LibraryDir returns the directory path for a library.
func LibraryDir(basePath, libraryName string) string {
	return filepath.Join(basePath, DefaultConfigDir, "libraries", SanitizeLibraryName(libraryName))
}
