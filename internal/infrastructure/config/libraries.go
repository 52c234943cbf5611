package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// LibrariesConfig is the registry of template libraries (read/write). Each
// library has its own template database and search collection.
type LibrariesConfig struct {
	Libraries map[string]LibraryEntry `yaml:"libraries,omitempty"`
}

// LibraryEntry holds configuration for one template library.
type LibraryEntry struct {
	Collection  string `yaml:"collection"`
	Description string `yaml:"description,omitempty"`
}

// LoadLibraries loads the library registry from the .lore directory.
func LoadLibraries(basePath string) (*LibrariesConfig, error) {
	data, err := os.ReadFile(LibrariesFilePath(basePath))
	if os.IsNotExist(err) {
		// Return empty config if file doesn't exist
		return &LibrariesConfig{
			Libraries: make(map[string]LibraryEntry),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading libraries file: %w", err)
	}

	var cfg LibrariesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing libraries file: %w", err)
	}

	if cfg.Libraries == nil {
		cfg.Libraries = make(map[string]LibraryEntry)
	}

	return &cfg, nil
}

// Save writes the registry to the libraries file.
func (l *LibrariesConfig) Save(basePath string) error {
	configDir := filepath.Join(basePath, DefaultConfigDir)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling libraries config: %w", err)
	}

	if err := os.WriteFile(LibrariesFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing libraries file: %w", err)
	}

	return nil
}

// Add adds a library to the registry.
func (l *LibrariesConfig) Add(name string, entry LibraryEntry) {
	if l.Libraries == nil {
		l.Libraries = make(map[string]LibraryEntry)
	}
	l.Libraries[name] = entry
}

// Remove removes a library from the registry.
func (l *LibrariesConfig) Remove(name string) {
	if l.Libraries != nil {
		delete(l.Libraries, name)
	}
}

// Get returns the configuration for a library.
func (l *LibrariesConfig) Get(name string) (*LibraryEntry, error) {
	if len(l.Libraries) == 0 {
		return nil, errors.New("no libraries configured")
	}

	entry, ok := l.Libraries[name]
	if !ok {
		names := l.Names()
		if len(names) > 5 {
			names = append(names[:5], "...")
		}
		return nil, fmt.Errorf("library %q not found (available: %s)", name, strings.Join(names, ", "))
	}

	return &entry, nil
}

// Names returns the registered library names in sorted order.
func (l *LibrariesConfig) Names() []string {
	names := make([]string, 0, len(l.Libraries))
	for name := range l.Libraries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Exists checks if a library is registered.
func (l *LibrariesConfig) Exists(name string) bool {
	if l.Libraries == nil {
		return false
	}
	_, ok := l.Libraries[name]
	return ok
}
