package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the ytree configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the ytree configuration directory
const ConfigDirName = ".ytree"

// Config holds all ytree configuration
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Tree      TreeConfig      `yaml:"tree"`
	Watch     WatchConfig     `yaml:"watch"`
	Log       LogConfig       `yaml:"log"`
}

// WorkspaceConfig holds configuration for locating schema documents
type WorkspaceConfig struct {
	Documents []string `yaml:"documents"`
}

// TreeConfig holds default rendering options for the tree command
type TreeConfig struct {
	Depth            int  `yaml:"depth"`
	LineLength       int  `yaml:"line_length"`
	PrefixModule     bool `yaml:"prefix_module"`
	PrefixMainModule bool `yaml:"prefix_main_module"`
}

// WatchConfig holds configuration for watch mode
type WatchConfig struct {
	DebounceMillis int `yaml:"debounce_millis"`
}

// LogConfig holds configuration for logging
type LogConfig struct {
	Level string `yaml:"level"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .ytree/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Merge with defaults
	merged := Merge(loaded, DefaultConfig())

	// Validate the merged config
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .ytree directory by walking up from startDir.
// Returns the path to the .ytree directory if found.
func FindConfigDir(startDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		// Move to parent directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .ytree directory if it doesn't exist.
// Returns the path to the .ytree directory.
func EnsureConfigDir(workDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	// Check if it already exists
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	// Create the directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	// Validate depth (0 means unlimited)
	if cfg.Tree.Depth < 0 {
		return fmt.Errorf("%w: depth must be non-negative, got %d",
			ErrInvalidConfig, cfg.Tree.Depth)
	}

	// Validate line length (0 means unlimited)
	if cfg.Tree.LineLength < 0 {
		return fmt.Errorf("%w: line_length must be non-negative, got %d",
			ErrInvalidConfig, cfg.Tree.LineLength)
	}

	// Validate debounce (should be positive)
	if cfg.Watch.DebounceMillis <= 0 {
		return fmt.Errorf("%w: debounce_millis must be positive, got %d",
			ErrInvalidConfig, cfg.Watch.DebounceMillis)
	}

	// Validate log level
	if !IsValidLogLevel(cfg.Log.Level) {
		return fmt.Errorf("%w: log level must be one of %v, got %q",
			ErrInvalidConfig, ValidLogLevels, cfg.Log.Level)
	}

	// Validate document patterns
	for _, pattern := range cfg.Workspace.Documents {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w: bad document pattern %q: %v",
				ErrInvalidConfig, pattern, err)
		}
	}

	return nil
}

// SaveDefault writes the default configuration to .ytree/config.yaml in workDir.
// Creates the .ytree directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	// Add header comment
	header := "# ytree configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
