package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how reports are encoded.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatMsgpack OutputFormat = "msgpack"
)

// Config holds all configuration for pyinspect
type Config struct {
	// Function selection
	IgnorePrivate bool `yaml:"ignore_private" env:"PYINSPECT_IGNORE_PRIVATE"`
	IgnoreNested  bool `yaml:"ignore_nested" env:"PYINSPECT_IGNORE_NESTED"`

	// TodoPattern is the regular expression used by the todos command
	TodoPattern string `yaml:"todo_pattern" env:"PYINSPECT_TODO_PATTERN"`

	// Scanning
	ExcludeTests bool     `yaml:"exclude_tests" env:"PYINSPECT_EXCLUDE_TESTS"`
	Include      []string `yaml:"include" env:"PYINSPECT_INCLUDE"`
	Exclude      []string `yaml:"exclude" env:"PYINSPECT_EXCLUDE"`

	// Reporting
	OutputFormat OutputFormat `yaml:"output_format" env:"PYINSPECT_OUTPUT_FORMAT"`
	Workers      int          `yaml:"workers" env:"PYINSPECT_WORKERS"`

	// Logging
	LogLevel string `yaml:"log_level" env:"PYINSPECT_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"PYINSPECT_LOG_JSON"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		IgnorePrivate: false,
		IgnoreNested:  false,
		TodoPattern:   "TODO:.*",
		ExcludeTests:  false,
		Include:       []string{"**/*.py"},
		Exclude:       nil,
		OutputFormat:  FormatText,
		Workers:       4,
		LogLevel:      "info",
		LogJSON:       false,
	}
}

// GlobalConfigPath returns the global config file path (~/.pyinspect/config.yaml)
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pyinspect/config.yaml"
	}
	return filepath.Join(home, ".pyinspect", "config.yaml")
}

// ProjectConfigPath returns the project-level config file path (./.pyinspect/config.yaml)
func ProjectConfigPath() string {
	return filepath.Join(".pyinspect", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.pyinspect/config.yaml)
// 3. Global config (~/.pyinspect/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigPath(), ProjectConfigPath()} {
		if err := mergeFile(cfg, path, false); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := mergeFile(cfg, path, true); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeFile unmarshals path over cfg. A missing file is only an error when
// required is set.
func mergeFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PYINSPECT_IGNORE_PRIVATE"); v != "" {
		cfg.IgnorePrivate = parseBool(v)
	}
	if v := os.Getenv("PYINSPECT_IGNORE_NESTED"); v != "" {
		cfg.IgnoreNested = parseBool(v)
	}
	if v := os.Getenv("PYINSPECT_TODO_PATTERN"); v != "" {
		cfg.TodoPattern = v
	}
	if v := os.Getenv("PYINSPECT_EXCLUDE_TESTS"); v != "" {
		cfg.ExcludeTests = parseBool(v)
	}
	if v := os.Getenv("PYINSPECT_INCLUDE"); v != "" {
		cfg.Include = SplitList(v)
	}
	if v := os.Getenv("PYINSPECT_EXCLUDE"); v != "" {
		cfg.Exclude = SplitList(v)
	}
	if v := os.Getenv("PYINSPECT_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(strings.ToLower(v))
	}
	if v := os.Getenv("PYINSPECT_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			cfg.Workers = i
		}
	}
	if v := os.Getenv("PYINSPECT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PYINSPECT_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case FormatText, FormatJSON, FormatYAML, FormatMsgpack:
	default:
		return fmt.Errorf("invalid output_format: %s (must be 'text', 'json', 'yaml' or 'msgpack')", c.OutputFormat)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	if len(c.Include) == 0 {
		return fmt.Errorf("include must list at least one pattern")
	}

	if _, err := regexp.Compile(c.TodoPattern); err != nil {
		return fmt.Errorf("invalid todo_pattern: %w", err)
	}

	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
