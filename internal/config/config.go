// Package config loads rhctview settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Output modes.
const (
	OutputTUI      = "tui"
	OutputText     = "text"
	OutputJSON     = "json"
	OutputMarkdown = "markdown"
)

// DefaultTablePath is where Linux exposes the firmware's RHCT.
const DefaultTablePath = "/sys/firmware/acpi/tables/RHCT"

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the settings that flags can override.
type Config struct {
	TablePath      string `json:"table_path" yaml:"table_path" toml:"table_path" jsonschema:"title=Table Path,description=RHCT file to decode"`
	Output         string `json:"output" yaml:"output" toml:"output" jsonschema:"title=Output,description=Output mode,enum=tui,enum=text,enum=json,enum=markdown"`
	ShowOffsets    bool   `json:"show_offsets" yaml:"show_offsets" toml:"show_offsets" jsonschema:"title=Show Offsets,description=Prefix traced fields with offset and width"`
	NoColor        bool   `json:"no_color" yaml:"no_color" toml:"no_color" jsonschema:"title=No Color,description=Disable colored output"`
	Strict         bool   `json:"strict" yaml:"strict" toml:"strict" jsonschema:"title=Strict,description=Exit with an error when any table error was counted"`
	VerifyChecksum bool   `json:"verify_checksum" yaml:"verify_checksum" toml:"verify_checksum" jsonschema:"title=Verify Checksum,description=Check the table checksum before decoding"`
	MetricsFile    string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" toml:"metrics_file,omitempty" jsonschema:"title=Metrics File,description=Write Prometheus textfile metrics to this path"`
	LogLevel       string `json:"log_level" yaml:"log_level" toml:"log_level" jsonschema:"title=Log Level,description=Diagnostic log level,enum=debug,enum=info,enum=warn,enum=error"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TablePath:      DefaultTablePath,
		Output:         OutputTUI,
		VerifyChecksum: true,
		LogLevel:       "info",
	}
}

// DefaultPath returns ~/.config/rhctview/config.yaml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "rhctview", "config.yaml"), nil
}

// Load reads path on top of Default. Files ending in .toml are parsed as TOML,
// anything else as YAML.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the file at DefaultPath. A missing file yields Default.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Output {
	case OutputTUI, OutputText, OutputJSON, OutputMarkdown:
	default:
		return fmt.Errorf("%w: unknown output %q", ErrInvalidConfig, c.Output)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.TablePath == "" {
		return fmt.Errorf("%w: empty table path", ErrInvalidConfig)
	}
	return nil
}
