// Package config manages application configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roboco-io/mwaw2md/internal/textenc"
)

// Environment variables that override the file.
const (
	EnvLogLevel = "MWAW2MD_LOG_LEVEL"
	EnvEncoding = "MWAW2MD_ENCODING"
)

// Config represents the application configuration.
type Config struct {
	Decode DecodeConfig `yaml:"decode"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// DecodeConfig is passed to the format parsers.
type DecodeConfig struct {
	// DefaultEncoding is the 8-bit code page for text fonts. Empty means
	// the format's own default (Windows-1252 for Write, Mac Roman
	// otherwise).
	DefaultEncoding string `yaml:"default_encoding"`
	PageTableBreaks bool   `yaml:"page_table_breaks"`
	ExtractImages   bool   `yaml:"extract_images"`
	ImageDir        string `yaml:"image_dir"`
}

// OutputConfig contains output options.
type OutputConfig struct {
	Format string `yaml:"format"` // markdown, json, text
	Pretty bool   `yaml:"pretty"`
}

// LogConfig configures the slog handler on stderr.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Decode: DecodeConfig{
			ImageDir: "./images",
		},
		Output: OutputConfig{
			Format: "markdown",
			Pretty: true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// ApplyEnv overrides the file values with MWAW2MD_* variables.
func (c *Config) ApplyEnv() {
	c.Log.Level = GetEnvOrDefault(EnvLogLevel, c.Log.Level)
	c.Decode.DefaultEncoding = GetEnvOrDefault(EnvEncoding, c.Decode.DefaultEncoding)
}

// Validate checks the enumerated values.
func (c *Config) Validate() error {
	if c.Decode.DefaultEncoding != "" {
		if _, err := textenc.ByName(c.Decode.DefaultEncoding); err != nil {
			return fmt.Errorf("decode.default_encoding: %w", err)
		}
	}
	switch c.Output.Format {
	case "markdown", "json", "text":
	default:
		return fmt.Errorf("output.format: 지원하지 않는 출력 형식: %q", c.Output.Format)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: %q (text, json)", c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelWarn, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
