// Package config loads engine tuning from TOML files.
//
// Configuration covers the section-resolution heuristics and preview
// rendering. A missing file is not an error: callers get the defaults
// and can run without any configuration on disk.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/docspan/internal/section"
)

// Config holds all tunable engine settings.
type Config struct {
	Sections SectionsConfig `toml:"sections"`
	Preview  PreviewConfig  `toml:"preview"`
	Log      LogConfig      `toml:"log"`
}

// SectionsConfig tunes the heading-detection heuristics.
type SectionsConfig struct {
	// MaxHeadingLength is the length above which a styled paragraph is
	// treated as body text rather than a heading.
	MaxHeadingLength int `toml:"max-heading-length"`

	// AdjacencyWindow is how close (in characters) a heading-styled
	// paragraph may start to a preceding real heading before it is
	// classified as bled style.
	AdjacencyWindow int `toml:"adjacency-window"`
}

// PreviewConfig tunes dry-run previews.
type PreviewConfig struct {
	// ContextChars is how much surrounding text to include on each
	// side of an affected range.
	ContextChars int `toml:"context-chars"`
}

// LogConfig tunes diagnostic output.
type LogConfig struct {
	// Level is the minimum level to emit: debug, info, warn, or error.
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	sec := section.DefaultConfig()
	return Config{
		Sections: SectionsConfig{
			MaxHeadingLength: sec.MaxHeadingLen,
			AdjacencyWindow:  sec.AdjacencyWindow,
		},
		Preview: PreviewConfig{
			ContextChars: 40,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ParseError describes a configuration file that could not be parsed.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string

	// Err is the underlying parse error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads configuration from a TOML file, applying defaults for any
// omitted keys. A nonexistent path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks that all settings are usable.
func (c Config) Validate() error {
	if c.Sections.MaxHeadingLength < 1 {
		return fmt.Errorf("sections.max-heading-length must be at least 1, got %d", c.Sections.MaxHeadingLength)
	}
	if c.Sections.AdjacencyWindow < 1 {
		return fmt.Errorf("sections.adjacency-window must be at least 1, got %d", c.Sections.AdjacencyWindow)
	}
	if c.Preview.ContextChars < 0 {
		return fmt.Errorf("preview.context-chars must not be negative, got %d", c.Preview.ContextChars)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	return nil
}

// SectionConfig converts the section settings into the resolver's
// configuration type.
func (c Config) SectionConfig() section.Config {
	return section.Config{
		MaxHeadingLen:   c.Sections.MaxHeadingLength,
		AdjacencyWindow: c.Sections.AdjacencyWindow,
	}
}
