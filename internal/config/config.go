// Package config loads and saves the YAML settings shared by the command
// line tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"colorhint/internal/extract"
	"colorhint/internal/features"
	cimage "colorhint/internal/image"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for configurations that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top-level settings file.
type Config struct {
	Extract ExtractConfig `yaml:"extract" json:"extract"`
	Mask    MaskConfig    `yaml:"mask" json:"mask"`
}

// ExtractConfig holds color point extraction settings.
type ExtractConfig struct {
	Method         string  `yaml:"method" json:"method"`
	NumPoints      int     `yaml:"num_points" json:"num_points"`
	MatchThreshold float64 `yaml:"match_threshold" json:"match_threshold"`
	Seed           int     `yaml:"seed" json:"seed"`
	Attempts       int     `yaml:"attempts" json:"attempts"`
	Workers        int     `yaml:"workers" json:"workers"`
	Verbose        bool    `yaml:"verbose" json:"verbose"`
}

// MaskConfig holds masked compositing settings.
type MaskConfig struct {
	Smooth   bool `yaml:"smooth" json:"smooth"`       // Feather the mask before blending
	BlurSize int  `yaml:"blur_size" json:"blur_size"` // Feather kernel, bumped to odd
	Samples  int  `yaml:"samples" json:"samples"`     // Region samples to write, 0 = none
	Palette  int  `yaml:"palette" json:"palette"`     // Region palette size, 0 = none
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	ex := extract.DefaultConfig()
	return Config{
		Extract: ExtractConfig{
			Method:         string(ex.Method),
			NumPoints:      ex.NumPoints,
			MatchThreshold: ex.MatchRatio,
			Seed:           ex.Seed,
			Attempts:       ex.Attempts,
			Workers:        ex.Workers,
		},
		Mask: MaskConfig{
			Smooth:   true,
			BlurSize: cimage.DefaultFeather,
		},
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes, and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// UserPath returns the per-user settings file,
// ~/.config/colorhint/config.yaml on Linux.
func UserPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "colorhint", "config.yaml")
}

// LoadUser loads the per-user settings file, or the defaults when there
// is none.
func LoadUser() (Config, error) {
	path := UserPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks both sections.
func (c Config) Validate() error {
	if err := c.Extract.ToExtract().Validate(); err != nil {
		return fmt.Errorf("%w: extract: %v", ErrInvalid, err)
	}
	if c.Mask.BlurSize < 1 {
		return fmt.Errorf("%w: mask: blur_size must be positive, got %d", ErrInvalid, c.Mask.BlurSize)
	}
	if c.Mask.Samples < 0 || c.Mask.Palette < 0 {
		return fmt.Errorf("%w: mask: samples and palette must not be negative", ErrInvalid)
	}
	return nil
}

// ToExtract converts the section to extractor settings.
func (e ExtractConfig) ToExtract() extract.Config {
	return extract.Config{
		Method:     features.Method(e.Method),
		NumPoints:  e.NumPoints,
		MatchRatio: e.MatchThreshold,
		Seed:       e.Seed,
		Attempts:   e.Attempts,
		Workers:    e.Workers,
		Verbose:    e.Verbose,
	}
}
