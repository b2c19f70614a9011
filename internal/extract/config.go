// Package extract transfers sparse color samples from a reference color
// image onto matching locations of a target image.
package extract

import (
	"fmt"

	"colorhint/internal/cluster"
	"colorhint/internal/features"
	"colorhint/internal/matching"
)

// Config configures color point extraction.
type Config struct {
	Method     features.Method // Feature detector
	NumPoints  int             // Maximum number of color points returned
	MatchRatio float64         // Ratio test threshold, in (0,1)
	Seed       int             // Clustering seed
	Attempts   int             // Clustering initializations
	Workers    int             // Matcher goroutines (0 = NumCPU)
	Verbose    bool            // Print progress
}

// DefaultConfig returns default extraction settings.
func DefaultConfig() Config {
	return Config{
		Method:     features.DefaultMethod,
		NumPoints:  50,
		MatchRatio: matching.DefaultRatio,
		Seed:       42,
		Attempts:   10,
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c Config) Validate() error {
	if _, err := features.ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if c.NumPoints < 1 {
		return fmt.Errorf("num points must be positive, got %d", c.NumPoints)
	}
	if err := c.matcher().Validate(); err != nil {
		return err
	}
	if c.Attempts < 1 {
		return fmt.Errorf("clustering attempts must be positive, got %d", c.Attempts)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

func (c Config) matcher() *matching.Matcher {
	m := matching.New(c.MatchRatio)
	m.Workers = c.Workers
	return m
}

// clusterOptions derives the clustering settings.
func (c Config) clusterOptions() cluster.Options {
	opts := cluster.DefaultOptions()
	opts.Seed = c.Seed
	opts.Attempts = c.Attempts
	return opts
}
