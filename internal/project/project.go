// Package project provides session file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"colorhint/internal/config"
	"colorhint/internal/hints"
)

// CurrentVersion is the session format version written by Save.
const CurrentVersion = 1

// File represents a colorization session file (.chproj).
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Image paths (relative to session file)
	TargetPath    string `json:"target,omitempty"`
	ReferencePath string `json:"reference,omitempty"`
	ColorizedPath string `json:"colorized,omitempty"`
	MaskPath      string `json:"mask,omitempty"`

	// Settings used for the points below
	Config config.Config `json:"config"`

	// Extracted or sampled color points in target coordinates
	Points []hints.ColorPoint `json:"points,omitempty"`
}

// New creates a session with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  CurrentVersion,
		Name:     name,
		Created:  now,
		Modified: now,
		Config:   config.DefaultConfig(),
	}
}

// Load loads a session from path. Settings missing from the file keep
// their defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	proj := File{Config: config.DefaultConfig()}
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("session %s has version %d, newest supported is %d", path, proj.Version, CurrentVersion)
	}
	if err := proj.Config.Validate(); err != nil {
		return nil, err
	}

	return &proj, nil
}

// Save saves the session to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetImages records image paths relative to the session file. Empty
// paths are left empty.
func (p *File) SetImages(projectPath, target, reference, colorized, mask string) {
	p.TargetPath = relativeTo(projectPath, target)
	p.ReferencePath = relativeTo(projectPath, reference)
	p.ColorizedPath = relativeTo(projectPath, colorized)
	p.MaskPath = relativeTo(projectPath, mask)
	p.Modified = time.Now()
}

// ResolvePath returns the absolute form of a path stored in the session.
func (p *File) ResolvePath(projectPath, stored string) string {
	if stored == "" {
		return ""
	}
	if filepath.IsAbs(stored) {
		return stored
	}
	return filepath.Join(filepath.Dir(projectPath), stored)
}

// PointsPath returns the default color-point file next to the session:
// session_name_points.txt.
func PointsPath(projectPath string) string {
	base := projectPath[:len(projectPath)-len(filepath.Ext(projectPath))]
	return base + "_points.txt"
}

func relativeTo(projectPath, path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	dir, err := filepath.Abs(filepath.Dir(projectPath))
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return path
	}
	return rel
}
