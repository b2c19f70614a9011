// Package app provides the controller that owns the session state and
// drives extraction and compositing on behalf of a view.
package app

import (
	"errors"
	"fmt"
	goimage "image"
	"image/color"
	"path/filepath"
	"strings"
	"sync"

	"colorhint/internal/config"
	"colorhint/internal/extract"
	"colorhint/internal/hints"
	"colorhint/internal/image"
	"colorhint/internal/project"
)

// ErrMissingInput is returned when an operation needs an image or mask
// that has not been loaded.
var ErrMissingInput = errors.New("missing input")

// State holds the session: settings, loaded images, the mask and the
// latest results.
type State struct {
	mu sync.RWMutex

	view      View
	extractor *extract.Extractor

	// Session
	SessionPath string
	Modified    bool
	Config      config.Config

	// Images. Reference and Colorized are resized to Target when used.
	Target    *image.Layer
	Reference *image.Layer
	Colorized *image.Layer

	// Mask at target resolution, before feathering
	Mask     *image.Mask
	MaskPath string

	// Results
	Points []hints.ColorPoint
	Result goimage.Image
}

// NewState creates a controller with default settings that reports to
// view. A nil view discards all updates.
func NewState(view View) (*State, error) {
	if view == nil {
		view = NopView{}
	}
	cfg := config.DefaultConfig()
	ex, err := extract.New(cfg.Extract.ToExtract())
	if err != nil {
		return nil, err
	}
	return &State{view: view, extractor: ex, Config: cfg}, nil
}

// Close releases the extractor.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extractor.Close()
}

// SetConfig validates and applies cfg. The extractor keeps its detector
// unless the method changed.
func (s *State) SetConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.extractor.Configure(cfg.Extract.ToExtract()); err != nil {
		return err
	}
	if cfg != s.Config {
		s.Config = cfg
		s.Modified = true
	}
	return nil
}

// LoadTarget loads the grayscale image to colorize. Points and results
// from a previous target are dropped.
func (s *State) LoadTarget(path string) error {
	layer, err := image.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Target = layer
	s.Points = nil
	s.Result = nil
	if s.Reference != nil {
		s.Reference = fitTo(s.Reference, layer)
	}
	if s.Colorized != nil {
		s.Colorized = fitTo(s.Colorized, layer)
	}
	var maskErr error
	if s.MaskPath != "" {
		s.Mask, maskErr = image.LoadMask(s.MaskPath, layer.Width(), layer.Height())
	}
	s.Modified = true
	s.mu.Unlock()

	if maskErr != nil {
		return maskErr
	}
	s.view.ShowPoints(nil)
	s.view.ShowStatus(fmt.Sprintf("Loaded target %s (%dx%d)", path, layer.Width(), layer.Height()))
	return nil
}

// LoadReference loads the color reference image, resized to the target
// when one is loaded.
func (s *State) LoadReference(path string) error {
	layer, err := image.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	layer, status := s.fitToTarget("reference", layer)
	s.Reference = layer
	s.Modified = true
	s.mu.Unlock()

	s.view.ShowStatus(status)
	return nil
}

// LoadColorized loads a fully colorized version of the target for masked
// compositing.
func (s *State) LoadColorized(path string) error {
	layer, err := image.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	layer, status := s.fitToTarget("colorized", layer)
	s.Colorized = layer
	s.Modified = true
	s.mu.Unlock()

	s.view.ShowStatus(status)
	return nil
}

// LoadMask loads and thresholds a mask image at the target resolution.
func (s *State) LoadMask(path string) error {
	s.mu.Lock()
	if s.Target == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: load a target before the mask", ErrMissingInput)
	}
	mask, err := image.LoadMask(path, s.Target.Width(), s.Target.Height())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.Mask = mask
	s.MaskPath = path
	s.Modified = true
	s.mu.Unlock()

	s.view.ShowImage(ImageMask, mask.Image())
	s.view.ShowStatus(fmt.Sprintf("Loaded mask %s (%.1f%% selected)", path, mask.Coverage()*100))
	return nil
}

// AutoColorize extracts color points for the target from the reference
// and pushes them to the view. Finding no points is reported, not an error.
func (s *State) AutoColorize(visualize bool) error {
	s.mu.Lock()
	if s.Target == nil || s.Reference == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: auto-colorize needs target and reference images", ErrMissingInput)
	}
	res, err := s.extractor.Extract(s.Target.Image, s.Reference.Image, visualize)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.Points = res.Points
	s.Modified = true
	s.mu.Unlock()

	s.view.ShowPoints(res.Points)
	if res.Visualization != nil {
		s.view.ShowImage(ImageVisualization, res.Visualization)
	}
	if len(res.Points) == 0 {
		s.view.ShowStatus("No matching features found between the images")
		return nil
	}
	s.view.ShowStatus(fmt.Sprintf("Extracted %d color points from %d matches", len(res.Points), len(res.Samples)))
	return nil
}

// ApplyMask blends the colorized image over the target under the mask,
// feathered when configured, and pushes the result to the view.
func (s *State) ApplyMask() error {
	s.mu.Lock()
	if s.Target == nil || s.Colorized == nil || s.Mask == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: masking needs target, colorized and mask", ErrMissingInput)
	}
	mask := s.Mask
	if s.Config.Mask.Smooth {
		var err error
		if mask, err = image.Feather(mask, s.Config.Mask.BlurSize); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	result, err := image.Blend(s.Target.Image, s.Colorized.Image, mask)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.Result = result
	s.mu.Unlock()

	s.view.ShowImage(ImageMask, mask.Image())
	s.view.ShowImage(ImageResult, result)
	s.view.ShowStatus(fmt.Sprintf("Applied mask (%.1f%% colorized)", mask.Coverage()*100))
	return nil
}

// SampleMaskedColors takes up to n color points from the masked region of
// the colorized image and makes them the current points.
func (s *State) SampleMaskedColors(n int) ([]hints.ColorPoint, error) {
	s.mu.Lock()
	src, err := s.maskedSource()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	pts, err := image.SampleRegion(src, s.Mask, n)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.Points = pts
	s.Modified = true
	s.mu.Unlock()

	s.view.ShowPoints(pts)
	if len(pts) == 0 {
		s.view.ShowStatus("Mask selects no pixels")
	} else {
		s.view.ShowStatus(fmt.Sprintf("Sampled %d colors from the masked region", len(pts)))
	}
	return pts, nil
}

// SuggestPalette returns up to k dominant colors of the masked region of
// the colorized image.
func (s *State) SuggestPalette(k int) ([]color.RGBA, error) {
	s.mu.RLock()
	src, err := s.maskedSource()
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	mask := s.Mask
	s.mu.RUnlock()

	return image.RegionPalette(src, mask, k)
}

// maskedSource returns the image region operations read colors from.
// Callers hold s.mu.
func (s *State) maskedSource() (goimage.Image, error) {
	if s.Mask == nil {
		return nil, fmt.Errorf("%w: no mask loaded", ErrMissingInput)
	}
	if s.Colorized == nil {
		return nil, fmt.Errorf("%w: no colorized image loaded", ErrMissingInput)
	}
	return s.Colorized.Image, nil
}

// GetPoints returns the current color points.
func (s *State) GetPoints() []hints.ColorPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Points
}

// SavePoints writes the current points in the color-point text format.
func (s *State) SavePoints(path string) error {
	return hints.WriteFile(path, s.GetPoints())
}

// ExportHints rescales the current points from the target onto a
// size x size network input, writes them to path as Lab hints and returns
// the rasterized hint planes.
func (s *State) ExportHints(path string, size int) (*hints.Input, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid hint size %d", size)
	}
	s.mu.RLock()
	if s.Target == nil {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: hints need a target image", ErrMissingInput)
	}
	from := goimage.Pt(s.Target.Width(), s.Target.Height())
	points := s.Points
	s.mu.RUnlock()

	scaled := hints.Rescale(points, from, goimage.Pt(size, size))
	if err := hints.WriteLabFile(path, hints.ToLab(scaled)); err != nil {
		return nil, err
	}
	in := hints.BuildInput(scaled, size, size)
	s.view.ShowStatus(fmt.Sprintf("Wrote %d Lab hints for a %dx%d input to %s", in.Count(), size, size, path))
	return in, nil
}

// SaveSession saves settings, image paths and points to path. Non-empty
// points are also written as a color-point file next to the session.
func (s *State) SaveSession(path string) error {
	s.mu.RLock()
	proj := project.New(sessionName(path))
	proj.Config = s.Config
	proj.Points = s.Points
	proj.SetImages(path, layerPath(s.Target), layerPath(s.Reference), layerPath(s.Colorized), s.MaskPath)
	s.mu.RUnlock()

	if err := proj.Save(path); err != nil {
		return err
	}
	if len(proj.Points) > 0 {
		if err := hints.WriteFile(project.PointsPath(path), proj.Points); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.SessionPath = path
	s.Modified = false
	s.mu.Unlock()

	s.view.ShowStatus(fmt.Sprintf("Saved session %s", path))
	return nil
}

// LoadSession restores a session: settings first, then images, mask and
// points.
func (s *State) LoadSession(path string) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}
	if err := s.SetConfig(proj.Config); err != nil {
		return err
	}

	if p := proj.ResolvePath(path, proj.TargetPath); p != "" {
		if err := s.LoadTarget(p); err != nil {
			return err
		}
	}
	if p := proj.ResolvePath(path, proj.ReferencePath); p != "" {
		if err := s.LoadReference(p); err != nil {
			return err
		}
	}
	if p := proj.ResolvePath(path, proj.ColorizedPath); p != "" {
		if err := s.LoadColorized(p); err != nil {
			return err
		}
	}
	if p := proj.ResolvePath(path, proj.MaskPath); p != "" {
		if err := s.LoadMask(p); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.Points = proj.Points
	s.SessionPath = path
	s.Modified = false
	s.mu.Unlock()

	s.view.ShowPoints(proj.Points)
	s.view.ShowStatus(fmt.Sprintf("Loaded session %s", path))
	return nil
}

// fitTo resizes layer to the size of target, keeping its path.
func fitTo(layer, target *image.Layer) *image.Layer {
	if sameSize(layer, target) {
		return layer
	}
	return &image.Layer{
		Path:  layer.Path,
		Image: image.ResizeTo(layer.Image, target.Width(), target.Height()),
	}
}

func sameSize(a, b *image.Layer) bool {
	return a.Width() == b.Width() && a.Height() == b.Height()
}

// fitToTarget fits layer to the target when one is loaded and returns the
// status line for it, naming the resize when one happened. Callers hold
// s.mu.
func (s *State) fitToTarget(what string, layer *image.Layer) (*image.Layer, string) {
	if s.Target == nil || sameSize(layer, s.Target) {
		return layer, fmt.Sprintf("Loaded %s %s", what, layer.Path)
	}
	status := fmt.Sprintf("Resized %s %s from %dx%d to %dx%d", what, layer.Path,
		layer.Width(), layer.Height(), s.Target.Width(), s.Target.Height())
	return fitTo(layer, s.Target), status
}

func layerPath(l *image.Layer) string {
	if l == nil {
		return ""
	}
	return l.Path
}

func sessionName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
