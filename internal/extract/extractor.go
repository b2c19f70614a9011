package extract

import (
	"fmt"
	"image"
	"image/color"

	"colorhint/internal/features"
	"colorhint/internal/hints"
	cimage "colorhint/internal/image"
	"colorhint/internal/matching"
	"colorhint/pkg/colorutil"
	"colorhint/pkg/geometry"
)

// Sample is one accepted correspondence: a target pixel and the reference
// color found at its match.
type Sample struct {
	Target    geometry.PointInt
	Reference geometry.PointInt
	Color     color.RGBA
}

// Result holds the outcome of one extraction.
type Result struct {
	Points             []hints.ColorPoint // Final color points, at most NumPoints
	Samples            []Sample           // All in-bounds matches before selection
	Matches            []matching.Match   // Accepted matches, target is the query side
	TargetKeypoints    int
	ReferenceKeypoints int
	Visualization      image.Image // Set only when requested
}

// Extractor runs the detect, match, select pipeline. It caches the
// feature detector between calls and is not safe for concurrent use.
type Extractor struct {
	cfg      Config
	detector features.Detector
}

// New creates an Extractor for cfg.
func New(cfg Config) (*Extractor, error) {
	e := &Extractor{}
	if err := e.Configure(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Configure applies cfg. The cached detector is rebuilt only when the
// detection method changes; an identical config is a no-op.
func (e *Extractor) Configure(cfg Config) error {
	method, err := features.ParseMethod(string(cfg.Method))
	if err != nil {
		return err
	}
	cfg.Method = method
	if err := cfg.Validate(); err != nil {
		return err
	}
	if e.detector != nil && cfg == e.cfg {
		return nil
	}

	if e.detector == nil || e.detector.Method() != method {
		d, err := features.NewDetector(method)
		if err != nil {
			return err
		}
		if e.detector != nil {
			e.detector.Close()
		}
		e.detector = d
		if cfg.Verbose {
			fmt.Printf("Using %s detector (%s descriptors)\n", method, d.Metric())
		}
	}
	e.cfg = cfg
	return nil
}

// Config returns the active configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Close releases the cached detector.
func (e *Extractor) Close() error {
	if e.detector == nil {
		return nil
	}
	err := e.detector.Close()
	e.detector = nil
	return err
}

// Extract finds color points for target using the colors of reference.
// Both images must have the same dimensions; resizing is the caller's
// job. No keypoints or no matches give an empty result, not an error.
func (e *Extractor) Extract(target, reference image.Image, visualize bool) (*Result, error) {
	if e.detector == nil {
		return nil, fmt.Errorf("extractor is closed")
	}
	size := cimage.Size(target)
	if ref := cimage.Size(reference); ref != size {
		return nil, fmt.Errorf("%w: reference is %dx%d, target is %dx%d",
			cimage.ErrSizeMismatch, ref.X, ref.Y, size.X, size.Y)
	}

	targetMat, err := cimage.ToMat(target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	defer targetMat.Close()
	refMat, err := cimage.ToMat(reference)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	defer refMat.Close()

	targetSet, err := e.detector.DetectAndDescribe(targetMat)
	if err != nil {
		return nil, fmt.Errorf("target features: %w", err)
	}
	refSet, err := e.detector.DetectAndDescribe(refMat)
	if err != nil {
		return nil, fmt.Errorf("reference features: %w", err)
	}
	if e.cfg.Verbose {
		fmt.Printf("Keypoints: %d target, %d reference\n", targetSet.Len(), refSet.Len())
	}

	matches, err := e.cfg.matcher().Match(targetSet, refSet)
	if err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}

	samples := collectSamples(targetSet, refSet, matches, reference)
	if e.cfg.Verbose {
		fmt.Printf("Matches: %d accepted, %d in bounds\n", len(matches), len(samples))
	}

	points, err := Select(samples, e.cfg.NumPoints, e.cfg.clusterOptions())
	if err != nil {
		return nil, err
	}
	if e.cfg.Verbose {
		fmt.Printf("Selected %d color points\n", len(points))
	}

	result := &Result{
		Points:             points,
		Samples:            samples,
		Matches:            matches,
		TargetKeypoints:    targetSet.Len(),
		ReferenceKeypoints: refSet.Len(),
	}
	if visualize {
		vis, err := Visualize(targetMat, refMat, targetSet, refSet, matches, points)
		if err != nil {
			return nil, fmt.Errorf("visualization: %w", err)
		}
		result.Visualization = vis
	}
	return result, nil
}

// collectSamples maps each match to pixel coordinates and reads the
// reference color. Matches that land outside either image are dropped.
func collectSamples(targetSet, refSet *features.Set, matches []matching.Match, reference image.Image) []Sample {
	b := reference.Bounds()
	w, h := b.Dx(), b.Dy()

	samples := make([]Sample, 0, len(matches))
	for _, m := range matches {
		tp := targetSet.Point(m.QueryIdx).Pixel()
		rp := refSet.Point(m.RefIdx).Pixel()
		if !tp.In(w, h) || !rp.In(w, h) {
			continue
		}
		samples = append(samples, Sample{
			Target:    tp,
			Reference: rp,
			Color:     colorutil.ToRGBA(reference.At(b.Min.X+rp.X, b.Min.Y+rp.Y)),
		})
	}
	return samples
}
