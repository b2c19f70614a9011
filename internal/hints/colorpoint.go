// Package hints defines the ColorPoint hint type handed to colorization
// consumers, its text file format and its perceptual encodings.
package hints

import (
	"fmt"
	"image"
	"image/color"

	"colorhint/pkg/colorutil"
	"colorhint/pkg/geometry"
)

// ColorPoint is a color sample at an integer pixel location of the target
// image. Values are immutable once created.
type ColorPoint struct {
	X int   `json:"x"`
	Y int   `json:"y"`
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// New creates a ColorPoint at (x, y) with the given color.
func New(x, y int, c color.Color) ColorPoint {
	rgba := colorutil.ToRGBA(c)
	return ColorPoint{X: x, Y: y, R: rgba.R, G: rgba.G, B: rgba.B}
}

// RGBA returns the point's color as an opaque color.RGBA.
func (p ColorPoint) RGBA() color.RGBA {
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 255}
}

// Position returns the point's pixel location.
func (p ColorPoint) Position() geometry.PointInt {
	return geometry.PointInt{X: p.X, Y: p.Y}
}

// InBounds reports whether the point lies inside a width x height image.
func (p ColorPoint) InBounds(width, height int) bool {
	return p.Position().In(width, height)
}

// String formats the point as a line of the color-point file.
func (p ColorPoint) String() string {
	return fmt.Sprintf("%d, %d, %d, %d, %d", p.X, p.Y, p.R, p.G, p.B)
}

// Rescale maps point positions from an image of size from onto an image of
// size to, e.g. the fixed input resolution of a colorization network.
// Colors are kept; positions are clamped into the destination bounds.
func Rescale(points []ColorPoint, from, to image.Point) []ColorPoint {
	if len(points) == 0 || from.X <= 0 || from.Y <= 0 || to.X <= 0 || to.Y <= 0 {
		return nil
	}
	sx := float64(to.X) / float64(from.X)
	sy := float64(to.Y) / float64(from.Y)

	out := make([]ColorPoint, len(points))
	for i, p := range points {
		x := min(max(int(float64(p.X)*sx), 0), to.X-1)
		y := min(max(int(float64(p.Y)*sy), 0), to.Y-1)
		out[i] = ColorPoint{X: x, Y: y, R: p.R, G: p.G, B: p.B}
	}
	return out
}
