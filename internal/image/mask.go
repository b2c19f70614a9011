package image

import (
	"fmt"
	"image"

	"colorhint/pkg/colorutil"

	"gonum.org/v1/gonum/stat"
)

// MaskThreshold is the 8-bit intensity above which a mask image pixel
// selects the foreground.
const MaskThreshold = 128

// Mask is a single-channel weight map in [0,1]: 1 selects the foreground
// (colorized) image, 0 the background.
type Mask struct {
	Width  int
	Height int
	Values []float32 // row-major, Width*Height
}

// NewMask creates an all-zero mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Values: make([]float32, width*height)}
}

// UniformMask creates a mask with every value set to v.
func UniformMask(width, height int, v float32) *Mask {
	m := NewMask(width, height)
	for i := range m.Values {
		m.Values[i] = v
	}
	return m
}

// MaskFromImage thresholds an intensity image: pixels brighter than
// MaskThreshold become 1, everything else 0.
func MaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if colorutil.Gray(img.At(b.Min.X+x, b.Min.Y+y)) > MaskThreshold {
				m.Values[y*m.Width+x] = 1
			}
		}
	}
	return m
}

// LoadMask reads a mask image, resizes it to width x height with
// nearest-neighbour sampling when needed, and thresholds it.
func LoadMask(path string, width, height int) (*Mask, error) {
	layer, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load mask: %w", err)
	}
	return MaskFromImage(resizeNearest(layer.Image, width, height)), nil
}

// Size returns the mask dimensions.
func (m *Mask) Size() image.Point {
	return image.Pt(m.Width, m.Height)
}

// At returns the weight at (x, y).
func (m *Mask) At(x, y int) float32 {
	return m.Values[y*m.Width+x]
}

// Set sets the weight at (x, y).
func (m *Mask) Set(x, y int, v float32) {
	m.Values[y*m.Width+x] = v
}

// Valid reports whether the value buffer matches the dimensions.
func (m *Mask) Valid() bool {
	return m != nil && m.Width > 0 && m.Height > 0 && len(m.Values) == m.Width*m.Height
}

// Coverage returns the mean weight, i.e. the fraction of the image taken
// from the foreground.
func (m *Mask) Coverage() float64 {
	if len(m.Values) == 0 {
		return 0
	}
	vals := make([]float64, len(m.Values))
	for i, v := range m.Values {
		vals[i] = float64(v)
	}
	return stat.Mean(vals, nil)
}

// Count returns the number of weights strictly above threshold.
func (m *Mask) Count(threshold float32) int {
	n := 0
	for _, v := range m.Values {
		if v > threshold {
			n++
		}
	}
	return n
}

// Image renders the mask as an 8-bit gray image for inspection.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Values {
		img.Pix[(i/m.Width)*img.Stride+i%m.Width] = colorutil.Clamp8(float64(v) * 255)
	}
	return img
}
