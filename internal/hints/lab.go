package hints

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"
)

// LabHeader is the first line of a Lab hint file.
const LabHeader = "# x, y, L, a, b"

// LabHint is a ColorPoint expressed in CIE L*a*b* (D65), the space
// colorization networks take their user hints in. L is in [0,100].
type LabHint struct {
	X, Y    int
	L, A, B float64
}

// Lab converts the point's color to CIE L*a*b* on the conventional scale.
func (p ColorPoint) Lab() (l, a, b float64) {
	c := colorful.Color{R: float64(p.R) / 255.0, G: float64(p.G) / 255.0, B: float64(p.B) / 255.0}
	l, a, b = c.Lab()
	// go-colorful scales L*a*b* down by 100.
	return l * 100, a * 100, b * 100
}

// ToLab converts every point to a LabHint, preserving order.
func ToLab(points []ColorPoint) []LabHint {
	out := make([]LabHint, len(points))
	for i, p := range points {
		l, a, b := p.Lab()
		out[i] = LabHint{X: p.X, Y: p.Y, L: l, A: a, B: b}
	}
	return out
}

// Input is the hint tensor pair a colorization network ingests: two
// planes of a*/b* values and a plane marking where hints were placed.
// Planes are row-major, Width*Height long.
type Input struct {
	Width, Height int
	AB            [2][]float32
	Mask          []float32
}

// BuildInput rasterizes points into hint planes of the given size. Points
// outside the plane are skipped; later points overwrite earlier ones at
// the same pixel.
func BuildInput(points []ColorPoint, width, height int) *Input {
	n := width * height
	in := &Input{
		Width:  width,
		Height: height,
		AB:     [2][]float32{make([]float32, n), make([]float32, n)},
		Mask:   make([]float32, n),
	}
	for _, h := range ToLab(points) {
		if h.X < 0 || h.X >= width || h.Y < 0 || h.Y >= height {
			continue
		}
		idx := h.Y*width + h.X
		in.AB[0][idx] = float32(h.A)
		in.AB[1][idx] = float32(h.B)
		in.Mask[idx] = 1
	}
	return in
}

// Count returns the number of pixels carrying a hint.
func (in *Input) Count() int {
	n := 0
	for _, m := range in.Mask {
		if m > 0 {
			n++
		}
	}
	return n
}

// WriteLab writes hints as a header line followed by one
// "x, y, L, a, b" line per hint, channels to two decimals.
func WriteLab(w io.Writer, hs []LabHint) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, LabHeader); err != nil {
		return err
	}
	for _, h := range hs {
		if _, err := fmt.Fprintf(bw, "%d, %d, %.2f, %.2f, %.2f\n", h.X, h.Y, h.L, h.A, h.B); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteLabFile writes hints to path, replacing any existing file.
func WriteLabFile(path string, hs []LabHint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteLab(f, hs); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
