package app

import (
	"fmt"
	"image"
	"io"

	"colorhint/internal/hints"
)

// ImageKind identifies which image a View is being handed.
type ImageKind int

const (
	ImageResult        ImageKind = iota // Masked composite
	ImageVisualization                  // Extraction diagnostics
	ImageMask                           // Mask as used for blending
)

func (k ImageKind) String() string {
	switch k {
	case ImageResult:
		return "result"
	case ImageVisualization:
		return "visualization"
	case ImageMask:
		return "mask"
	}
	return "unknown"
}

// View receives results from State. Methods are called synchronously on
// the goroutine that invoked the State operation, never with State locked.
type View interface {
	ShowPoints(points []hints.ColorPoint)
	ShowImage(kind ImageKind, img image.Image)
	ShowStatus(msg string)
}

// NopView discards everything.
type NopView struct{}

func (NopView) ShowPoints([]hints.ColorPoint) {}

func (NopView) ShowImage(ImageKind, image.Image) {}

func (NopView) ShowStatus(string) {}

// ConsoleView prints status lines and keeps the latest image of each kind
// for command line tools.
type ConsoleView struct {
	out    io.Writer
	Points []hints.ColorPoint
	Images map[ImageKind]image.Image
}

// NewConsoleView creates a ConsoleView writing to out.
func NewConsoleView(out io.Writer) *ConsoleView {
	return &ConsoleView{out: out, Images: make(map[ImageKind]image.Image)}
}

func (v *ConsoleView) ShowPoints(points []hints.ColorPoint) {
	v.Points = points
}

func (v *ConsoleView) ShowImage(kind ImageKind, img image.Image) {
	v.Images[kind] = img
}

func (v *ConsoleView) ShowStatus(msg string) {
	fmt.Fprintln(v.out, msg)
}
