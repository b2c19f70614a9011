package image

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"colorhint/internal/hints"
	"colorhint/pkg/colorutil"

	"github.com/cenkalti/dominantcolor"
)

// RegionThreshold is the weight above which a mask pixel belongs to the
// sampled region.
const RegionThreshold = 0.5

// regionPixels lists the coordinates with weight above RegionThreshold in
// row-major order.
func regionPixels(mask *Mask) []image.Point {
	var pts []image.Point
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if mask.At(x, y) > RegionThreshold {
				pts = append(pts, image.Pt(x, y))
			}
		}
	}
	return pts
}

// SampleRegion picks up to n color samples from the masked region of img.
// Samples are taken at a uniform stride over the row-major list of masked
// pixels, first and last pixel included. An empty region yields no points.
func SampleRegion(img image.Image, mask *Mask, n int) ([]hints.ColorPoint, error) {
	if !mask.Valid() {
		return nil, fmt.Errorf("invalid mask")
	}
	if err := checkSize("mask", mask.Size(), Size(img)); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	pts := regionPixels(mask)
	if len(pts) == 0 {
		return nil, nil
	}

	count := min(n, len(pts))
	b := img.Bounds()
	out := make([]hints.ColorPoint, 0, count)
	for i := 0; i < count; i++ {
		idx := 0
		if count > 1 {
			idx = i * (len(pts) - 1) / (count - 1)
		}
		p := pts[idx]
		out = append(out, hints.New(p.X, p.Y, img.At(b.Min.X+p.X, b.Min.Y+p.Y)))
	}
	return out, nil
}

// RegionPalette returns up to k dominant colors of the masked region of
// img, most dominant first.
func RegionPalette(img image.Image, mask *Mask, k int) ([]color.RGBA, error) {
	if !mask.Valid() {
		return nil, fmt.Errorf("invalid mask")
	}
	if err := checkSize("mask", mask.Size(), Size(img)); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	pts := regionPixels(mask)
	if len(pts) == 0 {
		return nil, nil
	}

	// Pack the region into a square tile; dominant colors ignore layout.
	side := int(math.Ceil(math.Sqrt(float64(len(pts)))))
	tile := image.NewRGBA(image.Rect(0, 0, side, side))
	b := img.Bounds()
	for i := 0; i < side*side; i++ {
		p := pts[i%len(pts)]
		tile.SetRGBA(i%side, i/side, colorutil.ToRGBA(img.At(b.Min.X+p.X, b.Min.Y+p.Y)))
	}

	found := dominantcolor.FindWeight(tile, k)
	out := make([]color.RGBA, 0, len(found))
	for _, c := range found {
		out = append(out, color.RGBA{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B, A: 255})
	}
	return out, nil
}
