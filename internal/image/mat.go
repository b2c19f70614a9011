package image

import (
	"fmt"
	"image"

	"colorhint/pkg/colorutil"

	"gocv.io/x/gocv"
)

// ToMat converts a Go image.Image to a gocv.Mat in BGR format.
func ToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}

	data := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := colorutil.ToRGBA(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			i := (y*w + x) * 3
			data[i+0] = c.B
			data[i+1] = c.G
			data[i+2] = c.R
		}
	}

	return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, data)
}

// FromMat converts a BGR or gray Mat back to a Go image.
func FromMat(m gocv.Mat) (image.Image, error) {
	if m.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	return m.ToImage()
}
