package image

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultFeather is the blur kernel used to soften mask edges.
const DefaultFeather = 15

// Feather softens the transitions of a mask with a Gaussian blur of the
// given kernel size. Even sizes are bumped to the next odd size; sigma is
// derived from the kernel. The input mask is not modified.
func Feather(mask *Mask, kernel int) (*Mask, error) {
	if !mask.Valid() {
		return nil, fmt.Errorf("invalid mask")
	}
	if kernel < 1 {
		return nil, fmt.Errorf("feather kernel must be positive, got %d", kernel)
	}
	if kernel%2 == 0 {
		kernel++
	}

	src := gocv.NewMatWithSize(mask.Height, mask.Width, gocv.MatTypeCV32F)
	defer src.Close()
	srcData, err := src.DataPtrFloat32()
	if err != nil {
		return nil, err
	}
	copy(srcData, mask.Values)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Pt(kernel, kernel), 0, 0, gocv.BorderDefault)

	dstData, err := blurred.DataPtrFloat32()
	if err != nil {
		return nil, err
	}

	out := NewMask(mask.Width, mask.Height)
	copy(out.Values, dstData)
	for i, v := range out.Values {
		out.Values[i] = float32(clamp(float64(v), 0, 1))
	}
	return out, nil
}
