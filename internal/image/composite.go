package image

import (
	"fmt"
	"image"

	"colorhint/pkg/colorutil"
)

// Blend composites foreground over background under mask:
//
//	result = mask*foreground + (1-mask)*background
//
// per pixel and channel, rounded and clamped to 8 bits. Both images and
// the mask must have identical dimensions; nothing is resized here.
func Blend(background, foreground image.Image, mask *Mask) (*image.RGBA, error) {
	if !mask.Valid() {
		return nil, fmt.Errorf("invalid mask")
	}
	size := Size(background)
	if err := checkSize("foreground", Size(foreground), size); err != nil {
		return nil, err
	}
	if err := checkSize("mask", mask.Size(), size); err != nil {
		return nil, err
	}

	bgB, fgB := background.Bounds(), foreground.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))

	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			bg := colorutil.ToRGBA(background.At(bgB.Min.X+x, bgB.Min.Y+y))
			fg := colorutil.ToRGBA(foreground.At(fgB.Min.X+x, fgB.Min.Y+y))
			a := clamp(float64(mask.At(x, y)), 0, 1)

			i := result.PixOffset(x, y)
			result.Pix[i+0] = mix(bg.R, fg.R, a)
			result.Pix[i+1] = mix(bg.G, fg.G, a)
			result.Pix[i+2] = mix(bg.B, fg.B, a)
			result.Pix[i+3] = mix(bg.A, fg.A, a)
		}
	}

	return result, nil
}

// mix interpolates one 8-bit channel.
func mix(bg, fg uint8, a float64) uint8 {
	return colorutil.Clamp8(a*float64(fg) + (1-a)*float64(bg))
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
