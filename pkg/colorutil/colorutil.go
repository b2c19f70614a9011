// Package colorutil provides shared color utilities for the color hint tools.
package colorutil

import (
	"image/color"
	"math"
)

// Common overlay colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan  = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// Clamp8 rounds v to the nearest integer and clamps it to [0,255].
func Clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ToRGBA converts any color to 8-bit RGBA.
func ToRGBA(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

// Luminance returns the 8-bit gray value of an RGB triple using the
// ITU-R BT.601 weights (same as OpenCV's RGB2GRAY).
func Luminance(r, g, b uint8) uint8 {
	return Clamp8(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
}

// Gray returns the 8-bit intensity of an arbitrary color.
func Gray(c color.Color) uint8 {
	rgba := ToRGBA(c)
	return Luminance(rgba.R, rgba.G, rgba.B)
}
