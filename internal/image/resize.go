package image

import (
	"image"

	"golang.org/x/image/draw"
)

// ResizeTo scales img to width x height with Catmull-Rom resampling.
// The input is returned unchanged when it already has that size.
func ResizeTo(img image.Image, width, height int) image.Image {
	if Size(img) == image.Pt(width, height) {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// resizeNearest scales img without interpolating between pixel values,
// which keeps binary masks binary.
func resizeNearest(img image.Image, width, height int) image.Image {
	if Size(img) == image.Pt(width, height) {
		return img
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
