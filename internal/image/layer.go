// Package image provides image loading, conversion, masking and
// masked compositing.
package image

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrSizeMismatch is returned when images or masks that must share
// dimensions do not.
var ErrSizeMismatch = errors.New("image size mismatch")

// Layer is an image loaded from disk.
type Layer struct {
	Path  string      // Original file path
	Image image.Image // Decoded image data
}

// Load loads an image from the specified path and returns a Layer.
func Load(path string) (*Layer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return &Layer{Path: path, Image: img}, nil
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Save encodes img to path, choosing JPEG for .jpg/.jpeg and PNG otherwise.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// Size returns the dimensions of img.
func Size(img image.Image) image.Point {
	return img.Bounds().Size()
}

// checkSize reports a size mismatch between a named input and the
// required dimensions.
func checkSize(name string, got, want image.Point) error {
	if got != want {
		return fmt.Errorf("%w: %s is %dx%d, want %dx%d", ErrSizeMismatch, name, got.X, got.Y, want.X, want.Y)
	}
	return nil
}
