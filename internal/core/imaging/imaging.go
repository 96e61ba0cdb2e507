// Package imaging holds the small raster helpers the capture and match paths share
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	// decoders for reference images produced by other tools
	_ "image/jpeg"
)

// ErrEmpty is returned for nil or zero-area images
var ErrEmpty = errors.New("imaging: empty image")

// Empty reports whether img is nil or has no pixels
func Empty(img image.Image) bool {
	return img == nil || img.Bounds().Empty()
}

// Gray converts img to 8-bit luminance with origin at (0,0)
// a *image.Gray already at the origin is returned as is
func Gray(img image.Image) *image.Gray {
	if Empty(img) {
		return nil
	}
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Crop copies r out of g after clipping it to g's bounds
// ok is false when nothing remains after clipping
func Crop(g *image.Gray, r image.Rectangle) (*image.Gray, bool) {
	if g == nil {
		return nil, false
	}
	r = r.Canon().Intersect(g.Bounds())
	if r.Empty() {
		return nil, false
	}
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), g, r.Min, draw.Src)
	return out, true
}

// Decode reads a PNG or JPEG image
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	if Empty(img) {
		return nil, ErrEmpty
	}
	return img, nil
}

// Load decodes the image at path
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// EncodePNG writes img as PNG; PNG keeps grayscale samples lossless
func EncodePNG(w io.Writer, img image.Image) error {
	if Empty(img) {
		return ErrEmpty
	}
	return png.Encode(w, img)
}

// Fill returns a w by h gray image filled with v, handy for fixtures
func Fill(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(g, g.Bounds(), &image.Uniform{C: color.Gray{Y: v}}, image.Point{}, draw.Src)
	return g
}
