package preview

import (
	"image"

	"github.com/bodgit/sprite7800/mode"
	"github.com/bodgit/sprite7800/palette"
	"golang.org/x/image/draw"
)

// Scale enlarges m so each image pixel covers pixel.Width by pixel.Height
// pixels
func Scale(m image.Image, pixel mode.PixelSize) *image.NRGBA {
	pixel.Width, pixel.Height = max(pixel.Width, 1), max(pixel.Height, 1)

	b := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*pixel.Width, b.Dy()*pixel.Height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)
	return dst
}

// Thumbnail scales m to fit within size by size pixels, keeping its aspect
// ratio. Images that already fit are returned at their original size.
func Thumbnail(m image.Image, size int) *image.NRGBA {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	if size > 0 && (w > size || h > size) {
		if w >= h {
			w, h = size, max(h*size/w, 1)
		} else {
			w, h = max(w*size/h, 1), size
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)
	return dst
}

// Image renders src at its on-screen pixel size
func Image(src Source, spec *palette.Spec) (*image.NRGBA, error) {
	m, err := Render(src, spec)
	if err != nil {
		return nil, err
	}
	return Scale(m, src.Pixel), nil
}
