/*
Package preview renders objects as images.

An object is first rendered as an image.Paletted with one image pixel per
cell. Palette index 0 is always fully transparent and is used for uncolored
cells and for color indices that resolve to transparent; index i+1 holds the
resolved color of color index i. The paletted image can then be scaled by
the on-screen pixel size of the display mode, which for the 160 modes is
twice as wide as it is high.
*/
package preview

import (
	"errors"
	"image"
	"image/color"

	"github.com/bodgit/sprite7800/canvas"
	"github.com/bodgit/sprite7800/grid"
	"github.com/bodgit/sprite7800/mode"
	"github.com/bodgit/sprite7800/palette"
)

var errNoMode = errors.New("preview: object has no display mode")

// Source is everything needed to render one object
type Source struct {
	Grid     *grid.Grid
	Mode     mode.Mode
	Bank     *palette.Bank
	Ref      int
	Kangaroo bool
	Pixel    mode.PixelSize
}

// FromCanvas captures the current state of c
func FromCanvas(c *canvas.Canvas) Source {
	return Source{
		Grid:     c.Grid(),
		Mode:     c.Mode(),
		Bank:     c.Bank(),
		Ref:      c.PaletteRef(),
		Kangaroo: c.Kangaroo(),
		Pixel:    c.PixelSize(),
	}
}

// Palette returns the color palette used to render src
func Palette(src Source, spec *palette.Spec) (color.Palette, error) {
	if !src.Mode.Valid() {
		return nil, errNoMode
	}

	bank := src.Bank
	if bank == nil {
		bank = palette.NewBank()
	}

	values := src.Mode.Colors(bank, src.Ref, src.Kangaroo)
	p := make(color.Palette, len(values)+1)
	p[0] = color.RGBA{}
	for i, v := range values {
		switch v.Kind {
		case mode.Transparent:
			p[i+1] = color.RGBA{}
		case mode.Background:
			p[i+1] = spec.RGBA(bank.Background())
		default:
			p[i+1] = spec.RGBA(v.Color)
		}
	}
	return p, nil
}

// Render draws src with one image pixel per cell
func Render(src Source, spec *palette.Spec) (*image.Paletted, error) {
	p, err := Palette(src, spec)
	if err != nil {
		return nil, err
	}

	g := src.Grid
	m := image.NewPaletted(image.Rect(0, 0, g.Width(), g.Height()), p)
	for y, row := range g.Rows() {
		for x, c := range row {
			if c == grid.Empty {
				continue
			}
			// The grid never holds more indices than the mode has colors
			m.SetColorIndex(x, y, uint8(c)+1)
		}
	}
	return m, nil
}
