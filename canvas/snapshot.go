package canvas

import (
	"fmt"

	"github.com/bodgit/sprite7800/grid"
	"github.com/bodgit/sprite7800/mode"
	"github.com/bodgit/sprite7800/palette"
	"github.com/bodgit/sprite7800/selection"
	"github.com/bodgit/sprite7800/snapshot"
)

// Snapshot returns the object as stored in a snapshot. A move in progress
// is stored as though it had been committed.
func (c *Canvas) Snapshot() snapshot.Object {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.grid
	if c.sel.State() == selection.Moving {
		g = c.grid.Clone()
		g.ApplyPartialPixelData(c.sel.Buffer(), c.sel.Rect().Min())
	}

	o := snapshot.Object{
		Name:             c.name,
		DisplayModeName:  c.mode.Name(),
		PaletteReference: c.ref,
		Kangaroo:         c.kangaroo,
		Width:            g.Width(),
		Height:           g.Height(),
		PixelWidth:       c.pixel.Width,
		PixelHeight:      c.pixel.Height,
		PixelData:        make([][]*int, g.Height()),
	}
	for y, row := range g.Rows() {
		o.PixelData[y] = make([]*int, len(row))
		for x, ci := range row {
			if ci == grid.Empty {
				continue
			}
			v := int(ci)
			o.PixelData[y][x] = &v
		}
	}
	return o
}

// FromSnapshot builds a canvas from a snapshot object. Color indices beyond
// those of the display mode are clamped. Short rows are padded with
// uncolored pixels.
func FromSnapshot(o snapshot.Object, bank *palette.Bank, cfg Config) (*Canvas, error) {
	m, ok := mode.ByName(o.DisplayModeName)
	if !ok {
		return nil, &snapshot.FieldError{Field: "displayModeName", Expected: "display mode", Got: fmt.Sprintf("%q", o.DisplayModeName)}
	}
	if o.Width < 1 {
		return nil, &snapshot.FieldError{Field: "width", Expected: "positive int", Got: fmt.Sprint(o.Width)}
	}
	if o.Height < 1 {
		return nil, &snapshot.FieldError{Field: "height", Expected: "positive int", Got: fmt.Sprint(o.Height)}
	}
	if len(o.PixelData) > o.Height {
		return nil, &snapshot.FieldError{Field: "pixelData", Expected: fmt.Sprintf("%d rows", o.Height), Got: fmt.Sprintf("%d rows", len(o.PixelData))}
	}

	g := grid.New(o.Width, o.Height, m.NumColors())
	for y, row := range o.PixelData {
		if len(row) > o.Width {
			return nil, &snapshot.FieldError{Field: fmt.Sprintf("pixelData[%d]", y), Expected: fmt.Sprintf("%d cells", o.Width), Got: fmt.Sprintf("%d cells", len(row))}
		}
		for x, v := range row {
			if v == nil || *v < 0 {
				continue
			}
			g.Set(grid.Pt(x, y), grid.Cell(m.Clamp(*v)))
		}
	}

	pixel := cfg.PixelSize
	if o.PixelWidth > 0 && o.PixelHeight > 0 {
		pixel = mode.PixelSize{Width: o.PixelWidth, Height: o.PixelHeight}
	}

	c := newCanvas(o.Name, g, m, bank, cfg, m.PixelDimensions(pixel))
	c.ref = o.PaletteReference & (palette.MaxPalettes - 1)
	c.kangaroo = o.Kangaroo
	return c, nil
}
