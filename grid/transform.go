package grid

// Axis of a flip
type Axis int

// List of valid axes
const (
	Horizontal Axis = iota
	Vertical
)

// Direction of a rotation
type Direction int

// List of valid directions
const (
	Clockwise Direction = iota
	CounterClockwise
)

// Flip mirrors the cells inside r. A horizontal flip swaps columns and a
// vertical flip swaps rows. It returns the number of cells changed.
func (g *Grid) Flip(r Rect, axis Axis) int {
	r = r.Intersect(g.Bounds())
	if r.Empty() {
		return 0
	}
	src := g.Sub(r)
	n := 0
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			sx, sy := x, y
			if axis == Horizontal {
				sx = r.Width - 1 - x
			} else {
				sy = r.Height - 1 - y
			}
			if g.set(r.X+x, r.Y+y, src.cells[sy*r.Width+sx]) {
				n++
			}
		}
	}
	return n
}

// Rotate90 rotates the whole grid by a quarter turn. Width and height are
// swapped and every cell is moved; no cell is lost.
func (g *Grid) Rotate90(dir Direction) {
	w, h := g.width, g.height
	cells := make([]Cell, len(g.cells))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var nx, ny int
			if dir == Clockwise {
				nx, ny = h-1-y, x
			} else {
				nx, ny = y, w-1-x
			}
			cells[ny*h+nx] = g.cells[y*w+x]
		}
	}
	g.width, g.height = h, w
	g.cells = cells
}

// Resize changes the dimensions of the grid. Cells in the overlapping
// top-left region are preserved and new cells are Empty. Dimensions below
// one are clamped to one. It reports whether the dimensions changed.
func (g *Grid) Resize(width, height int) bool {
	width, height = max(width, 1), max(height, 1)
	if width == g.width && height == g.height {
		return false
	}
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = Empty
	}
	for y := 0; y < min(height, g.height); y++ {
		copy(cells[y*width:y*width+min(width, g.width)], g.cells[y*g.width:y*g.width+min(width, g.width)])
	}
	g.width, g.height = width, height
	g.cells = cells
	return true
}

// Crop reduces the grid to the cells inside r. It reports whether the grid
// changed.
func (g *Grid) Crop(r Rect) bool {
	s := g.Sub(r)
	if s == nil || (s.width == g.width && s.height == g.height) {
		return false
	}
	g.width, g.height = s.width, s.height
	g.cells = s.cells
	return true
}

// ApplyPartialPixelData pastes the colored cells of buf onto the grid with
// the top-left corner of buf at p. Empty cells of buf leave the grid
// untouched and anything outside of the grid is clipped. It returns the
// number of cells changed.
func (g *Grid) ApplyPartialPixelData(buf *Grid, p Point) int {
	if buf == nil {
		return 0
	}
	n := 0
	for y := 0; y < buf.height; y++ {
		for x := 0; x < buf.width; x++ {
			c := buf.cells[y*buf.width+x]
			if c == Empty {
				continue
			}
			if g.set(p.X+x, p.Y+y, c) {
				n++
			}
		}
	}
	return n
}

// Blit copies every cell of buf, including Empty ones, onto the grid with
// the top-left corner of buf at p. It returns the number of cells changed.
func (g *Grid) Blit(buf *Grid, p Point) int {
	if buf == nil {
		return 0
	}
	n := 0
	for y := 0; y < buf.height; y++ {
		for x := 0; x < buf.width; x++ {
			if g.set(p.X+x, p.Y+y, buf.cells[y*buf.width+x]) {
				n++
			}
		}
	}
	return n
}

// Shift moves every cell by d, wrapping around the edges
func (g *Grid) Shift(d Point) int {
	src := g.Clone()
	n := 0
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			sx := ((x-d.X)%g.width + g.width) % g.width
			sy := ((y-d.Y)%g.height + g.height) % g.height
			if g.set(x, y, src.cells[sy*g.width+sx]) {
				n++
			}
		}
	}
	return n
}
