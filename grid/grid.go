/*
Package grid implements the pixel grid of an editable object.

A grid is a width by height array of cells in row-major order. Each cell
either holds a color index or is Empty. Every mutation funnels through a
single unexported setter which clamps coordinates to the grid and color
indices to the limit of the current display mode, so no primitive can leave
the grid holding an index the mode cannot represent.
*/
package grid

import (
	"github.com/bodgit/sprite7800/digest"
)

// Cell is the color index held by one pixel
type Cell int8

// Empty marks an uncolored cell
const Empty Cell = -1

// MaxCells limits the number of color indices a grid can be asked to hold
const MaxCells = 127

// Point is a cell coordinate
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{x, y}
func Pt(x, y int) Point {
	return Point{x, y}
}

// Add returns p translated by q
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Rect is a rectangle of cells. Width and height are never negative for a
// canonical rectangle.
type Rect struct {
	X, Y          int
	Width, Height int
}

// RectFromPoints returns the smallest rectangle containing both points
func RectFromPoints(a, b Point) Rect {
	if a.X > b.X {
		a.X, b.X = b.X, a.X
	}
	if a.Y > b.Y {
		a.Y, b.Y = b.Y, a.Y
	}
	return Rect{X: a.X, Y: a.Y, Width: b.X - a.X + 1, Height: b.Y - a.Y + 1}
}

// Empty reports whether the rectangle holds no cells
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p is inside r
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Intersect returns the largest rectangle contained by both r and s
func (r Rect) Intersect(s Rect) Rect {
	x0 := max(r.X, s.X)
	y0 := max(r.Y, s.Y)
	x1 := min(r.X+r.Width, s.X+s.Width)
	y1 := min(r.Y+r.Height, s.Y+s.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Min returns the top-left cell
func (r Rect) Min() Point { return Point{r.X, r.Y} }

// Max returns the bottom-right cell, inclusive
func (r Rect) Max() Point { return Point{r.X + r.Width - 1, r.Y + r.Height - 1} }

// Grid is a two dimensional array of cells
type Grid struct {
	width  int
	height int
	limit  int
	cells  []Cell
}

// New returns an empty grid. Dimensions below one are clamped to one and
// limit is the number of color indices a cell may hold.
func New(width, height, limit int) *Grid {
	width, height = max(width, 1), max(height, 1)
	g := &Grid{
		width:  width,
		height: height,
		limit:  clampLimit(limit),
		cells:  make([]Cell, width*height),
	}
	for i := range g.cells {
		g.cells[i] = Empty
	}
	return g
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxCells {
		return MaxCells
	}
	return limit
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// Bounds returns the rectangle covering the whole grid
func (g *Grid) Bounds() Rect { return Rect{Width: g.width, Height: g.height} }

// Limit returns the number of color indices a cell may hold
func (g *Grid) Limit() int { return g.limit }

// In reports whether p is inside the grid
func (g *Grid) In(p Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// At returns the cell at p or Empty when p is outside the grid
func (g *Grid) At(p Point) Cell {
	if !g.In(p) {
		return Empty
	}
	return g.cells[p.Y*g.width+p.X]
}

// clampCell limits c to the color indices of the grid
func (g *Grid) clampCell(c Cell) Cell {
	switch {
	case c < 0:
		return Empty
	case int(c) >= g.limit:
		return Cell(g.limit - 1)
	}
	return c
}

// set is the only place cells are written. It reports whether the cell
// changed.
func (g *Grid) set(x, y int, c Cell) bool {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return false
	}
	c = g.clampCell(c)
	i := y*g.width + x
	if g.cells[i] == c {
		return false
	}
	g.cells[i] = c
	return true
}

// Set colors a single cell and reports whether it changed. Coordinates
// outside of the grid are ignored.
func (g *Grid) Set(p Point, c Cell) bool {
	return g.set(p.X, p.Y, c)
}

// SetLimit changes the number of color indices a cell may hold and clamps
// every cell to the new limit. It returns the number of cells changed.
func (g *Grid) SetLimit(limit int) int {
	g.limit = clampLimit(limit)
	n := 0
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.set(x, y, g.cells[y*g.width+x]) {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep, independent copy of the grid
func (g *Grid) Clone() *Grid {
	c := *g
	c.cells = make([]Cell, len(g.cells))
	copy(c.cells, g.cells)
	return &c
}

// Equal reports whether both grids have the same dimensions and cells
func (g *Grid) Equal(o *Grid) bool {
	if g.width != o.width || g.height != o.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Sum64 returns the structural digest of the dimensions and cells
func (g *Grid) Sum64() uint64 {
	b := make([]byte, len(g.cells))
	for i, c := range g.cells {
		b[i] = byte(c)
	}
	return digest.Shape(g.width, g.height, b)
}

// Load replaces the grid with the contents of src, dimensions first and
// then cell data. The limit of g is kept and src cells are clamped to it.
func (g *Grid) Load(src *Grid) {
	g.width, g.height = src.width, src.height
	g.cells = make([]Cell, len(src.cells))
	for i := range g.cells {
		g.cells[i] = Empty
	}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			g.set(x, y, src.cells[y*src.width+x])
		}
	}
}

// Restore makes g an exact copy of src, including its color limit
func (g *Grid) Restore(src *Grid) {
	*g = *src.Clone()
}

// Rows returns a copy of the cells one row at a time
func (g *Grid) Rows() [][]Cell {
	rows := make([][]Cell, g.height)
	for y := range rows {
		rows[y] = make([]Cell, g.width)
		copy(rows[y], g.cells[y*g.width:(y+1)*g.width])
	}
	return rows
}

// FromRows builds a grid from rows of cells. Short rows are padded with
// Empty cells to the width of the longest row.
func FromRows(rows [][]Cell, limit int) *Grid {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	g := New(w, len(rows), limit)
	for y, r := range rows {
		for x, c := range r {
			g.set(x, y, c)
		}
	}
	return g
}

// Sub returns a deep copy of the cells inside r, clipped to the grid. An
// empty intersection returns nil.
func (g *Grid) Sub(r Rect) *Grid {
	r = r.Intersect(g.Bounds())
	if r.Empty() {
		return nil
	}
	s := New(r.Width, r.Height, g.limit)
	for y := 0; y < r.Height; y++ {
		copy(s.cells[y*r.Width:(y+1)*r.Width], g.cells[(r.Y+y)*g.width+r.X:(r.Y+y)*g.width+r.X+r.Width])
	}
	return s
}

// Count returns the number of cells holding c
func (g *Grid) Count(c Cell) int {
	n := 0
	for _, v := range g.cells {
		if v == c {
			n++
		}
	}
	return n
}

// MaxIndex returns the highest color index used, or Empty for a blank grid
func (g *Grid) MaxIndex() Cell {
	m := Empty
	for _, v := range g.cells {
		if v > m {
			m = v
		}
	}
	return m
}
