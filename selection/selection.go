/*
Package selection implements the editing state of a grid: a rectangular
selection with an optional detached buffer, and the tool currently being
dragged.

The states are Idle, Drawing, Selected and Moving. Selecting on its own never
changes the grid; only Commit, Cancel, Erase, Flip, Crop and Cut do.
*/
package selection

import (
	"github.com/bodgit/sprite7800/grid"
)

// State of the editor for one grid
type State int

// List of valid states
const (
	Idle State = iota
	Drawing
	Selected
	Moving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Selected:
		return "selected"
	case Moving:
		return "moving"
	}
	return "unknown"
}

// Tool is the drawing tool in use while in the Drawing state
type Tool int

// List of valid tools
const (
	Pencil Tool = iota
	Eraser
	Line
	Rect
	FilledRect
	Ellipse
	FilledEllipse
	Fill
	Select
)

var toolNames = map[Tool]string{
	Pencil:        "pencil",
	Eraser:        "eraser",
	Line:          "line",
	Rect:          "rect",
	FilledRect:    "filled rect",
	Ellipse:       "ellipse",
	FilledEllipse: "filled ellipse",
	Fill:          "fill",
	Select:        "select",
}

func (t Tool) String() string {
	if s, ok := toolNames[t]; ok {
		return s
	}
	return "unknown"
}

// Shape reports whether the tool previews a shape between the start and
// current point rather than drawing as it goes
func (t Tool) Shape() bool {
	switch t {
	case Line, Rect, FilledRect, Ellipse, FilledEllipse, Select:
		return true
	}
	return false
}

// Selection is the selection state of one grid
type Selection struct {
	state State
	tool  Tool

	// stroke start and current point while Drawing
	start, current grid.Point

	rect grid.Rect

	// detached cells while Moving, origin is where they were lifted from
	buffer  *grid.Grid
	origin  grid.Rect
	offset  grid.Point
	pasted  bool
	cleared *grid.Grid
}

// New returns an idle selection
func New() *Selection {
	return &Selection{}
}

// State returns the current state
func (s *Selection) State() State { return s.state }

// Tool returns the tool in use while Drawing
func (s *Selection) Tool() Tool { return s.tool }

// Rect returns the selected rectangle. When Moving it is the rectangle at
// the current offset.
func (s *Selection) Rect() grid.Rect {
	if s.state == Moving {
		r := s.origin
		r.X += s.offset.X
		r.Y += s.offset.Y
		return r
	}
	return s.rect
}

// Active reports whether there is a selected rectangle
func (s *Selection) Active() bool {
	return s.state == Selected || s.state == Moving
}

// Buffer returns the detached cells while Moving
func (s *Selection) Buffer() *grid.Grid {
	if s.state != Moving {
		return nil
	}
	return s.buffer
}

// Offset returns the live offset of the detached cells from where they were
// lifted
func (s *Selection) Offset() grid.Point { return s.offset }

// BeginStroke enters the Drawing state with the given tool. Any selection
// is dropped.
func (s *Selection) BeginStroke(t Tool, p grid.Point) {
	s.state = Drawing
	s.tool = t
	s.start, s.current = p, p
	s.buffer = nil
}

// StrokeTo moves the current point of the stroke and returns the previous
// one
func (s *Selection) StrokeTo(p grid.Point) grid.Point {
	prev := s.current
	s.current = p
	return prev
}

// Stroke returns the start and current point of the stroke
func (s *Selection) Stroke() (grid.Point, grid.Point) {
	return s.start, s.current
}

// EndStroke leaves the Drawing state. A Select stroke ends Selected with the
// stroke rectangle, anything else returns to Idle.
func (s *Selection) EndStroke(g *grid.Grid) {
	if s.state != Drawing {
		return
	}
	if s.tool == Select {
		s.Set(g, grid.RectFromPoints(s.start, s.current))
		return
	}
	s.state = Idle
}

// Set selects r clamped to the grid. An empty intersection deselects.
func (s *Selection) Set(g *grid.Grid, r grid.Rect) {
	r = r.Intersect(g.Bounds())
	s.buffer = nil
	s.offset = grid.Point{}
	if r.Empty() {
		s.state = Idle
		s.rect = grid.Rect{}
		return
	}
	s.state = Selected
	s.rect = r
}

// Deselect returns to Idle without touching the grid. A move in progress is
// committed first so that lifted cells are never lost.
func (s *Selection) Deselect(g *grid.Grid) int {
	n := 0
	if s.state == Moving {
		n = s.Commit(g)
	}
	s.state = Idle
	s.rect = grid.Rect{}
	s.buffer = nil
	return n
}

// PixelData returns a deep copy of the selected cells
func (s *Selection) PixelData(g *grid.Grid) *grid.Grid {
	switch s.state {
	case Selected:
		return g.Sub(s.rect)
	case Moving:
		return s.buffer.Clone()
	}
	return nil
}

// BeginMove detaches the selected cells into a buffer and clears them from
// the grid. It returns the number of cells cleared.
func (s *Selection) BeginMove(g *grid.Grid) int {
	if s.state != Selected {
		return 0
	}
	s.cleared = g.Sub(s.rect)
	s.buffer = s.cleared.Clone()
	s.origin = s.rect
	s.offset = grid.Point{}
	s.pasted = false
	s.state = Moving
	return g.EraseRegion(s.rect)
}

// MoveTo sets the offset of the detached cells from where they were lifted
func (s *Selection) MoveTo(offset grid.Point) {
	if s.state == Moving {
		s.offset = offset
	}
}

// MoveBy adds d to the offset of the detached cells
func (s *Selection) MoveBy(d grid.Point) {
	s.MoveTo(s.offset.Add(d))
}

// Commit writes the colored cells of the buffer at the current offset and
// selects the rectangle they landed in, clamped to the grid. It returns the
// number of cells changed.
func (s *Selection) Commit(g *grid.Grid) int {
	if s.state != Moving {
		return 0
	}
	r := s.Rect()
	n := g.ApplyPartialPixelData(s.buffer, r.Min())
	s.cleared = nil
	s.Set(g, r)
	return n
}

// Cancel abandons a move. Lifted cells are put back exactly as they were;
// pasted cells are discarded. It returns the number of cells changed.
func (s *Selection) Cancel(g *grid.Grid) int {
	if s.state != Moving {
		return 0
	}
	n := 0
	if !s.pasted {
		n = g.Blit(s.cleared, s.origin.Min())
	}
	origin := s.origin
	s.cleared = nil
	if s.pasted {
		s.Set(g, grid.Rect{})
		return n
	}
	s.Set(g, origin)
	return n
}

// Flip mirrors the selected cells. While Moving the buffer is flipped
// instead of the grid. It returns the number of grid cells changed.
func (s *Selection) Flip(g *grid.Grid, axis grid.Axis) int {
	switch s.state {
	case Selected:
		return g.Flip(s.rect, axis)
	case Moving:
		s.buffer.Flip(s.buffer.Bounds(), axis)
	}
	return 0
}

// Erase empties the selected cells, or drops the buffer while Moving. It
// returns the number of grid cells changed.
func (s *Selection) Erase(g *grid.Grid) int {
	switch s.state {
	case Selected:
		return g.EraseRegion(s.rect)
	case Moving:
		r := s.Rect()
		s.cleared = nil
		s.Set(g, r)
	}
	return 0
}

// Crop reduces the grid to the selection and selects the whole grid. It
// reports whether the grid changed.
func (s *Selection) Crop(g *grid.Grid) bool {
	if s.state == Moving {
		s.Commit(g)
	}
	if s.state != Selected {
		return false
	}
	changed := g.Crop(s.rect)
	s.Set(g, g.Bounds())
	return changed
}

// Copy returns a deep copy of the selected cells for a clipboard
func (s *Selection) Copy(g *grid.Grid) *grid.Grid {
	return s.PixelData(g)
}

// Cut copies the selected cells and empties them. It returns the copied
// cells and the number of grid cells changed.
func (s *Selection) Cut(g *grid.Grid) (*grid.Grid, int) {
	buf := s.Copy(g)
	if buf == nil {
		return nil, 0
	}
	return buf, s.Erase(g)
}

// Paste floats a copy of buf over the grid at p in the Moving state. Any
// move in progress is committed first. Cancelling discards the pasted cells.
func (s *Selection) Paste(g *grid.Grid, buf *grid.Grid, p grid.Point) int {
	if buf == nil {
		return 0
	}
	n := 0
	if s.state == Moving {
		n = s.Commit(g)
	}
	s.buffer = buf.Clone()
	s.origin = grid.Rect{X: p.X, Y: p.Y, Width: buf.Width(), Height: buf.Height()}
	s.offset = grid.Point{}
	s.pasted = true
	s.cleared = nil
	s.state = Moving
	return n
}

// Reset drops all state without touching the grid
func (s *Selection) Reset() {
	*s = Selection{}
}
