package canvas

import (
	"github.com/bodgit/sprite7800/grid"
	"github.com/bodgit/sprite7800/selection"
)

// stroke is the state of the tool being dragged
type stroke struct {
	color  grid.Cell
	backup *grid.Grid
}

// Draw colors one pixel and reports whether it changed. User draws are
// checkpointed as a gesture, programmatic draws are not checkpointed at all.
func (c *Canvas) Draw(p grid.Point, ci grid.Cell, b Behavior) bool {
	c.mu.Lock()
	defer c.unlock()

	if b == User && !c.debounce.Pending() {
		c.checkpoint()
	}

	if !c.grid.Set(p, ci) {
		return false
	}
	c.emit(PixelsChanged)

	if b == User {
		c.debounce.Trigger()
	}
	return true
}

// Line draws a line between both points inclusive
func (c *Canvas) Line(p0, p1 grid.Point, ci grid.Cell) int {
	return c.apply(func(g *grid.Grid) int { return g.Line(p0, p1, ci) })
}

// Rect draws a rectangle, optionally filled
func (c *Canvas) Rect(r grid.Rect, ci grid.Cell, filled bool) int {
	return c.apply(func(g *grid.Grid) int { return g.Rect(r, ci, filled) })
}

// Ellipse draws the ellipse bounded by r, optionally filled
func (c *Canvas) Ellipse(r grid.Rect, ci grid.Cell, filled bool) int {
	return c.apply(func(g *grid.Grid) int { return g.Ellipse(r, ci, filled) })
}

// Fill flood fills the region of pixels sharing the color at p. With an
// active selection the fill stops at its edges unless configured not to.
func (c *Canvas) Fill(p grid.Point, ci grid.Cell) int {
	c.mu.Lock()
	defer c.unlock()

	n := 0
	c.structural(func() Event {
		n = c.fill(p, ci)
		return pixels(n)
	})
	return n
}

func (c *Canvas) fill(p grid.Point, ci grid.Cell) int {
	var clip grid.Rect
	if c.cfg.FillRespectsSelection && c.sel.State() == selection.Selected {
		clip = c.sel.Rect()
		if !clip.Contains(p) {
			return 0
		}
	}
	return c.grid.FloodFill(p, ci, clip)
}

// EraseRegion uncolors every pixel in r
func (c *Canvas) EraseRegion(r grid.Rect) int {
	return c.apply(func(g *grid.Grid) int { return g.EraseRegion(r) })
}

// Clear uncolors every pixel
func (c *Canvas) Clear() int {
	return c.apply(func(g *grid.Grid) int { return g.Clear() })
}

// Flip mirrors the whole grid
func (c *Canvas) Flip(axis grid.Axis) int {
	return c.apply(func(g *grid.Grid) int { return g.Flip(g.Bounds(), axis) })
}

// Shift moves every pixel by d, wrapping around the edges
func (c *Canvas) Shift(d grid.Point) int {
	return c.apply(func(g *grid.Grid) int { return g.Shift(d) })
}

// Rotate turns the whole grid by a quarter turn, swapping its dimensions.
// Any selection is dropped.
func (c *Canvas) Rotate(dir grid.Direction) {
	c.mu.Lock()
	defer c.unlock()

	c.structural(func() Event {
		c.grid.Rotate90(dir)
		e := PixelsChanged
		if c.grid.Width() != c.grid.Height() {
			e |= DimensionsChanged
		}
		if c.sel.Active() {
			c.sel.Reset()
			e |= SelectionChanged
		}
		return e
	})
}

// Resize changes the dimensions of the grid, keeping the overlapping pixels.
// The width is corrected for the display mode.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.unlock()

	if c.mode.Valid() {
		width = c.mode.CorrectWidth(width)
	}
	c.structural(func() Event {
		if !c.grid.Resize(width, height) {
			return 0
		}
		c.reclampSelection()
		return PixelsChanged | DimensionsChanged
	})
}

// Load replaces the pixels with a copy of g as a single undoable change.
// Color indices are clamped to the display mode.
func (c *Canvas) Load(g *grid.Grid) {
	c.mu.Lock()
	defer c.unlock()

	c.structural(func() Event {
		if g.Equal(c.grid) {
			return 0
		}
		w, h := c.grid.Width(), c.grid.Height()
		c.grid.Load(g)
		c.sel.Reset()
		e := PixelsChanged | SelectionChanged
		if w != c.grid.Width() || h != c.grid.Height() {
			e |= DimensionsChanged
		}
		return e
	})
}

func (c *Canvas) reclampSelection() {
	if c.sel.State() == selection.Selected {
		c.sel.Set(c.grid, c.sel.Rect())
		c.emit(SelectionChanged)
	}
}

func pixels(n int) Event {
	if n > 0 {
		return PixelsChanged
	}
	return 0
}

// apply runs a drawing primitive as a single undoable change
func (c *Canvas) apply(fn func(*grid.Grid) int) int {
	c.mu.Lock()
	defer c.unlock()

	n := 0
	c.structural(func() Event {
		n = fn(c.grid)
		return pixels(n)
	})
	return n
}

// BeginStroke starts dragging a tool from p. The eraser ignores ci. Fill
// completes straight away and leaves any selection in place; every other
// tool drops the selection.
func (c *Canvas) BeginStroke(t selection.Tool, p grid.Point, ci grid.Cell) {
	c.mu.Lock()
	defer c.unlock()

	c.settle()
	c.checkpoint()

	if t == selection.Fill {
		if n := c.fill(p, ci); n > 0 {
			c.emit(PixelsChanged)
			c.checkpoint()
		}
		return
	}

	if t == selection.Eraser {
		ci = grid.Empty
	}

	if c.sel.Active() {
		c.emit(SelectionChanged)
	}
	c.sel.BeginStroke(t, p)
	c.stroke = stroke{
		color:  ci,
		backup: c.grid.Clone(),
	}
	c.paint(p, p)
}

// StrokeTo drags the tool to p. Freehand tools draw a line from the previous
// point, shape tools are redrawn from the starting point.
func (c *Canvas) StrokeTo(p grid.Point) {
	c.mu.Lock()
	defer c.unlock()

	if c.sel.State() != selection.Drawing {
		return
	}
	prev := c.sel.StrokeTo(p)
	c.paint(prev, p)
}

func (c *Canvas) paint(prev, p grid.Point) {
	t := c.sel.Tool()
	start, _ := c.sel.Stroke()
	r := grid.RectFromPoints(start, p)
	ci := c.stroke.color

	n := 0
	switch t {
	case selection.Pencil, selection.Eraser:
		n = c.grid.Line(prev, p, ci)
	case selection.Select:
		c.emit(SelectionChanged)
		return
	default:
		// Shapes are previewed by restoring the grid from before the
		// stroke and drawing them again
		n = c.grid.Blit(c.stroke.backup, grid.Point{})
		switch t {
		case selection.Line:
			n += c.grid.Line(start, p, ci)
		case selection.Rect:
			n += c.grid.Rect(r, ci, false)
		case selection.FilledRect:
			n += c.grid.Rect(r, ci, true)
		case selection.Ellipse:
			n += c.grid.Ellipse(r, ci, false)
		case selection.FilledEllipse:
			n += c.grid.Ellipse(r, ci, true)
		}
	}
	if n > 0 {
		c.emit(PixelsChanged)
	}
}

// EndStroke finishes dragging the tool and checkpoints the result. A select
// stroke leaves the dragged rectangle selected.
func (c *Canvas) EndStroke() {
	c.mu.Lock()
	defer c.unlock()

	if c.sel.State() != selection.Drawing {
		return
	}
	c.endStroke()
	c.checkpoint()
}

func (c *Canvas) endStroke() {
	if c.sel.Tool() == selection.Select {
		c.emit(SelectionChanged)
	}
	c.sel.EndStroke(c.grid)
	c.stroke = stroke{}
}

// CancelStroke abandons the stroke, restoring the grid to how it was when
// the stroke began
func (c *Canvas) CancelStroke() {
	c.mu.Lock()
	defer c.unlock()

	if c.sel.State() != selection.Drawing {
		return
	}
	if c.grid.Blit(c.stroke.backup, grid.Point{}) > 0 {
		c.emit(PixelsChanged)
	}
	c.sel.Reset()
	c.stroke = stroke{}
	c.emit(SelectionChanged)
}

// Stroke returns the tool being dragged and its start and current points.
// ok is false when no stroke is in progress.
func (c *Canvas) Stroke() (t selection.Tool, start, current grid.Point, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sel.State() != selection.Drawing {
		return 0, grid.Point{}, grid.Point{}, false
	}
	start, current = c.sel.Stroke()
	return c.sel.Tool(), start, current, true
}
