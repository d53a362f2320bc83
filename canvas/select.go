package canvas

import (
	"github.com/bodgit/sprite7800/grid"
	"github.com/bodgit/sprite7800/selection"
)

// Selection describes the selection of a canvas
type Selection struct {
	State selection.State
	// Rect is the selected rectangle, at the current offset while moving
	Rect grid.Rect
	// Buffer is a copy of the floating pixels while moving
	Buffer *grid.Grid
}

// Selection returns the current selection
func (c *Canvas) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Selection{
		State: c.sel.State(),
		Rect:  c.sel.Rect(),
	}
	if b := c.sel.Buffer(); b != nil {
		s.Buffer = b.Clone()
	}
	return s
}

// Select selects r, clamped to the grid. Selecting never changes pixels.
func (c *Canvas) Select(r grid.Rect) {
	c.mu.Lock()
	defer c.unlock()

	c.settle()
	c.sel.Set(c.grid, r)
	c.emit(SelectionChanged)
}

// SelectAll selects the whole grid
func (c *Canvas) SelectAll() {
	c.mu.Lock()
	defer c.unlock()

	c.settle()
	c.sel.Set(c.grid, c.grid.Bounds())
	c.emit(SelectionChanged)
}

// Deselect drops the selection. A move in progress is committed first.
func (c *Canvas) Deselect() {
	c.mu.Lock()
	defer c.unlock()

	moving := c.sel.State() == selection.Moving
	c.settle()
	if moving {
		c.checkpoint()
	}
	if c.sel.State() != selection.Idle {
		c.sel.Deselect(c.grid)
		c.emit(SelectionChanged)
	}
}

// SelectionData returns a copy of the selected pixels, or nil
func (c *Canvas) SelectionData() *grid.Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.PixelData(c.grid)
}

// BeginMove lifts the selected pixels off the grid so they can be dragged
func (c *Canvas) BeginMove() {
	c.mu.Lock()
	defer c.unlock()

	if c.sel.State() != selection.Selected {
		return
	}
	c.flush()
	c.checkpoint()
	if c.sel.BeginMove(c.grid) > 0 {
		c.emit(PixelsChanged)
	}
	c.emit(SelectionChanged)
}

// MoveTo sets the offset of the lifted pixels from where they started
func (c *Canvas) MoveTo(offset grid.Point) {
	c.mu.Lock()
	defer c.unlock()

	if c.sel.State() == selection.Moving && c.sel.Offset() != offset {
		c.sel.MoveTo(offset)
		c.emit(SelectionChanged)
	}
}

// MoveBy adds d to the offset of the lifted pixels
func (c *Canvas) MoveBy(d grid.Point) {
	c.mu.Lock()
	defer c.unlock()

	if c.sel.State() == selection.Moving && d != (grid.Point{}) {
		c.sel.MoveBy(d)
		c.emit(SelectionChanged)
	}
}

// CommitMove drops the lifted pixels at their current offset
func (c *Canvas) CommitMove() int {
	c.mu.Lock()
	defer c.unlock()

	if c.sel.State() != selection.Moving {
		return 0
	}
	n := c.sel.Commit(c.grid)
	c.emit(pixels(n) | SelectionChanged)
	c.checkpoint()
	return n
}

// CancelMove puts lifted pixels back where they came from, or discards
// pasted ones
func (c *Canvas) CancelMove() {
	c.mu.Lock()
	defer c.unlock()

	if c.sel.State() != selection.Moving {
		return
	}
	c.emit(pixels(c.sel.Cancel(c.grid)) | SelectionChanged)
	c.checkpoint()
}

// FlipSelection mirrors the selected pixels, or the lifted pixels while
// moving
func (c *Canvas) FlipSelection(axis grid.Axis) int {
	c.mu.Lock()
	defer c.unlock()

	switch c.sel.State() {
	case selection.Moving:
		c.sel.Flip(c.grid, axis)
		c.emit(SelectionChanged)
		return 0
	case selection.Selected:
		n := 0
		c.structural(func() Event {
			n = c.sel.Flip(c.grid, axis)
			return pixels(n)
		})
		return n
	}
	return 0
}

// EraseSelection uncolors the selected pixels, or discards the lifted pixels
// while moving
func (c *Canvas) EraseSelection() int {
	c.mu.Lock()
	defer c.unlock()

	switch c.sel.State() {
	case selection.Moving:
		c.sel.Erase(c.grid)
		c.emit(SelectionChanged)
		c.checkpoint()
	case selection.Selected:
		n := 0
		c.structural(func() Event {
			n = c.sel.Erase(c.grid)
			return pixels(n)
		})
		return n
	}
	return 0
}

// CropToSelection reduces the grid to the selected rectangle
func (c *Canvas) CropToSelection() bool {
	c.mu.Lock()
	defer c.unlock()

	if !c.sel.Active() {
		return false
	}
	changed := false
	c.structural(func() Event {
		if changed = c.sel.Crop(c.grid); !changed {
			return 0
		}
		return PixelsChanged | DimensionsChanged | SelectionChanged
	})
	return changed
}

// Copy returns a copy of the selected pixels for a clipboard
func (c *Canvas) Copy() *grid.Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Copy(c.grid)
}

// Cut returns a copy of the selected pixels and uncolors them
func (c *Canvas) Cut() *grid.Grid {
	c.mu.Lock()
	defer c.unlock()

	if c.sel.State() != selection.Selected {
		buf := c.sel.Copy(c.grid)
		if buf != nil {
			c.sel.Erase(c.grid)
			c.emit(SelectionChanged)
			c.checkpoint()
		}
		return buf
	}

	var buf *grid.Grid
	c.structural(func() Event {
		var n int
		buf, n = c.sel.Cut(c.grid)
		return pixels(n)
	})
	return buf
}

// Paste floats a copy of buf over the grid at p. The pixels are only written
// once the move is committed.
func (c *Canvas) Paste(buf *grid.Grid, p grid.Point) {
	c.mu.Lock()
	defer c.unlock()

	if buf == nil {
		return
	}
	c.settle()
	c.checkpoint()
	c.sel.Paste(c.grid, buf, p)
	c.emit(SelectionChanged)
}
