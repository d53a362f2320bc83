/*
Package undo implements a bounded stack of grid checkpoints with a movable
cursor.

Consecutive checkpoints are never content-identical; a push is compared with
the checkpoint at the cursor using the structural digest of the grid, which
covers both dimensions and cells, together with its tag. The tag names
whatever else decides how the cells are interpreted, such as the display
mode.
*/
package undo

import (
	"github.com/bodgit/sprite7800/grid"
)

// DefaultLimit is the number of checkpoints kept when no limit is given
const DefaultLimit = 250

type checkpoint struct {
	grid *grid.Grid
	sum  uint64
	tag  string
}

// Store is the undo history of one grid
type Store struct {
	limit  int
	stack  []checkpoint
	cursor int
}

// New returns an empty store holding at most limit checkpoints. A limit
// below one uses DefaultLimit.
func New(limit int) *Store {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Store{
		limit:  limit,
		cursor: -1,
	}
}

// Limit returns the maximum number of checkpoints kept
func (s *Store) Limit() int { return s.limit }

// Len returns the number of checkpoints
func (s *Store) Len() int { return len(s.stack) }

// Cursor returns the index of the current checkpoint, or -1 when empty
func (s *Store) Cursor() int { return s.cursor }

// CanUndo reports whether Undo would restore anything
func (s *Store) CanUndo() bool { return s.cursor > 0 }

// CanRedo reports whether Redo would restore anything
func (s *Store) CanRedo() bool { return s.cursor >= 0 && s.cursor < len(s.stack)-1 }

// Push records a clone of g and its tag. It is a no-op when both match the
// checkpoint at the cursor. Any checkpoints above the cursor are discarded first, and the
// oldest checkpoints are evicted once the limit is exceeded. It reports
// whether a checkpoint was added.
func (s *Store) Push(g *grid.Grid, tag string) bool {
	sum := g.Sum64()
	if s.cursor >= 0 && s.stack[s.cursor].sum == sum && s.stack[s.cursor].tag == tag {
		return false
	}

	s.stack = append(s.stack[:s.cursor+1], checkpoint{
		grid: g.Clone(),
		sum:  sum,
		tag:  tag,
	})

	if n := len(s.stack) - s.limit; n > 0 {
		// Drop references so evicted grids can be collected
		for i := 0; i < n; i++ {
			s.stack[i] = checkpoint{}
		}
		s.stack = append(s.stack[:0], s.stack[n:]...)
	}
	s.cursor = len(s.stack) - 1

	return true
}

// Undo moves the cursor back one checkpoint and restores it into g exactly,
// color limit included. It reports whether g was restored.
func (s *Store) Undo(g *grid.Grid) bool {
	if !s.CanUndo() {
		return false
	}
	s.cursor--
	g.Restore(s.stack[s.cursor].grid)
	return true
}

// Redo moves the cursor forward one checkpoint and restores it into g
// exactly. It reports whether g was restored.
func (s *Store) Redo(g *grid.Grid) bool {
	if !s.CanRedo() {
		return false
	}
	s.cursor++
	g.Restore(s.stack[s.cursor].grid)
	return true
}

// Current returns a clone of the checkpoint at the cursor, or nil when the
// store is empty
func (s *Store) Current() *grid.Grid {
	if s.cursor < 0 {
		return nil
	}
	return s.stack[s.cursor].grid.Clone()
}

// Tag returns the tag of the checkpoint at the cursor
func (s *Store) Tag() string {
	if s.cursor < 0 {
		return ""
	}
	return s.stack[s.cursor].tag
}

// SetLimit changes the maximum number of checkpoints, evicting the oldest
// if needed
func (s *Store) SetLimit(limit int) {
	if limit < 1 {
		limit = DefaultLimit
	}
	s.limit = limit
	if n := len(s.stack) - limit; n > 0 {
		s.stack = append([]checkpoint(nil), s.stack[n:]...)
		s.cursor = max(s.cursor-n, 0)
	}
}

// Reset discards every checkpoint
func (s *Store) Reset() {
	s.stack = nil
	s.cursor = -1
}
