/*
Package canvas implements an editable object: a pixel grid together with its
display mode, palette reference, undo history and selection.

Every operation on a canvas goes through a single lock and runs to
completion before returning. Changes are reported to listeners once the
operation has finished and the lock has been released.

User drawing is checkpointed in gestures: the first draw records the state
before it immediately and further draws are coalesced into one checkpoint
once drawing has been idle for the debounce delay. Every other change
records a checkpoint immediately.
*/
package canvas

import (
	"sync"
	"time"

	"github.com/bodgit/sprite7800/grid"
	"github.com/bodgit/sprite7800/mode"
	"github.com/bodgit/sprite7800/palette"
	"github.com/bodgit/sprite7800/selection"
	"github.com/bodgit/sprite7800/undo"
)

// Behavior says who initiated a draw
type Behavior int

const (
	// User draws are coalesced into debounced checkpoints
	User Behavior = iota
	// Programmatic draws never checkpoint on their own
	Programmatic
)

// Config holds the tunable behavior of a canvas
type Config struct {
	// UndoLimit is the number of checkpoints kept
	UndoLimit int
	// DebounceDelay is the idle period before user drawing is checkpointed
	DebounceDelay time.Duration
	// FillRespectsSelection stops a flood fill at the edge of an active
	// selection
	FillRespectsSelection bool
	// PixelSize is the initial on-screen size of a pixel
	PixelSize mode.PixelSize
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		UndoLimit:             undo.DefaultLimit,
		DebounceDelay:         undo.DefaultDelay,
		FillRespectsSelection: true,
		PixelSize:             mode.PixelSize{Width: 8, Height: 8},
	}
}

// Canvas is an editable object
type Canvas struct {
	mu sync.Mutex

	cfg      Config
	name     string
	grid     *grid.Grid
	mode     mode.Mode
	bank     *palette.Bank
	ref      int
	kangaroo bool
	pixel    mode.PixelSize

	history  *undo.Store
	debounce *undo.Debouncer

	sel    *selection.Selection
	stroke stroke

	listeners listeners
	pending   Event
	unsub     func()
	closed    bool
}

// New returns an empty canvas. The width is corrected to one the mode can
// display.
func New(name string, width, height int, m mode.Mode, bank *palette.Bank, cfg Config) *Canvas {
	if m.Valid() {
		width = m.CorrectWidth(width)
	}
	return newCanvas(name, grid.New(width, height, m.NumColors()), m, bank, cfg, m.PixelDimensions(cfg.PixelSize))
}

func newCanvas(name string, g *grid.Grid, m mode.Mode, bank *palette.Bank, cfg Config, pixel mode.PixelSize) *Canvas {
	if bank == nil {
		bank = palette.NewBank()
	}
	c := &Canvas{
		cfg:   cfg,
		name:  name,
		grid:  g,
		mode:  m,
		bank:  bank,
		pixel: pixel,
		sel:   selection.New(),
	}
	c.debounce = undo.NewDebouncer(cfg.DebounceDelay, c.fire)
	c.unsub = bank.Subscribe(func(palette.Change) {
		c.mu.Lock()
		defer c.unlock()
		c.emit(PaletteChanged)
	})
	return c
}

// unlock releases the lock and then tells every listener what changed
func (c *Canvas) unlock() {
	e := c.pending
	c.pending = 0
	var fns []Listener
	if e != 0 && !c.closed {
		fns = c.listeners.ordered()
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(c, e)
	}
}

func (c *Canvas) emit(e Event) {
	c.pending |= e
}

// Subscribe registers fn to be told about changes. The returned function
// removes it.
func (c *Canvas) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.listeners.add(fn)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.listeners.fns, id)
		})
	}
}

// Close stops any pending checkpoint and detaches the canvas from its
// palette bank
func (c *Canvas) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.debounce.Stop()
	c.unsub()
}

// Name returns the name of the object
func (c *Canvas) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// SetName renames the object
func (c *Canvas) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// Mode returns the display mode
func (c *Canvas) Mode() mode.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Bank returns the shared palette bank
func (c *Canvas) Bank() *palette.Bank {
	return c.bank
}

// PaletteRef returns the palette the object references
func (c *Canvas) PaletteRef() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ref
}

// Kangaroo reports whether kangaroo mode is enabled
func (c *Canvas) Kangaroo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kangaroo
}

// Width returns the width of the grid
func (c *Canvas) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.Width()
}

// Height returns the height of the grid
func (c *Canvas) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.Height()
}

// PixelSize returns the on-screen size of one pixel
func (c *Canvas) PixelSize() mode.PixelSize {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pixel
}

// At returns the color index at p
func (c *Canvas) At(p grid.Point) grid.Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.At(p)
}

// Grid returns a copy of the pixel grid
func (c *Canvas) Grid() *grid.Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.Clone()
}

// Colors resolves every color index of the object. It panics if the
// canvas was created without a display mode.
func (c *Canvas) Colors() []mode.ColorValue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode.Colors(c.bank, c.ref, c.kangaroo)
}

// ColorAt resolves the color of the pixel at p
func (c *Canvas) ColorAt(p grid.Point) mode.ColorValue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode.ColorAt(c.bank, c.ref, c.kangaroo, int(c.grid.At(p)))
}

// SetMode switches display mode. Every pixel is clamped to the colors of the
// new mode, the width is corrected and the pixel size re-derived.
func (c *Canvas) SetMode(m mode.Mode) {
	c.mu.Lock()
	defer c.unlock()

	if m == c.mode {
		return
	}

	c.structural(func() Event {
		e := ModeChanged
		c.mode = m
		if c.grid.SetLimit(m.NumColors()) > 0 {
			e |= PixelsChanged
		}
		if m.Valid() {
			if w := m.CorrectWidth(c.grid.Width()); c.grid.Resize(w, c.grid.Height()) {
				e |= DimensionsChanged | PixelsChanged
				c.reclampSelection()
			}
		}
		if c.derivePixelSize() {
			e |= DimensionsChanged
		}
		return e
	})
}

// derivePixelSize re-derives the pixel size for the current mode from the
// pixel height
func (c *Canvas) derivePixelSize() bool {
	u := c.pixel.Height
	p := c.mode.PixelDimensions(mode.PixelSize{Width: u, Height: u})
	if p == c.pixel {
		return false
	}
	c.pixel = p
	return true
}

// SetPixelSize changes the on-screen size of a pixel. Modes with a fixed
// aspect only take the height into account.
func (c *Canvas) SetPixelSize(p mode.PixelSize) {
	c.mu.Lock()
	defer c.unlock()

	p.Width, p.Height = max(p.Width, 1), max(p.Height, 1)
	if p = c.mode.PixelDimensions(p); p != c.pixel {
		c.pixel = p
		c.emit(DimensionsChanged)
	}
}

// SetPaletteRef changes the palette the object references
func (c *Canvas) SetPaletteRef(ref int) {
	c.mu.Lock()
	defer c.unlock()

	ref &= palette.MaxPalettes - 1
	if ref != c.ref {
		c.ref = ref
		c.emit(PaletteChanged)
	}
}

// SetKangaroo toggles kangaroo mode
func (c *Canvas) SetKangaroo(on bool) {
	c.mu.Lock()
	defer c.unlock()

	if on != c.kangaroo {
		c.kangaroo = on
		c.emit(PaletteChanged)
	}
}

func (c *Canvas) store() *undo.Store {
	if c.history == nil {
		c.history = undo.New(c.cfg.UndoLimit)
	}
	return c.history
}

// checkpoint records the current grid and display mode in the history
func (c *Canvas) checkpoint() {
	if c.store().Push(c.grid, c.mode.Name()) {
		c.emit(HistoryChanged)
	}
}

// fire is called by the debouncer once user drawing has gone idle
func (c *Canvas) fire(token uint64) {
	c.mu.Lock()
	defer c.unlock()

	if c.closed || !c.debounce.Claim(token) {
		return
	}
	c.checkpoint()
}

// flush records any debounced checkpoint straight away
func (c *Canvas) flush() {
	if c.debounce.Stop() {
		c.checkpoint()
	}
}

// settle finishes anything in progress: pending checkpoints, strokes and
// moves
func (c *Canvas) settle() {
	c.flush()
	switch c.sel.State() {
	case selection.Drawing:
		c.endStroke()
	case selection.Moving:
		if c.sel.Commit(c.grid) > 0 {
			c.emit(PixelsChanged)
		}
		c.emit(SelectionChanged)
	}
}

// structural runs fn as a single undoable change, checkpointing the state
// before and after it
func (c *Canvas) structural(fn func() Event) {
	c.settle()
	c.checkpoint()
	if e := fn(); e != 0 {
		c.emit(e)
		c.checkpoint()
	}
}

// Checkpoint records the current state in the history
func (c *Canvas) Checkpoint() {
	c.mu.Lock()
	defer c.unlock()
	c.settle()
	c.checkpoint()
}

func (c *Canvas) restore(fn func(*undo.Store, *grid.Grid) bool) bool {
	if c.history == nil {
		return false
	}
	c.settle()
	c.checkpoint()

	w, h := c.grid.Width(), c.grid.Height()
	if !fn(c.history, c.grid) {
		return false
	}

	e := PixelsChanged | HistoryChanged
	if m, _ := mode.ByName(c.history.Tag()); m != c.mode {
		c.mode = m
		e |= ModeChanged
		if c.derivePixelSize() {
			e |= DimensionsChanged
		}
	}
	if w != c.grid.Width() || h != c.grid.Height() {
		e |= DimensionsChanged
	}
	if c.sel.Active() {
		c.sel.Reset()
		e |= SelectionChanged
	}
	c.emit(e)
	return true
}

// Undo restores the previous checkpoint. It reports whether anything was
// restored.
func (c *Canvas) Undo() bool {
	c.mu.Lock()
	defer c.unlock()
	return c.restore((*undo.Store).Undo)
}

// Redo restores the checkpoint most recently undone. It reports whether
// anything was restored.
func (c *Canvas) Redo() bool {
	c.mu.Lock()
	defer c.unlock()
	return c.restore((*undo.Store).Redo)
}

// CanUndo reports whether Undo would restore anything
func (c *Canvas) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.history == nil {
		return false
	}
	return c.history.CanUndo() || (c.debounce.Pending() && c.history.Len() > 0)
}

// CanRedo reports whether Redo would restore anything
func (c *Canvas) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history != nil && !c.debounce.Pending() && c.history.CanRedo()
}

// History returns the number of checkpoints and the position of the cursor
func (c *Canvas) History() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.history == nil {
		return 0, -1
	}
	return c.history.Len(), c.history.Cursor()
}
