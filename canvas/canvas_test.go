package canvas

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bodgit/sprite7800/grid"
	"github.com/bodgit/sprite7800/mode"
	"github.com/bodgit/sprite7800/palette"
	"github.com/bodgit/sprite7800/selection"
	"github.com/bodgit/sprite7800/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig never fires the debouncer on its own
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DebounceDelay = time.Hour
	return cfg
}

func newCanvas4x4(t *testing.T, cfg Config) *Canvas {
	c := New("test", 4, 4, mode.M160A, nil, cfg)
	t.Cleanup(c.Close)
	return c
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(_ *Canvas, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) take() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.events
	r.events = nil
	return e
}

func TestNew(t *testing.T) {
	c := New("ship", 5, 3, mode.M160A, nil, testConfig())
	defer c.Close()

	assert.Equal(t, "ship", c.Name())
	assert.Equal(t, 8, c.Width())
	assert.Equal(t, 3, c.Height())
	assert.Equal(t, mode.PixelSize{Width: 16, Height: 8}, c.PixelSize())
	assert.Equal(t, grid.Empty, c.At(grid.Pt(0, 0)))

	n, cursor := c.History()
	assert.Equal(t, 0, n)
	assert.Equal(t, -1, cursor)
	assert.False(t, c.CanUndo())
}

func TestDraw(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	assert.True(t, c.Draw(grid.Pt(1, 1), 3, Programmatic))
	assert.False(t, c.Draw(grid.Pt(1, 1), 3, Programmatic))
	assert.False(t, c.Draw(grid.Pt(9, 9), 3, Programmatic))
	assert.Equal(t, grid.Cell(3), c.At(grid.Pt(1, 1)))

	// Indices beyond the mode are clamped
	assert.True(t, c.Draw(grid.Pt(0, 0), 12, Programmatic))
	assert.Equal(t, grid.Cell(3), c.At(grid.Pt(0, 0)))

	// Programmatic draws never checkpoint
	n, _ := c.History()
	assert.Equal(t, 0, n)
}

func TestSetModeClamps(t *testing.T) {
	c := New("test", 4, 1, mode.M160A, nil, testConfig())
	defer c.Close()

	c.Draw(grid.Pt(0, 0), 3, Programmatic)
	c.Draw(grid.Pt(1, 0), 2, Programmatic)
	c.Draw(grid.Pt(2, 0), 0, Programmatic)

	c.SetMode(mode.M320A)
	assert.Equal(t, mode.M320A, c.Mode())
	assert.Equal(t, grid.Cell(1), c.At(grid.Pt(0, 0)))
	assert.Equal(t, grid.Cell(1), c.At(grid.Pt(1, 0)))
	assert.Equal(t, grid.Cell(0), c.At(grid.Pt(2, 0)))
	assert.Equal(t, grid.Empty, c.At(grid.Pt(3, 0)))
	assert.Equal(t, 8, c.Width())
	assert.Equal(t, mode.PixelSize{Width: 8, Height: 8}, c.PixelSize())

	// Undo restores the mode along with the width and cells
	require.True(t, c.Undo())
	assert.Equal(t, mode.M160A, c.Mode())
	assert.Equal(t, 4, c.Width())
	assert.Equal(t, grid.Cell(3), c.At(grid.Pt(0, 0)))
	assert.Equal(t, grid.Cell(2), c.At(grid.Pt(1, 0)))
	assert.Equal(t, mode.PixelSize{Width: 16, Height: 8}, c.PixelSize())

	require.True(t, c.Redo())
	assert.Equal(t, mode.M320A, c.Mode())
	assert.Equal(t, 8, c.Width())
	assert.Equal(t, grid.Cell(1), c.At(grid.Pt(0, 0)))
	assert.Equal(t, mode.PixelSize{Width: 8, Height: 8}, c.PixelSize())

	c.SetMode(mode.M160B)
	assert.Equal(t, mode.PixelSize{Width: 16, Height: 8}, c.PixelSize())
}

func TestUndoAcrossLossyModeChange(t *testing.T) {
	c := New("test", 4, 1, mode.M320B, nil, testConfig())
	defer c.Close()

	c.Draw(grid.Pt(0, 0), 2, User)
	c.Draw(grid.Pt(1, 0), 3, User)
	c.SetMode(mode.M320A)
	require.Equal(t, grid.Cell(1), c.At(grid.Pt(0, 0)))

	r := &recorder{}
	defer c.Subscribe(r.listen)()

	require.True(t, c.Undo())
	assert.Equal(t, mode.M320B, c.Mode())
	assert.Equal(t, grid.Cell(2), c.At(grid.Pt(0, 0)))
	assert.Equal(t, grid.Cell(3), c.At(grid.Pt(1, 0)))
	assert.True(t, r.take()[0].Has(ModeChanged))

	require.True(t, c.Undo())
	assert.Equal(t, grid.Empty, c.At(grid.Pt(0, 0)))
	assert.Equal(t, grid.Empty, c.At(grid.Pt(1, 0)))
	assert.False(t, c.Undo())

	n, cursor := c.History()
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, cursor)

	require.True(t, c.Redo())
	require.True(t, c.Redo())
	assert.Equal(t, mode.M320A, c.Mode())
	assert.Equal(t, 8, c.Width())
	assert.Equal(t, grid.Cell(1), c.At(grid.Pt(1, 0)))
	assert.False(t, c.Redo())
}

func TestDebouncedCheckpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DebounceDelay = 10 * time.Millisecond
	c := newCanvas4x4(t, cfg)

	c.Draw(grid.Pt(0, 0), 1, User)
	c.Draw(grid.Pt(1, 0), 1, User)
	c.Draw(grid.Pt(2, 0), 1, User)

	assert.Eventually(t, func() bool {
		n, cursor := c.History()
		return n == 2 && cursor == 1
	}, time.Second, 5*time.Millisecond)

	require.True(t, c.Undo())
	assert.Equal(t, 16, c.Grid().Count(grid.Empty))
	require.True(t, c.Redo())
	assert.Equal(t, 3, c.Grid().Count(1))
}

func TestUndoFlushesPendingCheckpoint(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.Draw(grid.Pt(0, 0), 1, User)
	c.Draw(grid.Pt(1, 0), 1, User)
	assert.True(t, c.CanUndo())
	assert.False(t, c.CanRedo())

	require.True(t, c.Undo())
	assert.Equal(t, 16, c.Grid().Count(grid.Empty))
	assert.True(t, c.CanRedo())

	require.True(t, c.Redo())
	assert.Equal(t, 2, c.Grid().Count(1))

	n, cursor := c.History()
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, cursor)
}

func TestStructuralCheckpoint(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	assert.Equal(t, 4, c.Line(grid.Pt(0, 0), grid.Pt(3, 3), 2))
	n, cursor := c.History()
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, cursor)

	// A change that does nothing records nothing
	assert.Equal(t, 0, c.Line(grid.Pt(0, 0), grid.Pt(3, 3), 2))
	n, _ = c.History()
	assert.Equal(t, 2, n)

	require.True(t, c.Undo())
	assert.Equal(t, grid.Empty, c.At(grid.Pt(1, 1)))
	assert.False(t, c.Undo())

	c.Rect(grid.Rect{Width: 4, Height: 4}, 1, true)
	assert.False(t, c.CanRedo())
	assert.Equal(t, 16, c.Grid().Count(1))
}

func TestEvents(t *testing.T) {
	bank := palette.NewBank()
	c := New("test", 4, 4, mode.M160A, bank, testConfig())
	defer c.Close()

	r := new(recorder)
	unsubscribe := c.Subscribe(r.listen)

	c.Draw(grid.Pt(0, 0), 1, Programmatic)
	assert.Equal(t, []Event{PixelsChanged}, r.take())

	c.Draw(grid.Pt(0, 0), 1, Programmatic)
	assert.Empty(t, r.take())

	c.SetMode(mode.M320A)
	events := r.take()
	require.Len(t, events, 1)
	assert.True(t, events[0].Has(ModeChanged|DimensionsChanged|HistoryChanged))

	bank.Palette(2).SetColor(1, 0x42)
	assert.Equal(t, []Event{PaletteChanged}, r.take())

	c.SetPaletteRef(2)
	assert.Equal(t, []Event{PaletteChanged}, r.take())

	c.Select(grid.Rect{Width: 2, Height: 2})
	assert.Equal(t, []Event{SelectionChanged}, r.take())

	unsubscribe()
	c.Draw(grid.Pt(1, 1), 1, Programmatic)
	assert.Empty(t, r.take())
}

func TestListenerMayCallBack(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	var seen grid.Cell
	c.Subscribe(func(c *Canvas, e Event) {
		if e.Has(PixelsChanged) {
			seen = c.At(grid.Pt(2, 2))
		}
	})
	c.Draw(grid.Pt(2, 2), 2, Programmatic)
	assert.Equal(t, grid.Cell(2), seen)
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "none", Event(0).String())
	assert.Equal(t, "pixels|mode", (PixelsChanged | ModeChanged).String())
}

func TestFillRespectsSelection(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.Select(grid.Rect{Width: 2, Height: 2})
	assert.Equal(t, 4, c.Fill(grid.Pt(0, 0), 1))
	assert.Equal(t, 0, c.Fill(grid.Pt(3, 3), 2))
	assert.Equal(t, selection.Selected, c.Selection().State)

	cfg := testConfig()
	cfg.FillRespectsSelection = false
	c = newCanvas4x4(t, cfg)
	c.Select(grid.Rect{Width: 2, Height: 2})
	assert.Equal(t, 16, c.Fill(grid.Pt(0, 0), 1))
}

func TestShapeStroke(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.BeginStroke(selection.Rect, grid.Pt(0, 0), 1)
	c.StrokeTo(grid.Pt(3, 3))
	assert.Equal(t, 12, c.Grid().Count(1))

	// The preview is redrawn from the grid as it was when the stroke began
	c.StrokeTo(grid.Pt(1, 1))
	assert.Equal(t, 4, c.Grid().Count(1))

	tool, start, current, ok := c.Stroke()
	require.True(t, ok)
	assert.Equal(t, selection.Rect, tool)
	assert.Equal(t, grid.Pt(0, 0), start)
	assert.Equal(t, grid.Pt(1, 1), current)

	c.EndStroke()
	_, _, _, ok = c.Stroke()
	assert.False(t, ok)

	n, cursor := c.History()
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, cursor)
}

func TestPencilAndCancel(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.BeginStroke(selection.Pencil, grid.Pt(0, 0), 2)
	c.StrokeTo(grid.Pt(3, 0))
	assert.Equal(t, 4, c.Grid().Count(2))

	c.CancelStroke()
	assert.Equal(t, 16, c.Grid().Count(grid.Empty))
	assert.Equal(t, selection.Idle, c.Selection().State)

	c.Fill(grid.Pt(0, 0), 2)
	c.BeginStroke(selection.Eraser, grid.Pt(0, 0), 2)
	c.StrokeTo(grid.Pt(0, 3))
	c.EndStroke()
	assert.Equal(t, 4, c.Grid().Count(grid.Empty))
}

func TestSelectStroke(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.BeginStroke(selection.Select, grid.Pt(3, 3), 0)
	c.StrokeTo(grid.Pt(1, 2))
	c.EndStroke()

	s := c.Selection()
	assert.Equal(t, selection.Selected, s.State)
	assert.Equal(t, grid.Rect{X: 1, Y: 2, Width: 3, Height: 2}, s.Rect)
	assert.Equal(t, 16, c.Grid().Count(grid.Empty))
}

func TestMoveSelection(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.Draw(grid.Pt(0, 0), 1, Programmatic)
	c.Select(grid.Rect{Width: 1, Height: 1})
	c.BeginMove()
	assert.Equal(t, grid.Empty, c.At(grid.Pt(0, 0)))
	assert.Equal(t, selection.Moving, c.Selection().State)

	c.MoveTo(grid.Pt(2, 2))
	s := c.Selection()
	assert.Equal(t, grid.Rect{X: 2, Y: 2, Width: 1, Height: 1}, s.Rect)
	require.NotNil(t, s.Buffer)
	assert.Equal(t, grid.Cell(1), s.Buffer.At(grid.Pt(0, 0)))

	assert.Equal(t, 1, c.CommitMove())
	assert.Equal(t, grid.Cell(1), c.At(grid.Pt(2, 2)))
	assert.Equal(t, selection.Selected, c.Selection().State)

	require.True(t, c.Undo())
	assert.Equal(t, grid.Cell(1), c.At(grid.Pt(0, 0)))
	assert.Equal(t, grid.Empty, c.At(grid.Pt(2, 2)))
	assert.Equal(t, selection.Idle, c.Selection().State)
}

func TestCancelMove(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.Rect(grid.Rect{Width: 2, Height: 2}, 3, true)
	before := c.Grid()

	c.Select(grid.Rect{Width: 2, Height: 2})
	c.BeginMove()
	c.MoveBy(grid.Pt(1, 1))
	c.CancelMove()
	assert.True(t, before.Equal(c.Grid()))
}

func TestCutPaste(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.Rect(grid.Rect{Width: 2, Height: 2}, 2, true)
	c.Select(grid.Rect{Width: 2, Height: 2})

	buf := c.Cut()
	require.NotNil(t, buf)
	assert.Equal(t, 0, c.Grid().Count(2))

	c.Paste(buf, grid.Pt(2, 2))
	assert.Equal(t, selection.Moving, c.Selection().State)
	assert.Equal(t, 0, c.Grid().Count(2))

	assert.Equal(t, 4, c.CommitMove())
	assert.Equal(t, grid.Cell(2), c.At(grid.Pt(3, 3)))

	require.True(t, c.Undo())
	assert.Equal(t, 0, c.Grid().Count(2))
	require.True(t, c.Undo())
	assert.Equal(t, grid.Cell(2), c.At(grid.Pt(0, 0)))
}

func TestSelectionTransforms(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.Draw(grid.Pt(0, 0), 1, Programmatic)
	c.Select(grid.Rect{Width: 2, Height: 1})
	assert.Equal(t, 2, c.FlipSelection(grid.Horizontal))
	assert.Equal(t, grid.Cell(1), c.At(grid.Pt(1, 0)))

	data := c.SelectionData()
	require.NotNil(t, data)
	assert.Equal(t, 2, data.Width())

	assert.Equal(t, 1, c.EraseSelection())
	assert.Equal(t, 16, c.Grid().Count(grid.Empty))

	c.Draw(grid.Pt(3, 3), 2, Programmatic)
	c.Select(grid.Rect{X: 2, Y: 2, Width: 2, Height: 2})
	require.True(t, c.CropToSelection())
	assert.Equal(t, 2, c.Height())
	assert.Equal(t, grid.Cell(2), c.At(grid.Pt(1, 1)))

	c.Deselect()
	assert.Equal(t, selection.Idle, c.Selection().State)
	assert.Nil(t, c.Copy())
}

func TestRotate(t *testing.T) {
	c := New("test", 4, 2, mode.None, nil, testConfig())
	defer c.Close()

	for i := 0; i < 8; i++ {
		c.Draw(grid.Pt(i%4, i/4), grid.Cell(i), Programmatic)
	}
	before := c.Grid()

	c.Rotate(grid.Clockwise)
	assert.Equal(t, 2, c.Width())
	assert.Equal(t, 4, c.Height())

	for i := 0; i < 3; i++ {
		c.Rotate(grid.Clockwise)
	}
	assert.True(t, before.Equal(c.Grid()))

	c.Rotate(grid.CounterClockwise)
	c.Rotate(grid.Clockwise)
	assert.True(t, before.Equal(c.Grid()))
}

func TestResize(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.Draw(grid.Pt(3, 3), 1, Programmatic)
	c.Resize(6, 2)
	assert.Equal(t, 8, c.Width())
	assert.Equal(t, 2, c.Height())

	require.True(t, c.Undo())
	assert.Equal(t, 4, c.Width())
	assert.Equal(t, grid.Cell(1), c.At(grid.Pt(3, 3)))
}

func TestSnapshotRoundTrip(t *testing.T) {
	bank := palette.NewBank()
	c := New("ship", 8, 2, mode.M160A, bank, testConfig())
	defer c.Close()

	c.Line(grid.Pt(0, 0), grid.Pt(7, 0), 2)
	c.Draw(grid.Pt(3, 1), 1, Programmatic)
	c.SetPaletteRef(5)
	c.SetKangaroo(true)

	o := c.Snapshot()
	assert.Equal(t, "160A", o.DisplayModeName)
	assert.Equal(t, 5, o.PaletteReference)
	assert.Equal(t, 16, o.PixelWidth)
	assert.Nil(t, o.PixelData[1][0])
	require.NotNil(t, o.PixelData[1][3])
	assert.Equal(t, 1, *o.PixelData[1][3])

	d, err := FromSnapshot(o, bank, testConfig())
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, o, d.Snapshot())
	assert.True(t, c.Grid().Equal(d.Grid()))
	assert.True(t, d.Kangaroo())
}

func TestFromSnapshot(t *testing.T) {
	five := 5
	d, err := FromSnapshot(snapshot.Object{
		Name:            "clamped",
		DisplayModeName: "320A",
		Width:           2,
		Height:          2,
		PixelWidth:      3,
		PixelHeight:     3,
		PixelData:       [][]*int{{&five, nil}},
	}, nil, testConfig())
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, grid.Cell(1), d.At(grid.Pt(0, 0)))
	assert.Equal(t, grid.Empty, d.At(grid.Pt(1, 1)))
	assert.Equal(t, mode.PixelSize{Width: 3, Height: 3}, d.PixelSize())

	_, err = FromSnapshot(snapshot.Object{DisplayModeName: "640Z", Width: 1, Height: 1}, nil, testConfig())
	var fe *snapshot.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "displayModeName", fe.Field)

	_, err = FromSnapshot(snapshot.Object{DisplayModeName: "320A", Width: 0, Height: 1}, nil, testConfig())
	assert.Error(t, err)
}

func TestSnapshotWhileMoving(t *testing.T) {
	c := newCanvas4x4(t, testConfig())

	c.Draw(grid.Pt(0, 0), 1, Programmatic)
	c.Select(grid.Rect{Width: 1, Height: 1})
	c.BeginMove()
	c.MoveTo(grid.Pt(1, 0))

	o := c.Snapshot()
	assert.Nil(t, o.PixelData[0][0])
	require.NotNil(t, o.PixelData[0][1])
	assert.Equal(t, selection.Moving, c.Selection().State)
}

func TestUninitialisedModePanics(t *testing.T) {
	c := New("test", 4, 4, mode.Mode{}, nil, testConfig())
	defer c.Close()
	assert.Panics(t, func() { c.Colors() })
}
