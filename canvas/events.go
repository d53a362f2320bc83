package canvas

import (
	"sort"
	"strings"
)

// Event is a set of changes made by one operation
type Event uint

// List of change events
const (
	PixelsChanged Event = 1 << iota
	DimensionsChanged
	ModeChanged
	SelectionChanged
	PaletteChanged
	HistoryChanged
)

var eventNames = []string{
	"pixels",
	"dimensions",
	"mode",
	"selection",
	"palette",
	"history",
}

// Has reports whether e includes every change in f
func (e Event) Has(f Event) bool {
	return e&f == f
}

func (e Event) String() string {
	var s []string
	for i, name := range eventNames {
		if e&(1<<i) != 0 {
			s = append(s, name)
		}
	}
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, "|")
}

// Listener is called after an operation has completed with the changes it
// made. It is called without any lock held so it may call back into the
// canvas.
type Listener func(c *Canvas, e Event)

type listeners struct {
	next int
	fns  map[int]Listener
}

func (l *listeners) add(fn Listener) int {
	if l.fns == nil {
		l.fns = make(map[int]Listener)
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return id
}

// ordered returns the listeners in subscription order
func (l *listeners) ordered() []Listener {
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	return fns
}
