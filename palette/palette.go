/*
Package palette implements the fixed hardware palettes of the Atari 7800.

MARIA provides eight palettes of three colors each plus a single background
color. Every color is a single byte where the upper nibble selects the hue
and the lower nibble the luminance.
*/
package palette

import (
	"fmt"
	"sort"
	"sync"
)

const (
	// SlotsPerPalette is the number of colors in each hardware palette
	SlotsPerPalette = 3

	// MaxPalettes is the number of hardware palettes
	MaxPalettes = 8
)

// Color is a hardware color value
type Color uint8

// Hue returns the hue component of the color
func (c Color) Hue() uint8 {
	return uint8(c) >> 4
}

// Luminance returns the luminance component of the color
func (c Color) Luminance() uint8 {
	return uint8(c) & 0x0f
}

func (c Color) String() string {
	return fmt.Sprintf("$%02X", uint8(c))
}

// Palette is an ordered, fixed-size list of hardware colors. The only
// mutation permitted is replacing the color in a slot.
type Palette struct {
	id    int
	mu    sync.Mutex
	slots []Color
	subs  subscribers
}

// New returns a palette with the given id and colors. The number of slots
// is fixed from then on.
func New(id int, colors ...Color) *Palette {
	slots := make([]Color, len(colors))
	copy(slots, colors)
	return &Palette{
		id:    id,
		slots: slots,
	}
}

// ID returns the stable identifier of the palette
func (p *Palette) ID() int {
	return p.id
}

// Len returns the number of slots
func (p *Palette) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// Color returns the color in the given slot. Out of range slots return
// color zero.
func (p *Palette) Color(slot int) Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slot < 0 || slot >= len(p.slots) {
		return 0
	}
	return p.slots[slot]
}

// Colors returns a copy of every slot
func (p *Palette) Colors() []Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := make([]Color, len(p.slots))
	copy(c, p.slots)
	return c
}

// SetColor replaces the color in a slot and notifies every subscriber. It
// reports whether the palette changed.
func (p *Palette) SetColor(slot int, c Color) bool {
	p.mu.Lock()
	if slot < 0 || slot >= len(p.slots) || p.slots[slot] == c {
		p.mu.Unlock()
		return false
	}
	p.slots[slot] = c
	p.mu.Unlock()

	p.subs.notify(Change{Palette: p.id, Slot: slot, Color: c})
	return true
}

// Subscribe registers fn to be called synchronously whenever a slot color
// changes. The returned function removes the subscription.
func (p *Palette) Subscribe(fn func(Change)) func() {
	return p.subs.add(fn)
}

// Change describes a replaced slot color. Palette is -1 when the background
// color changed.
type Change struct {
	Palette int
	Slot    int
	Color   Color
}

type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Change)
}

func (s *subscribers) add(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(Change))
	}
	id := s.next
	s.next++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.fns, id)
		})
	}
}

func (s *subscribers) notify(c Change) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.fns))
	for id := range s.fns {
		ids = append(ids, id)
	}
	fns := make([]func(Change), 0, len(ids))
	// Notify in subscription order
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, s.fns[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
