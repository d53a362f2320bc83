package palette

import "sync"

// Bank is the full set of hardware palettes together with the background
// color. Canvases share a bank and are notified through Subscribe when any
// color in it is replaced.
type Bank struct {
	palettes [MaxPalettes]*Palette

	mu         sync.Mutex
	background Color

	subs subscribers
}

// NewBank returns a bank of MaxPalettes palettes each with SlotsPerPalette
// slots set to black.
func NewBank() *Bank {
	b := new(Bank)
	for i := range b.palettes {
		b.palettes[i] = New(i, make([]Color, SlotsPerPalette)...)
		b.palettes[i].Subscribe(b.subs.notify)
	}
	return b
}

// NewBankFromColors builds a bank from raw slot colors. Missing palettes are
// left black and rows longer than SlotsPerPalette are kept as-is so that the
// code generator can warn about them.
func NewBankFromColors(background Color, colors [][]Color) *Bank {
	b := &Bank{background: background}
	for i := range b.palettes {
		var c []Color
		if i < len(colors) {
			c = colors[i]
		}
		if len(c) < SlotsPerPalette {
			c = append(append([]Color{}, c...), make([]Color, SlotsPerPalette-len(c))...)
		}
		b.palettes[i] = New(i, c...)
		b.palettes[i].Subscribe(b.subs.notify)
	}
	return b
}

// Palette returns the palette with the given index or nil if the index is
// outside of the hardware range.
func (b *Bank) Palette(i int) *Palette {
	if i < 0 || i >= MaxPalettes {
		return nil
	}
	return b.palettes[i]
}

// Color is a shorthand for Palette(p).Color(slot)
func (b *Bank) Color(p, slot int) Color {
	if pal := b.Palette(p); pal != nil {
		return pal.Color(slot)
	}
	return 0
}

// Background returns the background color
func (b *Bank) Background() Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.background
}

// SetBackground replaces the background color and notifies subscribers
func (b *Bank) SetBackground(c Color) bool {
	b.mu.Lock()
	if b.background == c {
		b.mu.Unlock()
		return false
	}
	b.background = c
	b.mu.Unlock()

	b.subs.notify(Change{Palette: -1, Color: c})
	return true
}

// Subscribe registers fn for changes to any palette in the bank or to the
// background color.
func (b *Bank) Subscribe(fn func(Change)) func() {
	return b.subs.add(fn)
}

// Colors returns a copy of every palette's slots
func (b *Bank) Colors() [][]Color {
	c := make([][]Color, MaxPalettes)
	for i, p := range b.palettes {
		c[i] = p.Colors()
	}
	return c
}
