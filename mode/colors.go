package mode

import "github.com/bodgit/sprite7800/palette"

// Kind says where the color of an index comes from
type Kind int

const (
	// Direct colors come from a palette slot
	Direct Kind = iota
	// Transparent shows whatever is behind the object
	Transparent
	// Background shows the background color
	Background
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Transparent:
		return "transparent"
	case Background:
		return "background"
	}
	return "unknown"
}

// ColorValue is the resolution of one color index
type ColorValue struct {
	Kind    Kind
	Palette int
	Slot    int
	Color   palette.Color
}

type resolver int

const (
	resolveAll resolver = iota + 1
	resolveSingle
	resolveSecond
	resolveGroup
	resolvePerPixelPalette
)

// Colors resolves every color index of the mode against the bank. ref is
// the palette the object references and kangaroo disables transparency so
// that index zero shows the background, or for modes that support it a
// promoted palette color.
func (m Mode) Colors(bank *palette.Bank, ref int, kangaroo bool) []ColorValue {
	if m.resolve == 0 {
		panic("mode: colors requested from uninitialised display mode")
	}

	ref &= palette.MaxPalettes - 1
	group := ref &^ 3

	direct := func(p, s int) ColorValue {
		return ColorValue{Kind: Direct, Palette: p, Slot: s, Color: bank.Color(p, s)}
	}

	v := make([]ColorValue, m.numColors)

	switch {
	case m.resolve == resolveAll:
		v[0] = ColorValue{Kind: Background, Palette: -1, Color: bank.Background()}
	case kangaroo && m.promoteZero:
		v[0] = direct(ref, 0)
	case kangaroo:
		v[0] = ColorValue{Kind: Background, Palette: -1, Color: bank.Background()}
	default:
		v[0] = ColorValue{Kind: Transparent, Palette: -1}
	}

	for i := 1; i < m.numColors; i++ {
		switch m.resolve {
		case resolveAll:
			v[i] = direct((i-1)/palette.SlotsPerPalette, (i-1)%palette.SlotsPerPalette)
		case resolveSingle:
			v[i] = direct(ref, i-1)
		case resolveSecond:
			v[i] = direct(ref, 1)
		case resolveGroup:
			v[i] = direct(group+(i-1)/palette.SlotsPerPalette, (i-1)%palette.SlotsPerPalette)
		case resolvePerPixelPalette:
			v[i] = direct(group+i-1, 1)
		}
	}

	return v
}

// ColorAt resolves a single index. Negative indices, which mark uncolored
// cells, resolve the same as index zero.
func (m Mode) ColorAt(bank *palette.Bank, ref int, kangaroo bool, i int) ColorValue {
	c := m.Colors(bank, ref, kangaroo)
	if i < 0 {
		i = 0
	}
	if i >= len(c) {
		i = len(c) - 1
	}
	return c[i]
}
