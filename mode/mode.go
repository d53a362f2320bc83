/*
Package mode describes the MARIA display modes.

Each mode fixes how many color indices a pixel may hold, how many pixels are
packed into a byte of graphics data and how a color index is resolved to a
hardware color. The set of modes is closed; values are obtained from the
package variables or from ByName.
*/
package mode

import (
	"math/bits"
	"strings"
)

// Mode is a display mode. The zero value is not a valid mode and will panic
// when asked to resolve colors.
type Mode struct {
	name          string
	numColors     int
	pixelsPerByte int
	singlePalette bool
	fixedPixel    bool
	wide          bool
	maxWidth      int
	hflip         bool
	asm           bool
	resolve       resolver
	promoteZero   bool
}

var (
	// None places no hardware constraints on the drawing
	None = Mode{
		name:      "none",
		numColors: 1 + 8*3,
		maxWidth:  320,
		hflip:     true,
		resolve:   resolveAll,
	}

	// M160A is four pixels per byte, three colors plus transparent
	M160A = Mode{
		name:          "160A",
		numColors:     4,
		pixelsPerByte: 4,
		singlePalette: true,
		fixedPixel:    true,
		wide:          true,
		maxWidth:      128,
		hflip:         true,
		asm:           true,
		resolve:       resolveSingle,
	}

	// M160B is two pixels per byte, twelve colors plus transparent
	M160B = Mode{
		name:          "160B",
		numColors:     13,
		pixelsPerByte: 2,
		fixedPixel:    true,
		wide:          true,
		maxWidth:      64,
		hflip:         true,
		asm:           true,
		resolve:       resolveGroup,
	}

	// M320A is eight pixels per byte, one color plus transparent
	M320A = Mode{
		name:          "320A",
		numColors:     2,
		pixelsPerByte: 8,
		singlePalette: true,
		fixedPixel:    true,
		maxWidth:      256,
		hflip:         true,
		asm:           true,
		resolve:       resolveSecond,
	}

	// M320B is four pixels per byte, three colors plus transparent
	M320B = Mode{
		name:          "320B",
		numColors:     4,
		pixelsPerByte: 4,
		singlePalette: true,
		fixedPixel:    true,
		maxWidth:      128,
		hflip:         true,
		asm:           true,
		resolve:       resolveSingle,
		promoteZero:   true,
	}

	// M320C is four pixels per byte where each color selects a palette
	M320C = Mode{
		name:          "320C",
		numColors:     4,
		pixelsPerByte: 4,
		fixedPixel:    true,
		maxWidth:      128,
		asm:           true,
		resolve:       resolvePerPixelPalette,
	}

	// M320D is eight pixels per byte, one color plus transparent
	M320D = Mode{
		name:          "320D",
		numColors:     2,
		pixelsPerByte: 8,
		fixedPixel:    true,
		maxWidth:      256,
		hflip:         true,
		asm:           true,
		resolve:       resolveSecond,
		promoteZero:   true,
	}
)

var all = []Mode{None, M160A, M160B, M320A, M320B, M320C, M320D}

// All returns every display mode in a stable order
func All() []Mode {
	m := make([]Mode, len(all))
	copy(m, all)
	return m
}

// ByName returns the mode with the given name. Matching is case-insensitive.
func ByName(name string) (Mode, bool) {
	for _, m := range all {
		if strings.EqualFold(m.name, name) {
			return m, true
		}
	}
	return Mode{}, false
}

func (m Mode) String() string {
	if m.name == "" {
		return "invalid"
	}
	return m.name
}

// Name returns the name used in snapshots
func (m Mode) Name() string { return m.name }

// Valid reports whether m is one of the defined modes
func (m Mode) Valid() bool { return m.name != "" }

// NumColors is the number of distinct color indices a pixel may hold
func (m Mode) NumColors() int { return m.numColors }

// PixelsPerByte is the number of pixels packed into one byte, zero when
// the mode has no packing requirement
func (m Mode) PixelsPerByte() int { return m.pixelsPerByte }

// HasSinglePalette reports whether every pixel draws from one palette
func (m Mode) HasSinglePalette() bool { return m.singlePalette }

// IsFixedPixelSize reports whether the pixel aspect ratio is locked
func (m Mode) IsFixedPixelSize() bool { return m.fixedPixel }

// MaxWidth is the widest grid, in pixels, the mode supports
func (m Mode) MaxWidth() int { return m.maxWidth }

// SupportsHorizontalFlip reports whether mirrored graphics data can be
// produced for the mode without changing which palette a pixel uses
func (m Mode) SupportsHorizontalFlip() bool { return m.hflip }

// CanExportToASM reports whether the mode has a hardware byte format
func (m Mode) CanExportToASM() bool { return m.asm }

// BitsPerPixel is the number of bits each pixel occupies in packed data
func (m Mode) BitsPerPixel() int {
	if m.pixelsPerByte == 0 {
		return 8
	}
	return bits.Len(uint(m.numColors - 1))
}

// Clamp returns i limited to the valid color indices of the mode. Negative
// values are returned unchanged since they mark uncolored cells.
func (m Mode) Clamp(i int) int {
	if i >= m.numColors {
		return m.numColors - 1
	}
	return i
}

// WidthBytes is the number of bytes one row of the given width packs into
func (m Mode) WidthBytes(width int) int {
	if m.pixelsPerByte == 0 {
		return width
	}
	return (width + m.pixelsPerByte - 1) / m.pixelsPerByte
}

// CorrectWidth returns the nearest width the mode can display. Widths
// beyond the maximum are rounded down to it and widths that are not a
// multiple of the pixels per byte are rounded up to the next multiple.
func (m Mode) CorrectWidth(width int) int {
	if width < 1 {
		width = 1
	}
	if m.maxWidth > 0 && width > m.maxWidth {
		width = m.maxWidth
	}
	if ppb := m.pixelsPerByte; ppb > 0 {
		if r := width % ppb; r != 0 {
			width += ppb - r
		}
		if m.maxWidth > 0 && width > m.maxWidth {
			width = m.maxWidth - m.maxWidth%ppb
		}
	}
	return width
}

// PixelSize is the on-screen size of one logical pixel
type PixelSize struct {
	Width  int
	Height int
}

// PixelDimensions returns the pixel size to use for the mode. Modes with a
// fixed aspect derive it from the height of def; other modes return def.
func (m Mode) PixelDimensions(def PixelSize) PixelSize {
	if !m.fixedPixel {
		return def
	}
	u := def.Height
	if u < 1 {
		u = 1
	}
	if m.wide {
		return PixelSize{Width: 2 * u, Height: u}
	}
	return PixelSize{Width: u, Height: u}
}
