package codegen

import (
	"github.com/bodgit/sprite7800/grid"
	"github.com/bodgit/sprite7800/mode"
)

// PackRow packs one row of cells into hardware bytes. Consecutive pixels are
// packed most significant bits first, uncolored cells pack as index zero and
// indices the mode cannot hold are clamped. A row that is not a whole number
// of bytes is padded with index zero. Modes without packing produce one byte
// per pixel.
func PackRow(cells []grid.Cell, m mode.Mode) []byte {
	ppb := m.PixelsPerByte()
	if ppb == 0 {
		b := make([]byte, len(cells))
		for i, c := range cells {
			b[i] = byte(index(c, m))
		}
		return b
	}

	bpp := m.BitsPerPixel()
	b := make([]byte, m.WidthBytes(len(cells)))
	for i := range b {
		var v byte
		for j := 0; j < ppb; j++ {
			v <<= bpp
			if x := i*ppb + j; x < len(cells) {
				v |= byte(index(cells[x], m))
			}
		}
		b[i] = v
	}
	return b
}

// Pack packs every row of g
func Pack(g *grid.Grid, m mode.Mode) [][]byte {
	rows := g.Rows()
	packed := make([][]byte, len(rows))
	for y, row := range rows {
		packed[y] = PackRow(row, m)
	}
	return packed
}

// Mirror returns the rows of g reversed left to right
func Mirror(g *grid.Grid) [][]grid.Cell {
	rows := g.Rows()
	for _, row := range rows {
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
	return rows
}

func index(c grid.Cell, m mode.Mode) int {
	if c == grid.Empty {
		return 0
	}
	return m.Clamp(int(c))
}

// outOfRange counts the colored cells of g the mode cannot hold
func outOfRange(g *grid.Grid, m mode.Mode) int {
	n := 0
	for _, row := range g.Rows() {
		for _, c := range row {
			if c != grid.Empty && int(c) >= m.NumColors() {
				n++
			}
		}
	}
	return n
}
