/*
Package codegen converts pixel grids into packed MARIA graphics data and
assembly source.

Generation never fails. Anything that cannot be represented exactly is
corrected on a best effort basis and reported as a warning alongside the
output. The output only depends on the inputs, so exporting the same objects
with the same options always produces identical text.
*/
package codegen

import (
	"fmt"
	"strings"

	"github.com/bodgit/sprite7800/grid"
	"github.com/bodgit/sprite7800/mode"
	"github.com/bodgit/sprite7800/palette"
)

const (
	// maxLineBytes is the number of bytes written per directive
	maxLineBytes = 16

	// maxWidthBytes is the widest object a display list entry can hold
	maxWidthBytes = 32
)

// Object is one grid to export
type Object struct {
	Name    string
	Grid    *grid.Grid
	Palette int
}

// Result is the output of Generate
type Result struct {
	// Bytes is the packed object data in the order it appears in Text
	Bytes    []byte
	Text     string
	Warnings []string
}

type hardware struct {
	readMode  int
	writeMode bool
}

// CTRL read mode and display list write mode for each mode
var registers = map[string]hardware{
	"160A": {0, false},
	"160B": {0, true},
	"320A": {3, false},
	"320B": {2, true},
	"320C": {3, true},
	"320D": {2, false},
}

type prepared struct {
	label      string
	grid       *grid.Grid
	palette    int
	widthBytes int
	rows       [][]byte
	mirror     [][]byte
}

func exportMode(m mode.Mode) mode.Mode {
	if !m.Valid() {
		return mode.None
	}
	return m
}

func prepare(objs []Object, m mode.Mode, opts Options) []prepared {
	m = exportMode(m)

	names := make([]string, 0, len(objs))
	for _, o := range objs {
		names = append(names, o.Name)
	}
	l := labels(names)

	p := make([]prepared, 0, len(objs))
	for i, o := range objs {
		if o.Grid == nil {
			continue
		}
		po := prepared{
			label:      l[i],
			grid:       o.Grid,
			palette:    o.Palette & (palette.MaxPalettes - 1),
			widthBytes: m.WidthBytes(o.Grid.Width()),
			rows:       Pack(o.Grid, m),
		}
		if opts.Mirror && m.SupportsHorizontalFlip() {
			for _, row := range Mirror(o.Grid) {
				po.mirror = append(po.mirror, PackRow(row, m))
			}
		}
		p = append(p, po)
	}
	return p
}

// arrange returns the packed rows as lines in the given order
func arrange(rows [][]byte, order Order) [][]byte {
	switch order {
	case BottomUp:
		lines := make([][]byte, len(rows))
		for i, row := range rows {
			lines[len(rows)-1-i] = row
		}
		return lines
	case ColumnMajor:
		if len(rows) == 0 {
			return nil
		}
		lines := make([][]byte, len(rows[0]))
		for x := range lines {
			lines[x] = make([]byte, len(rows))
			for y, row := range rows {
				lines[x][y] = row[x]
			}
		}
		return lines
	}
	return rows
}

// Generate exports objects sharing a display mode. Objects are laid out in
// the order given.
func Generate(objs []Object, m mode.Mode, bank *palette.Bank, opts Options) *Result {
	r := &Result{
		Warnings: Check(objs, m, bank, opts),
	}

	for _, o := range prepare(objs, m, opts) {
		for _, line := range arrange(o.rows, opts.Order) {
			r.Bytes = append(r.Bytes, line...)
		}
		for _, line := range arrange(o.mirror, opts.Order) {
			r.Bytes = append(r.Bytes, line...)
		}
	}

	var sections []string
	if opts.Header {
		sections = append(sections, HeaderSection(objs, m, opts))
	}
	if opts.Object {
		sections = append(sections, ObjectSection(objs, m, opts))
	}
	if opts.Palette && bank != nil {
		sections = append(sections, PaletteSection(bank, opts))
	}

	nonEmpty := sections[:0]
	for _, s := range sections {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	r.Text = strings.Join(nonEmpty, "\n")

	return r
}

// Check returns the warnings Generate would report
func Check(objs []Object, m mode.Mode, bank *palette.Bank, opts Options) []string {
	var w []string
	warn := func(format string, a ...interface{}) {
		w = append(w, fmt.Sprintf(format, a...))
	}

	if !m.Valid() {
		warn("no display mode; exporting one byte per pixel")
	} else if !m.CanExportToASM() {
		warn("display mode %s has no hardware format; exporting one byte per pixel", m)
	}
	m = exportMode(m)

	if opts.UseLabel {
		if Sanitize(opts.Label) == "" {
			warn("empty label; label omitted")
		}
	} else if _, err := ParseAddress(opts.Address); err != nil {
		warn("invalid address %q; origin omitted", opts.Address)
	}

	if !validRadix(opts.Radix) {
		warn("radix %d is not supported; using 16", opts.Radix)
	}

	if opts.Mirror && !m.SupportsHorizontalFlip() {
		warn("display mode %s does not support horizontal flip; mirrored data omitted", m)
	}

	names := make([]string, 0, len(objs))
	for _, o := range objs {
		names = append(names, o.Name)
	}

	for i, label := range labels(names) {
		o := objs[i]
		if o.Grid == nil {
			warn("%s: no pixel data; skipped", label)
			continue
		}

		width := o.Grid.Width()
		if ppb := m.PixelsPerByte(); ppb > 0 && width%ppb != 0 {
			warn("%s: width %d is not a multiple of %d pixels; padded to %d", label, width, ppb, m.WidthBytes(width)*ppb)
		}
		if width > m.MaxWidth() {
			warn("%s: width %d exceeds the %s maximum of %d", label, width, m, m.MaxWidth())
		}
		if wb := m.WidthBytes(width); m.CanExportToASM() && wb > maxWidthBytes {
			warn("%s: %d bytes per line exceeds the display list limit of %d", label, wb, maxWidthBytes)
		}
		if wb := m.WidthBytes(width); wb > 0xff {
			warn("%s: width of %d bytes does not fit in a byte; truncated to %d", label, wb, wb&0xff)
		}
		if h := o.Grid.Height(); h > 0xff {
			warn("%s: height %d does not fit in a byte; truncated to %d", label, h, h&0xff)
		}
		if n := outOfRange(o.Grid, m); n > 0 {
			warn("%s: %d pixels use color indices beyond %d; clamped", label, n, m.NumColors()-1)
		}
		if o.Palette < 0 || o.Palette >= palette.MaxPalettes {
			warn("%s: palette %d is out of range; using %d", label, o.Palette, o.Palette&(palette.MaxPalettes-1))
		}
	}

	if bank != nil {
		for i := 0; i < palette.MaxPalettes; i++ {
			if n := bank.Palette(i).Len(); n > palette.SlotsPerPalette {
				warn("palette %d has %d colors; only the first %d are used", i, n, palette.SlotsPerPalette)
			}
		}
	}

	return w
}

type writer struct {
	strings.Builder
	opts Options
}

func (w *writer) comment(level int, format string, a ...interface{}) {
	if w.opts.Comments >= level {
		fmt.Fprintf(w, "; "+format+"\n", a...)
	}
}

func (w *writer) constant(name, value string) {
	fmt.Fprintf(w, "%s = %s\n", name, value)
}

func (w *writer) bytes(b []byte) {
	for len(b) > 0 {
		n := min(len(b), maxLineBytes)
		lits := make([]string, n)
		for i := range lits {
			lits[i] = w.opts.formatByte(b[i])
		}
		fmt.Fprintf(w, "%s%s %s\n", w.opts.Indent, w.opts.directive(), strings.Join(lits, ","))
		b = b[n:]
	}
}

// HeaderSection returns the named constants describing each object
func HeaderSection(objs []Object, m mode.Mode, opts Options) string {
	p := prepare(objs, m, opts)
	if len(p) == 0 {
		return ""
	}
	m = exportMode(m)
	hw := registers[m.Name()]

	w := &writer{opts: opts}
	w.comment(CommentsSections, "Header")

	for _, o := range p {
		w.comment(CommentsRows, "%s: %dx%d pixels, %s, palette %d", o.label, o.grid.Width(), o.grid.Height(), m, o.palette)

		palwidth := byte(o.palette<<5) | byte(-o.widthBytes)&0x1f
		modeByte := byte(0x40)
		if hw.writeMode {
			modeByte |= 0x80
		}

		w.constant(o.label+"_WIDTH", opts.formatByte(byte(o.widthBytes)))
		w.constant(o.label+"_HEIGHT", opts.formatByte(byte(o.grid.Height())))
		w.constant(o.label+"_PALWIDTH", opts.formatByte(palwidth))
		w.constant(o.label+"_MODE", opts.formatByte(modeByte))
		w.constant(o.label+"_READMODE", opts.formatByte(byte(hw.readMode)))
	}

	return w.String()
}

// ObjectSection returns the packed object data
func ObjectSection(objs []Object, m mode.Mode, opts Options) string {
	p := prepare(objs, m, opts)
	if len(p) == 0 {
		return ""
	}
	m = exportMode(m)

	w := &writer{opts: opts}
	w.comment(CommentsSections, "Object data, %s", m)

	if opts.UseLabel {
		if label := Sanitize(opts.Label); label != "" {
			fmt.Fprintf(w, "%s:\n", label)
		}
	} else if addr, err := ParseAddress(opts.Address); err == nil {
		fmt.Fprintf(w, "%sORG %s\n", opts.Indent, opts.formatWord(addr))
	}

	for _, o := range p {
		w.comment(CommentsRows, "%s: %d bytes x %d lines, %s", o.label, o.widthBytes, o.grid.Height(), opts.Order)
		fmt.Fprintf(w, "%s:\n", o.label)
		writeLines(w, o.grid.Rows(), o.rows, opts)

		if o.mirror != nil {
			fmt.Fprintf(w, "%s_mirror:\n", o.label)
			writeLines(w, Mirror(o.grid), o.mirror, opts)
		}
	}

	return w.String()
}

func writeLines(w *writer, cells [][]grid.Cell, rows [][]byte, opts Options) {
	lines := arrange(rows, opts.Order)
	art := arrangeArt(cells, opts.Order)
	for i, line := range lines {
		if opts.Comments >= CommentsRows && i < len(art) {
			fmt.Fprintf(w, "%s; %s\n", opts.Indent, art[i])
		}
		w.bytes(line)
	}
}

// arrangeArt returns a comment for each line showing its pixels
func arrangeArt(cells [][]grid.Cell, order Order) []string {
	art := make([]string, len(cells))
	for y, row := range cells {
		var b strings.Builder
		b.WriteByte('|')
		for _, c := range row {
			b.WriteByte(glyph(c))
		}
		b.WriteByte('|')
		art[y] = b.String()
	}

	switch order {
	case BottomUp:
		for i, j := 0, len(art)-1; i < j; i, j = i+1, j-1 {
			art[i], art[j] = art[j], art[i]
		}
	case ColumnMajor:
		return nil
	}
	return art
}

const glyphs = "0123456789abcdefghijklmnopqrstuvwxyz"

func glyph(c grid.Cell) byte {
	if c == grid.Empty {
		return '.'
	}
	if int(c) < len(glyphs) {
		return glyphs[c]
	}
	return '#'
}

// PaletteSection returns the background and palette colors as named
// constants using the register names of the hardware
func PaletteSection(bank *palette.Bank, opts Options) string {
	w := &writer{opts: opts}
	w.comment(CommentsSections, "Palettes")
	w.constant("BACKGRND_COLOR", opts.formatByte(byte(bank.Background())))

	for i := 0; i < palette.MaxPalettes; i++ {
		p := bank.Palette(i)
		w.comment(CommentsRows, "palette %d", i)
		for s := 0; s < palette.SlotsPerPalette; s++ {
			w.constant(fmt.Sprintf("P%dC%d", i, s+1), opts.formatByte(byte(p.Color(s))))
		}
	}

	return w.String()
}
