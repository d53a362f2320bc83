/*
Package snapshot implements the project file format.

A snapshot is a tree of groups, each holding objects and further groups,
together with the shared palettes and background color. It is stored as
JSON, optionally wrapped in a zstd frame. The compressed form is detected by
the zstd magic number so callers never need to know which form a file uses.

Decoding is strict: a snapshot with the wrong types or shape is rejected with
a *FieldError naming the offending field, and callers are expected to fall
back to Empty.
*/
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bodgit/sprite7800/mode"
	"github.com/bodgit/sprite7800/palette"
)

// Version is the snapshot version written by this package
const Version = 1

// ErrUnsupportedVersion is returned when decoding a snapshot written by a
// newer version, or one without a version
var ErrUnsupportedVersion = errors.New("snapshot: unsupported version")

// ErrMalformed is returned when the data is not JSON, or not a valid zstd
// frame
var ErrMalformed = errors.New("snapshot: malformed")

// Snapshot is a whole project
type Snapshot struct {
	Version    int     `json:"version"`
	Television string  `json:"television,omitempty"`
	Background int     `json:"background"`
	Palettes   [][]int `json:"palettes"`
	Groups     []Group `json:"groups"`
}

// Group is a named collection of objects and nested groups
type Group struct {
	Name    string   `json:"name"`
	Objects []Object `json:"objects"`
	Groups  []Group  `json:"groups,omitempty"`
}

// Object is one editable object. A nil cell in PixelData is uncolored.
type Object struct {
	Name             string   `json:"name"`
	DisplayModeName  string   `json:"displayModeName"`
	PaletteReference int      `json:"paletteReference"`
	Kangaroo         bool     `json:"kangaroo,omitempty"`
	PixelData        [][]*int `json:"pixelData"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	PixelWidth       int      `json:"pixelWidth"`
	PixelHeight      int      `json:"pixelHeight"`
}

// Empty returns a project with no objects and black palettes
func Empty() *Snapshot {
	s := &Snapshot{
		Version:  Version,
		Palettes: make([][]int, palette.MaxPalettes),
		Groups:   []Group{},
	}
	for i := range s.Palettes {
		s.Palettes[i] = make([]int, palette.SlotsPerPalette)
	}
	return s
}

// Bank builds a palette bank from the snapshot colors
func (s *Snapshot) Bank() *palette.Bank {
	colors := make([][]palette.Color, len(s.Palettes))
	for i, p := range s.Palettes {
		for _, c := range p {
			colors[i] = append(colors[i], palette.Color(c))
		}
	}
	return palette.NewBankFromColors(palette.Color(s.Background), colors)
}

// SetBank stores the colors of a palette bank in the snapshot
func (s *Snapshot) SetBank(b *palette.Bank) {
	s.Background = int(b.Background())
	s.Palettes = make([][]int, palette.MaxPalettes)
	for i, p := range b.Colors() {
		s.Palettes[i] = make([]int, len(p))
		for j, c := range p {
			s.Palettes[i][j] = int(c)
		}
	}
}

// Walk calls fn for every object in the snapshot, depth-first in file
// order. path holds the names of the enclosing groups. Walk stops at the
// first error returned by fn.
func (s *Snapshot) Walk(fn func(path []string, o *Object) error) error {
	return walk(s.Groups, nil, fn)
}

func walk(groups []Group, path []string, fn func([]string, *Object) error) error {
	for i := range groups {
		g := &groups[i]
		p := append(path[:len(path):len(path)], g.Name)
		for j := range g.Objects {
			if err := fn(p, &g.Objects[j]); err != nil {
				return err
			}
		}
		if err := walk(g.Groups, p, fn); err != nil {
			return err
		}
	}
	return nil
}

// Objects returns the number of objects in the snapshot
func (s *Snapshot) Objects() int {
	n := 0
	_ = s.Walk(func([]string, *Object) error {
		n++
		return nil
	})
	return n
}

// MarshalJSON is implemented so that a nil Groups slice is written as an
// empty list
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	if s.Groups == nil {
		s.Groups = []Group{}
	}
	return json.Marshal(plain(s))
}

// Encode returns the snapshot as indented JSON
func (s *Snapshot) Encode() ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// MarshalBinary returns the compressed form of the snapshot
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return compress(b)
}

// UnmarshalBinary decodes either form of a snapshot
func (s *Snapshot) UnmarshalBinary(b []byte) error {
	d, err := Decode(b)
	if err != nil {
		return err
	}
	*s = *d
	return nil
}

// Decode parses either the JSON or the compressed form of a snapshot and
// validates its shape
func Decode(b []byte) (*Snapshot, error) {
	if IsCompressed(b) {
		var err error
		if b, err = decompress(b); err != nil {
			return nil, fmt.Errorf("%w: decompress: %v", ErrMalformed, err)
		}
	}

	s := new(Snapshot)
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(s); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil, &FieldError{
				Field:    te.Field,
				Expected: te.Type.String(),
				Got:      te.Value,
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the shape of the snapshot. Color indices beyond those of
// an object's display mode are not an error; they are clamped when the
// object is loaded.
func (s *Snapshot) Validate() error {
	if s.Version < 1 || s.Version > Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}

	if s.Background < 0 || s.Background > 0xff {
		return &FieldError{Field: "background", Expected: "color", Got: fmt.Sprint(s.Background)}
	}

	for i, p := range s.Palettes {
		for j, c := range p {
			if c < 0 || c > 0xff {
				return &FieldError{Field: fmt.Sprintf("palettes[%d][%d]", i, j), Expected: "color", Got: fmt.Sprint(c)}
			}
		}
	}

	return validateGroups(s.Groups, "groups")
}

func validateGroups(groups []Group, prefix string) error {
	for i := range groups {
		field := fmt.Sprintf("%s[%d]", prefix, i)
		for j := range groups[i].Objects {
			if err := groups[i].Objects[j].validate(fmt.Sprintf("%s.objects[%d]", field, j)); err != nil {
				return err
			}
		}
		if err := validateGroups(groups[i].Groups, field+".groups"); err != nil {
			return err
		}
	}
	return nil
}

func (o *Object) validate(field string) error {
	if _, ok := mode.ByName(o.DisplayModeName); !ok {
		names := make([]string, 0, len(mode.All()))
		for _, m := range mode.All() {
			names = append(names, m.Name())
		}
		return &FieldError{
			Field:    field + ".displayModeName",
			Expected: "one of " + strings.Join(names, ", "),
			Got:      fmt.Sprintf("%q", o.DisplayModeName),
		}
	}

	if o.PaletteReference < 0 || o.PaletteReference >= palette.MaxPalettes {
		return &FieldError{Field: field + ".paletteReference", Expected: fmt.Sprintf("0-%d", palette.MaxPalettes-1), Got: fmt.Sprint(o.PaletteReference)}
	}

	for _, d := range []struct {
		name  string
		value int
	}{
		{"width", o.Width},
		{"height", o.Height},
		{"pixelWidth", o.PixelWidth},
		{"pixelHeight", o.PixelHeight},
	} {
		if d.value < 1 {
			return &FieldError{Field: field + "." + d.name, Expected: "positive int", Got: fmt.Sprint(d.value)}
		}
	}

	if len(o.PixelData) != o.Height {
		return &FieldError{Field: field + ".pixelData", Expected: fmt.Sprintf("%d rows", o.Height), Got: fmt.Sprintf("%d rows", len(o.PixelData))}
	}
	for y, row := range o.PixelData {
		if len(row) != o.Width {
			return &FieldError{Field: fmt.Sprintf("%s.pixelData[%d]", field, y), Expected: fmt.Sprintf("%d cells", o.Width), Got: fmt.Sprintf("%d cells", len(row))}
		}
		for x, c := range row {
			if c != nil && *c < 0 {
				return &FieldError{Field: fmt.Sprintf("%s.pixelData[%d][%d]", field, y, x), Expected: "color index or null", Got: fmt.Sprint(*c)}
			}
		}
	}

	return nil
}
