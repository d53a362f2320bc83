package codegen

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Order is the order object bytes are laid out in
type Order int

// List of valid orders
const (
	// TopDown emits each row left to right starting with the top row
	TopDown Order = iota
	// BottomUp emits each row left to right starting with the bottom row,
	// which is how zone graphics are laid out in consecutive pages
	BottomUp
	// ColumnMajor emits each column of bytes top to bottom in turn
	ColumnMajor
)

var orderNames = map[Order]string{
	TopDown:     "top-down",
	BottomUp:    "bottom-up",
	ColumnMajor: "column-major",
}

func (o Order) String() string {
	if s, ok := orderNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder returns the order with the given name
func ParseOrder(s string) (Order, error) {
	for o, name := range orderNames {
		if strings.EqualFold(name, s) {
			return o, nil
		}
	}
	return TopDown, fmt.Errorf("codegen: unknown order %q", s)
}

// UnmarshalYAML implements yaml.Unmarshaler
func (o *Order) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	order, err := ParseOrder(s)
	if err != nil {
		return err
	}
	*o = order
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (o Order) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

// Comment verbosity levels
const (
	CommentsNone = iota
	CommentsSections
	CommentsRows
)

// Options control the text produced by Generate
type Options struct {
	// Address is the origin of the object data, in decimal, $hex or
	// %binary. It is ignored when UseLabel is set.
	Address  string `yaml:"address"`
	UseLabel bool   `yaml:"use_label"`
	// Label is emitted before the object data instead of an origin
	Label string `yaml:"label"`

	// Radix of byte literals, one of 2, 10 or 16
	Radix     int    `yaml:"radix"`
	Indent    string `yaml:"indent"`
	Comments  int    `yaml:"comments"`
	Directive string `yaml:"directive"`

	Header  bool `yaml:"header"`
	Object  bool `yaml:"object"`
	Palette bool `yaml:"palette"`

	Order Order `yaml:"order"`
	// Mirror also emits a horizontally mirrored copy of each object
	Mirror bool `yaml:"mirror"`
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Address:   "$A000",
		Label:     "sprites",
		Radix:     16,
		Indent:    "\t",
		Comments:  CommentsSections,
		Directive: ".byte",
		Header:    true,
		Object:    true,
		Palette:   true,
		Order:     TopDown,
	}
}

// LoadOptions reads options from YAML. Anything not present keeps its
// default value.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.NewDecoder(r).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return DefaultOptions(), err
	}
	return opts, nil
}

// ParseAddress parses a 16-bit address written in decimal, $hex or %binary
func ParseAddress(s string) (uint16, error) {
	s = strings.TrimSpace(s)

	base := 10
	digits := s
	switch {
	case strings.HasPrefix(s, "$"):
		base, digits = 16, s[1:]
	case strings.HasPrefix(s, "%"):
		base, digits = 2, s[1:]
	}

	if digits == "" {
		return 0, fmt.Errorf("codegen: invalid address %q", s)
	}

	v, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return 0, fmt.Errorf("codegen: invalid address %q: %w", s, err)
	}
	return uint16(v), nil
}

func validRadix(radix int) bool {
	switch radix {
	case 2, 10, 16:
		return true
	}
	return false
}

func (o Options) radix() int {
	if validRadix(o.Radix) {
		return o.Radix
	}
	return 16
}

func (o Options) directive() string {
	if o.Directive == "" {
		return ".byte"
	}
	return o.Directive
}

// formatByte writes a byte literal in the configured radix
func (o Options) formatByte(b byte) string {
	switch o.radix() {
	case 2:
		return fmt.Sprintf("%%%08b", b)
	case 10:
		return strconv.Itoa(int(b))
	}
	return fmt.Sprintf("$%02X", b)
}

func (o Options) formatWord(w uint16) string {
	switch o.radix() {
	case 2:
		return fmt.Sprintf("%%%016b", w)
	case 10:
		return strconv.Itoa(int(w))
	}
	return fmt.Sprintf("$%04X", w)
}
