package palette

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// Suggest proposes up to n hardware colors for a palette by reducing a
// reference image with a median cut quantizer and mapping each resulting
// color to its nearest hardware color. Duplicates are removed so the result
// may be shorter than n. The image pixels themselves are not used for
// anything else.
func Suggest(m image.Image, n int, spec *Spec) []Color {
	if n <= 0 || m == nil || m.Bounds().Empty() {
		return nil
	}

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, n), m)

	seen := make(map[Color]struct{}, len(p))
	colors := make([]Color, 0, len(p))
	for _, c := range p {
		_, _, _, a := c.RGBA()
		if a == 0 {
			continue
		}
		hc := spec.Nearest(c)
		if _, ok := seen[hc]; ok {
			continue
		}
		seen[hc] = struct{}{}
		colors = append(colors, hc)
	}
	return colors
}
