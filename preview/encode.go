package preview

import (
	"image"
	"image/png"
	"io"

	// Reference images may be in any of these formats
	_ "image/gif"
	_ "image/jpeg"
)

// Encode writes m to w as a PNG
func Encode(w io.Writer, m image.Image) error {
	e := png.Encoder{CompressionLevel: png.BestCompression}
	return e.Encode(w, m)
}

// Decode reads a reference image in PNG, GIF or JPEG format
func Decode(r io.Reader) (image.Image, error) {
	m, _, err := image.Decode(r)
	return m, err
}
