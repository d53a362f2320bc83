package palette

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Spec is the RGB interpretation of every hardware color for one television
// standard.
type Spec struct {
	Name   string
	colors [256]color.RGBA
}

// RGBA returns the RGB value of a hardware color
func (s *Spec) RGBA(c Color) color.RGBA {
	return s.colors[c]
}

// Nearest returns the hardware color perceptually closest to c
func (s *Spec) Nearest(c color.Color) Color {
	target, _ := colorful.MakeColor(opaque(c))

	best := Color(0)
	bestDist := math.MaxFloat64
	for i := range s.colors {
		hc, _ := colorful.MakeColor(s.colors[i])
		if d := target.DistanceLab(hc); d < bestDist {
			best, bestDist = Color(i), d
		}
	}
	return best
}

// go-colorful refuses fully transparent colors
func opaque(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.RGBA64{uint16(r), uint16(g), uint16(b), 0xffff}
}

var (
	// NTSC is the palette of an NTSC console
	NTSC = &Spec{Name: "NTSC"}

	// PAL is the palette of a PAL console
	PAL = &Spec{Name: "PAL"}
)

// SpecByName returns the television standard with the given name,
// defaulting to NTSC.
func SpecByName(name string) *Spec {
	switch name {
	case "PAL", "pal":
		return PAL
	default:
		return NTSC
	}
}

func clamp(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// the min/max values for the Y component of greyscale hues
const (
	minY = 0.0
	maxY = 1.0
)

// saturation of chroma in final colour
const saturation = 0.3

// MARIA hue 1 is gold, the same as the TIA
const (
	ntscPhase = 25.7
	palPhase  = 16.35
	phiAdj    = -57.28
	phiBurst  = 180
)

func luma(c Color) float64 {
	return minY + (float64(c.Luminance())/15)*(maxY-minY)
}

func grey(Y float64) color.RGBA {
	g := uint8(Y * 255)
	return color.RGBA{R: g, G: g, B: g, A: 255}
}

func generateNTSC(c Color) color.RGBA {
	Y := luma(c)
	if c.Hue() == 0 {
		return grey(Y)
	}

	phi := (float64(c.Hue())-1)*-ntscPhase + phiAdj + phiBurst
	phi *= math.Pi / 180

	I := Y * saturation * math.Sin(phi)
	Q := Y * saturation * math.Cos(phi)

	// YIQ to RGB, NTSC 1953 colorimetry
	return color.RGBA{
		R: uint8(clamp(Y+(0.956*I)+(0.619*Q)) * 255),
		G: uint8(clamp(Y-(0.272*I)-(0.647*Q)) * 255),
		B: uint8(clamp(Y-(1.106*I)+(1.703*Q)) * 255),
		A: 255,
	}
}

func generatePAL(c Color) color.RGBA {
	Y := luma(c)
	hue := c.Hue()
	if hue == 0 || hue == 0x0f {
		return grey(Y)
	}

	var phi float64
	if hue&0x01 == 0x01 {
		phi = float64(hue) * -palPhase
	} else {
		phi = (float64(hue) - 2) * palPhase
	}
	phi += phiAdj + phiBurst
	phi *= math.Pi / 180

	U := Y * saturation * -math.Sin(phi)
	V := Y * saturation * -math.Cos(phi)

	// YUV to RGB, SDTV with BT.470
	return color.RGBA{
		R: uint8(clamp(Y+(1.140*V)) * 255),
		G: uint8(clamp(Y-(0.395*U)-(0.581*V)) * 255),
		B: uint8(clamp(Y+(2.033*U)) * 255),
		A: 255,
	}
}

func init() {
	for i := 0; i < 256; i++ {
		NTSC.colors[i] = generateNTSC(Color(i))
		PAL.colors[i] = generatePAL(Color(i))
	}
}
