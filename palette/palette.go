// Package palette holds the color math for the light rig: interpolation
// between colors in a chosen color space, and the gradient that maps a
// musical energy value onto a color.
package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"lightbeat/light"
)

// Mode selects the color space and hue path used for interpolation.
type Mode string

const (
	// ModeHcl blends perceptually, taking the shortest path around the
	// hue circle.
	ModeHcl Mode = "hcl"
	// ModeHclLong blends perceptually, taking the longest path around
	// the hue circle. Sweeps through more hues per transition.
	ModeHclLong Mode = "hcl-long"
	// ModeRGB blends linearly per RGB channel.
	ModeRGB Mode = "rgb"
)

// ParseMode validates a config string as an interpolation mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHcl, ModeHclLong, ModeRGB:
		return Mode(s), nil
	case "":
		return ModeHcl, nil
	}
	return "", fmt.Errorf("palette: unknown interpolation mode %q", s)
}

// Interpolator returns the blend function for a mode.
func Interpolator(m Mode) light.Interpolator {
	switch m {
	case ModeHclLong:
		return blendHclLong
	case ModeRGB:
		return blendRGB
	default:
		return blendHcl
	}
}

func toColorful(c light.RGB) colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255.0,
		G: float64(c[1]) / 255.0,
		B: float64(c[2]) / 255.0,
	}
}

func fromColorful(c colorful.Color) light.RGB {
	c = c.Clamped()
	return light.RGB{
		uint8(math.Round(c.R * 255)),
		uint8(math.Round(c.G * 255)),
		uint8(math.Round(c.B * 255)),
	}
}

func blendHcl(from, to light.RGB, t float64) light.RGB {
	return fromColorful(toColorful(from).BlendHcl(toColorful(to), clamp01(t)))
}

func blendRGB(from, to light.RGB, t float64) light.RGB {
	return fromColorful(toColorful(from).BlendRgb(toColorful(to), clamp01(t)))
}

// blendHclLong interpolates H, C and L directly, sending the hue the long
// way around the circle. go-colorful only offers the short path.
func blendHclLong(from, to light.RGB, t float64) light.RGB {
	t = clamp01(t)
	h1, c1, l1 := toColorful(from).Hcl()
	h2, c2, l2 := toColorful(to).Hcl()

	// Shortest signed hue delta in (-180, 180].
	short := math.Mod(h2-h1+540, 360) - 180
	long := short - 360
	if short <= 0 {
		long = short + 360
	}

	h := math.Mod(h1+t*long+360, 360)
	c := c1 + t*(c2-c1)
	l := l1 + t*(l2-l1)
	return fromColorful(colorful.Hcl(h, c, l))
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Gradient maps a scalar in 0..1 onto the path between two colors.
type Gradient struct {
	From  light.RGB
	To    light.RGB
	blend light.Interpolator
}

// NewGradient builds a gradient sampled with the given mode.
func NewGradient(from, to light.RGB, m Mode) Gradient {
	return Gradient{From: from, To: to, blend: Interpolator(m)}
}

// Sample returns the gradient color at t, clamped to 0..1.
func (g Gradient) Sample(t float64) light.RGB {
	return g.blend(g.From, g.To, clamp01(t))
}

// ParseHex converts a "#rrggbb" string to an RGB triple.
func ParseHex(s string) (light.RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return light.RGB{}, fmt.Errorf("palette: %w", err)
	}
	return fromColorful(c), nil
}
