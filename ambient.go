package ambient

import (
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at draw submission time.
type Color struct {
	R, G, B, A float64
}

var (
	// ColorWhite is the neutral tint.
	ColorWhite = Color{1, 1, 1, 1}
	// ColorBlack is opaque black.
	ColorBlack = Color{0, 0, 0, 1}
)

// WhitePixel is a 1x1 white image used for solid fills.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())
}

// RGB builds an opaque Color from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}

// Mix linearly interpolates from c toward o by t. Alpha is taken from c.
func (c Color) Mix(o Color, t float64) Color {
	return Color{
		R: lerp(c.R, o.R, t),
		G: lerp(c.G, o.G, t),
		B: lerp(c.B, o.B, t),
		A: c.A,
	}
}

// Brighten multiplies the RGB channels by k and clamps to [0, 1].
func (c Color) Brighten(k float64) Color {
	return Color{clamp01(c.R * k), clamp01(c.G * k), clamp01(c.B * k), c.A}
}

// WithAlpha returns c with its alpha replaced by a (clamped).
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

// premultiplied returns the color scale factors expected by ebiten's
// ColorScale and vertex colors.
func (c Color) premultiplied() (r, g, b, a float32) {
	a64 := clamp01(c.A)
	return float32(clamp01(c.R) * a64), float32(clamp01(c.G) * a64), float32(clamp01(c.B) * a64), float32(a64)
}

// toRGBA converts a Color to a premultiplied 8-bit color.Color.
func (c Color) toRGBA() colorRGBA {
	return colorRGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// colorRGBA implements the color.Color interface for image.Fill.
type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

// Viewport is the drawable area in logical pixels (or cells for terminal hosts).
type Viewport struct {
	Width, Height int
}

// Empty reports whether the viewport has zero area.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Range is a general-purpose min/max range.
type Range struct {
	Min, Max float64
}

// Random returns a float64 in [Min, Max] drawn from rng.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// BlendMode selects a compositing operation.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over
	BlendAdd                     // additive / lighter
	BlendNone                    // opaque copy
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// newRand returns a generator seeded from seed, or from the runtime's
// entropy source when seed is zero.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// decay returns base^dt, the per-tick multiplicative falloff scaled to dt ticks.
func decay(base, dt float64) float64 {
	if dt == 1 {
		return base
	}
	return math.Pow(base, dt)
}
