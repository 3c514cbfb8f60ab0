package ambient

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// dotRadius is the radius of the cached soft-dot texture in pixels.
const dotRadius = 16

// glowRadius is the spread, in pixels, of the canvas glow buffer.
const glowRadius = 8

// Canvas is a persistent offscreen surface for the raster renderer. Its
// contents survive between frames so trails accumulate; coordinates passed
// to it are logical and scaled by the pixel density internally.
type Canvas struct {
	image    *ebiten.Image
	glow     *ebiten.Image
	chain    *glowChain
	face     *GlyphFace
	dot      *ebiten.Image
	w, h     int
	density  float64
	cell     float64
	glowUsed bool

	imgOp  ebiten.DrawImageOptions
	textOp text.DrawOptions
}

// NewCanvas creates a canvas of w x h logical pixels. glyphSize is the
// logical glyph cell; withGlow allocates the glow buffer.
func NewCanvas(w, h int, density, glyphSize float64, withGlow bool) (*Canvas, error) {
	if density <= 0 {
		density = 1
	}
	face, err := defaultGlyphFace(glyphSize * density)
	if err != nil {
		return nil, err
	}
	c := &Canvas{
		face:    face,
		density: density,
		cell:    glyphSize * density,
		dot:     newDotImage(dotRadius),
	}
	if withGlow {
		c.chain = newGlowChain(glowRadius)
	}
	c.Resize(w, h)
	return c, nil
}

// Size returns the logical size.
func (c *Canvas) Size() (int, int) { return c.w, c.h }

// Image returns the backing image.
func (c *Canvas) Image() *ebiten.Image { return c.image }

// Resize deallocates the old buffers and creates new ones at the given
// logical size. A zero-area size leaves the canvas without buffers.
func (c *Canvas) Resize(w, h int) {
	c.release()
	c.w, c.h = max(w, 0), max(h, 0)
	if c.w == 0 || c.h == 0 {
		return
	}
	pw := int(math.Ceil(float64(c.w) * c.density))
	ph := int(math.Ceil(float64(c.h) * c.density))
	c.image = ebiten.NewImage(pw, ph)
	if c.chain != nil {
		c.glow = ebiten.NewImage(pw, ph)
		c.chain.resize(pw, ph)
	}
}

// Fade covers the canvas with bg at the given opacity. Opacity 1 is a hard
// clear.
func (c *Canvas) Fade(bg Color, alpha float64) {
	if c.image == nil {
		return
	}
	if alpha >= 1 {
		c.image.Fill(bg.WithAlpha(1).toRGBA())
		return
	}
	b := c.image.Bounds()
	op := &c.imgOp
	op.GeoM.Reset()
	op.GeoM.Scale(float64(b.Dx()), float64(b.Dy()))
	op.ColorScale.Reset()
	op.ColorScale.Scale(bg.WithAlpha(alpha).premultiplied())
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterNearest
	c.image.DrawImage(WhitePixel, op)
}

// Glyph draws r with its cell's top-left at (x, y), scaled about the cell
// center. A glow color with non-zero alpha also draws into the glow buffer.
func (c *Canvas) Glyph(r rune, x, y, scale float64, fill, glow Color) {
	if c.image == nil {
		return
	}
	s := c.face.glyphString(r)
	c.setGlyphGeoM(x, y, scale)
	c.textOp.ColorScale.Reset()
	c.textOp.ColorScale.Scale(fill.premultiplied())
	c.textOp.Blend = ebiten.BlendSourceOver
	text.Draw(c.image, s, c.face.face, &c.textOp)

	if glow.A > 0 && c.glow != nil {
		c.textOp.ColorScale.Reset()
		c.textOp.ColorScale.Scale(glow.premultiplied())
		c.textOp.Blend = ebiten.BlendLighter
		text.Draw(c.glow, s, c.face.face, &c.textOp)
		c.glowUsed = true
	}
}

func (c *Canvas) setGlyphGeoM(x, y, scale float64) {
	half := c.cell / 2
	dx, dy := c.face.cellOffset(c.cell)
	g := &c.textOp.GeoM
	g.Reset()
	g.Translate(dx-half, dy-half)
	if scale != 1 {
		g.Scale(scale, scale)
	}
	g.Translate(x*c.density+half, y*c.density+half)
}

// Dot draws a soft dot of the given logical radius centered at (x, y).
func (c *Canvas) Dot(x, y, radius float64, fill, glow Color) {
	if c.image == nil || radius <= 0 {
		return
	}
	c.drawDot(c.image, x, y, radius, fill)
	if glow.A > 0 && c.glow != nil {
		c.drawDot(c.glow, x, y, radius*2.5, glow)
		c.glowUsed = true
	}
}

func (c *Canvas) drawDot(dst *ebiten.Image, x, y, radius float64, col Color) {
	r := radius * c.density
	op := &c.imgOp
	op.GeoM.Reset()
	op.GeoM.Scale(r/dotRadius, r/dotRadius)
	op.GeoM.Translate(x*c.density-r, y*c.density-r)
	op.ColorScale.Reset()
	op.ColorScale.Scale(col.premultiplied())
	op.Blend = ebiten.BlendLighter
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(c.dot, op)
}

// Flush composites the canvas onto dst, scaled to logical size, followed by
// the blurred glow buffer. The glow buffer is cleared afterwards; the
// canvas is not.
func (c *Canvas) Flush(dst *ebiten.Image) {
	if c.image == nil || dst == nil {
		return
	}
	op := &c.imgOp
	op.GeoM.Reset()
	op.GeoM.Scale(1/c.density, 1/c.density)
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(c.image, op)

	if c.glowUsed {
		c.chain.composite(c.glow, dst, 1/c.density)
		c.glow.Clear()
		c.glowUsed = false
	}
}

func (c *Canvas) release() {
	if c.image != nil {
		c.image.Deallocate()
		c.image = nil
	}
	if c.glow != nil {
		c.glow.Deallocate()
		c.glow = nil
	}
	if c.chain != nil {
		c.chain.release()
	}
	c.glowUsed = false
}

// Dispose deallocates every image. The canvas must not be used afterwards.
func (c *Canvas) Dispose() {
	c.release()
	if c.dot != nil {
		c.dot.Deallocate()
		c.dot = nil
	}
}

// dotPixels returns the premultiplied RGBA pixels of a feathered white
// circle with smoothstep falloff.
func dotPixels(radius float64) (pix []byte, size int) {
	size = max(int(math.Ceil(radius*2)), 1)
	pix = make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - radius
			dy := float64(y) + 0.5 - radius
			dist := math.Sqrt(dx*dx+dy*dy) / radius

			var alpha float64
			if dist < 1 {
				t := 1 - dist
				alpha = t * t * (3 - 2*t)
			}

			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off+0] = a
			pix[off+1] = a
			pix[off+2] = a
			pix[off+3] = a
		}
	}
	return pix, size
}

func newDotImage(radius float64) *ebiten.Image {
	pix, size := dotPixels(radius)
	img := ebiten.NewImage(size, size)
	img.WritePixels(pix)
	return img
}
