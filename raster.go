package ambient

import "github.com/hajimehoshi/ebiten/v2"

// Raster tuning.
const (
	// TrailFadeAlpha is the background opacity painted over the canvas each
	// frame. Lower values leave longer trails.
	TrailFadeAlpha = 0.08
	// HeadBand is the number of glyphs after the head drawn brighter.
	HeadBand = 3

	headScale    = 1.15
	headWhiteMix = 0.6
	nearBrighten = 1.35
	headGlow     = 1.0
	nearGlow     = 0.6
	particleGlow = 0.5
)

// Renderer draws one Frame per tick. Each engine owns one renderer.
type Renderer interface {
	// DrawFrame renders f into the renderer's own surface or scene.
	DrawFrame(f *Frame)
	// Present composites the rendered output onto dst. A nil dst is a no-op.
	Present(dst *ebiten.Image)
	// Resize adapts surfaces to a non-empty viewport.
	Resize(vp Viewport)
	// SetPalette updates palette-dependent resources.
	SetPalette(p Palette)
	// Stats returns counters for the last DrawFrame.
	Stats() RenderStats
	// Dispose releases every GPU resource. The renderer is unusable after.
	Dispose()
}

// RenderStats are per-frame draw counters.
type RenderStats struct {
	DrawCalls    int
	Glyphs       int
	Dots         int
	Skipped      int // inert or off-screen entities
	AtlasUploads int
	Lookups      int
}

// Surface is the immediate-mode target of the raster renderer. Coordinates
// are logical pixels.
type Surface interface {
	Size() (w, h int)
	Resize(w, h int)
	// Fade covers the surface with bg at the given opacity.
	Fade(bg Color, alpha float64)
	// Glyph draws r with its cell's top-left at (x, y). A glow with zero
	// alpha draws no glow.
	Glyph(r rune, x, y, scale float64, fill, glow Color)
	// Dot draws a soft dot centered at (x, y).
	Dot(x, y, radius float64, fill, glow Color)
	// Flush composites the surface onto dst.
	Flush(dst *ebiten.Image)
	Dispose()
}

// GlyphBand classifies a glyph position within a column.
type GlyphBand uint8

const (
	BandHead GlyphBand = iota
	BandNear
	BandTail
)

// BandOf returns the band of glyph k, where k = 0 is the head.
func BandOf(k int) GlyphBand {
	switch {
	case k == 0:
		return BandHead
	case k <= HeadBand:
		return BandNear
	default:
		return BandTail
	}
}

// GlyphStyle is the resolved look of one column glyph.
type GlyphStyle struct {
	Band  GlyphBand
	Scale float64
	Color Color   // straight alpha; A is the final opacity
	Glow  float64 // glow strength before the palette's GlowIntensity
}

// StyleGlyph resolves the style of glyph k in a column of the given depth
// drawn with base color at the given brightness. ok is false when the glyph
// is fully transparent.
func StyleGlyph(k, depth int, base Color, brightness float64) (s GlyphStyle, ok bool) {
	s.Band = BandOf(k)
	s.Scale = 1
	switch s.Band {
	case BandHead:
		s.Scale = headScale
		s.Color = base.Mix(ColorWhite, headWhiteMix).WithAlpha(brightness)
		s.Glow = headGlow
	case BandNear:
		s.Color = base.Brighten(nearBrighten).WithAlpha(brightness)
		s.Glow = nearGlow
	default:
		a := (1 - float64(k)/float64(depth)) * brightness
		s.Color = base.WithAlpha(a)
	}
	return s, s.Color.A > 0
}

// RasterRenderer draws frames through a Surface with trail fade.
type RasterRenderer struct {
	surface Surface
	palette Palette
	stats   RenderStats
	warned  bool
}

// NewRasterRenderer creates a raster renderer over s.
func NewRasterRenderer(s Surface, p Palette) *RasterRenderer {
	return &RasterRenderer{surface: s, palette: p}
}

// Surface returns the renderer's surface.
func (r *RasterRenderer) Surface() Surface { return r.surface }

func (r *RasterRenderer) available() bool {
	if r.surface != nil {
		if w, h := r.surface.Size(); w > 0 && h > 0 {
			return true
		}
	}
	if !r.warned {
		r.warned = true
		Logger().Warn("raster surface unavailable, drawing disabled")
	}
	return false
}

// DrawFrame fades the surface and draws every live entity.
func (r *RasterRenderer) DrawFrame(f *Frame) {
	r.stats = RenderStats{}
	if !r.available() {
		return
	}
	fade := 1.0
	if f.Trail {
		fade = TrailFadeAlpha
	}
	r.surface.Fade(r.palette.Background, fade)
	r.stats.DrawCalls++

	switch f.Kind {
	case KindColumn:
		r.drawColumns(f)
	case KindParticle:
		r.drawParticles(f)
	}
}

func (r *RasterRenderer) glowColor(f *Frame, strength float64) Color {
	if !f.Tier.GlowEnabled || strength <= 0 {
		return Color{}
	}
	return r.palette.Glow.WithAlpha(strength * r.palette.GlowIntensity * f.Intensity)
}

func (r *RasterRenderer) drawColumns(f *Frame) {
	w, h := r.surface.Size()
	height := float64(f.Viewport.Height)
	pitch := f.Pitch
	for i := range f.Columns {
		c := &f.Columns[i]
		if c.Inert(height, pitch) {
			r.stats.Skipped++
			continue
		}
		x := float64(c.X) * pitch
		if x >= float64(w) {
			r.stats.Skipped++
			continue
		}
		base := r.palette.Slot(c.Color)
		head := c.HeadY(pitch)
		depth := len(c.Glyphs)
		for k := depth - 1; k >= 0; k-- {
			y := head - float64(k)*pitch
			if y < -pitch || y > float64(h) {
				continue
			}
			st, ok := StyleGlyph(k, depth, base, c.Brightness)
			if !ok {
				continue
			}
			st.Color.A *= f.Intensity
			r.surface.Glyph(c.Glyphs[k], x, y, st.Scale, st.Color, r.glowColor(f, st.Glow))
			r.stats.Glyphs++
			r.stats.DrawCalls++
		}
	}
}

func (r *RasterRenderer) drawParticles(f *Frame) {
	for i := range f.Particles {
		p := &f.Particles[i]
		if !p.Live() {
			r.stats.Skipped++
			continue
		}
		fill := r.palette.Slot(p.Color).WithAlpha(p.Alpha * f.Intensity)
		r.surface.Dot(p.X, p.Y, p.Size, fill, r.glowColor(f, particleGlow*p.Alpha))
		r.stats.Dots++
		r.stats.DrawCalls++
	}
}

// Present flushes the surface onto dst.
func (r *RasterRenderer) Present(dst *ebiten.Image) {
	if dst == nil || r.surface == nil {
		return
	}
	r.surface.Flush(dst)
}

// Resize resizes the surface. Zero-area viewports are ignored.
func (r *RasterRenderer) Resize(vp Viewport) {
	if vp.Empty() || r.surface == nil {
		return
	}
	r.surface.Resize(vp.Width, vp.Height)
	r.warned = false
}

// SetPalette switches the palette used from the next frame on.
func (r *RasterRenderer) SetPalette(p Palette) { r.palette = p }

// Stats returns counters for the last DrawFrame.
func (r *RasterRenderer) Stats() RenderStats { return r.stats }

// Dispose releases the surface.
func (r *RasterRenderer) Dispose() {
	if r.surface != nil {
		r.surface.Dispose()
		r.surface = nil
	}
}
