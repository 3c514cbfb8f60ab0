package ambient

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Logical draw layers of the retained renderer, in draw order.
const (
	layerBackground = iota
	layerForeground
	layerAdditive // particles and glow halos
	layerCount
)

const haloAlpha = 0.35

// quadLayer is a pre-allocated vertex buffer drawn with one DrawTriangles32
// call. Indices are static; only the first n quads are submitted.
type quadLayer struct {
	verts []ebiten.Vertex
	inds  []uint32
	n     int
	blend BlendMode
}

func newQuadLayer(capacity int, blend BlendMode) quadLayer {
	l := quadLayer{
		verts: make([]ebiten.Vertex, capacity*4),
		inds:  make([]uint32, capacity*6),
		blend: blend,
	}
	for q := 0; q < capacity; q++ {
		b := uint32(q * 4)
		i := q * 6
		l.inds[i+0] = b + 0
		l.inds[i+1] = b + 1
		l.inds[i+2] = b + 2
		l.inds[i+3] = b + 1
		l.inds[i+4] = b + 3
		l.inds[i+5] = b + 2
	}
	return l
}

// cap returns the number of quads the layer can hold.
func (l *quadLayer) cap() int { return len(l.verts) / 4 }

// push writes one axis-aligned quad with a premultiplied vertex color.
func (l *quadLayer) push(x0, y0, x1, y1 float64, src atlasRegion, cr, cg, cb, ca float32) bool {
	if l.n >= l.cap() {
		return false
	}
	v := l.verts[l.n*4 : l.n*4+4]
	dx := [4]float32{float32(x0), float32(x1), float32(x0), float32(x1)}
	dy := [4]float32{float32(y0), float32(y0), float32(y1), float32(y1)}
	sx := [4]float32{src.x0, src.x1, src.x0, src.x1}
	sy := [4]float32{src.y0, src.y0, src.y1, src.y1}
	for j := 0; j < 4; j++ {
		v[j] = ebiten.Vertex{
			DstX:   dx[j],
			DstY:   dy[j],
			SrcX:   sx[j],
			SrcY:   sy[j],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}
	l.n++
	return true
}

// RetainedRenderer keeps a fixed pool of glyph and particle quads, rewrites
// their vertices each frame, and submits one draw call per non-empty layer.
// Glyph textures come from a shared atlas keyed by glyph and color.
type RetainedRenderer struct {
	atlas   *GlyphAtlas
	layers  [layerCount]quadLayer
	palette Palette
	vp      Viewport
	depth   int

	// per glyph slot (column*depth + k): last key and its atlas region
	slotKeys    []glyphKey
	slotRegions []atlasRegion

	bgOp     ebiten.DrawImageOptions
	triOp    ebiten.DrawTrianglesOptions
	stats    RenderStats
	uploads0 int
	disposed bool
}

// NewRetainedRenderer allocates every quad the tier can need.
func NewRetainedRenderer(tier QualityTier, vp Viewport, p Palette, glyphSize float64) (*RetainedRenderer, error) {
	face, err := defaultGlyphFace(glyphSize * tier.PixelDensity)
	if err != nil {
		return nil, err
	}
	slots := tier.EntityCount * tier.TrailDepth
	r := &RetainedRenderer{
		atlas:       NewGlyphAtlas(face, DefaultAtlasPage),
		palette:     p,
		vp:          vp,
		depth:       tier.TrailDepth,
		slotKeys:    make([]glyphKey, slots),
		slotRegions: make([]atlasRegion, slots),
	}
	r.layers[layerBackground] = newQuadLayer(slots, BlendNormal)
	r.layers[layerForeground] = newQuadLayer(slots, BlendNormal)
	r.layers[layerAdditive] = newQuadLayer(tier.EntityCount*(HeadBand+1), BlendAdd)
	r.resetSlots()
	r.triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	r.triOp.Filter = ebiten.FilterLinear
	return r, nil
}

func (r *RetainedRenderer) resetSlots() {
	for i := range r.slotKeys {
		r.slotKeys[i] = glyphKey{r: -1}
	}
}

// Atlas returns the glyph atlas.
func (r *RetainedRenderer) Atlas() *GlyphAtlas { return r.atlas }

// DrawFrame implements Renderer.
func (r *RetainedRenderer) DrawFrame(f *Frame) { r.SyncScene(f) }

// Present implements Renderer.
func (r *RetainedRenderer) Present(dst *ebiten.Image) { r.RenderScene(dst) }

// SyncScene writes the frame into the quad pool. It creates no images
// beyond first-use glyph rasterization into the atlas.
func (r *RetainedRenderer) SyncScene(f *Frame) {
	r.stats = RenderStats{}
	for i := range r.layers {
		r.layers[i].n = 0
	}
	if r.disposed {
		return
	}
	r.uploads0 = r.atlas.Uploads()
	switch f.Kind {
	case KindColumn:
		r.syncColumns(f)
	case KindParticle:
		r.syncParticles(f)
	}
	r.stats.AtlasUploads = r.atlas.Uploads() - r.uploads0
}

func (r *RetainedRenderer) syncColumns(f *Frame) {
	height := float64(f.Viewport.Height)
	pitch := f.Pitch
	glow := f.Tier.GlowEnabled && r.palette.GlowIntensity > 0
	dot := r.atlas.Dot()

	for i := range f.Columns {
		c := &f.Columns[i]
		if c.Inert(height, pitch) {
			r.stats.Skipped++
			continue
		}
		layer := &r.layers[layerForeground]
		if c.Layer == LayerBackground {
			layer = &r.layers[layerBackground]
		}
		base := r.palette.Slot(c.Color)
		x := float64(c.X) * pitch
		head := c.HeadY(pitch)
		depth := min(len(c.Glyphs), r.depth)

		for k := depth - 1; k >= 0; k-- {
			y := head - float64(k)*pitch
			if y < -pitch || y > height {
				continue
			}
			st, ok := StyleGlyph(k, depth, base, c.Brightness)
			if !ok {
				continue
			}
			slot := i*r.depth + k
			if slot >= len(r.slotKeys) {
				continue
			}
			key := glyphKey{r: c.Glyphs[k], color: packRGB(st.Color)}
			if r.slotKeys[slot] != key {
				reg, ok := r.atlas.Glyph(key.r, st.Color)
				r.stats.Lookups++
				if !ok {
					Logger().Debug("glyph atlas full", "glyph", string(key.r))
					r.slotKeys[slot] = glyphKey{r: -1}
					continue
				}
				r.slotKeys[slot] = key
				r.slotRegions[slot] = reg
			}

			s := pitch * st.Scale
			cx, cy := x+pitch/2, y+pitch/2
			a := float32(st.Color.A * f.Intensity)
			if layer.push(cx-s/2, cy-s/2, cx+s/2, cy+s/2, r.slotRegions[slot], a, a, a, a) {
				r.stats.Glyphs++
			}

			if glow && st.Glow > 0 {
				g := r.palette.Glow.WithAlpha(st.Glow * r.palette.GlowIntensity * f.Intensity * st.Color.A * haloAlpha)
				cr, cg, cb, ca := g.premultiplied()
				r.layers[layerAdditive].push(cx-pitch, cy-pitch, cx+pitch, cy+pitch, dot, cr, cg, cb, ca)
			}
		}
	}
}

func (r *RetainedRenderer) syncParticles(f *Frame) {
	dot := r.atlas.Dot()
	layer := &r.layers[layerAdditive]
	for i := range f.Particles {
		p := &f.Particles[i]
		if !p.Live() {
			r.stats.Skipped++
			continue
		}
		c := r.palette.Slot(p.Color).WithAlpha(p.Alpha * f.Intensity)
		cr, cg, cb, ca := c.premultiplied()
		if layer.push(p.X-p.Size, p.Y-p.Size, p.X+p.Size, p.Y+p.Size, dot, cr, cg, cb, ca) {
			r.stats.Dots++
		}
	}
}

// RenderScene fills dst with the palette background and issues one
// DrawTriangles32 per non-empty layer.
func (r *RetainedRenderer) RenderScene(dst *ebiten.Image) {
	if dst == nil || r.disposed {
		return
	}
	b := dst.Bounds()
	op := &r.bgOp
	op.GeoM.Reset()
	op.GeoM.Scale(float64(b.Dx()), float64(b.Dy()))
	op.GeoM.Translate(float64(b.Min.X), float64(b.Min.Y))
	op.ColorScale.Reset()
	op.ColorScale.Scale(r.palette.Background.WithAlpha(1).premultiplied())
	dst.DrawImage(WhitePixel, op)
	r.stats.DrawCalls++

	page := r.atlas.Page()
	for i := range r.layers {
		l := &r.layers[i]
		if l.n == 0 {
			continue
		}
		r.triOp.Blend = l.blend.EbitenBlend()
		dst.DrawTriangles32(l.verts[:l.n*4], l.inds[:l.n*6], page, &r.triOp)
		r.stats.DrawCalls++
	}
}

// LayerQuads returns the number of quads submitted for each layer in the
// last SyncScene.
func (r *RetainedRenderer) LayerQuads() [layerCount]int {
	var out [layerCount]int
	for i := range r.layers {
		out[i] = r.layers[i].n
	}
	return out
}

// Resize records the viewport. Quads are positioned per frame, so nothing
// is reallocated.
func (r *RetainedRenderer) Resize(vp Viewport) {
	if vp.Empty() {
		return
	}
	r.vp = vp
}

// SetPalette invalidates the atlas; glyphs are re-rasterized on demand in
// the new colors.
func (r *RetainedRenderer) SetPalette(p Palette) {
	r.palette = p
	if r.disposed {
		return
	}
	r.atlas.Invalidate()
	r.resetSlots()
}

// Stats implements Renderer.
func (r *RetainedRenderer) Stats() RenderStats { return r.stats }

// Dispose releases the atlas and the quad pool.
func (r *RetainedRenderer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.atlas.Dispose()
	for i := range r.layers {
		r.layers[i] = quadLayer{}
	}
	r.slotKeys = nil
	r.slotRegions = nil
}
