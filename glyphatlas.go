package ambient

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// DefaultAtlasPage is the side length of a glyph atlas page in pixels.
const DefaultAtlasPage = 1024

// glyphKey identifies one rasterized glyph cell.
type glyphKey struct {
	r     rune
	color uint32 // packed 8-bit RGB
}

func packRGB(c Color) uint32 {
	return uint32(clamp01(c.R)*255)<<16 | uint32(clamp01(c.G)*255)<<8 | uint32(clamp01(c.B)*255)
}

// atlasRegion is a cell's source rectangle on the atlas page.
type atlasRegion struct {
	x0, y0, x1, y1 float32
}

// GlyphAtlas rasterizes glyphs once into a single page of fixed-size cells.
// Cell 0 holds the soft dot used for particles and glow halos.
type GlyphAtlas struct {
	page    *ebiten.Image
	face    *GlyphFace
	cell    int
	cols    int
	cells   int
	next    int
	regions map[glyphKey]atlasRegion
	dot     atlasRegion
	uploads int
	textOp  text.DrawOptions
}

// NewGlyphAtlas creates an atlas page of pageSize pixels with square cells
// sized for face.
func NewGlyphAtlas(face *GlyphFace, pageSize int) *GlyphAtlas {
	cell := int(face.Size()) + 2
	cols := max(pageSize/cell, 1)
	a := &GlyphAtlas{
		page:    ebiten.NewImage(pageSize, pageSize),
		face:    face,
		cell:    cell,
		cols:    cols,
		cells:   cols * cols,
		regions: make(map[glyphKey]atlasRegion, 256),
	}
	a.writeDot()
	return a
}

// Page returns the atlas image.
func (a *GlyphAtlas) Page() *ebiten.Image { return a.page }

// Cell returns the cell side length in pixels.
func (a *GlyphAtlas) Cell() int { return a.cell }

// Uploads returns the number of glyphs rasterized since creation.
func (a *GlyphAtlas) Uploads() int { return a.uploads }

// Len returns the number of cached glyphs.
func (a *GlyphAtlas) Len() int { return len(a.regions) }

// Dot returns the soft-dot region.
func (a *GlyphAtlas) Dot() atlasRegion { return a.dot }

func (a *GlyphAtlas) cellRect(i int) image.Rectangle {
	x := (i % a.cols) * a.cell
	y := (i / a.cols) * a.cell
	return image.Rect(x, y, x+a.cell, y+a.cell)
}

func regionOf(r image.Rectangle) atlasRegion {
	return atlasRegion{float32(r.Min.X), float32(r.Min.Y), float32(r.Max.X), float32(r.Max.Y)}
}

func (a *GlyphAtlas) writeDot() {
	rect := a.cellRect(0)
	pix, size := dotPixels(float64(a.cell) / 2)
	sub := a.page.SubImage(image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+size, rect.Min.Y+size)).(*ebiten.Image)
	sub.WritePixels(pix)
	a.dot = regionOf(rect)
	a.next = 1
}

// Glyph returns the region for r drawn in c, rasterizing it on first use.
// ok is false when the page is full.
func (a *GlyphAtlas) Glyph(r rune, c Color) (region atlasRegion, ok bool) {
	key := glyphKey{r: r, color: packRGB(c)}
	if reg, hit := a.regions[key]; hit {
		return reg, true
	}
	if a.next >= a.cells {
		return atlasRegion{}, false
	}
	rect := a.cellRect(a.next)
	a.next++

	dx, dy := a.face.cellOffset(float64(a.cell))
	op := &a.textOp
	op.GeoM.Reset()
	op.GeoM.Translate(float64(rect.Min.X)+dx, float64(rect.Min.Y)+dy)
	op.ColorScale.Reset()
	op.ColorScale.Scale(c.WithAlpha(1).premultiplied())
	sub := a.page.SubImage(rect).(*ebiten.Image)
	text.Draw(sub, a.face.glyphString(r), a.face.face, op)

	reg := regionOf(rect)
	a.regions[key] = reg
	a.uploads++
	return reg, true
}

// Invalidate drops every cached glyph. The dot cell is rewritten.
func (a *GlyphAtlas) Invalidate() {
	a.page.Clear()
	clear(a.regions)
	a.writeDot()
}

// Dispose deallocates the page.
func (a *GlyphAtlas) Dispose() {
	if a.page != nil {
		a.page.Deallocate()
		a.page = nil
	}
	a.regions = nil
}
