package ambient

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// glowChain spreads the light in a glow buffer by sampling it down a chain
// of half-size levels and back up with linear filtering, then adds the
// result onto the destination. Levels live as long as the buffer they blur
// and are reallocated with it.
type glowChain struct {
	depth  int
	levels []*ebiten.Image
	op     ebiten.DrawImageOptions
}

// newGlowChain returns a chain with one level per doubling of radius. A
// radius of zero composites the buffer unblurred.
func newGlowChain(radius int) *glowChain {
	depth := 0
	if radius > 0 {
		depth = max(int(math.Ceil(math.Log2(float64(radius)))), 1)
	}
	return &glowChain{depth: depth}
}

// resize allocates the levels for a w x h buffer.
func (g *glowChain) resize(w, h int) {
	g.release()
	for i := 0; i < g.depth; i++ {
		w, h = max(w/2, 1), max(h/2, 1)
		g.levels = append(g.levels, ebiten.NewImage(w, h))
	}
}

// composite blurs src through the levels and adds it onto dst. scale maps
// src pixels to dst pixels.
func (g *glowChain) composite(src, dst *ebiten.Image, scale float64) {
	cur := src
	for _, lv := range g.levels {
		g.resample(lv, cur)
		cur = lv
	}
	for i := len(g.levels) - 2; i >= 0; i-- {
		g.resample(g.levels[i], cur)
		cur = g.levels[i]
	}

	sb, cb := src.Bounds(), cur.Bounds()
	op := &g.op
	op.GeoM.Reset()
	op.GeoM.Scale(scale*float64(sb.Dx())/float64(cb.Dx()), scale*float64(sb.Dy())/float64(cb.Dy()))
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendLighter
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(cur, op)
}

// resample clears dst and stretches src over it.
func (g *glowChain) resample(dst, src *ebiten.Image) {
	db, sb := dst.Bounds(), src.Bounds()
	dst.Clear()
	op := &g.op
	op.GeoM.Reset()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

func (g *glowChain) release() {
	for _, lv := range g.levels {
		lv.Deallocate()
	}
	g.levels = g.levels[:0]
}
