package ambient

import (
	"math"
	"math/rand/v2"
)

// Column rain tuning.
const (
	// ResetChance is the probability that a column whose head just crossed
	// the bottom bound restarts immediately instead of draining off screen.
	ResetChance = 0.025
	// BoostDrag is the per-tick multiplier applied to pointer speed boosts.
	BoostDrag = 0.92
	// MaxBoost caps the accumulated pointer speed boost in rows per tick.
	MaxBoost = 1.5
	// BoostStrength is the boost applied at the pointer position.
	BoostStrength = 0.6
	// BrightnessDecay is subtracted from a column's brightness every tick.
	BrightnessDecay = 0.0008
	// GlitchScale converts a column's GlitchRate into a per-glyph per-tick
	// replacement probability.
	GlitchScale = 0.02
	// InfluenceRadius is the pointer perturbation radius in pixels.
	InfluenceRadius = 120.0

	backgroundShare = 0.3
)

// Layer distributions. Background columns are slower and dimmer.
var (
	foregroundSpeed      = Range{0.6, 1.2}
	foregroundBrightness = Range{0.75, 1.0}
	backgroundSpeed      = Range{0.25, 0.55}
	backgroundBrightness = Range{0.25, 0.5}
	glitchRates          = Range{0.1, 1.0}
)

// DefaultGlyphs is the symbol set used by rain columns. Every symbol is
// covered by the Go Mono face.
var DefaultGlyphs = []rune("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ@#$%&*+=<>?:λΣΞΠΦΨΩДЖЯ")

// ColumnRain is the column entity store: one pre-allocated column per
// column index, respawned in place.
type ColumnRain struct {
	rng         *rand.Rand
	pitch       float64
	glyphs      []rune
	tier        QualityTier
	vp          Viewport
	columns     []Column
	resetChance float64
	stats       SimStats
}

// NewColumnRain creates an empty column store. pitch is the glyph cell size
// in pixels.
func NewColumnRain(rng *rand.Rand, pitch float64, glyphs []rune) *ColumnRain {
	if pitch <= 0 {
		pitch = 16
	}
	if len(glyphs) == 0 {
		glyphs = DefaultGlyphs
	}
	return &ColumnRain{
		rng:         rng,
		pitch:       pitch,
		glyphs:      glyphs,
		resetChance: ResetChance,
	}
}

// Kind returns KindColumn.
func (r *ColumnRain) Kind() EntityKind { return KindColumn }

// Len returns the number of columns.
func (r *ColumnRain) Len() int { return len(r.columns) }

// Columns returns the live store. Callers must not retain it across ticks.
func (r *ColumnRain) Columns() []Column { return r.columns }

// Stats returns cumulative counters.
func (r *ColumnRain) Stats() SimStats {
	s := r.stats
	s.Live = 0
	h := float64(r.vp.Height)
	for i := range r.columns {
		if !r.columns[i].Inert(h, r.pitch) {
			s.Live++
		}
	}
	return s
}

// Initialize allocates one column per column index, capped by the tier.
func (r *ColumnRain) Initialize(tier QualityTier, vp Viewport) {
	r.tier = tier
	r.vp = vp
	n := r.columnCount(vp)
	r.columns = make([]Column, 0, n)
	for i := 0; i < n; i++ {
		r.columns = append(r.columns, r.newColumn(i))
	}
}

func (r *ColumnRain) columnCount(vp Viewport) int {
	if vp.Empty() || !r.tier.Enabled() {
		return 0
	}
	return min(int(float64(vp.Width)/r.pitch), r.tier.EntityCount)
}

func (r *ColumnRain) newColumn(x int) Column {
	c := Column{
		X:      x,
		Glyphs: make([]rune, r.tier.TrailDepth),
		Layer:  LayerForeground,
	}
	if r.rng.Float64() < backgroundShare {
		c.Layer = LayerBackground
	}
	r.respawn(&c)
	return c
}

// respawn places c above the viewport, staggered by a random number of rows
// so columns desynchronize, and re-rolls speed, brightness, color and glyphs.
func (r *ColumnRain) respawn(c *Column) {
	rows := float64(r.vp.Height) / r.pitch
	stagger := r.rng.Float64() * (rows/2 + float64(len(c.Glyphs)))
	c.Y = -stagger - 1
	c.Boost = 0
	c.crossed = false
	if c.Layer == LayerBackground {
		c.FallSpeed = backgroundSpeed.Random(r.rng)
		c.Brightness = backgroundBrightness.Random(r.rng)
	} else {
		c.FallSpeed = foregroundSpeed.Random(r.rng)
		c.Brightness = foregroundBrightness.Random(r.rng)
	}
	c.GlitchRate = glitchRates.Random(r.rng)
	c.Color = pickSlot(r.rng)
	for k := range c.Glyphs {
		c.Glyphs[k] = r.randomGlyph()
	}
	r.stats.Respawns++
}

func (r *ColumnRain) randomGlyph() rune {
	return r.glyphs[r.rng.IntN(len(r.glyphs))]
}

// Advance moves every column by dt ticks.
func (r *ColumnRain) Advance(dt float64) {
	h := float64(r.vp.Height)
	drag := decay(BoostDrag, dt)
	for i := range r.columns {
		r.advance(&r.columns[i], dt, h, drag)
	}
}

func (r *ColumnRain) advance(c *Column, dt, h, drag float64) {
	prevHead := c.HeadY(r.pitch)
	prevRow := math.Floor(c.Y)

	c.Y += (c.FallSpeed + c.Boost) * dt
	c.Boost *= drag
	if c.Boost < 1e-3 {
		c.Boost = 0
	}
	c.Brightness = max(c.Brightness-BrightnessDecay*dt, 0)

	// The head writes a fresh glyph into every row it enters; the rest of
	// the buffer slides down behind it.
	if shift := int(math.Floor(c.Y) - prevRow); shift > 0 {
		n := len(c.Glyphs)
		if shift >= n {
			shift = n
		} else {
			copy(c.Glyphs[shift:], c.Glyphs[:n-shift])
		}
		for k := 0; k < shift; k++ {
			c.Glyphs[k] = r.randomGlyph()
		}
	}

	p := c.GlitchRate * GlitchScale * dt
	for k := range c.Glyphs {
		if r.rng.Float64() < p {
			c.Glyphs[k] = r.randomGlyph()
			r.stats.Glitches++
		}
	}

	head := c.HeadY(r.pitch)
	switch {
	case head <= h:
		c.crossed = false
	case !c.crossed && prevHead <= h:
		c.crossed = true
		r.stats.Crossings++
		r.stats.Rolls++
		if r.rng.Float64() < r.resetChance {
			r.stats.Resets++
			r.respawn(c)
			return
		}
	}

	if c.Inert(h, r.pitch) {
		r.respawn(c)
	}
}

// Resize recomputes the column count. Growth appends fresh columns,
// shrinking truncates; surviving columns keep their state.
func (r *ColumnRain) Resize(vp Viewport) {
	if vp.Empty() {
		return
	}
	r.vp = vp
	n := r.columnCount(vp)
	switch {
	case n < len(r.columns):
		r.columns = r.columns[:n]
	case n > len(r.columns):
		for i := len(r.columns); i < n; i++ {
			r.columns = append(r.columns, r.newColumn(i))
		}
	}
}

// Perturb boosts the fall speed of columns near the pointer.
func (r *ColumnRain) Perturb(p PointerSample) {
	if p.Displacement() == 0 {
		return
	}
	for i := range r.columns {
		c := &r.columns[i]
		cx := (float64(c.X) + 0.5) * r.pitch
		dx := math.Abs(cx - p.X)
		if dx > InfluenceRadius {
			continue
		}
		head := c.HeadY(r.pitch)
		tail := head - float64(len(c.Glyphs))*r.pitch
		if p.Y < tail-InfluenceRadius || p.Y > head+InfluenceRadius {
			continue
		}
		c.Boost = min(c.Boost+BoostStrength*(1-dx/InfluenceRadius), MaxBoost)
	}
}

// Repaint re-rolls every column's palette slot.
func (r *ColumnRain) Repaint() {
	for i := range r.columns {
		r.columns[i].Color = pickSlot(r.rng)
	}
}

// Snapshot exposes the columns to the renderer.
func (r *ColumnRain) Snapshot(f *Frame) {
	f.Kind = KindColumn
	f.Columns = r.columns
	f.Particles = nil
	f.Pitch = r.pitch
	f.Viewport = r.vp
}
