package ambient

import (
	"fmt"
	"math"
	"strings"
)

// EntityKind tags which entity shape a simulation owns.
type EntityKind uint8

const (
	KindColumn   EntityKind = iota // falling glyph columns
	KindParticle                   // free particles spawned by pointer motion
)

// Layer is the depth band of a column entity.
type Layer uint8

const (
	LayerForeground Layer = iota
	LayerBackground
)

// Variant selects the entity update strategy.
type Variant uint8

const (
	VariantRain   Variant = iota // column entities
	VariantSparks                // particle entities
)

// Kind returns the entity kind simulated by v.
func (v Variant) Kind() EntityKind {
	if v == VariantSparks {
		return KindParticle
	}
	return KindColumn
}

func (v Variant) String() string {
	switch v {
	case VariantRain:
		return "rain"
	case VariantSparks:
		return "sparks"
	default:
		return "unknown"
	}
}

// ParseVariant parses "rain" or "sparks".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rain", "":
		return VariantRain, nil
	case "sparks", "particles":
		return VariantSparks, nil
	default:
		return 0, fmt.Errorf("unknown variant %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	p, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Column is one falling glyph column. Glyphs[0] is the head.
type Column struct {
	X          int
	Y          float64 // head row; screen y = Y * pitch
	FallSpeed  float64 // rows per tick
	Boost      float64 // transient pointer boost, decays by BoostDrag
	Glyphs     []rune
	Color      int
	Brightness float64
	GlitchRate float64
	Layer      Layer

	crossed bool // head passed the bottom bound and its reset roll was spent
}

// HeadY returns the screen y of the head glyph.
func (c *Column) HeadY(pitch float64) float64 {
	return math.Floor(c.Y) * pitch
}

// Inert reports whether the column must be respawned before it is drawn:
// its tail is more than one column length below the viewport, or its
// brightness has run out.
func (c *Column) Inert(height, pitch float64) bool {
	if c.Brightness <= 0 {
		return true
	}
	depth := float64(len(c.Glyphs))
	tail := (c.Y - depth) * pitch
	return tail > height+depth*pitch
}

// Particle is a free particle. Life and MaxLife are in ticks.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Life    float64
	MaxLife float64
	Size    float64
	Alpha   float64
	Color   int

	startAlpha float64
	startSize  float64
}

// Live reports whether the particle may be drawn.
func (p *Particle) Live() bool {
	return p.Life > 0
}

// PointerSample is the pointer position at tick time and its displacement
// since the previously applied sample.
type PointerSample struct {
	X, Y   float64
	DX, DY float64
}

// Displacement returns the magnitude of the pointer motion.
func (p PointerSample) Displacement() float64 {
	return math.Hypot(p.DX, p.DY)
}

// Frame is the read-only view of simulation state handed to a renderer once
// per tick. Columns and Particles alias the store; renderers must not keep
// them past DrawFrame.
type Frame struct {
	Kind      EntityKind
	Columns   []Column
	Particles []Particle
	Viewport  Viewport
	Pitch     float64
	Tier      QualityTier
	Palette   Palette
	Intensity float64
	Trail     bool
}

// SimStats are cumulative simulation counters.
type SimStats struct {
	Live      int
	Spawned   int
	Respawns  int
	Crossings int
	Rolls     int
	Resets    int
	Glitches  int
}

// Simulation is an entity update strategy. Each engine owns exactly one and
// is its only writer.
type Simulation interface {
	Kind() EntityKind
	// Initialize allocates the store for the tier and viewport.
	Initialize(tier QualityTier, vp Viewport)
	// Advance moves every entity forward by dt ticks.
	Advance(dt float64)
	// Resize adapts the store to a new non-empty viewport, preserving
	// surviving entities.
	Resize(vp Viewport)
	// Perturb applies a pointer sample.
	Perturb(p PointerSample)
	// Repaint re-rolls palette-dependent state after a theme change.
	Repaint()
	// Len returns the number of allocated entity slots.
	Len() int
	// Snapshot exposes current state to the renderer.
	Snapshot(f *Frame)
	// Stats returns cumulative counters.
	Stats() SimStats
}
