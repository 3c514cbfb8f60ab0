package ambient

import (
	"math"
	"math/rand/v2"
)

// Particle field tuning. Lifetimes and velocities are per tick.
const (
	// ParticleDrag is the per-tick velocity multiplier.
	ParticleDrag = 0.98
	// SpawnThreshold is the minimum pointer displacement, in pixels, that
	// spawns particles.
	SpawnThreshold = 4.0
	// SpawnRadius bounds how far from the pointer a particle is born.
	SpawnRadius = 12.0
	// AttractStrength is the velocity impulse toward the pointer at zero
	// distance.
	AttractStrength = 0.35
)

var (
	particleLife  = Range{30, 75}
	particleSize  = Range{1.5, 4.5}
	particleAlpha = Range{0.6, 1.0}
	particleSpeed = Range{0.4, 2.2}
	particleScale = Range{0.15, 0.45} // share of pointer velocity inherited
)

// ParticleField is a fixed pool of particles. Dead slots are overwritten by
// new spawns; the pool never grows after Initialize.
type ParticleField struct {
	rng       *rand.Rand
	tier      QualityTier
	vp        Viewport
	particles []Particle
	live      int
	cursor    int // ring scan start for free slots
	stats     SimStats
}

// NewParticleField creates an empty particle store.
func NewParticleField(rng *rand.Rand) *ParticleField {
	return &ParticleField{rng: rng}
}

// Kind returns KindParticle.
func (f *ParticleField) Kind() EntityKind { return KindParticle }

// Len returns the pool size.
func (f *ParticleField) Len() int { return len(f.particles) }

// LiveCount returns the number of live particles.
func (f *ParticleField) LiveCount() int { return f.live }

// Particles returns the pool. Callers must not retain it across ticks.
func (f *ParticleField) Particles() []Particle { return f.particles }

// Stats returns cumulative counters.
func (f *ParticleField) Stats() SimStats {
	s := f.stats
	s.Live = f.live
	return s
}

// Initialize allocates a pool of tier.EntityCount inert particles.
func (f *ParticleField) Initialize(tier QualityTier, vp Viewport) {
	f.tier = tier
	f.vp = vp
	f.particles = make([]Particle, tier.EntityCount)
	f.live = 0
	f.cursor = 0
}

// Advance ages and moves every live particle by dt ticks.
func (f *ParticleField) Advance(dt float64) {
	drag := decay(ParticleDrag, dt)
	w, h := float64(f.vp.Width), float64(f.vp.Height)
	for i := range f.particles {
		p := &f.particles[i]
		if !p.Live() {
			continue
		}
		p.Life -= dt
		if p.Life <= 0 {
			f.kill(p)
			continue
		}
		p.VX *= drag
		p.VY *= drag
		p.X += p.VX * dt
		p.Y += p.VY * dt

		t := p.Life / p.MaxLife
		p.Alpha = p.startAlpha * t
		p.Size = p.startSize * (0.3 + 0.7*t)

		if p.X < -p.Size || p.Y < -p.Size || p.X > w+p.Size || p.Y > h+p.Size {
			f.kill(p)
		}
	}
}

func (f *ParticleField) kill(p *Particle) {
	p.Life = 0
	p.Alpha = 0
	f.live--
}

// Perturb attracts live particles toward the pointer and, when the pointer
// moved farther than SpawnThreshold, respawns dead slots near it.
func (f *ParticleField) Perturb(s PointerSample) {
	disp := s.Displacement()
	if disp == 0 {
		return
	}

	for i := range f.particles {
		p := &f.particles[i]
		if !p.Live() {
			continue
		}
		dx, dy := s.X-p.X, s.Y-p.Y
		d := math.Hypot(dx, dy)
		if d == 0 || d > InfluenceRadius {
			continue
		}
		impulse := AttractStrength * (1 - d/InfluenceRadius)
		p.VX += dx / d * impulse
		p.VY += dy / d * impulse
	}

	if disp <= SpawnThreshold {
		return
	}
	n := min(int(disp/SpawnThreshold), f.tier.TrailDepth)
	for ; n > 0; n-- {
		p := f.freeSlot()
		if p == nil {
			return
		}
		f.respawn(p, s)
	}
}

// freeSlot returns the next dead slot, or nil when the pool is saturated.
func (f *ParticleField) freeSlot() *Particle {
	n := len(f.particles)
	for i := 0; i < n; i++ {
		idx := (f.cursor + i) % n
		if !f.particles[idx].Live() {
			f.cursor = (idx + 1) % n
			return &f.particles[idx]
		}
	}
	return nil
}

// respawn reinitializes p within SpawnRadius of the pointer, moving along
// the pointer's direction with some spread.
func (f *ParticleField) respawn(p *Particle, s PointerSample) {
	angle := f.rng.Float64() * 2 * math.Pi
	r := math.Sqrt(f.rng.Float64()) * SpawnRadius
	p.X = s.X + math.Cos(angle)*r
	p.Y = s.Y + math.Sin(angle)*r

	spread := f.rng.Float64() * 2 * math.Pi
	speed := particleSpeed.Random(f.rng)
	inherit := particleScale.Random(f.rng)
	p.VX = math.Cos(spread)*speed + s.DX*inherit
	p.VY = math.Sin(spread)*speed + s.DY*inherit

	p.MaxLife = particleLife.Random(f.rng)
	p.Life = p.MaxLife
	p.startSize = particleSize.Random(f.rng)
	p.Size = p.startSize
	p.startAlpha = particleAlpha.Random(f.rng)
	p.Alpha = p.startAlpha
	p.Color = pickSlot(f.rng)

	f.live++
	f.stats.Spawned++
	f.stats.Respawns++
}

// Resize updates the bounds. The pool size is fixed by the tier.
func (f *ParticleField) Resize(vp Viewport) {
	if vp.Empty() {
		return
	}
	f.vp = vp
}

// Repaint re-rolls the palette slot of every live particle.
func (f *ParticleField) Repaint() {
	for i := range f.particles {
		if f.particles[i].Live() {
			f.particles[i].Color = pickSlot(f.rng)
		}
	}
}

// Snapshot exposes the pool to the renderer.
func (f *ParticleField) Snapshot(fr *Frame) {
	fr.Kind = KindParticle
	fr.Particles = f.particles
	fr.Columns = nil
	fr.Pitch = 0
	fr.Viewport = f.vp
}
