package ambient

import "testing"

func newTestField(seed uint64, count, depth int) *ParticleField {
	f := NewParticleField(newRand(seed))
	tier := highTier
	tier.EntityCount = count
	tier.TrailDepth = depth
	f.Initialize(tier, Viewport{Width: 800, Height: 600})
	return f
}

func TestParticleFieldInitializeInert(t *testing.T) {
	f := newTestField(1, 50, 20)
	if f.Len() != 50 {
		t.Fatalf("Len = %d, want 50", f.Len())
	}
	if f.LiveCount() != 0 {
		t.Errorf("LiveCount = %d, want 0", f.LiveCount())
	}
	for i, p := range f.Particles() {
		if p.Live() {
			t.Errorf("particle %d live after Initialize", i)
		}
	}
}

func TestParticleFieldNoSpawnWithoutMotion(t *testing.T) {
	f := newTestField(1, 50, 20)
	f.Perturb(PointerSample{X: 400, Y: 300})
	if f.LiveCount() != 0 {
		t.Errorf("LiveCount = %d, want 0 for a stationary pointer", f.LiveCount())
	}
}

func TestParticleFieldNoSpawnBelowThreshold(t *testing.T) {
	f := newTestField(1, 50, 20)
	f.Perturb(PointerSample{X: 400, Y: 300, DX: 2, DY: 2})
	if f.LiveCount() != 0 {
		t.Errorf("LiveCount = %d, want 0 below the spawn threshold", f.LiveCount())
	}
	if s := f.Stats(); s.Spawned != 0 {
		t.Errorf("Spawned = %d, want 0", s.Spawned)
	}
}

func TestParticleFieldSpawnNearPointer(t *testing.T) {
	f := newTestField(2, 50, 20)
	f.Perturb(PointerSample{X: 400, Y: 300, DX: 20})
	if got, want := f.LiveCount(), int(20/SpawnThreshold); got != want {
		t.Fatalf("LiveCount = %d, want %d", got, want)
	}
	for _, p := range f.Particles() {
		if !p.Live() {
			continue
		}
		dx, dy := p.X-400, p.Y-300
		if dx*dx+dy*dy > SpawnRadius*SpawnRadius+1e-9 {
			t.Errorf("particle spawned at %v,%v, outside SpawnRadius", p.X, p.Y)
		}
		if !particleLife.Contains(p.MaxLife) {
			t.Errorf("MaxLife = %v out of range", p.MaxLife)
		}
	}
}

func TestParticleFieldSpawnCappedByDepth(t *testing.T) {
	f := newTestField(2, 100, 6)
	f.Perturb(PointerSample{X: 400, Y: 300, DX: 200})
	if f.LiveCount() != 6 {
		t.Errorf("LiveCount = %d, want 6", f.LiveCount())
	}
}

func TestParticleFieldPoolNeverGrows(t *testing.T) {
	f := newTestField(3, 16, 12)
	for i := 0; i < 50; i++ {
		f.Perturb(PointerSample{X: 400, Y: 300, DX: 60, DY: -60})
	}
	if f.Len() != 16 {
		t.Errorf("Len = %d, want 16", f.Len())
	}
	if f.LiveCount() != 16 {
		t.Errorf("LiveCount = %d, want saturated pool of 16", f.LiveCount())
	}
}

func TestParticleFieldAdvanceExpires(t *testing.T) {
	f := newTestField(4, 32, 20)
	f.Perturb(PointerSample{X: 400, Y: 300, DX: 40})
	if f.LiveCount() == 0 {
		t.Fatal("expected live particles")
	}
	for i := 0; i < int(particleLife.Max)+1; i++ {
		f.Advance(1)
	}
	if f.LiveCount() != 0 {
		t.Errorf("LiveCount = %d, want 0 after max lifetime", f.LiveCount())
	}
	for i, p := range f.Particles() {
		if p.Live() || p.Alpha != 0 {
			t.Errorf("particle %d not dead: %+v", i, p)
		}
	}
}

func TestParticleFieldAdvanceFades(t *testing.T) {
	f := newTestField(5, 8, 8)
	f.Perturb(PointerSample{X: 400, Y: 300, DX: 8})
	var before []Particle
	before = append(before, f.Particles()...)
	f.Advance(1)
	for i, p := range f.Particles() {
		if !before[i].Live() || !p.Live() {
			continue
		}
		if p.Alpha >= before[i].Alpha {
			t.Errorf("particle %d alpha %v did not fade from %v", i, p.Alpha, before[i].Alpha)
		}
		if p.Size > before[i].Size {
			t.Errorf("particle %d grew from %v to %v", i, before[i].Size, p.Size)
		}
	}
}

func TestParticleFieldKillsOutOfBounds(t *testing.T) {
	f := newTestField(6, 4, 4)
	f.Perturb(PointerSample{X: 400, Y: 300, DX: 8})
	for i := range f.particles {
		p := &f.particles[i]
		if p.Live() {
			p.X = 5000
		}
	}
	f.Advance(1)
	if f.LiveCount() != 0 {
		t.Errorf("LiveCount = %d, want 0 after leaving the viewport", f.LiveCount())
	}
}

func TestParticleFieldAttraction(t *testing.T) {
	f := newTestField(7, 4, 4)
	f.Perturb(PointerSample{X: 400, Y: 300, DX: 8})
	var idx = -1
	for i := range f.particles {
		if f.particles[i].Live() {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatal("expected a live particle")
	}
	p := &f.particles[idx]
	p.X, p.Y, p.VX, p.VY = 300, 300, 0, 0

	f.Perturb(PointerSample{X: 350, Y: 300, DX: 1})
	if p.VX <= 0 {
		t.Errorf("VX = %v, want positive impulse toward the pointer", p.VX)
	}
}

func TestParticleFieldResizeKeepsPool(t *testing.T) {
	f := newTestField(8, 20, 10)
	f.Perturb(PointerSample{X: 100, Y: 100, DX: 30})
	live := f.LiveCount()
	f.Resize(Viewport{Width: 1600, Height: 900})
	if f.Len() != 20 || f.LiveCount() != live {
		t.Errorf("Len = %d, LiveCount = %d; want 20 and %d", f.Len(), f.LiveCount(), live)
	}
	f.Resize(Viewport{})
	if f.vp != (Viewport{1600, 900}) {
		t.Errorf("empty resize changed bounds to %+v", f.vp)
	}
}

func TestParticleFieldSnapshot(t *testing.T) {
	f := newTestField(9, 10, 10)
	fr := Frame{Columns: make([]Column, 2), Pitch: 16}
	f.Snapshot(&fr)
	if fr.Kind != KindParticle || len(fr.Particles) != 10 || fr.Columns != nil || fr.Pitch != 0 {
		t.Errorf("unexpected snapshot: %+v", fr)
	}
}

func TestParticleFieldLifeOnlyRisesOnSpawn(t *testing.T) {
	f := newTestField(17, 120, 12)
	rng := newRand(3)
	prev := make([]float64, f.Len())
	x, y := 400.0, 300.0

	for tick := 0; tick < 1500; tick++ {
		for i, p := range f.Particles() {
			prev[i] = p.Life
		}
		before := f.Stats().Spawned

		dx, dy := rng.Float64()*40-20, rng.Float64()*40-20
		x, y = x+dx, y+dy
		f.Perturb(PointerSample{X: x, Y: y, DX: dx, DY: dy})
		f.Advance(1)

		spawned := f.Stats().Spawned - before
		rose := 0
		for i, p := range f.Particles() {
			if p.Life > prev[i] {
				rose++
			}
		}
		if rose > spawned {
			t.Fatalf("tick %d: %d particles gained life with %d spawns", tick, rose, spawned)
		}
		if live := f.LiveCount(); live > f.Len() {
			t.Fatalf("tick %d: LiveCount %d exceeds pool %d", tick, live, f.Len())
		}
	}
}
