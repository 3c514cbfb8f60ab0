package ambient

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

type drawOp struct {
	kind  string
	r     rune
	x, y  float64
	scale float64
	fill  Color
	glow  Color
	alpha float64
}

// recordingSurface records every call instead of rasterizing.
type recordingSurface struct {
	w, h     int
	ops      []drawOp
	flushes  int
	disposed bool
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }
func (s *recordingSurface) Resize(w, h int)  { s.w, s.h = w, h }
func (s *recordingSurface) Fade(bg Color, alpha float64) {
	s.ops = append(s.ops, drawOp{kind: "fade", fill: bg, alpha: alpha})
}
func (s *recordingSurface) Glyph(r rune, x, y, scale float64, fill, glow Color) {
	s.ops = append(s.ops, drawOp{kind: "glyph", r: r, x: x, y: y, scale: scale, fill: fill, glow: glow})
}
func (s *recordingSurface) Dot(x, y, radius float64, fill, glow Color) {
	s.ops = append(s.ops, drawOp{kind: "dot", x: x, y: y, scale: radius, fill: fill, glow: glow})
}
func (s *recordingSurface) Flush(*ebiten.Image) { s.flushes++ }
func (s *recordingSurface) Dispose()            { s.disposed = true }

func (s *recordingSurface) count(kind string) int {
	n := 0
	for _, op := range s.ops {
		if op.kind == kind {
			n++
		}
	}
	return n
}

func recordingFactory(surfaces *[]*recordingSurface) RendererFactory {
	return func(_ QualityTier, vp Viewport, _ Config, p Palette) (Renderer, error) {
		s := &recordingSurface{w: vp.Width, h: vp.Height}
		*surfaces = append(*surfaces, s)
		return NewRasterRenderer(s, p), nil
	}
}

func TestBandOf(t *testing.T) {
	tests := []struct {
		k    int
		want GlyphBand
	}{
		{0, BandHead},
		{1, BandNear},
		{HeadBand, BandNear},
		{HeadBand + 1, BandTail},
		{20, BandTail},
	}
	for _, tt := range tests {
		if got := BandOf(tt.k); got != tt.want {
			t.Errorf("BandOf(%d) = %v, want %v", tt.k, got, tt.want)
		}
	}
}

func TestStyleGlyphBands(t *testing.T) {
	base := RGB(0, 200, 0)
	head, _ := StyleGlyph(0, 20, base, 1)
	near, _ := StyleGlyph(1, 20, base, 1)
	tail, _ := StyleGlyph(10, 20, base, 1)

	if head.Scale <= 1 {
		t.Errorf("head scale = %v, want > 1", head.Scale)
	}
	if head.Color.R <= base.R {
		t.Error("head should be mixed toward white")
	}
	if near.Color.G < base.G || near.Scale != 1 {
		t.Errorf("near glyph = %+v, want brightened at scale 1", near)
	}
	if tail.Color.A >= near.Color.A {
		t.Errorf("tail alpha = %v, want below near alpha %v", tail.Color.A, near.Color.A)
	}
	if tail.Glow != 0 || head.Glow <= near.Glow {
		t.Errorf("glow head=%v near=%v tail=%v", head.Glow, near.Glow, tail.Glow)
	}

	last, _ := StyleGlyph(19, 20, base, 1)
	if last.Color.A >= tail.Color.A {
		t.Error("alpha should fall along the tail")
	}
	if _, ok := StyleGlyph(5, 20, base, 0); ok {
		t.Error("zero brightness glyph should be skipped")
	}
}

// Empty store: only the trail-fade fill is drawn.
func TestRasterEmptyStoreFadesOnly(t *testing.T) {
	s := &recordingSurface{w: 800, h: 600}
	r := NewRasterRenderer(s, PaletteFor(ThemeMatrix))
	rain := NewColumnRain(newRand(1), 16, nil)
	rain.Initialize(DeriveTier(DeviceSignals{ReducedMotion: true}), Viewport{Width: 800, Height: 600})

	var f Frame
	rain.Snapshot(&f)
	f.Intensity = 1
	f.Trail = true
	r.DrawFrame(&f)

	if len(s.ops) != 1 || s.ops[0].kind != "fade" {
		t.Fatalf("ops = %+v, want a single fade", s.ops)
	}
	if s.ops[0].alpha != TrailFadeAlpha {
		t.Errorf("fade alpha = %v, want %v", s.ops[0].alpha, TrailFadeAlpha)
	}
	if st := r.Stats(); st.DrawCalls != 1 || st.Glyphs != 0 {
		t.Errorf("stats = %+v, want one draw call", st)
	}
}

func TestRasterTrailOffClears(t *testing.T) {
	s := &recordingSurface{w: 100, h: 100}
	r := NewRasterRenderer(s, PaletteFor(ThemeIce))
	f := Frame{Kind: KindColumn, Pitch: 16, Viewport: Viewport{100, 100}}
	r.DrawFrame(&f)
	if s.ops[0].alpha != 1 {
		t.Errorf("fade alpha = %v, want 1 without trail", s.ops[0].alpha)
	}
	if s.ops[0].fill != PaletteFor(ThemeIce).Background {
		t.Error("fade should use the palette background")
	}
}

func TestRasterSkipsInertColumns(t *testing.T) {
	s := &recordingSurface{w: 320, h: 320}
	r := NewRasterRenderer(s, PaletteFor(ThemeMatrix))
	glyphs := []rune("ABCDEFGH")
	f := Frame{
		Kind:      KindColumn,
		Pitch:     16,
		Viewport:  Viewport{320, 320},
		Intensity: 1,
		Trail:     true,
		Columns: []Column{
			{X: 0, Y: 10, Glyphs: glyphs, Brightness: 1},
			{X: 1, Y: 10, Glyphs: glyphs, Brightness: 0},
			{X: 2, Y: 500, Glyphs: glyphs, Brightness: 1},
		},
	}
	r.DrawFrame(&f)
	if got := s.count("glyph"); got != len(glyphs) {
		t.Errorf("glyphs drawn = %d, want %d", got, len(glyphs))
	}
	for _, op := range s.ops {
		if op.kind == "glyph" && op.x != 0 {
			t.Errorf("glyph drawn for inert column at x=%v", op.x)
		}
	}
	if st := r.Stats(); st.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", st.Skipped)
	}
}

func TestRasterColumnTailToHead(t *testing.T) {
	s := &recordingSurface{w: 320, h: 320}
	r := NewRasterRenderer(s, PaletteFor(ThemeMatrix))
	f := Frame{
		Kind:      KindColumn,
		Pitch:     16,
		Viewport:  Viewport{320, 320},
		Intensity: 1,
		Trail:     true,
		Tier:      QualityTier{GlowEnabled: true},
		Columns:   []Column{{X: 3, Y: 12, Glyphs: []rune("HEAD"), Brightness: 1}},
	}
	r.DrawFrame(&f)

	var glyphs []drawOp
	for _, op := range s.ops {
		if op.kind == "glyph" {
			glyphs = append(glyphs, op)
		}
	}
	if len(glyphs) != 4 {
		t.Fatalf("glyphs = %d, want 4", len(glyphs))
	}
	head := glyphs[len(glyphs)-1]
	if head.r != 'H' || head.y != 12*16 || head.x != 3*16 {
		t.Errorf("last glyph = %+v, want head 'H' at (48, 192)", head)
	}
	if head.scale <= 1 || head.glow.A <= 0 {
		t.Errorf("head scale = %v glow = %v, want enlarged with glow", head.scale, head.glow)
	}
	for i := 1; i < len(glyphs); i++ {
		if glyphs[i].y <= glyphs[i-1].y {
			t.Errorf("glyph %d drawn above glyph %d; want tail first", i, i-1)
		}
	}
}

func TestRasterGlowDisabledByTier(t *testing.T) {
	s := &recordingSurface{w: 320, h: 320}
	r := NewRasterRenderer(s, PaletteFor(ThemeMatrix))
	f := Frame{
		Kind:      KindColumn,
		Pitch:     16,
		Viewport:  Viewport{320, 320},
		Intensity: 1,
		Columns:   []Column{{X: 0, Y: 5, Glyphs: []rune("AB"), Brightness: 1}},
	}
	r.DrawFrame(&f)
	for _, op := range s.ops {
		if op.kind == "glyph" && op.glow.A != 0 {
			t.Errorf("glow drawn with glow disabled: %+v", op)
		}
	}
}

func TestRasterIntensityScalesAlpha(t *testing.T) {
	s := &recordingSurface{w: 320, h: 320}
	r := NewRasterRenderer(s, PaletteFor(ThemeMatrix))
	f := Frame{
		Kind:      KindColumn,
		Pitch:     16,
		Viewport:  Viewport{320, 320},
		Intensity: 0.5,
		Columns:   []Column{{X: 0, Y: 5, Glyphs: []rune("A"), Brightness: 1}},
	}
	r.DrawFrame(&f)
	for _, op := range s.ops {
		if op.kind == "glyph" && op.fill.A != 0.5 {
			t.Errorf("head alpha = %v, want 0.5", op.fill.A)
		}
	}
}

func TestRasterParticles(t *testing.T) {
	s := &recordingSurface{w: 320, h: 320}
	r := NewRasterRenderer(s, PaletteFor(ThemeAmber))
	f := Frame{
		Kind:      KindParticle,
		Viewport:  Viewport{320, 320},
		Intensity: 1,
		Particles: []Particle{
			{X: 10, Y: 10, Life: 5, MaxLife: 10, Size: 2, Alpha: 0.5},
			{X: 20, Y: 20},
		},
	}
	r.DrawFrame(&f)
	if got := s.count("dot"); got != 1 {
		t.Errorf("dots = %d, want 1", got)
	}
	if st := r.Stats(); st.Dots != 1 || st.Skipped != 1 || st.DrawCalls != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestRasterUnavailableSurface(t *testing.T) {
	s := &recordingSurface{}
	r := NewRasterRenderer(s, PaletteFor(ThemeMatrix))
	r.DrawFrame(&Frame{Kind: KindColumn})
	if len(s.ops) != 0 {
		t.Errorf("drew %d ops on a zero-size surface", len(s.ops))
	}
	r.Resize(Viewport{Width: 10, Height: 10})
	r.DrawFrame(&Frame{Kind: KindColumn})
	if len(s.ops) != 1 {
		t.Errorf("ops = %d after resize, want 1", len(s.ops))
	}
}

func TestRasterPresentAndDispose(t *testing.T) {
	s := &recordingSurface{w: 10, h: 10}
	r := NewRasterRenderer(s, PaletteFor(ThemeMatrix))
	r.Present(nil)
	if s.flushes != 0 {
		t.Error("Present(nil) should not flush")
	}
	dst := ebiten.NewImage(10, 10)
	defer dst.Deallocate()
	r.Present(dst)
	if s.flushes != 1 {
		t.Errorf("flushes = %d, want 1", s.flushes)
	}
	r.Dispose()
	r.Dispose()
	if !s.disposed {
		t.Error("surface not disposed")
	}
}
