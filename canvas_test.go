package ambient

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestDotPixels(t *testing.T) {
	pix, size := dotPixels(8)
	if size != 16 {
		t.Fatalf("size = %d, want 16", size)
	}
	alpha := func(x, y int) uint8 { return pix[(y*size+x)*4+3] }
	if a := alpha(8, 8); a < 240 {
		t.Errorf("center alpha = %d, want near opaque", a)
	}
	if a := alpha(0, 0); a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	if alpha(4, 8) >= alpha(7, 8) {
		t.Error("alpha should fall off toward the edge")
	}
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != pix[i+3] {
			t.Fatalf("pixel %d not premultiplied white", i/4)
		}
	}
}

func TestCanvasResize(t *testing.T) {
	c, err := NewCanvas(100, 50, 2, 16, true)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	if w, h := c.Size(); w != 100 || h != 50 {
		t.Errorf("Size = %d,%d, want 100,50", w, h)
	}
	if b := c.Image().Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("backing = %v, want 200x100 at density 2", b)
	}

	c.Resize(0, 40)
	if c.Image() != nil {
		t.Error("zero-area resize kept a backing image")
	}
	c.Fade(ColorBlack, 0.5)
	c.Glyph('A', 0, 0, 1, ColorWhite, Color{})
	c.Flush(ebiten.NewImage(4, 4))

	c.Resize(30, 30)
	if b := c.Image().Bounds(); b.Dx() != 60 || b.Dy() != 60 {
		t.Errorf("backing = %v, want 60x60", b)
	}
}

func TestGlowChainDepth(t *testing.T) {
	tests := []struct {
		radius int
		want   int
	}{
		{-3, 0},
		{0, 0},
		{1, 1},
		{2, 1},
		{8, 3},
		{9, 4},
	}
	for _, tt := range tests {
		if got := newGlowChain(tt.radius).depth; got != tt.want {
			t.Errorf("depth(%d) = %d, want %d", tt.radius, got, tt.want)
		}
	}
}

func TestGlowChainFollowsCanvas(t *testing.T) {
	c, err := NewCanvas(64, 32, 1, 16, true)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	levels := c.chain.levels
	if len(levels) != 3 {
		t.Fatalf("levels = %d, want 3", len(levels))
	}
	want := [][2]int{{32, 16}, {16, 8}, {8, 4}}
	for i, lv := range levels {
		if b := lv.Bounds(); b.Dx() != want[i][0] || b.Dy() != want[i][1] {
			t.Errorf("level %d = %v, want %dx%d", i, b, want[i][0], want[i][1])
		}
	}

	c.Resize(0, 0)
	if len(c.chain.levels) != 0 {
		t.Errorf("levels = %d after zero-area resize, want 0", len(c.chain.levels))
	}

	c.Resize(16, 16)
	c.Glyph('A', 0, 0, 1, ColorWhite, ColorWhite)
	if !c.glowUsed {
		t.Error("glyph with glow did not mark the glow buffer")
	}
	c.Flush(ebiten.NewImage(16, 16))
	if c.glowUsed {
		t.Error("Flush left the glow buffer marked")
	}
	if b := c.chain.levels[2].Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("smallest level = %v, want 2x2", b)
	}
}

func TestColorMixKeepsAlpha(t *testing.T) {
	c := Color{R: 1, A: 0.4}.Mix(ColorWhite, 0.5)
	if c.R != 1 || c.G != 0.5 || c.A != 0.4 {
		t.Errorf("Mix = %+v, want {1 0.5 0.5 0.4}", c)
	}
}

func TestColorPremultiplied(t *testing.T) {
	r, g, b, a := Color{R: 1, G: 0.5, B: 2, A: 0.5}.premultiplied()
	if r != 0.5 || g != 0.25 || b != 0.5 || a != 0.5 {
		t.Errorf("premultiplied = %v %v %v %v, want 0.5 0.25 0.5 0.5", r, g, b, a)
	}
	if got := RGB(255, 0, 0).WithAlpha(3).A; got != 1 {
		t.Errorf("WithAlpha(3).A = %v, want 1", got)
	}
}

func TestDecay(t *testing.T) {
	if got := decay(0.9, 1); got != 0.9 {
		t.Errorf("decay(0.9, 1) = %v, want 0.9", got)
	}
	if got, want := decay(0.9, 2), 0.81; math.Abs(got-want) > 1e-12 {
		t.Errorf("decay(0.9, 2) = %v, want %v", got, want)
	}
}

func TestBlendModeEbitenBlend(t *testing.T) {
	if BlendAdd.EbitenBlend() != ebiten.BlendLighter {
		t.Error("BlendAdd should map to BlendLighter")
	}
	if BlendNormal.EbitenBlend() != ebiten.BlendSourceOver {
		t.Error("BlendNormal should map to BlendSourceOver")
	}
	if BlendNone.EbitenBlend() != ebiten.BlendCopy {
		t.Error("BlendNone should map to BlendCopy")
	}
}
