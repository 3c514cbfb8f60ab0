package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/ambient"
)

// Dot runes by radius in cells.
const (
	dotSmall  = '·'
	dotMedium = '•'
	dotLarge  = '●'
)

// settle is the per-channel distance below which a faded cell counts as
// background and loses its rune.
const settle = 0.03

type cell struct {
	r    rune
	c    ambient.Color
	bold bool
}

// Surface is an ambient.Surface backed by a tcell screen. One logical pixel
// is one terminal cell, so engines drawing here use a glyph size of 1.
// Cells keep their composited color so Fade can blend them toward the
// background across frames the way a raster canvas does.
type Surface struct {
	screen tcell.Screen
	cells  []cell
	w, h   int
	bg     ambient.Color
}

// NewSurface creates a surface covering the whole screen.
func NewSurface(screen tcell.Screen) *Surface {
	s := &Surface{screen: screen}
	w, h := screen.Size()
	s.Resize(w, h)
	return s
}

// Size returns the surface size in cells.
func (s *Surface) Size() (w, h int) { return s.w, s.h }

// Resize reallocates the cell buffer. Contents are discarded.
func (s *Surface) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	s.w, s.h = w, h
	if cap(s.cells) >= w*h {
		s.cells = s.cells[:w*h]
		clear(s.cells)
	} else {
		s.cells = make([]cell, w*h)
	}
	for i := range s.cells {
		s.cells[i].c = s.bg
	}
}

// Fade blends every cell toward bg. Cells that settle on bg are blanked.
func (s *Surface) Fade(bg ambient.Color, alpha float64) {
	s.bg = bg.WithAlpha(1)
	for i := range s.cells {
		c := &s.cells[i]
		if alpha >= 1 {
			*c = cell{r: ' ', c: s.bg}
		} else {
			c.c = c.c.Mix(s.bg, alpha)
			c.bold = false
			if near(c.c, s.bg) {
				c.r = ' '
				c.c = s.bg
			}
		}
		s.put(i)
	}
}

// Glyph draws r in the cell containing (x, y). Glyphs drawn larger than one
// cell, such as column heads, are set bold. Glow has no terminal rendition.
func (s *Surface) Glyph(r rune, x, y, scale float64, fill, glow ambient.Color) {
	i, ok := s.index(x, y)
	if !ok || fill.A <= 0 {
		return
	}
	c := &s.cells[i]
	c.r = r
	c.c = c.c.Mix(fill.WithAlpha(1), fill.A)
	c.bold = scale > 1
	s.put(i)
}

// Dot draws a dot rune sized by radius in the cell containing (x, y).
func (s *Surface) Dot(x, y, radius float64, fill, glow ambient.Color) {
	i, ok := s.index(x, y)
	if !ok || fill.A <= 0 {
		return
	}
	c := &s.cells[i]
	switch {
	case radius < 2:
		c.r = dotSmall
	case radius < 3.5:
		c.r = dotMedium
	default:
		c.r = dotLarge
	}
	c.c = c.c.Mix(fill.WithAlpha(1), fill.A)
	c.bold = false
	s.put(i)
}

// Flush is a no-op. Cells are written to the screen as they are drawn and
// the host shows the screen once per frame.
func (s *Surface) Flush(*ebiten.Image) {}

// Dispose releases the cell buffer.
func (s *Surface) Dispose() {
	s.cells = nil
	s.w, s.h = 0, 0
}

// Cell returns the rune and color stored at (x, y).
func (s *Surface) Cell(x, y int) (rune, ambient.Color) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return 0, ambient.Color{}
	}
	c := s.cells[y*s.w+x]
	return c.r, c.c
}

func (s *Surface) index(x, y float64) (int, bool) {
	cx, cy := int(x), int(y)
	if x < 0 || y < 0 || cx >= s.w || cy >= s.h {
		return 0, false
	}
	return cy*s.w + cx, true
}

func (s *Surface) put(i int) {
	c := s.cells[i]
	r := c.r
	if r == 0 {
		r = ' '
	}
	style := tcell.StyleDefault.Foreground(tcellColor(c.c)).Background(tcellColor(s.bg)).Bold(c.bold)
	s.screen.SetContent(i%s.w, i/s.w, r, nil, style)
}

func tcellColor(c ambient.Color) tcell.Color {
	return tcell.NewRGBColor(channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int32 {
	return int32(min(max(v, 0), 1)*255 + 0.5)
}

func near(a, b ambient.Color) bool {
	return abs(a.R-b.R) < settle && abs(a.G-b.G) < settle && abs(a.B-b.B) < settle
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
