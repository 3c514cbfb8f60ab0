package ambient

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomono"
)

// GlyphFace wraps Ebitengine's text/v2 face used to rasterize column glyphs.
type GlyphFace struct {
	face    *text.GoTextFace
	size    float64
	advance float64 // cached advance of a single monospace cell
	lh      float64 // cached line height
	strs    map[rune]string
}

// LoadGlyphFace loads a TrueType face from raw TTF/OTF data at the given
// pixel size.
func LoadGlyphFace(ttfData []byte, size float64) (*GlyphFace, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("ambient: parse glyph face: %w", err)
	}
	return newGlyphFace(source, size), nil
}

func newGlyphFace(source *text.GoTextFaceSource, size float64) *GlyphFace {
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &GlyphFace{
		face:    face,
		size:    size,
		advance: text.Advance("M", face),
		lh:      m.HAscent + m.HDescent + m.HLineGap,
		strs:    make(map[rune]string, len(DefaultGlyphs)),
	}
}

var monoSource = sync.OnceValues(func() (*text.GoTextFaceSource, error) {
	return text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
})

// defaultGlyphFace returns a Go Mono face at the given size.
func defaultGlyphFace(size float64) (*GlyphFace, error) {
	source, err := monoSource()
	if err != nil {
		return nil, fmt.Errorf("ambient: parse go mono: %w", err)
	}
	return newGlyphFace(source, size), nil
}

// Size returns the face size in pixels.
func (f *GlyphFace) Size() float64 { return f.size }

// LineHeight returns the vertical distance between baselines.
func (f *GlyphFace) LineHeight() float64 { return f.lh }

// Face returns the underlying GoTextFace.
func (f *GlyphFace) Face() *text.GoTextFace { return f.face }

// glyphString returns r as a string without allocating after the first use.
func (f *GlyphFace) glyphString(r rune) string {
	if s, ok := f.strs[r]; ok {
		return s
	}
	s := string(r)
	f.strs[r] = s
	return s
}

// cellOffset returns the offset that centers one glyph in a square cell of
// the given size.
func (f *GlyphFace) cellOffset(cell float64) (dx, dy float64) {
	return (cell - f.advance) / 2, (cell - f.lh) / 2
}
